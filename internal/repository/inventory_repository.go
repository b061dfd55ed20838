package repository

import (
	"context"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
)

// 在庫の変更はここだけ
type InventoryRepository interface {
	// 在庫が足りるときだけ減算（足りないなら false）
	DecrementStockIfEnough(ctx context.Context, productID int64, variant string, qty int64) (bool, error)

	// 在庫戻し（返金など）
	IncrementStock(ctx context.Context, productID int64, variant string, qty int64) error

	// 在庫の現在値を設定
	SetStock(ctx context.Context, productID int64, variant string, newStock int64) error

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
