package repository

import (
	"context"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
)

// 精算は参照データ（日付の新しい順）
type SettlementRepository interface {
	List(ctx context.Context) ([]model.Settlement, error)
}
