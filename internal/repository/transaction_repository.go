package repository

import (
	"context"
	"time"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
)

type TransactionListFilter struct {
	EventID *int64
	Status  model.TransactionStatus
	From    *time.Time
	To      *time.Time
	//0なら全件
	Limit int
}

// 売上履歴。Listは新しい順で返す。
type TransactionRepository interface {
	Create(ctx context.Context, t model.Transaction) error
	FindByID(ctx context.Context, id string) (model.Transaction, error)
	List(ctx context.Context, f TransactionListFilter) ([]model.Transaction, error)

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, key string) (model.Transaction, bool, error)

	MarkRefunded(ctx context.Context, id string, refundID string, at time.Time) error
}
