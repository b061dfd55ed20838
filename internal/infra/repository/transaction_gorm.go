package repository

import (
	"context"
	"time"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"

	"gorm.io/gorm"
)

type TransactionGormRepository struct {
	db *gorm.DB
}

func NewTransactionGormRepository(db *gorm.DB) *TransactionGormRepository {
	return &TransactionGormRepository{db: db}
}

// 明細も一緒に保存（gormのassociation）
func (r *TransactionGormRepository) Create(ctx context.Context, t model.Transaction) error {
	if err := r.db.WithContext(ctx).Create(&t).Error; err != nil {
		if isUniqueViolation(err) {
			return repo.ErrConflict
		}
		return err
	}
	return nil
}

func (r *TransactionGormRepository) FindByID(ctx context.Context, id string) (model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		Where("id = ?", id).
		First(&t).Error
	if isNotFound(err) {
		return model.Transaction{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

// 新しい順
func (r *TransactionGormRepository) List(ctx context.Context, f repo.TransactionListFilter) ([]model.Transaction, error) {
	q := r.db.WithContext(ctx).Model(&model.Transaction{}).Preload("Lines", orderLines)

	if f.EventID != nil {
		q = q.Where("event_id = ?", *f.EventID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where(`"timestamp" >= ?`, *f.From)
	}
	if f.To != nil {
		q = q.Where(`"timestamp" <= ?`, *f.To)
	}

	q = q.Order(`"timestamp" DESC`).Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	items := []model.Transaction{}
	if err := q.Find(&items).Error; err != nil {
		return []model.Transaction{}, err
	}
	return items, nil
}

func (r *TransactionGormRepository) FindByIdempotencyKey(ctx context.Context, key string) (model.Transaction, bool, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		Where("idempotency_key = ?", key).
		First(&t).Error

	if isNotFound(err) {
		return model.Transaction{}, false, nil
	}
	if err != nil {
		return model.Transaction{}, false, err
	}
	return t, true, nil
}

// COMPLETEDのものだけ返金済みにする
func (r *TransactionGormRepository) MarkRefunded(ctx context.Context, id string, refundID string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, model.TransactionStatusCompleted).
		Updates(map[string]interface{}{
			"status":      model.TransactionStatusRefunded,
			"refund_id":   refundID,
			"refunded_at": at,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細はカートに入れた順
func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
