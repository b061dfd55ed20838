package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫の現在値を設定
func (r *InventoryGormRepository) SetStock(ctx context.Context, productID int64, variant string, newStock int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.VariantStock{}).
		Where("product_id = ? AND variant = ?", productID, variant).
		Update("quantity", newStock)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 在庫が足りるときだけ減らす
func (r *InventoryGormRepository) DecrementStockIfEnough(ctx context.Context, productID int64, variant string, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.VariantStock{}).
		Where("product_id = ? AND variant = ? AND quantity >= ?", productID, variant, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	//足りないのか、行が無いのかを区別する
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&model.VariantStock{}).
		Where("product_id = ? AND variant = ?", productID, variant).
		Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, repo.ErrNotFound
	}
	return false, nil
}

// 在庫戻し（返金）
func (r *InventoryGormRepository) IncrementStock(ctx context.Context, productID int64, variant string, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.VariantStock{}).
		Where("product_id = ? AND variant = ?", productID, variant).
		Update("quantity", gorm.Expr("quantity + ?", qty))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return err
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// 一意制約違反（TranslateError有効ならgorm.ErrDuplicatedKey、無効ならpgのSQLSTATE）
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
