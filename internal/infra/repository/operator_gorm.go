package repository

import (
	"context"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	domainrepo "github.com/tjmpn2/merchbooth/internal/repository"

	"gorm.io/gorm"
)

type operatorGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewしてusecase/middlewareに注入します。
func NewOperatorGormRepository(db *gorm.DB) domainrepo.OperatorRepository {
	return &operatorGormRepository{db: db}
}

// オペレーターを新規作成
func (r *operatorGormRepository) Create(ctx context.Context, op *model.Operator) error {
	if err := r.db.WithContext(ctx).Create(op).Error; err != nil {
		if isUniqueViolation(err) {
			return domainrepo.ErrConflict
		}
		return err
	}
	return nil
}

// 名前で1件取得（大文字小文字を区別しない）
func (r *operatorGormRepository) FindByName(ctx context.Context, name string) (*model.Operator, error) {
	var op model.Operator

	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&op).Error

	if err != nil {
		if isNotFound(err) {
			return nil, domainrepo.ErrNotFound
		}
		return nil, err
	}

	return &op, nil
}

// IDで1件取得
func (r *operatorGormRepository) FindByID(ctx context.Context, id int64) (*model.Operator, error) {
	var op model.Operator

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&op).Error

	if err != nil {
		if isNotFound(err) {
			return nil, domainrepo.ErrNotFound
		}
		return nil, err
	}

	return &op, nil
}

// オペレーターを更新。
func (r *operatorGormRepository) Update(ctx context.Context, op *model.Operator) error {
	res := r.db.WithContext(ctx).Save(op)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrNotFound
	}
	return nil
}
