package repository

import (
	"context"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"

	"gorm.io/gorm"
)

type EventGormRepository struct {
	db *gorm.DB
}

func NewEventGormRepository(db *gorm.DB) *EventGormRepository {
	return &EventGormRepository{db: db}
}

// 日付の昇順
func (r *EventGormRepository) List(ctx context.Context, status model.EventStatus) ([]model.Event, error) {
	q := r.db.WithContext(ctx).Model(&model.Event{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	items := []model.Event{}
	if err := q.Order("date ASC").Order("id ASC").Find(&items).Error; err != nil {
		return []model.Event{}, err
	}
	return items, nil
}

func (r *EventGormRepository) FindByID(ctx context.Context, id int64) (model.Event, error) {
	var ev model.Event
	err := r.db.WithContext(ctx).First(&ev, id).Error
	if isNotFound(err) {
		return model.Event{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

type SettlementGormRepository struct {
	db *gorm.DB
}

func NewSettlementGormRepository(db *gorm.DB) *SettlementGormRepository {
	return &SettlementGormRepository{db: db}
}

// 日付の新しい順
func (r *SettlementGormRepository) List(ctx context.Context) ([]model.Settlement, error) {
	items := []model.Settlement{}
	err := r.db.WithContext(ctx).Order("date DESC").Order("id DESC").Find(&items).Error
	if err != nil {
		return []model.Settlement{}, err
	}
	return items, nil
}
