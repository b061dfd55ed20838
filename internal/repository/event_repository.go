package repository

import (
	"context"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
)

// 公演は参照だけ（日付の昇順）
type EventRepository interface {
	List(ctx context.Context, status model.EventStatus) ([]model.Event, error)
	FindByID(ctx context.Context, id int64) (model.Event, error)
}
