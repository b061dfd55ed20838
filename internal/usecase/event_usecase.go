package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
)

type EventUsecase struct {
	events repo.EventRepository
}

func NewEventUsecase(events repo.EventRepository) *EventUsecase {
	return &EventUsecase{events: events}
}

// 公演一覧（日付の昇順）。statusが空なら全件。
func (u *EventUsecase) List(ctx context.Context, status string) ([]model.Event, error) {
	st := model.EventStatus(strings.ToLower(strings.TrimSpace(status)))
	switch st {
	case "", model.EventStatusUpcoming, model.EventStatusCompleted:
	default:
		return nil, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	items, err := u.events.List(ctx, st)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// Upcoming returns the next n upcoming shows.
func (u *EventUsecase) Upcoming(ctx context.Context, n int) ([]model.Event, error) {
	items, err := u.List(ctx, string(model.EventStatusUpcoming))
	if err != nil {
		return nil, err
	}
	if n > 0 && len(items) > n {
		items = items[:n]
	}
	return items, nil
}

func (u *EventUsecase) Get(ctx context.Context, id int64) (model.Event, error) {
	if id <= 0 {
		return model.Event{}, NewHTTPError(http.StatusBadRequest, "invalid event id")
	}
	ev, err := u.events.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Event{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Event{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ev, nil
}
