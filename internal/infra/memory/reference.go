package memory

import (
	"context"
	"sort"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
)

type eventRepo struct {
	s *Store
}

// 日付の昇順
func (r *eventRepo) List(ctx context.Context, status model.EventStatus) ([]model.Event, error) {
	out := []model.Event{}
	err := r.s.with(nil, func(st *state) error {
		for _, e := range st.events {
			if status != "" && e.Status != status {
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, err
}

func (r *eventRepo) FindByID(ctx context.Context, id int64) (model.Event, error) {
	var out model.Event
	err := r.s.with(nil, func(st *state) error {
		for _, e := range st.events {
			if e.ID == id {
				out = e
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return out, err
}

type settlementRepo struct {
	s *Store
}

// 日付の新しい順
func (r *settlementRepo) List(ctx context.Context) ([]model.Settlement, error) {
	var out []model.Settlement
	err := r.s.with(nil, func(st *state) error {
		out = append([]model.Settlement{}, st.settlements...)
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, err
}
