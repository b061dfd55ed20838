package memory

import (
	"context"
	"strings"
	"time"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
)

type operatorRepo struct {
	s *Store
}

func (r *operatorRepo) Create(ctx context.Context, op *model.Operator) error {
	return r.s.with(nil, func(st *state) error {
		for _, existing := range st.operators {
			if strings.EqualFold(existing.Name, op.Name) {
				return repo.ErrConflict
			}
		}
		st.nextOperatorID++
		op.ID = st.nextOperatorID
		now := time.Now()
		op.CreatedAt = now
		op.UpdatedAt = now
		st.operators[op.ID] = *op
		return nil
	})
}

func (r *operatorRepo) FindByID(ctx context.Context, id int64) (*model.Operator, error) {
	var out *model.Operator
	err := r.s.with(nil, func(st *state) error {
		op, ok := st.operators[id]
		if !ok {
			return repo.ErrNotFound
		}
		out = &op
		return nil
	})
	return out, err
}

func (r *operatorRepo) FindByName(ctx context.Context, name string) (*model.Operator, error) {
	var out *model.Operator
	err := r.s.with(nil, func(st *state) error {
		for _, op := range st.operators {
			if strings.EqualFold(op.Name, name) {
				found := op
				out = &found
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return out, err
}

func (r *operatorRepo) Update(ctx context.Context, op *model.Operator) error {
	return r.s.with(nil, func(st *state) error {
		if _, ok := st.operators[op.ID]; !ok {
			return repo.ErrNotFound
		}
		op.UpdatedAt = time.Now()
		st.operators[op.ID] = *op
		return nil
	})
}
