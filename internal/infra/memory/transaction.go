package memory

import (
	"context"
	"time"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
)

type transactionRepo struct {
	s  *Store
	tx *state
}

// 先頭に積む（新しい順を保つ）
func (r *transactionRepo) Create(ctx context.Context, t model.Transaction) error {
	return r.s.with(r.tx, func(st *state) error {
		for _, existing := range st.transactions {
			if existing.ID == t.ID {
				return repo.ErrConflict
			}
			if t.IdempotencyKey != "" && existing.IdempotencyKey == t.IdempotencyKey {
				return repo.ErrConflict
			}
		}
		st.transactions = append([]model.Transaction{t.Clone()}, st.transactions...)
		return nil
	})
}

func (r *transactionRepo) FindByID(ctx context.Context, id string) (model.Transaction, error) {
	var out model.Transaction
	err := r.s.with(r.tx, func(st *state) error {
		for _, t := range st.transactions {
			if t.ID == id {
				out = t.Clone()
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return out, err
}

func (r *transactionRepo) List(ctx context.Context, f repo.TransactionListFilter) ([]model.Transaction, error) {
	out := []model.Transaction{}
	err := r.s.with(r.tx, func(st *state) error {
		for _, t := range st.transactions {
			if f.EventID != nil && (t.EventID == nil || *t.EventID != *f.EventID) {
				continue
			}
			if f.Status != "" && t.Status != f.Status {
				continue
			}
			if f.From != nil && t.Timestamp.Before(*f.From) {
				continue
			}
			if f.To != nil && t.Timestamp.After(*f.To) {
				continue
			}
			out = append(out, t.Clone())
			if f.Limit > 0 && len(out) >= f.Limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *transactionRepo) FindByIdempotencyKey(ctx context.Context, key string) (model.Transaction, bool, error) {
	var out model.Transaction
	found := false
	err := r.s.with(r.tx, func(st *state) error {
		for _, t := range st.transactions {
			if t.IdempotencyKey == key {
				out = t.Clone()
				found = true
				return nil
			}
		}
		return nil
	})
	return out, found, err
}

func (r *transactionRepo) MarkRefunded(ctx context.Context, id string, refundID string, at time.Time) error {
	return r.s.with(r.tx, func(st *state) error {
		for i := range st.transactions {
			//返金できるのはCOMPLETEDだけ
			if st.transactions[i].ID != id || st.transactions[i].Status != model.TransactionStatusCompleted {
				continue
			}
			st.transactions[i].Status = model.TransactionStatusRefunded
			st.transactions[i].RefundID = refundID
			refundedAt := at
			st.transactions[i].RefundedAt = &refundedAt
			return nil
		}
		return repo.ErrNotFound
	})
}
