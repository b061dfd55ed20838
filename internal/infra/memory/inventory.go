package memory

import (
	"context"
	"errors"
	"time"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
)

var errInvalidQuantity = errors.New("invalid quantity")

type inventoryRepo struct {
	s  *Store
	tx *state
}

func variantOf(st *state, productID int64, variant string) (model.Product, error) {
	p, ok := st.products[productID]
	if !ok || !p.HasVariant(variant) {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

// 在庫が足りるときだけ減らす
func (r *inventoryRepo) DecrementStockIfEnough(ctx context.Context, productID int64, variant string, qty int64) (bool, error) {
	if qty <= 0 {
		return false, errInvalidQuantity
	}

	ok := false
	err := r.s.with(r.tx, func(st *state) error {
		p, err := variantOf(st, productID, variant)
		if err != nil {
			return err
		}
		if p.Stock[variant] < qty {
			return nil
		}
		p.Stock[variant] -= qty
		p.UpdatedAt = time.Now()
		st.products[productID] = p
		ok = true
		return nil
	})
	return ok, err
}

// 在庫戻し
func (r *inventoryRepo) IncrementStock(ctx context.Context, productID int64, variant string, qty int64) error {
	if qty <= 0 {
		return errInvalidQuantity
	}
	return r.s.with(r.tx, func(st *state) error {
		p, err := variantOf(st, productID, variant)
		if err != nil {
			return err
		}
		p.Stock[variant] += qty
		p.UpdatedAt = time.Now()
		st.products[productID] = p
		return nil
	})
}

// 在庫の現在値を設定
func (r *inventoryRepo) SetStock(ctx context.Context, productID int64, variant string, newStock int64) error {
	if newStock < 0 {
		return errInvalidQuantity
	}
	return r.s.with(r.tx, func(st *state) error {
		p, err := variantOf(st, productID, variant)
		if err != nil {
			return err
		}
		p.Stock[variant] = newStock
		p.UpdatedAt = time.Now()
		st.products[productID] = p
		return nil
	})
}

// 調整履歴作成
func (r *inventoryRepo) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return r.s.with(r.tx, func(st *state) error {
		st.nextAdjID++
		adj.ID = st.nextAdjID
		if adj.CreatedAt.IsZero() {
			adj.CreatedAt = time.Now()
		}
		st.adjustments = append(st.adjustments, adj)
		return nil
	})
}

// Adjustments returns the adjustment history, oldest first.
func (s *Store) Adjustments() []model.InventoryAdjustment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.InventoryAdjustment(nil), s.state.adjustments...)
}
