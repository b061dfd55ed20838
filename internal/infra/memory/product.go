package memory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
)

type productRepo struct {
	s  *Store
	tx *state
}

func (r *productRepo) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	out := []model.Product{}
	needle := strings.ToLower(strings.TrimSpace(q.Q))

	err := r.s.with(r.tx, func(st *state) error {
		for _, id := range st.productOrder {
			p := st.products[id]
			if q.Category != "" && p.Category != q.Category {
				continue
			}
			if needle != "" &&
				!strings.Contains(strings.ToLower(p.Name), needle) &&
				!strings.Contains(strings.ToLower(p.SKU), needle) {
				continue
			}
			out = append(out, p.Clone())
		}
		return nil
	})
	return out, err
}

func (r *productRepo) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.s.with(r.tx, func(st *state) error {
		found, ok := st.products[id]
		if !ok {
			return repo.ErrNotFound
		}
		p = found.Clone()
		return nil
	})
	return p, err
}

func (r *productRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if strings.TrimSpace(p.SKU) == "" {
		return model.Product{}, errors.New("sku required")
	}

	err := r.s.with(r.tx, func(st *state) error {
		for _, existing := range st.products {
			if strings.EqualFold(existing.SKU, p.SKU) {
				return repo.ErrConflict
			}
		}
		if p.ID == 0 {
			st.nextProductID++
			p.ID = st.nextProductID
		} else if _, dup := st.products[p.ID]; dup {
			return repo.ErrConflict
		} else if p.ID > st.nextProductID {
			st.nextProductID = p.ID
		}

		p = p.Clone()
		//バリアントの在庫が無ければ0で埋める
		for _, v := range p.Variants {
			if _, ok := p.Stock[v]; !ok {
				p.Stock[v] = 0
			}
		}
		now := time.Now()
		p.CreatedAt = now
		p.UpdatedAt = now

		st.products[p.ID] = p
		st.productOrder = append(st.productOrder, p.ID)
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return p.Clone(), nil
}
