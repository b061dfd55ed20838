package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// カテゴリ/キーワードで絞り込んでID順に返す。在庫はvariant_stocksから埋める。
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}

	// q name/skuを対象
	if kw := strings.TrimSpace(q.Q); kw != "" {
		like := "%" + kw + "%"
		tx = tx.Where("name ILIKE ? OR sku ILIKE ?", like, like)
	}

	var products []model.Product
	if err := tx.Order("id asc").Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	if err := r.fillStock(ctx, products); err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}

	one := []model.Product{p}
	if err := r.fillStock(ctx, one); err != nil {
		return model.Product{}, err
	}
	return one[0], nil
}

// 商品の作成。バリアントごとの在庫行も同じTxで作る。
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			if isUniqueViolation(err) {
				return repo.ErrConflict
			}
			return err
		}

		rows := make([]model.VariantStock, 0, len(p.Variants))
		for _, v := range p.Variants {
			rows = append(rows, model.VariantStock{ProductID: p.ID, Variant: v, Quantity: p.Stock[v]})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return model.Product{}, err
	}
	return p.Clone(), nil
}

// products[i].Stockをvariant_stocksから組み立てる
func (r *ProductGormRepository) fillStock(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	var rows []model.VariantStock
	if err := r.db.WithContext(ctx).Where("product_id IN ?", ids).Find(&rows).Error; err != nil {
		return err
	}

	byProduct := make(map[int64]map[string]int64, len(products))
	for _, row := range rows {
		if byProduct[row.ProductID] == nil {
			byProduct[row.ProductID] = map[string]int64{}
		}
		byProduct[row.ProductID][row.Variant] = row.Quantity
	}
	for i := range products {
		stock := make(map[string]int64, len(products[i].Variants))
		for _, v := range products[i].Variants {
			stock[v] = byProduct[products[i].ID][v]
		}
		products[i].Stock = stock
	}
	return nil
}
