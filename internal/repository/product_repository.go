package repository

import (
	"context"
	"errors"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一意制約違反（同じ決済IDや冪等キーの二重登録など）
var ErrConflict = errors.New("conflict")

// 一覧検索
type ProductListQuery struct {
	//空なら全カテゴリ
	Category model.Category
	//name / sku の部分一致（大文字小文字を区別しない）
	Q string
}

// 商品の保存・取得だけを約束。在庫の変更はInventoryRepository経由。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	Create(ctx context.Context, p model.Product) (model.Product, error)
}
