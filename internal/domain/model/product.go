package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryApparel     Category = "apparel"
	CategoryMusic       Category = "music"
	CategoryAccessories Category = "accessories"
)

// POSのカテゴリタブに出す順番
var Categories = []Category{CategoryApparel, CategoryMusic, CategoryAccessories}

func (c Category) Valid() bool {
	for _, x := range Categories {
		if x == c {
			return true
		}
	}
	return false
}

// 物販の商品。在庫はバリアント（サイズ等）ごとに持つ。
type Product struct {
	ID       int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string          `gorm:"type:varchar(255);not null" json:"name"`
	SKU      string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"sku"`
	Category Category        `gorm:"type:varchar(50);not null;index" json:"category"`
	Price    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Cost     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cost"`
	Image    string          `gorm:"type:varchar(16)" json:"image"`

	//表示順を保つためスライスで持つ
	Variants []string `gorm:"type:jsonb;serializer:json;not null" json:"variants"`

	//variant_stocksテーブルから組み立てる
	Stock map[string]int64 `gorm:"-" json:"stock"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// バリアントごとの在庫（products.stockの代わり）
type VariantStock struct {
	ProductID int64     `gorm:"primaryKey" json:"product_id"`
	Variant   string    `gorm:"primaryKey;type:varchar(64)" json:"variant"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (p Product) HasVariant(variant string) bool {
	for _, v := range p.Variants {
		if v == variant {
			return true
		}
	}
	return false
}

func (p Product) StockOf(variant string) int64 {
	return p.Stock[variant]
}

// IsAvailable reports whether at least one unit of the variant is on hand.
func (p Product) IsAvailable(variant string) bool {
	return p.HasVariant(variant) && p.StockOf(variant) > 0
}

func (p Product) TotalUnits() int64 {
	var n int64
	for _, v := range p.Variants {
		n += p.Stock[v]
	}
	return n
}

// 粗利率（%）。round((1 - cost/price) * 100)
func (p Product) MarginPercent() int64 {
	if p.Price.IsZero() {
		return 0
	}
	return decimal.NewFromInt(1).
		Sub(p.Cost.Div(p.Price)).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// threshold未満のバリアントを表示順で返す
func (p Product) LowStockVariants(threshold int64) []string {
	out := []string{}
	for _, v := range p.Variants {
		if p.Stock[v] < threshold {
			out = append(out, v)
		}
	}
	return out
}

// Clone returns a deep copy so callers never share the stock map.
func (p Product) Clone() Product {
	cp := p
	cp.Variants = append([]string(nil), p.Variants...)
	cp.Stock = make(map[string]int64, len(p.Stock))
	for k, v := range p.Stock {
		cp.Stock[k] = v
	}
	return cp
}
