package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	tx          repo.TransactionManager
	lowStock    int64
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, tx repo.TransactionManager, lowStockThreshold int64) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		tx:          tx,
		lowStock:    lowStockThreshold,
	}
}

// GET /productsの入力
type ListProductsInput struct {
	Category string
	Q        string
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) ([]model.Product, error) {
	cat := strings.ToLower(strings.TrimSpace(in.Category))
	if cat == "all" {
		cat = ""
	}
	if cat != "" && !model.Category(cat).Valid() {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid category")
	}
	if len(in.Q) > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	items, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Category: model.Category(cat),
		Q:        strings.TrimSpace(in.Q),
	})
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// IsAvailable reports whether the variant has at least one unit.
// An unknown product or variant is simply unavailable.
func (u *ProductUsecase) IsAvailable(ctx context.Context, productID int64, variant string) (bool, error) {
	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.IsAvailable(variant), nil
}

// DecrementStock takes amount units of a variant, refusing to go below zero.
func (u *ProductUsecase) DecrementStock(ctx context.Context, productID int64, variant string, amount int64) error {
	if amount <= 0 {
		return NewHTTPError(http.StatusBadRequest, "amount must be > 0")
	}
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return takeStock(ctx, r.Inventory(), []model.TransactionLine{{ProductID: productID, Variant: variant, Quantity: amount}})
	})
}

// 売れた分を減らす。1行でも足りなければ全体をやり直す前提（WithinTxの中で呼ぶ）
func takeStock(ctx context.Context, inv repo.InventoryRepository, lines []model.TransactionLine) error {
	for _, l := range lines {
		ok, err := inv.DecrementStockIfEnough(ctx, l.ProductID, l.Variant, l.Quantity)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUnknownVariant
		}
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: product %d %s", ErrInsufficientStock, l.ProductID, l.Variant)
		}
	}
	return nil
}

type LowStockItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Variant   string `json:"variant"`
	Stock     int64  `json:"stock"`
}

type InventoryRow struct {
	model.Product
	TotalUnits    int64 `json:"total_units"`
	MarginPercent int64 `json:"margin_percent"`
}

type InventorySummary struct {
	ProductCount  int             `json:"product_count"`
	TotalUnits    int64           `json:"total_units"`
	StockValue    decimal.Decimal `json:"stock_value"`
	LowStockLimit int64           `json:"low_stock_threshold"`
	LowStock      []LowStockItem  `json:"low_stock"`
	Products      []InventoryRow  `json:"products"`
}

// Inventory summarises stock levels and margins for the manager view.
func (u *ProductUsecase) Inventory(ctx context.Context, in ListProductsInput) (InventorySummary, error) {
	products, err := u.ListProducts(ctx, in)
	if err != nil {
		return InventorySummary{}, err
	}

	out := InventorySummary{
		ProductCount:  len(products),
		StockValue:    decimal.Zero,
		LowStockLimit: u.lowStock,
		LowStock:      []LowStockItem{},
		Products:      make([]InventoryRow, 0, len(products)),
	}
	for _, p := range products {
		units := p.TotalUnits()
		out.TotalUnits += units
		out.StockValue = out.StockValue.Add(p.Cost.Mul(decimal.NewFromInt(units)))
		out.Products = append(out.Products, InventoryRow{Product: p, TotalUnits: units, MarginPercent: p.MarginPercent()})
		for _, v := range p.LowStockVariants(u.lowStock) {
			out.LowStock = append(out.LowStock, LowStockItem{
				ProductID: p.ID, Name: p.Name, SKU: p.SKU, Variant: v, Stock: p.StockOf(v),
			})
		}
	}
	return out, nil
}

type AdjustStockInput struct {
	Variant  string
	NewStock int64
	Reason   string
}

// AdjustStock sets a variant's count after a physical recount or a delivery,
// recording the delta and an audit entry in the same transaction.
func (u *ProductUsecase) AdjustStock(ctx context.Context, operatorID int64, productID int64, in AdjustStockInput) (model.Product, error) {
	if operatorID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	variant := strings.TrimSpace(in.Variant)
	if variant == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "variant required")
	}
	if in.NewStock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "reason required")
	}

	var updated model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.HasVariant(variant) {
			return ErrUnknownVariant
		}
		before := p.StockOf(variant)

		if err := r.Inventory().SetStock(ctx, productID, variant, in.NewStock); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//履歴を作成（差分）
		now := time.Now()
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:  productID,
			Variant:    variant,
			OperatorID: operatorID,
			Delta:      in.NewStock - before,
			Reason:     reason,
			CreatedAt:  now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//監査ログを作成（在庫更新）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorOperatorID: operatorID,
			Action:          model.AuditActionUpdateStock,
			ResourceType:    model.AuditResourceProduct,
			ResourceID:      fmt.Sprint(productID),
			BeforeJSON:      fmt.Sprintf(`{"variant":%q,"stock":%d}`, variant, before),
			AfterJSON:       fmt.Sprintf(`{"variant":%q,"stock":%d}`, variant, in.NewStock),
			CreatedAt:       now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		updated, err = r.Products().FindByID(ctx, productID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return updated, nil
}
