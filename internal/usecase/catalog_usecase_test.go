package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	"github.com/tjmpn2/merchbooth/internal/queue"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
	"github.com/tjmpn2/merchbooth/internal/seed"
)

// =====================
// ProductUsecase
// =====================

func TestProduct_ListProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, err := f.products.ListProducts(ctx, ListProductsInput{Category: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 6)

	apparel, err := f.products.ListProducts(ctx, ListProductsInput{Category: "Apparel"})
	require.NoError(t, err)
	assert.Len(t, apparel, 3)

	found, err := f.products.ListProducts(ctx, ListProductsInput{Q: "vn-"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Vinyl LP", found[0].Name)

	_, err = f.products.ListProducts(ctx, ListProductsInput{Category: "food"})
	requireHTTPStatus(t, err, http.StatusBadRequest)

	_, err = f.products.ListProducts(ctx, ListProductsInput{Q: strings.Repeat("x", 101)})
	requireHTTPStatus(t, err, http.StatusBadRequest)
}

func TestProduct_GetAndAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.products.GetProduct(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "HD-2026", p.SKU)

	_, err = f.products.GetProduct(ctx, 0)
	requireHTTPStatus(t, err, http.StatusBadRequest)
	_, err = f.products.GetProduct(ctx, 42)
	requireHTTPStatus(t, err, http.StatusNotFound)

	ok, err := f.products.IsAvailable(ctx, 2, "S")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.products.IsAvailable(ctx, 2, "2XL")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = f.products.IsAvailable(ctx, 42, "S")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProduct_DecrementStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.products.DecrementStock(ctx, 3, "Limited Edition", 49))
	assert.Equal(t, int64(1), f.stock(t, 3, "Limited Edition"))

	//在庫は負にならない
	err := f.products.DecrementStock(ctx, 3, "Limited Edition", 2)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, int64(1), f.stock(t, 3, "Limited Edition"))

	err = f.products.DecrementStock(ctx, 3, "Deluxe", 1)
	assert.ErrorIs(t, err, ErrUnknownVariant)

	err = f.products.DecrementStock(ctx, 3, "Standard", 0)
	requireHTTPStatus(t, err, http.StatusBadRequest)
}

func TestProduct_Inventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sum, err := f.products.Inventory(ctx, ListProductsInput{})
	require.NoError(t, err)
	assert.Equal(t, 6, sum.ProductCount)
	assert.Equal(t, int64(1755), sum.TotalUnits)
	assert.True(t, sum.StockValue.Equal(dec("17880")), sum.StockValue.String())
	assert.Equal(t, int64(20), sum.LowStockLimit)
	assert.Empty(t, sum.LowStock)
	require.Len(t, sum.Products, 6)
	assert.Equal(t, int64(365), sum.Products[0].TotalUnits)
	assert.Equal(t, int64(66), sum.Products[0].MarginPercent)

	require.NoError(t, f.store.Inventory().SetStock(ctx, 2, "XL", 3))
	sum, err = f.products.Inventory(ctx, ListProductsInput{})
	require.NoError(t, err)
	require.Len(t, sum.LowStock, 1)
	assert.Equal(t, LowStockItem{ProductID: 2, Name: "Hoodie", SKU: "HD-2026", Variant: "XL", Stock: 3}, sum.LowStock[0])
}

func TestProduct_AdjustStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.products.AdjustStock(ctx, 2, 1, AdjustStockInput{Variant: "XL", NewStock: 80, Reason: "delivery"})
	require.NoError(t, err)
	assert.Equal(t, int64(80), p.StockOf("XL"))

	adjs := f.store.Adjustments()
	require.Len(t, adjs, 1)
	assert.Equal(t, int64(5), adjs[0].Delta)
	assert.Equal(t, int64(2), adjs[0].OperatorID)
	assert.Equal(t, "delivery", adjs[0].Reason)

	action := model.AuditActionUpdateStock
	audits, err := f.store.AuditLogs().List(ctx, repo.AuditLogFilter{Action: &action})
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, "1", audits[0].ResourceID)
	assert.JSONEq(t, `{"variant":"XL","stock":75}`, audits[0].BeforeJSON)
	assert.JSONEq(t, `{"variant":"XL","stock":80}`, audits[0].AfterJSON)
}

func TestProduct_AdjustStock_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name      string
		operator  int64
		productID int64
		in        AdjustStockInput
		status    int
	}{
		{"no operator", 0, 1, AdjustStockInput{Variant: "M", NewStock: 1, Reason: "count"}, http.StatusUnauthorized},
		{"bad product", 1, 0, AdjustStockInput{Variant: "M", NewStock: 1, Reason: "count"}, http.StatusBadRequest},
		{"no variant", 1, 1, AdjustStockInput{NewStock: 1, Reason: "count"}, http.StatusBadRequest},
		{"negative", 1, 1, AdjustStockInput{Variant: "M", NewStock: -1, Reason: "count"}, http.StatusBadRequest},
		{"no reason", 1, 1, AdjustStockInput{Variant: "M", NewStock: 1}, http.StatusBadRequest},
		{"missing product", 1, 77, AdjustStockInput{Variant: "M", NewStock: 1, Reason: "count"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.products.AdjustStock(ctx, tc.operator, tc.productID, tc.in)
			requireHTTPStatus(t, err, tc.status)
		})
	}

	_, err := f.products.AdjustStock(ctx, 1, 1, AdjustStockInput{Variant: "3XL", NewStock: 1, Reason: "count"})
	assert.ErrorIs(t, err, ErrUnknownVariant)

	assert.Empty(t, f.store.Adjustments())
	assert.Equal(t, int64(100), f.stock(t, 1, "M"))
}

// =====================
// TransactionUsecase
// =====================

func sell(t *testing.T, f *fixture, productID int64, variant string) model.Transaction {
	t.Helper()
	ctx := context.Background()
	_, err := f.register.AddToCart(ctx, productID, variant)
	require.NoError(t, err)
	tx, err := f.register.Checkout(ctx, CheckoutInput{OperatorID: 1})
	require.NoError(t, err)
	return tx
}

func TestTransaction_Refund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sale := sell(t, f, 2, "M")
	assert.Equal(t, int64(59), f.stock(t, 2, "M"))

	refunded, err := f.txs.Refund(ctx, 2, sale.ID)
	require.NoError(t, err)
	assert.True(t, refunded.IsRefunded())
	assert.NotEmpty(t, refunded.RefundID)
	require.NotNil(t, refunded.RefundedAt)
	assert.Equal(t, int64(60), f.stock(t, 2, "M"))
	assert.Equal(t, 1, f.gateway.Refunds())

	action := model.AuditActionRefund
	audits, err := f.store.AuditLogs().List(ctx, repo.AuditLogFilter{Action: &action})
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, int64(2), audits[0].ActorOperatorID)
	assert.Equal(t, sale.ID, audits[0].ResourceID)
	var before, after model.Transaction
	require.NoError(t, json.Unmarshal([]byte(audits[0].BeforeJSON), &before))
	require.NoError(t, json.Unmarshal([]byte(audits[0].AfterJSON), &after))
	assert.Equal(t, model.TransactionStatusCompleted, before.Status)
	assert.Equal(t, model.TransactionStatusRefunded, after.Status)

	_, err = f.txs.Refund(ctx, 2, sale.ID)
	requireHTTPStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, 1, f.gateway.Refunds())
	assert.Equal(t, int64(60), f.stock(t, 2, "M"))

	assert.Equal(t, []string{queue.SaleCommitted, queue.SaleRefunded}, f.notifier.Types())
}

func TestTransaction_Refund_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.txs.Refund(ctx, 0, "sq_1")
	requireHTTPStatus(t, err, http.StatusUnauthorized)
	_, err = f.txs.Refund(ctx, 1, "sq_missing")
	requireHTTPStatus(t, err, http.StatusNotFound)

	sale := sell(t, f, 4, "18x24")
	f.gateway.Fail(assert.AnError)
	_, err = f.txs.Refund(ctx, 1, sale.ID)
	assert.ErrorIs(t, err, ErrPaymentFailed)

	got, err := f.txs.Get(ctx, sale.ID)
	require.NoError(t, err)
	assert.False(t, got.IsRefunded())
	assert.Equal(t, int64(299), f.stock(t, 4, "18x24"))
}

// =====================
// AuditLogUsecase
// =====================
func TestAuditLog_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewAuditLogUsecase(f.store.AuditLogs())

	sale := sell(t, f, 2, "M")
	_, err := f.txs.Refund(ctx, 2, sale.ID)
	require.NoError(t, err)

	all, err := uc.List(ctx, repo.AuditLogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	//新しい順
	assert.Equal(t, model.AuditActionRefund, all[0].Action)
	assert.Equal(t, model.AuditActionSale, all[1].Action)

	action := model.AuditActionSale
	rt := model.AuditResourceTransaction
	sales, err := uc.List(ctx, repo.AuditLogFilter{Action: &action, ResourceType: &rt, ResourceID: &sale.ID})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, sale.ID, sales[0].ResourceID)

	page, err := uc.List(ctx, repo.AuditLogFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, model.AuditActionSale, page[0].Action)
}

func TestAuditLog_List_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewAuditLogUsecase(f.store.AuditLogs())

	bad := model.AuditAction("DELETE")
	_, err := uc.List(ctx, repo.AuditLogFilter{Action: &bad})
	requireHTTPStatus(t, err, http.StatusBadRequest)

	badType := model.AuditResourceType("operator")
	_, err = uc.List(ctx, repo.AuditLogFilter{ResourceType: &badType})
	requireHTTPStatus(t, err, http.StatusBadRequest)

	_, err = uc.List(ctx, repo.AuditLogFilter{Offset: -1})
	requireHTTPStatus(t, err, http.StatusBadRequest)

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	_, err = uc.List(ctx, repo.AuditLogFilter{CreatedFrom: &from, CreatedTo: &to})
	requireHTTPStatus(t, err, http.StatusBadRequest)
}

func TestTransaction_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := sell(t, f, 4, "18x24")
	second := sell(t, f, 5, "Standard")

	items, err := f.txs.List(ctx, repo.TransactionListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)

	_, err = f.txs.List(ctx, repo.TransactionListFilter{Limit: 501})
	requireHTTPStatus(t, err, http.StatusBadRequest)
	_, err = f.txs.List(ctx, repo.TransactionListFilter{Status: "VOID"})
	requireHTTPStatus(t, err, http.StatusBadRequest)

	from := time.Now()
	to := from.Add(-time.Hour)
	_, err = f.txs.List(ctx, repo.TransactionListFilter{From: &from, To: &to})
	requireHTTPStatus(t, err, http.StatusBadRequest)

	_, err = f.txs.Get(ctx, "")
	requireHTTPStatus(t, err, http.StatusBadRequest)
}

// =====================
// Dashboard / Event / Settlement
// =====================

func TestDashboard_ExcludesRefundedSales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sell(t, f, 1, "L")
	sell(t, f, 1, "L")
	hoodie := sell(t, f, 2, "L")
	_, err := f.txs.Refund(ctx, 1, hoodie.ID)
	require.NoError(t, err)

	d, err := NewDashboardUsecase(f.store.Transactions(), f.store.Events()).Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, d.TransactionCount)
	assert.True(t, d.SalesTotal.Equal(dec("70")))
	assert.True(t, d.AverageTransaction.Equal(dec("35")))
	assert.Equal(t, int64(2), d.ItemsSold)
	require.Len(t, d.TopSellers, 1)
	assert.Equal(t, "TS-2026", d.TopSellers[0].SKU)
	assert.Len(t, d.Recent, 3)
	require.Len(t, d.UpcomingEvents, 3)
	assert.Equal(t, int64(1), d.UpcomingEvents[0].ID)
}

func TestSummarizeSales_TopSellersOrder(t *testing.T) {
	line := func(id int64, qty int64, price string) model.TransactionLine {
		return model.TransactionLine{ProductID: id, SKU: "P", Quantity: qty, UnitPrice: dec(price)}
	}
	txs := []model.Transaction{
		{Status: model.TransactionStatusCompleted, Total: dec("100"), Lines: []model.TransactionLine{line(1, 1, "40"), line(2, 3, "20")}},
		{Status: model.TransactionStatusCompleted, Total: dec("33.33"), Lines: []model.TransactionLine{line(3, 3, "11.11")}},
		{Status: model.TransactionStatusCompleted, Total: dec("15"), Lines: []model.TransactionLine{line(4, 1, "15")}},
		{Status: model.TransactionStatusCompleted, Total: dec("5"), Lines: []model.TransactionLine{line(5, 1, "5")}},
	}

	d := summarizeSales(txs)
	assert.Equal(t, 4, d.TransactionCount)
	assert.Equal(t, int64(9), d.ItemsSold)
	assert.True(t, d.AverageTransaction.Equal(dec("38.33")))
	require.Len(t, d.TopSellers, 4)
	//同数ならID順
	assert.Equal(t, []int64{2, 3, 1, 4}, []int64{d.TopSellers[0].ProductID, d.TopSellers[1].ProductID, d.TopSellers[2].ProductID, d.TopSellers[3].ProductID})
	assert.True(t, d.TopSellers[0].Revenue.Equal(dec("60")))

	empty := summarizeSales(nil)
	assert.True(t, empty.AverageTransaction.IsZero())
	assert.NotNil(t, empty.TopSellers)
}

func TestEvent_Usecase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := NewEventUsecase(f.store.Events())

	all, err := u.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	done, err := u.List(ctx, "COMPLETED")
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "House of Blues", done[0].Venue)

	_, err = u.List(ctx, "cancelled")
	requireHTTPStatus(t, err, http.StatusBadRequest)

	next, err := u.Upcoming(ctx, 2)
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, int64(1), next[0].ID)
	assert.Equal(t, int64(2), next[1].ID)

	ev, err := u.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Brooklyn Steel", ev.Venue)
	_, err = u.Get(ctx, 0)
	requireHTTPStatus(t, err, http.StatusBadRequest)
	_, err = u.Get(ctx, 99)
	requireHTTPStatus(t, err, http.StatusNotFound)
}

func TestSettlement_Summary(t *testing.T) {
	f := newFixture(t)
	out, err := NewSettlementUsecase(f.store.Settlements(), dec("0.70")).List(context.Background())
	require.NoError(t, err)

	assert.Len(t, out.Items, 3)
	assert.True(t, out.Summary.TotalGross.Equal(dec("58750")))
	assert.True(t, out.Summary.ArtistShare.Equal(dec("41125")))
	assert.True(t, out.Summary.VenueShare.Equal(dec("17625")))
	assert.True(t, out.Summary.PendingPayout.Equal(dec("12450")))

	s := Summarize(seed.Settlements(dec("0.5")), dec("0.5"))
	assert.True(t, s.ArtistShare.Add(s.VenueShare).Equal(s.TotalGross))
}
