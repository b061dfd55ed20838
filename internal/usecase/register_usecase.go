package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	"github.com/tjmpn2/merchbooth/internal/obs"
	"github.com/tjmpn2/merchbooth/internal/payment"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
)

// RegisterUsecase is the booth's one register: the cart being rung up,
// the selected show and checkout. At most one checkout runs at a time and the
// cart cannot change while it does.
type RegisterUsecase struct {
	products     repo.ProductRepository
	events       repo.EventRepository
	transactions repo.TransactionRepository
	tx           repo.TransactionManager
	gateway      payment.Gateway
	idGen        IDGenerator
	taxRate      decimal.Decimal
	announce     announcer

	mu      sync.Mutex
	cart    *model.Cart
	eventID *int64

	processing atomic.Bool
}

type RegisterDeps struct {
	Products     repo.ProductRepository
	Events       repo.EventRepository
	Transactions repo.TransactionRepository
	Tx           repo.TransactionManager
	Gateway      payment.Gateway
	IDGen        IDGenerator
	Publisher    SalePublisher
	Notifier     LiveNotifier
	TaxRate      decimal.Decimal
}

// DI
func NewRegisterUsecase(d RegisterDeps) *RegisterUsecase {
	return &RegisterUsecase{
		products:     d.Products,
		events:       d.Events,
		transactions: d.Transactions,
		tx:           d.Tx,
		gateway:      d.Gateway,
		idGen:        d.IDGen,
		taxRate:      d.TaxRate,
		announce:     announcer{publisher: d.Publisher, notifier: d.Notifier},
		cart:         model.NewCart(),
	}
}

type CartLineView struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Variant   string          `json:"variant"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartView is the cart as the register screen shows it. Tax is for display;
// the amount charged is Subtotal.
type CartView struct {
	Items      []CartLineView  `json:"items"`
	ItemCount  int64           `json:"item_count"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	EventID    *int64          `json:"event_id"`
	Processing bool            `json:"processing"`
}

// Quote splits subtotal into tax and grand total at rate.
func Quote(subtotal, rate decimal.Decimal) (tax, total decimal.Decimal) {
	tax = subtotal.Mul(rate).Round(2)
	return tax, subtotal.Add(tax)
}

// mu保持中に呼ぶ
func (u *RegisterUsecase) viewLocked() CartView {
	lines := u.cart.Lines()
	items := make([]CartLineView, 0, len(lines))
	for _, l := range lines {
		items = append(items, CartLineView{
			ProductID: l.ProductID,
			Name:      l.Name,
			SKU:       l.SKU,
			Variant:   l.Variant,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
		})
	}
	subtotal := u.cart.Total()
	tax, total := Quote(subtotal, u.taxRate)
	var eventID *int64
	if u.eventID != nil {
		id := *u.eventID
		eventID = &id
	}
	return CartView{
		Items:      items,
		ItemCount:  u.cart.ItemCount(),
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      total,
		EventID:    eventID,
		Processing: u.processing.Load(),
	}
}

func (u *RegisterUsecase) Cart(ctx context.Context) CartView {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.viewLocked()
}

// mutate runs fn on the cart unless a checkout is in flight.
func (u *RegisterUsecase) mutate(fn func(c *model.Cart) error) (CartView, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.processing.Load() {
		return CartView{}, ErrCheckoutInProgress
	}
	if err := fn(u.cart); err != nil {
		return CartView{}, err
	}
	return u.viewLocked(), nil
}

// AddToCart adds one unit of the variant. The product must have the variant
// in stock; the cart itself does not cap quantity at stock.
func (u *RegisterUsecase) AddToCart(ctx context.Context, productID int64, variant string) (CartView, error) {
	if productID <= 0 {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	variant = strings.TrimSpace(variant)
	if variant == "" {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "variant required")
	}
	if u.processing.Load() {
		return CartView{}, ErrCheckoutInProgress
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartView{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.HasVariant(variant) {
		return CartView{}, ErrUnknownVariant
	}
	if !p.IsAvailable(variant) {
		return CartView{}, ErrOutOfStock
	}

	return u.mutate(func(c *model.Cart) error {
		c.Add(p, variant)
		return nil
	})
}

func (u *RegisterUsecase) UpdateQuantity(ctx context.Context, productID int64, variant string, delta int64) (CartView, error) {
	if delta == 0 {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "delta must not be 0")
	}
	return u.mutate(func(c *model.Cart) error {
		c.UpdateQuantity(productID, strings.TrimSpace(variant), delta)
		return nil
	})
}

func (u *RegisterUsecase) RemoveFromCart(ctx context.Context, productID int64, variant string) (CartView, error) {
	return u.mutate(func(c *model.Cart) error {
		c.Remove(productID, strings.TrimSpace(variant))
		return nil
	})
}

func (u *RegisterUsecase) ClearCart(ctx context.Context) (CartView, error) {
	return u.mutate(func(c *model.Cart) error {
		c.Clear()
		return nil
	})
}

// SelectEvent stamps an upcoming show onto the following sales. nil clears it.
func (u *RegisterUsecase) SelectEvent(ctx context.Context, eventID *int64) (CartView, error) {
	if eventID != nil {
		ev, err := u.events.FindByID(ctx, *eventID)
		if errors.Is(err, repo.ErrNotFound) {
			return CartView{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return CartView{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ev.IsUpcoming() {
			return CartView{}, NewHTTPError(http.StatusBadRequest, "event is not upcoming")
		}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.processing.Load() {
		return CartView{}, ErrCheckoutInProgress
	}
	if eventID == nil {
		u.eventID = nil
	} else {
		id := *eventID
		u.eventID = &id
	}
	return u.viewLocked(), nil
}

type CheckoutInput struct {
	OperatorID int64
	// 端末が読んだカードのトークン
	Token string
	// 空ならここで採番する。同じキーの再送は同じ売上を返す。
	IdempotencyKey string
}

// Checkout charges the cart subtotal and, only on approval, records the sale,
// takes the stock and empties the cart. A failed charge leaves cart,
// inventory and history exactly as they were.
func (u *RegisterUsecase) Checkout(ctx context.Context, in CheckoutInput) (model.Transaction, error) {
	if !u.processing.CompareAndSwap(false, true) {
		return model.Transaction{}, ErrCheckoutInProgress
	}
	defer u.processing.Store(false)

	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 64 {
		return model.Transaction{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}
	if key != "" {
		existing, found, err := u.transactions.FindByIdempotencyKey(ctx, key)
		if err != nil {
			return model.Transaction{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			return existing, nil
		}
	} else {
		key = u.idGen.NewID()
	}

	//以降カートは変わらない
	u.mu.Lock()
	lines := u.cart.Lines()
	total := u.cart.Total()
	var eventID *int64
	if u.eventID != nil {
		id := *u.eventID
		eventID = &id
	}
	u.mu.Unlock()

	if len(lines) == 0 {
		return model.Transaction{}, ErrEmptyCart
	}
	if err := u.precheckStock(ctx, lines); err != nil {
		return model.Transaction{}, err
	}

	res, err := u.gateway.Charge(ctx, payment.ChargeRequest{Amount: total, Token: in.Token, IdempotencyKey: key})
	if err != nil {
		obs.Logger.Warn("charge failed", "key", key, "err", err)
		return model.Transaction{}, &PaymentError{Reason: err.Error(), Err: err}
	}
	approved, ok := res.(payment.Approved)
	if !ok {
		reason := "declined"
		if d, isDecline := res.(payment.Declined); isDecline && d.Reason != "" {
			reason = d.Reason
		}
		obs.Logger.Info("charge declined", "key", key, "reason", reason)
		return model.Transaction{}, &PaymentError{Reason: reason}
	}

	//同じキーで別の金額の承認が返ってきた（カートが変わった再送）
	if !approved.Amount.Equal(total) {
		obs.Logger.Error("replayed approval amount mismatch",
			"key", key, "transaction_id", approved.TransactionID,
			"approved", approved.Amount.StringFixed(2), "total", total.StringFixed(2))
		return model.Transaction{}, NewHTTPError(http.StatusConflict, "idempotency_key already used for a different amount")
	}

	t := model.Transaction{
		ID:             approved.TransactionID,
		Lines:          model.SnapshotLines(lines),
		Total:          total,
		EventID:        eventID,
		PaymentMethod:  model.PaymentMethodCard,
		Status:         model.TransactionStatusCompleted,
		IdempotencyKey: key,
		Timestamp:      approved.Timestamp,
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Transactions().Create(ctx, t); err != nil {
			return err
		}
		if err := takeStock(ctx, r.Inventory(), t.Lines); err != nil {
			return err
		}
		after, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("audit sale: %w", err)
		}
		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorOperatorID: in.OperatorID,
			Action:          model.AuditActionSale,
			ResourceType:    model.AuditResourceTransaction,
			ResourceID:      t.ID,
			AfterJSON:       string(after),
			CreatedAt:       t.Timestamp,
		})
	})
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			//同じキーの売上が先に確定していた
			if existing, found, ferr := u.transactions.FindByIdempotencyKey(ctx, key); ferr == nil && found {
				u.clearAfterSale()
				return existing, nil
			}
		}
		u.compensate(ctx, t)
		if errors.Is(err, ErrInsufficientStock) {
			return model.Transaction{}, err
		}
		return model.Transaction{}, fmt.Errorf("record sale %s: %w", t.ID, err)
	}

	u.clearAfterSale()
	obs.Logger.Info("sale committed", "transaction_id", t.ID, "total", t.Total.StringFixed(2), "items", t.ItemCount())
	u.announce.saleCommitted(ctx, t)
	return t, nil
}

func (u *RegisterUsecase) clearAfterSale() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.cart.Clear()
}

// 課金前に在庫を確認（確定時も条件付き減算でもう一度見る）
func (u *RegisterUsecase) precheckStock(ctx context.Context, lines []model.CartLine) error {
	for _, l := range lines {
		p, err := u.products.FindByID(ctx, l.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUnknownVariant
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.HasVariant(l.Variant) {
			return ErrUnknownVariant
		}
		if p.StockOf(l.Variant) < l.Quantity {
			return fmt.Errorf("%w: %s %s has %d, cart wants %d",
				ErrInsufficientStock, p.SKU, l.Variant, p.StockOf(l.Variant), l.Quantity)
		}
	}
	return nil
}

// 課金済みで記録できなかった売上を返金する
func (u *RegisterUsecase) compensate(ctx context.Context, t model.Transaction) {
	rctx := context.WithoutCancel(ctx)
	res, err := u.gateway.Refund(rctx, t.ID, t.Total)
	if err != nil {
		obs.Logger.Error("compensating refund failed", "transaction_id", t.ID, "total", t.Total.StringFixed(2), "err", err)
		return
	}
	obs.Logger.Warn("sale not recorded, charge refunded", "transaction_id", t.ID, "refund_id", res.RefundID)

	//返金済みの承認を再送で使わせない
	if rel, ok := u.gateway.(payment.Releaser); ok {
		if err := rel.Release(rctx, t.IdempotencyKey); err != nil {
			obs.Logger.Error("refunded charge still cached", "transaction_id", t.ID, "key", t.IdempotencyKey, "err", err)
		}
	}
}
