package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	"github.com/tjmpn2/merchbooth/internal/infra/memory"
	"github.com/tjmpn2/merchbooth/internal/payment"
	"github.com/tjmpn2/merchbooth/internal/queue"
	repo "github.com/tjmpn2/merchbooth/internal/repository"
	"github.com/tjmpn2/merchbooth/internal/seed"
)

// =====================
// fakes
// =====================

type uuidGen struct{}

func (uuidGen) NewID() string { return uuid.NewString() }

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishSaleCommitted(ctx context.Context, ev queue.SaleCommittedEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockPublisher) PublishSaleRefunded(ctx context.Context, ev queue.SaleRefundedEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type recordingNotifier struct {
	mu    sync.Mutex
	types []string
}

func (n *recordingNotifier) Publish(msgType string, data any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.types = append(n.types, msgType)
}

func (n *recordingNotifier) Types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.types...)
}

// 課金中に割り込むためのゲートウェイ
type hookGateway struct {
	*payment.MockGateway
	beforeCharge func()
}

func (g *hookGateway) Charge(ctx context.Context, req payment.ChargeRequest) (payment.Result, error) {
	if g.beforeCharge != nil {
		g.beforeCharge()
	}
	return g.MockGateway.Charge(ctx, req)
}

// =====================
// fixture
// =====================

type fixture struct {
	store    *memory.Store
	gateway  *hookGateway
	notifier *recordingNotifier
	register *RegisterUsecase
	products *ProductUsecase
	txs      *TransactionUsecase

	//newGuardedFixtureのときだけ
	idem *payment.MemoryIdempotencyStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return buildFixture(t, nil)
}

// 本番と同じくGuardedGatewayを通す
func newGuardedFixture(t *testing.T) *fixture {
	t.Helper()
	idem := payment.NewMemoryIdempotencyStore(time.Hour)
	f := buildFixture(t, func(inner payment.Gateway) payment.Gateway {
		return payment.NewGuardedGateway(inner, idem, time.Second)
	})
	f.idem = idem
	return f
}

func buildFixture(t *testing.T, wrap func(payment.Gateway) payment.Gateway) *fixture {
	t.Helper()

	store := memory.NewStore()
	require.NoError(t, seed.Catalogue(context.Background(), store.Products()))
	store.LoadReference(seed.Events(), seed.Settlements(decimal.RequireFromString("0.70")))

	mg := payment.NewMockGateway(0)
	mg.RefundDelay = 0
	hook := &hookGateway{MockGateway: mg}
	var gw payment.Gateway = hook
	if wrap != nil {
		gw = wrap(hook)
	}
	notifier := &recordingNotifier{}

	return &fixture{
		store:    store,
		gateway:  hook,
		notifier: notifier,
		register: NewRegisterUsecase(RegisterDeps{
			Products:     store.Products(),
			Events:       store.Events(),
			Transactions: store.Transactions(),
			Tx:           store,
			Gateway:      gw,
			IDGen:        uuidGen{},
			Notifier:     notifier,
			TaxRate:      decimal.RequireFromString("0.085"),
		}),
		products: NewProductUsecase(store.Products(), store, 20),
		txs:      NewTransactionUsecase(store.Transactions(), store, gw, nil, notifier),
	}
}

func (f *fixture) stock(t *testing.T, productID int64, variant string) int64 {
	t.Helper()
	p, err := f.store.Products().FindByID(context.Background(), productID)
	require.NoError(t, err)
	return p.StockOf(variant)
}

func (f *fixture) history(t *testing.T) []model.Transaction {
	t.Helper()
	items, err := f.store.Transactions().List(context.Background(), repo.TransactionListFilter{})
	require.NoError(t, err)
	return items
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
