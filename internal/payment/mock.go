package payment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultChargeDelay = 800 * time.Millisecond
	DefaultRefundDelay = 600 * time.Millisecond
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// MockGateway approves every charge after a fixed delay unless told otherwise.
type MockGateway struct {
	ChargeDelay time.Duration
	RefundDelay time.Duration
	Now         func() time.Time

	mu            sync.Mutex
	declineReason string
	failWith      error
	charges       int
	refunds       int
}

func NewMockGateway(delay time.Duration) *MockGateway {
	return &MockGateway{
		ChargeDelay: delay,
		RefundDelay: DefaultRefundDelay,
		Now:         time.Now,
	}
}

// Decline makes every following charge come back Declined with reason.
// An empty reason restores approvals.
func (g *MockGateway) Decline(reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.declineReason = reason
}

// Fail makes every following call return err. nil clears it.
func (g *MockGateway) Fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failWith = err
}

// Charges reports how many charges reached the processor.
func (g *MockGateway) Charges() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.charges
}

func (g *MockGateway) Refunds() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refunds
}

func (g *MockGateway) Charge(ctx context.Context, req ChargeRequest) (Result, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if err := wait(ctx, g.ChargeDelay); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.charges++
	if g.failWith != nil {
		return nil, g.failWith
	}
	if g.declineReason != "" {
		return Declined{Reason: g.declineReason}, nil
	}

	now := g.now()
	return Approved{
		TransactionID: fmt.Sprintf("sq_%d_%s", now.UnixMilli(), randomBase36(9)),
		Amount:        req.Amount,
		Timestamp:     now,
	}, nil
}

func (g *MockGateway) Refund(ctx context.Context, transactionID string, amount decimal.Decimal) (RefundResult, error) {
	if transactionID == "" {
		return RefundResult{}, fmt.Errorf("payment: refund needs a transaction id")
	}
	if err := wait(ctx, g.RefundDelay); err != nil {
		return RefundResult{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return RefundResult{}, g.failWith
	}
	g.refunds++
	now := g.now()
	return RefundResult{RefundID: "rf_" + strconv.FormatInt(now.UnixMilli(), 10), Timestamp: now}, nil
}

func (g *MockGateway) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// ctxが先に終わったらそのエラーを返す
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func randomBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.IntN(len(base36))]
	}
	return string(b)
}
