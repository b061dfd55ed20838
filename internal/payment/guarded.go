package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/tjmpn2/merchbooth/internal/obs"
)

var ErrTimeout = errors.New("payment: gateway timed out")

// GuardedGateway bounds every call by a timeout and remembers approved
// charges by idempotency key. A repeated key returns the first approval and
// never reaches the processor again. Declines are not remembered, so a retry
// with another card can use the same key.
type GuardedGateway struct {
	inner   Gateway
	store   IdempotencyStore
	timeout time.Duration
	flight  singleflight.Group
}

func NewGuardedGateway(inner Gateway, store IdempotencyStore, timeout time.Duration) *GuardedGateway {
	return &GuardedGateway{inner: inner, store: store, timeout: timeout}
}

func (g *GuardedGateway) Charge(ctx context.Context, req ChargeRequest) (Result, error) {
	if req.IdempotencyKey == "" {
		return nil, ErrMissingKey
	}

	v, err, _ := g.flight.Do(req.IdempotencyKey, func() (any, error) {
		rec, ok, err := g.store.Get(ctx, req.IdempotencyKey)
		if err != nil {
			//キャッシュが見えないまま課金はしない
			return nil, fmt.Errorf("%w: idempotency store: %v", ErrGatewayUnavailable, err)
		}
		if ok {
			obs.Logger.Info("payment replayed", "key", req.IdempotencyKey, "approved", rec.Approved)
			return rec.Result(), nil
		}

		cctx, cancel := g.withTimeout(ctx)
		defer cancel()

		res, err := g.inner.Charge(cctx, req)
		if err != nil {
			return nil, g.classify(ctx, err)
		}
		if _, approved := res.(Approved); approved {
			if err := g.store.Put(ctx, req.IdempotencyKey, recordOf(res)); err != nil {
				obs.Logger.Warn("payment outcome not cached", "key", req.IdempotencyKey, "err", err)
			}
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Result), nil
}

func (g *GuardedGateway) Refund(ctx context.Context, transactionID string, amount decimal.Decimal) (RefundResult, error) {
	cctx, cancel := g.withTimeout(ctx)
	defer cancel()

	res, err := g.inner.Refund(cctx, transactionID, amount)
	if err != nil {
		return RefundResult{}, g.classify(ctx, err)
	}
	return res, nil
}

// Release forgets the approval stored under key. Used after a compensating
// refund so the refunded charge is never replayed.
func (g *GuardedGateway) Release(ctx context.Context, key string) error {
	if key == "" {
		return ErrMissingKey
	}
	if err := g.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("%w: idempotency store: %v", ErrGatewayUnavailable, err)
	}
	return nil
}

func (g *GuardedGateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

// 呼び出し元のctxが生きているのに期限切れならゲートウェイ側のタイムアウト
func (g *GuardedGateway) classify(parent context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
		return ErrTimeout
	}
	return err
}
