// Package payment is the card-terminal side of checkout: a Gateway that
// charges and refunds, a mock that behaves like the hosted processor, and a
// guard that adds a deadline and per-key result caching.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount      = errors.New("payment: amount must be positive")
	ErrMissingKey         = errors.New("payment: idempotency key required")
	ErrGatewayUnavailable = errors.New("payment: gateway unavailable")
)

// ChargeRequest is one card charge.
type ChargeRequest struct {
	Amount decimal.Decimal
	// card nonce from the reader
	Token          string
	IdempotencyKey string
}

// Result is either Approved or Declined.
type Result interface {
	isResult()
}

// Approved carries the processor-issued transaction id.
type Approved struct {
	TransactionID string
	Amount        decimal.Decimal
	Timestamp     time.Time
}

type Declined struct {
	Reason string
}

func (Approved) isResult() {}
func (Declined) isResult() {}

type RefundResult struct {
	RefundID  string
	Timestamp time.Time
}

// Gateway charges cards. A declined charge is a Result, not an error;
// errors mean the outcome is unknown or the call never reached the processor.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (Result, error)
	Refund(ctx context.Context, transactionID string, amount decimal.Decimal) (RefundResult, error)
}

// Releaser is implemented by gateways that remember outcomes per key.
// Release drops the outcome for key so the next charge with it reaches the
// processor again. Call it only after the charge has been refunded.
type Releaser interface {
	Release(ctx context.Context, key string) error
}
