// Package queue defines the payloads published to the message broker.
package queue

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
)

const (
	SaleCommitted = "sale.committed"
	SaleRefunded  = "sale.refunded"
)

type SaleLine struct {
	ProductID int64           `json:"product_id"`
	SKU       string          `json:"sku"`
	Variant   string          `json:"variant"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SaleCommittedEvent is published after a sale is recorded and stock is
// taken, so downstream consumers (accounting, restock alerts) need no lookup.
type SaleCommittedEvent struct {
	TransactionID string          `json:"transaction_id"`
	EventID       *int64          `json:"event_id,omitempty"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int64           `json:"item_count"`
	PaymentMethod string          `json:"payment_method"`
	Lines         []SaleLine      `json:"lines"`
	CommittedAt   string          `json:"committed_at"`
}

type SaleRefundedEvent struct {
	TransactionID string          `json:"transaction_id"`
	RefundID      string          `json:"refund_id"`
	Total         decimal.Decimal `json:"total"`
	RefundedAt    string          `json:"refunded_at"`
}

func NewSaleCommitted(t model.Transaction) SaleCommittedEvent {
	lines := make([]SaleLine, 0, len(t.Lines))
	for _, l := range t.Lines {
		lines = append(lines, SaleLine{
			ProductID: l.ProductID,
			SKU:       l.SKU,
			Variant:   l.Variant,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return SaleCommittedEvent{
		TransactionID: t.ID,
		EventID:       t.EventID,
		Total:         t.Total,
		ItemCount:     t.ItemCount(),
		PaymentMethod: string(t.PaymentMethod),
		Lines:         lines,
		CommittedAt:   t.Timestamp.UTC().Format(time.RFC3339),
	}
}

func NewSaleRefunded(t model.Transaction) SaleRefundedEvent {
	ev := SaleRefundedEvent{TransactionID: t.ID, RefundID: t.RefundID, Total: t.Total}
	if t.RefundedAt != nil {
		ev.RefundedAt = t.RefundedAt.UTC().Format(time.RFC3339)
	}
	return ev
}
