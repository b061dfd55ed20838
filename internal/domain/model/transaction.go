package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
)

type PaymentMethod string

// 決済はカードのみ
const PaymentMethodCard PaymentMethod = "card"

// 決済成功時にだけ作られる売上記録。IDは決済ゲートウェイが発行する。
// 作成後に変わるのは返金（Status / RefundID / RefundedAt）だけ。
type Transaction struct {
	ID             string            `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Lines          []TransactionLine `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"items"`
	Total          decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"total"`
	EventID        *int64            `gorm:"index" json:"event_id"`
	PaymentMethod  PaymentMethod     `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status         TransactionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	IdempotencyKey string            `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	RefundID       string            `gorm:"type:varchar(64)" json:"refund_id,omitempty"`
	RefundedAt     *time.Time        `json:"refunded_at,omitempty"`
	Timestamp      time.Time         `gorm:"not null;index" json:"timestamp"`
}

// 売上明細（カート明細のスナップショット）
type TransactionLine struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"-"`
	TransactionID string          `gorm:"type:varchar(64);not null;index" json:"-"`
	ProductID     int64           `gorm:"not null;index" json:"product_id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	SKU           string          `gorm:"type:varchar(64);not null" json:"sku"`
	Variant       string          `gorm:"type:varchar(64);not null" json:"variant"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Quantity      int64           `gorm:"not null" json:"quantity"`
}

func (l TransactionLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// カート明細をコピーして売上明細にする
func SnapshotLines(lines []CartLine) []TransactionLine {
	out := make([]TransactionLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, TransactionLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			SKU:       l.SKU,
			Variant:   l.Variant,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	return out
}

func (t Transaction) ItemCount() int64 {
	var n int64
	for _, l := range t.Lines {
		n += l.Quantity
	}
	return n
}

func (t Transaction) IsRefunded() bool {
	return t.Status == TransactionStatusRefunded
}

func (t Transaction) Clone() Transaction {
	cp := t
	cp.Lines = append([]TransactionLine(nil), t.Lines...)
	if t.EventID != nil {
		id := *t.EventID
		cp.EventID = &id
	}
	if t.RefundedAt != nil {
		at := *t.RefundedAt
		cp.RefundedAt = &at
	}
	return cp
}
