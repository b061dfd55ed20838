package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusCompleted EventStatus = "completed"
)

// ツアーの公演。売上処理からは参照されるだけ。
type Event struct {
	ID       int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Artist   string      `gorm:"type:varchar(255);not null" json:"artist"`
	Venue    string      `gorm:"type:varchar(255);not null" json:"venue"`
	City     string      `gorm:"type:varchar(255);not null" json:"city"`
	Date     time.Time   `gorm:"type:date;not null;index" json:"date"`
	Status   EventStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Capacity int64       `gorm:"not null" json:"capacity"`

	//終了公演の申告売上（集計値ではない）
	ReportedSales decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"reported_sales"`
}

func (e Event) IsUpcoming() bool {
	return e.Status == EventStatusUpcoming
}
