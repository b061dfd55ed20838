package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type SettlementStatus string

const (
	SettlementStatusPending SettlementStatus = "PENDING"
	SettlementStatusPaid    SettlementStatus = "PAID"
)

// 公演後のアーティスト/会場の売上分配。参照データとして持つ。
type Settlement struct {
	ID          int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID     *int64           `gorm:"index" json:"event_id"`
	Venue       string           `gorm:"type:varchar(255);not null" json:"venue"`
	City        string           `gorm:"type:varchar(255);not null" json:"city"`
	Date        time.Time        `gorm:"type:date;not null" json:"date"`
	Gross       decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"gross"`
	ArtistShare decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"artist_share"`
	VenueShare  decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"venue_share"`
	Status      SettlementStatus `gorm:"type:varchar(20);not null;index" json:"status"`
}

// grossをアーティスト取り分(artistRate)と会場取り分に分ける。
// 端数はセント単位で丸め、残りを会場側に寄せるので合計は必ずgrossになる。
func SplitGross(gross decimal.Decimal, artistRate decimal.Decimal) (artist decimal.Decimal, venue decimal.Decimal) {
	artist = gross.Mul(artistRate).Round(2)
	venue = gross.Sub(artist)
	return artist, venue
}
