package model

import "time"

//在庫調整の履歴（手動更新のみ。販売による減算は売上側に残る）

type InventoryAdjustment struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID  int64     `gorm:"not null;index" json:"product_id"`
	Variant    string    `gorm:"type:varchar(64);not null" json:"variant"`
	OperatorID int64     `gorm:"not null;index" json:"operator_id"`
	Delta      int64     `gorm:"not null" json:"delta"`
	Reason     string    `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
