package model

import "time"

// 在庫更新、売上、返金など。
type AuditAction string

const (
	//在庫を手動で更新した操作。
	AuditActionUpdateStock AuditAction = "UPDATE_STOCK"
	//決済が確定した売上。
	AuditActionSale AuditAction = "SALE"
	//返金。
	AuditActionRefund AuditAction = "REFUND"
)

// 何に対する操作か
type AuditResourceType string

const (
	//商品に対する操作。
	AuditResourceProduct AuditResourceType = "product"

	//売上に対する操作。
	AuditResourceTransaction AuditResourceType = "transaction"
)

// 監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	//IDは監査ログの主キー
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したレジ担当者のID。0はシステム。
	ActorOperatorID int64 `gorm:"not null;index" json:"actor_operator_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//商品IDまたは決済ID。
	ResourceID string `gorm:"type:varchar(64);not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`

	AfterJSON string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
