package model

import "time"

type Role string

const (
	RoleCashier Role = "CASHIER"
	RoleManager Role = "MANAGER"
)

func (r Role) Valid() bool {
	return r == RoleCashier || r == RoleManager
}

// レジ担当者。PINはbcryptハッシュで保存する。
type Operator struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	PINHash     string     `gorm:"column:pin_hash;not null" json:"-"`
	Role        Role       `gorm:"type:varchar(20);not null;default:'CASHIER'" json:"role"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
