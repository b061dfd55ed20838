package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/tjmpn2/merchbooth/internal/config"
	"github.com/tjmpn2/merchbooth/internal/domain/model"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.IsDev() {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}
	return db, nil
}

// テーブル作成（起動時）
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.VariantStock{},
		&model.Transaction{},
		&model.TransactionLine{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
		&model.Operator{},
		&model.Event{},
		&model.Settlement{},
	); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}

// 公演・精算の参照データを入れる。既にあるIDは触らない。
func SeedReference(db *gorm.DB, events []model.Event, settlements []model.Settlement) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if len(events) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&events).Error; err != nil {
				return fmt.Errorf("db: seed events: %w", err)
			}
		}
		if len(settlements) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&settlements).Error; err != nil {
				return fmt.Errorf("db: seed settlements: %w", err)
			}
		}
		return nil
	})
}
