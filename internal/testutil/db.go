// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"storefront-payments/internal/client"
	"storefront-payments/internal/config"
	"storefront-payments/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated sqlite database in a temp dir, configured the
// same way the service configures it.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := client.InitDBClient(&config.Database{Driver: "sqlite", URL: path})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateClothe(t *testing.T, db *gorm.DB, id uint, price int64, stock int32) *model.Clothe {
	t.Helper()

	clothe := &model.Clothe{
		ID:       id,
		Name:     "clothe",
		Price:    decimal.NewFromInt(price),
		Stock:    stock,
		IsActive: true,
	}
	if err := db.WithContext(context.Background()).Create(clothe).Error; err != nil {
		t.Fatalf("create clothe %d: %v", id, err)
	}
	return clothe
}

func StockOf(t *testing.T, db *gorm.DB, id uint) int32 {
	t.Helper()

	var clothe model.Clothe
	if err := db.First(&clothe, id).Error; err != nil {
		t.Fatalf("load clothe %d: %v", id, err)
	}
	return clothe.Stock
}

func Count(t *testing.T, db *gorm.DB, value any) int64 {
	t.Helper()

	var n int64
	if err := db.Model(value).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
