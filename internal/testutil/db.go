// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/shop_backend/internal/db"
	"github.com/Skotchmaster/shop_backend/internal/models"
)

// InitTestDB opens a migrated in-memory database. The pool is pinned to a
// single connection because every new sqlite memory connection is empty.
func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

func SeedCategory(t *testing.T, gdb *gorm.DB, id uint, name string) models.Category {
	t.Helper()

	cat := models.Category{ID: id, Name: name}
	if err := gdb.Create(&cat).Error; err != nil {
		t.Fatalf("failed to seed category %q: %v", name, err)
	}
	return cat
}

func SeedProduct(t *testing.T, gdb *gorm.DB, prod models.Product) models.Product {
	t.Helper()

	if err := gdb.Create(&prod).Error; err != nil {
		t.Fatalf("failed to seed product %q: %v", prod.Name, err)
	}
	return prod
}

func CountProducts(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()

	var n int64
	if err := gdb.Model(&models.Product{}).Count(&n).Error; err != nil {
		t.Fatalf("failed to count products: %v", err)
	}
	return n
}

func StrPtr(s string) *string { return &s }
