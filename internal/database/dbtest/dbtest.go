// Package dbtest opens an isolated SQLite database per test and seeds the
// catalog rows the engine reads but does not own.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"resto-system/internal/database"
	"resto-system/internal/database/models"
)

func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "pos.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	// One connection avoids SQLITE_BUSY between writers and serializes every
	// transaction.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func Branch(t testing.TB, db *gorm.DB, name string) models.Branch {
	t.Helper()
	b := models.Branch{BranchName: name, Address: name + " street"}
	mustCreate(t, db, &b)
	return b
}

func Table(t testing.TB, db *gorm.DB, branchID, number int32) models.DiningTable {
	t.Helper()
	tbl := models.DiningTable{BranchID: branchID, TableNumber: number, State: models.TableFree}
	mustCreate(t, db, &tbl)
	return tbl
}

func Product(t testing.TB, db *gorm.DB, code string, price int64, active bool) models.Product {
	t.Helper()
	p := models.Product{
		ProductCode: code,
		ProductName: "Product " + code,
		SalePrice:   decimal.NewFromInt(price),
		IsActive:    active,
	}
	mustCreate(t, db, &p)
	return p
}

func Stock(t testing.TB, db *gorm.DB, productID, branchID, quantity, threshold int32) models.InventoryRecord {
	t.Helper()
	rec := models.InventoryRecord{
		ProductID:      productID,
		BranchID:       branchID,
		Quantity:       quantity,
		AlertThreshold: threshold,
	}
	mustCreate(t, db, &rec)
	return rec
}

func mustCreate(t testing.TB, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}
