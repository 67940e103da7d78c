package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"techstore-system/internal/database/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.MigrateRetailDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, id int32, name, price string) {
	t.Helper()
	p := models.Product{ID: id, Name: name, Brand: "Generic", Price: mustDecimal(t, price)}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product %d: %v", id, err)
	}
}

func seedStock(t *testing.T, db *gorm.DB, productID, branchID, quantity int32) {
	t.Helper()
	inv := models.Inventory{BranchID: branchID, ProductID: productID, Quantity: quantity}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("seed stock for product %d: %v", productID, err)
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	if err := db.Table(table).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func testCtx() context.Context { return context.Background() }
