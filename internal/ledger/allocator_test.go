package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"techstore-system/internal/database/models"
)

func TestNextIDEmptyTable(t *testing.T) {
	db := setupTestDB(t)
	alloc := NewAllocator(db)

	assert.Equal(t, int32(1), alloc.NextID(testCtx(), "products", "id"))
}

func TestNextIDReturnsMaxPlusOne(t *testing.T) {
	db := setupTestDB(t)
	seedProduct(t, db, 3, "Mouse", "9.99")
	seedProduct(t, db, 7, "Keyboard", "24.50")

	alloc := NewAllocator(db)
	assert.Equal(t, int32(8), alloc.NextID(testCtx(), "products", "id"))
}

func TestNextIDIsAReadNotAReservation(t *testing.T) {
	db := setupTestDB(t)
	seedProduct(t, db, 1, "Mouse", "9.99")

	alloc := NewAllocator(db)
	first := alloc.NextID(testCtx(), "products", "id")
	second := alloc.NextID(testCtx(), "products", "id")

	// Without an intervening insert both calls see the same MAX.
	assert.Equal(t, first, second)
}

func TestNextIDBranchScoped(t *testing.T) {
	db := setupTestDB(t)
	for _, inv := range []models.Invoice{
		{ID: 1, BranchID: 1, Total: mustDecimal(t, "10.00"), ClientID: 1},
		{ID: 2, BranchID: 1, Total: mustDecimal(t, "20.00"), ClientID: 1},
		{ID: 5, BranchID: 2, Total: mustDecimal(t, "30.00"), ClientID: 2},
	} {
		if err := db.Create(&inv).Error; err != nil {
			t.Fatalf("seed invoice: %v", err)
		}
	}

	alloc := NewAllocator(db)
	assert.Equal(t, int32(3), alloc.NextID(testCtx(), "invoices", "id", 1))
	assert.Equal(t, int32(6), alloc.NextID(testCtx(), "invoices", "id", 2))
	// A branch with no invoices starts numbering at 1.
	assert.Equal(t, int32(1), alloc.NextID(testCtx(), "invoices", "id", 9))
}
