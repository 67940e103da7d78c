package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techstore-system/internal/database/models"
)

func TestCheckoutEmptyCart(t *testing.T) {
	db := setupTestDB(t)
	sales := NewSales(db)

	_, err := sales.Checkout(testCtx(), 1, 1, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutRejectsNonPositiveQuantities(t *testing.T) {
	db := setupTestDB(t)
	seedProduct(t, db, 1, "Mouse", "9.99")
	seedStock(t, db, 1, 1, 5)
	sales := NewSales(db)

	for _, qty := range []int32{0, -2} {
		_, err := sales.Checkout(testCtx(), 1, 1, []CartLine{{ProductID: 1, Quantity: qty}})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	assert.Equal(t, int64(0), countRows(t, db, "invoices"))
}

func TestCheckoutUnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	sales := NewSales(db)

	_, err := sales.Checkout(testCtx(), 1, 1, []CartLine{{ProductID: 42, Quantity: 1}})
	var unavailable *ProductUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, int32(42), unavailable.ProductID)
	assert.Equal(t, int32(1), unavailable.BranchID)
}

func TestCheckoutProductStockedElsewhereIsUnavailable(t *testing.T) {
	db := setupTestDB(t)
	seedProduct(t, db, 1, "Mouse", "9.99")
	seedStock(t, db, 1, 2, 5)
	sales := NewSales(db)

	// Stock at branch 2 does not make the product sellable at branch 1.
	_, err := sales.Checkout(testCtx(), 1, 1, []CartLine{{ProductID: 1, Quantity: 1}})
	var unavailable *ProductUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	seedProduct(t, db, 1, "Mouse", "9.99")
	seedStock(t, db, 1, 1, 3)
	sales := NewSales(db)

	_, err := sales.Checkout(testCtx(), 1, 1, []CartLine{{ProductID: 1, Quantity: 5}})
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int32(3), insufficient.Available)
	assert.Equal(t, int32(5), insufficient.Requested)
	assert.Contains(t, insufficient.Error(), "Available: 3, Requested: 5")

	// Validation failure leaves the database untouched.
	assert.Equal(t, int64(0), countRows(t, db, "invoices"))
	assert.Equal(t, int64(0), countRows(t, db, "invoice_details"))
	assert.Equal(t, int32(3), NewInventory(db).GetQuantity(testCtx(), 1, 1))
}

func TestCheckoutCommitsInvoiceAndDecrementsStock(t *testing.T) {
	db := setupTestDB(t)
	seedProduct(t, db, 1, "Mouse", "9.99")
	seedStock(t, db, 1, 1, 3)
	sales := NewSales(db)

	invoiceID, err := sales.Checkout(testCtx(), 7, 1, []CartLine{{ProductID: 1, Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, int32(1), invoiceID)
	assert.Equal(t, int32(1), NewInventory(db).GetQuantity(testCtx(), 1, 1))

	var invoice models.Invoice
	require.NoError(t, db.First(&invoice, "id = ? AND branch_id = ?", invoiceID, 1).Error)
	assert.Equal(t, int32(7), invoice.ClientID)
	assert.True(t, invoice.Total.Equal(mustDecimal(t, "19.98")))

	var detail models.InvoiceDetail
	require.NoError(t, db.First(&detail, "invoice_id = ? AND branch_id = ?", invoiceID, 1).Error)
	assert.Equal(t, int32(2), detail.Quantity)
	assert.True(t, detail.UnitPrice.Equal(mustDecimal(t, "9.99")))
	assert.True(t, detail.Subtotal.Equal(mustDecimal(t, "19.98")))
}

func TestCheckoutMultiLineTotals(t *testing.T) {
	db := setupTestDB(t)
	seedProduct(t, db, 1, "Mouse", "9.99")
	seedProduct(t, db, 2, "Keyboard", "24.50")
	seedStock(t, db, 1, 1, 10)
	seedStock(t, db, 2, 1, 10)
	sales := NewSales(db)

	invoiceID, err := sales.Checkout(testCtx(), 1, 1, []CartLine{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 2},
	})
	require.NoError(t, err)

	var invoice models.Invoice
	require.NoError(t, db.First(&invoice, "id = ? AND branch_id = ?", invoiceID, 1).Error)
	// 3 * 9.99 + 2 * 24.50
	assert.True(t, invoice.Total.Equal(mustDecimal(t, "78.97")))
	assert.Equal(t, int64(2), countRows(t, db, "invoice_details"))

	inv := NewInventory(db)
	assert.Equal(t, int32(7), inv.GetQuantity(testCtx(), 1, 1))
	assert.Equal(t, int32(8), inv.GetQuantity(testCtx(), 2, 1))
}

func TestCheckoutMixedCartIsAllOrNothing(t *testing.T) {
	db := setupTestDB(t)
	seedProduct(t, db, 1, "Mouse", "9.99")
	seedStock(t, db, 1, 1, 10)
	sales := NewSales(db)

	_, err := sales.Checkout(testCtx(), 1, 1, []CartLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 42, Quantity: 1},
	})
	var unavailable *ProductUnavailableError
	require.ErrorAs(t, err, &unavailable)

	// The valid line must not have been applied.
	assert.Equal(t, int64(0), countRows(t, db, "invoices"))
	assert.Equal(t, int64(0), countRows(t, db, "invoice_details"))
	assert.Equal(t, int32(10), NewInventory(db).GetQuantity(testCtx(), 1, 1))
}

func TestCheckoutInvoiceIDsAreBranchLocal(t *testing.T) {
	db := setupTestDB(t)
	seedProduct(t, db, 1, "Mouse", "9.99")
	seedStock(t, db, 1, 1, 10)
	seedStock(t, db, 1, 2, 10)
	// Branch 2 already has invoices up to id 7.
	seed := models.Invoice{ID: 7, BranchID: 2, Total: mustDecimal(t, "1.00"), ClientID: 1}
	require.NoError(t, db.Create(&seed).Error)
	sales := NewSales(db)

	invoiceID, err := sales.Checkout(testCtx(), 1, 1, []CartLine{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, int32(1), invoiceID)

	invoiceID2, err := sales.Checkout(testCtx(), 1, 2, []CartLine{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, int32(8), invoiceID2)
}

func TestCheckoutSequentialSalesNumberConsecutively(t *testing.T) {
	db := setupTestDB(t)
	seedProduct(t, db, 1, "Mouse", "9.99")
	seedStock(t, db, 1, 1, 10)
	sales := NewSales(db)

	for want := int32(1); want <= 3; want++ {
		invoiceID, err := sales.Checkout(testCtx(), 1, 1, []CartLine{{ProductID: 1, Quantity: 1}})
		require.NoError(t, err)
		assert.Equal(t, want, invoiceID)
	}
	assert.Equal(t, int32(7), NewInventory(db).GetQuantity(testCtx(), 1, 1))
}
