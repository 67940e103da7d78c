package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"techstore-system/internal/database/models"
)

// CartLine is one (product, quantity) pair submitted for checkout.
type CartLine struct {
	ProductID int32 `json:"product_id" binding:"required"`
	Quantity  int32 `json:"quantity" binding:"required"`
}

// Sales turns a validated cart into an invoice header, its detail rows
// and the matching stock decrements, all inside one transaction.
type Sales struct {
	db        *gorm.DB
	inventory *Inventory
}

func NewSales(db *gorm.DB) *Sales {
	return &Sales{db: db, inventory: NewInventory(db)}
}

type stagedLine struct {
	productID int32
	name      string
	quantity  int32
	unitPrice decimal.Decimal
	subtotal  decimal.Decimal
}

// Checkout validates the cart against the branch's stock and prices,
// then commits the sale. Validation is read-only: a failure there leaves
// the database untouched. The commit pass allocates the branch-scoped
// invoice id, writes the header and detail rows, and decrements stock
// with a conditional update, so a decrement that lost a race fails the
// whole transaction instead of over-selling.
func (s *Sales) Checkout(ctx context.Context, clientID, branchID int32, cart []CartLine) (int32, error) {
	if len(cart) == 0 {
		return 0, ErrEmptyCart
	}
	for _, line := range cart {
		if line.Quantity <= 0 {
			return 0, ErrInvalidQuantity
		}
	}

	staged := make([]stagedLine, 0, len(cart))
	total := decimal.Zero

	for _, line := range cart {
		var info struct {
			Name  string
			Price decimal.Decimal
			Stock int32
		}
		err := s.db.WithContext(ctx).Table("products").
			Select("products.name, products.price, inventory.quantity AS stock").
			Joins("INNER JOIN inventory ON inventory.product_id = products.id AND inventory.branch_id = ?", branchID).
			Where("products.id = ?", line.ProductID).
			Take(&info).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, &ProductUnavailableError{ProductID: line.ProductID, BranchID: branchID}
			}
			return 0, translateErr("validate cart", err)
		}

		if info.Stock < line.Quantity {
			return 0, &InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: info.Name,
				Available:   info.Stock,
				Requested:   line.Quantity,
			}
		}

		subtotal := info.Price.Mul(decimal.NewFromInt32(line.Quantity))
		total = total.Add(subtotal)
		staged = append(staged, stagedLine{
			productID: line.ProductID,
			name:      info.Name,
			quantity:  line.Quantity,
			unitPrice: info.Price,
			subtotal:  subtotal,
		})
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	invoiceID := NewAllocator(tx).NextID(ctx, "invoices", "id", branchID)

	invoice := models.Invoice{
		ID:       invoiceID,
		BranchID: branchID,
		Date:     time.Now(),
		Total:    total,
		ClientID: clientID,
	}
	if err := tx.Create(&invoice).Error; err != nil {
		tx.Rollback()
		return 0, translateErr("create invoice", err)
	}

	for _, line := range staged {
		detail := models.InvoiceDetail{
			InvoiceID: invoiceID,
			ProductID: line.productID,
			BranchID:  branchID,
			Quantity:  line.quantity,
			UnitPrice: line.unitPrice,
			Subtotal:  line.subtotal,
		}
		if err := tx.Create(&detail).Error; err != nil {
			tx.Rollback()
			return 0, translateErr("create invoice detail", err)
		}

		if err := s.inventory.AdjustQuantity(ctx, tx, line.productID, branchID, -line.quantity); err != nil {
			tx.Rollback()
			if errors.Is(err, errStockConflict) {
				// Stock moved between validation and commit; report what
				// is available now.
				return 0, &InsufficientStockError{
					ProductID:   line.productID,
					ProductName: line.name,
					Available:   s.inventory.GetQuantity(ctx, line.productID, branchID),
					Requested:   line.quantity,
				}
			}
			return 0, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return 0, translateErr("commit sale", err)
	}
	return invoiceID, nil
}
