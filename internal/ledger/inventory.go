package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"techstore-system/internal/database/models"
)

// Inventory owns the quantity-on-hand invariant for (product, branch)
// pairs and the compound product operations that touch both the catalog
// and the stock table.
type Inventory struct {
	db *gorm.DB
}

func NewInventory(db *gorm.DB) *Inventory {
	return &Inventory{db: db}
}

type ProductInput struct {
	Name  string
	Brand string
	Price decimal.Decimal
}

// CatalogItem is one storefront row: a product joined with the branch's
// stock level.
type CatalogItem struct {
	ID    int32           `json:"id"`
	Name  string          `json:"name"`
	Brand string          `json:"brand"`
	Price decimal.Decimal `json:"price"`
	Stock int32           `json:"stock"`
}

// GetQuantity returns the branch's stock of a product, 0 when no row
// exists. It never fails outward.
func (s *Inventory) GetQuantity(ctx context.Context, productID, branchID int32) int32 {
	var inv models.Inventory
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND branch_id = ?", productID, branchID).
		First(&inv).Error
	if err != nil {
		return 0
	}
	return inv.Quantity
}

// SetQuantity writes an absolute stock level, creating the row when the
// update matches nothing. Update and conditional insert run in one
// transaction so concurrent setters cannot interleave between them.
func (s *Inventory) SetQuantity(ctx context.Context, productID, branchID, quantity int32) error {
	if quantity < 0 {
		return &InvalidInputError{Field: "quantity", Reason: "must not be negative"}
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	res := tx.Model(&models.Inventory{}).
		Where("product_id = ? AND branch_id = ?", productID, branchID).
		Update("quantity", quantity)
	if res.Error != nil {
		tx.Rollback()
		return translateErr("set quantity", res.Error)
	}

	if res.RowsAffected == 0 {
		inv := models.Inventory{BranchID: branchID, ProductID: productID, Quantity: quantity}
		if err := tx.Create(&inv).Error; err != nil {
			tx.Rollback()
			return translateErr("set quantity", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return translateErr("set quantity", err)
	}
	return nil
}

// AdjustQuantity applies a delta to an existing row on the given
// executor (usually a transaction owned by the caller). The WHERE clause
// refuses adjustments that would drive the quantity negative, so a
// decrement that raced with another sale matches zero rows and returns
// errStockConflict instead of over-selling.
func (s *Inventory) AdjustQuantity(ctx context.Context, db *gorm.DB, productID, branchID, delta int32) error {
	res := db.WithContext(ctx).Model(&models.Inventory{}).
		Where("product_id = ? AND branch_id = ? AND quantity + ? >= 0", productID, branchID, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return translateErr("adjust quantity", res.Error)
	}
	if res.RowsAffected == 0 {
		return errStockConflict
	}
	return nil
}

// CreateProduct inserts a catalog row and its initial inventory row for
// the branch as one transaction. The product id is allocated globally
// (MAX over the whole table) inside the same transaction.
func (s *Inventory) CreateProduct(ctx context.Context, product ProductInput, initialQty, branchID int32) (int32, error) {
	if product.Name == "" {
		return 0, &InvalidInputError{Field: "name", Reason: "is required"}
	}
	if product.Price.IsNegative() {
		return 0, &InvalidInputError{Field: "price", Reason: "must not be negative"}
	}
	if initialQty < 0 {
		return 0, &InvalidInputError{Field: "initial_quantity", Reason: "must not be negative"}
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	productID := NewAllocator(tx).NextID(ctx, "products", "id")

	row := models.Product{
		ID:    productID,
		Name:  product.Name,
		Brand: product.Brand,
		Price: product.Price,
	}
	if err := tx.Create(&row).Error; err != nil {
		tx.Rollback()
		return 0, translateErr("create product", err)
	}

	inv := models.Inventory{BranchID: branchID, ProductID: productID, Quantity: initialQty}
	if err := tx.Create(&inv).Error; err != nil {
		tx.Rollback()
		return 0, translateErr("create product", err)
	}

	if err := tx.Commit().Error; err != nil {
		return 0, translateErr("create product", err)
	}
	return productID, nil
}

// UpdateProductAndStock updates the catalog row, then writes the new
// stock level. The two steps are separate statements: a crash between
// them leaves the product updated with the old stock, an accepted
// weaker guarantee for manual edits.
func (s *Inventory) UpdateProductAndStock(ctx context.Context, productID int32, product ProductInput, newQty, branchID int32) error {
	if product.Name == "" {
		return &InvalidInputError{Field: "name", Reason: "is required"}
	}
	if product.Price.IsNegative() {
		return &InvalidInputError{Field: "price", Reason: "must not be negative"}
	}

	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"name":  product.Name,
			"brand": product.Brand,
			"price": product.Price,
		})
	if res.Error != nil {
		return translateErr("update product", res.Error)
	}

	return s.SetQuantity(ctx, productID, branchID, newQty)
}

// DeleteProduct removes the catalog row and every inventory row that
// references it in one transaction, the manual cascade the schema does
// not express.
func (s *Inventory) DeleteProduct(ctx context.Context, productID int32) error {
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("product_id = ?", productID).Delete(&models.Inventory{}).Error; err != nil {
		tx.Rollback()
		return translateErr("delete product", err)
	}
	if err := tx.Where("id = ?", productID).Delete(&models.Product{}).Error; err != nil {
		tx.Rollback()
		return translateErr("delete product", err)
	}

	if err := tx.Commit().Error; err != nil {
		return translateErr("delete product", err)
	}
	return nil
}

// Catalog lists the branch's sellable products: catalog rows joined with
// inventory, stock above zero.
func (s *Inventory) Catalog(ctx context.Context, branchID int32) ([]CatalogItem, error) {
	var items []CatalogItem
	err := s.db.WithContext(ctx).Table("products").
		Select("products.id, products.name, products.brand, products.price, inventory.quantity AS stock").
		Joins("INNER JOIN inventory ON inventory.product_id = products.id AND inventory.branch_id = ?", branchID).
		Where("inventory.quantity > 0").
		Order("products.id").
		Scan(&items).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []CatalogItem{}, nil
		}
		return nil, translateErr("load catalog", err)
	}
	return items, nil
}
