package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"techstore-system/internal/ledger"
)

// AdminHTTPHandler exposes the back-office surface: table-level CRUD
// through the gateway plus the compound product and sale operations.
// It is scoped to one node, so tables outside the node's menu are
// rejected before any SQL runs.
type AdminHTTPHandler struct {
	db        *gorm.DB
	redis     *redis.Client
	gateway   *ledger.Gateway
	inventory *ledger.Inventory
	sales     *ledger.Sales
	branchID  int32
	timeout   time.Duration
}

func NewAdminHTTPHandler(db *gorm.DB, redisClient *redis.Client, enabledTables []string, branchID int32, timeout time.Duration) *AdminHTTPHandler {
	return &AdminHTTPHandler{
		db:        db,
		redis:     redisClient,
		gateway:   ledger.NewGateway(db, enabledTables),
		inventory: ledger.NewInventory(db),
		sales:     ledger.NewSales(db),
		branchID:  branchID,
		timeout:   timeout,
	}
}

type CreateProductRequest struct {
	Name            string          `json:"name" binding:"required"`
	Brand           string          `json:"brand"`
	Price           decimal.Decimal `json:"price" binding:"required"`
	InitialQuantity int32           `json:"initial_quantity"`
}

type UpdateProductRequest struct {
	Name     string          `json:"name" binding:"required"`
	Brand    string          `json:"brand"`
	Price    decimal.Decimal `json:"price" binding:"required"`
	Quantity int32           `json:"quantity"`
}

type SetStockRequest struct {
	Quantity int32 `json:"quantity"`
}

type AdminCheckoutRequest struct {
	ClientID int32             `json:"client_id" binding:"required"`
	Items    []ledger.CartLine `json:"items" binding:"required,min=1,dive"`
}

func (h *AdminHTTPHandler) opCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func (h *AdminHTTPHandler) invalidateCatalogCache(ctx context.Context) {
	_ = h.redis.Del(ctx, catalogCacheKey(h.branchID))
}

// catalogAffected reports whether a mutation on the table can change
// what the storefront shows.
func catalogAffected(table string) bool {
	return table == "products" || table == "inventory"
}

// ListTables returns the tables this node exposes, in menu order.
func (h *AdminHTTPHandler) ListTables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "tables": h.gateway.Tables()})
}

// FetchTable dumps an allow-listed table as columns plus rows.
func (h *AdminHTTPHandler) FetchTable(c *gin.Context) {
	ctx, cancel := h.opCtx(c)
	defer cancel()

	columns, rows, err := h.gateway.Fetch(ctx, c.Param("table"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "columns": columns, "rows": rows})
}

// InsertRow writes one row into an allow-listed table. The body is a
// flat column-to-value object validated against the table's schema.
func (h *AdminHTTPHandler) InsertRow(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()

	table := c.Param("table")
	if err := h.gateway.Insert(ctx, table, fields); err != nil {
		c.JSON(statusForError(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	if catalogAffected(table) {
		h.invalidateCatalogCache(ctx)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Row inserted"})
}

// UpdateRow rewrites the given columns of the row matching the id.
func (h *AdminHTTPHandler) UpdateRow(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid id"})
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()

	table := c.Param("table")
	if err := h.gateway.Update(ctx, table, fields, h.idColumn(table), int32(id)); err != nil {
		c.JSON(statusForError(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	if catalogAffected(table) {
		h.invalidateCatalogCache(ctx)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Row updated"})
}

// DeleteRow removes the row matching the id. Product deletes cascade
// through the inventory table.
func (h *AdminHTTPHandler) DeleteRow(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid id"})
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()

	table := c.Param("table")
	if err := h.gateway.Delete(ctx, table, h.idColumn(table), int32(id)); err != nil {
		c.JSON(statusForError(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	if catalogAffected(table) {
		h.invalidateCatalogCache(ctx)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Row deleted"})
}

// NextID previews the next id for a table. It is a read, not a
// reservation; the value only sticks if the caller inserts before
// anyone else does.
func (h *AdminHTTPHandler) NextID(c *gin.Context) {
	ctx, cancel := h.opCtx(c)
	defer cancel()

	id, err := h.gateway.NextID(ctx, c.Param("table"), h.branchID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "next_id": id})
}

// CreateProduct inserts a catalog row with its initial stock level for
// this branch in one transaction.
func (h *AdminHTTPHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()

	productID, err := h.inventory.CreateProduct(ctx, ledger.ProductInput{
		Name:  req.Name,
		Brand: req.Brand,
		Price: req.Price,
	}, req.InitialQuantity, h.branchID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	h.invalidateCatalogCache(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product created", "product_id": productID})
}

// UpdateProduct rewrites the catalog row and this branch's stock level.
func (h *AdminHTTPHandler) UpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product id"})
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()

	err = h.inventory.UpdateProductAndStock(ctx, int32(productID), ledger.ProductInput{
		Name:  req.Name,
		Brand: req.Brand,
		Price: req.Price,
	}, req.Quantity, h.branchID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	h.invalidateCatalogCache(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product updated"})
}

// GetStock reports this branch's stock of one product; missing rows
// read as zero.
func (h *AdminHTTPHandler) GetStock(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product id"})
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()

	qty := h.inventory.GetQuantity(ctx, int32(productID), h.branchID)
	c.JSON(http.StatusOK, gin.H{"success": true, "product_id": productID, "quantity": qty})
}

// SetStock writes an absolute stock level for one product at this
// branch, creating the inventory row if it does not exist yet.
func (h *AdminHTTPHandler) SetStock(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product id"})
		return
	}

	var req SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()

	if err := h.inventory.SetQuantity(ctx, int32(productID), h.branchID, req.Quantity); err != nil {
		c.JSON(statusForError(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	h.invalidateCatalogCache(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Stock updated"})
}

// Checkout records an in-store sale on behalf of a walk-in client.
func (h *AdminHTTPHandler) Checkout(c *gin.Context) {
	var req AdminCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()

	invoiceID, err := h.sales.Checkout(ctx, req.ClientID, h.branchID, req.Items)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	h.invalidateCatalogCache(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Sale recorded", "invoice_id": invoiceID})
}

// idColumn resolves a table's id column for the route-level CRUD
// endpoints. Unknown tables fall through to "id"; the gateway rejects
// them anyway.
func (h *AdminHTTPHandler) idColumn(table string) string {
	switch table {
	case "inventory":
		return "product_id"
	case "invoice_details":
		return "invoice_id"
	default:
		return "id"
	}
}
