package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"techstore-system/internal/database/models"
	"techstore-system/internal/ledger"
	"techstore-system/internal/utils"
)

const (
	STORE_CATALOG_CACHE_KEY = "store:catalog"
	CACHE_TTL_SHORT         = 5 * time.Minute
	SESSION_TTL             = 12 * time.Hour
)

// StoreHTTPHandler serves the web storefront: the public catalog,
// client registration/login and the purchase endpoints.
type StoreHTTPHandler struct {
	db        *gorm.DB
	redis     *redis.Client
	inventory *ledger.Inventory
	sales     *ledger.Sales
	alloc     *ledger.Allocator
	branchID  int32
	timeout   time.Duration
}

func NewStoreHTTPHandler(db *gorm.DB, redisClient *redis.Client, branchID int32, timeout time.Duration) *StoreHTTPHandler {
	return &StoreHTTPHandler{
		db:        db,
		redis:     redisClient,
		inventory: ledger.NewInventory(db),
		sales:     ledger.NewSales(db),
		alloc:     ledger.NewAllocator(db),
		branchID:  branchID,
		timeout:   timeout,
	}
}

type RegisterClientRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type CheckoutRequest struct {
	Items []ledger.CartLine `json:"items" binding:"required,min=1,dive"`
}

func (h *StoreHTTPHandler) opCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func catalogCacheKey(branchID int32) string {
	return fmt.Sprintf("%s:%d", STORE_CATALOG_CACHE_KEY, branchID)
}

// InvalidateCatalogCache drops the cached catalog after any product or
// stock mutation.
func (h *StoreHTTPHandler) InvalidateCatalogCache(ctx context.Context) {
	_ = h.redis.Del(ctx, catalogCacheKey(h.branchID))
}

// GetCatalog lists the branch's in-stock products, cached for a short
// TTL.
func (h *StoreHTTPHandler) GetCatalog(c *gin.Context) {
	ctx, cancel := h.opCtx(c)
	defer cancel()

	if cached, err := h.redis.Get(ctx, catalogCacheKey(h.branchID)).Result(); err == nil {
		var items []ledger.CatalogItem
		if json.Unmarshal([]byte(cached), &items) == nil {
			c.JSON(http.StatusOK, gin.H{"success": true, "products": items, "cached": true})
			return
		}
	}

	items, err := h.inventory.Catalog(ctx, h.branchID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	if payload, err := json.Marshal(items); err == nil {
		_ = h.redis.Set(ctx, catalogCacheKey(h.branchID), payload, CACHE_TTL_SHORT)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "products": items})
}

// Register creates a storefront client. Email is the natural dedup key:
// registering an address that already exists just logs that client in.
func (h *StoreHTTPHandler) Register(c *gin.Context) {
	var req RegisterClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()

	var existing models.Client
	err := h.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		h.issueToken(c, existing.ID, existing.Email, "Welcome back")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}

	client := models.Client{
		ID:       h.alloc.NextID(ctx, "clients", "id"),
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		Email:    req.Email,
		BranchID: h.branchID,
	}
	if err := h.db.WithContext(ctx).Create(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to register client"})
		return
	}

	h.issueToken(c, client.ID, client.Email, "Registration successful")
}

// Login is a trivial email lookup, all the authentication the original
// storefront ever had.
func (h *StoreHTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()

	var client models.Client
	if err := h.db.WithContext(ctx).Where("email = ?", req.Email).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}

	h.issueToken(c, client.ID, client.Email, "Login successful")
}

func (h *StoreHTTPHandler) issueToken(c *gin.Context, clientID int32, email, message string) {
	token, exp, err := utils.GenerateToken(clientID, email, SESSION_TTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    message,
		"client_id":  clientID,
		"token":      token,
		"expires_at": exp,
	})
}

// Buy purchases a single unit of one product, the storefront's
// one-click flow.
func (h *StoreHTTPHandler) Buy(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product id"})
		return
	}

	cart := []ledger.CartLine{{ProductID: int32(productID), Quantity: 1}}

	ctx, cancel := h.opCtx(c)
	defer cancel()

	invoiceID, err := h.sales.Checkout(ctx, clientFromContext(c), h.branchID, cart)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	h.InvalidateCatalogCache(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Purchase successful", "invoice_id": invoiceID})
}

// Checkout processes a full cart for the logged-in client.
func (h *StoreHTTPHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()

	invoiceID, err := h.sales.Checkout(ctx, clientFromContext(c), h.branchID, req.Items)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	h.InvalidateCatalogCache(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Purchase successful", "invoice_id": invoiceID})
}

// GetStock reports the branch's stock of one product; missing rows read
// as zero.
func (h *StoreHTTPHandler) GetStock(c *gin.Context) {
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

func clientFromContext(c *gin.Context) int32 {
	if v, ok := c.Get("client_id"); ok {
		if id, ok := v.(int32); ok {
			return id
		}
	}
	return 0
}
