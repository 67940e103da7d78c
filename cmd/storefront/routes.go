package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"techstore-system/config"
	"techstore-system/internal/database"
	"techstore-system/internal/database/models"
	"techstore-system/internal/gateway/handlers"
	"techstore-system/internal/gateway/middleware"
)

func main() {
	cfg := config.LoadConfig()
	node := config.CurrentNode()

	db, err := database.NewConnection(cfg.DB.DSN(node.DBName))
	if err != nil {
		log.Fatalf("Failed to connect to database %s: %v", node.DBName, err)
	}
	if err := models.MigrateRetailDB(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient := config.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	storeHandler := handlers.NewStoreHTTPHandler(db, redisClient, node.BranchID, cfg.StatementTimeout)
	adminHandler := handlers.NewAdminHTTPHandler(db, redisClient, node.Tables, node.BranchID, cfg.StatementTimeout)

	r := gin.Default()

	r.Use(middleware.CORS())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit())

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", storeHandler.Register)
			auth.POST("/login", storeHandler.Login)
		}

		store := public.Group("/store")
		{
			store.GET("/catalog", storeHandler.GetCatalog)
			store.GET("/stock/:product_id", storeHandler.GetStock)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth())
	{
		store := protected.Group("/store")
		{
			store.POST("/buy/:product_id", storeHandler.Buy)
			store.POST("/checkout", storeHandler.Checkout)
		}
	}

	// --- Admin API Group ---
	admin := r.Group("/api/v1/admin")
	{
		tables := admin.Group("/tables")
		{
			tables.GET("", adminHandler.ListTables)
			tables.GET("/:table", adminHandler.FetchTable)
			tables.GET("/:table/next-id", adminHandler.NextID)
			tables.POST("/:table", adminHandler.InsertRow)
			tables.PUT("/:table/:id", adminHandler.UpdateRow)
			tables.DELETE("/:table/:id", adminHandler.DeleteRow)
		}

		products := admin.Group("/products")
		{
			products.POST("", adminHandler.CreateProduct)
			products.PUT("/:id", adminHandler.UpdateProduct)
		}

		stock := admin.Group("/stock")
		{
			stock.GET("/:product_id", adminHandler.GetStock)
			stock.PUT("/:product_id", adminHandler.SetStock)
		}

		admin.POST("/checkout", adminHandler.Checkout)
	}

	r.GET("/health", healthCheckHandler(node))

	port := ":8080"
	log.Printf("Starting %s storefront on port %s (%s)", node.Key, port, node.Role)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheckHandler(node config.NodeConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"node":      node.Key,
			"branch_id": node.BranchID,
			"timestamp": time.Now(),
		})
	}
}
