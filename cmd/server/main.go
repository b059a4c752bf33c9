package main

import (
	"log"
	"time"

	"mandi-app/config"
	"mandi-app/internal/billing"
	"mandi-app/internal/handler"
	"mandi-app/internal/models"
	"mandi-app/pkg/database"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Load Configuration
	config.LoadConfig()

	// 2. Connect to Database
	database.Connect()

	// 3. Auto-Migrate Models
	log.Println("Running migrations...")

	err := database.DB.AutoMigrate(
		&models.Farmer{},
		&models.Buyer{},
		&models.Product{},
		&models.AuctionSession{},
		&models.AuctionItem{},
		&models.Bill{},
		&models.BillSequence{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed successfully.")

	// 3a. Seed Data
	database.SeedBaseData()

	// 4. Initialize Router
	r := gin.Default()

	// CORS Configuration
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 5. Setup Routes
	policy := billing.DefaultCommissionPolicy{DefaultRate: config.AppConfig.Billing.CommissionRate}

	registryHandler := handler.NewRegistryHandler(database.DB)
	registryRoutes := r.Group("/api/v1/registry")
	{
		registryRoutes.POST("/farmers", registryHandler.CreateFarmer)
		registryRoutes.GET("/farmers", registryHandler.SearchFarmers)
		registryRoutes.POST("/buyers", registryHandler.CreateBuyer)
		registryRoutes.GET("/buyers", registryHandler.ListBuyers)
		registryRoutes.POST("/products", registryHandler.CreateProduct)
		registryRoutes.GET("/products", registryHandler.ListProducts)
		registryRoutes.POST("/sessions", registryHandler.CreateSession)
		registryRoutes.GET("/sessions", registryHandler.ListSessions)
		registryRoutes.POST("/sessions/:id/items", registryHandler.CreateItem)
		registryRoutes.GET("/sessions/:id/items", registryHandler.ListSessionItems)
		registryRoutes.PUT("/items/:id/sale", registryHandler.RecordSale)
	}

	billingHandler := handler.NewBillingHandler(database.DB, policy, config.AppConfig.Billing.BillPrefix)
	billingRoutes := r.Group("/api/v1/billing")
	{
		billingRoutes.POST("/preview", billingHandler.Preview)
		billingRoutes.POST("/generate", billingHandler.GenerateBills)
		billingRoutes.POST("/pay", billingHandler.PayBills)
		billingRoutes.GET("/bills", billingHandler.ListBills)
	}

	analyticsHandler := handler.NewAnalyticsHandler(database.DB, config.AppConfig.Billing.TopLimit)
	analyticsRoutes := r.Group("/api/v1/analytics")
	{
		analyticsRoutes.GET("/overview", analyticsHandler.Overview)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 6. Start Server
	port := config.AppConfig.Server.Port
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
