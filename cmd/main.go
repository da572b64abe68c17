package main

import (
	"repairshop-service/internal/handler"
	mid "repairshop-service/internal/middleware"
	"repairshop-service/internal/store"
	"repairshop-service/pkg/cache"
	"repairshop-service/pkg/config"
	"repairshop-service/pkg/database"
	"repairshop-service/pkg/jwtutil"
	"repairshop-service/pkg/logger"
	"repairshop-service/prometheus"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if present. Missing files are fine, production
	// environments inject configuration through real env vars.
	_ = godotenv.Load()

	appConfig, err := config.Load("repairshop-service")
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting repairshop-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	db, err := database.Connect(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Optional Redis cache for organization slug lookups
	var cacheClient *cache.Client
	if appConfig.Redis.Enabled {
		cacheClient, err = cache.New(appConfig.Redis.Addr, appConfig.Redis.Password, appConfig.Redis.DB, appConfig.Redis.TTL)
		if err != nil {
			log.Warn("Redis unavailable, continuing without cache", zap.Error(err))
			cacheClient = nil
		} else {
			log.Info("Redis cache connected", zap.String("addr", appConfig.Redis.Addr))
			defer cacheClient.Close()
		}
	}

	repo := store.New(db, cacheClient)
	if err := repo.Migrate(); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations applied")

	handler.Init(repo)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Organization provisioning and slug resolution do not require tenant context
	e.POST("/api/organizations", handler.CreateOrganization)
	e.GET("/api/organizations/by-slug/:slug", handler.GetOrganizationBySlug)

	// Organization API routes - caller's own organization only
	orgAPI := e.Group("/api/organization", mid.AuthMiddleware)
	orgAPI.GET("", handler.GetOrganization)
	orgAPI.PUT("", handler.UpdateOrganization)

	// Customer API routes - Apply auth middleware to validate JWT and extract tenant ID
	customerAPI := e.Group("/api/customers", mid.AuthMiddleware)
	customerAPI.GET("", handler.ListCustomers)
	customerAPI.GET("/:id", handler.GetCustomer)
	customerAPI.POST("", handler.CreateCustomer)
	customerAPI.PUT("/:id", handler.UpdateCustomer)
	customerAPI.DELETE("/:id", handler.DeleteCustomer)
	customerAPI.POST("/:id/restore", handler.RestoreCustomer)
	customerAPI.GET("/:id/devices", handler.GetCustomerDevices)
	customerAPI.GET("/:id/repairs", handler.GetCustomerRepairs)

	// Device API routes
	deviceAPI := e.Group("/api/devices", mid.AuthMiddleware)
	deviceAPI.GET("", handler.ListDevices)
	deviceAPI.GET("/:id", handler.GetDevice)
	deviceAPI.POST("", handler.CreateDevice)
	deviceAPI.PUT("/:id", handler.UpdateDevice)
	deviceAPI.DELETE("/:id", handler.DeleteDevice)
	deviceAPI.POST("/:id/restore", handler.RestoreDevice)

	// Technician API routes
	technicianAPI := e.Group("/api/technicians", mid.AuthMiddleware)
	technicianAPI.GET("", handler.ListTechnicians)
	technicianAPI.GET("/:id", handler.GetTechnician)
	technicianAPI.POST("", handler.CreateTechnician)
	technicianAPI.PUT("/:id", handler.UpdateTechnician)
	technicianAPI.DELETE("/:id", handler.DeleteTechnician)
	technicianAPI.POST("/:id/restore", handler.RestoreTechnician)
	technicianAPI.GET("/:id/repairs", handler.GetTechnicianRepairs)

	// Inventory API routes
	inventoryAPI := e.Group("/api/inventory", mid.AuthMiddleware)
	inventoryAPI.GET("", handler.ListInventoryItems)
	inventoryAPI.GET("/:id", handler.GetInventoryItem)
	inventoryAPI.POST("", handler.CreateInventoryItem)
	inventoryAPI.PUT("/:id", handler.UpdateInventoryItem)
	inventoryAPI.DELETE("/:id", handler.DeleteInventoryItem)
	inventoryAPI.POST("/:id/restore", handler.RestoreInventoryItem)

	// Repair API routes
	repairAPI := e.Group("/api/repairs", mid.AuthMiddleware)
	repairAPI.GET("", handler.ListRepairs)
	repairAPI.GET("/:id", handler.GetRepair)
	repairAPI.GET("/:id/details", handler.GetRepairDetails)
	repairAPI.POST("", handler.CreateRepair)
	repairAPI.PUT("/:id", handler.UpdateRepair)
	repairAPI.PUT("/:id/status", handler.UpdateRepairStatus)
	repairAPI.DELETE("/:id", handler.DeleteRepair)
	repairAPI.POST("/:id/restore", handler.RestoreRepair)
	repairAPI.GET("/:id/items", handler.ListRepairItems)
	repairAPI.POST("/:id/items", handler.CreateRepairItem)
	repairAPI.GET("/:id/quotes", handler.GetRepairQuotes)
	repairAPI.GET("/:id/invoices", handler.GetRepairInvoices)

	// Repair item API routes
	repairItemAPI := e.Group("/api/repair-items", mid.AuthMiddleware)
	repairItemAPI.PUT("/:id", handler.UpdateRepairItem)
	repairItemAPI.DELETE("/:id", handler.DeleteRepairItem)
	repairItemAPI.POST("/:id/restore", handler.RestoreRepairItem)

	// Quote API routes
	quoteAPI := e.Group("/api/quotes", mid.AuthMiddleware)
	quoteAPI.GET("", handler.ListQuotes)
	quoteAPI.GET("/:id", handler.GetQuote)
	quoteAPI.POST("", handler.CreateQuote)
	quoteAPI.PUT("/:id", handler.UpdateQuote)
	quoteAPI.PUT("/:id/status", handler.UpdateQuoteStatus)
	quoteAPI.DELETE("/:id", handler.DeleteQuote)
	quoteAPI.POST("/:id/restore", handler.RestoreQuote)

	// Invoice API routes
	invoiceAPI := e.Group("/api/invoices", mid.AuthMiddleware)
	invoiceAPI.GET("", handler.ListInvoices)
	invoiceAPI.GET("/:id", handler.GetInvoice)
	invoiceAPI.POST("", handler.CreateInvoice)
	invoiceAPI.PUT("/:id", handler.UpdateInvoice)
	invoiceAPI.PUT("/:id/status", handler.UpdateInvoiceStatus)
	invoiceAPI.DELETE("/:id", handler.DeleteInvoice)
	invoiceAPI.POST("/:id/restore", handler.RestoreInvoice)

	// Admin routes
	adminAPI := e.Group("/api/admin", mid.AuthMiddleware)
	adminAPI.DELETE("/organizations/:id/data", handler.WipeOrganizationData)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
