package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/handlers"
	"github.com/mmdatafocus/retail_backend/middlewares"
	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultPort = "8080"

var tracer = otel.Tracer("retail-backend")

// RateLimiter throttles requests per client IP using a fixed redis window.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := "ratelimit:" + c.ClientIP()
	ctx := c.Request.Context()

	count, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		// Redis unavailable: fail open.
		c.Next()
		return
	}
	if count == 1 {
		rl.client.Expire(ctx, key, rl.window)
	}
	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "too many requests"})
		return
	}
	c.Next()
}

func getRedisClient(redisAddress string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: redisAddress,
	})
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// customErrorLogger logs only requests that collected gin errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"message": "route not found"})
}

func registerRoutes(r *gin.Engine) {
	const (
		roleAdmin      = string(models.UserRoleAdmin)
		roleManager    = string(models.UserRoleManager)
		roleAccountant = string(models.UserRoleAccountant)
		roleCashier    = string(models.UserRoleCashier)
		roleWarehouse  = string(models.UserRoleWarehouseStaff)
	)

	r.POST("/api/auth/login", handlers.Login())

	api := r.Group("/api", middlewares.AuthMiddleware())

	api.POST("/auth/logout", handlers.Logout())

	users := api.Group("/users", middlewares.RequireRoles(roleAdmin))
	{
		users.POST("", handlers.CreateUser())
		users.GET("", handlers.GetUsers())
		users.GET("/:id", handlers.GetUser())
		users.PUT("/:id", handlers.UpdateUser())
		users.DELETE("/:id", handlers.DeleteUser())
	}

	catalogWrite := middlewares.RequireRoles(roleAdmin, roleManager)

	categories := api.Group("/categories")
	{
		categories.GET("", handlers.GetCategories())
		categories.GET("/:id", handlers.GetCategory())
		categories.POST("", catalogWrite, handlers.CreateCategory())
		categories.PUT("/:id", catalogWrite, handlers.UpdateCategory())
		categories.PATCH("/:id/active", catalogWrite, handlers.ToggleCategoryActive())
		categories.DELETE("/:id", catalogWrite, handlers.DeleteCategory())
	}

	vendors := api.Group("/vendors")
	{
		vendors.GET("", handlers.GetVendors())
		vendors.GET("/:id", handlers.GetVendor())
		vendors.POST("", catalogWrite, handlers.CreateVendor())
		vendors.PUT("/:id", catalogWrite, handlers.UpdateVendor())
		vendors.DELETE("/:id", catalogWrite, handlers.DeleteVendor())
	}

	customers := api.Group("/customers")
	{
		customers.GET("", handlers.GetCustomers())
		customers.GET("/:id", handlers.GetCustomer())
		customers.POST("", catalogWrite, handlers.CreateCustomer())
		customers.PUT("/:id", catalogWrite, handlers.UpdateCustomer())
		customers.DELETE("/:id", catalogWrite, handlers.DeleteCustomer())
	}

	branches := api.Group("/branches")
	{
		branches.GET("", handlers.GetBranches())
		branches.GET("/:id", handlers.GetBranch())
		branches.POST("", catalogWrite, handlers.CreateBranch())
		branches.PUT("/:id", catalogWrite, handlers.UpdateBranch())
		branches.DELETE("/:id", catalogWrite, handlers.DeleteBranch())
	}

	products := api.Group("/products")
	{
		products.GET("", handlers.GetProducts())
		products.GET("/:id", handlers.GetProduct())
		products.POST("", catalogWrite, handlers.CreateProduct())
		products.PUT("/:id", catalogWrite, handlers.UpdateProduct())
		products.PATCH("/:id/active", catalogWrite, handlers.ToggleProductActive())
		products.DELETE("/:id", catalogWrite, handlers.DeleteProduct())
		products.POST("/:id/image", catalogWrite, handlers.UploadProductImage())
	}

	movements := api.Group("/stock-movements",
		middlewares.RequireRoles(roleAdmin, roleManager, roleWarehouse))
	{
		movements.POST("", handlers.CreateStockMovement())
		movements.GET("", handlers.GetStockMovements())
		movements.GET("/:id", handlers.GetStockMovement())
		movements.PUT("/:id", handlers.UpdateStockMovement())
		movements.DELETE("/:id", handlers.DeleteStockMovement())
	}

	sales := api.Group("/sales")
	{
		sales.POST("", middlewares.RequireRoles(roleAdmin, roleManager, roleCashier), handlers.CreateSale())
		sales.GET("", handlers.GetSales())
		sales.GET("/:id", handlers.GetSale())
		sales.DELETE("/:id", middlewares.RequireRoles(roleAdmin, roleManager), handlers.DeleteSale())
	}

	purchases := api.Group("/purchases")
	{
		purchaseWrite := middlewares.RequireRoles(roleAdmin, roleManager)
		purchases.POST("", purchaseWrite, handlers.CreatePurchase())
		purchases.GET("", handlers.GetPurchases())
		purchases.GET("/:id", handlers.GetPurchase())
		purchases.PUT("/:id", purchaseWrite, handlers.UpdatePurchase())
		purchases.POST("/:id/confirm",
			middlewares.RequireRoles(roleAdmin, roleManager, roleWarehouse), handlers.ConfirmPurchase())
		purchases.POST("/:id/cancel", purchaseWrite, handlers.CancelPurchase())
		purchases.DELETE("/:id", purchaseWrite, handlers.DeletePurchase())
	}

	ledgers := api.Group("/ledgers",
		middlewares.RequireRoles(roleAdmin, roleManager, roleAccountant))
	{
		ledgers.POST("", handlers.CreateLedgerEntry())
		ledgers.GET("", handlers.GetLedgerEntries())
		ledgers.GET("/:id", handlers.GetLedgerEntry())
		ledgers.DELETE("/:id", handlers.DeleteLedgerEntry())
	}

	reports := api.Group("/reports")
	{
		reportRead := middlewares.RequireRoles(roleAdmin, roleManager, roleAccountant)
		reports.GET("/dashboard", reportRead, handlers.GetDashboard())
		reports.GET("/sales", handlers.GetSalesReport())
		reports.GET("/low-stock", handlers.GetLowStockReport())
		reports.GET("/inventory", handlers.GetInventoryReport())
		reports.GET("/inventory/export", reportRead, handlers.ExportInventoryReport())
	}

	backups := api.Group("/backups", middlewares.RequireRoles(roleAdmin))
	{
		backups.POST("", handlers.RunBackup())
		backups.GET("", handlers.ListBackups())
	}

	r.NoRoute(customNotFoundHandler)
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// SIGTERM is what container platforms send on shutdown; handle it for a
	// graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the platform considers the instance
	// healthy. Until DB/Redis are ready, app endpoints return 503.
	r := gin.New()

	// Correlation IDs: propagate the caller's id, else fall back to the
	// request trace id, else mint one.
	r.Use(func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+c.FullPath())
		defer span.End()

		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
				cid = sc.TraceID().String()
			} else {
				cid = uuid.NewString()
			}
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(ctx, cid))
		c.Writer.Header().Set("x-correlation-id", cid)
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		// Always allow the startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		// Gate app endpoints on dependency readiness.
		if config.GetDB() == nil || config.GetRedisDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production require an explicit allowlist via CORS_ALLOWED_ORIGINS
	// (comma-separated); in development allow all.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Optional rate limiting.
	// Env: RATE_LIMIT_ENABLED, RATE_LIMIT_WINDOW_SECONDS, RATE_LIMIT_MAX_REQUESTS.
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		client := getRedisClient(os.Getenv("REDIS_ADDRESS"))
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	registerRoutes(r)

	// Serve uploaded product images.
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	r.Static("/uploads", uploadDir)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running migrations as
	// a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info(fmt.Sprintf("listening on http://localhost:%s/api", port))
	log.Println("Server started successfully")

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Drain HTTP requests.
	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	// Close Redis (best-effort).
	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}
