package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"centsible/internal/config"
	"centsible/internal/database"
	"centsible/internal/events"
	"centsible/internal/handlers"
	"centsible/internal/indexing"
	custommw "centsible/internal/middleware"
	"centsible/internal/ocr"
	"centsible/internal/plaid"
	"centsible/internal/repositories"
	"centsible/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Error("database initialization failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	e, err := buildServer(cfg, db, logger)
	if err != nil {
		logger.Error("server construction failed", "error", err)
		os.Exit(1)
	}

	go func() {
		address := cfg.Server.Host + ":" + cfg.Server.Port
		logger.Info("starting server", "address", address, "environment", cfg.Server.Environment)
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// buildServer wires repositories, services, and routes into an Echo instance
func buildServer(cfg *config.Config, db *database.DB, logger *slog.Logger) (*echo.Echo, error) {
	// Repositories
	userRepo := repositories.NewUserRepository(db.DB)
	profileRepo := repositories.NewProfileRepository(db.DB)
	accountRepo := repositories.NewBankAccountRepository(db.DB)
	txnRepo := repositories.NewBankTransactionRepository(db.DB)
	storeRepo := repositories.NewStoreTransactionRepository(db.DB)
	categoryRepo := repositories.NewCategoryRepository(db.DB)
	budgetRepo := repositories.NewBudgetRepository(db.DB)
	goalRepo := repositories.NewSavingsGoalRepository(db.DB)

	// Shared infrastructure
	metrics := services.NewPrometheusMetrics()
	dispatcher := events.NewDispatcher(logger)
	resolver := services.NewCategoryResolver(categoryRepo, logger)
	aggregator := plaid.NewClient(&cfg.Aggregator)
	breaker := services.NewCircuitBreaker(services.DefaultCircuitBreakerConfig())

	extractor, err := ocr.NewGeminiExtractor(context.Background(), &cfg.OCR)
	if err != nil {
		return nil, err
	}

	// Services
	passwordService := services.NewPasswordService(cfg.Security.BCryptCost)
	tokenService := services.NewTokenService(cfg.Auth)
	authService := services.NewAuthService(userRepo, profileRepo, passwordService, tokenService, logger, metrics)
	accountSync := services.NewAccountSyncService(aggregator, profileRepo, accountRepo, logger, metrics)
	txnSync := services.NewTransactionSyncService(aggregator, profileRepo, accountRepo, txnRepo, resolver, dispatcher, breaker, cfg.Sync, logger, metrics)
	linkService := services.NewLinkService(aggregator, profileRepo, accountRepo, accountSync, txnSync, logger)
	transactionService := services.NewTransactionService(txnRepo, storeRepo, dispatcher, logger)
	budgetService := services.NewBudgetService(budgetRepo, categoryRepo, txnRepo, storeRepo, logger, metrics)
	receiptService := services.NewReceiptService(extractor, storeRepo, resolver, dispatcher, logger, metrics)
	indexingService := services.NewIndexingService(indexing.NewMemorySink(), txnRepo, storeRepo, profileRepo, logger, metrics)
	goalService := services.NewGoalService(goalRepo, logger)

	// Every committed transaction mutation fans out to budget reconciliation
	// and the vector index
	dispatcher.Subscribe(budgetService.HandleTransactionEvent)
	dispatcher.Subscribe(indexingService.HandleTransactionEvent)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	linkHandler := handlers.NewLinkHandler(linkService, accountSync, txnSync)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	receiptHandler := handlers.NewReceiptHandler(receiptService)
	goalHandler := handlers.NewGoalHandler(goalService)
	healthHandler := handlers.NewHealthCheckHandler(db.DB)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = custommw.CustomHTTPErrorHandler

	e.Use(custommw.RequestID())
	e.Use(custommw.PanicRecovery())
	e.Use(custommw.SecurityHeaders())
	e.Use(custommw.RateLimiterWithConfig(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitPerSecond*2))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	protected := v1.Group("", custommw.RequireAuth(tokenService))
	protected.GET("/users/me", authHandler.GetProfile)
	protected.PATCH("/users/me", authHandler.UpdateProfile)

	protected.POST("/link/token", linkHandler.CreateLinkToken)
	protected.POST("/link/exchange", linkHandler.ExchangePublicToken)
	protected.GET("/accounts", linkHandler.ListAccounts)
	protected.POST("/accounts/sync", linkHandler.SyncAccounts)
	protected.POST("/transactions/sync", linkHandler.SyncTransactions)

	protected.GET("/transactions", transactionHandler.ListTransactions)
	protected.GET("/transactions/:id", transactionHandler.GetTransaction)
	protected.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)
	protected.PATCH("/transactions/:id/items/:itemId", transactionHandler.UpdateStoreItem)
	protected.DELETE("/transactions/:id/items/:itemId", transactionHandler.DeleteStoreItem)

	protected.POST("/budgets", budgetHandler.CreateBudget)
	protected.GET("/budgets", budgetHandler.GetMonthlySummary)
	protected.GET("/budgets/:id", budgetHandler.GetBudget)
	protected.PATCH("/budgets/:id", budgetHandler.UpdateBudget)
	protected.DELETE("/budgets/:id", budgetHandler.DeleteBudget)
	protected.POST("/budgets/copy", budgetHandler.CopyPreviousMonth)

	protected.POST("/receipts", receiptHandler.UploadReceipt)

	// Synthetic data seeding stays out of production builds
	if cfg.IsDevelopment() {
		generator := services.NewTransactionGenerator(resolver)
		devHandler := handlers.NewDevHandler(accountRepo, txnRepo, generator, dispatcher)
		protected.POST("/dev/accounts/:id/transactions", devHandler.GenerateTestData)
	}

	protected.POST("/goals", goalHandler.CreateGoal)
	protected.GET("/goals", goalHandler.ListGoals)
	protected.GET("/goals/:id", goalHandler.GetGoal)
	protected.POST("/goals/:id/contributions", goalHandler.Contribute)
	protected.DELETE("/goals/:id", goalHandler.DeleteGoal)

	return e, nil
}
