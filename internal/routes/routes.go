// Package routes defines the API routing configuration. It wires the
// storage, services, and handlers and groups routes by audience: vendor,
// order subsystem, and admin.
package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vendra/internal/config"
	"vendra/internal/handlers"
	"vendra/internal/middleware"
	"vendra/internal/repositories"
	"vendra/internal/services/auth"
	"vendra/internal/services/ledger"
	"vendra/internal/services/payout"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	store := repositories.NewGormStore(db)
	userRepo := repositories.NewUserRepository(db)

	jwtSecret := config.GetEnv("JWT_SECRET", "vendra")
	tokenTTL := config.GetDurationEnv("JWT_TTL", 24*time.Hour)
	authService := auth.NewService(userRepo, jwtSecret, tokenTTL)

	ledgerService := ledger.NewService(
		store,
		repositories.CacheService,
		ledger.Config{
			MaxRetries:   config.GetIntEnv("LEDGER_MAX_RETRIES", ledger.DefaultMaxRetries),
			RetryBackoff: config.GetDurationEnv("LEDGER_RETRY_BACKOFF", ledger.DefaultRetryBackoff),
		},
		&ledger.NoopMetricsCollector{},
	)

	minPayout, err := decimal.NewFromString(config.GetEnv("PAYOUT_MIN_AMOUNT", "0"))
	if err != nil {
		minPayout = decimal.Zero
	}
	payoutService := payout.NewService(store, repositories.CacheService, payout.Config{
		MinAmount: minPayout,
	})

	authHandler := handlers.NewAuthHandler(authService)
	walletHandler := handlers.NewWalletHandler(ledgerService)
	payoutHandler := handlers.NewPayoutHandler(payoutService)
	earningsHandler := handlers.NewEarningsHandler(ledgerService)
	adminHandler := handlers.NewAdminHandler(ledgerService, payoutService)
	healthHandler := handlers.NewHealthHandler(db)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)

	// Vendor surface
	vendor := api.Group("/", authMiddleware.Handler)
	vendor.Get("/wallet", walletHandler.GetWallet)
	vendor.Get("/wallet/transactions", walletHandler.ListTransactions)
	vendor.Post("/payouts", payoutHandler.CreatePayout)
	vendor.Get("/payouts", payoutHandler.ListPayouts)
	vendor.Get("/payouts/:id", payoutHandler.GetPayout)

	// Order/payment subsystem surface; credits carry the final
	// commission-adjusted figure.
	internal := api.Group("/internal", authMiddleware.Handler, authMiddleware.AdminOnly)
	internal.Post("/order-earnings", earningsHandler.RecordEarning)
	internal.Post("/order-earnings/release", earningsHandler.ReleaseEarning)

	// Admin surface
	admin := api.Group("/admin", authMiddleware.Handler, authMiddleware.AdminOnly)
	admin.Get("/wallets", adminHandler.ListWallets)
	admin.Get("/transactions", adminHandler.ListTransactions)
	admin.Get("/payouts", adminHandler.ListPayouts)
	admin.Post("/wallets/:vendorID/adjust", adminHandler.Adjust)
	admin.Post("/wallets/:vendorID/reconcile", adminHandler.Reconcile)
	admin.Post("/wallets/:vendorID/transactions/:txnID/reverse", adminHandler.ReverseTransaction)
	admin.Patch("/wallets/:vendorID/visibility", adminHandler.SetWalletVisibility)
	admin.Post("/payouts/:id/approve", adminHandler.ApprovePayout)
	admin.Post("/payouts/:id/reject", adminHandler.RejectPayout)
	admin.Post("/payouts/:id/complete", adminHandler.CompletePayout)
}
