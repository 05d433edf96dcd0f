package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hosting-storefront/internal/client"
	"hosting-storefront/internal/config"
	"hosting-storefront/internal/logger"
	"hosting-storefront/internal/pdf"
	"hosting-storefront/internal/repository"
	"hosting-storefront/internal/server"
	"hosting-storefront/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Environment, cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// prices go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	db, err := client.InitDatabase(cfg.Database, log)
	if err != nil {
		log.Fatal("Database init failed", zap.Error(err))
	}
	gatewayClient := client.NewGatewayClient(&cfg.Gateway)
	if !gatewayClient.Configured() {
		log.Warn("Payment gateway not configured, sessions run in mock mode")
	}
	if !gatewayClient.VerifiesSignatures() {
		log.Warn("Gateway api key missing, webhooks are not signature checked")
	}

	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	contactRepo := repository.NewContactRepository(db)

	authService := service.NewAuthService(cfg.Auth, userRepo, log)
	catalogService := service.NewCatalogService(productRepo, log)
	orderService := service.NewOrderService(catalogService, orderRepo, log)
	invoiceService := service.NewInvoiceService(
		db,
		cfg.Invoice,
		pdf.NewInvoiceRenderer(cfg.Invoice),
		orderRepo,
		invoiceRepo,
		log,
	)
	paymentService := service.NewPaymentService(
		db,
		gatewayClient,
		invoiceService,
		orderRepo,
		paymentRepo,
		webhookEventRepo,
		log,
	)
	reportService := service.NewReportService(orderRepo, invoiceRepo, productRepo, userRepo, contactRepo)
	contactService := service.NewContactService(contactRepo, log)

	if err := seed(cfg.Seed, catalogService, authService, log); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}

	srv := server.NewServer(server.Services{
		Auth:     authService,
		Catalog:  catalogService,
		Orders:   orderService,
		Payments: paymentService,
		Invoices: invoiceService,
		Reports:  reportService,
		Contact:  contactService,
	}, log, server.Options{
		EnableMockPayments: !cfg.Environment.IsProduction(),
	})

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.Info("Starting HTTP server",
		zap.String("addr", serverAddr),
		zap.String("environment", cfg.Environment.Name),
		zap.String("gateway_mode", cfg.Gateway.Mode),
	)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("Signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
}

func seed(cfg config.Seed, catalog service.CatalogService, auth service.AuthService, log *zap.Logger) error {
	ctx := context.Background()

	if cfg.Catalog {
		n, err := catalog.Seed(ctx)
		if err != nil {
			return err
		}
		log.Info("Catalog seeded", zap.Int("products", n))
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
		log.Info("Admin account ready", zap.String("email", cfg.AdminEmail))
	}

	return nil
}
