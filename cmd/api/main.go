package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storefront-payments/internal/client"
	"storefront-payments/internal/config"
	"storefront-payments/internal/logger"
	"storefront-payments/internal/metrics"
	"storefront-payments/internal/middleware"
	"storefront-payments/internal/repository"
	"storefront-payments/internal/server"
	"storefront-payments/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// load .env into os.Environ
	envErr := godotenv.Load()

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		slog.Error("failed to parse config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger.New(cfg.Log, os.Stdout))
	if envErr != nil {
		slog.Info("no .env file found (ok in prod)")
	}

	if cfg.MercadoPago.NotificationURL == "" {
		cfg.MercadoPago.NotificationURL = strings.TrimRight(cfg.BaseURL, "/") + "/webhook/mercadopago"
	}
	if cfg.MercadoPago.WebhookSecret == "" {
		slog.Warn("MP_WEBHOOK_SECRET is empty, every webhook will be rejected")
	}

	db, err := client.InitDBClient(&cfg.Database)
	if err != nil {
		slog.Error("failed to init database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	inventoryRepo := repository.NewInventoryRepository(db)
	shippingCostRepo := repository.NewShippingCostRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	if cfg.Environment.Name == "development" {
		if err := inventoryRepo.Seed(ctx); err != nil {
			slog.Error("failed to seed clothes", "error", err)
			os.Exit(1)
		}
		if err := shippingCostRepo.Seed(ctx); err != nil {
			slog.Error("failed to seed shipping costs", "error", err)
			os.Exit(1)
		}
		if cfg.Auth.JWTSecret != "" {
			if token, err := middleware.SignToken(cfg.Auth.JWTSecret, 1, 24*time.Hour); err == nil {
				slog.Info("development token for user 1", "token", token)
			}
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New()
	if err := m.Register(registry); err != nil {
		slog.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	mpClient := client.NewMercadoPagoClient(&cfg.MercadoPago)

	reconciler := service.NewOrderReconciler(db, purchaseRepo, shipmentRepo, inventoryRepo, m)
	checkoutService := service.NewCheckoutService(mpClient, cfg.MercadoPago, inventoryRepo, shippingCostRepo, m)
	webhookService := service.NewWebhookService(
		service.NewSignatureVerifier(cfg.MercadoPago.WebhookSecret, cfg.MercadoPago.SignatureTolerance),
		cfg.MercadoPago.VerifyAllKinds,
		mpClient,
		reconciler,
		webhookEventRepo,
		m,
	)

	userService := service.NewUserService(purchaseRepo, shipmentRepo)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(checkoutService, webhookService, userService, registry, cfg.Auth.JWTSecret)

	slog.Info("starting HTTP server", "addr", serverAddr, "environment", cfg.Environment.Name)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	slog.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
