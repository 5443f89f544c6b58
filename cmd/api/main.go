package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"merchant-orders/internal/core/config"
	"merchant-orders/internal/core/logger"
	"merchant-orders/internal/core/metrics"
	"merchant-orders/internal/core/proxy"
	"merchant-orders/internal/core/server"
	credentialadapter "merchant-orders/internal/features/credentials/adapters"
	credentialservice "merchant-orders/internal/features/credentials/service"
	orderadapter "merchant-orders/internal/features/orders/adapters"
	orderhandler "merchant-orders/internal/features/orders/handler"
	"merchant-orders/internal/features/orders/ports"
	orderservice "merchant-orders/internal/features/orders/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// @title Merchant Orders API
// @version 1.0
// @description Merged order feed across Shiprocket, Razorpay and WooCommerce, plus Shiprocket shipment creation.
// @contact.name API Support
// @contact.email support@merchant-orders.dev
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("credential_store", cfg.CredentialStore.Backend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)

	proxySettings := proxy.Settings(cfg.Proxy)
	providerTimeout := cfg.Aggregation.ProviderTimeout()
	rateLimit := orderadapter.WithRateLimit(cfg.Aggregation.ProviderRateLimit, cfg.Aggregation.ProviderBurst)

	// Credential store & token manager
	store, closeStore, err := credentialadapter.NewCredentialStore(ctx, cfg.CredentialStore)
	if err != nil {
		l.Fatal("Failed to open credential store", zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			l.Warn("Failed to close credential store", zap.Error(err))
		}
	}()

	tokens := credentialservice.NewTokenManager(store)
	tokens.Register(
		credentialadapter.NewShiprocketAuthenticator(cfg.Shiprocket, proxySettings, providerTimeout),
		cfg.Shiprocket.TokenTTL(),
	)

	// Order providers. Shiprocket is always configured; the others only when credentials are present.
	shiprocketAdapter := orderadapter.NewShiprocketAdapter(cfg.Shiprocket, tokens, proxySettings, providerTimeout, rateLimit)
	if err := shiprocketAdapter.HealthCheck(ctx); err != nil {
		l.Fatal("Shiprocket Health Check Failed", zap.Error(err))
	}
	l.Info("Shiprocket connection verified")

	providers := []ports.OrderProvider{shiprocketAdapter}

	if cfg.Razorpay.Enabled() {
		rzpAdapter := orderadapter.NewRazorpayAdapter(cfg.Razorpay, proxySettings, providerTimeout, rateLimit)
		if err := rzpAdapter.HealthCheck(ctx); err != nil {
			l.Warn("Razorpay Health Check Failed", zap.Error(err))
		} else {
			l.Info("Razorpay connection verified")
		}
		providers = append(providers, rzpAdapter)
	}

	if cfg.WooCommerce.Enabled() {
		wcAdapter := orderadapter.NewWooCommerceAdapter(cfg.WooCommerce, proxySettings, providerTimeout, rateLimit)
		if err := wcAdapter.HealthCheck(ctx); err != nil {
			l.Warn("WooCommerce Health Check Failed", zap.Error(err))
		} else {
			l.Info("WooCommerce connection verified")
		}
		providers = append(providers, wcAdapter)
	}

	// Services & handlers
	orderService := orderservice.NewOrderService(providers, cfg.Aggregation)
	shipmentService := orderservice.NewShipmentService(shiprocketAdapter)

	l.Info("Order providers configured", zap.Any("sources", orderService.Sources()))

	srv := server.New(cfg, registry)

	// Register Routes
	orderhandler.Register(srv.App,
		orderhandler.NewOrderHandler(orderService),
		orderhandler.NewShipmentHandler(shipmentService),
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
	l.Info("Server stopped")
}
