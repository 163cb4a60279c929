package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"crypto-price-tracker/internal/adapter/cache"
	httpRouter "crypto-price-tracker/internal/adapter/http"
	"crypto-price-tracker/internal/adapter/repository"
	"crypto-price-tracker/internal/adapter/scheduler"
	"crypto-price-tracker/internal/adapter/settings"
	"crypto-price-tracker/internal/config"
	"crypto-price-tracker/internal/domain/model"
	"crypto-price-tracker/internal/metrics"
	"crypto-price-tracker/internal/service"
	"crypto-price-tracker/pkg/logger"
)

func main() {
	log := logger.NewLogger(os.Getenv("LOG_LEVEL"))
	log.Info("Starting crypto price tracker")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	fetcher := repository.NewRetryingFetcher(
		&http.Client{Timeout: cfg.PriceAPI.Timeout},
		repository.RetryPolicy{
			MaxAttempts: cfg.PriceAPI.MaxAttempts,
			BaseDelay:   cfg.PriceAPI.BaseDelay,
		},
		log,
		appMetrics,
	)
	priceAPI := repository.NewCryptoCompareAPI(
		cfg.PriceAPI.BaseURL,
		cfg.PriceAPI.APIKey,
		fetcher,
		repository.NewSymbolMapper(repository.DefaultSymbolTable),
		log,
		appMetrics,
		repository.WithPacing(cfg.PriceAPI.PacingDelay, nil),
	)

	seriesCache := cache.NewMemoryCache(cfg.Cache.TTL, log)
	queryService := service.NewQueryService(priceAPI, seriesCache, log, appMetrics)

	store := settings.NewFileStore(cfg.Tracker.SettingsPath, model.DefaultPollConfig(), log)
	pollConfig, err := store.Load(context.Background())
	if err != nil {
		log.Warn("Using default poll config", "error", err)
	}

	tracker := service.NewTracker(priceAPI, priceAPI, log, appMetrics)
	if err := tracker.Update(cfg.Tracker.DefaultCurrency, cfg.Tracker.DefaultAssets, pollConfig); err != nil {
		log.Error("Failed to start tracker", "error", err)
		os.Exit(1)
	}

	sweeper := scheduler.NewCacheSweeper(cfg.Cache.SweepSchedule, queryService, log)
	if err := sweeper.Start(); err != nil {
		log.Error("Failed to start cache sweeper", "error", err, "schedule", cfg.Cache.SweepSchedule)
		os.Exit(1)
	}

	handler := httpRouter.NewHandler(tracker, queryService, store, log, appMetrics)
	router := httpRouter.NewRouter(handler, log, appMetrics, prometheus.DefaultGatherer)
	routes := router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      routes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	sweeper.Stop()
	tracker.Close()

	log.Info("Server exited")
}
