package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/staypulse/insights-engine/internal/api"
	"github.com/staypulse/insights-engine/internal/cache"
	"github.com/staypulse/insights-engine/internal/config"
	"github.com/staypulse/insights-engine/internal/engine"
	"github.com/staypulse/insights-engine/internal/metrics"
	"github.com/staypulse/insights-engine/internal/refresh"
	"github.com/staypulse/insights-engine/internal/repo"
	"github.com/staypulse/insights-engine/internal/services"
	"github.com/staypulse/insights-engine/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	// Local development convenience; production deployments set real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting insights-engine", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	cacheProvider := buildCacheProvider(cfg.Cache, logger)
	defer cacheProvider.Close()

	feedstore := repo.NewFeedstoreClient(
		cfg.Feedstore.BaseURL,
		cfg.Feedstore.RecordsPath,
		cfg.Feedstore.Timeout,
		cfg.Feedstore.MaxRetries,
		repo.FeedstoreOptions{
			Cache:    cacheProvider,
			CacheTTL: cfg.Cache.RecordsTTL,
			Logger:   logger,
		},
	)

	sentinels, err := engine.LoadSentinelPack(cfg.Sentinels.Path)
	if err != nil {
		logger.Error("failed to load sentinel pack", slog.Any("error", err))
		os.Exit(1)
	}
	normalizer := engine.NewNormalizer(sentinels)

	insightsService := services.NewInsightsService(logger, feedstore, normalizer)

	handler := api.NewHandler(logger, insightsService)
	server, err := api.NewServer(cfg.Server, handler.Routes())
	if err != nil {
		logger.Error("failed to create HTTP server", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var refresher *refresh.Refresher
	if cfg.Refresh.Enabled {
		refresher = refresh.NewRefresher(logger, feedstore, cfg.Refresh.Schedule, cfg.Refresh.Scopes)
		if err := refresher.Start(ctx); err != nil {
			logger.Error("failed to start cache refresher", slog.Any("error", err))
			os.Exit(1)
		}
	}

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("HTTP server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	if refresher != nil {
		refresher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("insights-engine stopped")
}

func buildCacheProvider(cfg config.CacheConfig, logger *slog.Logger) cache.Provider {
	switch strings.ToLower(cfg.Provider) {
	case "valkey":
		provider, err := cache.NewValkeyProvider(cache.ValkeyConfig{
			Addr:         cfg.Addr,
			Username:     cfg.Username,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			MaxRetries:   cfg.MaxRetries,
			TLS:          cfg.TLS,
		})
		if err != nil {
			logger.Warn("valkey cache unavailable, falling back to in-memory", slog.Any("error", err))
			return cache.NewMemoryProvider()
		}
		return provider
	case "memory":
		return cache.NewMemoryProvider()
	default:
		return cache.NoopProvider{}
	}
}
