package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/SurjaPal/FirePredict/internal/adapter/firedetect"
	httpadapter "github.com/SurjaPal/FirePredict/internal/adapter/http"
	kafkaadapter "github.com/SurjaPal/FirePredict/internal/adapter/kafka"
	"github.com/SurjaPal/FirePredict/internal/adapter/openweather"
	"github.com/SurjaPal/FirePredict/internal/config"
	"github.com/SurjaPal/FirePredict/internal/domain"
	"github.com/SurjaPal/FirePredict/internal/notify"
	"github.com/SurjaPal/FirePredict/internal/observability"
	"github.com/SurjaPal/FirePredict/internal/pipeline"
	"github.com/SurjaPal/FirePredict/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Detection store (STORE_PATH selects SQLite over in-memory).
	var st store.Store
	if cfg.StorePath != "" {
		sqliteStore, err := store.NewSQLiteStore(cfg.StorePath, clock)
		if err != nil {
			logger.Error("failed to open sqlite store", "path", cfg.StorePath, "error", err)
			os.Exit(1)
		}
		st = sqliteStore
		logger.Info("sqlite store enabled", "path", cfg.StorePath)
	} else {
		st = store.NewMemoryStore(clock)
		logger.Info("in-memory store enabled")
	}

	detector := firedetect.NewClient(cfg.DetectorURL, cfg.DetectorTimeout, logger)

	// Weather provider (feature-flagged via WEATHER_ENABLED / OPENWEATHER_API_KEY).
	var weather domain.WeatherProvider
	if cfg.WeatherEnabled {
		client := openweather.NewClient(cfg.WeatherAPIKey, cfg.WeatherTimeout, metrics, logger)
		weather = openweather.NewCachedProvider(client, cfg.WeatherCacheSize, cfg.WeatherCacheTTL, clock, metrics)
		logger.Info("openweathermap enabled", "cache_size", cfg.WeatherCacheSize, "cache_ttl", cfg.WeatherCacheTTL, "timeout", cfg.WeatherTimeout)
	} else {
		logger.Info("openweathermap disabled, readings will be synthetic")
	}

	dispatcher := notify.NewSimulatedDispatcher(cfg.NotifySuccessRate, rand.NewSource(time.Now().UnixNano()))
	notifier := notify.New(st, dispatcher, metrics, logger)

	// Kafka alert stream (feature-flagged via KAFKA_ENABLED).
	var alerts pipeline.AlertPublisher
	var alertWriter *kafkaadapter.AlertWriter
	if cfg.KafkaEnabled {
		alertWriter = kafkaadapter.NewAlertWriter(cfg, metrics, logger)
		alerts = alertWriter
		logger.Info("kafka alert stream enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAlertTopic)
	} else {
		logger.Info("kafka alert stream disabled")
	}

	svc := pipeline.New(st, detector, weather, notifier, alerts, metrics, logger, rand.NewSource(time.Now().UnixNano()))

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, st, clock, cfg.MaxUploadBytes, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if alertWriter != nil {
		if err := alertWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := st.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
