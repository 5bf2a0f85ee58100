package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xaenox/kindred/internal/api"
	"github.com/xaenox/kindred/internal/bot"
	"github.com/xaenox/kindred/internal/metrics"
	"github.com/xaenox/kindred/internal/service"
	"github.com/xaenox/kindred/internal/storage"
	"github.com/xaenox/kindred/pkg/config"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the moderation bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func openStorage(cfg config.DatabaseConfig, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		logger.Info("Using PostgreSQL storage", zap.String("host", cfg.Host), zap.String("dbname", cfg.DBName))
		return storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			DBName:   cfg.DBName,
			SSLMode:  cfg.SSLMode,
		}, logger)
	case config.DriverSQLite:
		logger.Info("Using SQLite storage", zap.String("path", cfg.Path))
		return storage.NewSQLiteStorage(cfg.Path, logger)
	default:
		logger.Info("Using in-memory storage")
		return storage.NewMemoryStorage(), nil
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := openStorage(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNew(reg)

	svc, err := service.New(store, service.Config{
		SafetyAlertThreshold: cfg.Scoring.SafetyAlertThreshold,
		DiscoveryLimit:       cfg.Scoring.DiscoveryLimit,
		CacheSize:            cfg.Scoring.CacheSize,
		DiscoveryWorkers:     cfg.Scoring.DiscoveryWorkers,
	}, logger, service.WithMetrics(m))
	if err != nil {
		return err
	}
	if err := svc.SeedQuestions(ctx); err != nil {
		return fmt.Errorf("failed to seed onboarding questions: %w", err)
	}

	var moderation *bot.Bot
	if cfg.Telegram.Token != "" {
		moderation, err = bot.New(bot.Config{
			Token:           cfg.Telegram.Token,
			ModeratorChatID: cfg.Telegram.ModeratorChatID,
			AlertsPerMinute: cfg.Telegram.AlertsPerMinute,
		}, svc, m, logger)
		if err != nil {
			return err
		}
		svc.SetAlerter(moderation)
	} else {
		logger.Info("Telegram token not set, moderation bot disabled")
	}

	server := api.NewServer(svc, reg, api.ServerConfig{
		Addr:         cfg.Server.Addr,
		Debug:        cfg.Server.Debug,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	if moderation != nil {
		g.Go(func() error {
			logger.Info("Starting moderation bot", zap.Int64("moderator_chat_id", cfg.Telegram.ModeratorChatID))
			return moderation.Start(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
