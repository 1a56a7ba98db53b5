package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	corecfg "github.com/cdrlab/cdr-insights/internal/core/config"
	"github.com/cdrlab/cdr-insights/internal/core/storage"
	"github.com/cdrlab/cdr-insights/internal/core/storage/memory"
	"github.com/cdrlab/cdr-insights/internal/core/storage/postgres"
	"github.com/cdrlab/cdr-insights/internal/ingestion"
	"github.com/cdrlab/cdr-insights/internal/insights"
	"github.com/cdrlab/cdr-insights/internal/migrations"
	"github.com/cdrlab/cdr-insights/internal/server"
)

func main() {
	configPath := flag.String("config", "cdr.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration (.env, then file + env overrides)
	_ = godotenv.Load()

	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"addr", fmtAddr(cfg.Server.Host, cfg.Server.Port),
		"storage", cfg.Database.Type)

	// 2. Initialize Storage
	var store storage.RecordStore
	var db *sql.DB

	switch cfg.Database.Type {
	case "postgres":
		adapter, err := postgres.NewAdapter(
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
		)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer adapter.Close()

		if err := migrations.RunMigrations(adapter.DB(), cfg.Database.AutoMigrate); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}

		if err := adapter.Prepare(); err != nil {
			slog.Error("Failed to prepare database statements", "error", err)
			os.Exit(1)
		}

		store = adapter
		db = adapter.DB()
	case "memory":
		slog.Warn("Using in-memory record store; data is lost on restart")
		store = memory.NewStore()
	default:
		slog.Error("Unsupported storage type", "type", cfg.Database.Type)
		os.Exit(1)
	}

	// 3. Initialize Services
	ingestionSvc := ingestion.NewService(store, cfg.Server.MaxBodySizeMB)
	insightsSvc := insights.NewService(store)

	// 4. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), db, cfg.Server.Mode)
	ingestionSvc.RegisterRoutes(srv.Engine)
	insightsSvc.RegisterRoutes(srv.Engine)

	// 5. Run until a signal arrives
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
