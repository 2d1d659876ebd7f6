package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"recordbook/internal/config"
	"recordbook/internal/core"
	"recordbook/internal/export"
	"recordbook/internal/logging"
	"recordbook/internal/store"
	"recordbook/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	// Load and validate configuration
	cfg, err := config.Load(os.Getenv("RECORDBOOK_CONFIG"))
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"driver", cfg.Database.Driver,
		"auto_csv", cfg.Export.AutoCSV,
		"auto_json", cfg.Export.AutoJSON,
	)

	ctx := context.Background()

	// Open the record store for the configured backend
	var st *store.Store
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		st, err = store.OpenPostgres(ctx, cfg.Database.URL,
			cfg.Database.ConnectAttempts, cfg.Database.ConnectDelay, slog.Default())
	default:
		st, err = store.OpenSQLite(cfg.Database.Path, slog.Default())
	}
	if err != nil {
		slog.Error("failed to open record store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Ensure the schema exists; idempotent on every start
	if err := st.Init(ctx); err != nil {
		slog.Error("failed to initialize database schema", "error", err)
		os.Exit(1)
	}

	service := core.NewService(st)

	var files *export.FileWriter
	if cfg.Export.AutoCSV || cfg.Export.AutoJSON {
		files = &export.FileWriter{Dir: cfg.Export.Dir}
	}

	server, err := web.NewServer(service, files, cfg)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
