package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/todoapp/todo-api/internal/backend"
	"github.com/todoapp/todo-api/internal/config"
	todohttp "github.com/todoapp/todo-api/internal/http"
	"github.com/todoapp/todo-api/internal/service"
)

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.ServerPort,
		"storage_mode", cfg.StorageMode,
		"log_level", cfg.LogLevel,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The storage medium is chosen once; a failed probe commits to memory for the process lifetime.
	store := backend.Select(ctx, cfg.Mongo, cfg.StorageMode, logger)
	logger.Info("storage selected", "backend", store.Kind())

	todoSvc := service.NewTodoService(store.Todos())

	srv, err := todohttp.NewServer(cfg.ServerPort, logger, todoSvc, store)
	if err != nil {
		return err
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := srv.Shutdown(shutdownCtx)
	if err := store.Close(shutdownCtx); err != nil {
		logger.Error("failed to close storage", "error", err)
	}
	if shutdownErr != nil {
		return shutdownErr
	}

	logger.Info("server stopped gracefully")
	return nil
}
