package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/awmpietro/guard-patrol-case/internal/app"
	"github.com/awmpietro/guard-patrol-case/internal/config"
	"github.com/awmpietro/guard-patrol-case/internal/patrol"
	"github.com/awmpietro/guard-patrol-case/internal/patrol/cache"
	"github.com/awmpietro/guard-patrol-case/internal/patrol/expect"
	"github.com/awmpietro/guard-patrol-case/internal/transport/httptransport"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	mode, err := patrol.ParseMode(cfg.Mode)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	observer := patrol.NewAsyncPhaseObserver(patrol.NewPhaseLatencyLogger(logger), cfg.ObsBuffer)
	defer func() {
		observer.Close()
		if n := observer.Dropped(); n > 0 {
			logger.Warn("phase samples dropped", "count", n)
		}
	}()
	engine := patrol.NewEngine(
		patrol.WithMode(mode),
		patrol.WithStepBudgetFactor(cfg.StepBudgetFactor),
		patrol.WithWorkers(cfg.Workers),
		patrol.WithPhaseObserver(observer),
		patrol.WithLogger(logger),
	)

	svc := app.NewService(patrol.NewParser(), engine, cache.NewInMemory(cfg.CacheMaxItems), expect.NewAsserter())
	h := httptransport.NewHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("/patrol", h.Patrol)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdown <- srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", cfg.HTTPAddr, "mode", mode)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-shutdown
}
