package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/awmpietro/guard-patrol-case/internal/app"
	"github.com/awmpietro/guard-patrol-case/internal/config"
	"github.com/awmpietro/guard-patrol-case/internal/patrol"
	"github.com/awmpietro/guard-patrol-case/internal/patrol/cache"
	"github.com/awmpietro/guard-patrol-case/internal/patrol/expect"
	"github.com/awmpietro/guard-patrol-case/internal/transport/lambdatransport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	mode, err := patrol.ParseMode(cfg.Mode)
	if err != nil {
		logger.Error("invalid config", "err", err)
		os.Exit(1)
	}

	phaseObserver := patrol.NewAsyncPhaseObserver(patrol.NewPhaseLatencyLogger(logger), cfg.ObsBuffer)
	engine := patrol.NewEngine(
		patrol.WithMode(mode),
		patrol.WithStepBudgetFactor(cfg.StepBudgetFactor),
		patrol.WithWorkers(cfg.Workers),
		patrol.WithPhaseObserver(phaseObserver),
		patrol.WithLogger(logger),
	)
	c := cache.NewInMemory(cfg.CacheMaxItems)

	svc := app.NewService(patrol.NewParser(), engine, c, expect.NewAsserter())
	h := lambdatransport.NewHandler(svc)

	// the runtime delivers SIGTERM before shutting the sandbox down
	lambda.StartWithOptions(h.Patrol, lambda.WithEnableSIGTERM(phaseObserver.Close))
}
