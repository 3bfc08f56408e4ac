package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solvik/vanityscan/internal/api"
	"github.com/solvik/vanityscan/internal/clock/system"
	"github.com/solvik/vanityscan/internal/config"
	"github.com/solvik/vanityscan/internal/gate"
	"github.com/solvik/vanityscan/internal/id/uuid"
	"github.com/solvik/vanityscan/internal/logging"
	"github.com/solvik/vanityscan/internal/metrics"
	"github.com/solvik/vanityscan/internal/nova"
	"github.com/solvik/vanityscan/internal/progress"
	"github.com/solvik/vanityscan/internal/rules"
	"github.com/solvik/vanityscan/internal/scan"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan the inventory until the operator stops at a match.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd.Context())
		},
	}
}

func runScan(parent context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	engine := rules.NewEngine(rules.Set{
		QuadRun:        cfg.Rules.QuadRun,
		TripleRun:      cfg.Rules.TripleRun,
		QuadSequence:   cfg.Rules.QuadSequence,
		TripleSequence: cfg.Rules.TripleSequence,
		Targets:        cfg.Rules.Targets,
	})

	clock := system.New()
	retry := scan.NewRetryPolicy(
		cfg.HTTP.MaxRetries,
		time.Duration(cfg.HTTP.BackoffInitialMs)*time.Millisecond,
		time.Duration(cfg.HTTP.BackoffMaxMs)*time.Millisecond,
	)
	client := nova.NewClient(nova.Config{
		Endpoint:    cfg.HTTP.Endpoint,
		Origin:      cfg.HTTP.Origin,
		UserAgent:   cfg.HTTP.UserAgent,
		Timeout:     cfg.RequestTimeout(),
		Concurrency: cfg.Scan.Concurrency,
	}, retry, uuid.NewGenerator(), logger.Named("nova"))

	session := scan.NewSession(clock, cfg.Scan.Concurrency)
	reporter := progress.NewTerminal(os.Stdout)
	operatorGate := gate.NewTerminal(os.Stdin, os.Stdout, reporter, logger.Named("gate"))
	worker := scan.NewWorker(client, engine, clock, logger.Named("worker"))
	scheduler := scan.NewScheduler(worker, operatorGate, reporter, session, scan.SchedulerConfig{
		Concurrency: cfg.Scan.Concurrency,
		BatchDelay:  cfg.BatchDelay(),
	}, logger.Named("scheduler"))

	if cfg.Server.Enabled {
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           api.NewServer(session, logger.Named("api")).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("status server started", zap.Int("port", cfg.Server.Port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("status server error", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("status server shutdown error", zap.Error(err))
			}
		}()
	}

	logger.Info("scan starting",
		zap.Int("concurrency", cfg.Scan.Concurrency),
		zap.Duration("batch_delay", cfg.BatchDelay()),
		zap.Int("custom_targets", len(cfg.Rules.Targets)),
	)

	if err := scheduler.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("scan interrupted", zap.Int64("total_attempts", session.Snapshot().TotalAttempts))
			return nil
		}
		return fmt.Errorf("run scheduler: %w", err)
	}

	logger.Info("scan finished", zap.Int64("total_attempts", session.Snapshot().TotalAttempts))
	return nil
}
