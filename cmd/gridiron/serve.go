package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fortuna/gridiron/internal/api/rest"
	"github.com/fortuna/gridiron/internal/api/websocket"
	"github.com/fortuna/gridiron/internal/config"
	"github.com/fortuna/gridiron/internal/export"
	"github.com/fortuna/gridiron/internal/metrics"
	"github.com/fortuna/gridiron/internal/scheduler"
	"github.com/fortuna/gridiron/internal/season"
	"github.com/fortuna/gridiron/internal/service"
	"github.com/fortuna/gridiron/internal/store/repository"
)

type serveOptions struct {
	runOnStart bool
	noSchedule bool
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API, websocket feed and export scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := root.loadConfig()
			if err := cfg.Validate(); err != nil {
				logger.WithError(err).Error("invalid configuration")
				return err
			}
			return runServe(cfg, opts, logger)
		},
	}
	cmd.Flags().BoolVar(&opts.runOnStart, "run-on-start", false, "queue an export immediately")
	cmd.Flags().BoolVar(&opts.noSchedule, "no-schedule", false, "disable the cron schedule")
	return cmd
}

func runServe(cfg config.Config, opts *serveOptions, logger *logrus.Logger) error {
	logger.WithField("version", serviceVersion).Infof("starting %s", serviceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := connectBackends(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer b.Close()

	rec := metrics.NewRecorder()
	p, err := buildPipeline(ctx, cfg, b, rec, logger)
	if err != nil {
		return err
	}
	defer p.cleanup()

	wsServer := websocket.NewServer(cfg.WSPort, logger)
	p.runner.AddNotifier(wsServer.Hub())

	var runs export.RunStore = export.NewMemoryStore()
	if b.db != nil {
		runs = export.NewRepository(b.db)
	} else {
		logger.Warn("DATABASE_DSN not set, export history is kept in memory")
	}
	exportService := export.NewService(runs, p.runner, export.ServiceOptions{}, logger)
	exportService.Start()

	currentSeason := func(now time.Time) int {
		s, _ := season.Resolve(season.Options{Env: cfg.Season, Now: now, Logger: logger})
		return s
	}

	var sched *scheduler.Orchestrator
	if !opts.noSchedule {
		sched, err = scheduler.NewOrchestrator(exportService, currentSeason, scheduler.Config{
			Schedule:   cfg.ExportSchedule,
			Timezone:   cfg.ScheduleTimezone,
			RunOnStart: opts.runOnStart,
		}, logger)
		if err != nil {
			return err
		}
		sched.Start()
	}

	deps := rest.Dependencies{
		Exports:       exportService,
		Files:         p.writer,
		DefaultSeason: func() int { return currentSeason(time.Now()) },
		HealthChecks:  map[string]rest.HealthCheck{},
		Reconciler:    p.reconciler,
		Metrics:       rec,
		MetricsPath:   rec.Handler(),
		Logger:        logger,
	}
	if b.db != nil {
		deps.Records = service.NewRecordService(repository.NewRecordRepository(b.db.DB()))
		deps.HealthChecks["postgres"] = b.db.HealthCheck
	}
	if b.redis != nil {
		deps.HealthChecks["redis"] = b.redis.HealthCheck
	}
	restServer := rest.NewServer(cfg.RESTPort, deps)

	errCh := make(chan error, 2)
	go func() {
		logger.WithField("port", cfg.RESTPort).Info("REST API listening")
		if err := restServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := wsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		logger.WithField("signal", sig.String()).Info("shutting down")
	case runErr = <-errCh:
		logger.WithError(runErr).Error("server failed, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			logger.WithError(err).Warn("scheduler shutdown")
		}
	}
	if err := restServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("REST API server shutdown")
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("websocket server shutdown")
	}
	if err := exportService.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("export service shutdown")
	}

	logger.Info("gridiron stopped")
	return runErr
}
