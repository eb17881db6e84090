package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/config"
	"github.com/fortuna/gridiron/internal/export"
	"github.com/fortuna/gridiron/internal/ingest"
	"github.com/fortuna/gridiron/internal/ingest/browser"
	"github.com/fortuna/gridiron/internal/ingest/espn"
	"github.com/fortuna/gridiron/internal/ingest/nflverse"
	"github.com/fortuna/gridiron/internal/metrics"
	"github.com/fortuna/gridiron/internal/output"
	"github.com/fortuna/gridiron/internal/publisher"
	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/scoring"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
	"github.com/fortuna/gridiron/internal/transform"
)

// backends are the optional stateful dependencies. Any field may be nil.
type backends struct {
	db    *store.Database
	redis *cache.RedisCache
}

func (b *backends) Close() {
	if b.redis != nil {
		b.redis.Close()
	}
	if b.db != nil {
		b.db.Close()
	}
}

// connectBackends opens Postgres and Redis when configured. With required
// set, a configured backend that cannot be reached is an error; otherwise
// it is logged and skipped.
func connectBackends(ctx context.Context, cfg config.Config, logger logrus.FieldLogger, required bool) (*backends, error) {
	b := &backends{}

	if cfg.DatabaseDSN != "" {
		db, err := store.NewDatabase(cfg.DatabaseDSN, logger)
		if err == nil {
			err = db.RunMigrations(ctx)
			if err != nil {
				db.Close()
			}
		}
		switch {
		case err == nil:
			b.db = db
			logger.Info("connected to postgres")
		case required:
			return nil, fmt.Errorf("connect database: %w", err)
		default:
			logger.WithError(err).Warn("postgres unavailable, records will not be stored")
		}
	}

	if cfg.RedisURL != "" {
		rc, err := connectRedis(ctx, cfg.RedisURL, logger, required)
		switch {
		case err == nil:
			b.redis = rc
			logger.Info("connected to redis")
		case required:
			b.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		default:
			logger.WithError(err).Warn("redis unavailable, running without cache")
		}
	}

	return b, nil
}

// connectRedis retries when the server is expected to come up alongside us.
func connectRedis(ctx context.Context, url string, logger logrus.FieldLogger, retry bool) (*cache.RedisCache, error) {
	attempts := 1
	if retry {
		attempts = 15
	}
	retryDelay := 2 * time.Second

	var lastErr error
	for i := 0; i < attempts; i++ {
		rc, err := cache.NewRedisCache(url)
		if err == nil {
			return rc, nil
		}
		lastErr = err
		if i < attempts-1 {
			logger.WithError(err).WithField("attempt", i+1).Warn("redis connection failed, retrying")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return nil, lastErr
}

// pipeline is a wired export runner plus the resources it owns.
type pipeline struct {
	runner     *export.Runner
	writer     *output.Writer
	reconciler *reconciliation.Engine
	cleanup    func()
}

func buildPipeline(ctx context.Context, cfg config.Config, b *backends, rec *metrics.Recorder, logger logrus.FieldLogger) (*pipeline, error) {
	strategy, err := reconciliation.ParseStrategy(cfg.Pipeline.ReconcileStrategy)
	if err != nil {
		return nil, err
	}

	clientCfg := nflverse.Config{
		BaseURL:      cfg.Provider.BaseURL,
		SchedulesURL: cfg.Provider.SchedulesURL,
		Timeout:      cfg.Provider.Timeout,
		MaxRetries:   cfg.Provider.MaxRetries,
		CacheTTL:     cfg.CacheTTL,
		Metrics:      rec,
		Logger:       logger,
	}
	if b.redis != nil {
		clientCfg.Cache = b.redis
	}
	stats := nflverse.New(clientCfg)

	cleanup := func() {}
	var fallback ingest.InjurySource
	if cfg.Pipeline.InjuryFallback == config.FallbackESPN {
		var renderer espn.Renderer
		if cfg.Pipeline.ESPNRenderer == config.RendererBrowser {
			br := browser.NewRenderer(browser.Options{WaitSelector: "div.ResponsiveTable", Logger: logger})
			renderer = br
			cleanup = br.Close
		} else {
			renderer = espn.NewHTTPRenderer(&http.Client{Timeout: cfg.Provider.Timeout})
		}
		fallback = espn.New(cfg.Pipeline.ESPNInjuriesURL, renderer, logger)
	}

	reconciler := reconciliation.NewEngine(strategy)
	engine := transform.NewEngine(
		reconciler,
		transform.Options{
			SeasonType:  cfg.Pipeline.SeasonType,
			TeamDefense: cfg.Pipeline.IncludeTeamDefense,
			Defense:     scoring.DefenseOptions{FumblesForced: cfg.Pipeline.ScoreFumblesForced},
		},
		rec,
		logger,
	)

	writer := output.NewWriter(cfg.Output.Dir, cfg.Output.Layout)

	runnerCfg := export.RunnerConfig{
		Loader:  ingest.NewLoader(stats, fallback, logger),
		Builder: engine,
		Writer:  writer,
		LoadOptions: ingest.Options{
			TeamDefense: cfg.Pipeline.IncludeTeamDefense,
			Injuries:    cfg.Pipeline.IncludeInjuries,
			Rosters:     cfg.Pipeline.IncludeRosters,
		},
		Metrics: rec,
		Logger:  logger,
	}

	if cfg.Output.S3Bucket != "" {
		uploader, err := output.NewS3Uploader(ctx, cfg.Output.S3Bucket, cfg.Output.S3Prefix)
		if err != nil {
			logger.WithError(err).Warn("s3 upload disabled")
		} else {
			runnerCfg.Uploader = uploader
		}
	}
	if b.db != nil {
		runnerCfg.Sinks = append(runnerCfg.Sinks, repository.NewRecordRepository(b.db.DB()))
	}
	if b.redis != nil {
		runnerCfg.Notifiers = append(runnerCfg.Notifiers, publisher.NewRedisStreamPublisher(b.redis.Client()))
	}

	return &pipeline{
		runner:     export.NewRunner(runnerCfg),
		writer:     writer,
		reconciler: reconciler,
		cleanup:    cleanup,
	}, nil
}
