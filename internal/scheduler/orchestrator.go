// Package scheduler triggers exports on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata" // schedules must resolve zones on hosts without zoneinfo

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/gridiron/internal/export"
	"github.com/fortuna/gridiron/internal/logging"
)

// Enqueuer queues export runs. *export.Service implements it.
type Enqueuer interface {
	Enqueue(ctx context.Context, req export.Request) (*export.Run, error)
}

// SeasonFunc resolves the season at fire time.
type SeasonFunc func(now time.Time) int

// Config holds scheduler configuration
type Config struct {
	Schedule   string        // standard 5-field cron, default "0 9 * * 2"
	Timezone   string        // default America/New_York
	RunOnStart bool          // enqueue once when Start is called
	MaxRetries int           // enqueue attempts per fire, default 3
	RetryDelay time.Duration // default 5s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Schedule:   "0 9 * * 2",
		Timezone:   "America/New_York",
		MaxRetries: 3,
		RetryDelay: 5 * time.Second,
	}
}

// Orchestrator enqueues a season export every time the schedule fires.
type Orchestrator struct {
	cron     *cron.Cron
	entry    cron.EntryID
	enqueuer Enqueuer
	season   SeasonFunc
	config   Config
	location *time.Location
	logger   logrus.FieldLogger
}

// NewOrchestrator validates the schedule and timezone.
func NewOrchestrator(enqueuer Enqueuer, season SeasonFunc, cfg Config, logger logrus.FieldLogger) (*Orchestrator, error) {
	defaults := DefaultConfig()
	if cfg.Schedule == "" {
		cfg.Schedule = defaults.Schedule
	}
	if cfg.Timezone == "" {
		cfg.Timezone = defaults.Timezone
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaults.RetryDelay
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load schedule timezone %q: %w", cfg.Timezone, err)
	}

	o := &Orchestrator{
		cron:     cron.New(cron.WithLocation(loc)),
		enqueuer: enqueuer,
		season:   season,
		config:   cfg,
		location: loc,
		logger:   logging.Component(logger, "scheduler"),
	}

	entry, err := o.cron.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := o.Trigger(ctx); err != nil {
			o.logger.WithError(err).Error("scheduled export not queued")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parse export schedule %q: %w", cfg.Schedule, err)
	}
	o.entry = entry
	return o, nil
}

// Start runs the cron loop in the background.
func (o *Orchestrator) Start() {
	o.cron.Start()
	o.logger.WithFields(logrus.Fields{
		"schedule": o.config.Schedule,
		"timezone": o.location.String(),
		"next":     o.Next().Format(time.RFC3339),
	}).Info("export scheduler started")

	if o.config.RunOnStart {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := o.Trigger(ctx); err != nil {
				o.logger.WithError(err).Error("initial export not queued")
			}
		}()
	}
}

// Stop halts the schedule and waits for a running trigger to return.
func (o *Orchestrator) Stop(ctx context.Context) error {
	done := o.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next reports when the schedule fires next. Zero before Start.
func (o *Orchestrator) Next() time.Time {
	return o.cron.Entry(o.entry).Next
}

// Trigger resolves the season and enqueues a run, retrying on failure.
func (o *Orchestrator) Trigger(ctx context.Context) error {
	season := o.season(time.Now().In(o.location))
	req := export.Request{Season: season, Trigger: export.TriggerSchedule}

	var lastErr error
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		run, err := o.enqueuer.Enqueue(ctx, req)
		if err == nil {
			o.logger.WithFields(logrus.Fields{"run_id": run.RunID, "season": season}).Info("scheduled export queued")
			return nil
		}
		lastErr = err
		o.logger.WithError(err).WithField("attempt", attempt).Warn("enqueue attempt failed")

		if attempt < o.config.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.config.RetryDelay):
			}
		}
	}
	return fmt.Errorf("enqueue scheduled export for %d: %w", season, lastErr)
}
