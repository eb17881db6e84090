package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/gridiron/internal/logging"
)

// Executor runs one export. *Runner implements it.
type Executor interface {
	Run(ctx context.Context, spec Spec, reporter Reporter) (*Result, error)
}

// ServiceOptions tunes the worker loop.
type ServiceOptions struct {
	HistoryLimit int
	PollInterval time.Duration
}

// Service coordinates run persistence, execution, and status reporting.
type Service struct {
	store  RunStore
	runner Executor

	historyLimit int
	pollInterval time.Duration
	wake         chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger logrus.FieldLogger
}

// NewService constructs a Service. Call Start to launch the worker.
func NewService(store RunStore, runner Executor, opts ServiceOptions, logger logrus.FieldLogger) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 10
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 3 * time.Second
	}

	return &Service{
		store:        store,
		runner:       runner,
		historyLimit: opts.HistoryLimit,
		pollInterval: opts.PollInterval,
		wake:         make(chan struct{}, 1),
		ctx:          ctx,
		cancel:       cancel,
		logger:       logging.Component(logger, "export-service"),
	}
}

// Start launches the background worker loop.
func (s *Service) Start() {
	if err := s.store.ResetStuckRuns(s.ctx); err != nil {
		s.logger.WithError(err).Warn("failed to reset runs")
	}

	s.wg.Add(1)
	go s.worker()
}

// Shutdown stops the worker and waits for the current run to return.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Enqueue stores a queued run for the worker.
func (s *Service) Enqueue(ctx context.Context, req Request) (*Run, error) {
	if req.Season <= 0 {
		return nil, fmt.Errorf("export run requires a season")
	}
	if req.Trigger == "" {
		req.Trigger = TriggerManual
	}

	run := &Run{
		RunID:   uuid.NewString(),
		Season:  req.Season,
		Status:  RunStatusQueued,
		Trigger: req.Trigger,
		DryRun:  req.DryRun,
	}

	stored, err := s.store.CreateRun(ctx, run)
	if err != nil {
		return nil, err
	}

	if err := s.store.AppendEvent(ctx, stored.RunID, "queued", "Run queued"); err != nil {
		s.logger.WithError(err).Debug("append queued event")
	}

	select {
	case s.wake <- struct{}{}:
	default:
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":  stored.RunID,
		"season":  stored.Season,
		"trigger": stored.Trigger,
	}).Info("export queued")
	return stored, nil
}

// GetStatus returns the currently running run plus recent history.
func (s *Service) GetStatus(ctx context.Context) (*StatusSummary, error) {
	active, err := s.store.GetActiveRun(ctx)
	if err != nil {
		return nil, err
	}

	history, err := s.store.ListRecentRuns(ctx, s.historyLimit)
	if err != nil {
		return nil, err
	}

	return &StatusSummary{
		ActiveRun: active,
		History:   history,
	}, nil
}

func (s *Service) worker() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		if s.ctx.Err() != nil {
			return
		}

		run, err := s.store.ClaimNextRun(s.ctx)
		if err != nil {
			s.logger.WithError(err).Error("claim run")
		}
		if run != nil {
			s.executeRun(run)
			continue
		}

		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
		case <-ticker.C:
		}
	}
}

func (s *Service) executeRun(run *Run) {
	spec := Spec{
		RunID:   run.RunID,
		Season:  run.Season,
		DryRun:  run.DryRun,
		Trigger: run.Trigger,
	}

	reporter := &runReporter{ctx: s.ctx, store: s.store, runID: run.RunID, logger: s.logger}

	result, err := s.runner.Run(s.ctx, spec, reporter)
	if err != nil {
		if updateErr := s.store.UpdateStatus(context.Background(), run.RunID, RunStatusFailed, err); updateErr != nil {
			s.logger.WithError(updateErr).Error("mark run failed")
		}
		return
	}

	if err := s.store.CompleteRun(context.Background(), result); err != nil {
		s.logger.WithError(err).Error("mark run completed")
	}
}

// runReporter mirrors runner callbacks into the run's event log.
type runReporter struct {
	ctx    context.Context
	store  RunStore
	runID  string
	logger logrus.FieldLogger
}

func (r *runReporter) append(stage Stage, message string) {
	if err := r.store.AppendEvent(r.ctx, r.runID, stage, message); err != nil {
		r.logger.WithError(err).WithField("run_id", r.runID).Debug("append run event")
	}
}

func (r *runReporter) OnRunStart(spec Spec) {
	r.append("start", fmt.Sprintf("Export for season %d starting", spec.Season))
}

func (r *runReporter) OnStage(stage Stage, message string) {
	r.append(stage, message)
}

func (r *runReporter) OnRunComplete(result *Result) {
	r.append("complete", fmt.Sprintf("Export complete: %d records", result.Records))
}

func (r *runReporter) OnRunError(err error) {
	r.append("error", err.Error())
}
