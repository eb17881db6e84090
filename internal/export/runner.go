package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/gridiron/internal/ingest"
	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/model"
	"github.com/fortuna/gridiron/internal/output"
	"github.com/fortuna/gridiron/internal/transform"
)

// Loader fetches the season's tables. *ingest.Loader implements it.
type Loader interface {
	Load(ctx context.Context, season int, opts ingest.Options) (*ingest.Tables, error)
}

// Builder turns tables into records. *transform.Engine implements it.
type Builder interface {
	Build(tables *ingest.Tables) ([]model.Record, transform.Summary, error)
}

// RunRecorder observes finished runs.
type RunRecorder interface {
	RecordExportRun(status string, duration time.Duration)
}

// RunnerConfig wires a Runner. Uploader, Sinks, Notifiers and Metrics are optional.
type RunnerConfig struct {
	Loader      Loader
	Builder     Builder
	Writer      *output.Writer
	LoadOptions ingest.Options
	Uploader    output.Uploader
	Sinks       []RecordSink
	Notifiers   []Notifier
	Metrics     RunRecorder
	Logger      logrus.FieldLogger
	Now         func() time.Time
}

// Runner executes one export: load, transform, write, then the optional
// sinks. Only load, transform and write can fail a run.
type Runner struct {
	loader    Loader
	builder   Builder
	writer    *output.Writer
	loadOpts  ingest.Options
	uploader  output.Uploader
	sinks     []RecordSink
	notifiers []Notifier
	metrics   RunRecorder
	logger    logrus.FieldLogger
	now       func() time.Time
}

// NewRunner constructs a runner.
func NewRunner(cfg RunnerConfig) *Runner {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		loader:    cfg.Loader,
		builder:   cfg.Builder,
		writer:    cfg.Writer,
		loadOpts:  cfg.LoadOptions,
		uploader:  cfg.Uploader,
		sinks:     cfg.Sinks,
		notifiers: cfg.Notifiers,
		metrics:   cfg.Metrics,
		logger:    logging.Component(cfg.Logger, "export"),
		now:       now,
	}
}

// AddNotifier registers another notifier. Not safe for use while a run is in flight.
func (r *Runner) AddNotifier(n Notifier) {
	if n != nil {
		r.notifiers = append(r.notifiers, n)
	}
}

// Run executes one export, reporting progress via the Reporter if provided.
func (r *Runner) Run(ctx context.Context, spec Spec, reporter Reporter) (*Result, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}
	if spec.RunID == "" {
		spec.RunID = uuid.NewString()
	}
	if spec.Season <= 0 {
		return nil, fmt.Errorf("export: invalid season %d", spec.Season)
	}

	start := r.now()
	log := r.logger.WithFields(logrus.Fields{"run_id": spec.RunID, "season": spec.Season})
	reporter.OnRunStart(spec)

	result, err := r.run(ctx, spec, reporter, log)
	duration := r.now().Sub(start)
	if err != nil {
		reporter.OnRunError(err)
		r.recordRun(string(RunStatusFailed), duration)
		log.WithError(err).Error("export failed")
		return nil, err
	}

	result.Duration = duration
	reporter.OnRunComplete(result)
	r.recordRun(string(RunStatusCompleted), duration)
	log.WithFields(logrus.Fields{
		"path":     result.Path,
		"records":  result.Records,
		"warnings": len(result.Warnings),
		"duration": duration.String(),
	}).Info("export complete")
	return result, nil
}

func (r *Runner) run(ctx context.Context, spec Spec, reporter Reporter, log logrus.FieldLogger) (*Result, error) {
	result := &Result{RunID: spec.RunID, Season: spec.Season, DryRun: spec.DryRun}

	reporter.OnStage(StageLoad, fmt.Sprintf("Loading nflverse tables for %d", spec.Season))
	tables, err := r.loader.Load(ctx, spec.Season, r.loadOpts)
	if err != nil {
		return nil, err
	}
	if tables.InjurySource != ingest.InjuriesFromNFLverse && r.loadOpts.Injuries {
		result.Warnings = append(result.Warnings, "injuries from "+tables.InjurySource)
	}

	reporter.OnStage(StageTransform, fmt.Sprintf("Transforming %d player rows", len(tables.Players)))
	records, summary, err := r.builder.Build(tables)
	if err != nil {
		return nil, err
	}
	result.Records = len(records)
	result.Summary = summary

	if spec.DryRun {
		reporter.OnStage(StageWrite, "Dry-run mode: no data will be written")
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, data, err := r.writer.Write(spec.Season, records)
	if err != nil {
		return nil, err
	}
	result.Path = path
	reporter.OnStage(StageWrite, fmt.Sprintf("Wrote %d records to %s", len(records), path))

	warn := func(stage Stage, err error) {
		msg := fmt.Sprintf("%s: %v", stage, err)
		result.Warnings = append(result.Warnings, msg)
		reporter.OnStage(stage, msg)
		log.WithError(err).WithField("stage", string(stage)).Warn("export side effect failed")
	}

	for _, sink := range r.sinks {
		n, err := sink.UpsertRecords(ctx, records)
		if err != nil {
			warn(StageSink, err)
			continue
		}
		reporter.OnStage(StageSink, fmt.Sprintf("Stored %d records", n))
	}

	if r.uploader != nil {
		location, err := r.uploader.Upload(ctx, r.writer.FileName(spec.Season), data)
		if err != nil {
			warn(StageUpload, err)
		} else {
			reporter.OnStage(StageUpload, "Uploaded "+location)
		}
	}

	event := model.ExportEvent{
		RunID:       spec.RunID,
		Season:      spec.Season,
		Path:        path,
		Records:     len(records),
		Players:     summary.Players,
		Defenses:    summary.Defenses,
		CompletedAt: r.now().UTC(),
	}
	for _, n := range r.notifiers {
		if err := n.NotifyExport(ctx, event); err != nil {
			warn(StageNotify, err)
		}
	}

	return result, nil
}

func (r *Runner) recordRun(status string, duration time.Duration) {
	if r.metrics != nil {
		r.metrics.RecordExportRun(status, duration)
	}
}
