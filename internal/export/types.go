// Package export runs the season pipeline and tracks export runs.
package export

import (
	"context"
	"time"

	"github.com/fortuna/gridiron/internal/model"
	"github.com/fortuna/gridiron/internal/transform"
)

// RunStatus represents the lifecycle state for a run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Trigger records what started a run.
const (
	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
	TriggerAPI      = "api"
)

// Stage names reported while a run progresses.
type Stage string

const (
	StageLoad      Stage = "load"
	StageTransform Stage = "transform"
	StageWrite     Stage = "write"
	StageSink      Stage = "sink"
	StageUpload    Stage = "upload"
	StageNotify    Stage = "notify"
)

// Run is a tracked export run.
type Run struct {
	RunID       string     `json:"run_id"`
	Season      int        `json:"season"`
	Status      RunStatus  `json:"status"`
	Trigger     string     `json:"trigger"`
	DryRun      bool       `json:"dry_run"`
	OutputPath  string     `json:"output_path,omitempty"`
	Records     int        `json:"records"`
	Players     int        `json:"players"`
	Defenses    int        `json:"defenses"`
	Warnings    []string   `json:"warnings,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Copy returns a shallow copy to prevent external mutation.
func (r *Run) Copy() *Run {
	if r == nil {
		return nil
	}
	cpy := *r
	cpy.Warnings = append([]string(nil), r.Warnings...)
	return &cpy
}

// Spec describes the work to be performed by the runner.
type Spec struct {
	RunID   string
	Season  int
	DryRun  bool
	Trigger string
}

// Request is an export invocation request.
type Request struct {
	Season  int    `json:"season"`
	DryRun  bool   `json:"dry_run"`
	Trigger string `json:"trigger,omitempty"`
}

// Result summarizes a finished run.
type Result struct {
	RunID    string
	Season   int
	Path     string
	DryRun   bool
	Records  int
	Summary  transform.Summary
	Warnings []string
	Duration time.Duration
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnRunStart(spec Spec)
	OnStage(stage Stage, message string)
	OnRunComplete(result *Result)
	OnRunError(err error)
}

// StatusSummary is returned to API callers.
type StatusSummary struct {
	ActiveRun *Run   `json:"active_run,omitempty"`
	History   []*Run `json:"recent_runs,omitempty"`
}

// RecordSink receives every record of a written export.
type RecordSink interface {
	UpsertRecords(ctx context.Context, records []model.Record) (int, error)
}

// Notifier is told about each completed, non dry-run export.
type Notifier interface {
	NotifyExport(ctx context.Context, event model.ExportEvent) error
}

// RunStore persists runs and their events.
type RunStore interface {
	CreateRun(ctx context.Context, run *Run) (*Run, error)
	ClaimNextRun(ctx context.Context) (*Run, error)
	UpdateStatus(ctx context.Context, runID string, status RunStatus, runErr error) error
	CompleteRun(ctx context.Context, result *Result) error
	AppendEvent(ctx context.Context, runID string, stage Stage, message string) error
	ResetStuckRuns(ctx context.Context) error
	GetActiveRun(ctx context.Context) (*Run, error)
	ListRecentRuns(ctx context.Context, limit int) ([]*Run, error)
}

type nopReporter struct{}

func (nopReporter) OnRunStart(Spec)       {}
func (nopReporter) OnStage(Stage, string) {}
func (nopReporter) OnRunComplete(*Result) {}
func (nopReporter) OnRunError(error)      {}
