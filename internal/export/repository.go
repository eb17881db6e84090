package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/fortuna/gridiron/internal/store"
)

// Repository handles persistence for export runs and events.
type Repository struct {
	db *store.Database
}

// NewRepository constructs a Repository.
func NewRepository(db *store.Database) *Repository {
	return &Repository{db: db}
}

const runColumns = `run_id, season, status, trigger, dry_run, output_path,
	records, players, defenses, warnings, error, created_at, started_at, completed_at`

// CreateRun inserts a queued run and returns the stored row.
func (r *Repository) CreateRun(ctx context.Context, run *Run) (*Run, error) {
	query := `
		INSERT INTO export_runs (run_id, season, status, trigger, dry_run)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING ` + runColumns

	row := r.db.DB().QueryRowContext(ctx, query,
		run.RunID, run.Season, string(run.Status), run.Trigger, run.DryRun,
	)
	stored, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return stored, nil
}

// ClaimNextRun atomically marks the oldest queued run as running.
func (r *Repository) ClaimNextRun(ctx context.Context) (*Run, error) {
	query := `
		WITH next_run AS (
			SELECT run_id
			FROM export_runs
			WHERE status = 'queued'
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE export_runs
		SET status = 'running',
			started_at = COALESCE(started_at, NOW())
		FROM next_run
		WHERE export_runs.run_id = next_run.run_id
		RETURNING export_runs.run_id, export_runs.season, export_runs.status,
			export_runs.trigger, export_runs.dry_run, export_runs.output_path,
			export_runs.records, export_runs.players, export_runs.defenses,
			export_runs.warnings, export_runs.error, export_runs.created_at,
			export_runs.started_at, export_runs.completed_at
	`

	run, err := scanRun(r.db.DB().QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim run: %w", err)
	}
	return run, nil
}

// UpdateStatus sets status and optional error.
func (r *Repository) UpdateStatus(ctx context.Context, runID string, status RunStatus, runErr error) error {
	query := `
		UPDATE export_runs
		SET status = $2::varchar,
			error = $3,
			completed_at = CASE WHEN $2::varchar IN ('completed','failed') THEN NOW() ELSE completed_at END
		WHERE run_id = $1
	`

	var errText sql.NullString
	if runErr != nil {
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}

	if _, err := r.db.DB().ExecContext(ctx, query, runID, string(status), errText); err != nil {
		return fmt.Errorf("update run status: %w", err)
	}
	return nil
}

// CompleteRun stores the outcome of a successful run.
func (r *Repository) CompleteRun(ctx context.Context, result *Result) error {
	query := `
		UPDATE export_runs
		SET status = 'completed',
			output_path = $2,
			records = $3,
			players = $4,
			defenses = $5,
			warnings = $6,
			completed_at = NOW()
		WHERE run_id = $1
	`

	var path sql.NullString
	if result.Path != "" {
		path = sql.NullString{String: result.Path, Valid: true}
	}
	warnings := pq.StringArray(result.Warnings)
	if warnings == nil {
		warnings = pq.StringArray{}
	}

	if _, err := r.db.DB().ExecContext(ctx, query,
		result.RunID, path, result.Records, result.Summary.Players, result.Summary.Defenses, warnings,
	); err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return nil
}

// AppendEvent stores a log entry for a run.
func (r *Repository) AppendEvent(ctx context.Context, runID string, stage Stage, message string) error {
	query := `INSERT INTO export_run_events (run_id, stage, message) VALUES ($1,$2,$3)`
	if _, err := r.db.DB().ExecContext(ctx, query, runID, string(stage), message); err != nil {
		return fmt.Errorf("insert run event: %w", err)
	}
	return nil
}

// ResetStuckRuns moves running runs back to queued (used during service restarts).
func (r *Repository) ResetStuckRuns(ctx context.Context) error {
	_, err := r.db.DB().ExecContext(ctx, `
		UPDATE export_runs
		SET status = 'queued',
			started_at = NULL
		WHERE status = 'running'
	`)
	if err != nil {
		return fmt.Errorf("reset stuck runs: %w", err)
	}
	return nil
}

// GetActiveRun returns the currently running run, if any.
func (r *Repository) GetActiveRun(ctx context.Context) (*Run, error) {
	query := `SELECT ` + runColumns + `
		FROM export_runs
		WHERE status = 'running'
		ORDER BY started_at DESC
		LIMIT 1`

	run, err := scanRun(r.db.DB().QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active run: %w", err)
	}
	return run, nil
}

// ListRecentRuns returns the newest runs.
func (r *Repository) ListRecentRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + `
		FROM export_runs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(scanner interface {
	Scan(dest ...interface{}) error
}) (*Run, error) {
	var (
		run        Run
		status     string
		outputPath sql.NullString
		warnings   pq.StringArray
		runErr     sql.NullString
		started    sql.NullTime
		completed  sql.NullTime
	)
	err := scanner.Scan(
		&run.RunID,
		&run.Season,
		&status,
		&run.Trigger,
		&run.DryRun,
		&outputPath,
		&run.Records,
		&run.Players,
		&run.Defenses,
		&warnings,
		&runErr,
		&run.CreatedAt,
		&started,
		&completed,
	)
	if err != nil {
		return nil, err
	}

	run.Status = RunStatus(status)
	run.OutputPath = outputPath.String
	run.Warnings = []string(warnings)
	run.Error = runErr.String
	if started.Valid {
		t := started.Time
		run.StartedAt = &t
	}
	if completed.Valid {
		t := completed.Time
		run.CompletedAt = &t
	}
	return &run, nil
}
