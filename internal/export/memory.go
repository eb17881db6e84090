package export

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a RunStore for processes without Postgres. History is
// lost on restart.
type MemoryStore struct {
	mu     sync.Mutex
	runs   map[string]*Run
	events map[string][]string
	now    func() time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:   make(map[string]*Run),
		events: make(map[string][]string),
		now:    time.Now,
	}
}

func (m *MemoryStore) CreateRun(_ context.Context, run *Run) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.RunID]; exists {
		return nil, fmt.Errorf("create run: duplicate run id %s", run.RunID)
	}
	stored := run.Copy()
	// Keep creation order strict for runs queued within one clock tick.
	stored.CreatedAt = m.now().Add(time.Duration(len(m.runs)) * time.Nanosecond)
	m.runs[stored.RunID] = stored
	return stored.Copy(), nil
}

func (m *MemoryStore) ClaimNextRun(_ context.Context) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var next *Run
	for _, run := range m.runs {
		if run.Status != RunStatusQueued {
			continue
		}
		if next == nil || run.CreatedAt.Before(next.CreatedAt) {
			next = run
		}
	}
	if next == nil {
		return nil, nil
	}
	started := m.now()
	next.Status = RunStatusRunning
	next.StartedAt = &started
	return next.Copy(), nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, runID string, status RunStatus, runErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("update run status: unknown run %s", runID)
	}
	run.Status = status
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if status == RunStatusCompleted || status == RunStatusFailed {
		done := m.now()
		run.CompletedAt = &done
	}
	return nil
}

func (m *MemoryStore) CompleteRun(_ context.Context, result *Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[result.RunID]
	if !ok {
		return fmt.Errorf("complete run: unknown run %s", result.RunID)
	}
	done := m.now()
	run.Status = RunStatusCompleted
	run.OutputPath = result.Path
	run.Records = result.Records
	run.Players = result.Summary.Players
	run.Defenses = result.Summary.Defenses
	run.Warnings = append([]string(nil), result.Warnings...)
	run.CompletedAt = &done
	return nil
}

func (m *MemoryStore) AppendEvent(_ context.Context, runID string, stage Stage, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events[runID] = append(m.events[runID], string(stage)+": "+message)
	return nil
}

// Events returns the event log of a run.
func (m *MemoryStore) Events(runID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.events[runID]...)
}

func (m *MemoryStore) ResetStuckRuns(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, run := range m.runs {
		if run.Status == RunStatusRunning {
			run.Status = RunStatusQueued
			run.StartedAt = nil
		}
	}
	return nil
}

func (m *MemoryStore) GetActiveRun(_ context.Context) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, run := range m.runs {
		if run.Status == RunStatusRunning {
			return run.Copy(), nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ListRecentRuns(_ context.Context, limit int) ([]*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	runs := make([]*Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, run.Copy())
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
