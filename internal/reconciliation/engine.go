// Package reconciliation joins injury reports onto player weeks.
package reconciliation

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fortuna/gridiron/internal/model"
)

// Strategy decides which keys may link a report to a player.
type Strategy string

const (
	// IDThenName tries the exact gsis id first, then the normalized name key.
	IDThenName Strategy = "id_then_name"

	// NameOnly uses the normalized name key.
	NameOnly Strategy = "name"

	// IDOnly uses exact player ids and never guesses.
	IDOnly Strategy = "id"
)

// ParseStrategy validates a configured strategy. Empty means IDThenName.
func ParseStrategy(raw string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return IDThenName, nil
	case IDThenName, NameOnly, IDOnly:
		return s, nil
	default:
		return "", fmt.Errorf("unknown reconcile strategy %q", raw)
	}
}

// Method records how a player was matched.
type Method string

const (
	MatchedByID   Method = "id"
	MatchedByName Method = "name"
	Unmatched     Method = "unmatched"
)

// Match is the join result for one player.
type Match struct {
	Report *model.InjuryReport
	Method Method
}

// Metrics counts join outcomes, per call or as running totals.
type Metrics struct {
	TotalReconciliations int
	ByID                 int
	ByName               int
	Unmatched            int
	Collisions           int
	LastReconciliation   time.Time
}

// Engine matches player weeks to injury reports.
type Engine struct {
	strategy Strategy

	mu      sync.Mutex
	metrics Metrics
}

// NewEngine creates a reconciliation engine. An empty strategy means IDThenName.
func NewEngine(strategy Strategy) *Engine {
	if strategy == "" {
		strategy = IDThenName
	}
	return &Engine{
		strategy: strategy,
		metrics:  Metrics{LastReconciliation: time.Now()},
	}
}

// Strategy returns the configured strategy.
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// Reconcile returns one Match per player, in the same order, plus the
// counts for this call. Name keys shared by players with different ids are
// collisions and never match.
func (e *Engine) Reconcile(players []Player, reports []model.InjuryReport) ([]Match, Metrics) {
	idx := NewIndex(reports)
	collisions := playerCollisions(players)
	for k := range idx.collisions {
		collisions[k] = struct{}{}
	}

	var run Metrics
	run.Collisions = len(collisions)

	out := make([]Match, len(players))
	for i, p := range players {
		out[i] = e.match(idx, collisions, p)
		switch out[i].Method {
		case MatchedByID:
			run.ByID++
		case MatchedByName:
			run.ByName++
		default:
			run.Unmatched++
		}
	}

	run.TotalReconciliations = 1
	run.LastReconciliation = time.Now()

	e.mu.Lock()
	e.metrics.TotalReconciliations++
	e.metrics.ByID += run.ByID
	e.metrics.ByName += run.ByName
	e.metrics.Unmatched += run.Unmatched
	e.metrics.Collisions += run.Collisions
	e.metrics.LastReconciliation = run.LastReconciliation
	e.mu.Unlock()

	return out, run
}

func (e *Engine) match(idx *Index, collisions map[NameKey]struct{}, p Player) Match {
	if e.strategy == IDThenName || e.strategy == IDOnly {
		if r, ok := idx.lookupID(p); ok {
			return Match{Report: &r, Method: MatchedByID}
		}
	}
	if e.strategy == IDThenName || e.strategy == NameOnly {
		k := p.nameKey()
		if _, collided := collisions[k]; !collided && k.Name != "" {
			if r, id, ok := idx.lookupName(k); ok && !e.foreignID(p, id) {
				return Match{Report: &r, Method: MatchedByName}
			}
		}
	}
	return Match{Method: Unmatched}
}

// foreignID reports a name hit whose report belongs to another known player.
// Only IDThenName checks it; NameOnly ignores ids entirely.
func (e *Engine) foreignID(p Player, reportID string) bool {
	return e.strategy == IDThenName && p.ID != "" && reportID != "" && p.ID != reportID
}

func playerCollisions(players []Player) map[NameKey]struct{} {
	seen := make(map[NameKey]string, len(players))
	collisions := make(map[NameKey]struct{})
	for _, p := range players {
		k := p.nameKey()
		if k.Name == "" {
			continue
		}
		if prev, ok := seen[k]; ok && prev != p.ID {
			collisions[k] = struct{}{}
			continue
		}
		seen[k] = p.ID
	}
	return collisions
}

// GetMetrics returns a snapshot of the running totals.
func (e *Engine) GetMetrics() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metrics
}
