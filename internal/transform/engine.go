// Package transform turns loaded provider tables into emitted records.
package transform

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/gridiron/internal/ingest"
	"github.com/fortuna/gridiron/internal/ingest/nflverse"
	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/model"
	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/scoring"
)

// Season type filters.
const (
	SeasonTypeAll     = "ALL"
	SeasonTypeRegular = "REG"
	SeasonTypePost    = "POST"
)

// Recorder receives record and join counts.
type Recorder interface {
	RecordRecords(position string, n int)
	RecordInjuryMatches(method string, n int)
}

// Options controls the transform.
type Options struct {
	SeasonType  string
	TeamDefense bool
	Defense     scoring.DefenseOptions
}

// Summary describes one Build call.
type Summary struct {
	Players    int
	Defenses   int
	ByPosition map[model.Position]int
	Injuries   reconciliation.Metrics
}

// Engine builds records. It keeps no state between builds apart from the
// reconciliation totals.
type Engine struct {
	reconciler *reconciliation.Engine
	opts       Options
	metrics    Recorder
	logger     logrus.FieldLogger
}

func NewEngine(reconciler *reconciliation.Engine, opts Options, metrics Recorder, logger logrus.FieldLogger) *Engine {
	if reconciler == nil {
		reconciler = reconciliation.NewEngine(reconciliation.IDThenName)
	}
	opts.SeasonType = strings.ToUpper(strings.TrimSpace(opts.SeasonType))
	if opts.SeasonType == "" {
		opts.SeasonType = SeasonTypeAll
	}
	return &Engine{
		reconciler: reconciler,
		opts:       opts,
		metrics:    metrics,
		logger:     logging.Component(logger, "transform"),
	}
}

// Build returns player records in source order followed by team defense
// records ordered by week and team. Any error aborts the whole build.
func (e *Engine) Build(tables *ingest.Tables) ([]model.Record, Summary, error) {
	summary := Summary{ByPosition: make(map[model.Position]int)}
	if tables == nil {
		return nil, summary, fmt.Errorf("transform: no tables loaded")
	}

	rows := make([]nflverse.PlayerWeekRow, 0, len(tables.Players))
	for i, row := range tables.Players {
		if !e.keepSeasonType(row.SeasonType) {
			continue
		}
		if row.Week <= 0 {
			return nil, summary, fmt.Errorf("transform: player row %d (%s): invalid week %d", i, row.PlayerID, row.Week)
		}
		rows = append(rows, row)
	}

	headshots := headshotIndex(tables.Rosters)
	matches, joined := e.reconcile(rows, tables.Injuries)
	summary.Injuries = joined

	records := make([]model.Record, 0, len(rows)+len(tables.Teams))
	for i, row := range rows {
		rec := projectPlayer(row, injuryStatus(matches[i]), headshots)
		records = append(records, rec)
		summary.ByPosition[rec.Identity().Position]++
	}
	summary.Players = len(rows)

	if e.opts.TeamDefense {
		defenses, err := e.buildDefenses(tables)
		if err != nil {
			return nil, summary, err
		}
		for _, d := range defenses {
			records = append(records, d)
		}
		summary.Defenses = len(defenses)
		summary.ByPosition[model.PositionDEF] += len(defenses)
	}

	e.recordMetrics(summary)

	e.logger.WithFields(logrus.Fields{
		"season":     tables.Season,
		"players":    summary.Players,
		"defenses":   summary.Defenses,
		"by_id":      summary.Injuries.ByID,
		"by_name":    summary.Injuries.ByName,
		"collisions": summary.Injuries.Collisions,
	}).Info("built records")

	return records, summary, nil
}

func (e *Engine) keepSeasonType(seasonType string) bool {
	if e.opts.SeasonType == SeasonTypeAll {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(seasonType), e.opts.SeasonType)
}

func (e *Engine) reconcile(rows []nflverse.PlayerWeekRow, reports []model.InjuryReport) ([]reconciliation.Match, reconciliation.Metrics) {
	players := make([]reconciliation.Player, len(rows))
	for i, row := range rows {
		players[i] = reconciliation.Player{
			Season:   row.Season,
			Week:     row.Week,
			Team:     row.Team(),
			Position: row.Position,
			ID:       row.PlayerID,
			Name:     row.PlayerDisplayName,
		}
	}
	return e.reconciler.Reconcile(players, reports)
}

func (e *Engine) recordMetrics(summary Summary) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordInjuryMatches(string(reconciliation.MatchedByID), summary.Injuries.ByID)
	e.metrics.RecordInjuryMatches(string(reconciliation.MatchedByName), summary.Injuries.ByName)
	e.metrics.RecordInjuryMatches(string(reconciliation.Unmatched), summary.Injuries.Unmatched)
	e.metrics.RecordInjuryMatches("collision", summary.Injuries.Collisions)
	for pos, n := range summary.ByPosition {
		e.metrics.RecordRecords(string(pos), n)
	}
}

// injuryStatus applies the Healthy/Full defaults to a join result.
func injuryStatus(m reconciliation.Match) model.InjuryStatus {
	status := model.HealthyStatus()
	if m.Report == nil {
		return status
	}
	if s := strings.TrimSpace(m.Report.ReportStatus); s != "" {
		status.ReportStatus = s
	}
	if s := strings.TrimSpace(m.Report.PracticeStatus); s != "" {
		status.PracticeStatus = s
	}
	return status
}

func headshotIndex(rosters []nflverse.RosterRow) map[string]string {
	out := make(map[string]string)
	for _, r := range rosters {
		url := strings.TrimSpace(r.HeadshotURL)
		if r.GSISID == "" || url == "" || strings.EqualFold(url, "NA") {
			continue
		}
		out[r.GSISID] = url
	}
	return out
}
