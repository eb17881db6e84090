// Package ingest loads every table an export needs for one season.
package ingest

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/gridiron/internal/ingest/nflverse"
	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/model"
)

// StatsSource is the primary provider. *nflverse.Client implements it.
type StatsSource interface {
	FetchPlayerWeekly(ctx context.Context, season int) ([]nflverse.PlayerWeekRow, error)
	FetchTeamWeekly(ctx context.Context, season int) ([]nflverse.TeamWeekRow, error)
	FetchSchedules(ctx context.Context, season int) ([]nflverse.GameRow, error)
	FetchInjuries(ctx context.Context, season int) ([]nflverse.InjuryRow, error)
	FetchRosters(ctx context.Context, season int) ([]nflverse.RosterRow, error)
}

// InjurySource is a secondary injury report provider.
type InjurySource interface {
	FetchInjuries(ctx context.Context, season, week int) ([]model.InjuryReport, error)
}

// Injury sources recorded on Tables.
const (
	InjuriesFromNFLverse = "nflverse"
	InjuriesFromFallback = "fallback"
	InjuriesNone         = "none"
)

// Options selects the optional tables.
type Options struct {
	TeamDefense bool
	Injuries    bool
	Rosters     bool
}

// Tables is everything loaded for one season.
type Tables struct {
	Season       int
	Players      []nflverse.PlayerWeekRow
	Teams        []nflverse.TeamWeekRow
	Games        []nflverse.GameRow
	Injuries     []model.InjuryReport
	Rosters      []nflverse.RosterRow
	InjurySource string
}

// Loader fetches tables with the nflverse client as the primary source.
type Loader struct {
	stats    StatsSource
	fallback InjurySource
	logger   logrus.FieldLogger
}

// NewLoader wires the loader. fallback may be nil.
func NewLoader(stats StatsSource, fallback InjurySource, logger logrus.FieldLogger) *Loader {
	return &Loader{
		stats:    stats,
		fallback: fallback,
		logger:   logging.Component(logger, "loader"),
	}
}

// Load retrieves the season's tables. Player stats are always required;
// team stats and schedules are required when team defense is enabled.
// Injuries and rosters degrade to empty tables with a warning.
func (l *Loader) Load(ctx context.Context, season int, opts Options) (*Tables, error) {
	log := l.logger.WithField("season", season)
	tables := &Tables{Season: season, InjurySource: InjuriesNone}

	players, err := l.stats.FetchPlayerWeekly(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("load player weekly stats for %d: %w", season, err)
	}
	tables.Players = players
	log.WithField("rows", len(players)).Info("loaded player weekly stats")

	if opts.TeamDefense {
		teams, err := l.stats.FetchTeamWeekly(ctx, season)
		if err != nil {
			return nil, fmt.Errorf("load team weekly stats for %d: %w", season, err)
		}
		games, err := l.stats.FetchSchedules(ctx, season)
		if err != nil {
			return nil, fmt.Errorf("load schedules for %d: %w", season, err)
		}
		tables.Teams = teams
		tables.Games = games
		log.WithFields(logrus.Fields{"teams": len(teams), "games": len(games)}).Info("loaded team defense inputs")
	}

	if opts.Injuries {
		tables.Injuries, tables.InjurySource = l.loadInjuries(ctx, season, players)
	}

	if opts.Rosters {
		rosters, err := l.stats.FetchRosters(ctx, season)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithError(err).Warn("weekly rosters unavailable, headshots will not be backfilled")
		} else {
			tables.Rosters = rosters
		}
	}

	return tables, nil
}

func (l *Loader) loadInjuries(ctx context.Context, season int, players []nflverse.PlayerWeekRow) ([]model.InjuryReport, string) {
	log := l.logger.WithField("season", season)

	rows, err := l.stats.FetchInjuries(ctx, season)
	if err == nil {
		reports := make([]model.InjuryReport, 0, len(rows))
		for _, row := range rows {
			if rep, ok := row.ToReport(); ok {
				reports = append(reports, rep)
			}
		}
		log.WithField("rows", len(reports)).Info("loaded injury reports")
		return reports, InjuriesFromNFLverse
	}
	log.WithError(err).Warn("injury reports unavailable from nflverse")

	if l.fallback == nil {
		log.Warn("no injury fallback configured, every player defaults to Healthy/Full")
		return nil, InjuriesNone
	}

	week := latestWeek(players)
	reports, err := l.fallback.FetchInjuries(ctx, season, week)
	if err != nil {
		log.WithError(err).Warn("injury fallback failed, every player defaults to Healthy/Full")
		return nil, InjuriesNone
	}
	log.WithFields(logrus.Fields{"rows": len(reports), "week": week}).Info("loaded injury reports from fallback")
	return reports, InjuriesFromFallback
}

// The fallback page only describes the current week, which is the latest
// week with stats.
func latestWeek(players []nflverse.PlayerWeekRow) int {
	week := 0
	for _, p := range players {
		if p.Week > week {
			week = p.Week
		}
	}
	return week
}
