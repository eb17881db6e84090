package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fortuna/gridiron/internal/ingest"
	"github.com/fortuna/gridiron/internal/ingest/nflverse"
	"github.com/fortuna/gridiron/internal/model"
	"github.com/fortuna/gridiron/internal/scoring"
)

// TeamWeek identifies one team in one week.
type TeamWeek struct {
	Season int
	Week   int
	Team   string
}

// PointsAllowed pivots completed regular season games so each team is
// charged its opponent's score.
func PointsAllowed(games []nflverse.GameRow) map[TeamWeek]float64 {
	out := make(map[TeamWeek]float64, len(games)*2)
	for _, g := range games {
		if !strings.EqualFold(g.GameType, nflverse.GameTypeRegular) || !g.Completed() {
			continue
		}
		out[TeamWeek{Season: g.Season, Week: g.Week, Team: g.HomeTeam}] = g.AwayScore.Value
		out[TeamWeek{Season: g.Season, Week: g.Week, Team: g.AwayTeam}] = g.HomeScore.Value
	}
	return out
}

// DefenseID is the synthetic player id of a team defense.
func DefenseID(team string) string {
	return "DEF_" + team
}

func (e *Engine) buildDefenses(tables *ingest.Tables) ([]model.DefenseWeek, error) {
	allowed := PointsAllowed(tables.Games)

	rows := make([]nflverse.TeamWeekRow, 0, len(tables.Teams))
	for i, row := range tables.Teams {
		if !e.keepSeasonType(row.SeasonType) {
			continue
		}
		if strings.TrimSpace(row.Team) == "" || row.Week <= 0 {
			return nil, fmt.Errorf("transform: team row %d: missing team or week", i)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Week != rows[j].Week {
			return rows[i].Week < rows[j].Week
		}
		return rows[i].Team < rows[j].Team
	})

	out := make([]model.DefenseWeek, 0, len(rows))
	for _, row := range rows {
		line := row.DefenseLine
		line.PointsAllowed = model.Stat{}
		if pa, ok := allowed[TeamWeek{Season: row.Season, Week: row.Week, Team: row.Team}]; ok {
			line.PointsAllowed = model.Num(pa)
		}

		name := row.Team + " DEF"
		out = append(out, model.DefenseWeek{
			Base: model.Base{
				Season:            row.Season,
				Week:              row.Week,
				SeasonType:        row.SeasonType,
				PlayerID:          DefenseID(row.Team),
				PlayerName:        name,
				PlayerDisplayName: name,
				Position:          model.PositionDEF,
				Team:              row.Team,
				OpponentTeam:      row.OpponentTeam,
				FantasyPointsPPR:  scoring.TeamDefense(line, e.opts.Defense),
			},
			DefenseLine: line,
		})
	}
	return out, nil
}
