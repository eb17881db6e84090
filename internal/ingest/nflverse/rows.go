package nflverse

import (
	"strings"
	"time"

	"github.com/fortuna/gridiron/internal/model"
)

// PlayerWeekRow is one row of stats_player_week_{season}.csv. Only the
// columns some position emits are decoded.
type PlayerWeekRow struct {
	PlayerID          string     `csv:"player_id"`
	PlayerName        string     `csv:"player_name"`
	PlayerDisplayName string     `csv:"player_display_name"`
	Position          string     `csv:"position"`
	HeadshotURL       string     `csv:"headshot_url"`
	TeamAbbr          string     `csv:"team"`
	RecentTeam        string     `csv:"recent_team"`
	Season            int        `csv:"season"`
	Week              int        `csv:"week"`
	SeasonType        string     `csv:"season_type"`
	OpponentTeam      string     `csv:"opponent_team"`
	FantasyPointsPPR  model.Stat `csv:"fantasy_points_ppr"`

	model.PassingLine
	model.RushingLine
	model.ReceivingLine
	model.KickingLine
}

// Team returns the player's team for the week. Older tables call the
// column recent_team.
func (r PlayerWeekRow) Team() string {
	if r.TeamAbbr != "" {
		return r.TeamAbbr
	}
	return r.RecentTeam
}

// TeamWeekRow is one row of stats_team_week_{season}.csv.
type TeamWeekRow struct {
	Season       int    `csv:"season"`
	Week         int    `csv:"week"`
	Team         string `csv:"team"`
	SeasonType   string `csv:"season_type"`
	OpponentTeam string `csv:"opponent_team"`

	model.DefenseLine
}

// GameRow is one row of the schedules file.
type GameRow struct {
	GameID    string     `csv:"game_id"`
	Season    int        `csv:"season"`
	GameType  string     `csv:"game_type"`
	Week      int        `csv:"week"`
	AwayTeam  string     `csv:"away_team"`
	AwayScore model.Stat `csv:"away_score"`
	HomeTeam  string     `csv:"home_team"`
	HomeScore model.Stat `csv:"home_score"`
}

// Completed reports whether both final scores are known.
func (g GameRow) Completed() bool {
	return g.AwayScore.Valid && g.HomeScore.Valid
}

// InjuryRow is one row of injuries_{season}.csv.
type InjuryRow struct {
	Season         int        `csv:"season"`
	GameType       string     `csv:"game_type"`
	Team           string     `csv:"team"`
	Week           model.Stat `csv:"week"`
	GSISID         string     `csv:"gsis_id"`
	Position       string     `csv:"position"`
	FullName       string     `csv:"full_name"`
	ReportStatus   string     `csv:"report_status"`
	PracticeStatus string     `csv:"practice_status"`
	DateModified   string     `csv:"date_modified"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ToReport converts the row into the source-neutral form. ok is false for
// rows without a week.
func (r InjuryRow) ToReport() (model.InjuryReport, bool) {
	if !r.Week.Valid {
		return model.InjuryReport{}, false
	}
	return model.InjuryReport{
		Season:         r.Season,
		Week:           int(r.Week.Value),
		Team:           strings.TrimSpace(r.Team),
		Position:       strings.TrimSpace(r.Position),
		GSISID:         strings.TrimSpace(r.GSISID),
		FullName:       strings.TrimSpace(r.FullName),
		ReportStatus:   naToEmpty(r.ReportStatus),
		PracticeStatus: naToEmpty(r.PracticeStatus),
		DateModified:   parseModified(r.DateModified),
		Source:         "nflverse",
	}, true
}

// RosterRow is one row of roster_weekly_{season}.csv.
type RosterRow struct {
	Season      int    `csv:"season"`
	Week        int    `csv:"week"`
	Team        string `csv:"team"`
	Position    string `csv:"position"`
	FullName    string `csv:"full_name"`
	GSISID      string `csv:"gsis_id"`
	HeadshotURL string `csv:"headshot_url"`
}

func naToEmpty(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "NA") {
		return ""
	}
	return raw
}

func parseModified(raw string) time.Time {
	raw = naToEmpty(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}
