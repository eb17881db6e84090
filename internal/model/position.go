package model

import "strings"

// Position is the roster position code carried on every record.
type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionK   Position = "K"
	PositionDEF Position = "DEF"
)

// ParsePosition normalizes a provider position code.
func ParsePosition(raw string) Position {
	return Position(strings.ToUpper(strings.TrimSpace(raw)))
}

// BaseFields are carried by every emitted record.
var BaseFields = []string{
	"season",
	"week",
	"season_type",
	"player_id",
	"player_name",
	"player_display_name",
	"position",
	"team",
	"opponent_team",
	"headshot_url",
	"fantasy_points_ppr",
}

// InjuryFields are carried by player records only.
var InjuryFields = []string{"report_status", "practice_status"}

var (
	passingFields = []string{
		"completions", "attempts", "passing_yards", "passing_tds",
		"passing_interceptions", "sacks_suffered", "sack_yards_lost",
		"passing_2pt_conversions",
	}
	rushingFields = []string{
		"carries", "rushing_yards", "rushing_tds", "rushing_fumbles",
		"rushing_fumbles_lost", "rushing_2pt_conversions",
	}
	receivingFields = []string{
		"receptions", "targets", "receiving_yards", "receiving_tds",
		"receiving_fumbles", "receiving_fumbles_lost",
		"receiving_2pt_conversions", "target_share",
	}
	kickingFields = []string{
		"fg_made", "fg_att", "fg_missed", "fg_blocked", "fg_long",
		"fg_made_0_19", "fg_made_20_29", "fg_made_30_39", "fg_made_40_49",
		"fg_made_50_59", "fg_made_60_", "pat_made", "pat_att", "pat_missed",
	}
	defenseFields = []string{
		"def_sacks", "def_interceptions", "def_fumbles_forced",
		"fumble_recovery_opp", "def_tds", "special_teams_tds", "def_safeties",
		"points_allowed",
	}
)

// StatFields returns the stat allow-list for a position. Unknown positions
// have an empty allow-list.
func StatFields(pos Position) []string {
	switch pos {
	case PositionQB:
		return concat(passingFields, rushingFields)
	case PositionRB:
		return concat(rushingFields, receivingFields)
	case PositionWR, PositionTE:
		return concat(receivingFields, rushingFields)
	case PositionK:
		return concat(kickingFields)
	case PositionDEF:
		return concat(defenseFields)
	default:
		return nil
	}
}

// AllowedFields is the full key set a record of this position may carry.
func AllowedFields(pos Position) []string {
	fields := concat(BaseFields)
	if pos != PositionDEF {
		fields = append(fields, InjuryFields...)
	}
	return append(fields, StatFields(pos)...)
}

func concat(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
