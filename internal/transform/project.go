package transform

import (
	"strings"

	"github.com/fortuna/gridiron/internal/ingest/nflverse"
	"github.com/fortuna/gridiron/internal/model"
	"github.com/fortuna/gridiron/internal/scoring"
)

func playerBase(row nflverse.PlayerWeekRow, headshots map[string]string) model.Base {
	return model.Base{
		Season:            row.Season,
		Week:              row.Week,
		SeasonType:        row.SeasonType,
		PlayerID:          row.PlayerID,
		PlayerName:        row.PlayerName,
		PlayerDisplayName: row.PlayerDisplayName,
		Position:          model.ParsePosition(row.Position),
		Team:              row.Team(),
		OpponentTeam:      row.OpponentTeam,
		HeadshotURL:       headshot(row, headshots),
		FantasyPointsPPR:  row.FantasyPointsPPR.Float(),
	}
}

func headshot(row nflverse.PlayerWeekRow, headshots map[string]string) *string {
	url := strings.TrimSpace(row.HeadshotURL)
	if url == "" || strings.EqualFold(url, "NA") {
		fallback, ok := headshots[row.PlayerID]
		if !ok {
			return nil
		}
		url = fallback
	}
	return &url
}

// projectPlayer keeps only the stat groups the position is allowed to carry.
func projectPlayer(row nflverse.PlayerWeekRow, status model.InjuryStatus, headshots map[string]string) model.Record {
	base := playerBase(row, headshots)

	switch base.Position {
	case model.PositionQB:
		return model.QuarterbackWeek{Base: base, InjuryStatus: status, PassingLine: row.PassingLine, RushingLine: row.RushingLine}
	case model.PositionRB:
		return model.RunningBackWeek{Base: base, InjuryStatus: status, RushingLine: row.RushingLine, ReceivingLine: row.ReceivingLine}
	case model.PositionWR, model.PositionTE:
		return model.ReceiverWeek{Base: base, InjuryStatus: status, ReceivingLine: row.ReceivingLine, RushingLine: row.RushingLine}
	case model.PositionK:
		base.FantasyPointsPPR = scoring.Kicker(row.KickingLine)
		return model.KickerWeek{Base: base, InjuryStatus: status, KickingLine: row.KickingLine}
	default:
		return model.OtherWeek{Base: base, InjuryStatus: status}
	}
}
