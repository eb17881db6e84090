package store

import (
	"encoding/json"
	"time"
)

// WeeklyRecord is one stored record. Payload is the record exactly as it
// appears in the export file.
type WeeklyRecord struct {
	Season           int             `json:"season" db:"season"`
	Week             int             `json:"week" db:"week"`
	PlayerID         string          `json:"player_id" db:"player_id"`
	SeasonType       string          `json:"season_type" db:"season_type"`
	Position         string          `json:"position" db:"position"`
	Team             string          `json:"team" db:"team"`
	FantasyPointsPPR float64         `json:"fantasy_points_ppr" db:"fantasy_points_ppr"`
	Payload          json.RawMessage `json:"payload" db:"payload"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// RecordFilter narrows ListRecords. Zero values match everything.
type RecordFilter struct {
	Season   int
	Week     int
	Position string
	Team     string
	Limit    int
}
