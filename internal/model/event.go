package model

import "time"

// ExportEvent is published after an export run writes its output.
type ExportEvent struct {
	RunID       string    `json:"run_id"`
	Season      int       `json:"season"`
	Path        string    `json:"path"`
	Records     int       `json:"records"`
	Players     int       `json:"players"`
	Defenses    int       `json:"defenses"`
	CompletedAt time.Time `json:"completed_at"`
}
