package repository

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fortuna/gridiron/internal/model"
	"github.com/fortuna/gridiron/internal/store"
)

func TestBuildListQueryWithoutFilters(t *testing.T) {
	query, args := buildListQuery(store.RecordFilter{})
	if strings.Contains(query, "WHERE") {
		t.Fatalf("expected no WHERE clause, got %q", query)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}

func TestBuildListQueryNumbersPlaceholders(t *testing.T) {
	query, args := buildListQuery(store.RecordFilter{Season: 2024, Position: "wr", Team: "kc", Limit: 50})

	want := "SELECT payload FROM weekly_records WHERE season = $1 AND position = $2 AND team = $3 ORDER BY season, week, position, player_id LIMIT $4"
	if query != want {
		t.Fatalf("expected %q, got %q", want, query)
	}
	if len(args) != 4 || args[1] != "WR" || args[2] != "KC" || args[3] != 50 {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestToRowsKeepsPayloadShape(t *testing.T) {
	rec := model.DefenseWeek{Base: model.Base{
		Season:           2024,
		Week:             3,
		PlayerID:         "DEF_KC",
		Position:         model.PositionDEF,
		Team:             "KC",
		FantasyPointsPPR: 7,
	}}

	rows, err := toRows([]model.Record{rec})
	if err != nil {
		t.Fatalf("toRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.PlayerID != "DEF_KC" || row.Position != "DEF" || row.Week != 3 {
		t.Fatalf("unexpected row %+v", row)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(row.Payload, &payload); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if payload["player_id"] != "DEF_KC" {
		t.Fatalf("expected payload player_id DEF_KC, got %v", payload["player_id"])
	}
}
