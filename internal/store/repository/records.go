package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fortuna/gridiron/internal/model"
	"github.com/fortuna/gridiron/internal/store"
)

// RecordRepository persists exported weekly records.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

const upsertRecordQuery = `
	INSERT INTO weekly_records (
		season, week, player_id, season_type, position, team,
		fantasy_points_ppr, payload
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (season, week, player_id)
	DO UPDATE SET
		season_type = EXCLUDED.season_type,
		position = EXCLUDED.position,
		team = EXCLUDED.team,
		fantasy_points_ppr = EXCLUDED.fantasy_points_ppr,
		payload = EXCLUDED.payload,
		updated_at = NOW()
`

// UpsertRecords writes every record in one transaction.
func (r *RecordRepository) UpsertRecords(ctx context.Context, records []model.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	rows, err := toRows(records)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin record upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertRecordQuery)
	if err != nil {
		return 0, fmt.Errorf("prepare record upsert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			row.Season, row.Week, row.PlayerID, row.SeasonType, row.Position,
			row.Team, row.FantasyPointsPPR, []byte(row.Payload),
		); err != nil {
			return 0, fmt.Errorf("upserting record %s week %d: %w", row.PlayerID, row.Week, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit record upsert: %w", err)
	}
	return len(rows), nil
}

// ListRecords returns stored payloads ordered by week, position and player.
func (r *RecordRepository) ListRecords(ctx context.Context, filter store.RecordFilter) ([]json.RawMessage, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	payloads := []json.RawMessage{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		payloads = append(payloads, json.RawMessage(payload))
	}
	return payloads, rows.Err()
}

// Seasons lists the seasons present in storage, newest first.
func (r *RecordRepository) Seasons(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT season FROM weekly_records ORDER BY season DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying seasons: %w", err)
	}
	defer rows.Close()

	var seasons []int
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

func buildListQuery(filter store.RecordFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	add := func(clause string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.Season > 0 {
		add("season = $%d", filter.Season)
	}
	if filter.Week > 0 {
		add("week = $%d", filter.Week)
	}
	if filter.Position != "" {
		add("position = $%d", strings.ToUpper(filter.Position))
	}
	if filter.Team != "" {
		add("team = $%d", strings.ToUpper(filter.Team))
	}

	var b strings.Builder
	b.WriteString("SELECT payload FROM weekly_records")
	if len(clauses) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(clauses, " AND "))
	}
	b.WriteString(" ORDER BY season, week, position, player_id")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}

func toRows(records []model.Record) ([]store.WeeklyRecord, error) {
	rows := make([]store.WeeklyRecord, 0, len(records))
	for _, rec := range records {
		base := rec.Identity()
		payload, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode record %s week %d: %w", base.PlayerID, base.Week, err)
		}
		rows = append(rows, store.WeeklyRecord{
			Season:           base.Season,
			Week:             base.Week,
			PlayerID:         base.PlayerID,
			SeasonType:       base.SeasonType,
			Position:         string(base.Position),
			Team:             base.Team,
			FantasyPointsPPR: base.FantasyPointsPPR,
			Payload:          payload,
		})
	}
	return rows, nil
}
