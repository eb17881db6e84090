// Package service holds the read side used by the REST API.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fortuna/gridiron/internal/model"
	"github.com/fortuna/gridiron/internal/store"
)

// ErrInvalidQuery marks caller mistakes in a record query.
var ErrInvalidQuery = errors.New("invalid record query")

// MaxLimit caps a single page of records.
const MaxLimit = 5000

// RecordStore reads stored records. *repository.RecordRepository implements it.
type RecordStore interface {
	ListRecords(ctx context.Context, filter store.RecordFilter) ([]json.RawMessage, error)
	Seasons(ctx context.Context) ([]int, error)
}

// RecordPage is one response of the records endpoint.
type RecordPage struct {
	Season  int               `json:"season"`
	Week    int               `json:"week,omitempty"`
	Count   int               `json:"count"`
	Records []json.RawMessage `json:"records"`
}

// RecordService handles record lookups
type RecordService struct {
	repo RecordStore
}

// NewRecordService creates a new record service
func NewRecordService(repo RecordStore) *RecordService {
	return &RecordService{repo: repo}
}

// ListRecords validates the filter and returns matching records. A zero
// season selects the newest stored season.
func (s *RecordService) ListRecords(ctx context.Context, filter store.RecordFilter) (*RecordPage, error) {
	if filter.Week < 0 {
		return nil, fmt.Errorf("%w: week %d", ErrInvalidQuery, filter.Week)
	}
	if filter.Limit < 0 || filter.Limit > MaxLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidQuery, MaxLimit)
	}
	if filter.Position != "" {
		filter.Position = string(model.ParsePosition(filter.Position))
		if !knownPosition(model.Position(filter.Position)) {
			return nil, fmt.Errorf("%w: unknown position %q", ErrInvalidQuery, filter.Position)
		}
	}

	if filter.Season == 0 {
		seasons, err := s.repo.Seasons(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching seasons: %w", err)
		}
		if len(seasons) == 0 {
			return &RecordPage{Records: []json.RawMessage{}}, nil
		}
		filter.Season = seasons[0]
	}

	records, err := s.repo.ListRecords(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetching records: %w", err)
	}

	return &RecordPage{
		Season:  filter.Season,
		Week:    filter.Week,
		Count:   len(records),
		Records: records,
	}, nil
}

// knownPosition accepts any short alphabetic code so positions without
// a stat allow-list (LS, P) stay queryable.
func knownPosition(p model.Position) bool {
	if len(p) == 0 || len(p) > 4 {
		return false
	}
	for _, r := range p {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
