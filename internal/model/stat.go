package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Stat is a nullable numeric value read from a provider table.
// Blank and NA cells decode as invalid and render as JSON null.
type Stat struct {
	Value float64
	Valid bool
}

// Num wraps a known value.
func Num(v float64) Stat {
	return Stat{Value: v, Valid: true}
}

// Float returns the value, or 0 when the cell was missing.
func (s Stat) Float() float64 {
	if !s.Valid {
		return 0
	}
	return s.Value
}

// MarshalJSON renders missing values as null.
func (s Stat) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON accepts a number or null.
func (s *Stat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Stat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Num(v)
	return nil
}

// UnmarshalCSV is used by gocsv when decoding provider tables.
func (s *Stat) UnmarshalCSV(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "NA") {
		*s = Stat{}
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parse stat %q: %w", raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		*s = Stat{}
		return nil
	}
	*s = Num(v)
	return nil
}

// MarshalCSV writes missing values as NA, matching the provider tables.
func (s Stat) MarshalCSV() (string, error) {
	if !s.Valid {
		return "NA", nil
	}
	return strconv.FormatFloat(s.Value, 'f', -1, 64), nil
}
