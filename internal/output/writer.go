// Package output persists the exported records.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fortuna/gridiron/internal/model"
)

// Layouts select the output file name.
const (
	// LayoutStatic always writes weekly_stats.json.
	LayoutStatic = "static"
	// LayoutSeason writes player_stats_<season>.json.
	LayoutSeason = "season"
)

// Writer writes a season's records as one JSON array.
type Writer struct {
	dir    string
	layout string
}

// NewWriter constructs a writer rooted at dir. Unknown layouts fall back to
// LayoutSeason.
func NewWriter(dir, layout string) *Writer {
	if dir == "" {
		dir = "data"
	}
	if layout != LayoutStatic {
		layout = LayoutSeason
	}
	return &Writer{dir: dir, layout: layout}
}

// Dir is the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// FileName returns the base name for a season under the writer's layout.
func (w *Writer) FileName(season int) string {
	if w.layout == LayoutStatic {
		return "weekly_stats.json"
	}
	return fmt.Sprintf("player_stats_%d.json", season)
}

// Path returns the full output path for a season.
func (w *Writer) Path(season int) string {
	return filepath.Join(w.dir, w.FileName(season))
}

// Encode renders records as a 2-space indented array with a trailing
// newline. An empty run is "[]".
func Encode(records []model.Record) ([]byte, error) {
	if records == nil {
		records = []model.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return append(data, '\n'), nil
}

// Write encodes and atomically replaces the season's output file. It
// returns the path written and the bytes, so callers can upload the same
// payload.
func (w *Writer) Write(season int, records []model.Record) (string, []byte, error) {
	data, err := Encode(records)
	if err != nil {
		return "", nil, err
	}

	target := w.Path(season)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", nil, fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".*.tmp")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", nil, fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return "", nil, fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", nil, fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return "", nil, fmt.Errorf("replace %s: %w", target, err)
	}
	return target, data, nil
}
