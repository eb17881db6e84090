package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/gridiron/internal/export"
	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/service"
	"github.com/fortuna/gridiron/internal/store"
)

// RecordLister serves stored records. *service.RecordService implements it.
type RecordLister interface {
	ListRecords(ctx context.Context, filter store.RecordFilter) (*service.RecordPage, error)
}

// ExportQueue queues runs and reports their status. *export.Service implements it.
type ExportQueue interface {
	Enqueue(ctx context.Context, req export.Request) (*export.Run, error)
	GetStatus(ctx context.Context) (*export.StatusSummary, error)
}

// FileLocator maps a season to its export file. *output.Writer implements it.
type FileLocator interface {
	Path(season int) string
}

// ReconcileStats exposes the injury join policy and its running totals.
// *reconciliation.Engine implements it.
type ReconcileStats interface {
	Strategy() reconciliation.Strategy
	GetMetrics() reconciliation.Metrics
}

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// Handler contains dependencies for HTTP handlers
type Handler struct {
	records       RecordLister
	exports       ExportQueue
	files         FileLocator
	defaultSeason func() int
	checks        map[string]HealthCheck
	reconciler    ReconcileStats
	logger        logrus.FieldLogger
}

// HealthCheck reports the status of every registered dependency.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.checks))
	status := http.StatusOK
	overall := "healthy"

	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			overall = "degraded"
			continue
		}
		checks[name] = "ok"
	}

	respondJSON(w, status, map[string]interface{}{
		"status":  overall,
		"service": "gridiron",
		"checks":  checks,
	})
}

// GetRecords handles GET /api/v1/records
func (h *Handler) GetRecords(w http.ResponseWriter, r *http.Request) {
	if h.records == nil {
		respondError(w, http.StatusServiceUnavailable, "Record storage is not configured", nil)
		return
	}

	filter, err := parseRecordFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	page, err := h.records.ListRecords(r.Context(), filter)
	if errors.Is(err, service.ErrInvalidQuery) {
		respondError(w, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("list records")
		respondError(w, http.StatusInternalServerError, "Failed to fetch records", err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// GetLatestExport handles GET /api/v1/exports/latest by streaming the
// export file of the requested (or current) season.
func (h *Handler) GetLatestExport(w http.ResponseWriter, r *http.Request) {
	season, err := h.seasonParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return
	}

	path := h.files.Path(season)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		respondError(w, http.StatusNotFound, "No export found for season "+strconv.Itoa(season), nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to open export", err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to stat export", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Export-Season", strconv.Itoa(season))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (h *Handler) seasonParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("season")
	if raw == "" {
		return h.defaultSeason(), nil
	}
	season, err := strconv.Atoi(raw)
	if err != nil || season <= 0 {
		return 0, errors.New("season must be a positive integer")
	}
	return season, nil
}

func parseRecordFilter(r *http.Request) (store.RecordFilter, error) {
	q := r.URL.Query()
	var filter store.RecordFilter

	ints := []struct {
		name string
		dst  *int
	}{
		{"season", &filter.Season},
		{"week", &filter.Week},
		{"limit", &filter.Limit},
	}
	for _, p := range ints {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return filter, errors.New(p.name + " must be an integer")
		}
		*p.dst = v
	}

	filter.Position = q.Get("position")
	filter.Team = q.Get("team")
	return filter, nil
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
