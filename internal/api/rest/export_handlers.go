package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fortuna/gridiron/internal/export"
)

type apiExportRequest struct {
	Season int  `json:"season"`
	DryRun bool `json:"dry_run"`
}

// HandleExportRequest handles POST /api/v1/exports. A missing season uses
// the current resolved season.
func (h *Handler) HandleExportRequest(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		respondError(w, http.StatusServiceUnavailable, "Export queue is not configured", nil)
		return
	}

	var req apiExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Season < 0 {
		respondError(w, http.StatusBadRequest, "Invalid season", nil)
		return
	}
	if req.Season == 0 {
		req.Season = h.defaultSeason()
	}

	run, err := h.exports.Enqueue(r.Context(), export.Request{
		Season:  req.Season,
		DryRun:  req.DryRun,
		Trigger: export.TriggerAPI,
	})
	if err != nil {
		h.logger.WithError(err).Error("enqueue export")
		respondError(w, http.StatusInternalServerError, "Failed to enqueue export", err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"run": run,
	})
}

// HandleExportStatus handles GET /api/v1/exports/status. The payload also
// carries the injury join totals when a reconciler is wired.
func (h *Handler) HandleExportStatus(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		respondError(w, http.StatusServiceUnavailable, "Export queue is not configured", nil)
		return
	}

	summary, err := h.exports.GetStatus(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch status", err)
		return
	}

	respondJSON(w, http.StatusOK, buildStatusPayload(summary, h.reconciler))
}

func buildStatusPayload(summary *export.StatusSummary, reconciler ReconcileStats) map[string]interface{} {
	response := map[string]interface{}{
		"status":  "idle",
		"message": "No active exports",
		"history": []*export.Run{},
	}

	if summary.ActiveRun != nil {
		response["status"] = summary.ActiveRun.Status
		response["message"] = "Export running"
		response["active_run"] = summary.ActiveRun
	}
	if len(summary.History) > 0 {
		response["history"] = summary.History
	}
	if reconciler != nil {
		totals := reconciler.GetMetrics()
		response["reconciliation"] = map[string]interface{}{
			"strategy":            reconciler.Strategy(),
			"reconciliations":     totals.TotalReconciliations,
			"by_id":               totals.ByID,
			"by_name":             totals.ByName,
			"unmatched":           totals.Unmatched,
			"collisions":          totals.Collisions,
			"last_reconciliation": totals.LastReconciliation,
		}
	}
	return response
}
