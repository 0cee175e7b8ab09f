// Package api exposes read-only progress inspection over HTTP and MCP.
// Both surfaces recompute state from the filesystem on every request, so
// they can run alongside (or between) batch runs without coordination.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"refalign/internal/progress"
)

// ProgressScanner recomputes completion records for every known group.
type ProgressScanner interface {
	Scan() ([]progress.Record, error)
}

// StatusHandler serves batch progress as JSON.
type StatusHandler struct {
	tracker ProgressScanner
	logger  *slog.Logger
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(tracker ProgressScanner, logger *slog.Logger) *StatusHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusHandler{tracker: tracker, logger: logger}
}

// Router builds the HTTP routes.
func (h *StatusHandler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", h.handleHealth)
	r.Get("/progress", h.handleProgress)
	return r
}

func (h *StatusHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type progressEntry struct {
	GroupKey  string `json:"group_key"`
	Partition string `json:"partition"`
	Group     string `json:"group"`
	Expected  int    `json:"expected"`
	Completed int    `json:"completed"`
	Status    string `json:"status"`
}

type progressResponse struct {
	Groups    []progressEntry `json:"groups"`
	Remaining int             `json:"remaining"`
}

func (h *StatusHandler) handleProgress(w http.ResponseWriter, r *http.Request) {
	records, err := h.tracker.Scan()
	if err != nil {
		h.logger.Error("progress scan failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "progress scan failed"})
		return
	}

	resp := progressResponse{
		Groups:    make([]progressEntry, 0, len(records)),
		Remaining: len(progress.WorkSet(records)),
	}
	for _, rec := range records {
		resp.Groups = append(resp.Groups, progressEntry{
			GroupKey:  rec.GroupKey,
			Partition: rec.Partition,
			Group:     rec.Group,
			Expected:  rec.Expected,
			Completed: rec.Completed,
			Status:    rec.Status().String(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
