package syncer

import (
	"errors"
	"net/http"

	"github.com/klokku/calbar/internal/rest"
)

type Handler struct {
	syncer *Syncer
}

func NewHandler(syncer *Syncer) *Handler {
	return &Handler{syncer: syncer}
}

// Sync runs a sync synchronously. A run with failing sources still answers 200 with the
// failures listed in the report.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	report, err := h.syncer.Run(r.Context())
	if errors.Is(err, ErrRunning) {
		rest.WriteError(w, http.StatusConflict, "Sync already running", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) LastReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.syncer.LastReport()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	rest.WriteJSON(w, http.StatusOK, report)
}
