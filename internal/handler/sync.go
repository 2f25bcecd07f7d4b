package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"bgg-mirror-api/internal/model"
	"bgg-mirror-api/internal/service"
	"bgg-mirror-api/pkg/apierror"
	"bgg-mirror-api/pkg/response"
)

// manualSyncTimeout bounds a sync run triggered over HTTP.
const manualSyncTimeout = 2 * time.Hour

// SyncHandler exposes the sync orchestrator over HTTP.
type SyncHandler struct {
	orchestrator *service.SyncOrchestrator
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(orchestrator *service.SyncOrchestrator) *SyncHandler {
	return &SyncHandler{orchestrator: orchestrator}
}

// Trigger returns the handler for POST /api/v1/<resource>/update. The run
// happens in the background; the request returns 202 immediately, or 409
// when a run for the kind is already active.
func (h *SyncHandler) Trigger(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.orchestrator.Running(kind) {
			response.Error(w, apierror.Conflict(fmt.Sprintf("%s sync already running", kind)))
			return
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), manualSyncTimeout)
			defer cancel()

			if _, err := h.orchestrator.TrySync(ctx, kind); err != nil && !errors.Is(err, service.ErrSyncRunning) {
				log.Printf("[SyncHandler] Manual %s sync failed: %v", kind, err)
			}
		}()

		response.Accepted(w, map[string]interface{}{
			"status": "started",
			"kind":   kind,
		})
	}
}

// LastReport returns the handler for GET /api/v1/<resource>/sync. It serves
// the most recent finished run for the kind.
func (h *SyncHandler) LastReport(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := h.orchestrator.LastReport(kind)
		if report == nil {
			response.Error(w, apierror.NotFound(fmt.Sprintf("no finished %s sync yet", kind)))
			return
		}
		response.OK(w, report)
	}
}

// Stats handles GET /api/v1/stats
func (h *SyncHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orchestrator.Stats(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError("failed to load stats"))
		return
	}
	response.OK(w, stats)
}

// KindStats returns the handler for GET /api/v1/<resource>/stats.
func (h *SyncHandler) KindStats(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.orchestrator.KindStats(r.Context(), kind)
		if err != nil {
			response.Error(w, apierror.InternalError(fmt.Sprintf("failed to load %s stats", kind)))
			return
		}
		response.OK(w, stats)
	}
}
