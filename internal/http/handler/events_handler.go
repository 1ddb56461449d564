package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/events"
	"go.uber.org/zap"
)

const keepAliveInterval = 30 * time.Second

// EventsHandler streams the tenant's change feed over server-sent events
type EventsHandler struct {
	feed   *events.Feed
	logger *zap.Logger
}

func NewEventsHandler(feed *events.Feed, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		feed:   feed,
		logger: logger,
	}
}

// Stream godoc
// @Summary Subscribe to change events
// @Description Server-sent event stream of entity changes for the current tenant
// @Tags Events
// @Produce text/event-stream
// @Success 200 {string} string "SSE stream"
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /events [get]
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	// The server's WriteTimeout covers the whole response and would cut
	// the stream off; clear the deadline for this connection only
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Warn("failed to clear write deadline", zap.Error(err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, cancel := h.feed.Subscribe(userCtx.TenantID)
	defer cancel()

	h.logger.Debug("event stream opened",
		zap.String("tenantID", userCtx.TenantID.String()),
		zap.String("employeeID", userCtx.EmployeeID.String()),
	)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case event, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Warn("failed to encode event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Entity, payload)
			flusher.Flush()
		}
	}
}
