package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jknack0/streamer-poc/internal/hub"
	"github.com/jknack0/streamer-poc/pkg/logger"
)

// EventsHandler exposes the broadcast hub over server-sent events. Each
// connection becomes one hub subscriber for the lifetime of the request.
type EventsHandler struct {
	hub *hub.Hub
	log *logger.Logger
}

func NewEventsHandler(h *hub.Hub, log *logger.Logger) *EventsHandler {
	return &EventsHandler{
		hub: h,
		log: log,
	}
}

// RegisterRoutes mounts the SSE endpoint on the router.
func (h *EventsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/polls/{id}/events", h.Stream)
}

// Stream handles GET /polls/{id}/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	pollID := chi.URLParam(r, "id")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := hub.NewSubscriber()
	h.hub.Join(r.Context(), sub, pollID)
	defer h.hub.Unsubscribe(sub)

	h.log.WithField("poll_id", pollID).Debug("Subscriber connected")

	for {
		select {
		case <-r.Context().Done():
			h.log.WithField("poll_id", pollID).Debug("Subscriber disconnected")
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				h.log.WithError(err).Error("Failed to encode event")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
			flusher.Flush()
		}
	}
}
