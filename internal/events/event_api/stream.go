package event_api

import (
	"fmt"
	"net/http"
	"time"

	"evento/internal/sse"

	ginsse "github.com/gin-contrib/sse"
	"github.com/go-chi/chi/v5"
)

const streamKeepAlive = 15 * time.Second

// StreamInventory pushes an event's availability as server-sent events: the
// current state first, then one message per committed change.
func (h *Handler) StreamInventory(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	ctx := r.Context()

	updates := h.Stream.Subscribe(ctx, eventID)
	ev, err := h.EventService.Get(ctx, eventID)
	if err != nil {
		h.writeServiceError(w, "StreamInventory", err)
		return
	}

	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})
	w.Header().Set("Content-Type", ginsse.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	current := sse.UpdateFor(ev)
	if !h.writeUpdate(w, rc, current) {
		return
	}
	h.Logger.Debug("SSE", fmt.Sprintf("Client subscribed to inventory of event %s", eventID))

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if !update.Deleted && update.Version <= current.Version {
				continue
			}
			current = update
			if !h.writeUpdate(w, rc, update) || update.Deleted {
				return
			}
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			if rc.Flush() != nil {
				return
			}
		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client left inventory stream of event %s", eventID))
			return
		}
	}
}

func (h *Handler) writeUpdate(w http.ResponseWriter, rc *http.ResponseController, update sse.InventoryUpdate) bool {
	err := ginsse.Encode(w, ginsse.Event{Event: "inventory", Id: fmt.Sprint(update.Version), Data: update})
	if err != nil {
		h.Logger.Error("SSE", fmt.Sprintf("Failed to write inventory update: %v", err))
		return false
	}
	return rc.Flush() == nil
}
