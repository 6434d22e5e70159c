package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/sse"
)

const streamKeepalive = 30 * time.Second

type StreamHandler interface {
	Stream(w http.ResponseWriter, r *http.Request)
}

type streamHandlerImpl struct {
	hub *sse.Hub
}

func NewStreamHandler(hub *sse.Hub) StreamHandler {
	return &streamHandlerImpl{
		hub: hub,
	}
}

// Stream handles the SSE connection for attendance changes in the caller's workspace
func (h *streamHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	workspaceID := workspaceFromRequest(r)
	if workspaceID == "" {
		http.Error(w, "Missing workspace", http.StatusForbidden)
		return
	}

	// Check if streaming is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(workspaceID)
	defer cleanup()

	// Send initial connection event
	connected, _ := json.Marshal(map[string]string{"status": "connected", "workspace_id": workspaceID})
	fmt.Fprintf(w, "event: connected\ndata: %s\n\n", connected)
	flusher.Flush()

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
