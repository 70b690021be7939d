package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/xid"
)

const sseHeartbeat = 15 * time.Second

// handleEvents diffuse les événements du bus en Server-Sent Events.
// ?topic= restreint le flux à un topic.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	topic := r.URL.Query().Get("topic")

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	fmt.Fprintf(w, "event: hello\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	if s.bus == nil {
		<-r.Context().Done()
		return
	}
	events, cancel := s.bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if topic != "" && evt.Topic != topic {
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", xid.New().String(), evt.Topic, evt.Payload)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, "event: ping\ndata: {}\n\n")
			flusher.Flush()
		}
	}
}
