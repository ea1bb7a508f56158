package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mpapenbr/simlap-service-go/log"
	"github.com/mpapenbr/simlap-service-go/pkg/http/auth"
)

// events streams the analysis events of the authenticated user as
// server-sent events until the client disconnects.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, errors.New("streaming not supported"))
		return
	}
	user := auth.FromContext(r.Context())
	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	l := s.l.With(log.Int("user", user.ID))
	l.Debug("event stream opened")
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			l.Debug("event stream closed by client")
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, more := <-ch:
			if !more {
				l.Debug("event source closed")
				return
			}
			if ev.UserID != user.ID {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				l.Warn("could not marshal event", log.ErrorField(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: analysis\nid: %d\ndata: %s\n\n",
				ev.ID, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
