package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// The browser/editor clients this stream serves aren't subject to a
	// CORS policy; same-origin restriction is left to whatever reverse
	// proxy fronts this in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamNotepad implements GET /v1/notepad/stream: a long-lived connection
// that pushes each subsequent notepad append as a text frame. It is a read
// mirror only — the Store remains the ordering authority, and a dropped
// frame here never affects coordination correctness (SPEC_FULL.md §5).
func (s *Server) streamNotepad(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	projectID, cerr := s.resolveProjectID(r.Context(), r.URL.Query().Get("projectName"), identity)
	if cerr != nil {
		writeError(w, cerr)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade notepad stream", "error", err)
		return
	}
	defer conn.Close()

	lines, cancel := s.facade.SubscribeNotepad(projectID)
	defer cancel()

	for line := range lines {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return
		}
	}
}
