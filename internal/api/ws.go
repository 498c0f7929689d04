package api

import (
	"log"
	"net/http"

	"temp-monitor/internal/hub"
)

// handleLive upgrades the request and parks the connection in the hub.
// No client->server messages are defined; the read loop only exists to
// notice the close.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("api: ws upgrade: %v", err)
		return
	}

	sess := hub.NewSession(conn)
	s.hub.Register(sess)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	sess.MarkClosed()
	s.hub.Unregister(sess)
	conn.Close()
}
