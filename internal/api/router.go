package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"temp-monitor/internal/hub"
	"temp-monitor/internal/store"
)

// Server bundles the handler dependencies: the reading store for the
// query endpoints and the hub for the live channel.
type Server struct {
	store    store.Store
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

func NewServer(st store.Store, h *hub.Hub) *Server {
	return &Server{
		store: st,
		hub:   h,
		upgrader: websocket.Upgrader{
			// the dashboard is served from a different origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/api/readings/recent", s.handleRecentReadings).Methods("GET")
	r.HandleFunc("/api/readings/latest", s.handleLatestReading).Methods("GET")
	r.HandleFunc("/api/users", s.handleCreateUser).Methods("POST")
	r.HandleFunc("/ws", s.handleLive)

	return r
}
