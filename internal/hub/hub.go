// Package hub fans freshly stored readings out to live dashboard
// connections and hands every new connection an initial snapshot.
package hub

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"temp-monitor/internal/model"
	"temp-monitor/internal/store"
)

// Envelope is the tagged message shape sent over the live channel.
type Envelope struct {
	Type   string         `json:"type"`
	Status string         `json:"status,omitempty"`
	Data   *model.Reading `json:"data,omitempty"`
}

func statusEnvelope(status string) Envelope {
	return Envelope{Type: "connection_status", Status: status}
}

func readingEnvelope(r model.Reading) Envelope {
	return Envelope{Type: "sensor_data", Data: &r}
}

// Conn is the transport write surface a session needs. Satisfied by
// *websocket.Conn; tests substitute fakes.
type Conn interface {
	WriteJSON(v any) error
}

// Session wraps one live connection. Writes are serialized by a mutex
// because broadcasts and the async snapshot can race on the same
// transport.
type Session struct {
	conn Conn

	mu     sync.Mutex
	closed bool
}

func NewSession(conn Conn) *Session {
	return &Session{conn: conn}
}

// MarkClosed flags the session so broadcasts skip it. The session stays
// registered until an explicit Unregister.
func (s *Session) MarkClosed() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Session) send(env Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSessionClosed
	}
	return s.conn.WriteJSON(env)
}

var errSessionClosed = errors.New("session closed")

// LatestSource supplies the snapshot reading for new sessions. The
// reading store satisfies it.
type LatestSource interface {
	LatestSensorReading(ctx context.Context) (model.Reading, error)
}

// Hub owns the set of registered sessions. One instance is created at
// startup and passed to whatever registers connections.
type Hub struct {
	latest          LatestSource
	snapshotTimeout time.Duration

	mu       sync.Mutex
	sessions map[*Session]struct{}
}

func New(latest LatestSource) *Hub {
	return &Hub{
		latest:          latest,
		snapshotTimeout: 5 * time.Second,
		sessions:        make(map[*Session]struct{}),
	}
}

// Register adds the session, confirms the connection, and kicks off the
// best-effort snapshot. The snapshot is fetched asynchronously, so a
// broadcast raised in between may reach this session first; that
// ordering is accepted.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	n := len(h.sessions)
	h.mu.Unlock()
	log.Printf("hub: session registered (%d live)", n)

	if err := s.send(statusEnvelope("connected")); err != nil {
		log.Printf("hub: connection status send: %v", err)
	}

	go h.sendSnapshot(s)
}

func (h *Hub) sendSnapshot(s *Session) {
	ctx, cancel := context.WithTimeout(context.Background(), h.snapshotTimeout)
	defer cancel()

	r, err := h.latest.LatestSensorReading(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("hub: snapshot fetch: %v", err)
		}
		return
	}
	if err := s.send(readingEnvelope(r)); err != nil && !errors.Is(err, errSessionClosed) {
		log.Printf("hub: snapshot send: %v", err)
	}
}

// Unregister removes the session. Safe to call more than once; the
// close and error paths both deregister.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s]
	delete(h.sessions, s)
	n := len(h.sessions)
	h.mu.Unlock()
	if ok {
		log.Printf("hub: session removed (%d live)", n)
	}
}

// Broadcast sends one sensor_data envelope to every open session.
// Closed sessions are skipped, not removed. There is no per-session
// queue; a slow consumer is the transport's problem.
func (h *Hub) Broadcast(r model.Reading) {
	env := readingEnvelope(r)

	h.mu.Lock()
	targets := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	for _, s := range targets {
		if err := s.send(env); err != nil && !errors.Is(err, errSessionClosed) {
			log.Printf("hub: broadcast send: %v", err)
		}
	}
}

// Len reports the number of registered sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
