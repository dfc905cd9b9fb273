// Package helpers hosts the in-process presence backend the integration
// tests run against. It speaks the client's wire contract over websocket:
// a session:init on connect, then a total users:update broadcast whenever
// the roster changes.
package helpers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/Marlon200530/real-time-map-client/internal/models"
)

type Hub struct {
	srv *httptest.Server

	mu       sync.Mutex
	sessions map[*session]struct{}
	roster   []models.Participant // join order of participants that have reported
}

type session struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewHub starts the backend on an ephemeral port.
func NewHub() *Hub {
	h := &Hub{sessions: make(map[*session]struct{})}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	h.srv = httptest.NewServer(mux)
	return h
}

// URL is the backend origin clients dial.
func (h *Hub) URL() string { return h.srv.URL }

// Close shuts the backend down.
func (h *Hub) Close() { h.srv.Close() }

// DropConnections severs every live connection without stopping the server,
// to exercise client reconnection. Websocket connections are hijacked from
// the HTTP server, so httptest's CloseClientConnections no longer tracks
// them; close each session's conn directly instead.
func (h *Hub) DropConnections() {
	for _, s := range h.sessionList() {
		_ = s.conn.CloseNow()
	}
}

// SessionCount reports the number of live connections.
func (h *Hub) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Roster returns a copy of the current authoritative roster.
func (h *Hub) Roster() []models.Participant {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.Participant(nil), h.roster...)
}

// Broadcast pushes an arbitrary envelope to every connection, e.g. a
// malformed users:update.
func (h *Hub) Broadcast(env models.Envelope) {
	for _, s := range h.sessionList() {
		s.send(env)
	}
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	s := &session{id: uuid.NewString(), conn: conn}
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()

	s.send(models.NewEnvelope(models.MsgTypeSessionInit, models.SessionInit{ID: s.id}))
	h.broadcastRoster()

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		var env models.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		if env.Type != models.MsgTypeLocationUpdate {
			continue
		}
		var sample models.LocationSample
		if err := json.Unmarshal(env.Payload, &sample); err != nil {
			continue
		}
		h.updateParticipant(s.id, sample)
		h.broadcastRoster()
	}

	h.removeSession(s)
	h.broadcastRoster()
}

func (h *Hub) updateParticipant(id string, sample models.LocationSample) {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := time.Now().UnixMilli()
	for i := range h.roster {
		if h.roster[i].ID == id {
			h.roster[i].Lat = sample.Lat
			h.roster[i].Lng = sample.Lng
			h.roster[i].UpdatedAt = now
			return
		}
	}
	h.roster = append(h.roster, models.Participant{
		ID: id, Lat: sample.Lat, Lng: sample.Lng, UpdatedAt: now,
	})
}

func (h *Hub) removeSession(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s)
	for i := range h.roster {
		if h.roster[i].ID == s.id {
			h.roster = append(h.roster[:i], h.roster[i+1:]...)
			break
		}
	}
}

func (h *Hub) broadcastRoster() {
	h.mu.Lock()
	env := models.NewEnvelope(models.MsgTypeUsersUpdate, append([]models.Participant{}, h.roster...))
	h.mu.Unlock()

	for _, s := range h.sessionList() {
		s.send(env)
	}
}

func (h *Hub) sessionList() []*session {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		out = append(out, s)
	}
	return out
}

func (s *session) send(env models.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.conn.Write(ctx, websocket.MessageText, data)
}
