package notification

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub is the registry of live connections, keyed by user. A user may
// hold several simultaneous sessions (phone + browser); delivery is
// best-effort fan-out with no ordering guarantee across them.
//
// The hub is constructed once at process assembly and injected into
// whatever needs to emit events; there is no package-level instance.
type Hub struct {
	mu sync.RWMutex

	// Each connection carries its own write mutex: gorilla allows a
	// single concurrent writer per connection, and fan-outs can run
	// from any number of request goroutines.
	connections map[int64]map[*websocket.Conn]*sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]map[*websocket.Conn]*sync.Mutex),
	}
}

func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.connections[userID]
	if !ok {
		set = make(map[*websocket.Conn]*sync.Mutex)
		h.connections[userID] = set
	}
	set[conn] = &sync.Mutex{}
}

func (h *Hub) Unregister(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.connections[userID]; ok {
		if _, exists := set[conn]; exists {
			_ = conn.Close()
			delete(set, conn)
		}
		if len(set) == 0 {
			delete(h.connections, userID)
		}
	}
}

// SendToUser delivers a message to every live session of one user.
// Returns true when at least one session took the write; a user with
// no sessions is not an error, the message is simply dropped.
func (h *Hub) SendToUser(userID int64, event string, payload interface{}) bool {
	type session struct {
		conn *websocket.Conn
		wmu  *sync.Mutex
	}

	h.mu.RLock()
	sessions := make([]session, 0, len(h.connections[userID]))
	for conn, wmu := range h.connections[userID] {
		sessions = append(sessions, session{conn, wmu})
	}
	h.mu.RUnlock()

	msg := map[string]interface{}{
		"event":   event,
		"payload": payload,
	}

	delivered := false
	for _, s := range sessions {
		s.wmu.Lock()
		err := s.conn.WriteJSON(msg)
		s.wmu.Unlock()
		if err != nil {
			h.Unregister(userID, s.conn)
			continue
		}
		delivered = true
	}
	return delivered
}

// SendToConn writes one event to a single registered session,
// serialized through that session's write mutex. A connection that
// is no longer registered is a no-op.
func (h *Hub) SendToConn(userID int64, conn *websocket.Conn, event string, payload interface{}) error {
	h.mu.RLock()
	wmu := h.connections[userID][conn]
	h.mu.RUnlock()

	if wmu == nil {
		return nil
	}

	wmu.Lock()
	defer wmu.Unlock()
	return conn.WriteJSON(map[string]interface{}{
		"event":   event,
		"payload": payload,
	})
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.connections[userID]) > 0
}

func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.connections)
}

// Close tears down every connection. Called on shutdown by the
// process owner.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, set := range h.connections {
		for conn := range set {
			_ = conn.Close()
		}
		delete(h.connections, userID)
	}
}
