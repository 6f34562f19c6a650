// Package hub is the in-process connection registry: it tracks which
// principals currently hold a live transport session and resolves principal
// ids to reachable connections. State lives for the process lifetime only.
package hub

import "sync"

type Writer interface {
	Write(message []byte) error
	Close() error
}

type Connection struct {
	PrincipalID string
	Writer      Writer
}

type Hub struct {
	mu          sync.RWMutex
	connections map[string]*Connection
}

func New() *Hub {
	return &Hub{connections: make(map[string]*Connection)}
}

// Register records conn as the live session for its principal. A prior
// session for the same principal is closed and replaced; the core supports
// one live session per principal.
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	prev := h.connections[conn.PrincipalID]
	h.connections[conn.PrincipalID] = conn
	h.mu.Unlock()

	if prev != nil && prev != conn {
		_ = prev.Writer.Close()
	}
}

// Unregister removes conn if it is still the registered session for its
// principal. Idempotent; unregistering an absent or superseded connection is
// a no-op.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connections[conn.PrincipalID] == conn {
		delete(h.connections, conn.PrincipalID)
	}
}

// Resolve returns the live connections for the given principals, silently
// omitting anyone without a registered session.
func (h *Hub) Resolve(principalIDs []string) []*Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns := make([]*Connection, 0, len(principalIDs))
	for _, id := range principalIDs {
		if c, ok := h.connections[id]; ok {
			conns = append(conns, c)
		}
	}
	return conns
}

// Send writes message to every resolved session of the given principals.
// Failed writers are closed and dropped from the registry.
func (h *Hub) Send(principalIDs []string, message []byte) {
	conns := h.Resolve(principalIDs)

	var failed []*Connection
	for _, c := range conns {
		if err := c.Writer.Write(message); err != nil {
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		_ = c.Writer.Close()
		h.Unregister(c)
	}
}
