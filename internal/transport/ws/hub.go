package ws

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/connectfour-go/internal/model"
)

// Hub tracks open connections and routes outbound frames to them. Once
// CloseAll runs it admits no new connections.
type Hub struct {
	mu      sync.RWMutex
	conns   map[model.ConnectionID]*Conn
	closing bool
	// active counts admitted connections until their close handling ends
	active sync.WaitGroup
	logger *slog.Logger
}

// NewHub creates an empty Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[model.ConnectionID]*Conn),
		logger: logger.With(slog.String("component", "ws-hub")),
	}
}

// admit reserves a slot for a connection about to be upgraded. Each
// successful admit is paired with one release.
func (h *Hub) admit() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return ErrHubClosing
	}
	h.active.Add(1)
	return nil
}

func (h *Hub) release() {
	h.active.Done()
}

func (h *Hub) add(c *Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return ErrHubClosing
	}
	h.conns[c.id] = c
	return nil
}

func (h *Hub) remove(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.conns[c.id]; ok && current == c {
		delete(h.conns, c.id)
	}
}

// Send queues data for the connection
func (h *Hub) Send(id model.ConnectionID, data []byte) error {
	h.mu.RLock()
	c, ok := h.conns[id]
	h.mu.RUnlock()

	if !ok {
		return ErrConnectionNotFound
	}
	return c.enqueue(data)
}

// Count returns the number of open connections
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// CloseAll stops admitting connections and closes every open one. Each
// one's read loop then exits and reports the close as usual.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	h.closing = true
	conns := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
	h.logger.Info("closed all connections", slog.Int("count", len(conns)))
}

// Wait blocks until every admitted connection has finished its close
// handling or ctx ends
func (h *Hub) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.active.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
