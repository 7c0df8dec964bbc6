package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/connectfour-go/internal/model"
)

// Events receives the lifecycle of every connection
type Events interface {
	Opened(ctx context.Context, conn model.ConnectionID)
	Handle(ctx context.Context, conn model.ConnectionID, raw []byte)
	Closed(ctx context.Context, conn model.ConnectionID)
}

// Executor runs event callbacks off the connection goroutines
type Executor interface {
	SubmitAndWait(ctx context.Context, task func()) error
	Do(ctx context.Context, task func()) error
}

// Handler upgrades HTTP requests to websocket connections and feeds their
// frames to Events
type Handler struct {
	hub      *Hub
	events   Events
	exec     Executor
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new Handler
func NewHandler(hub *Hub, events Events, exec Executor, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		events: events,
		exec:   exec,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws-handler")),
	}
}

// ServeHTTP runs one connection until it closes
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.hub.admit(); err != nil {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.hub.release()

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	ctx := r.Context()
	c := newConn(model.ConnectionID(uuid.NewString()), socket, h.logger)
	go c.writePump()
	if err := h.hub.add(c); err != nil {
		h.logger.Info("connection refused", slog.String("conn_id", string(c.id)), slog.String("error", err.Error()))
		c.close()
		return
	}

	h.logger.Info("connection accepted",
		slog.String("conn_id", string(c.id)),
		slog.String("remote_addr", r.RemoteAddr),
	)

	if err := h.exec.Do(ctx, func() { h.events.Opened(ctx, c.id) }); err != nil {
		h.logger.Error("failed to open connection", slog.String("conn_id", string(c.id)), slog.String("error", err.Error()))
		h.hub.remove(c)
		c.close()
		return
	}

	// Waiting for each frame keeps one connection's requests in order
	c.readPump(func(data []byte) error {
		return h.exec.SubmitAndWait(ctx, func() { h.events.Handle(ctx, c.id, data) })
	})

	h.hub.remove(c)
	c.close()

	closeCtx := context.WithoutCancel(ctx)
	if err := h.exec.Do(closeCtx, func() { h.events.Closed(closeCtx, c.id) }); err != nil {
		h.logger.Error("failed to close connection", slog.String("conn_id", string(c.id)), slog.String("error", err.Error()))
	}
	h.logger.Info("connection closed", slog.String("conn_id", string(c.id)))
}

// Wait blocks until every connection has finished its close handling or ctx ends
func (h *Handler) Wait(ctx context.Context) error {
	return h.hub.Wait(ctx)
}
