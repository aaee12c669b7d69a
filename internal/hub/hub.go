// internal/hub/hub.go
package hub

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"brainsgraph/internal/graph"
)

const (
	frameTypeInit   = "INIT"
	frameTypeUpdate = "UPDATE"

	// updateBuffer absorbs highlight notifications while the hub
	// goroutine is momentarily busy fanning out a previous one.
	updateBuffer = 64
)

// initFrame is the first message sent to every new viewer: the full
// graph snapshot plus the selection currently in effect.
type initFrame struct {
	Type        string       `json:"type"`
	Nodes       []graph.Node `json:"nodes"`
	Edges       []graph.Edge `json:"edges"`
	Highlighted []string     `json:"highlighted"`
}

// updateFrame carries only the changed selection; nodes and edges never
// change after the initial scan so they are not resent.
type updateFrame struct {
	Type        string   `json:"type"`
	Highlighted []string `json:"highlighted"`
}

// Hub owns the viewer connection registry and fans highlight updates out
// to every live connection. All registry access happens on the single
// Run goroutine (the connection context); the command context reaches it
// only through the buffered updates channel, so neither side contends on
// a shared lock in its hot path.
type Hub struct {
	log   *zap.Logger
	store *graph.Store

	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	updates    chan []string

	running atomic.Bool
	done    chan struct{}
}

// New creates a Hub bound to the given store. Run must be started before
// viewers attach.
func New(logger *zap.Logger, store *graph.Store) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		log:        logger.Named("hub"),
		store:      store,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		updates:    make(chan []string, updateBuffer),
		done:       make(chan struct{}),
	}
}

// Run is the connection context: a single goroutine that serializes
// registration, deregistration, and broadcast fan-out. It returns when
// ctx is cancelled, closing every remaining client.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		close(h.done)
	}()

	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.sendInit(c)
			h.log.Info("Viewer connected", zap.String("client", c.id), zap.Int("total", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Info("Viewer disconnected", zap.String("client", c.id), zap.Int("total", len(h.clients)))
			}

		case ids := <-h.updates:
			h.broadcast(ids)

		case <-ctx.Done():
			h.log.Info("Hub shutting down", zap.Int("clients", len(h.clients)))
			return
		}
	}
}

// NotifyHighlight hands a selection change from the command context to
// the connection context. It never blocks the caller: the enqueue either
// succeeds immediately or the notification is dropped with a warning.
// Dropped or pre-start notifications are not replayed; the INIT sent to
// each connecting viewer is the sole reconciliation path.
func (h *Hub) NotifyHighlight(ids []string) {
	if !h.running.Load() {
		h.log.Warn("Hub not running, highlight notification not delivered", zap.Int("ids", len(ids)))
		return
	}
	select {
	case h.updates <- ids:
	default:
		h.log.Warn("Update queue full, highlight notification dropped", zap.Int("ids", len(ids)))
	}
}

// Attach registers conn as a live viewer and runs its pumps. It blocks
// until the viewer disconnects or the hub shuts down, mirroring the
// lifetime of the HTTP handler that owns the connection.
func (h *Hub) Attach(conn *websocket.Conn) {
	if !h.running.Load() {
		// Startup race: the gateway accepted a viewer before Run began.
		// Close rather than block the HTTP handler on a loop that may
		// never drain the register channel.
		h.log.Warn("Hub not running, closing viewer connection")
		_ = conn.Close()
		return
	}

	c := newClient(h, conn, h.log)

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	c.readPump()
}

// sendInit builds the INIT frame from a fresh snapshot inside the Run
// loop, so it is ordered consistently with any UPDATE that follows.
func (h *Hub) sendInit(c *Client) {
	snap := h.store.Snapshot()
	frame, err := json.Marshal(initFrame{
		Type:        frameTypeInit,
		Nodes:       snap.Nodes,
		Edges:       snap.Edges,
		Highlighted: snap.Highlighted,
	})
	if err != nil {
		h.log.Error("Failed to marshal INIT frame", zap.Error(err))
		return
	}
	if !c.enqueue(frame) {
		h.log.Warn("Viewer send buffer full at registration", zap.String("client", c.id))
	}
}

func (h *Hub) broadcast(ids []string) {
	if ids == nil {
		ids = []string{}
	}
	frame, err := json.Marshal(updateFrame{Type: frameTypeUpdate, Highlighted: ids})
	if err != nil {
		h.log.Error("Failed to marshal UPDATE frame", zap.Error(err))
		return
	}
	for c := range h.clients {
		// A slow or dead viewer is skipped for this frame only;
		// teardown belongs to its read pump, not the broadcast.
		if !c.enqueue(frame) {
			h.log.Warn("Viewer send buffer full, skipping update", zap.String("client", c.id))
		}
	}
	h.log.Debug("Highlight update broadcast", zap.Int("viewers", len(h.clients)), zap.Int("ids", len(ids)))
}
