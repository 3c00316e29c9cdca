package server

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/graphedit/pkg/editor"
	"github.com/matzehuels/graphedit/pkg/graph"
	"github.com/matzehuels/graphedit/pkg/observability"
	"github.com/matzehuels/graphedit/pkg/store"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 32
)

// Message types sent on the websocket.
const (
	msgHello    = "hello"
	msgSnapshot = "snapshot"
	msgEvent    = "event"
)

// message is one websocket frame.
type message struct {
	Type     string       `json:"type"`
	Client   string       `json:"client,omitempty"`
	Revision uint64       `json:"revision"`
	Op       store.Op     `json:"op,omitempty"`
	Graph    *graph.Graph `json:"graph,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// hub fans store events out to websocket clients. Slow clients whose
// buffer is full are disconnected rather than blocking the store.
type hub struct {
	editor   *editor.Editor
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu        sync.Mutex
	clients   map[string]*client
	unsub     func()
	closeOnce sync.Once
	closed    bool
}

func newHub(ed *editor.Editor, logger *log.Logger, origins []string) *hub {
	h := &hub{
		editor:  ed,
		logger:  logger,
		clients: make(map[string]*client),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin: func(r *http.Request) bool {
			return len(origins) == 0 || slices.Contains(origins, r.Header.Get("Origin"))
		},
	}
	h.unsub = ed.Subscribe(h.broadcast)
	return h
}

// broadcast runs synchronously inside the store's notification and must
// not block.
func (h *hub) broadcast(ev store.Event) {
	data, err := json.Marshal(message{Type: msgEvent, Revision: ev.Revision, Op: ev.Op, Graph: &ev.Graph})
	if err != nil {
		h.logger.Error("encode event", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow client", "client", id)
			h.removeLocked(id)
		}
	}
}

func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade the websocket", "error", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.register(c) {
		conn.Close()
		return
	}
	h.logger.Debug("client connected", "client", c.id, "remote", r.RemoteAddr)
	observability.HTTP().OnStream(r.Context(), 1)

	g, rev := h.editor.Snapshot()
	h.enqueue(c, message{Type: msgHello, Client: c.id, Revision: rev})
	h.enqueue(c, message{Type: msgSnapshot, Revision: rev, Graph: &g})

	go h.writePump(c)
	h.readPump(c)

	h.remove(c.id)
	observability.HTTP().OnStream(context.Background(), -1)
	h.logger.Debug("client disconnected", "client", c.id)
}

func (h *hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	return true
}

func (h *hub) enqueue(c *client, m message) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		h.removeLocked(c.id)
	}
}

// readPump discards inbound frames and returns when the peer goes away.
func (h *hub) readPump(c *client) {
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(id)
}

func (h *hub) removeLocked(id string) {
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.send)
	}
}

// count returns the number of connected clients.
func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// close unsubscribes before taking h.mu; broadcast acquires the locks in
// the opposite order.
func (h *hub) close() {
	h.closeOnce.Do(h.unsub)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id := range h.clients {
		h.removeLocked(id)
	}
}
