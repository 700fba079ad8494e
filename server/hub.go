package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rustyeddy/slotbook/book"
)

const wsIdleTimeout = 60 * time.Second

// wsMessage is the JSON envelope pushed to dashboard clients. A "book"
// message carries the full snapshot; the UI re-renders from it rather
// than patching state. "stop_breached" carries just the offending slot.
type wsMessage struct {
	Type     string         `json:"type"`
	Book     *book.Book     `json:"book,omitempty"`
	Position *book.Position `json:"position,omitempty"`
}

// Hub fans book snapshots out to connected dashboard clients. It
// implements session.Notifier, so the session pushes through it after
// every successful mutation.
type Hub struct {
	mu        sync.Mutex
	clients   map[*websocket.Conn]struct{}
	outbox    chan []byte
	closeOnce sync.Once
}

// NewHub creates a hub; call Run in a goroutine before serving.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		outbox:  make(chan []byte, 256),
	}
}

// Run drains the outbox, writing each message to every client. A client
// whose write fails is dropped. Returns once Close is called.
func (h *Hub) Run() {
	for msg := range h.outbox {
		h.mu.Lock()
		for conn := range h.clients {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				conn.Close()
				delete(h.clients, conn)
			}
		}
		h.mu.Unlock()
	}

	h.mu.Lock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
	h.mu.Unlock()
}

// Close stops the broadcast loop and disconnects all clients. The
// sessions feeding this hub must be quiet first; the server shutdown
// in cmd guarantees that ordering.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.outbox) })
}

func (h *Hub) attach(conn *websocket.Conn) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
	return len(h.clients)
}

func (h *Hub) detach(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) send(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case h.outbox <- data:
	default:
		// A full outbox means slow clients; dropping a snapshot is fine
		// since the next mutation pushes a complete one anyway.
	}
}

// BookChanged pushes the full snapshot after a mutation.
func (h *Hub) BookChanged(b book.Book) {
	h.send(wsMessage{Type: "book", Book: &b})
}

// StopBreached pushes a stop-loss alert for an active position.
func (h *Hub) StopBreached(p book.Position) {
	h.send(wsMessage{Type: "stop_breached", Position: &p})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true // single-operator tool served on localhost
	},
}

// HandleWS upgrades GET /api/v1/ws connections and parks a read pump
// that exists only to notice disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "err", err)
		return
	}

	total := h.attach(conn)
	slog.Info("ws client connected", "total", total)

	go func() {
		defer h.detach(conn)
		conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		}
	}()

	// Ping under the same lock as broadcasts: the websocket permits only
	// one concurrent writer.
	go func() {
		ticker := time.NewTicker(wsIdleTimeout / 2)
		defer ticker.Stop()
		for range ticker.C {
			h.mu.Lock()
			_, ok := h.clients[conn]
			var err error
			if ok {
				err = conn.WriteMessage(websocket.PingMessage, nil)
			}
			h.mu.Unlock()
			if !ok || err != nil {
				return
			}
		}
	}()
}
