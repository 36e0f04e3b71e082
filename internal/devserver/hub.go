package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matchline/tournops/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // dev harness only
	},
}

// client is one websocket subscriber keyed by the user id it registered for.
type client struct {
	conn   *websocket.Conn
	userID string
}

// message targets one user's subscribers; an empty UserID broadcasts to all.
type message struct {
	UserID  string
	Payload []byte
}

// Hub fans notification frames out to connected websocket clients. One
// goroutine (Run) owns the client set; handlers and publishers talk to it
// through channels.
type Hub struct {
	log logging.Logger

	broadcast  chan message
	register   chan *client
	unregister chan *client

	mu      sync.RWMutex
	clients map[*client]bool
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{
		log:        log.With("component", "hub"),
		broadcast:  make(chan message, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		clients:    make(map[*client]bool),
	}
}

// Run serves the hub until ctx is cancelled. Call it in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug(ctx, "ws client connected", "userId", c.userID, "total", total)

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				_ = c.conn.Close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug(ctx, "ws client disconnected", "userId", c.userID, "total", total)

		case msg := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*client, 0, len(h.clients))
			for c := range h.clients {
				if msg.UserID == "" || c.userID == msg.UserID {
					targets = append(targets, c)
				}
			}
			h.mu.RUnlock()

			for _, c := range targets {
				_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := c.conn.WriteMessage(websocket.TextMessage, msg.Payload); err != nil {
					h.log.Debug(ctx, "ws write failed", "error", err)
					select {
					case h.unregister <- c:
					default:
					}
				}
			}

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				_ = c.conn.Close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Notify sends one notification frame to every channel bound to userID.
func (h *Hub) Notify(userID string, frame any) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	h.broadcast <- message{UserID: userID, Payload: payload}
	return nil
}

// ServeWS upgrades the request and registers the connection under the userId
// query parameter.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{conn: conn, userID: userID}
	h.register <- c

	// Reader goroutine: its only job is to observe the close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.unregister <- c
				return
			}
		}
	}()
}
