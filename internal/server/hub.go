package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// roundClient is one connected websocket subscriber. It receives round
// lifecycle broadcasts only — it is never the source of truth for bets
// or balances, unlike the teacher's game Hub which fed live crash-curve
// state to clients.
type roundClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *roundClient) send(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// roundHub fans out round lifecycle notifications to every connected
// client; the only event sent is round_settled. Kept as an
// additive convenience on top of GET /api/round; a client that never
// connects to it still has the full picture via polling.
type roundHub struct {
	mu      sync.RWMutex
	clients map[*roundClient]bool

	broadcast  chan interface{}
	register   chan *roundClient
	unregister chan *roundClient

	log *zap.Logger
}

func newRoundHub(log *zap.Logger) *roundHub {
	return &roundHub{
		clients:    make(map[*roundClient]bool),
		broadcast:  make(chan interface{}, 64),
		register:   make(chan *roundClient),
		unregister: make(chan *roundClient),
		log:        log,
	}
}

func (h *roundHub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.conn.Close()
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				go func(c *roundClient) {
					if err := c.send(msg); err != nil {
						h.log.Debug("round hub send failed", zap.Error(err))
					}
				}(c)
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues msg for every connected client. Non-blocking: a full
// buffer drops the message rather than stalling the caller.
func (h *roundHub) Broadcast(msg interface{}) {
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("round hub broadcast buffer full, dropping message")
	}
}

func (h *roundHub) serve(conn *websocket.Conn) {
	c := &roundClient{conn: conn}
	h.register <- c

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unregister <- c
			return
		}
	}
}
