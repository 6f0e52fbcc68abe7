package message

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wishwell/internal/auth"
	"wishwell/internal/list"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
)

// Client is one authenticated websocket connection, bound to the list
// identity resolved at handshake time.
type Client struct {
	Ident auth.Identity
	List  *list.List

	hub  *Hub
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// Send queues a frame for this client only. Slow consumers are dropped
// rather than blocking the hub. Frames arriving after the hub let go of the
// client are discarded.
func (c *Client) Send(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
		c.conn.Close()
	}
}

// closeSend retires the send channel. Only the hub goroutine calls it; the
// closed flag keeps a late Send from racing the close. Idempotent, since a
// dropped client unregisters again when its read pump exits.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Hub fans broadcast frames out to every connected client. Broadcasting is
// fire-and-forget; persistence happens before a frame ever reaches the hub.
type Hub struct {
	log *zap.Logger

	// OnMessage handles one inbound frame from a client. Set once during
	// wiring, before Run.
	OnMessage func(c *Client, data []byte)

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	clients    map[*Client]bool
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:        log,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 32),
		clients:    make(map[*Client]bool),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				c.closeSend()
				delete(h.clients, c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.log.Info("client connected",
				zap.String("name", c.Ident.FirstName+" "+c.Ident.LastName))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.closeSend()
				h.log.Info("client disconnected",
					zap.String("name", c.Ident.FirstName+" "+c.Ident.LastName))
			}
		case b := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- b:
				default:
					delete(h.clients, c)
					c.closeSend()
				}
			}
		}
	}
}

func (h *Hub) Broadcast(b []byte) {
	h.broadcast <- b
}

// Join registers an authenticated connection and starts its pumps.
func (h *Hub) Join(ident auth.Identity, l *list.List, conn *websocket.Conn) *Client {
	c := &Client{Ident: ident, List: l, hub: h, conn: conn, send: make(chan []byte, 16)}
	h.register <- c
	go c.writePump()
	go c.readPump()
	return c
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if c.hub.OnMessage != nil {
			c.hub.OnMessage(c, data)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case b, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
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
