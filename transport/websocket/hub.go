package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ekincelikten/rp-game-server/game/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Per-client queue of encoded frames.
	clientBufferSize = 256

	// Notifications waiting for the hub loop.
	outboundBufferSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler receives the validated events of a connection
type Handler interface {
	Dispatch(ctx context.Context, connID string, in protocol.Inbound) error
	Disconnect(ctx context.Context, connID string) error
}

// Client represents a WebSocket client
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
}

// ID returns the connection identifier
func (c *Client) ID() string {
	return c.id
}

type envelope struct {
	connID string
	msg    protocol.Message
}

// Hub maintains the set of active clients and delivers notifications to them
type Hub struct {
	// Registered clients by connection ID
	clients map[string]*Client

	// Notifications queued by sessions
	outbound chan envelope

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	connected atomic.Int64
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		outbound:   make(chan envelope, outboundBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case env := <-h.outbound:
			h.deliver(env)
		}
	}
}

// Send queues a message for one connection. It never blocks: when the queue
// is full the message is dropped.
func (h *Hub) Send(connID string, msg protocol.Message) {
	select {
	case h.outbound <- envelope{connID: connID, msg: msg}:
	default:
		zap.L().Warn("outbound queue full, dropping message",
			zap.String("conn", connID), zap.String("event", msg.Event))
	}
}

// Connected returns the number of registered clients
func (h *Hub) Connected() int {
	return int(h.connected.Load())
}

// ServeWS upgrades the request and pumps the connection's frames to handler
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, handler Handler) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, clientBufferSize),
		id:   uuid.NewString(),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump(handler)
}

func (h *Hub) registerClient(client *Client) {
	h.clients[client.id] = client
	h.connected.Add(1)
	zap.L().Info("client connected",
		zap.String("conn", client.id), zap.Int("clients", len(h.clients)))
}

func (h *Hub) unregisterClient(client *Client) {
	if current, ok := h.clients[client.id]; ok && current == client {
		delete(h.clients, client.id)
		close(client.send)
		h.connected.Add(-1)
		zap.L().Info("client disconnected",
			zap.String("conn", client.id), zap.Int("clients", len(h.clients)))
	}
}

// deliver encodes a notification onto its client's queue. A client that
// cannot keep up is dropped.
func (h *Hub) deliver(env envelope) {
	client, ok := h.clients[env.connID]
	if !ok {
		zap.L().Debug("no client for message",
			zap.String("conn", env.connID), zap.String("event", env.msg.Event))
		return
	}

	data, err := json.Marshal(env.msg)
	if err != nil {
		zap.L().Error("failed to marshal message",
			zap.String("event", env.msg.Event), zap.Error(err))
		return
	}

	select {
	case client.send <- data:
	default:
		zap.L().Warn("client too slow, closing", zap.String("conn", client.id))
		h.unregisterClient(client)
	}
}

// readPump decodes frames from the connection and hands them to handler.
// Invalid frames and rejected events are discarded without a reply.
func (c *Client) readPump(handler Handler) {
	ctx := context.Background()
	defer func() {
		if err := handler.Disconnect(ctx, c.id); err != nil {
			zap.L().Debug("disconnect", zap.String("conn", c.id), zap.Error(err))
		}
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Info("websocket read error", zap.String("conn", c.id), zap.Error(err))
			}
			return
		}

		in, err := protocol.Decode(data)
		if err != nil {
			zap.L().Debug("discarded frame", zap.String("conn", c.id), zap.Error(err))
			continue
		}
		if err := handler.Dispatch(ctx, c.id, in); err != nil {
			zap.L().Debug("rejected event", zap.String("conn", c.id),
				zap.String("event", in.EventName()), zap.Error(err))
		}
	}
}

// writePump writes queued frames to the connection, one message per frame
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
