package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"sushigo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"nhooyr.io/websocket"
)

const (
	sendBuffer   = 64
	pingInterval = 15 * time.Second
	writeTimeout = 10 * time.Second
)

// client is one participant's live connection.
type client struct {
	code          string
	participantID string
	conn          *websocket.Conn
	send          chan []byte
}

// Hub tracks live connections per session and delivers messages to them.
type Hub struct {
	logger runtime.Logger

	mu       sync.RWMutex
	sessions map[string]map[string]*client
}

var _ ports.Delivery = (*Hub)(nil)

func NewHub(logger runtime.Logger) *Hub {
	return &Hub{
		logger:   logger,
		sessions: make(map[string]map[string]*client),
	}
}

// register attaches a connection to a seat, replacing any previous one.
func (h *Hub) register(code, participantID string, conn *websocket.Conn) *client {
	c := &client{code: code, participantID: participantID, conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	seats, ok := h.sessions[code]
	if !ok {
		seats = make(map[string]*client)
		h.sessions[code] = seats
	}
	if old, ok := seats[participantID]; ok {
		h.logger.Info("Hub: replacing connection of %s in session %s", participantID, code)
		close(old.send)
	}
	seats[participantID] = c
	return c
}

// unregister detaches c. It reports whether c was still the seat's current
// connection, i.e. whether the participant is now offline.
func (h *Hub) unregister(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	seats := h.sessions[c.code]
	if seats[c.participantID] != c {
		return false
	}
	delete(seats, c.participantID)
	close(c.send)
	if len(seats) == 0 {
		delete(h.sessions, c.code)
	}
	return true
}

// Connected reports how many participants of a session are online.
func (h *Hub) Connected(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[code])
}

func (h *Hub) SendTo(ctx context.Context, sessionCode, participantID string, msg ports.Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.sessions[sessionCode][participantID]; ok {
		h.enqueue(c, b)
	}
	return nil
}

func (h *Hub) Broadcast(ctx context.Context, sessionCode string, msg ports.Message, excludeID string) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.sessions[sessionCode] {
		if id != excludeID {
			h.enqueue(c, b)
		}
	}
	return nil
}

// enqueue never blocks the session outbox; a client that cannot keep up
// loses the message. Callers hold h.mu.
func (h *Hub) enqueue(c *client, b []byte) {
	select {
	case c.send <- b:
	default:
		h.logger.Warn("Hub: send buffer full for %s in session %s, dropping message", c.participantID, c.code)
	}
}

// writePump drains c.send to the socket and keeps the connection alive.
// It returns when the channel is closed or ctx ends.
func (c *client) writePump(ctx context.Context) {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
