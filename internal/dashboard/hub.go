package dashboard

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"CoinSentinel/internal/metrics"

	"github.com/gorilla/websocket"
)

// Message types sent to websocket clients.
const (
	TypeSnapshot   = "snapshot"
	TypeBackground = "background"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Envelope wraps every websocket message.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
	TS   time.Time       `json:"ts"`
}

// Hub fans messages out to connected dashboard clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
	latest  []byte // last snapshot envelope, replayed to new clients

	metrics *metrics.Metrics
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// NewHub creates a Hub. m may be nil.
func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{clients: make(map[*client]bool), metrics: m}
}

// Broadcast encodes data under msgType and sends it to every client.
// Slow clients whose buffer is full miss the message.
func (h *Hub) Broadcast(msgType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	env, err := json.Marshal(Envelope{Type: msgType, Data: payload, TS: time.Now().UTC()})
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if msgType == TypeSnapshot {
		h.latest = env
	}
	for c := range h.clients {
		select {
		case c.send <- env:
		default:
			log.Println("[WARN] dashboard client too slow, message dropped")
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and registers the client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WARN] ws upgrade error: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 64), hub: h}

	h.mu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	if h.latest != nil {
		c.send <- h.latest
	}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.WSClients.Set(float64(count))
	}
	log.Printf("[INFO] ws client connected (%d total)", count)

	go c.writePump()
	go c.readPump()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.WSClients.Set(float64(count))
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only drains control frames; clients do not send commands.
func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
		log.Println("[INFO] ws client disconnected")
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
