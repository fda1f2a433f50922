package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/table-ordering/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Hub keeps the connected websocket clients and fans messages out to them.
// Delivery is best effort: a client that cannot keep up is disconnected and
// catches up through the REST endpoints after reconnecting.
type Hub struct {
	log      logrus.FieldLogger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
}

// NewHub builds a hub. An empty origin list, or one containing "*", accepts any
// origin.
func NewHub(log logrus.FieldLogger, allowedOrigins []string) *Hub {
	h := &Hub{
		log:     log.WithField("component", "realtime"),
		clients: make(map[*Client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(set) == 0 {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeWS upgrades the request and registers the connection under role.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, role domain.Role, userID uint) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		role:   role,
		userID: userID,
	}
	if !h.register(client) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		return conn.Close()
	}

	go client.writePump()
	go client.readPump()
	return nil
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.log.WithFields(logrus.Fields{"role": c.role, "clients": len(h.clients)}).Debug("client connected")
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// dropLocked removes c and closes its queue. Callers hold h.mu.
func (h *Hub) dropLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Send delivers msg to every client whose role is in roles, or to everyone when
// roles is empty.
func (h *Hub) Send(_ context.Context, msg Message, roles []domain.Role) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if !roleAllowed(c.role, roles) {
			continue
		}
		select {
		case c.send <- payload:
		default:
			h.log.WithField("role", c.role).Warn("client send buffer full, disconnecting")
			h.dropLocked(c)
		}
	}
	return nil
}

func (h *Hub) Name() string {
	return "websocket"
}

// Stats counts connected clients per role.
func (h *Hub) Stats() map[domain.Role]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[domain.Role]int)
	for c := range h.clients {
		out[c.role]++
	}
	return out
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
	return nil
}

func roleAllowed(role domain.Role, roles []domain.Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
