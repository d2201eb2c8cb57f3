package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/openuptime/uptimer/internal/models"
	"github.com/openuptime/uptimer/internal/statemachine"
)

// Message is the envelope sent to every connected client. Type is one
// of "transition" or "heartbeat"; Payload carries the corresponding
// struct below.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// TransitionPayload mirrors a statemachine.TransitionEvent for wire
// purposes so the websocket package doesn't leak internal event
// construction details to clients.
type TransitionPayload struct {
	EventType models.EventType `json:"event_type"`
	MonitorID int64            `json:"monitor_id"`
	OutageID  int64            `json:"outage_id,omitempty"`
	At        time.Time        `json:"at"`
	Error     string           `json:"error,omitempty"`
	LatencyMS int              `json:"latency_ms,omitempty"`
}

// HeartbeatPayload carries one probe's outcome for live dashboards
// that want every check, not just status transitions.
type HeartbeatPayload struct {
	MonitorID int64             `json:"monitor_id"`
	Status    models.CheckStatus `json:"status"`
	LatencyMS *int              `json:"latency_ms,omitempty"`
	CheckedAt time.Time         `json:"checked_at"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains connected dashboard clients and fans out transition
// and heartbeat broadcasts. It carries no authentication: the feed it
// serves is the same transition/heartbeat data already exposed,
// per-monitor, by the public status endpoints, just pushed instead of
// polled.
type Hub struct {
	clients        map[*client]bool
	broadcast      chan []byte
	register       chan *client
	unregister     chan *client
	mu             sync.RWMutex
	allowedOrigins []string
}

func NewHub(allowedOrigins []string) *Hub {
	return &Hub{
		clients:        make(map[*client]bool),
		broadcast:      make(chan []byte, 256),
		register:       make(chan *client),
		unregister:     make(chan *client),
		allowedOrigins: allowedOrigins,
	}
}

// Run drives the hub's event loop. Callers start it in its own
// goroutine before serving HandleWebSocket.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// client is behind; drop it rather than block the hub
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) publish(msgType string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("websocket: marshal %s payload: %v", msgType, err)
		return
	}
	msg, err := json.Marshal(Message{Type: msgType, Payload: body})
	if err != nil {
		log.Printf("websocket: marshal envelope: %v", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("websocket: broadcast channel full, dropping %s", msgType)
	}
}

// BroadcastTransition satisfies scheduler.Broadcaster.
func (h *Hub) BroadcastTransition(event statemachine.TransitionEvent) {
	h.publish("transition", TransitionPayload{
		EventType: event.Type,
		MonitorID: event.MonitorID,
		OutageID:  event.OutageID,
		At:        event.At,
		Error:     event.Error,
		LatencyMS: event.LatencyMS,
	})
}

// BroadcastHeartbeat satisfies scheduler.Broadcaster.
func (h *Hub) BroadcastHeartbeat(monitorID int64, result models.CheckResult) {
	h.publish("heartbeat", HeartbeatPayload{
		MonitorID: monitorID,
		Status:    result.Status,
		LatencyMS: result.LatencyMS,
		CheckedAt: result.CheckedAt,
	})
}

// HandleWebSocket upgrades the connection and registers the client.
// There is no subscription protocol: every client receives the full
// transition/heartbeat feed, matching the public snapshot's
// all-monitors scope.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	origins := h.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: origins})
	if err != nil {
		log.Printf("websocket: upgrade failed: %v", err)
		return
	}

	c := &client{id: r.RemoteAddr, conn: conn, send: make(chan []byte, 64)}
	h.register <- c

	go c.writePump()
	c.readPump(h)
}

// readPump only exists to detect client disconnects; the feed is
// one-directional from server to client.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	ctx := context.Background()
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ctx := context.Background()
	for message := range c.send {
		if err := c.conn.Write(ctx, websocket.MessageText, message); err != nil {
			return
		}
	}
}
