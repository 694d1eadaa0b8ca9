package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/astrelay/astrelay/internal/observability"
	"github.com/astrelay/astrelay/internal/universal"
)

// tapEvent is one dispatched exchange streamed to debug tap clients.
type tapEvent struct {
	Platform universal.Platform `json:"platform"`
	Text     string             `json:"text"`
	Reply    string             `json:"reply"`
	At       time.Time          `json:"at"`
}

// tapClient owns one websocket connection. All frames go through the send
// channel into a single writer goroutine, which keeps writes serialized as
// the websocket library requires.
type tapClient struct {
	conn *websocket.Conn
	send chan tapEvent
	done chan struct{}
	stop sync.Once
}

func newTapClient(conn *websocket.Conn) *tapClient {
	return &tapClient{
		conn: conn,
		send: make(chan tapEvent, 64),
		done: make(chan struct{}),
	}
}

func (c *tapClient) close() {
	c.stop.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// tapHub fans dispatched traffic out to connected websocket clients. Slow
// clients are dropped rather than allowed to stall webhook handling.
type tapHub struct {
	mu      sync.Mutex
	clients map[*tapClient]struct{}
	metrics *observability.Metrics
}

func newTapHub(metrics *observability.Metrics) *tapHub {
	return &tapHub{
		clients: make(map[*tapClient]struct{}),
		metrics: metrics,
	}
}

func (h *tapHub) add(c *tapClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.TapClients.Set(float64(n))
	go h.writeLoop(c)
}

func (h *tapHub) remove(c *tapClient) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.TapClients.Set(float64(n))
	c.close()
}

// writeLoop is the connection's only writer.
func (h *tapHub) writeLoop(c *tapClient) {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
			if err := c.conn.WriteJSON(ev); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// Broadcast enqueues an event for every connected client without blocking.
// A client whose send buffer is full is evicted.
func (h *tapHub) Broadcast(ev tapEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	h.mu.Lock()
	clients := make([]*tapClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		select {
		case c.send <- ev:
		default:
			h.remove(c)
		}
	}
}

func (h *tapHub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := newTapClient(conn)
	s.tap.add(client)
	defer s.tap.remove(client)

	// The tap is outbound-only; the read loop just detects disconnects.
	conn.SetReadLimit(4096)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
