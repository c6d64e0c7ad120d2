package daemon

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/emotion-constellation/constellation-core/internal/annotate"
	"github.com/emotion-constellation/constellation-core/internal/events"
	"github.com/emotion-constellation/constellation-core/internal/frame"
	"github.com/emotion-constellation/constellation-core/internal/metrics"
	"github.com/emotion-constellation/constellation-core/pkg/config"
	"github.com/emotion-constellation/constellation-core/pkg/logger"
)

// Forwarded lists the bus events relayed to websocket clients
var Forwarded = []events.Name{
	events.SelectionChanged,
	events.EntryHintShown,
	events.EntryHintDismissed,
	events.LocaleChanged,
	events.LayoutResized,
}

const pingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Dispatcher executes a client command
type Dispatcher func(c Command) error

type client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	once    sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub fans frames, overlays and bus events out to websocket clients and
// feeds their commands to a Dispatcher. As a frame.Renderer it runs on the
// frame goroutine and never blocks: a client whose queue is full misses the
// message.
type Hub struct {
	cfg      config.Server
	dispatch Dispatcher
	metrics  *metrics.Collector
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[string]*client
}

var (
	_ frame.Renderer = (*Hub)(nil)
	_ http.Handler   = (*Hub)(nil)
)

// NewHub creates a hub with no clients
func NewHub(cfg config.Server, dispatch Dispatcher) *Hub {
	return &Hub{
		cfg:      cfg,
		dispatch: dispatch,
		logger:   logger.Component("ws"),
		clients:  make(map[string]*client),
	}
}

// SetLogger sets the hub's logger
func (h *Hub) SetLogger(l *slog.Logger) {
	h.logger = l
}

// SetMetrics attaches a metrics collector for the client gauge
func (h *Hub) SetMetrics(m *metrics.Collector) {
	h.metrics = m
}

// Name implements frame.Renderer
func (h *Hub) Name() string { return "websocket" }

// Render implements frame.Renderer
func (h *Hub) Render(f *frame.Frame) error {
	if h.ClientCount() == 0 {
		return nil
	}
	return h.broadcast(Message{Type: MsgFrame, Data: f})
}

// Annotations is an annotate.Sink
func (h *Hub) Annotations(a *annotate.Annotations) {
	if h.ClientCount() == 0 {
		return
	}
	if err := h.broadcast(Message{Type: MsgAnnotations, Data: a}); err != nil {
		h.logger.Warn("failed to broadcast annotations", "error", err)
	}
}

// Attach relays the Forwarded events of bus to every client
func (h *Hub) Attach(bus *events.Bus) string {
	return bus.Subscribe(func(e events.Event) {
		if err := h.broadcast(Message{Type: MsgEvent, Name: string(e.Name), Data: e.Payload}); err != nil {
			h.logger.Warn("failed to broadcast event", "event", e.Name, "error", err)
		}
	}, Forwarded...)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Debug("client queue full, dropping message", "client_id", c.id, "type", m.Type)
		}
	}
	return nil
}

// ServeHTTP upgrades the request and serves one client until it leaves
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade the websocket", "error", err)
		return
	}

	size := h.cfg.ClientQueueSize
	if size <= 0 {
		size = 1
	}
	c := &client{
		id:      uuid.New().String(),
		conn:    conn,
		send:    make(chan []byte, size),
		limiter: rate.NewLimiter(rate.Limit(h.cfg.ClientRate), max(h.cfg.ClientBurst, 1)),
	}

	hello, _ := json.Marshal(Message{Type: MsgHello, Data: map[string]string{"clientId": c.id}})
	c.send <- hello

	h.register(c)
	go h.writePump(c)
	h.readPump(c)
	h.unregister(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.SetClients(n)
	h.logger.Info("websocket client connected", "client_id", c.id, "clients", n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	n := len(h.clients)
	h.mu.Unlock()
	c.close()
	h.metrics.SetClients(n)
	h.logger.Info("websocket client disconnected", "client_id", c.id, "clients", n)
}

func (h *Hub) readPump(c *client) {
	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				h.logger.Debug("websocket read ended", "client_id", c.id, "error", err)
			}
			return
		}

		if !c.limiter.Allow() {
			h.reply(c, ErrRateLimited, cmd)
			continue
		}
		if err := h.dispatch(cmd); err != nil {
			h.reply(c, err, cmd)
		}
	}
}

func (h *Hub) reply(c *client, err error, cmd Command) {
	h.logger.Debug("command rejected", "client_id", c.id, "type", cmd.Type, "error", err)
	data, mErr := json.Marshal(Message{Type: MsgError, Data: map[string]string{
		"command": cmd.Type,
		"error":   err.Error(),
	}})
	if mErr != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	timeout := h.cfg.WriteTimeout.Duration
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(timeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("websocket write failed", "client_id", c.id, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(timeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		c.conn.Close()
	}
}
