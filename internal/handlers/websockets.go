package handlers

import (
	"net/http"
	"strings"
	"time"

	"pondwatch"
	"pondwatch/internal/metrics"
	"pondwatch/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB

	// chartWindow is how many recent samples each connection keeps for the
	// sensor topic. Matches the dashboard's rolling chart.
	chartWindow = 20
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload,omitempty"`
	Window  interface{} `json:"window,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Upgrader for HTTP -> WebSocket.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origins for production
}

// parseTopics reads ?topics=notifications,sensor with a default of every
// topic when absent. Unknown names are ignored.
func parseTopics(c *gin.Context) []realtime.Topic {
	all := []realtime.Topic{
		realtime.TopicNotifications,
		realtime.TopicSensor,
		realtime.TopicControl,
		realtime.TopicDesktop,
	}
	qs := c.Query("topics")
	if qs == "" {
		return all
	}
	known := make(map[realtime.Topic]bool, len(all))
	for _, t := range all {
		known[t] = true
	}
	var out []realtime.Topic
	for _, name := range strings.Split(qs, ",") {
		t := realtime.Topic(strings.TrimSpace(name))
		if known[t] {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return all
	}
	return out
}

func (h *Handler) wsConnect(c *gin.Context) {
	topics := parseTopics(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	metrics.LiveSubscribers.Inc()
	defer metrics.LiveSubscribers.Dec()

	// Configure read limits and pong handler to extend the read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	events, cancel := h.hub.Subscribe(topics...)
	defer cancel()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	// Each connection keeps its own rolling sample window; a surface that
	// mounts late starts from the current snapshot, not an empty chart.
	var window []pondwatch.SensorReading

	if err := h.sendInitialSnapshots(c, conn, topics, &window); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := h.sendEvent(conn, ev, &window); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// sendInitialSnapshots pushes the current projection of each subscribed
// topic so the surface renders without waiting for the first change.
func (h *Handler) sendInitialSnapshots(c *gin.Context, conn *websocket.Conn, topics []realtime.Topic, window *[]pondwatch.SensorReading) error {
	ctx := c.Request.Context()
	for _, t := range topics {
		switch t {
		case realtime.TopicNotifications:
			view, err := h.services.Notifications.List(ctx)
			if err != nil {
				return err
			}
			if err := h.writeEnvelope(conn, wsEnvelope{Topic: string(t), Payload: view}); err != nil {
				return err
			}
		case realtime.TopicSensor:
			snap, err := h.services.Monitoring.Latest(ctx)
			if err != nil {
				return err
			}
			if !snap.Reading.ObservedAt.IsZero() {
				*window = appendWindow(*window, snap.Reading)
			}
			if err := h.writeEnvelope(conn, wsEnvelope{Topic: string(t), Payload: snap, Window: *window}); err != nil {
				return err
			}
		case realtime.TopicControl:
			state, err := h.services.Control.Get(ctx)
			if err != nil {
				return err
			}
			if err := h.writeEnvelope(conn, wsEnvelope{Topic: string(t), Payload: state}); err != nil {
				return err
			}
		}
	}
	return nil
}

// sendEvent forwards one hub event, folding sensor samples into the
// connection's rolling window.
func (h *Handler) sendEvent(conn *websocket.Conn, ev realtime.Event, window *[]pondwatch.SensorReading) error {
	env := wsEnvelope{Topic: string(ev.Topic), Payload: ev.Payload}
	if ev.Topic == realtime.TopicSensor {
		if reading, ok := ev.Payload.(pondwatch.SensorReading); ok {
			*window = appendWindow(*window, reading)
		}
		env.Window = *window
	}
	return h.writeEnvelope(conn, env)
}

func (h *Handler) writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}

func appendWindow(window []pondwatch.SensorReading, r pondwatch.SensorReading) []pondwatch.SensorReading {
	window = append(window, r)
	if len(window) > chartWindow {
		window = window[len(window)-chartWindow:]
	}
	return window
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}
