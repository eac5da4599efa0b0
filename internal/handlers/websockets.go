package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"workshop_monitor/internal/logger"
	"workshop_monitor/internal/service"
	"workshop_monitor/internal/stream"
	"workshop_monitor/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB

	// Subscribers are checked for changes at this cadence. A dashboard is
	// written only when a stream dispatched or resolved since the last write.
	defaultCheckEvery = 500 * time.Millisecond
	minCheckEvery     = 10 * time.Millisecond
	maxCheckEvery     = 10 * time.Second
)

const wsTypeDashboard = "dashboard"

type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// The stream is read-only, so any origin may subscribe.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamRevision is the part of a stream panel that moves when the engine
// dispatches or applies a response for that stream.
type streamRevision struct {
	seq     uint64
	updated int64
	phase   stream.Phase
	pending bool
	err     string
}

type revision struct {
	status  streamRevision
	history streamRevision
	polling bool
}

func revisionOf(d view.Dashboard) revision {
	of := func(p view.StreamPanel) streamRevision {
		return streamRevision{
			seq:     p.RequestSeq,
			updated: p.UpdatedAt.UnixNano(),
			phase:   p.Phase,
			pending: p.Pending,
			err:     p.Error,
		}
	}
	return revision{
		status:  of(d.Status),
		history: of(d.History),
		polling: d.SystemStatus.Polling,
	}
}

// dashboardFeed serves one websocket subscriber.
type dashboardFeed struct {
	conn *websocket.Conn
	src  service.Dashboard
	log  *logger.Logger

	sent bool
	last revision
}

// push writes the current dashboard unless it was projected from the same
// engine state as the previous write. It reports whether a message went out.
func (f *dashboardFeed) push() (bool, error) {
	d := f.src.Dashboard()
	rev := revisionOf(d)
	if f.sent && rev == f.last {
		return false, nil
	}
	_ = f.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := f.conn.WriteJSON(wsEnvelope{Type: wsTypeDashboard, Data: d}); err != nil {
		return false, err
	}
	f.sent, f.last = true, rev
	return true, nil
}

func (f *dashboardFeed) ping() error {
	_ = f.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return f.conn.WriteMessage(websocket.PingMessage, nil)
}

func (f *dashboardFeed) run(ctx context.Context, checkEvery time.Duration, closed <-chan struct{}) {
	if _, err := f.push(); err != nil {
		f.log.Infow("ws_write_failed", "err", err, "initial", true)
		return
	}

	check := time.NewTicker(checkEvery)
	defer check.Stop()
	keepalive := time.NewTicker(pingPeriod)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case <-keepalive.C:
			if err := f.ping(); err != nil {
				f.log.Infow("ws_ping_failed", "err", err)
				return
			}
		case <-check.C:
			if _, err := f.push(); err != nil {
				f.log.Infow("ws_write_failed", "err", err)
				return
			}
		}
	}
}

// watchClose drains the connection so control frames are handled, and
// closes done when the peer goes away.
func watchClose(conn *websocket.Conn, log *logger.Logger, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Debugw("ws_read_closed", "err", err)
			return
		}
	}
}

func (h *Handler) wsConnect(c *gin.Context) {
	checkEvery := h.parseInterval(c)
	log := logger.OrNop(h.log)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	closed := make(chan struct{})
	go watchClose(conn, log, closed)

	feed := &dashboardFeed{conn: conn, src: h.services.Dashboard, log: log}
	feed.run(c.Request.Context(), checkEvery, closed)
}

// parseInterval reads the change-check cadence from ?interval=250ms or
// ?interval_ms=250. Values outside [10ms, 10s] fall back to the default.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	inRange := func(d time.Duration) bool { return d >= minCheckEvery && d <= maxCheckEvery }

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && inRange(d) {
			return d
		}
	}
	if s := c.Query("interval_ms"); s != "" {
		v, err := strconv.Atoi(s)
		if err == nil && v > 0 && v <= int(maxCheckEvery/time.Millisecond) && inRange(time.Duration(v)*time.Millisecond) {
			return time.Duration(v) * time.Millisecond
		}
	}
	return defaultCheckEvery
}
