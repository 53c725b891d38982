// Package signal carries the session event channel over websockets.
package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicelink/internal/config"
	"github.com/dkeye/voicelink/internal/core"
)

// Orchestrator is the session logic a connection reports to.
type Orchestrator interface {
	OnConnect(sid core.SessionID, conn core.SignalConnection)
	OnDisconnect(sid core.SessionID)
	HandleEvent(sid core.SessionID, data []byte)
}

type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	// ReadDeadline is how long a connection may stay silent; defaults to PingPeriod*10/9.
	ReadDeadline time.Duration
	SendBuffer   int
	// RateLimit is the number of events accepted per RateInterval; 0 disables limiting.
	// A connection that goes over it is closed.
	RateLimit    int
	RateInterval time.Duration
}

// NewOptions maps the server config onto connection options.
func NewOptions(cfg *config.Config) Options {
	return Options{
		ReadLimit:    cfg.ReadLimit,
		PingPeriod:   cfg.PingPeriod,
		ReadDeadline: cfg.ReadDeadline(),
		SendBuffer:   cfg.SendBuffer,
		RateLimit:    cfg.RateLimit.Events,
		RateInterval: cfg.RateLimit.Interval,
	}
}

type SignalWSController struct {
	Orch    Orchestrator
	opts    Options
	limiter *RateLimiter
	wg      sync.WaitGroup
}

func NewSignalWSController(o Orchestrator, opts Options) *SignalWSController {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 32
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = 54 * time.Second
	}
	if opts.ReadDeadline <= 0 {
		opts.ReadDeadline = opts.PingPeriod * 10 / 9
	}
	return &SignalWSController{
		Orch:    o,
		opts:    opts,
		limiter: NewRateLimiter(opts.RateLimit, opts.RateInterval),
	}
}

// WsSignalConn is the outbound half of one websocket: a bounded queue drained by writePump.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection until either side
// closes it or ctx is cancelled.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	sid := core.SessionID(uuid.NewString())
	log.Info().Str("module", "signal").Str("sid", string(sid)).
		Str("client_token", c.GetString("client_token")).Str("remote", c.ClientIP()).Msg("new WS connection")

	if ctl.opts.ReadLimit > 0 {
		ws.SetReadLimit(ctl.opts.ReadLimit)
	}
	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.opts.SendBuffer),
	}

	ctl.Orch.OnConnect(sid, conn)

	ctx, cancel := context.WithCancel(ctx)
	ctl.wg.Add(2)
	go func() {
		defer ctl.wg.Done()
		ctl.writePump(ctx, sid, conn)
	}()
	go func() {
		defer ctl.wg.Done()
		defer cancel()
		ctl.readPump(ctx, sid, conn)
	}()
}

// Wait blocks until every connection goroutine has exited.
func (ctl *SignalWSController) Wait() {
	ctl.wg.Wait()
}
