package signal_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/goleak"

	"github.com/dkeye/voicelink/internal/adapters/signal"
	"github.com/dkeye/voicelink/internal/core"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

// echoOrch sends every accepted event straight back to its sender.
type echoOrch struct {
	mu           sync.Mutex
	conns        map[core.SessionID]core.SignalConnection
	events       int
	disconnected chan core.SessionID
}

func newEchoOrch() *echoOrch {
	return &echoOrch{
		conns:        make(map[core.SessionID]core.SignalConnection),
		disconnected: make(chan core.SessionID, 8),
	}
}

func (o *echoOrch) OnConnect(sid core.SessionID, conn core.SignalConnection) {
	o.mu.Lock()
	o.conns[sid] = conn
	o.mu.Unlock()
	_ = conn.TrySend(core.Frame(`{"type":"hello"}`))
}

func (o *echoOrch) OnDisconnect(sid core.SessionID) {
	o.mu.Lock()
	delete(o.conns, sid)
	o.mu.Unlock()
	o.disconnected <- sid
}

func (o *echoOrch) HandleEvent(sid core.SessionID, data []byte) {
	o.mu.Lock()
	conn := o.conns[sid]
	o.events++
	o.mu.Unlock()
	_ = conn.TrySend(core.Frame(data))
}

func (o *echoOrch) eventCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events
}

func serve(t *testing.T, o signal.Orchestrator, opts signal.Options) (*websocket.Conn, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	ctl := signal.NewSignalWSController(o, opts)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ctl.HandleSignal(ctx, c) })
	srv := httptest.NewServer(r)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return ws, func() {
		_ = ws.Close()
		cancel()
		ctl.Wait()
		srv.Close()
	}
}

func readText(t *testing.T, ws *websocket.Conn) string {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func waitDisconnect(t *testing.T, o *echoOrch) {
	t.Helper()
	select {
	case <-o.disconnected:
	case <-time.After(2 * time.Second):
		t.Fatalf("connection was not reported as disconnected")
	}
}

func TestRoundTrip(t *testing.T) {
	o := newEchoOrch()
	ws, shutdown := serve(t, o, signal.Options{ReadLimit: 1024})
	defer shutdown()

	if got := readText(t, ws); got != `{"type":"hello"}` {
		t.Fatalf("first frame=%s, want hello", got)
	}
	if err := ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := readText(t, ws); got != `{"type":"ping"}` {
		t.Fatalf("echo=%s, want ping", got)
	}

	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	waitDisconnect(t, o)
}

func TestReadLimitDisconnects(t *testing.T) {
	o := newEchoOrch()
	ws, shutdown := serve(t, o, signal.Options{ReadLimit: 64})
	defer shutdown()

	readText(t, ws)
	_ = ws.WriteMessage(websocket.TextMessage, []byte(strings.Repeat("x", 1024)))
	waitDisconnect(t, o)
	if n := o.eventCount(); n != 0 {
		t.Errorf("events=%d, want 0", n)
	}
}

func TestRateLimitDisconnects(t *testing.T) {
	o := newEchoOrch()
	ws, shutdown := serve(t, o, signal.Options{RateLimit: 2, RateInterval: time.Minute})
	defer shutdown()

	readText(t, ws)
	for range 3 {
		if err := ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"VAD","activity":true}`)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	waitDisconnect(t, o)

	if n := o.eventCount(); n != 2 {
		t.Errorf("events=%d, want 2", n)
	}
}

func TestSilentPeerTimesOut(t *testing.T) {
	o := newEchoOrch()
	_, shutdown := serve(t, o, signal.Options{PingPeriod: 50 * time.Millisecond})
	defer shutdown()

	// The client never reads, so pings go unanswered.
	waitDisconnect(t, o)
}

func TestShutdownClosesConnections(t *testing.T) {
	o := newEchoOrch()
	ws, shutdown := serve(t, o, signal.Options{})

	readText(t, ws)
	shutdown()
	waitDisconnect(t, o)
}

func TestSendAfterClose(t *testing.T) {
	o := newEchoOrch()
	ws, shutdown := serve(t, o, signal.Options{})
	defer shutdown()
	readText(t, ws)

	o.mu.Lock()
	var conn core.SignalConnection
	for _, c := range o.conns {
		conn = c
	}
	o.mu.Unlock()

	conn.Close()
	conn.Close()
	if err := conn.TrySend(core.Frame(`{}`)); !errors.Is(err, core.ErrConnClosed) {
		t.Errorf("TrySend after Close=%v, want ErrConnClosed", err)
	}
	waitDisconnect(t, o)
}
