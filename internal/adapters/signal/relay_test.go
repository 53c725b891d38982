package signal_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/dkeye/voicelink/internal/adapters/signal"
	"github.com/dkeye/voicelink/internal/app"
	"github.com/dkeye/voicelink/internal/app/orch"
	"github.com/dkeye/voicelink/internal/config"
)

type envelope struct {
	Type     string `json:"type"`
	SocketID string `json:"socketId"`
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return ws
}

func write(t *testing.T, ws *websocket.Conn, msg string) {
	t.Helper()
	if err := ws.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// nextOf reads frames until one of the given type arrives.
func nextOf(t *testing.T, ws *websocket.Conn, typ string) envelope {
	t.Helper()
	for {
		var ev envelope
		if err := json.Unmarshal([]byte(readText(t, ws)), &ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ev.Type == typ {
			return ev
		}
	}
}

func TestDefaultConfigRelaysEverySignal(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts := signal.NewOptions(cfg)
	if opts.ReadDeadline != cfg.PingPeriod*10/9 {
		t.Errorf("ReadDeadline=%s, want %s", opts.ReadDeadline, cfg.PingPeriod*10/9)
	}

	o := orch.New(app.NewStore(), nil, nil, true)
	ctx, cancel := context.WithCancel(context.Background())
	ctl := signal.NewSignalWSController(o, opts)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ctl.HandleSignal(ctx, c) })
	srv := httptest.NewServer(r)
	defer func() {
		cancel()
		ctl.Wait()
		srv.Close()
	}()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	a := dial(t, url)
	defer a.Close()
	b := dial(t, url)
	defer b.Close()

	write(t, a, `{"type":"join","code":"ABCD","playerId":1,"clientId":10}`)
	nextOf(t, a, "setClients")
	write(t, b, `{"type":"join","code":"ABCD","playerId":2,"clientId":20}`)
	to := nextOf(t, a, "join").SocketID
	if to == "" {
		t.Fatalf("join broadcast carries no socketId")
	}

	const sent = 120
	for i := range sent {
		write(t, a, fmt.Sprintf(`{"type":"signal","to":%q,"data":{"candidate":"c%d"}}`, to, i))
	}

	deadline := time.Now().Add(5 * time.Second)
	got := 0
	for got < sent && time.Now().Before(deadline) {
		nextOf(t, b, "signal")
		got++
	}
	if got != sent {
		t.Fatalf("delivered=%d, want %d", got, sent)
	}
}
