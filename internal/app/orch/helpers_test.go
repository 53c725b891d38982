package orch_test

import (
	"sync"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/dkeye/voicelink/internal/app"
	"github.com/dkeye/voicelink/internal/app/orch"
	"github.com/dkeye/voicelink/internal/core"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnClosed
	}
	if c.full {
		return core.ErrBackpressure
	}
	c.frames = append(c.frames, append(core.Frame(nil), f...))
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) setFull(full bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.full = full
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

// events returns every received frame of the given type, decoded.
func (c *fakeConn) events(t *testing.T, typ string) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []map[string]any
	for _, f := range c.frames {
		var m map[string]any
		if err := json.Unmarshal(f, &m); err != nil {
			t.Fatalf("decode frame %s: %v", f, err)
		}
		if m["type"] == typ {
			out = append(out, m)
		}
	}
	return out
}

func (c *fakeConn) raw(typ string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, f := range c.frames {
		var m struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(f, &m) == nil && m.Type == typ {
			out = append(out, string(f))
		}
	}
	return out
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

type harness struct {
	o     *orch.Orchestrator
	store *app.Store
	conns map[core.SessionID]*fakeConn
}

func newHarness(t *testing.T, policy app.Policy, opts ...app.StoreOption) *harness {
	t.Helper()
	store := app.NewStore(opts...)
	return &harness{
		o:     orch.New(store, policy, nil, true),
		store: store,
		conns: make(map[core.SessionID]*fakeConn),
	}
}

func (h *harness) connect(sid core.SessionID) *fakeConn {
	c := &fakeConn{}
	h.conns[sid] = c
	h.o.OnConnect(sid, c)
	return c
}

func (h *harness) send(sid core.SessionID, frame string) {
	h.o.HandleEvent(sid, []byte(frame))
}

func num(v any) int {
	f, _ := v.(float64)
	return int(f)
}
