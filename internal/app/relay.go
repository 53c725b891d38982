package app

import (
	json "github.com/goccy/go-json"

	"github.com/dkeye/voicelink/internal/core"
	"github.com/dkeye/voicelink/internal/protocol"
)

type Sender interface {
	Send(sid core.SessionID, v any) bool
}

// SignalRelay forwards opaque negotiation payloads point to point.
// Nothing is buffered: a payload for a gone connection is dropped.
type SignalRelay struct {
	Sender Sender
}

func (r *SignalRelay) Relay(from, to core.SessionID, payload json.RawMessage) bool {
	return r.Sender.Send(to, protocol.NewSignal(from, payload))
}
