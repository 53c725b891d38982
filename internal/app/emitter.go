package app

import (
	"errors"

	"github.com/dkeye/voicelink/internal/core"
	"github.com/dkeye/voicelink/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Emitter encodes outbound events and hands them to connection queues.
// Must be used with the Store lock held.
type Emitter struct {
	Store  *Store
	Policy Policy
}

// Send delivers v to sid and reports whether it was queued. A missing
// connection is a silent drop.
func (e *Emitter) Send(sid core.SessionID, v any) bool {
	conn, ok := e.Store.Registry.Conn(sid)
	if !ok {
		return false
	}
	frame, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.emitter").Msg("encode event")
		return false
	}
	return e.deliver(sid, conn, frame)
}

// Broadcast delivers v to every sid except skip and returns the number queued.
func (e *Emitter) Broadcast(sids []core.SessionID, skip core.SessionID, v any) int {
	frame, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.emitter").Msg("encode event")
		return 0
	}
	sent, dropped := 0, 0
	for _, sid := range sids {
		if sid == skip {
			continue
		}
		conn, ok := e.Store.Registry.Conn(sid)
		if !ok {
			continue
		}
		if e.deliver(sid, conn, frame) {
			sent++
		} else {
			dropped++
		}
	}
	log.Debug().Str("module", "app.emitter").Str("from", string(skip)).Int("sent_to", sent).Int("dropped", dropped).Msg("broadcast result")
	return sent
}

func (e *Emitter) deliver(sid core.SessionID, conn core.SignalConnection, frame core.Frame) bool {
	err := conn.TrySend(frame)
	if err == nil {
		return true
	}
	if !errors.Is(err, core.ErrBackpressure) || e.Policy == nil {
		return false
	}
	switch e.Policy.OnBackPressure(sid) {
	case KickMember:
		log.Warn().Str("module", "app.emitter").Str("sid", string(sid)).Msg("send queue full, kicking member")
		conn.Close()
	case DropFrame:
		log.Warn().Str("module", "app.emitter").Str("sid", string(sid)).Msg("send queue full, frame dropped")
	}
	return false
}
