package orch

import (
	"fmt"

	"github.com/dkeye/voicelink/internal/core"
	"github.com/dkeye/voicelink/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) handleSignal(sid core.SessionID, msg *protocol.Message) error {
	to, err := msg.String("to")
	if err != nil {
		return err
	}
	if to == "" {
		return fmt.Errorf("%w: empty signal target", protocol.ErrProtocol)
	}
	data, err := msg.Payload("data")
	if err != nil {
		return err
	}
	if !o.relay.Relay(sid, core.SessionID(to), data) {
		log.Debug().Str("module", "app.orch").Str("from", string(sid)).Str("to", to).Msg("signal not delivered")
	}
	return nil
}
