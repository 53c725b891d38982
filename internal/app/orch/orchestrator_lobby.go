package orch

import (
	"sync"

	"github.com/dkeye/voicelink/internal/core"
	"github.com/dkeye/voicelink/internal/domain"
	"github.com/dkeye/voicelink/internal/protocol"
	"github.com/rs/zerolog/log"
)

const (
	reasonNotFound  = "Lobby not found :C"
	reasonNotPublic = "Lobby is not public anymore"
)

// completion is the one-shot reply handle of a join_lobby request.
type completion struct {
	once sync.Once
	send func(protocol.Ack)
}

// Complete sends a and reports whether this call was the one that replied.
func (c *completion) Complete(a protocol.Ack) bool {
	replied := false
	c.once.Do(func() {
		c.send(a)
		replied = true
	})
	return replied
}

func (o *Orchestrator) newCompletion(sid core.SessionID) *completion {
	return &completion{send: func(a protocol.Ack) { o.emit.Send(sid, a) }}
}

func (o *Orchestrator) handleJoinLobby(sid core.SessionID, msg *protocol.Message) error {
	id, err := msg.Int("publicLobbyId")
	if err != nil {
		return err
	}
	ack, err := msg.Int("ack")
	if err != nil {
		return err
	}
	reply := o.newCompletion(sid)

	code, entry, ok := o.Store.Public.Lookup(id)
	switch {
	case !o.LobbiesEnabled || !ok:
		reply.Complete(protocol.NewAckFailed(ack, reasonNotFound))
	case !entry.Joinable():
		reply.Complete(protocol.NewAckFailed(ack, reasonNotPublic))
	default:
		reply.Complete(protocol.NewAckOK(ack, code, entry))
	}
	log.Debug().Str("module", "app.orch").Str("sid", string(sid)).Int("public_lobby_id", id).Bool("found", ok).Msg("join_lobby")
	return nil
}

func (o *Orchestrator) handleLobby(sid core.SessionID, msg *protocol.Message) error {
	raw, err := msg.String("code")
	if err != nil {
		return err
	}
	var sub domain.PublicLobbySubmission
	if err := msg.Object("lobby", &sub); err != nil {
		return err
	}
	if !o.LobbiesEnabled {
		return nil
	}
	code, ok := o.authorize(sid, raw, "lobby")
	if !ok {
		return nil
	}
	if !sub.Public() {
		o.unpublish(code)
		return nil
	}
	o.publish(code, &sub)
	return nil
}

func (o *Orchestrator) handleRemoveLobby(sid core.SessionID, msg *protocol.Message) error {
	raw, err := msg.String("code")
	if err != nil {
		return err
	}
	if !o.LobbiesEnabled {
		return nil
	}
	if code, ok := o.authorize(sid, raw, "remove_lobby"); ok {
		o.unpublish(code)
	}
	return nil
}

func (o *Orchestrator) handleLobbyBrowser(sid core.SessionID, msg *protocol.Message) error {
	open, err := msg.Bool("open")
	if err != nil {
		return err
	}
	if !open {
		o.Store.Members.Unsubscribe(sid)
		return nil
	}
	o.Store.Members.Subscribe(sid)
	o.emit.Send(sid, protocol.NewNewLobbies(o.Store.Public.List()))
	return nil
}

// authorize checks that sid is currently in the room it names.
func (o *Orchestrator) authorize(sid core.SessionID, raw, event string) (domain.LobbyCode, bool) {
	cur, ok := o.Store.Registry.RoomOf(sid)
	if !ok || cur != domain.LobbyCode(raw) {
		log.Error().Str("module", "app.orch").Str("sid", string(sid)).Str("event", event).
			Str("code", raw).Str("room", string(cur)).Msg("lobby request for a room the client is not in")
		return "", false
	}
	return cur, true
}

func (o *Orchestrator) publish(code domain.LobbyCode, sub *domain.PublicLobbySubmission) {
	st := o.Store
	entry := st.Public.Publish(code, sub, st.Now())
	if l, ok := st.Lobbies.Get(code); ok {
		l.PublicLobbyID = entry.ID
	}
	o.emit.Broadcast(st.Members.Subscribers(), "", protocol.NewUpdateLobby(entry))
}

func (o *Orchestrator) unpublish(code domain.LobbyCode) {
	st := o.Store
	id, ok := st.Public.Unpublish(code)
	if !ok {
		return
	}
	if l, ok := st.Lobbies.Get(code); ok {
		l.PublicLobbyID = domain.NoPublicLobby
	}
	o.emit.Broadcast(st.Members.Subscribers(), "", protocol.NewRemoveLobby(id))
	log.Info().Str("module", "app.orch").Str("room", string(code)).Int("public_lobby_id", id).Msg("public lobby removed")
}
