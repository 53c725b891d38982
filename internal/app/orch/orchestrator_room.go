package orch

import (
	"fmt"

	"github.com/dkeye/voicelink/internal/app"
	"github.com/dkeye/voicelink/internal/core"
	"github.com/dkeye/voicelink/internal/domain"
	"github.com/dkeye/voicelink/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) handleJoin(sid core.SessionID, msg *protocol.Message) error {
	raw, err := msg.String("code")
	if err != nil {
		return err
	}
	if raw == "" {
		return fmt.Errorf("%w: empty code", protocol.ErrProtocol)
	}
	playerID, err := msg.Int("playerId")
	if err != nil {
		return err
	}
	clientID, err := msg.Int("clientId")
	if err != nil {
		return err
	}
	isHost, err := msg.OptBool("isHost")
	if err != nil {
		return err
	}
	code := domain.LobbyCode(raw)
	st := o.Store

	// Snapshot the other members before anything moves.
	others := make(map[core.SessionID]*domain.ClientIdentity)
	for _, member := range st.Members.MembersOf(code) {
		if member != sid {
			others[member] = st.Registry.Identity(member)
		}
	}

	prev, joined := st.Registry.RoomOf(sid)
	if joined && prev != code {
		o.leaveRoom(sid, prev)
	}
	rejoin := joined && prev == code

	hostClaim := isHost && o.LobbiesEnabled
	lobby, created := st.Lobbies.Ensure(code, hostClaim, clientID)
	if !created {
		switch {
		case !rejoin:
			st.Lobbies.OnJoin(code, hostClaim, clientID)
		case hostClaim:
			st.Lobbies.SetHost(code, clientID)
		}
		if hostClaim {
			o.emit.Broadcast(st.Members.MembersOf(code), sid, protocol.NewSetHost(clientID))
		}
	}
	if o.LobbiesEnabled {
		o.emit.Send(sid, protocol.NewSetHost(lobby.HostID))
	}

	id := domain.NewClientIdentity(playerID, clientID)
	st.Registry.SetIdentity(sid, id)
	st.Members.JoinRoom(sid, code)
	st.Registry.UpdateRoom(sid, code)
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", raw).
		Int("connected", lobby.ConnectedCount).Msg("joined room")

	o.emit.Broadcast(st.Members.MembersOf(code), sid, protocol.NewJoin(sid, id))
	o.emit.Send(sid, protocol.NewSetClients(others))
	return nil
}

// leaveRoom takes sid out of code and tears the lobby down once nobody is left.
func (o *Orchestrator) leaveRoom(sid core.SessionID, code domain.LobbyCode) {
	st := o.Store
	if st.Members.LeaveRoom(sid, code) {
		st.Lobbies.OnLeave(code)
	}
	st.Registry.RemoveRoom(sid)
	if st.Members.RoomIsEmpty(code) {
		o.unpublish(code)
		st.Lobbies.Delete(code)
	}
}

func (o *Orchestrator) handleLeave(sid core.SessionID) {
	if code, ok := o.Store.Registry.RoomOf(sid); ok {
		o.leaveRoom(sid, code)
		log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(code)).Msg("left room")
	}
	o.Store.Registry.RemoveIdentity(sid)
}

func (o *Orchestrator) handleSetHost(sid core.SessionID, msg *protocol.Message) error {
	code, err := msg.String("code")
	if err != nil {
		return err
	}
	clientID, err := msg.Int("clientId")
	if err != nil {
		return err
	}
	if !o.LobbiesEnabled {
		return nil
	}
	cur, ok := o.Store.Registry.RoomOf(sid)
	if !ok || cur != domain.LobbyCode(code) {
		log.Warn().Str("module", "app.orch").Str("sid", string(sid)).Str("code", code).
			Str("room", string(cur)).Msg("setHost for a room the client is not in")
		return nil
	}
	if o.Store.Lobbies.SetHost(cur, clientID) {
		o.emit.Broadcast(o.Store.Members.MembersOf(cur), sid, protocol.NewSetHost(clientID))
	}
	return nil
}

func (o *Orchestrator) handleID(sid core.SessionID, msg *protocol.Message) error {
	playerID, err := msg.Int("playerId")
	if err != nil {
		return err
	}
	clientID, err := msg.Int("clientId")
	if err != nil {
		return err
	}
	st := o.Store
	next := domain.NewClientIdentity(playerID, clientID)

	if prev := st.Registry.Identity(sid); prev.IsSpoofedBy(next) {
		log.Error().Str("module", "app.orch").Str("sid", string(sid)).
			Int("prev_client_id", prev.ClientID).Int("client_id", clientID).Int("player_id", playerID).
			Msg("invalid id command, attempted spoofing another client")
		switch o.Policy.OnSpoof(sid, prev, next) {
		case app.AcceptIdentity:
		case app.RejectIdentity:
			return nil
		case app.DisconnectClient:
			if conn, ok := st.Registry.Conn(sid); ok {
				conn.Close()
			}
			return nil
		}
	}

	st.Registry.SetIdentity(sid, next)
	if code, ok := st.Registry.RoomOf(sid); ok {
		o.emit.Broadcast(st.Members.MembersOf(code), sid, protocol.NewSetClient(sid, next))
	}
	return nil
}

func (o *Orchestrator) handleVAD(sid core.SessionID, msg *protocol.Message) error {
	activity, err := msg.Bool("activity")
	if err != nil {
		return err
	}
	code, ok := o.Store.Registry.RoomOf(sid)
	client := o.Store.Registry.Identity(sid)
	if !ok || client == nil {
		return nil
	}
	o.emit.Broadcast(o.Store.Members.MembersOf(code), sid, protocol.NewVAD(sid, client, activity))
	return nil
}
