package orch

import (
	"github.com/dkeye/voicelink/internal/app"
	"github.com/dkeye/voicelink/internal/core"
	"github.com/dkeye/voicelink/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Orchestrator turns inbound events into registry mutations and outbound
// events. Each event runs end to end under the store lock.
type Orchestrator struct {
	Store  *app.Store
	Policy app.Policy
	Peers  *app.PeerConfigs
	// LobbiesEnabled turns on host tracking and the public lobby directory.
	// Without it the server is a plain relay: rooms, ids, VAD and signals only.
	LobbiesEnabled bool

	emit  *app.Emitter
	relay *app.SignalRelay
}

func New(store *app.Store, policy app.Policy, peers *app.PeerConfigs, lobbiesEnabled bool) *Orchestrator {
	if policy == nil {
		policy = app.SimplePolicy{}
	}
	if peers == nil {
		peers = &app.PeerConfigs{}
	}
	emit := &app.Emitter{Store: store, Policy: policy}
	return &Orchestrator{
		Store:          store,
		Policy:         policy,
		Peers:          peers,
		LobbiesEnabled: lobbiesEnabled,
		emit:           emit,
		relay:          &app.SignalRelay{Sender: emit},
	}
}

// OnConnect registers a new connection and sends it its peer configuration.
func (o *Orchestrator) OnConnect(sid core.SessionID, conn core.SignalConnection) {
	cfg := o.Peers.ForConnection(sid)

	o.Store.Lock()
	defer o.Store.Unlock()

	o.Store.Registry.Bind(sid, conn)
	total := o.Store.ConnectionOpened()
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).
		Int("connections", total).Int("lobbies", o.Store.Lobbies.Len()).Msg("total connected")
	o.emit.Send(sid, cfg)
}

// OnDisconnect unwinds every registry entry of sid, whatever state it was in.
// Calling it twice is harmless.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	if !o.unbind(sid) {
		return
	}
	o.Peers.Release(sid)
}

func (o *Orchestrator) unbind(sid core.SessionID) bool {
	o.Store.Lock()
	defer o.Store.Unlock()

	if _, ok := o.Store.Registry.Conn(sid); !ok {
		return false
	}
	if code, ok := o.Store.Registry.RoomOf(sid); ok {
		o.leaveRoom(sid, code)
	}
	o.Store.Members.Unsubscribe(sid)
	o.Store.Registry.Unbind(sid)
	total := o.Store.ConnectionClosed()
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).
		Int("connections", total).Int("lobbies", o.Store.Lobbies.Len()).Msg("total connected")
	return true
}

// HandleEvent processes one inbound frame from sid.
func (o *Orchestrator) HandleEvent(sid core.SessionID, data []byte) {
	msg, err := protocol.Parse(data)

	o.Store.Lock()
	defer o.Store.Unlock()

	if _, ok := o.Store.Registry.Conn(sid); !ok {
		return
	}
	if err != nil {
		o.violation(sid, "", err, data)
		return
	}

	switch msg.Type {
	case protocol.TypeJoin:
		err = o.handleJoin(sid, msg)
	case protocol.TypeSetHost:
		err = o.handleSetHost(sid, msg)
	case protocol.TypeID:
		err = o.handleID(sid, msg)
	case protocol.TypeLeave:
		o.handleLeave(sid)
	case protocol.TypeVAD:
		err = o.handleVAD(sid, msg)
	case protocol.TypeJoinLobby:
		err = o.handleJoinLobby(sid, msg)
	case protocol.TypeLobby:
		err = o.handleLobby(sid, msg)
	case protocol.TypeRemoveLobby:
		err = o.handleRemoveLobby(sid, msg)
	case protocol.TypeSignal:
		err = o.handleSignal(sid, msg)
	case protocol.TypeLobbyBrowser:
		err = o.handleLobbyBrowser(sid, msg)
	case protocol.TypePing:
		o.emit.Send(sid, protocol.NewPong())
	default:
		log.Warn().Str("module", "app.orch").Str("sid", string(sid)).Str("type", msg.Type).Msg("unknown event")
	}
	if err != nil {
		o.violation(sid, msg.Type, err, data)
	}
}

// violation drops a connection that sent a malformed event. No reply is sent.
func (o *Orchestrator) violation(sid core.SessionID, event string, err error, data []byte) {
	log.Error().Err(err).Str("module", "app.orch").Str("sid", string(sid)).
		Str("event", event).Bytes("payload", data).Msg("invalid command, disconnecting")
	if conn, ok := o.Store.Registry.Conn(sid); ok {
		conn.Close()
	}
}

// Shutdown closes every live connection; their read loops then disconnect them.
func (o *Orchestrator) Shutdown() {
	o.Store.Lock()
	defer o.Store.Unlock()
	o.Store.Registry.Each(func(_ core.SessionID, conn core.SignalConnection) {
		conn.Close()
	})
}
