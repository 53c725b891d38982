package app

import (
	"github.com/dkeye/voicelink/internal/core"
	"github.com/dkeye/voicelink/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Room     domain.LobbyCode
	Conn     core.SignalConnection
	Identity *domain.ClientIdentity
}

// Registry is the connection registry: every live connection, the identity it
// last announced and the session code it is currently joined to.
// Access is serialized by the owning Store.
type Registry struct {
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
	}
}

func (r *Registry) Bind(sid core.SessionID, conn core.SignalConnection) {
	r.sessions[sid] = &sessionEntry{Conn: conn}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound signal")
}

// Unbind forgets sid and reports whether it was bound.
func (r *Registry) Unbind(sid core.SessionID) bool {
	if _, ok := r.sessions[sid]; !ok {
		return false
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
	return true
}

func (r *Registry) Conn(sid core.SessionID) (core.SignalConnection, bool) {
	e, ok := r.sessions[sid]
	if !ok {
		return nil, false
	}
	return e.Conn, true
}

// Identity returns the identity sid announced, or nil.
func (r *Registry) Identity(sid core.SessionID) *domain.ClientIdentity {
	if e, ok := r.sessions[sid]; ok {
		return e.Identity
	}
	return nil
}

func (r *Registry) SetIdentity(sid core.SessionID, id *domain.ClientIdentity) {
	e, ok := r.sessions[sid]
	if !ok {
		return
	}
	e.Identity = id
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).
		Int("player_id", id.PlayerID).Int("client_id", id.ClientID).Msg("updated identity")
}

func (r *Registry) RemoveIdentity(sid core.SessionID) {
	if e, ok := r.sessions[sid]; ok {
		e.Identity = nil
	}
}

func (r *Registry) RoomOf(sid core.SessionID) (domain.LobbyCode, bool) {
	entry, ok := r.sessions[sid]
	if !ok || entry.Room == "" {
		return "", false
	}
	return entry.Room, true
}

func (r *Registry) UpdateRoom(sid core.SessionID, code domain.LobbyCode) bool {
	entry, ok := r.sessions[sid]
	if !ok {
		return false
	}
	entry.Room = code
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(code)).Msg("updated room")
	return true
}

func (r *Registry) RemoveRoom(sid core.SessionID) {
	if entry, ok := r.sessions[sid]; ok {
		entry.Room = ""
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed room association")
}

func (r *Registry) Len() int { return len(r.sessions) }

// Each visits every bound connection.
func (r *Registry) Each(fn func(sid core.SessionID, conn core.SignalConnection)) {
	for sid, e := range r.sessions {
		fn(sid, e.Conn)
	}
}
