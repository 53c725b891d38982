package app

import (
	"github.com/dkeye/voicelink/internal/core"
	"github.com/dkeye/voicelink/internal/domain"
)

// Membership tracks which connections sit in which session room, plus the
// independent group of lobby browser subscribers. It does not remember a
// connection's current room; the orchestrator sequences leave before join.
type Membership struct {
	rooms       *core.Groups
	subscribers *core.Groups
}

const browserGroup = "lobbybrowser"

func NewMembership() *Membership {
	return &Membership{
		rooms:       core.NewGroups(),
		subscribers: core.NewGroups(),
	}
}

func (m *Membership) JoinRoom(sid core.SessionID, code domain.LobbyCode) bool {
	return m.rooms.Join(sid, string(code))
}

func (m *Membership) LeaveRoom(sid core.SessionID, code domain.LobbyCode) bool {
	return m.rooms.Leave(sid, string(code))
}

func (m *Membership) InRoom(code domain.LobbyCode, sid core.SessionID) bool {
	return m.rooms.Has(string(code), sid)
}

func (m *Membership) MembersOf(code domain.LobbyCode) []core.SessionID {
	return m.rooms.Members(string(code))
}

func (m *Membership) RoomSize(code domain.LobbyCode) int {
	return m.rooms.Count(string(code))
}

func (m *Membership) RoomIsEmpty(code domain.LobbyCode) bool {
	return m.rooms.IsEmpty(string(code))
}

func (m *Membership) Subscribe(sid core.SessionID) bool {
	return m.subscribers.Join(sid, browserGroup)
}

func (m *Membership) Unsubscribe(sid core.SessionID) bool {
	return m.subscribers.Leave(sid, browserGroup)
}

func (m *Membership) Subscribers() []core.SessionID {
	return m.subscribers.Members(browserGroup)
}
