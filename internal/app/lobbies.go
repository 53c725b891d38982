package app

import (
	"github.com/dkeye/voicelink/internal/domain"
	"github.com/rs/zerolog/log"
)

// LobbyDirectory holds one entry per active session code.
type LobbyDirectory struct {
	lobbies map[domain.LobbyCode]*domain.Lobby
}

func NewLobbyDirectory() *LobbyDirectory {
	return &LobbyDirectory{lobbies: make(map[domain.LobbyCode]*domain.Lobby)}
}

func (d *LobbyDirectory) Get(code domain.LobbyCode) (*domain.Lobby, bool) {
	l, ok := d.lobbies[code]
	return l, ok
}

// Ensure returns the lobby for code, creating it with its first member when unseen.
func (d *LobbyDirectory) Ensure(code domain.LobbyCode, isHost bool, clientID int) (*domain.Lobby, bool) {
	if l, ok := d.lobbies[code]; ok {
		return l, false
	}
	l := domain.NewLobby(code, isHost, clientID)
	d.lobbies[code] = l
	log.Info().Str("module", "app.lobbies").Str("code", string(code)).Int("host_id", l.HostID).Msg("lobby created")
	return l, true
}

// OnJoin counts a new member of an existing lobby and reports whether the host changed.
func (d *LobbyDirectory) OnJoin(code domain.LobbyCode, isHost bool, clientID int) bool {
	l, ok := d.lobbies[code]
	if !ok {
		return false
	}
	l.ConnectedCount++
	if isHost {
		l.HostID = clientID
		return true
	}
	return false
}

// OnLeave uncounts a member; the count never goes below zero.
func (d *LobbyDirectory) OnLeave(code domain.LobbyCode) int {
	l, ok := d.lobbies[code]
	if !ok {
		return 0
	}
	if l.ConnectedCount > 0 {
		l.ConnectedCount--
	}
	return l.ConnectedCount
}

func (d *LobbyDirectory) SetHost(code domain.LobbyCode, clientID int) bool {
	l, ok := d.lobbies[code]
	if !ok {
		return false
	}
	l.HostID = clientID
	log.Info().Str("module", "app.lobbies").Str("code", string(code)).Int("host_id", clientID).Msg("host changed")
	return true
}

func (d *LobbyDirectory) Delete(code domain.LobbyCode) (*domain.Lobby, bool) {
	l, ok := d.lobbies[code]
	if !ok {
		return nil, false
	}
	delete(d.lobbies, code)
	log.Info().Str("module", "app.lobbies").Str("code", string(code)).Msg("lobby removed")
	return l, true
}

func (d *LobbyDirectory) Len() int { return len(d.lobbies) }
