package domain

type LobbyCode string

// NoHost marks a lobby whose host was never announced.
const NoHost = -1

// NoPublicLobby marks a lobby that is not listed in the public directory.
const NoPublicLobby = -1

type Lobby struct {
	Code           LobbyCode
	HostID         int
	PublicLobbyID  int
	ConnectedCount int
}

// NewLobby creates the directory entry for the first member of code.
func NewLobby(code LobbyCode, isHost bool, clientID int) *Lobby {
	l := &Lobby{
		Code:           code,
		HostID:         NoHost,
		PublicLobbyID:  NoPublicLobby,
		ConnectedCount: 1,
	}
	if isHost {
		l.HostID = clientID
	}
	return l
}
