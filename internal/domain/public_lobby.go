package domain

import (
	"bytes"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

type GameState int

const (
	GameStateLobby GameState = iota
	GameStateTasks
	GameStateDiscussion
	GameStateMenu
	GameStateUnknown
)

func (s GameState) String() string {
	switch s {
	case GameStateLobby:
		return "LOBBY"
	case GameStateTasks:
		return "TASKS"
	case GameStateDiscussion:
		return "DISCUSSION"
	case GameStateMenu:
		return "MENU"
	default:
		return "UNKNOWN"
	}
}

// InLobby reports whether s belongs to the pre-game category.
func (s GameState) InLobby() bool { return s == GameStateLobby }

const (
	MaxTitleLen    = 20
	MaxHostLen     = 10
	MaxLanguageLen = 5
	MaxModsLen     = 20

	defaultTitle = "ERROR"
)

// PublicLobby is an entry of the public directory as browsers see it.
type PublicLobby struct {
	ID             int       `json:"id"`
	Title          string    `json:"title"`
	Host           string    `json:"host"`
	CurrentPlayers int       `json:"current_players"`
	MaxPlayers     int       `json:"max_players"`
	Language       string    `json:"language"`
	Mods           string    `json:"mods"`
	IsPublic       bool      `json:"isPublic"`
	Server         string    `json:"server"`
	GameState      GameState `json:"gameState"`
	// StateTime is the unix time in milliseconds of the last LOBBY/non-LOBBY transition.
	StateTime int64 `json:"stateTime"`
}

// Joinable reports whether a browser may join the lobby remotely.
func (p *PublicLobby) Joinable() bool {
	return p.IsPublic && p.GameState.InLobby()
}

// PublicLobbySubmission is what a host sends to publish or update its lobby.
// Every field is optional on the wire; a mistyped field reads as absent.
type PublicLobbySubmission struct {
	Title          *string    `json:"title"`
	Host           *string    `json:"host"`
	CurrentPlayers *int       `json:"current_players"`
	MaxPlayers     *int       `json:"max_players"`
	Language       *string    `json:"language"`
	Mods           *string    `json:"mods"`
	IsPublic       bool       `json:"isPublic"`
	IsPublic2      bool       `json:"isPublic2"`
	Server         string     `json:"server"`
	GameState      *GameState `json:"gameState"`
}

func (s *PublicLobbySubmission) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = PublicLobbySubmission{
		Title:          optional[string](fields["title"]),
		Host:           optional[string](fields["host"]),
		CurrentPlayers: optional[int](fields["current_players"]),
		MaxPlayers:     optional[int](fields["max_players"]),
		Language:       optional[string](fields["language"]),
		Mods:           optional[string](fields["mods"]),
		IsPublic:       derefOr(optional[bool](fields["isPublic"]), false),
		IsPublic2:      derefOr(optional[bool](fields["isPublic2"]), false),
		Server:         deref(optional[string](fields["server"])),
		GameState:      optional[GameState](fields["gameState"]),
	}
	return nil
}

func optional[T any](raw json.RawMessage) *T {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// Public reports whether either of the publish flags is set.
func (s *PublicLobbySubmission) Public() bool {
	return s.IsPublic || s.IsPublic2
}

// BuildPublicLobby normalizes a submission into a directory entry with the given id.
// prev is the entry currently published for the same code, if any; its StateTime is
// kept while the game state stays within the same LOBBY/non-LOBBY category.
func BuildPublicLobby(id int, sub *PublicLobbySubmission, prev *PublicLobby, now time.Time) PublicLobby {
	state := GameStateUnknown
	if sub.GameState != nil {
		state = *sub.GameState
	}

	stateTime := now.UnixMilli()
	if prev != nil && prev.GameState.InLobby() == state.InLobby() {
		stateTime = prev.StateTime
	}

	title := defaultTitle
	if sub.Title != nil {
		title = Truncate(*sub.Title, MaxTitleLen)
	}

	return PublicLobby{
		ID:             id,
		Title:          title,
		Host:           Truncate(deref(sub.Host), MaxHostLen),
		CurrentPlayers: derefInt(sub.CurrentPlayers),
		MaxPlayers:     derefInt(sub.MaxPlayers),
		Language:       Truncate(deref(sub.Language), MaxLanguageLen),
		Mods:           strings.ToUpper(Truncate(deref(sub.Mods), MaxModsLen)),
		IsPublic:       sub.Public(),
		Server:         sub.Server,
		GameState:      state,
		StateTime:      stateTime,
	}
}

// Truncate cuts s to at most n characters.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func deref(s *string) string { return derefOr(s, "") }

func derefInt(i *int) int { return derefOr(i, 0) }

func derefOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}
