package app

import (
	"slices"
	"time"

	"github.com/dkeye/voicelink/internal/domain"
	"github.com/rs/zerolog/log"
)

// PublicLobbyIndex is the browsable directory. Ids are allocated from a
// monotonic counter and stay stable across updates of the same code.
type PublicLobbyIndex struct {
	byCode map[domain.LobbyCode]*domain.PublicLobby
	codes  map[int]domain.LobbyCode
	nextID int
}

func NewPublicLobbyIndex() *PublicLobbyIndex {
	return &PublicLobbyIndex{
		byCode: make(map[domain.LobbyCode]*domain.PublicLobby),
		codes:  make(map[int]domain.LobbyCode),
	}
}

// Publish creates or updates the entry for code.
func (x *PublicLobbyIndex) Publish(code domain.LobbyCode, sub *domain.PublicLobbySubmission, now time.Time) domain.PublicLobby {
	prev := x.byCode[code]
	id := x.nextID
	if prev != nil {
		id = prev.ID
	} else {
		x.nextID++
	}
	entry := domain.BuildPublicLobby(id, sub, prev, now)
	x.byCode[code] = &entry
	x.codes[id] = code
	log.Debug().Str("module", "app.public").Str("code", string(code)).Int("id", id).
		Str("state", entry.GameState.String()).Msg("public lobby published")
	return entry
}

// Unpublish removes the entry for code and returns its id.
func (x *PublicLobbyIndex) Unpublish(code domain.LobbyCode) (int, bool) {
	entry, ok := x.byCode[code]
	if !ok {
		return 0, false
	}
	delete(x.codes, entry.ID)
	delete(x.byCode, code)
	log.Debug().Str("module", "app.public").Str("code", string(code)).Int("id", entry.ID).Msg("public lobby removed")
	return entry.ID, true
}

func (x *PublicLobbyIndex) Get(code domain.LobbyCode) (domain.PublicLobby, bool) {
	entry, ok := x.byCode[code]
	if !ok {
		return domain.PublicLobby{}, false
	}
	return *entry, true
}

// Lookup resolves a browsing id to its session code and entry.
func (x *PublicLobbyIndex) Lookup(id int) (domain.LobbyCode, domain.PublicLobby, bool) {
	code, ok := x.codes[id]
	if !ok {
		return "", domain.PublicLobby{}, false
	}
	entry, ok := x.byCode[code]
	if !ok {
		return "", domain.PublicLobby{}, false
	}
	return code, *entry, true
}

// List returns the entries ordered by id.
func (x *PublicLobbyIndex) List() []domain.PublicLobby {
	out := make([]domain.PublicLobby, 0, len(x.byCode))
	for _, entry := range x.byCode {
		out = append(out, *entry)
	}
	slices.SortFunc(out, func(a, b domain.PublicLobby) int { return a.ID - b.ID })
	return out
}

func (x *PublicLobbyIndex) Len() int { return len(x.byCode) }
