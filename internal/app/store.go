package app

import (
	"sync"
	"time"

	"github.com/dkeye/voicelink/internal/domain"
)

// Store aggregates every piece of process-wide session state. A single mutex
// guards all of it: callers hold Lock for the whole of one inbound event so
// that snapshot, mutation and broadcast happen as one step.
type Store struct {
	mu sync.Mutex

	Registry *Registry
	Members  *Membership
	Lobbies  *LobbyDirectory
	Public   *PublicLobbyIndex

	connections int
	now         func() time.Time
}

type StoreOption func(*Store)

// WithClock overrides the clock used for public lobby state times.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		Registry: NewRegistry(),
		Members:  NewMembership(),
		Lobbies:  NewLobbyDirectory(),
		Public:   NewPublicLobbyIndex(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Lock()   { s.mu.Lock() }
func (s *Store) Unlock() { s.mu.Unlock() }

// Now must be called with the lock held.
func (s *Store) Now() time.Time { return s.now() }

// ConnectionOpened and ConnectionClosed maintain the global connection counter.
// Both must be called with the lock held.
func (s *Store) ConnectionOpened() int {
	s.connections++
	return s.connections
}

func (s *Store) ConnectionClosed() int {
	if s.connections > 0 {
		s.connections--
	}
	return s.connections
}

// Stats is a consistent read-only view for status endpoints.
type Stats struct {
	Connections   int
	Lobbies       int
	PublicLobbies []domain.PublicLobby
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Connections:   s.connections,
		Lobbies:       s.Lobbies.Len(),
		PublicLobbies: s.Public.List(),
	}
}

// Reset drops all state; used at shutdown once every connection is closed.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Registry = NewRegistry()
	s.Members = NewMembership()
	s.Lobbies = NewLobbyDirectory()
	s.Public = NewPublicLobbyIndex()
	s.connections = 0
}
