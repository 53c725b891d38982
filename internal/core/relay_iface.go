package core

import "context"

//go:generate mockgen -source=relay_iface.go -destination=mocks/relay_mock.go -package=mocks

// RelayServer is the integrated TURN capability the orchestrator hands
// credentials to. Implementations must be safe for concurrent use.
type RelayServer interface {
	// Start binds the listeners; the server stops when ctx is done or Stop is called.
	Start(ctx context.Context) error
	Stop() error
	AddUser(username, password string)
	RemoveUser(username string)
}
