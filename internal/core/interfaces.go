package core

import "errors"

// Frame is one encoded outbound event.
type Frame []byte

// SessionID identifies a live connection; assigned by the transport at connect.
type SessionID string

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
