package app

import (
	"fmt"

	"github.com/dkeye/voicelink/internal/core"
	"github.com/dkeye/voicelink/internal/domain"
)

type BackpressureAction int

const (
	KickMember BackpressureAction = iota
	DropFrame
)

// SpoofAction decides what happens to an id announcement that changes the
// clientId of a connection.
type SpoofAction int

const (
	AcceptIdentity SpoofAction = iota
	RejectIdentity
	DisconnectClient
)

type Policy interface {
	OnBackPressure(sid core.SessionID) BackpressureAction
	OnSpoof(sid core.SessionID, prev, next *domain.ClientIdentity) SpoofAction
}

type SimplePolicy struct {
	Backpressure BackpressureAction
	Spoof        SpoofAction
}

func (p SimplePolicy) OnBackPressure(core.SessionID) BackpressureAction {
	return p.Backpressure
}

func (p SimplePolicy) OnSpoof(core.SessionID, *domain.ClientIdentity, *domain.ClientIdentity) SpoofAction {
	return p.Spoof
}

// ParsePolicy builds a SimplePolicy from its config names.
func ParsePolicy(backpressure, spoof string) (SimplePolicy, error) {
	var p SimplePolicy
	switch backpressure {
	case "", "kick":
		p.Backpressure = KickMember
	case "drop":
		p.Backpressure = DropFrame
	default:
		return p, fmt.Errorf("unknown backpressure policy %q", backpressure)
	}
	switch spoof {
	case "", "lenient":
		p.Spoof = AcceptIdentity
	case "reject":
		p.Spoof = RejectIdentity
	case "disconnect":
		p.Spoof = DisconnectClient
	default:
		return p, fmt.Errorf("unknown spoof policy %q", spoof)
	}
	return p, nil
}
