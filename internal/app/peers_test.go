package app

import (
	"testing"

	"github.com/pion/webrtc/v4"
	"go.uber.org/mock/gomock"

	"github.com/dkeye/voicelink/internal/core/mocks"
)

func TestPeerConfigsSharedCredential(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	relay := mocks.NewMockRelayServer(ctrl)

	p := &PeerConfigs{
		ForceRelayOnly: true,
		ICEServers:     []webrtc.ICEServer{{URLs: []string{"stun:stun.example.com"}}},
		Relay: &IntegratedRelay{
			Server:   relay,
			Hostname: "voice.example.com",
			Port:     3478,
			Username: "voicelink",
			Password: "secret",
		},
	}

	cfg := p.ForConnection("a")
	if !cfg.ForceRelayOnly || len(cfg.ICEServers) != 2 {
		t.Fatalf("cfg=%+v", cfg)
	}
	turn := cfg.ICEServers[1]
	if turn.URLs[0] != "turn:voice.example.com:3478" || turn.Username != "voicelink" || turn.Credential != "secret" {
		t.Errorf("turn server=%+v", turn)
	}
	if len(p.ICEServers) != 1 {
		t.Errorf("configured list mutated: %+v", p.ICEServers)
	}

	// No per-connection user was issued, so nothing is removed.
	p.Release("a")
}

func TestPeerConfigsPerConnection(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	relay := mocks.NewMockRelayServer(ctrl)

	var issued string
	relay.EXPECT().AddUser("a", gomock.Any()).Do(func(_, password string) { issued = password })
	relay.EXPECT().RemoveUser("a")

	p := &PeerConfigs{Relay: &IntegratedRelay{Server: relay, Hostname: "h", Port: 1, PerConnection: true}}
	cfg := p.ForConnection("a")
	if got := cfg.ICEServers[0]; got.Username != "a" || got.Credential != issued || issued == "" {
		t.Errorf("turn server=%+v, issued %q", got, issued)
	}
	p.Release("a")
	p.Release("a")
}

func TestPeerConfigsWithoutRelay(t *testing.T) {
	t.Parallel()
	p := &PeerConfigs{}
	cfg := p.ForConnection("a")
	if cfg.ICEServers == nil || len(cfg.ICEServers) != 0 {
		t.Errorf("ICEServers=%v, want empty list", cfg.ICEServers)
	}
	p.Release("a")
}
