package app

import (
	"fmt"
	"sync"

	"github.com/dkeye/voicelink/internal/core"
	"github.com/dkeye/voicelink/internal/protocol"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// IntegratedRelay describes how clients reach the embedded TURN server.
type IntegratedRelay struct {
	Server   core.RelayServer
	Hostname string
	Port     int
	Username string
	Password string
	// PerConnection issues every connection its own short-lived credential
	// instead of advertising the shared default user.
	PerConnection bool
}

// PeerConfigs builds the clientPeerConfig each connection receives on connect.
type PeerConfigs struct {
	ForceRelayOnly bool
	ICEServers     []webrtc.ICEServer
	Relay          *IntegratedRelay

	mu    sync.Mutex
	users map[core.SessionID]struct{}
}

// ForConnection returns the negotiation config for sid, registering a relay
// credential for it when per-connection credentials are enabled.
func (p *PeerConfigs) ForConnection(sid core.SessionID) protocol.ClientPeerConfig {
	servers := make([]webrtc.ICEServer, 0, len(p.ICEServers)+1)
	servers = append(servers, p.ICEServers...)

	if r := p.Relay; r != nil && r.Server != nil {
		username, credential := r.Username, r.Password
		if r.PerConnection {
			username, credential = string(sid), uuid.NewString()
			r.Server.AddUser(username, credential)
			p.track(sid)
			log.Info().Str("module", "app.peers").Str("sid", string(sid)).Msg("added connection as relay user")
		}
		servers = append(servers, webrtc.ICEServer{
			URLs:       []string{fmt.Sprintf("turn:%s:%d", r.Hostname, r.Port)},
			Username:   username,
			Credential: credential,
		})
	}
	return protocol.NewClientPeerConfig(p.ForceRelayOnly, servers)
}

// Release drops the relay credential issued to sid, if any.
func (p *PeerConfigs) Release(sid core.SessionID) {
	if p.Relay == nil || p.Relay.Server == nil || !p.untrack(sid) {
		return
	}
	p.Relay.Server.RemoveUser(string(sid))
	log.Info().Str("module", "app.peers").Str("sid", string(sid)).Msg("removed connection as relay user")
}

func (p *PeerConfigs) track(sid core.SessionID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.users == nil {
		p.users = make(map[core.SessionID]struct{})
	}
	p.users[sid] = struct{}{}
}

func (p *PeerConfigs) untrack(sid core.SessionID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.users[sid]; !ok {
		return false
	}
	delete(p.users, sid)
	return true
}
