// Package turn runs the integrated TURN relay on top of pion/turn.
package turn

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/pion/turn/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicelink/internal/core"
)

var (
	ErrNotStarted     = errors.New("turn: server not started")
	ErrAlreadyStarted = errors.New("turn: server already started")
)

type Config struct {
	ListeningPort int
	// ListeningIPs are the local addresses the relay accepts clients on.
	// Empty means all IPv4 interfaces.
	ListeningIPs []string
	// RelayIPs are the local addresses relayed sockets are bound to.
	RelayIPs []string
	// ExternalIPs are advertised to clients instead of the relay addresses,
	// for hosts behind NAT.
	ExternalIPs []string
	MinPort     uint16
	MaxPort     uint16
	Realm       string
	LogLevel    string
}

// Server is a long-term-credential TURN relay whose users can be changed at runtime.
type Server struct {
	cfg Config

	mu      sync.RWMutex
	keys    map[string][]byte
	servers []*turn.Server
	addrs   []net.Addr
	stopCtx func() bool
}

var _ core.RelayServer = (*Server)(nil)

func New(cfg Config) *Server {
	return &Server{cfg: cfg, keys: make(map[string][]byte)}
}

func (s *Server) AddUser(username, password string) {
	key := turn.GenerateAuthKey(username, s.cfg.Realm, password)
	s.mu.Lock()
	s.keys[username] = key
	s.mu.Unlock()
}

func (s *Server) RemoveUser(username string) {
	s.mu.Lock()
	delete(s.keys, username)
	s.mu.Unlock()
}

func (s *Server) authenticate(username, realm string, src net.Addr) ([]byte, bool) {
	s.mu.RLock()
	key, ok := s.keys[username]
	s.mu.RUnlock()
	if !ok {
		log.Debug().Str("module", "turn").Str("user", username).Str("src", src.String()).Msg("unknown relay user")
	}
	return key, ok
}

// Start opens one UDP listener per listening address. The relay stops when
// ctx is done or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.servers != nil {
		return ErrAlreadyStarted
	}

	level, err := ParseLevel(s.cfg.LogLevel)
	if err != nil {
		return err
	}
	factory := LoggerFactory{Level: level}

	listening := s.cfg.ListeningIPs
	if len(listening) == 0 {
		listening = []string{"0.0.0.0"}
	}

	var started []*turn.Server
	var addrs []net.Addr
	cleanup := func() {
		for _, srv := range started {
			_ = srv.Close()
		}
	}
	for i, ip := range listening {
		conn, err := net.ListenPacket("udp4", net.JoinHostPort(ip, strconv.Itoa(s.cfg.ListeningPort)))
		if err != nil {
			cleanup()
			return fmt.Errorf("turn: listen on %s: %w", ip, err)
		}
		relayIP := pick(s.cfg.RelayIPs, i, ip)
		advertised := net.ParseIP(pick(s.cfg.ExternalIPs, i, relayIP))
		if advertised == nil || advertised.IsUnspecified() {
			advertised = net.IPv4(127, 0, 0, 1)
		}
		srv, err := turn.NewServer(turn.ServerConfig{
			Realm:         s.cfg.Realm,
			AuthHandler:   s.authenticate,
			LoggerFactory: factory,
			PacketConnConfigs: []turn.PacketConnConfig{{
				PacketConn: conn,
				RelayAddressGenerator: &turn.RelayAddressGeneratorPortRange{
					RelayAddress: advertised,
					Address:      relayIP,
					MinPort:      s.cfg.MinPort,
					MaxPort:      s.cfg.MaxPort,
				},
			}},
		})
		if err != nil {
			_ = conn.Close()
			cleanup()
			return fmt.Errorf("turn: start on %s: %w", ip, err)
		}
		started = append(started, srv)
		addrs = append(addrs, conn.LocalAddr())
		log.Info().Str("module", "turn").Str("listen", conn.LocalAddr().String()).
			Str("relay", relayIP).Str("advertised", advertised.String()).Msg("relay listening")
	}

	s.servers = started
	s.addrs = addrs
	s.stopCtx = context.AfterFunc(ctx, func() { _ = s.Stop() })
	return nil
}

// Stop closes every listener and allocation.
func (s *Server) Stop() error {
	s.mu.Lock()
	servers := s.servers
	stop := s.stopCtx
	s.servers, s.addrs, s.stopCtx = nil, nil, nil
	s.mu.Unlock()

	if servers == nil {
		return ErrNotStarted
	}
	if stop != nil {
		stop()
	}
	var errs []error
	for _, srv := range servers {
		errs = append(errs, srv.Close())
	}
	log.Info().Str("module", "turn").Msg("relay stopped")
	return errors.Join(errs...)
}

// Addrs returns the bound listener addresses.
func (s *Server) Addrs() []net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]net.Addr(nil), s.addrs...)
}

func (s *Server) AllocationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, srv := range s.servers {
		n += srv.AllocationCount()
	}
	return n
}

func pick(list []string, i int, fallback string) string {
	switch {
	case i < len(list):
		return list[i]
	case len(list) > 0:
		return list[0]
	}
	return fallback
}
