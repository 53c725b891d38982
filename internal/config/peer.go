package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// PeerConfig controls what clients are told about connectivity and whether
// the integrated relay runs.
type PeerConfig struct {
	ForceRelayOnly  bool               `mapstructure:"forceRelayOnly"`
	IntegratedRelay RelaySettings      `mapstructure:"integratedRelay"`
	ICEServers      []webrtc.ICEServer `mapstructure:"-"`
}

type RelaySettings struct {
	Enabled                  bool     `mapstructure:"enabled"`
	MinPort                  int      `mapstructure:"minPort" validate:"min=1,max=65535"`
	MaxPort                  int      `mapstructure:"maxPort" validate:"min=1,max=65535,gtefield=MinPort"`
	ListeningPort            int      `mapstructure:"listeningPort" validate:"min=1,max=65535"`
	ListeningIPs             []string `mapstructure:"listeningIps" validate:"dive,ip"`
	RelayIPs                 []string `mapstructure:"relayIps" validate:"dive,ip"`
	ExternalIPs              []string `mapstructure:"externalIps" validate:"dive,ip"`
	Realm                    string   `mapstructure:"realm" validate:"required"`
	DefaultUsername          string   `mapstructure:"defaultUsername" validate:"required"`
	DefaultPassword          string   `mapstructure:"defaultPassword"`
	PerConnectionCredentials bool     `mapstructure:"perConnectionCredentials"`
	DebugLevel               string   `mapstructure:"debugLevel" validate:"oneof=OFF FATAL ERROR WARN INFO DEBUG TRACE ALL"`
}

const defaultSTUN = "stun:stun.l.google.com:19302"

// DefaultPeerConfig is used when no peer config file exists or it is invalid.
func DefaultPeerConfig() PeerConfig {
	return PeerConfig{
		IntegratedRelay: RelaySettings{
			Enabled:         true,
			MinPort:         49152,
			MaxPort:         65535,
			ListeningPort:   3478,
			Realm:           "voicelink",
			DefaultUsername: "voicelink",
			DebugLevel:      "INFO",
		},
		ICEServers: []webrtc.ICEServer{{URLs: []string{defaultSTUN}}},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadPeer reads the peer config at path. When the file lists no ICE servers
// the legacy JSON file at legacyICE is consulted. Any failure is logged and
// replaced by DefaultPeerConfig.
func LoadPeer(path, legacyICE string) PeerConfig {
	cfg, err := readPeer(path, legacyICE)
	if err != nil {
		log.Error().Err(err).Str("module", "config").Str("file", path).Msg("unable to load peer config, using defaults")
		cfg = DefaultPeerConfig()
	}
	if cfg.IntegratedRelay.DefaultPassword == "" {
		cfg.IntegratedRelay.DefaultPassword = uuid.NewString()
	}
	log.Info().Str("module", "config").Bool("relay", cfg.IntegratedRelay.Enabled).
		Int("ice_servers", len(cfg.ICEServers)).Bool("force_relay_only", cfg.ForceRelayOnly).Msg("peer config")
	return cfg
}

func readPeer(path, legacyICE string) (PeerConfig, error) {
	def := DefaultPeerConfig()
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)

	relay := def.IntegratedRelay
	v.SetDefault("forceRelayOnly", def.ForceRelayOnly)
	v.SetDefault("integratedRelay.enabled", relay.Enabled)
	v.SetDefault("integratedRelay.minPort", relay.MinPort)
	v.SetDefault("integratedRelay.maxPort", relay.MaxPort)
	v.SetDefault("integratedRelay.listeningPort", relay.ListeningPort)
	v.SetDefault("integratedRelay.realm", relay.Realm)
	v.SetDefault("integratedRelay.defaultUsername", relay.DefaultUsername)
	v.SetDefault("integratedRelay.debugLevel", relay.DebugLevel)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return PeerConfig{}, fmt.Errorf("read %s: %w", path, err)
		}
		log.Info().Str("module", "config").Str("file", path).Msg("no peer config file, using defaults")
	}

	var cfg PeerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return PeerConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.IntegratedRelay.DebugLevel = strings.ToUpper(cfg.IntegratedRelay.DebugLevel)
	if err := validate.Struct(cfg.IntegratedRelay); err != nil {
		return PeerConfig{}, fmt.Errorf("integratedRelay: %w", err)
	}

	servers, err := iceServersFrom(v.Get("iceServers"))
	if err != nil {
		return PeerConfig{}, err
	}
	if servers == nil {
		if servers, err = LoadICEServers(legacyICE); err != nil {
			return PeerConfig{}, err
		}
	}
	cfg.ICEServers = servers
	return cfg, nil
}

// LoadICEServers reads a legacy {"iceServers": [...]} JSON file. A missing
// file yields the default STUN server.
func LoadICEServers(path string) ([]webrtc.ICEServer, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []webrtc.ICEServer{{URLs: []string{defaultSTUN}}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc struct {
		ICEServers []iceServerJSON `json:"iceServers"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return convertICEServers(doc.ICEServers)
}

// iceServersFrom converts the raw YAML value of iceServers. nil means the key is absent.
func iceServersFrom(raw any) ([]webrtc.ICEServer, error) {
	if raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("iceServers: %w", err)
	}
	var servers []iceServerJSON
	if err := json.Unmarshal(data, &servers); err != nil {
		return nil, fmt.Errorf("iceServers: %w", err)
	}
	return convertICEServers(servers)
}

type iceServerJSON struct {
	URLs       stringOrStringSlice `json:"urls"`
	Username   string              `json:"username,omitempty"`
	Credential string              `json:"credential,omitempty"`
}

type stringOrStringSlice []string

func (s *stringOrStringSlice) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*s = []string{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

func convertICEServers(in []iceServerJSON) ([]webrtc.ICEServer, error) {
	out := make([]webrtc.ICEServer, 0, len(in))
	for i, server := range in {
		s := webrtc.ICEServer{URLs: make([]string, 0, len(server.URLs)), Username: strings.TrimSpace(server.Username)}
		if server.Credential != "" {
			s.Credential = server.Credential
		}
		for _, url := range server.URLs {
			if url = strings.TrimSpace(url); url != "" {
				s.URLs = append(s.URLs, url)
			}
		}
		if err := validateICEServer(s); err != nil {
			return nil, fmt.Errorf("iceServers[%d]: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func validateICEServer(server webrtc.ICEServer) error {
	if len(server.URLs) == 0 {
		return errors.New("missing urls")
	}
	for _, raw := range server.URLs {
		uri, err := stun.ParseURI(raw)
		if err != nil {
			return fmt.Errorf("invalid url %q: %w", raw, err)
		}
		if uri.Scheme != stun.SchemeTypeTURN && uri.Scheme != stun.SchemeTypeTURNS {
			continue
		}
		cred, _ := server.Credential.(string)
		if server.Username == "" || cred == "" {
			return fmt.Errorf("turn url %q requires username and credential", raw)
		}
	}
	return nil
}
