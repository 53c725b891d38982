package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env is the process environment the server reads at boot.
type Env struct {
	Port       int    `env:"PORT"`
	HTTPS      Switch `env:"HTTPS"`
	SSLPath    string `env:"SSLPATH"`
	Hostname   string `env:"HOSTNAME"`
	Name       string `env:"NAME"`
	ConfigEnv  string `env:"CONFIG_ENV" envDefault:"dev"`
	PeerConfig string `env:"PEER_CONFIG" envDefault:"config/peerConfig.yml"`
	ICEServers string `env:"ICE_SERVERS_FILE" envDefault:"config/ice-servers.json"`
}

// Switch is on for any non-empty value.
type Switch bool

func (s *Switch) UnmarshalText(text []byte) error {
	*s = Switch(strings.TrimSpace(string(text)) != "")
	return nil
}

// LoadEnv loads a .env file when present, then parses the environment.
func LoadEnv(files ...string) (Env, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Env{}, fmt.Errorf("load .env: %w", err)
	}
	return ParseEnv()
}

func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}
