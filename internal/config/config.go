package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	DefaultPort      = 9736
	DefaultHTTPSPort = 443
)

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	StaticPath   string        `mapstructure:"static_path"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	Secret       string        `mapstructure:"secret"`
	LogLevel     string        `mapstructure:"log_level"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	RateLimit    RateLimit     `mapstructure:"rate_limit"`
	Backpressure string        `mapstructure:"backpressure"`
	SpoofPolicy  string        `mapstructure:"spoof_policy"`
	Lobbies      Lobbies       `mapstructure:"lobbies"`
}

// RateLimit caps inbound events per connection within a sliding window.
type RateLimit struct {
	Events   int           `mapstructure:"events"`
	Interval time.Duration `mapstructure:"interval"`
}

type Lobbies struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads config/config.<env>.yaml over the built-in defaults.
func Load(env string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 0)
	v.SetDefault("static_path", "./public")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("log_level", "info")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("rate_limit.events", 0)
	v.SetDefault("rate_limit.interval", "1s")
	v.SetDefault("backpressure", "kick")
	v.SetDefault("spoof_policy", "lenient")
	v.SetDefault("lobbies.enabled", true)

	var notFound viper.ConfigFileNotFoundError
	switch err := v.ReadInConfig(); {
	case err == nil:
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	case errors.Is(err, os.ErrNotExist), errors.As(err, &notFound):
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	default:
		return nil, fmt.Errorf("read config %s: %w", fileName, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.PingPeriod <= 0 {
		return nil, fmt.Errorf("ping_period must be positive, got %s", cfg.PingPeriod)
	}
	return &cfg, nil
}

// ListenPort resolves the HTTP port: PORT wins over the config file, and
// without either the port depends on whether TLS is on.
func (c *Config) ListenPort(e Env) int {
	switch {
	case e.Port != 0:
		return e.Port
	case c.Port != 0:
		return c.Port
	case bool(e.HTTPS):
		return DefaultHTTPSPort
	}
	return DefaultPort
}

// ReadDeadline is how long a connection may stay silent before it is dropped.
func (c *Config) ReadDeadline() time.Duration {
	return c.PingPeriod * 10 / 9
}
