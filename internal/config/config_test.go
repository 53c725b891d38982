package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("missing")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Errorf("PingPeriod=%s, want 54s", cfg.PingPeriod)
	}
	if cfg.RateLimit.Events != 0 || cfg.RateLimit.Interval != time.Second {
		t.Errorf("RateLimit=%+v, want disabled/1s", cfg.RateLimit)
	}
	if !cfg.Lobbies.Enabled {
		t.Errorf("lobbies disabled by default")
	}
	if got := cfg.ReadDeadline(); got != 60*time.Second {
		t.Errorf("ReadDeadline=%s, want 60s", got)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "config", "config.test.yaml"), `
mode: debug
port: 8080
ping_period: 9s
backpressure: drop
rate_limit:
  events: 5
lobbies:
  enabled: false
`)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "debug" || cfg.Port != 8080 || cfg.Backpressure != "drop" {
		t.Errorf("cfg=%+v", cfg)
	}
	if cfg.RateLimit.Events != 5 || cfg.RateLimit.Interval != time.Second {
		t.Errorf("RateLimit=%+v, want 5/1s", cfg.RateLimit)
	}
	if cfg.Lobbies.Enabled {
		t.Errorf("lobbies enabled, want disabled")
	}
	if got := cfg.ReadDeadline(); got != 10*time.Second {
		t.Errorf("ReadDeadline=%s, want 10s", got)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "config", "config.bad.yaml"), "mode: [unclosed")

	if _, err := Load("bad"); err == nil {
		t.Fatalf("Load accepted malformed yaml")
	}
}

func TestListenPort(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		env  Env
		want int
	}{
		{"default", Config{}, Env{}, DefaultPort},
		{"https default", Config{}, Env{HTTPS: true}, DefaultHTTPSPort},
		{"config file", Config{Port: 8080}, Env{HTTPS: true}, 8080},
		{"environment wins", Config{Port: 8080}, Env{Port: 9000}, 9000},
	}
	for _, tt := range tests {
		if got := tt.cfg.ListenPort(tt.env); got != tt.want {
			t.Errorf("%s: ListenPort=%d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestParseEnv(t *testing.T) {
	t.Setenv("PORT", "1234")
	t.Setenv("HTTPS", "true")
	t.Setenv("HOSTNAME", "voice.example.com")
	t.Setenv("CONFIG_ENV", "")

	e, err := ParseEnv()
	if err != nil {
		t.Fatalf("ParseEnv: %v", err)
	}
	if e.Port != 1234 || !e.HTTPS || e.Hostname != "voice.example.com" {
		t.Errorf("env=%+v", e)
	}
	if e.PeerConfig != "config/peerConfig.yml" {
		t.Errorf("PeerConfig=%q, want default path", e.PeerConfig)
	}
}

func TestHTTPSSwitch(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"yes", true},
		{"1", true},
		{"true", true},
		{"on", true},
		{"", false},
	}
	for _, tt := range tests {
		t.Setenv("HTTPS", tt.value)
		e, err := ParseEnv()
		if err != nil {
			t.Fatalf("HTTPS=%q: ParseEnv: %v", tt.value, err)
		}
		if bool(e.HTTPS) != tt.want {
			t.Errorf("HTTPS=%q: got %v, want %v", tt.value, e.HTTPS, tt.want)
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	writeFile(t, path, "NAME=eu-west\n")
	t.Setenv("NAME", "")
	os.Unsetenv("NAME")

	e, err := LoadEnv(path)
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if e.Name != "eu-west" {
		t.Errorf("Name=%q, want eu-west", e.Name)
	}
	if _, err := LoadEnv(filepath.Join(dir, "absent.env")); err != nil {
		t.Errorf("missing .env must be ignored, got %v", err)
	}
}
