package internal

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func writeConfig(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(afero.NewMemMapFs(), "", nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("LoadConfig() = %+v, want %+v", cfg, DefaultConfig())
	}
}

func TestLoadConfigLayering(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, "/etc/memkv.yaml", `
server:
  address: 0.0.0.0:7000
  max_buffer_bytes: 1024
  rate_limit: 50
metrics:
  address: 127.0.0.1:9100
log:
  level: debug
`)
	t.Setenv("MEMKV_SERVER_MAX_BUFFER_BYTES", "2048")
	t.Setenv("MEMKV_LOG_FORMAT", "json")

	cfg, err := LoadConfig(fs, "/etc/memkv.yaml", map[string]any{
		"server.rate_limit": 10.0,
	})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	want := Config{
		Server: ServerConfig{
			Address:        "0.0.0.0:7000",
			MaxBufferBytes: 2048,
			RateLimit:      10,
		},
		Metrics: MetricsConfig{Address: "127.0.0.1:9100"},
		Log:     LogConfig{Level: "debug", Format: "json"},
	}
	if cfg != want {
		t.Errorf("LoadConfig() = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(afero.NewMemMapFs(), "/nope.yaml", nil); err == nil {
		t.Error("LoadConfig() error = nil, want an error for a missing file")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
	}{
		{"empty address", map[string]any{"server.address": ""}},
		{"zero buffer", map[string]any{"server.max_buffer_bytes": 0}},
		{"negative rate limit", map[string]any{"server.rate_limit": -1.0}},
		{"unknown level", map[string]any{"log.level": "loud"}},
		{"unknown format", map[string]any{"log.format": "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(afero.NewMemMapFs(), "", tt.overrides)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("LoadConfig() error = %v, want %v", err, ErrInvalidConfig)
			}
		})
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MEMKV_SERVER_ADDRESS", "server.address"},
		{"MEMKV_SERVER_MAX_BUFFER_BYTES", "server.max_buffer_bytes"},
		{"MEMKV_LOG_LEVEL", "log.level"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
