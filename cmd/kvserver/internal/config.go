package internal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"

	"github.com/ananthvk/memkv/internal/resp"
)

// EnvPrefix is the prefix of environment variables read by LoadConfig.
// MEMKV_SERVER_ADDRESS sets server.address.
const EnvPrefix = "MEMKV_"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
}

type ServerConfig struct {
	Address string `koanf:"address"`
	// Largest incomplete request a connection may buffer before it is dropped
	MaxBufferBytes int `koanf:"max_buffer_bytes"`
	// Commands per second allowed on one connection, 0 disables the limit
	RateLimit float64 `koanf:"rate_limit"`
}

type MetricsConfig struct {
	// Empty disables the metrics endpoint
	Address string `koanf:"address"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:        "127.0.0.1:6379",
			MaxBufferBytes: resp.DefaultMaxBufferSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig builds the configuration from, in increasing priority, the defaults,
// the YAML file at path on fs (skipped when path is empty), MEMKV_ environment
// variables and overrides. overrides uses dotted keys such as "server.address".
func LoadConfig(fs afero.Fs, path string, overrides map[string]any) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(aferoProvider{fs: fs, path: path}, yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(mapProvider(maps.Unflatten(overrides, ".")), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey maps MEMKV_SERVER_MAX_BUFFER_BYTES to server.max_buffer_bytes. Only the
// first underscore separates the section, the rest belong to the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

func (c Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("%w: server.address must not be empty", ErrInvalidConfig)
	}
	if c.Server.MaxBufferBytes <= 0 {
		return fmt.Errorf("%w: server.max_buffer_bytes must be positive", ErrInvalidConfig)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%w: server.rate_limit must not be negative", ErrInvalidConfig)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// aferoProvider reads a config file through an afero filesystem
type aferoProvider struct {
	fs   afero.Fs
	path string
}

func (p aferoProvider) ReadBytes() ([]byte, error) {
	return afero.ReadFile(p.fs, p.path)
}

func (p aferoProvider) Read() (map[string]any, error) {
	return nil, errors.New("afero provider does not support Read")
}

type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("map provider does not support ReadBytes")
}

func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}
