package config

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the process configuration of cmd/server.
type Config struct {
	Log       LogConfig       `yaml:"log" envPrefix:"GAIM_LOG_"`
	Loop      LoopConfig      `yaml:"loop" envPrefix:"GAIM_LOOP_"`
	WebSocket WebSocketConfig `yaml:"websocket" envPrefix:"GAIM_WS_"`
	QUIC      QUICConfig      `yaml:"quic" envPrefix:"GAIM_QUIC_"`
	Demo      DemoConfig      `yaml:"demo" envPrefix:"GAIM_DEMO_"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LEVEL"`
	Encoding string `yaml:"encoding" env:"ENCODING"`
}

type LoopConfig struct {
	// Step is the tick interval; zero means 60 ticks per second.
	Step           time.Duration `yaml:"step" env:"STEP"`
	ReplayHeldKeys bool          `yaml:"replay_held_keys" env:"REPLAY_HELD_KEYS"`
	Gamepad        bool          `yaml:"gamepad" env:"GAMEPAD"`
	TickRecovery   bool          `yaml:"tick_recovery" env:"TICK_RECOVERY"`
	QueueSize      int           `yaml:"queue_size" env:"QUEUE_SIZE"`
}

type WebSocketConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Addr    string `yaml:"addr" env:"ADDR"`
	Path    string `yaml:"path" env:"PATH"`
	// ReadLimit caps a single inbound message, in bytes.
	ReadLimit int64 `yaml:"read_limit" env:"READ_LIMIT"`
	// AllowedOrigins lists the page origins allowed to connect, e.g.
	// "http://localhost:3000". Empty or "*" allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
}

type QUICConfig struct {
	Enabled     bool          `yaml:"enabled" env:"ENABLED"`
	Addr        string        `yaml:"addr" env:"ADDR"`
	CertFile    string        `yaml:"cert_file" env:"CERT_FILE"`
	KeyFile     string        `yaml:"key_file" env:"KEY_FILE"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
}

type DemoConfig struct {
	// Enabled registers the sample components and entities.
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	Players int  `yaml:"players" env:"PLAYERS"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
		Loop: LoopConfig{
			QueueSize: 256,
		},
		WebSocket: WebSocketConfig{
			Enabled:   true,
			Addr:      "127.0.0.1:8080",
			Path:      "/ws",
			ReadLimit: 4096,
		},
		QUIC: QUICConfig{
			Enabled:     false,
			Addr:        "127.0.0.1:8443",
			IdleTimeout: 30 * time.Second,
		},
		Demo: DemoConfig{
			Enabled: true,
			Players: 1,
		},
	}
}

// Load reads path over the defaults, applies GAIM_* environment overrides
// and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config")
		}
		if err = Decode(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode unmarshals YAML into cfg, keeping fields the document omits.
// Unknown keys are rejected.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return errors.Wrap(err, "decode config")
	}
	return nil
}

// Validate rejects settings the process cannot start with. Game-facing
// values such as the loop step are passed through untouched.
func (c Config) Validate() error {
	if c.Loop.QueueSize < 0 {
		return errors.Wrap(ErrInvalidConfig, "loop.queue_size must not be negative")
	}
	if c.WebSocket.Enabled && c.WebSocket.Addr == "" {
		return errors.Wrap(ErrInvalidConfig, "websocket.addr is required")
	}
	if c.QUIC.Enabled && c.QUIC.Addr == "" {
		return errors.Wrap(ErrInvalidConfig, "quic.addr is required")
	}
	if (c.QUIC.CertFile == "") != (c.QUIC.KeyFile == "") {
		return errors.Wrap(ErrInvalidConfig, "quic.cert_file and quic.key_file go together")
	}
	return nil
}
