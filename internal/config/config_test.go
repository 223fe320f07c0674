package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Zero(t, cfg.Loop.Step)
	assert.False(t, cfg.Loop.ReplayHeldKeys)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gaim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
loop:
  step: 100ms
  replay_held_keys: true
  gamepad: true
quic:
  enabled: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Encoding)
	assert.Equal(t, 100*time.Millisecond, cfg.Loop.Step)
	assert.True(t, cfg.Loop.ReplayHeldKeys)
	assert.True(t, cfg.Loop.Gamepad)
	assert.True(t, cfg.QUIC.Enabled)
	assert.Equal(t, "127.0.0.1:8443", cfg.QUIC.Addr)
	assert.Equal(t, "/ws", cfg.WebSocket.Path)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gaim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("loop:\n  step: 100ms\n"), 0o600))
	t.Setenv("GAIM_LOOP_STEP", "20ms")
	t.Setenv("GAIM_WS_ADDR", "0.0.0.0:9000")
	t.Setenv("GAIM_WS_ALLOWED_ORIGINS", "http://localhost:3000,https://game.example")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, cfg.Loop.Step)
	assert.Equal(t, "0.0.0.0:9000", cfg.WebSocket.Addr)
	assert.Equal(t, []string{"http://localhost:3000", "https://game.example"}, cfg.WebSocket.AllowedOrigins)
}

func TestEnvParseError(t *testing.T) {
	t.Setenv("GAIM_LOOP_QUEUE_SIZE", "lots")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestUnknownKeyRejected(t *testing.T) {
	cfg := Default()
	err := Decode([]byte("loop:\n  stpe: 1s\n"), &cfg)
	assert.Error(t, err)
}

func TestEmptyDocument(t *testing.T) {
	cfg := Default()
	require.NoError(t, Decode(nil, &cfg))
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Loop.Step = -time.Second
	assert.NoError(t, cfg.Validate(), "step is not validated")

	cfg = Default()
	cfg.Loop.QueueSize = -1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Default()
	cfg.WebSocket.Addr = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Default()
	cfg.QUIC.CertFile = "cert.pem"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
