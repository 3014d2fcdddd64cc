package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rtype/engine/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
[server]
tick_rate = "250ms"
ticks = 3

[network]
port = 0
echo = true

[logging]
format = "json"
`)
	cfg, err := config.Load(path, false)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Server.TickRate)
	assert.Equal(t, 3, cfg.Server.Ticks)
	assert.Equal(t, 0, cfg.Network.Port)
	assert.True(t, cfg.Network.Echo)
	assert.Equal(t, "json", cfg.Logging.Format)

	// untouched keys keep their defaults
	assert.Equal(t, "rtype", cfg.Server.Name)
	assert.Equal(t, "127.0.0.1", cfg.Network.BindHost)
	assert.Equal(t, 50, cfg.Persist.IntervalTicks)
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, err := config.Load(missing, true)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, err = config.Load(missing, false)
	assert.Error(t, err)
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := config.Load(filepath.Join("..", "..", "config", "server.toml"), false)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, cfg.Server.TickRate)
	assert.Equal(t, "data/scene.yaml", cfg.Scene.Path)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `[server`},
		{"unknown key", "[server]\ncolour = \"red\""},
		{"zero tick rate", "[server]\ntick_rate = \"0s\""},
		{"negative ticks", "[server]\nticks = -1"},
		{"port range", "[network]\nport = 70000"},
		{"datagram size", "[network]\nmax_datagram_size = 0"},
		{"persist without dsn", "[persist]\nenabled = true\ndsn = \"\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			assert.Error(t, config.Parse([]byte(tt.body), cfg))
		})
	}
}
