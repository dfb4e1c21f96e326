package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules_Valid(t *testing.T) {
	r := DefaultRules()
	require.NoError(t, r.Validate())

	c := r.Combat()
	assert.InDelta(t, 5, c.CritBase, 1e-9)
	assert.Equal(t, 2, c.CritMultiplier)
	assert.Equal(t, 2, c.CrossWindow)
}

func TestParseRules_OverridesOnly(t *testing.T) {
	r, err := ParseRules([]byte("maxTimeUnits: 24\nenemy:\n  name: Golem\n  hp: 80\n"))
	require.NoError(t, err)

	assert.Equal(t, 24, r.MaxTimeUnits)
	assert.Equal(t, "Golem", r.Enemy.Name)
	assert.Equal(t, 80, r.Enemy.HP)
	assert.Equal(t, 2, r.CritMultiplier, "unlisted keys keep defaults")
	assert.True(t, r.BlockResetsEachTurn)
}

func TestParseRules_Invalid(t *testing.T) {
	tests := map[string]string{
		"crit multiplier": "critMultiplier: 0\n",
		"deflation":       "deflationBase: 1.5\n",
		"budget":          "maxTimeUnits: -1\n",
		"hp":              "player:\n  hp: 0\n",
		"yaml":            "critBase: [\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRules([]byte(doc))
			assert.Error(t, err)
		})
	}
	_, err := ParseRules([]byte("critMultiplier: 0\n"))
	assert.ErrorIs(t, err, ErrInvalidRules)
}

func TestLoadRules(t *testing.T) {
	r, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), r)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxEther: 40\n"), 0o600))
	r, err = LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, 40, r.MaxEther)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRules_Shipped(t *testing.T) {
	r, err := LoadRules(filepath.Join("..", "..", "config", "rules.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Revenant", r.Enemy.Name)
	assert.Equal(t, 1, r.Enemy.Strength)
}

func TestLoadServer(t *testing.T) {
	t.Setenv("ETHERDUEL_ADDR", ":9999")
	t.Setenv("ETHERDUEL_RULES", "rules.yaml")
	t.Setenv("ETHERDUEL_SHUTDOWN_TIMEOUT", "2s")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "rules.yaml", cfg.RulesPath)
	assert.Equal(t, "catalogs/default.yaml", cfg.CatalogPath)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
}

func TestLoadServer_Defaults(t *testing.T) {
	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "config/rules.yaml", cfg.RulesPath)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoadServer_BadDuration(t *testing.T) {
	t.Setenv("ETHERDUEL_SHUTDOWN_TIMEOUT", "soon")
	_, err := LoadServer()
	assert.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, Server{LogLevel: in}.SlogLevel(), in)
	}
}
