package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bale2838/Tetris/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewDefaultsWithoutFile(t *testing.T) {
	t.Setenv(portEnv, "")
	cfg, err := New(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, domain.DefaultRules(), cfg.Game)
}

func TestNewOverridesDefaults(t *testing.T) {
	t.Setenv(portEnv, "")
	path := writeConfig(t, `
server:
  addr: ":9090"
game:
  board_width: 12
  base_interval: 500ms
  line_cap: 100
session:
  idle_timeout: 1m
`)
	cfg, err := New(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 12, cfg.Game.Width)
	assert.Equal(t, 22, cfg.Game.Height)
	assert.Equal(t, 500*time.Millisecond, cfg.Game.BaseInterval)
	assert.Equal(t, 25*time.Millisecond, cfg.Game.IntervalFloor)
	assert.Equal(t, 100, cfg.Game.LineCap)
	assert.Equal(t, time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.Session.JanitorPeriod)
}

func TestNewFixesSessionSettings(t *testing.T) {
	t.Setenv(portEnv, "")
	cfg, err := New(writeConfig(t, "session:\n  janitor_period: 0s\n  updates_buffer: -3\n"))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Session.JanitorPeriod)
	assert.Equal(t, 1, cfg.Session.UpdatesBuffer)
}

func TestNewPortFromEnv(t *testing.T) {
	t.Setenv(portEnv, ":7000")
	cfg, err := New(writeConfig(t, "server:\n  addr: \":9090\"\n"))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestNewRejectsBrokenYaml(t *testing.T) {
	_, err := New(writeConfig(t, "game: [1, 2"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(r *domain.Rules){
		"narrow board":     func(r *domain.Rules) { r.Width = 3 },
		"short board":      func(r *domain.Rules) { r.Height = 2 },
		"zero floor":       func(r *domain.Rules) { r.IntervalFloor = 0 },
		"base below floor": func(r *domain.Rules) { r.BaseInterval = 10 * time.Millisecond },
		"negative step":    func(r *domain.Rules) { r.IntervalStep = -time.Millisecond },
		"no line cap":      func(r *domain.Rules) { r.LineCap = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			rules := domain.DefaultRules()
			mutate(&rules)
			assert.ErrorIs(t, Validate(rules), ErrInvalidRules)
		})
	}
	assert.NoError(t, Validate(domain.DefaultRules()))

	_, err := New(writeConfig(t, "game:\n  board_width: 2\n"))
	assert.ErrorIs(t, err, ErrInvalidRules)
}
