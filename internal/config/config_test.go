package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f3rmion/kanjimon/internal/battle"
	"github.com/f3rmion/kanjimon/internal/store"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default("/tmp/kanjimon")

	require.NoError(t, c.Validate())
	assert.Equal(t, store.DriverSQLite, c.Store.Driver)
	assert.Equal(t, "/tmp/kanjimon/kanjimon.db", c.Store.Path)
	assert.Equal(t, battle.DefaultTiming(), c.Battle.Timing)
	assert.Equal(t, battle.StaleDiscard, c.StalePolicy())
	assert.False(t, c.FlavorEnabled())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "store driver", mutate: func(c *Config) { c.Store.Driver = "etcd" }},
		{name: "stale policy", mutate: func(c *Config) { c.Battle.StaleContinuations = "sometimes" }},
		{name: "log level", mutate: func(c *Config) { c.Log.Level = "verbose" }},
		{name: "volume", mutate: func(c *Config) { c.Audio.Volume = 1.5 }},
		{name: "flavor timeout", mutate: func(c *Config) { c.Flavor.Timeout = -time.Second }},
		{name: "max sessions", mutate: func(c *Config) { c.Serve.MaxSessions = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default(t.TempDir())
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestViperDefaults(t *testing.T) {
	dir := t.TempDir()
	v := NewViper(dir)
	require.NoError(t, ReadFile(v))

	c, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, Default(dir), c)
}

func TestViperEnvironmentOverrides(t *testing.T) {
	t.Setenv("KANJIMON_STORE_DRIVER", "memory")
	t.Setenv("KANJIMON_BATTLE_ANSWER_WINDOW", "15s")
	t.Setenv("KANJIMON_BATTLE_STALE_CONTINUATIONS", "run")
	t.Setenv("KANJIMON_AUDIO_ENABLED", "false")
	t.Setenv("GEMINI_API_KEY", "secret")

	v := NewViper(t.TempDir())
	require.NoError(t, ReadFile(v))

	c, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, store.DriverMemory, c.Store.Driver)
	assert.Equal(t, 15*time.Second, c.Battle.Timing.AnswerWindow)
	assert.Equal(t, battle.StaleRun, c.StalePolicy())
	assert.False(t, c.Audio.Enabled)
	assert.Equal(t, "secret", c.Flavor.APIKey)
	assert.True(t, c.FlavorEnabled())
}

func TestViperReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	data := `
store:
  driver: redis
  redis_addr: localhost:6379
battle:
  wrong_delay: 2s
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0644))

	v := NewViper(dir)
	require.NoError(t, ReadFile(v))

	c, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, store.DriverRedis, c.Store.Driver)
	assert.Equal(t, "localhost:6379", c.Store.RedisAddr)
	assert.Equal(t, 2*time.Second, c.Battle.Timing.WrongDelay)
	assert.Equal(t, time.Second, c.Battle.Timing.RespawnDelay)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestViperRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("store:\n  driver: nope\n"), 0644))

	v := NewViper(dir)
	require.NoError(t, ReadFile(v))

	_, err := FromViper(v)
	assert.ErrorContains(t, err, "invalid config")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	c := Default(dir)
	c.Catalog = filepath.Join(dir, "mine.yaml")
	c.Battle.Timing.ClearDelay = 3 * time.Second
	require.NoError(t, Save(path, c))

	loaded, err := Load(path, dir)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "clear_delay: 3s")
	assert.NotContains(t, string(data), "api_key")
}
