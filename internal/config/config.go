// Package config handles loading and saving user configuration for Kanji Monster.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/f3rmion/kanjimon/internal/audio"
	"github.com/f3rmion/kanjimon/internal/battle"
	"github.com/f3rmion/kanjimon/internal/llm"
	"github.com/f3rmion/kanjimon/internal/logging"
	"github.com/f3rmion/kanjimon/internal/server"
	"github.com/f3rmion/kanjimon/internal/store"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "KANJIMON"

// FileName is the config file looked up in the config directory.
const FileName = "config.yaml"

// Config holds all user configuration.
type Config struct {
	Catalog string         `mapstructure:"catalog" yaml:"catalog,omitempty"` // Empty uses the built-in catalog
	Store   store.Config   `mapstructure:"store" yaml:"store"`
	Flavor  llm.Config     `mapstructure:"flavor" yaml:"flavor"`
	Audio   audio.Config   `mapstructure:"audio" yaml:"audio"`
	Log     logging.Config `mapstructure:"log" yaml:"log"`
	Serve   server.Config  `mapstructure:"serve" yaml:"serve"`
	Battle  BattleConfig   `mapstructure:"battle" yaml:"battle"`
}

// BattleConfig holds pacing and continuation handling.
type BattleConfig struct {
	StaleContinuations string        `mapstructure:"stale_continuations" yaml:"stale_continuations"`
	Timing             battle.Timing `mapstructure:",squash" yaml:",inline"`
}

// Default returns the configuration used when nothing is overridden. Files
// live under dir.
func Default(dir string) Config {
	return Config{
		Store: store.Config{
			Driver:       store.DriverSQLite,
			Path:         filepath.Join(dir, "kanjimon.db"),
			RedisPrefix:  store.DefaultRedisPrefix,
			HistoryLimit: store.DefaultHistoryLimit,
		},
		Flavor: llm.Config{
			Timeout: 5 * time.Second,
		},
		Audio: audio.DefaultConfig(),
		Log: logging.Config{
			Level:  "info",
			Format: "text",
			File:   filepath.Join(dir, "kanjimon.log"),
		},
		Serve: server.Config{
			Addr:        ":2323",
			HostKey:     filepath.Join(dir, "ssh_host_ed25519"),
			IdleTimeout: 15 * time.Minute,
			MaxSessions: 32,
		},
		Battle: BattleConfig{
			StaleContinuations: string(battle.StaleDiscard),
			Timing:             battle.DefaultTiming(),
		},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if _, err := battle.ParseStalePolicy(c.Battle.StaleContinuations); err != nil {
		return fmt.Errorf("battle.stale_continuations: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("audio.volume must be between 0 and 1, got %g", c.Audio.Volume)
	}
	if c.Flavor.Timeout < 0 {
		return errors.New("flavor.timeout must not be negative")
	}
	return c.Serve.Validate()
}

// StalePolicy returns the parsed continuation policy.
func (c Config) StalePolicy() battle.StalePolicy {
	p, err := battle.ParseStalePolicy(c.Battle.StaleContinuations)
	if err != nil {
		return battle.StaleDiscard
	}
	return p
}

// FlavorEnabled reports whether an API key is configured.
func (c Config) FlavorEnabled() bool {
	return strings.TrimSpace(c.Flavor.APIKey) != ""
}

// SetDefaults registers every key with v so environment overrides apply
// even when no config file mentions them.
func SetDefaults(v *viper.Viper, c Config) {
	defaults := map[string]any{
		"catalog": c.Catalog,

		"store.driver":        string(c.Store.Driver),
		"store.path":          c.Store.Path,
		"store.redis_addr":    c.Store.RedisAddr,
		"store.redis_prefix":  c.Store.RedisPrefix,
		"store.history_limit": c.Store.HistoryLimit,

		"flavor.api_key":  c.Flavor.APIKey,
		"flavor.model":    c.Flavor.Model,
		"flavor.base_url": c.Flavor.BaseURL,
		"flavor.timeout":  c.Flavor.Timeout,

		"audio.enabled":     c.Audio.Enabled,
		"audio.volume":      c.Audio.Volume,
		"audio.sample_rate": c.Audio.SampleRate,

		"log.level":  c.Log.Level,
		"log.format": c.Log.Format,
		"log.file":   c.Log.File,

		"serve.addr":         c.Serve.Addr,
		"serve.host_key":     c.Serve.HostKey,
		"serve.idle_timeout": c.Serve.IdleTimeout,
		"serve.max_sessions": c.Serve.MaxSessions,

		"battle.stale_continuations":   c.Battle.StaleContinuations,
		"battle.answer_window":         c.Battle.Timing.AnswerWindow,
		"battle.tick":                  c.Battle.Timing.Tick,
		"battle.correct_delay":         c.Battle.Timing.CorrectDelay,
		"battle.defeat_settle":         c.Battle.Timing.DefeatSettle,
		"battle.respawn_delay":         c.Battle.Timing.RespawnDelay,
		"battle.wrong_delay":           c.Battle.Timing.WrongDelay,
		"battle.player_defeated_delay": c.Battle.Timing.PlayerDefeatedDelay,
		"battle.clear_delay":           c.Battle.Timing.ClearDelay,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// NewViper returns a viper instance wired for dir: defaults, the optional
// config file and KANJIMON_* environment overrides. GEMINI_API_KEY is also
// honored for the flavor key.
func NewViper(dir string) *viper.Viper {
	v := viper.New()
	ConfigureViper(v, dir)
	return v
}

// ConfigureViper applies the NewViper wiring to an existing instance.
func ConfigureViper(v *viper.Viper, dir string) {
	SetDefaults(v, Default(dir))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("flavor.api_key", EnvPrefix+"_FLAVOR_API_KEY", "GEMINI_API_KEY")

	v.SetConfigFile(filepath.Join(dir, FileName))
	v.SetConfigType("yaml")
}

// ReadFile loads the config file if present. A missing file is not an error.
func ReadFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

// FromViper decodes and validates the merged configuration.
func FromViper(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// Load reads a config file written by Save, filling gaps from Default(dir).
func Load(path, dir string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	c := Default(dir)
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return c, nil
}

// Save writes c to path as YAML.
func Save(path string, c Config) error {
	out, err := yaml.Marshal(&c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// GetConfigDir returns the default configuration directory.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "kanjimon"), nil
}

// EnsureConfigDir creates dir if it doesn't exist.
func EnsureConfigDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return nil
}
