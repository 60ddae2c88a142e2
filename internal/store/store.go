// Package store persists player settings and finished-game history.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/f3rmion/kanjimon/internal/kanji"
)

// ErrNotFound is returned when a setting has never been written.
var ErrNotFound = errors.New("not found")

// DefaultHistoryLimit bounds the number of results kept per store.
const DefaultHistoryLimit = 100

// Driver selects a backend.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverSQLite Driver = "sqlite"
	DriverRedis  Driver = "redis"
)

// Settings holds per-player preferences.
type Settings interface {
	LastPlayedLevel(ctx context.Context) (kanji.Level, error)
	SetLastPlayedLevel(ctx context.Context, level kanji.Level) error
	// BGMEnabled reports true when the flag has never been written.
	BGMEnabled(ctx context.Context) (bool, error)
	SetBGMEnabled(ctx context.Context, enabled bool) error
}

// History records finished games.
type History interface {
	RecordResult(ctx context.Context, r Result) error
	// RecentResults returns up to limit results, newest first.
	RecentResults(ctx context.Context, limit int) ([]Result, error)
}

// Store is a full backend.
type Store interface {
	Settings
	History
	io.Closer
}

// Result summarizes one finished game.
type Result struct {
	ID       uuid.UUID   `json:"id"`
	PlayedAt time.Time   `json:"played_at"`
	Score    int         `json:"score"`
	Defeated int         `json:"defeated"`
	Streak   int         `json:"streak"`
	Highest  kanji.Level `json:"highest"`
	Cleared  bool        `json:"cleared"`
}

// NewResult stamps r with a fresh id and the current time when unset.
func NewResult(r Result) Result {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.PlayedAt.IsZero() {
		r.PlayedAt = time.Now().UTC()
	}
	return r
}

// Config selects and configures a backend.
type Config struct {
	Driver       Driver `mapstructure:"driver" yaml:"driver"`
	Path         string `mapstructure:"path" yaml:"path"`
	RedisAddr    string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPrefix  string `mapstructure:"redis_prefix" yaml:"redis_prefix"`
	HistoryLimit int    `mapstructure:"history_limit" yaml:"history_limit"`
}

// Validate checks that the selected driver has what it needs.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Path == "" {
			return errors.New("store.path is required for sqlite")
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return errors.New("store.redis_addr is required for redis")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Driver)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("store.history_limit must not be negative, got %d", c.HistoryLimit)
	}
	return nil
}

func (c Config) historyLimit() int {
	if c.HistoryLimit == 0 {
		return DefaultHistoryLimit
	}
	return c.HistoryLimit
}

// Open creates the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.Path, cfg.historyLimit())
	case DriverRedis:
		client, err := NewRedisClient(cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		s, err := NewRedis(&RedisConfig{
			Client:       client,
			Prefix:       cfg.RedisPrefix,
			HistoryLimit: cfg.historyLimit(),
		})
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		return s, nil
	default:
		return NewMemory(cfg.historyLimit()), nil
	}
}

func clampLimit(limit, max int) int {
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}
