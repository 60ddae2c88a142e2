package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/f3rmion/kanjimon/internal/kanji"
)

// DefaultRedisPrefix namespaces every key the store writes.
const DefaultRedisPrefix = "kanjimon"

// RedisClient is the subset of go-redis the store relies on.
type RedisClient interface {
	redis.UniversalClient
}

// NewRedisClient creates a client for a single instance.
func NewRedisClient(endpoint string) (RedisClient, error) {
	if endpoint == "" {
		return nil, errors.New("redis: endpoint is required")
	}
	return redis.NewClient(&redis.Options{Addr: endpoint}), nil
}

// RedisConfig configures a Redis store.
type RedisConfig struct {
	Client       RedisClient
	Prefix       string // Optional; defaults to DefaultRedisPrefix
	HistoryLimit int    // Optional; defaults to DefaultHistoryLimit
}

// Validate checks required fields.
func (c *RedisConfig) Validate() error {
	if c.Client == nil {
		return errors.New("redis client is required")
	}
	return nil
}

// Redis stores settings as plain keys and history as a capped JSON list,
// so several machines can share one profile.
type Redis struct {
	client   RedisClient
	prefix   string
	maxItems int
}

var _ Store = (*Redis)(nil)

// NewRedis creates a Redis-backed store.
func NewRedis(cfg *RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	limit := cfg.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	return &Redis{client: cfg.Client, prefix: prefix, maxItems: limit}, nil
}

func (s *Redis) key(name string) string {
	return s.prefix + ":" + name
}

func (s *Redis) get(ctx context.Context, name string) (string, error) {
	value, err := s.client.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return value, nil
}

func (s *Redis) set(ctx context.Context, name, value string) error {
	if err := s.client.Set(ctx, s.key(name), value, 0).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// LastPlayedLevel returns ErrNotFound until a level has been saved.
func (s *Redis) LastPlayedLevel(ctx context.Context) (kanji.Level, error) {
	value, err := s.get(ctx, keyLastPlayedLevel)
	if err != nil {
		return 0, err
	}
	return kanji.ParseLevel(value)
}

// SetLastPlayedLevel saves level as its rank.
func (s *Redis) SetLastPlayedLevel(ctx context.Context, level kanji.Level) error {
	if !level.Valid() {
		return fmt.Errorf("invalid level %d", int(level))
	}
	return s.set(ctx, keyLastPlayedLevel, strconv.Itoa(level.Rank()))
}

// BGMEnabled defaults to true when unset.
func (s *Redis) BGMEnabled(ctx context.Context) (bool, error) {
	value, err := s.get(ctx, keyBGMEnabled)
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return strconv.ParseBool(value)
}

// SetBGMEnabled saves the music toggle.
func (s *Redis) SetBGMEnabled(ctx context.Context, enabled bool) error {
	return s.set(ctx, keyBGMEnabled, strconv.FormatBool(enabled))
}

// RecordResult prepends r and trims the list to the configured size.
func (s *Redis) RecordResult(ctx context.Context, r Result) error {
	data, err := json.Marshal(NewResult(r))
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	key := s.key("results")
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(s.maxItems-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("recording result: %w", err)
	}
	return nil
}

// RecentResults returns up to limit results, newest first.
func (s *Redis) RecentResults(ctx context.Context, limit int) ([]Result, error) {
	n := clampLimit(limit, s.maxItems)
	items, err := s.client.LRange(ctx, s.key("results"), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}

	results := make([]Result, 0, len(items))
	for _, item := range items {
		var r Result
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("unmarshaling result: %w", err)
		}
		results = append(results, r)
	}
	return results, nil
}

// Close closes the underlying client.
func (s *Redis) Close() error {
	return s.client.Close()
}
