package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/f3rmion/kanjimon/internal/kanji"
)

// Memory is an in-process store. Nothing survives a restart.
type Memory struct {
	mu       sync.Mutex
	level    *kanji.Level
	bgm      *bool
	results  []Result
	maxItems int
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty store keeping at most limit results.
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Memory{maxItems: limit}
}

// LastPlayedLevel implements Settings.
func (m *Memory) LastPlayedLevel(_ context.Context) (kanji.Level, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.level == nil {
		return 0, ErrNotFound
	}
	return *m.level, nil
}

func (m *Memory) SetLastPlayedLevel(_ context.Context, level kanji.Level) error {
	if !level.Valid() {
		return fmt.Errorf("invalid level %d", int(level))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = &level
	return nil
}

func (m *Memory) BGMEnabled(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bgm == nil {
		return true, nil
	}
	return *m.bgm, nil
}

func (m *Memory) SetBGMEnabled(_ context.Context, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bgm = &enabled
	return nil
}

func (m *Memory) RecordResult(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append([]Result{NewResult(r)}, m.results...)
	if len(m.results) > m.maxItems {
		m.results = m.results[:m.maxItems]
	}
	return nil
}

// RecentResults returns up to limit results, newest first.
func (m *Memory) RecentResults(_ context.Context, limit int) ([]Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := min(clampLimit(limit, m.maxItems), len(m.results))
	return append([]Result(nil), m.results[:n]...), nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
