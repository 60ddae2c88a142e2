package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/f3rmion/kanjimon/internal/kanji"
)

const (
	keyLastPlayedLevel = "last_played_level"
	keyBGMEnabled      = "bgm_enabled"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	id        TEXT PRIMARY KEY,
	played_at INTEGER NOT NULL,
	score     INTEGER NOT NULL,
	defeated  INTEGER NOT NULL,
	streak    INTEGER NOT NULL,
	highest   INTEGER NOT NULL,
	cleared   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS results_played_at ON results (played_at DESC);
`

// SQLite stores settings and history in a single database file.
type SQLite struct {
	db       *sql.DB
	maxItems int
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens or creates the database at path.
func OpenSQLite(ctx context.Context, path string, limit int) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps :memory: databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &SQLite{db: db, maxItems: limit}, nil
}

func (s *SQLite) getSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading setting %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLite) setSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}

// LastPlayedLevel returns ErrNotFound until a level has been saved.
func (s *SQLite) LastPlayedLevel(ctx context.Context) (kanji.Level, error) {
	value, err := s.getSetting(ctx, keyLastPlayedLevel)
	if err != nil {
		return 0, err
	}
	return kanji.ParseLevel(value)
}

// SetLastPlayedLevel saves level.
func (s *SQLite) SetLastPlayedLevel(ctx context.Context, level kanji.Level) error {
	if !level.Valid() {
		return fmt.Errorf("invalid level %d", int(level))
	}
	return s.setSetting(ctx, keyLastPlayedLevel, strconv.Itoa(level.Rank()))
}

// BGMEnabled defaults to true when unset.
func (s *SQLite) BGMEnabled(ctx context.Context) (bool, error) {
	value, err := s.getSetting(ctx, keyBGMEnabled)
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return strconv.ParseBool(value)
}

// SetBGMEnabled saves the music toggle.
func (s *SQLite) SetBGMEnabled(ctx context.Context, enabled bool) error {
	return s.setSetting(ctx, keyBGMEnabled, strconv.FormatBool(enabled))
}

// RecordResult inserts r and prunes rows beyond the configured limit.
func (s *SQLite) RecordResult(ctx context.Context, r Result) error {
	r = NewResult(r)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO results (id, played_at, score, defeated, streak, highest, cleared)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID.String(), r.PlayedAt.UnixNano(), r.Score, r.Defeated, r.Streak, r.Highest.Rank(), r.Cleared); err != nil {
		return fmt.Errorf("inserting result: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM results WHERE id NOT IN (
			SELECT id FROM results ORDER BY played_at DESC LIMIT ?
		)
	`, s.maxItems); err != nil {
		return fmt.Errorf("trimming results: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing result: %w", err)
	}
	return nil
}

// RecentResults returns up to limit results, newest first.
func (s *SQLite) RecentResults(ctx context.Context, limit int) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, played_at, score, defeated, streak, highest, cleared
		FROM results ORDER BY played_at DESC LIMIT ?
	`, clampLimit(limit, s.maxItems))
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			r        Result
			id       string
			playedAt int64
			highest  int
		)
		if err := rows.Scan(&id, &playedAt, &r.Score, &r.Defeated, &r.Streak, &highest, &r.Cleared); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing result id %q: %w", id, err)
		}
		r.PlayedAt = time.Unix(0, playedAt).UTC()
		r.Highest = kanji.Level(highest)
		results = append(results, r)
	}

	return results, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
