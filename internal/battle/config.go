package battle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/f3rmion/kanjimon/internal/flavor"
	"github.com/f3rmion/kanjimon/internal/kanji"
	"github.com/f3rmion/kanjimon/internal/sched"
)

// Catalog is the content the controller draws from.
type Catalog interface {
	RandomMonster(level kanji.Level) kanji.Monster
	QuestionsForLevel(level kanji.Level) []kanji.Question
	DefaultQuestion() kanji.Question
}

// LevelStore persists the last played level.
type LevelStore interface {
	LastPlayedLevel(ctx context.Context) (kanji.Level, error)
	SetLastPlayedLevel(ctx context.Context, level kanji.Level) error
}

// StalePolicy decides what happens to a deferred continuation whose session
// or turn has moved on by the time it runs.
type StalePolicy string

const (
	// StaleDiscard drops stale continuations.
	StaleDiscard StalePolicy = "discard"
	// StaleRun runs every continuation, even after the player returned to
	// the title or started over.
	StaleRun StalePolicy = "run"
)

// ParseStalePolicy parses "discard" or "run". Empty means discard.
func ParseStalePolicy(s string) (StalePolicy, error) {
	switch StalePolicy(s) {
	case "", StaleDiscard:
		return StaleDiscard, nil
	case StaleRun:
		return StaleRun, nil
	}
	return "", fmt.Errorf("unknown stale continuation policy %q", s)
}

// Timing holds every delay of the battle cycle.
type Timing struct {
	AnswerWindow        time.Duration `mapstructure:"answer_window" yaml:"answer_window"`
	Tick                time.Duration `mapstructure:"tick" yaml:"tick"`
	CorrectDelay        time.Duration `mapstructure:"correct_delay" yaml:"correct_delay"`
	DefeatSettle        time.Duration `mapstructure:"defeat_settle" yaml:"defeat_settle"`
	RespawnDelay        time.Duration `mapstructure:"respawn_delay" yaml:"respawn_delay"`
	WrongDelay          time.Duration `mapstructure:"wrong_delay" yaml:"wrong_delay"`
	PlayerDefeatedDelay time.Duration `mapstructure:"player_defeated_delay" yaml:"player_defeated_delay"`
	ClearDelay          time.Duration `mapstructure:"clear_delay" yaml:"clear_delay"`
}

// DefaultTiming returns the standard pacing.
func DefaultTiming() Timing {
	return Timing{
		AnswerWindow:        10 * time.Second,
		Tick:                50 * time.Millisecond,
		CorrectDelay:        800 * time.Millisecond,
		DefeatSettle:        1200 * time.Millisecond,
		RespawnDelay:        time.Second,
		WrongDelay:          time.Second,
		PlayerDefeatedDelay: time.Second,
		ClearDelay:          1500 * time.Millisecond,
	}
}

// withDefaults fills zero fields from DefaultTiming.
func (t Timing) withDefaults() Timing {
	d := DefaultTiming()
	fill := func(v *time.Duration, def time.Duration) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&t.AnswerWindow, d.AnswerWindow)
	fill(&t.Tick, d.Tick)
	fill(&t.CorrectDelay, d.CorrectDelay)
	fill(&t.DefeatSettle, d.DefeatSettle)
	fill(&t.RespawnDelay, d.RespawnDelay)
	fill(&t.WrongDelay, d.WrongDelay)
	fill(&t.PlayerDefeatedDelay, d.PlayerDefeatedDelay)
	fill(&t.ClearDelay, d.ClearDelay)
	return t
}

// Config configures a Controller.
type Config struct {
	Catalog   Catalog
	Scheduler sched.Scheduler

	Flavor *flavor.Gateway // Optional; nil uses local fallbacks only
	Levels LevelStore      // Optional
	Rand   *rand.Rand      // Optional
	Logger *slog.Logger    // Optional

	Timing      Timing
	StalePolicy StalePolicy

	// StoreTimeout bounds each LevelStore call. Zero means
	// DefaultStoreTimeout.
	StoreTimeout time.Duration

	OnChange      func()               // Called after every state change
	OnEvent       func(Event)          // Called for every emitted event
	OnPhaseChange func(from, to Phase) // Called on every phase transition
}

// DefaultStoreTimeout bounds level reads and writes made on the control
// thread.
const DefaultStoreTimeout = 500 * time.Millisecond

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Catalog == nil {
		return errors.New("catalog is required")
	}
	if c.Scheduler == nil {
		return errors.New("scheduler is required")
	}
	if _, err := ParseStalePolicy(string(c.StalePolicy)); err != nil {
		return err
	}
	return nil
}
