package battle

import (
	"time"

	"github.com/f3rmion/kanjimon/internal/kanji"
	"github.com/f3rmion/kanjimon/internal/progression"
)

// Snapshot is an immutable copy of everything the UI renders.
type Snapshot struct {
	Phase Phase

	Level           kanji.Level
	HighestLevel    kanji.Level
	PlayerHP        int
	MaxHP           int
	Streak          int
	Score           int
	MonsterHitCount int
	DefeatedCount   int

	Monster  kanji.Monster
	Question kanji.Question

	AnswerText    string
	TimeRemaining time.Duration
	AnswerWindow  time.Duration
	TimerRunning  bool

	Event    Event
	EventSeq uint64

	Hint        string
	Dialogue    string
	LoadingHint bool

	FlavorEnabled bool
}

// Cleared reports whether the session ended with a winning streak.
func (s Snapshot) Cleared() bool {
	return s.Phase == PhaseResult && progression.IsWinStreak(s.Streak)
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	q := c.question
	q.Readings = append([]string(nil), q.Readings...)

	return Snapshot{
		Phase:           c.Phase(),
		Level:           c.level,
		HighestLevel:    c.highest,
		PlayerHP:        c.hp,
		MaxHP:           c.maxHP,
		Streak:          c.streak,
		Score:           c.score,
		MonsterHitCount: c.hits,
		DefeatedCount:   c.defeated,
		Monster:         c.monster,
		Question:        q,
		AnswerText:      c.answer,
		TimeRemaining:   c.timer.Remaining(),
		AnswerWindow:    c.timing.AnswerWindow,
		TimerRunning:    c.timer.Running(),
		Event:           c.event,
		EventSeq:        c.eventSeq,
		Hint:            c.hint,
		Dialogue:        c.dialogue,
		LoadingHint:     c.loadingHint,
		FlavorEnabled:   c.flavor.Enabled(),
	}
}
