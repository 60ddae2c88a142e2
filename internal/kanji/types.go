// Package kanji provides the core content types for Kanji Monster.
package kanji

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Level is a kanji kentei rank. Lower ranks are harder.
type Level int

const (
	Kyu5 Level = 5 // Easiest rank, the default starting point
	Kyu4 Level = 4
	Kyu3 Level = 3
	Kyu2 Level = 2
	Kyu1 Level = 1 // Hardest rank
)

// Levels lists every rank from easiest to hardest.
var Levels = []Level{Kyu5, Kyu4, Kyu3, Kyu2, Kyu1}

// ParseLevel converts a rank number ("3") or label ("3級", "3kyu") into a Level.
func ParseLevel(s string) (Level, error) {
	trimmed := s
	for _, suffix := range []string{"級", "kyu"} {
		if len(trimmed) > len(suffix) && trimmed[len(trimmed)-len(suffix):] == suffix {
			trimmed = trimmed[:len(trimmed)-len(suffix)]
			break
		}
	}

	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parsing level %q: %w", s, err)
	}

	l := Level(n)
	if !l.Valid() {
		return 0, fmt.Errorf("level %q out of range 1-5", s)
	}
	return l, nil
}

// Valid reports whether l is one of the five ranks.
func (l Level) Valid() bool {
	return l >= Kyu1 && l <= Kyu5
}

// Rank returns the numeric rank.
func (l Level) Rank() int {
	return int(l)
}

// Label returns the display name, e.g. "5級".
func (l Level) Label() string {
	return fmt.Sprintf("%d級", int(l))
}

// String implements fmt.Stringer.
func (l Level) String() string {
	return l.Label()
}

// ScoreMultiplier is 1 at 5 kyu and 5 at 1 kyu.
func (l Level) ScoreMultiplier() int {
	return 6 - int(l)
}

// Harder returns the next harder rank, if any.
func (l Level) Harder() (Level, bool) {
	next := l - 1
	if !next.Valid() {
		return l, false
	}
	return next, true
}

// Easier returns the next easier rank, if any.
func (l Level) Easier() (Level, bool) {
	prev := l + 1
	if !prev.Valid() {
		return l, false
	}
	return prev, true
}

// HarderThan reports whether l is further along the ladder than other.
func (l Level) HarderThan(other Level) bool {
	return l < other
}

// Color is one of the fixed monster palette variants.
type Color string

const (
	ColorGreen     Color = "green"
	ColorDarkGreen Color = "dark_green"
	ColorLime      Color = "lime"
	ColorYellow    Color = "yellow"
)

// Valid reports whether c belongs to the palette.
func (c Color) Valid() bool {
	switch c {
	case ColorGreen, ColorDarkGreen, ColorLime, ColorYellow:
		return true
	}
	return false
}

// Monster is a static roster entry.
type Monster struct {
	ID     int    `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Sprite string `yaml:"sprite" json:"sprite"` // Sprite reference, e.g. "monster_01"
	Level  Level  `yaml:"level" json:"level"`   // Base level the monster appears at
	Color  Color  `yaml:"color" json:"color"`
}

// Question is a single kanji reading question.
type Question struct {
	ID       string   `yaml:"id" json:"id"`
	Kanji    string   `yaml:"kanji" json:"kanji"`
	Readings []string `yaml:"readings" json:"readings"` // Accepted readings in hiragana; never empty
	Meaning  string   `yaml:"meaning" json:"meaning"`
	Level    Level    `yaml:"level" json:"level"`
	Hint     string   `yaml:"hint" json:"hint"`
}

// PrimaryReading returns the first accepted reading.
func (q Question) PrimaryReading() string {
	if len(q.Readings) == 0 {
		return ""
	}
	return q.Readings[0]
}

// IsCorrect reports whether answer matches one of the accepted readings
// after normalization.
func (q Question) IsCorrect(answer string) bool {
	normalized := NormalizeReading(answer)
	if normalized == "" {
		return false
	}
	for _, r := range q.Readings {
		if r == normalized {
			return true
		}
	}
	return false
}

// FallbackHint is the local hint: the stored hint plus the first character
// of the primary reading.
func (q Question) FallbackHint() string {
	first, _ := utf8.DecodeRuneInString(q.PrimaryReading())
	if first == utf8.RuneError {
		return q.Hint
	}
	return fmt.Sprintf("%s\n最初の文字: %c...", q.Hint, first)
}

// Validate checks the question invariants.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("question %q: missing id", q.Kanji)
	}
	if q.Kanji == "" {
		return fmt.Errorf("question %s: missing kanji", q.ID)
	}
	if len(q.Readings) == 0 {
		return fmt.Errorf("question %s: no readings", q.ID)
	}
	for _, r := range q.Readings {
		if r == "" {
			return fmt.Errorf("question %s: empty reading", q.ID)
		}
	}
	if !q.Level.Valid() {
		return fmt.Errorf("question %s: invalid level %d", q.ID, q.Level)
	}
	return nil
}
