package battle

import (
	"fmt"

	"github.com/f3rmion/kanjimon/internal/kanji"
)

// EventKind identifies the outcome of a resolution cycle.
type EventKind int

const (
	EventNone EventKind = iota
	EventCorrect
	EventWrong
	EventMonsterDefeated
	EventLevelUp   // Level holds the new level
	EventLevelDown // Level holds the new level
	EventGameCleared
)

var eventNames = map[EventKind]string{
	EventNone:            "none",
	EventCorrect:         "correct",
	EventWrong:           "wrong",
	EventMonsterDefeated: "monster_defeated",
	EventLevelUp:         "level_up",
	EventLevelDown:       "level_down",
	EventGameCleared:     "game_cleared",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is a one-shot battle signal. It stays visible in snapshots until
// acknowledged or overwritten.
type Event struct {
	Kind  EventKind
	Level kanji.Level
}

func (e Event) String() string {
	if e.Kind == EventLevelUp || e.Kind == EventLevelDown {
		return fmt.Sprintf("%s(%s)", e.Kind, e.Level)
	}
	return e.Kind.String()
}

// IsNone reports whether e is the empty event.
func (e Event) IsNone() bool {
	return e.Kind == EventNone
}
