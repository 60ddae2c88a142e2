// Package views contains the screens of the Kanji Monster TUI.
package views

import (
	"github.com/f3rmion/kanjimon/internal/battle"
	"github.com/f3rmion/kanjimon/internal/kanji"
)

// Game is the session the screens drive. *game.Session implements it.
type Game interface {
	Snapshot() battle.Snapshot
	Changes() <-chan struct{}
	BGMEnabled() bool

	StartGame(level *kanji.Level)
	SubmitAnswer(text string)
	SetAnswerText(text string)
	RequestHint()
	ReturnToTitle()
	AcknowledgeEvent(seq uint64)
	SetBGMEnabled(enabled bool)
}
