// Package progression holds the balance rules of a battle: scoring,
// defeat and win thresholds, and the level ladder.
package progression

import "github.com/f3rmion/kanjimon/internal/kanji"

const (
	MaxHP      = 3  // Player hit points at the start of a session and after a defeat
	DefeatHits = 3  // Correct answers needed to defeat one monster
	WinStreak  = 5  // Consecutive correct answers that end the game
	BasePoints = 10 // Points per correct answer before the level multiplier
)

// ScoreForCorrectAnswer returns the points awarded for a correct answer at level.
func ScoreForCorrectAnswer(level kanji.Level) int {
	return BasePoints * level.ScoreMultiplier()
}

// IsMonsterDefeated reports whether hitCount finishes the current monster.
func IsMonsterDefeated(hitCount int) bool {
	return hitCount >= DefeatHits
}

// IsWinStreak reports whether streak ends the game.
func IsWinStreak(streak int) bool {
	return streak >= WinStreak
}

// HarderNeighbor returns the next harder level, if any.
func HarderNeighbor(level kanji.Level) (kanji.Level, bool) {
	return level.Harder()
}

// EasierNeighbor returns the next easier level, if any.
func EasierNeighbor(level kanji.Level) (kanji.Level, bool) {
	return level.Easier()
}

// StartingLevel resolves the level a new game starts at: the explicit
// choice, else the last played level, else 5 kyu.
func StartingLevel(explicit *kanji.Level, lastPlayed *kanji.Level) kanji.Level {
	if explicit != nil && explicit.Valid() {
		return *explicit
	}
	if lastPlayed != nil && lastPlayed.Valid() {
		return *lastPlayed
	}
	return kanji.Kyu5
}
