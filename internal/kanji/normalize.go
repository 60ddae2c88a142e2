package kanji

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	katakanaStart = 'ァ' // U+30A1
	katakanaEnd   = 'ヶ' // U+30F6
	kanaOffset    = 'ァ' - 'ぁ'
)

// NormalizeReading trims whitespace, folds width variants (half-width
// katakana, full-width latin), maps katakana to hiragana and lowercases.
// The result is the canonical form readings are stored in.
func NormalizeReading(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	return strings.ToLower(KatakanaToHiragana(s))
}

// KatakanaToHiragana maps each katakana rune to its hiragana counterpart.
// Runes without a hiragana form (ー, ヷ..ヺ) are kept.
func KatakanaToHiragana(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= katakanaStart && r <= katakanaEnd:
			return r - kanaOffset
		case r == 'ヽ', r == 'ヾ':
			return r - kanaOffset
		}
		return r
	}, s)
}
