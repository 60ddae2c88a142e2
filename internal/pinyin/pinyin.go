// Package pinyin gives the Mandarin reading of the Han characters in a
// kanji word, used as a cross-reference when listing the catalog.
package pinyin

import (
	"strings"

	gopinyin "github.com/mozillazg/go-pinyin"
)

// Parser converts Han characters to pinyin.
type Parser struct {
	args gopinyin.Args
}

// NewParser creates a parser that returns tone-marked syllables (zhōng).
func NewParser() *Parser {
	args := gopinyin.NewArgs()
	args.Style = gopinyin.Tone
	args.Heteronym = true
	return &Parser{args: args}
}

// Readings returns every pinyin reading of a single character, or nil for
// kana and other non-Han input.
func (p *Parser) Readings(char string) []string {
	result := gopinyin.Pinyin(char, p.args)
	if len(result) == 0 {
		return nil
	}
	return result[0]
}

// Word returns the first reading of each Han character in word, joined by
// spaces. Characters without a reading are dropped.
func (p *Parser) Word(word string) string {
	var syllables []string
	for _, r := range word {
		if readings := p.Readings(string(r)); len(readings) > 0 {
			syllables = append(syllables, readings[0])
		}
	}
	return strings.Join(syllables, " ")
}

var toneMarks = map[rune]struct {
	base rune
	tone int
}{
	'ā': {'a', 1}, 'á': {'a', 2}, 'ǎ': {'a', 3}, 'à': {'a', 4},
	'ē': {'e', 1}, 'é': {'e', 2}, 'ě': {'e', 3}, 'è': {'e', 4},
	'ī': {'i', 1}, 'í': {'i', 2}, 'ǐ': {'i', 3}, 'ì': {'i', 4},
	'ō': {'o', 1}, 'ó': {'o', 2}, 'ǒ': {'o', 3}, 'ò': {'o', 4},
	'ū': {'u', 1}, 'ú': {'u', 2}, 'ǔ': {'u', 3}, 'ù': {'u', 4},
	'ǖ': {'ü', 1}, 'ǘ': {'ü', 2}, 'ǚ': {'ü', 3}, 'ǜ': {'ü', 4},
}

// Tone splits a tone-marked syllable into its bare form and tone number.
// Unmarked syllables are neutral (5).
func Tone(syllable string) (string, int) {
	tone := 5
	var sb strings.Builder
	for _, r := range syllable {
		if mark, ok := toneMarks[r]; ok {
			sb.WriteRune(mark.base)
			tone = mark.tone
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String(), tone
}

// Numbered renders a word's pinyin with tone numbers (shan1 chuan1).
func (p *Parser) Numbered(word string) string {
	var out []string
	for _, s := range strings.Fields(p.Word(word)) {
		bare, tone := Tone(s)
		out = append(out, bare+string(rune('0'+tone)))
	}
	return strings.Join(out, " ")
}
