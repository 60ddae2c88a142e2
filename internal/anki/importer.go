package anki

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/f3rmion/kanjimon/internal/kanji"
)

// ImportOptions maps note fields onto question fields.
type ImportOptions struct {
	Level        kanji.Level
	KanjiField   string
	ReadingField string
	MeaningField string // Optional
	HintField    string // Optional
	IDPrefix     string // Defaults to "anki"
}

// Validate checks required fields.
func (o ImportOptions) Validate() error {
	if !o.Level.Valid() {
		return fmt.Errorf("invalid level %d", int(o.Level))
	}
	if o.KanjiField == "" {
		return errors.New("kanji field is required")
	}
	if o.ReadingField == "" {
		return errors.New("reading field is required")
	}
	return nil
}

// Skipped records a note that could not become a question.
type Skipped struct {
	NoteID int64
	Reason string
}

// Questions converts the package's notes into questions. Notes missing a
// kanji or a reading are skipped, not fatal.
func (p *Package) Questions(opts ImportOptions) ([]kanji.Question, []Skipped, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	prefix := opts.IDPrefix
	if prefix == "" {
		prefix = "anki"
	}

	var (
		questions []kanji.Question
		skipped   []Skipped
	)
	for _, note := range p.Notes {
		raw, ok := p.FieldValue(note, opts.KanjiField)
		if !ok {
			skipped = append(skipped, Skipped{note.ID, fmt.Sprintf("no field %q", opts.KanjiField)})
			continue
		}
		word := StripHTML(raw)
		if word == "" {
			skipped = append(skipped, Skipped{note.ID, "empty kanji"})
			continue
		}

		rawReading, _ := p.FieldValue(note, opts.ReadingField)
		readings := SplitReadings(rawReading)
		if len(readings) == 0 {
			skipped = append(skipped, Skipped{note.ID, "no readings"})
			continue
		}

		q := kanji.Question{
			ID:       fmt.Sprintf("%s-%d", prefix, note.ID),
			Kanji:    word,
			Readings: readings,
			Level:    opts.Level,
		}
		if opts.MeaningField != "" {
			v, _ := p.FieldValue(note, opts.MeaningField)
			q.Meaning = StripHTML(v)
		}
		if opts.HintField != "" {
			v, _ := p.FieldValue(note, opts.HintField)
			q.Hint = StripHTML(v)
		}
		if err := q.Validate(); err != nil {
			skipped = append(skipped, Skipped{note.ID, err.Error()})
			continue
		}
		questions = append(questions, q)
	}
	return questions, skipped, nil
}

var (
	tagPattern       = regexp.MustCompile(`(?s)<[^>]*>`)
	furiganaPattern  = regexp.MustCompile(`\[[^\]]*\]`)
	readingSeparator = regexp.MustCompile(`[、,/・;；，／\s]+`)
)

// StripHTML removes markup, entities and Anki furigana brackets.
func StripHTML(s string) string {
	s = strings.ReplaceAll(s, "<br>", " ")
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = furiganaPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SplitReadings splits a reading field into normalized, deduplicated
// hiragana readings.
func SplitReadings(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range readingSeparator.Split(StripHTML(s), -1) {
		r := kanji.NormalizeReading(part)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
