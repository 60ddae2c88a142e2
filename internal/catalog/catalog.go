// Package catalog holds the monster roster and the kanji question bank.
package catalog

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/f3rmion/kanjimon/internal/kanji"
)

// ErrEmpty is returned when a catalog has no monsters or no questions.
var ErrEmpty = errors.New("catalog: no monsters or questions")

// File is the on-disk catalog document.
type File struct {
	Monsters  []kanji.Monster  `yaml:"monsters"`
	Questions []kanji.Question `yaml:"questions"`
}

// Catalog is the read-only content store. It is safe for concurrent use.
type Catalog struct {
	monsters  []kanji.Monster
	questions []kanji.Question

	monstersByLevel  map[kanji.Level][]kanji.Monster
	questionsByLevel map[kanji.Level][]kanji.Question

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithSeed makes monster selection deterministic.
func WithSeed(seed uint64) Option {
	return func(c *Catalog) {
		c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// New builds a catalog. Readings are normalized to their canonical form;
// question and monster invariants are validated.
func New(f File, opts ...Option) (*Catalog, error) {
	if len(f.Monsters) == 0 || len(f.Questions) == 0 {
		return nil, ErrEmpty
	}

	c := &Catalog{
		monstersByLevel:  make(map[kanji.Level][]kanji.Monster),
		questionsByLevel: make(map[kanji.Level][]kanji.Question),
		rng:              rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(c)
	}

	monsterIDs := make(map[int]bool)
	for _, m := range f.Monsters {
		if err := validateMonster(m); err != nil {
			return nil, err
		}
		if monsterIDs[m.ID] {
			return nil, fmt.Errorf("monster %d: duplicate id", m.ID)
		}
		monsterIDs[m.ID] = true

		c.monsters = append(c.monsters, m)
		c.monstersByLevel[m.Level] = append(c.monstersByLevel[m.Level], m)
	}

	questionIDs := make(map[string]bool)
	for _, q := range f.Questions {
		q = normalizeQuestion(q)
		if err := q.Validate(); err != nil {
			return nil, err
		}
		if questionIDs[q.ID] {
			return nil, fmt.Errorf("question %s: duplicate id", q.ID)
		}
		questionIDs[q.ID] = true

		c.questions = append(c.questions, q)
		c.questionsByLevel[q.Level] = append(c.questionsByLevel[q.Level], q)
	}

	return c, nil
}

// MonstersForLevel returns the monsters whose base level is level, in
// catalog order.
func (c *Catalog) MonstersForLevel(level kanji.Level) []kanji.Monster {
	return append([]kanji.Monster(nil), c.monstersByLevel[level]...)
}

// RandomMonster picks a monster for level uniformly at random. If the level
// has no monsters the first catalog entry is returned.
func (c *Catalog) RandomMonster(level kanji.Level) kanji.Monster {
	pool := c.monstersByLevel[level]
	if len(pool) == 0 {
		return c.monsters[0]
	}

	c.mu.Lock()
	i := c.rng.IntN(len(pool))
	c.mu.Unlock()
	return pool[i]
}

// QuestionsForLevel returns the questions for level, in catalog order.
func (c *Catalog) QuestionsForLevel(level kanji.Level) []kanji.Question {
	return append([]kanji.Question(nil), c.questionsByLevel[level]...)
}

// DefaultQuestion is the first question in the catalog.
func (c *Catalog) DefaultQuestion() kanji.Question {
	return c.questions[0]
}

// Monsters returns every monster.
func (c *Catalog) Monsters() []kanji.Monster {
	return append([]kanji.Monster(nil), c.monsters...)
}

// Questions returns every question.
func (c *Catalog) Questions() []kanji.Question {
	return append([]kanji.Question(nil), c.questions...)
}

// File returns the catalog as a document suitable for Save.
func (c *Catalog) File() File {
	return File{Monsters: c.Monsters(), Questions: c.Questions()}
}

func validateMonster(m kanji.Monster) error {
	if m.Name == "" {
		return fmt.Errorf("monster %d: missing name", m.ID)
	}
	if !m.Level.Valid() {
		return fmt.Errorf("monster %s: invalid level %d", m.Name, m.Level)
	}
	if !m.Color.Valid() {
		return fmt.Errorf("monster %s: unknown color %q", m.Name, m.Color)
	}
	return nil
}

func normalizeQuestion(q kanji.Question) kanji.Question {
	readings := make([]string, 0, len(q.Readings))
	seen := make(map[string]bool)
	for _, r := range q.Readings {
		n := kanji.NormalizeReading(r)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		readings = append(readings, n)
	}
	q.Readings = readings
	return q
}
