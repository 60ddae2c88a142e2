// Package flavor supplies hint and monster dialogue text. A remote
// Generator is optional; every call degrades to local fallback text and
// never fails.
package flavor

//go:generate mockgen -destination=mock/mock_generator.go -package=flavormock github.com/f3rmion/kanjimon/internal/flavor Generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/f3rmion/kanjimon/internal/kanji"
)

// DefaultTimeout bounds every generator call.
const DefaultTimeout = 5 * time.Second

const (
	maxHintRunes     = 200
	maxDialogueRunes = 60
)

// ErrMalformed is returned for empty or oversized generated text.
var ErrMalformed = errors.New("flavor: malformed generated text")

// Situation is the moment a monster speaks.
type Situation int

const (
	Attacked Situation = iota // The monster hit the player
	Defeated                  // The monster was defeated
)

func (s Situation) String() string {
	if s == Defeated {
		return "defeated"
	}
	return "attacked"
}

// DialogueRequest describes a line of monster dialogue.
type DialogueRequest struct {
	MonsterName string
	Situation   Situation
	Level       kanji.Level
}

// Generator produces flavor text from a remote service.
type Generator interface {
	GenerateHint(ctx context.Context, q kanji.Question) (string, error)
	GenerateDialogue(ctx context.Context, req DialogueRequest) (string, error)
}

// Gateway wraps an optional Generator with a timeout and local fallbacks.
type Gateway struct {
	gen     Generator
	timeout time.Duration
	logger  *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLogger sets the logger used for generator failures.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithSeed makes fallback selection deterministic.
func WithSeed(seed uint64) Option {
	return func(g *Gateway) {
		g.rng = rand.New(rand.NewPCG(seed, ^seed))
	}
}

// NewGateway creates a gateway. gen may be nil, in which case only local
// fallbacks are used.
func NewGateway(gen Generator, opts ...Option) *Gateway {
	g := &Gateway{
		gen:     gen,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Enabled reports whether a remote generator is configured.
func (g *Gateway) Enabled() bool {
	return g != nil && g.gen != nil
}

// FallbackHint is the local hint for q.
func (g *Gateway) FallbackHint(q kanji.Question) string {
	return q.FallbackHint()
}

// FallbackDialogue picks a local line for the level and situation.
func (g *Gateway) FallbackDialogue(level kanji.Level, s Situation) string {
	lines := fallbackDialogue[kanji.Kyu5][s]
	if byLevel, ok := fallbackDialogue[level]; ok {
		lines = byLevel[s]
	}

	g.mu.Lock()
	i := g.rng.IntN(len(lines))
	g.mu.Unlock()
	return lines[i]
}

// Hint returns a generated hint for q, or the local fallback.
func (g *Gateway) Hint(ctx context.Context, q kanji.Question) string {
	if !g.Enabled() {
		return g.FallbackHint(q)
	}

	text, err := g.call(ctx, maxHintRunes, func(ctx context.Context) (string, error) {
		return g.gen.GenerateHint(ctx, q)
	})
	if err != nil {
		g.logger.Debug("hint generation failed", "question", q.ID, "error", err)
		return g.FallbackHint(q)
	}
	return text
}

// Dialogue returns a generated line for req, or a local fallback.
func (g *Gateway) Dialogue(ctx context.Context, req DialogueRequest) string {
	if !g.Enabled() {
		return g.FallbackDialogue(req.Level, req.Situation)
	}

	text, err := g.call(ctx, maxDialogueRunes, func(ctx context.Context) (string, error) {
		return g.gen.GenerateDialogue(ctx, req)
	})
	if err != nil {
		g.logger.Debug("dialogue generation failed",
			"monster", req.MonsterName,
			"situation", req.Situation,
			"error", err)
		return g.FallbackDialogue(req.Level, req.Situation)
	}
	return text
}

func (g *Gateway) call(ctx context.Context, maxRunes int, fn func(context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("generator panic: %v", r)}
			}
		}()
		text, err := fn(ctx)
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		return clean(r.text, maxRunes)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// clean trims whitespace and surrounding quotes and rejects text that is
// empty or longer than maxRunes.
func clean(text string, maxRunes int) (string, error) {
	text = strings.TrimSpace(text)
	for _, pair := range [][2]string{{"「", "」"}, {"『", "』"}, {`"`, `"`}} {
		if strings.HasPrefix(text, pair[0]) && strings.HasSuffix(text, pair[1]) && len(text) >= len(pair[0])+len(pair[1]) {
			text = strings.TrimSpace(text[len(pair[0]) : len(text)-len(pair[1])])
		}
	}
	if text == "" || !utf8.ValidString(text) {
		return "", ErrMalformed
	}
	if utf8.RuneCountInString(text) > maxRunes {
		return "", fmt.Errorf("%w: %d runes", ErrMalformed, utf8.RuneCountInString(text))
	}
	return text, nil
}
