// Package audio plays the battle background music.
package audio

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/f3rmion/kanjimon/internal/kanji"
)

// Track identifies a background theme.
type Track int

const (
	TrackNone Track = iota
	TrackNormal
	TrackBoss
)

func (t Track) String() string {
	switch t {
	case TrackNormal:
		return "normal"
	case TrackBoss:
		return "boss"
	default:
		return "none"
	}
}

// TrackFor picks the theme for a level: the easy tier (5 and 4 kyu) gets the
// normal theme, everything harder gets the boss theme.
func TrackFor(level kanji.Level) Track {
	if level == kanji.Kyu5 || level == kanji.Kyu4 {
		return TrackNormal
	}
	return TrackBoss
}

// Config controls the audio device.
type Config struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	Volume     float64 `mapstructure:"volume" yaml:"volume"` // 0.0 - 1.0
	SampleRate int     `mapstructure:"sample_rate" yaml:"sample_rate"`
}

// DefaultConfig returns sensible audio defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		Volume:     0.3,
		SampleRate: 44100,
	}
}

// Output is the sink streams are played on.
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Clear()
}

type speakerOutput struct{}

func (speakerOutput) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}

func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }

func (speakerOutput) Clear() { speaker.Clear() }

// Option configures a Player.
type Option func(*Player)

// WithOutput replaces the system speaker.
func WithOutput(o Output) Option {
	return func(p *Player) { p.out = o }
}

// WithLogger sets the logger for playback failures.
func WithLogger(l *slog.Logger) Option {
	return func(p *Player) { p.logger = l }
}

// Player switches between themes as the level changes. Playback failures
// are logged and otherwise ignored.
type Player struct {
	mu     sync.Mutex
	cfg    Config
	out    Output
	logger *slog.Logger

	enabled     bool // User toggle
	initialized bool
	broken      bool // Init failed; never retried
	want        Track
	current     Track
}

// NewPlayer creates a player. The device is opened lazily on first Play.
func NewPlayer(cfg Config, opts ...Option) *Player {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultConfig().SampleRate
	}
	p := &Player{
		cfg:     cfg,
		out:     speakerOutput{},
		logger:  slog.Default(),
		enabled: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play starts the theme for level unless it is already playing.
func (p *Player) Play(level kanji.Level) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.want = TrackFor(level)
	if p.want == p.current {
		return
	}
	p.start(p.want)
}

// Stop silences the music.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.want = TrackNone
	p.silence()
}

// SetEnabled toggles music. Re-enabling resumes the last requested theme.
func (p *Player) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.enabled = enabled
	if !enabled {
		p.silence()
		return
	}
	if p.want != TrackNone && p.want != p.current {
		p.start(p.want)
	}
}

// Enabled reports the user toggle.
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Current returns the theme that is actually playing.
func (p *Player) Current() Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Close stops playback.
func (p *Player) Close() error {
	p.Stop()
	return nil
}

func (p *Player) start(t Track) {
	if !p.cfg.Enabled || !p.enabled || !p.ensureInit() {
		return
	}

	rate := beep.SampleRate(p.cfg.SampleRate)
	p.out.Clear()
	p.out.Play(volume(newMelody(scores[t], rate), p.cfg.Volume))
	p.current = t
	p.logger.Debug("bgm switched", "track", t)
}

func (p *Player) silence() {
	if p.initialized {
		p.out.Clear()
	}
	p.current = TrackNone
}

func (p *Player) ensureInit() bool {
	if p.initialized {
		return true
	}
	if p.broken {
		return false
	}

	rate := beep.SampleRate(p.cfg.SampleRate)
	if err := p.out.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		p.broken = true
		p.logger.Warn("audio unavailable", "error", err)
		return false
	}
	p.initialized = true
	return true
}

// volume scales s linearly; zero or less is silent.
func volume(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(min(v, 1))}
}
