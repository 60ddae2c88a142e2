// Package game runs one player's battle on its own event loop and exposes it
// to a UI running on another goroutine.
package game

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/f3rmion/kanjimon/internal/battle"
	"github.com/f3rmion/kanjimon/internal/flavor"
	"github.com/f3rmion/kanjimon/internal/kanji"
	"github.com/f3rmion/kanjimon/internal/progression"
	"github.com/f3rmion/kanjimon/internal/sched"
	"github.com/f3rmion/kanjimon/internal/store"
)

// Music plays background themes. *audio.Player implements it.
type Music interface {
	Play(level kanji.Level)
	Stop()
	SetEnabled(enabled bool)
}

// Persistence is what a session reads and writes between games.
type Persistence interface {
	store.Settings
	store.History
}

// Config configures a Session.
type Config struct {
	Catalog battle.Catalog

	Store  Persistence     // Optional
	Flavor *flavor.Gateway // Optional
	Music  Music           // Optional
	Logger *slog.Logger    // Optional
	Rand   *rand.Rand      // Optional

	Timing      battle.Timing
	StalePolicy battle.StalePolicy

	// OnEvent observes every battle event after the session has handled it.
	OnEvent func(battle.Event)

	// Scheduler replaces the real-time loop. Callers that supply one drive
	// it themselves and must not call Run.
	Scheduler sched.Scheduler
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Catalog == nil {
		return errors.New("catalog is required")
	}
	return nil
}

// storeTimeout bounds each persistence call made from the loop.
const storeTimeout = 2 * time.Second

// Session owns a Controller and the loop it runs on. Its methods are safe to
// call from any goroutine; they post work to the loop.
type Session struct {
	loop    *sched.Loop
	exec    func(func())
	ctrl    *battle.Controller
	store   Persistence
	music   Music
	logger  *slog.Logger
	onEvent func(battle.Event)

	changes   chan struct{}
	closeOnce sync.Once

	mu   sync.RWMutex
	snap battle.Snapshot
	bgm  bool

	wg sync.WaitGroup
}

// NewSession creates a session in the title phase.
func NewSession(cfg *Config) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		store:   cfg.Store,
		music:   cfg.Music,
		logger:  cfg.Logger,
		onEvent: cfg.OnEvent,
		changes: make(chan struct{}, 1),
		bgm:     true,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	scheduler := cfg.Scheduler
	if scheduler == nil {
		s.loop = sched.NewLoop(64)
		scheduler = s.loop
		s.exec = func(fn func()) {
			if err := s.loop.Post(fn); err != nil {
				s.logger.Debug("dropping input after loop stopped", "error", err)
			}
		}
	} else {
		s.exec = func(fn func()) { fn() }
	}

	bcfg := &battle.Config{
		Catalog:       cfg.Catalog,
		Scheduler:     scheduler,
		Flavor:        cfg.Flavor,
		Rand:          cfg.Rand,
		Logger:        s.logger,
		Timing:        cfg.Timing,
		StalePolicy:   cfg.StalePolicy,
		OnChange:      s.publish,
		OnEvent:       s.handleEvent,
		OnPhaseChange: s.handlePhaseChange,
	}
	if cfg.Store != nil {
		bcfg.Levels = cfg.Store
	}

	ctrl, err := battle.NewController(bcfg)
	if err != nil {
		return nil, err
	}
	s.ctrl = ctrl

	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		enabled, err := s.store.BGMEnabled(ctx)
		cancel()
		if err != nil {
			s.logger.Warn("reading bgm setting", "error", err)
		} else {
			s.bgm = enabled
		}
	}
	if s.music != nil {
		s.music.SetEnabled(s.bgm)
	}

	s.publish()
	return s, nil
}

// Run processes the session until ctx is cancelled. It is a no-op error for
// sessions built on an external scheduler. Changes is closed when Run returns.
func (s *Session) Run(ctx context.Context) error {
	if s.loop == nil {
		return errors.New("session uses an external scheduler")
	}
	err := s.loop.Run(ctx)
	// The loop no longer accepts jobs, so nothing can publish after this.
	s.closeOnce.Do(func() { close(s.changes) })
	if s.music != nil {
		s.music.Stop()
	}
	s.wg.Wait()
	return err
}

// Changes delivers a signal after state changes. Signals coalesce: a reader
// that falls behind sees one pending signal, then reads the latest Snapshot.
// The channel is closed once Run has returned.
func (s *Session) Changes() <-chan struct{} {
	return s.changes
}

// Snapshot returns the most recently published state.
func (s *Session) Snapshot() battle.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// BGMEnabled reports the music toggle.
func (s *Session) BGMEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bgm
}

// StartGame starts a game at level, or at the last played level when nil.
func (s *Session) StartGame(level *kanji.Level) {
	s.exec(func() { s.ctrl.StartGame(level) })
}

// SubmitAnswer submits text as the answer to the current question.
func (s *Session) SubmitAnswer(text string) {
	s.exec(func() { s.ctrl.SubmitAnswer(text) })
}

// SetAnswerText mirrors the input field.
func (s *Session) SetAnswerText(text string) {
	s.exec(func() { s.ctrl.SetAnswerText(text) })
}

// RequestHint asks for a hint for the current question.
func (s *Session) RequestHint() {
	s.exec(s.ctrl.RequestHint)
}

// ReturnToTitle abandons the current game.
func (s *Session) ReturnToTitle() {
	s.exec(s.ctrl.ReturnToTitle)
}

// AcknowledgeEvent clears the event published with seq.
func (s *Session) AcknowledgeEvent(seq uint64) {
	s.exec(func() { s.ctrl.AcknowledgeEvent(seq) })
}

// SetBGMEnabled toggles and persists the music setting.
func (s *Session) SetBGMEnabled(enabled bool) {
	s.exec(func() {
		s.mu.Lock()
		s.bgm = enabled
		s.mu.Unlock()

		if s.music != nil {
			s.music.SetEnabled(enabled)
			if enabled && s.ctrl.Phase() == battle.PhasePlaying {
				s.music.Play(s.ctrl.Snapshot().Level)
			}
		}
		if s.store != nil {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()
			if err := s.store.SetBGMEnabled(ctx, enabled); err != nil {
				s.logger.Warn("saving bgm setting", "error", err)
			}
		}
		s.publish()
	})
}

// publish runs on the loop after every change.
func (s *Session) publish() {
	if s.ctrl == nil {
		return
	}
	snap := s.ctrl.Snapshot()

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func (s *Session) handleEvent(e battle.Event) {
	s.logger.Debug("battle event", "event", e)
	if s.music != nil && (e.Kind == battle.EventLevelUp || e.Kind == battle.EventLevelDown) {
		s.music.Play(e.Level)
	}
	if s.onEvent != nil {
		s.onEvent(e)
	}
}

func (s *Session) handlePhaseChange(from, to battle.Phase) {
	if s.ctrl == nil {
		return
	}
	snap := s.ctrl.Snapshot()

	if s.music != nil {
		if to == battle.PhasePlaying {
			s.music.Play(snap.Level)
		} else {
			s.music.Stop()
		}
	}

	if from == battle.PhasePlaying && s.store != nil {
		s.recordResult(store.Result{
			Score:    snap.Score,
			Defeated: snap.DefeatedCount,
			Streak:   snap.Streak,
			Highest:  snap.HighestLevel,
			Cleared:  to == battle.PhaseResult && progression.IsWinStreak(snap.Streak),
		})
	}
}

// recordResult writes off the loop so a slow store never stalls input.
func (s *Session) recordResult(r store.Result) {
	r = store.NewResult(r)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := s.store.RecordResult(ctx, r); err != nil {
			s.logger.Warn("recording result", "error", err)
		}
	}()
}

// Wait blocks until pending history writes finish.
func (s *Session) Wait() {
	s.wg.Wait()
}
