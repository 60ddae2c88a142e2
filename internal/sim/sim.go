// Package sim plays Kanji Monster headlessly: a bot answers questions on a
// virtual clock so whole games run in milliseconds and are reproducible.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/f3rmion/kanjimon/internal/battle"
	"github.com/f3rmion/kanjimon/internal/flavor"
	"github.com/f3rmion/kanjimon/internal/game"
	"github.com/f3rmion/kanjimon/internal/kanji"
	"github.com/f3rmion/kanjimon/internal/sched"
)

// wrongAnswer is never an accepted reading.
const wrongAnswer = "x"

// maxIdle bounds how long the bot waits for the next question.
const maxIdle = time.Minute

// Config configures a simulation.
type Config struct {
	Catalog  battle.Catalog
	Answers  int           // Questions to answer before stopping
	Accuracy float64       // Chance of answering correctly, 0..1
	Think    time.Duration // Virtual time spent on each question
	Seed     uint64
	Start    *kanji.Level // Nil starts at the last played level

	Store       game.Persistence // Optional
	Flavor      *flavor.Gateway  // Optional
	Logger      *slog.Logger     // Optional
	Timing      battle.Timing
	StalePolicy battle.StalePolicy
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Catalog == nil {
		return errors.New("catalog is required")
	}
	if c.Answers <= 0 {
		return fmt.Errorf("answers must be positive, got %d", c.Answers)
	}
	if c.Accuracy < 0 || c.Accuracy > 1 {
		return fmt.Errorf("accuracy must be between 0 and 1, got %g", c.Accuracy)
	}
	if c.Think < 0 {
		return errors.New("think time must not be negative")
	}
	return nil
}

// Report summarizes a finished simulation.
type Report struct {
	Final    battle.Snapshot
	Events   map[battle.EventKind]int
	Answered int
	Correct  int
	TimedOut int
	Elapsed  time.Duration // Virtual time
}

// Run plays until cfg.Answers questions are resolved, the game ends or ctx
// is cancelled.
func Run(ctx context.Context, cfg *Config) (Report, error) {
	if cfg == nil {
		return Report{}, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}

	report := Report{Events: make(map[battle.EventKind]int)}
	clock := sched.NewManual()
	s, err := game.NewSession(&game.Config{
		Catalog:     cfg.Catalog,
		Store:       cfg.Store,
		Flavor:      cfg.Flavor,
		Logger:      cfg.Logger,
		Rand:        rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1)),
		Timing:      cfg.Timing,
		StalePolicy: cfg.StalePolicy,
		Scheduler:   clock,
		OnEvent:     func(e battle.Event) { report.Events[e.Kind]++ },
	})
	if err != nil {
		return Report{}, err
	}
	defer s.Wait()

	bot := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5eed))
	tick := cfg.Timing.Tick
	if tick <= 0 {
		tick = battle.DefaultTiming().Tick
	}

	s.StartGame(cfg.Start)
	for report.Answered < cfg.Answers {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if !waitForQuestion(s, clock, tick) {
			break
		}

		before := s.Snapshot()
		q := before.Question
		clock.Advance(cfg.Think)
		report.Answered++

		if snap := s.Snapshot(); snap.EventSeq != before.EventSeq || !snap.TimerRunning {
			report.TimedOut++
			continue
		}

		answer := wrongAnswer
		if bot.Float64() < cfg.Accuracy {
			answer = q.PrimaryReading()
			report.Correct++
		}
		s.SetAnswerText(answer)
		s.SubmitAnswer(answer)
	}

	// Let pending continuations settle so the final snapshot is stable.
	waitForQuestion(s, clock, tick)

	report.Final = s.Snapshot()
	report.Elapsed = clock.Now()
	return report, nil
}

// waitForQuestion advances the clock until a question is open. It reports
// false when the game left the battle instead.
func waitForQuestion(s *game.Session, clock *sched.Manual, step time.Duration) bool {
	for waited := time.Duration(0); waited < maxIdle; waited += step {
		snap := s.Snapshot()
		if snap.Phase != battle.PhasePlaying {
			return false
		}
		if snap.TimerRunning {
			return true
		}
		clock.Advance(step)
	}
	return false
}
