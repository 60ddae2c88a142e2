// Package battle implements the battle and progression state machine.
//
// A Controller is not safe for concurrent use. Every method, and every
// callback it schedules, must run on the thread of its sched.Scheduler.
package battle

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/looplab/fsm"

	"github.com/f3rmion/kanjimon/internal/countdown"
	"github.com/f3rmion/kanjimon/internal/flavor"
	"github.com/f3rmion/kanjimon/internal/kanji"
	"github.com/f3rmion/kanjimon/internal/progression"
	"github.com/f3rmion/kanjimon/internal/sched"
)

// Controller owns one player's game.
type Controller struct {
	catalog Catalog
	sched   sched.Scheduler
	flavor  *flavor.Gateway
	levels  LevelStore
	rng     *rand.Rand
	logger  *slog.Logger
	timing  Timing
	stale   StalePolicy

	storeTimeout time.Duration

	onChange      func()
	onEvent       func(Event)
	onPhaseChange func(from, to Phase)

	phase *fsm.FSM
	timer *countdown.Timer

	level    kanji.Level
	highest  kanji.Level
	maxHP    int
	hp       int
	streak   int
	score    int
	hits     int
	defeated int
	monster  kanji.Monster
	question kanji.Question
	used     map[string]bool
	answer   string

	event    Event
	eventSeq uint64

	hint        string
	dialogue    string
	loadingHint bool
	hintSeq     uint64
	dialogueSeq uint64
	spawnSeq    uint64

	// session and turn tag deferred continuations.
	session       uint64
	turn          uint64
	sessionCtx    context.Context
	cancelSession context.CancelFunc
}

// token identifies the session and turn a continuation was scheduled in.
type token struct {
	session uint64
	turn    uint64
}

// NewController creates a controller in the title phase.
func NewController(cfg *Config) (*Controller, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		catalog:       cfg.Catalog,
		sched:         cfg.Scheduler,
		flavor:        cfg.Flavor,
		levels:        cfg.Levels,
		rng:           cfg.Rand,
		logger:        cfg.Logger,
		timing:        cfg.Timing.withDefaults(),
		storeTimeout:  cfg.StoreTimeout,
		onChange:      cfg.OnChange,
		onEvent:       cfg.OnEvent,
		onPhaseChange: cfg.OnPhaseChange,
		level:         kanji.Kyu5,
		highest:       kanji.Kyu5,
		maxHP:         progression.MaxHP,
		hp:            progression.MaxHP,
		used:          make(map[string]bool),
	}
	c.stale, _ = ParseStalePolicy(string(cfg.StalePolicy))
	if c.storeTimeout <= 0 {
		c.storeTimeout = DefaultStoreTimeout
	}
	if c.flavor == nil {
		c.flavor = flavor.NewGateway(nil)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	c.timer = countdown.New(c.sched, c.timing.Tick)
	c.phase = newPhaseMachine(c.phaseChanged)
	c.sessionCtx, c.cancelSession = context.WithCancel(context.Background())
	c.question = c.catalog.DefaultQuestion()

	return c, nil
}

// StartGame begins a new session at level, or at the last played level,
// or at 5 kyu. It always succeeds.
func (c *Controller) StartGame(level *kanji.Level) {
	c.resetSession()

	var last *kanji.Level
	if level == nil {
		last = c.lastPlayed()
	}
	start := progression.StartingLevel(level, last)

	c.level = start
	c.highest = start
	c.hp = c.maxHP
	c.streak = 0
	c.score = 0
	c.hits = 0
	c.defeated = 0
	c.used = make(map[string]bool)
	c.answer = ""
	c.event = Event{}

	c.transition(eventStart)
	c.clearHint()
	c.clearDialogue()

	c.logger.Info("game started", "level", start, "session", c.session)
	c.spawn()
}

// SubmitAnswer resolves the current question. It is ignored when no answer
// window is open or the trimmed answer is empty.
func (c *Controller) SubmitAnswer(text string) {
	if !c.timer.Running() {
		return
	}
	answer := strings.TrimSpace(text)
	if answer == "" {
		return
	}

	c.timer.Stop()
	if c.question.IsCorrect(answer) {
		c.logger.Debug("correct answer", "question", c.question.ID)
		c.handleCorrect()
	} else {
		c.logger.Debug("wrong answer", "question", c.question.ID, "answer", answer)
		c.handleWrong()
	}

	c.answer = ""
	c.changed()
}

// SetAnswerText updates the input buffer.
func (c *Controller) SetAnswerText(text string) {
	if c.answer == text {
		return
	}
	c.answer = text
	c.changed()
}

// RequestHint publishes the local hint immediately and, if a generator is
// configured, replaces it with a generated one unless the question changes
// first. It is a no-op while a hint is shown or outside of play.
func (c *Controller) RequestHint() {
	if c.hint != "" || c.Phase() != PhasePlaying {
		return
	}

	q := c.question
	c.hint = c.flavor.FallbackHint(q)

	if c.flavor.Enabled() {
		c.hintSeq++
		seq := c.hintSeq
		ctx := c.sessionCtx
		c.loadingHint = true

		c.sched.Go(func() func() {
			text := c.flavor.Hint(ctx, q)
			return func() {
				if seq != c.hintSeq {
					return
				}
				c.hint = text
				c.loadingHint = false
				c.changed()
			}
		})
	}
	c.changed()
}

// ReturnToTitle persists the current level and leaves the session.
func (c *Controller) ReturnToTitle() {
	c.persistLevel()
	c.resetSession()
	c.clearHint()
	c.clearDialogue()
	c.transition(eventTitle)
	c.changed()
}

// AcknowledgeEvent clears the current event if seq is still current.
func (c *Controller) AcknowledgeEvent(seq uint64) {
	if seq != c.eventSeq || c.event.IsNone() {
		return
	}
	c.event = Event{}
	c.changed()
}

// resetSession invalidates the timer, pending continuations and in-flight
// generator calls of the current session.
func (c *Controller) resetSession() {
	c.timer.Stop()
	c.cancelSession()
	c.sessionCtx, c.cancelSession = context.WithCancel(context.Background())
	c.session++
	c.turn++
}

// spawn brings out a new monster for the current level.
func (c *Controller) spawn() {
	c.monster = c.catalog.RandomMonster(c.level)
	c.spawnSeq++
	c.hits = 0
	c.clearDialogue()
	c.logger.Debug("monster spawned", "monster", c.monster.Name, "level", c.level)
	c.nextQuestion()
}

// nextQuestion picks an unused question for the level and opens the answer
// window.
func (c *Controller) nextQuestion() {
	c.event = Event{}
	c.clearHint()
	c.turn++

	all := c.catalog.QuestionsForLevel(c.level)
	pool := make([]kanji.Question, 0, len(all))
	for _, q := range all {
		if !c.used[q.ID] {
			pool = append(pool, q)
		}
	}

	switch {
	case len(all) == 0:
		c.question = c.catalog.DefaultQuestion()
	case len(pool) == 0:
		c.used = make(map[string]bool)
		c.question = all[c.rng.IntN(len(all))]
	default:
		c.question = pool[c.rng.IntN(len(pool))]
	}
	c.used[c.question.ID] = true

	c.timer.Start(c.timing.AnswerWindow, c.onTick, c.onExpire)
	c.changed()
}

func (c *Controller) onTick(time.Duration) {
	c.changed()
}

// onExpire resolves a timed-out question as a wrong answer.
func (c *Controller) onExpire() {
	c.logger.Debug("answer window expired", "question", c.question.ID)
	c.handleWrong()
	c.changed()
}

func (c *Controller) handleCorrect() {
	c.turn++
	c.streak++
	c.hits++
	c.score += progression.ScoreForCorrectAnswer(c.level)

	switch {
	case progression.IsMonsterDefeated(c.hits):
		c.defeated++
		c.emit(Event{Kind: EventMonsterDefeated})
		c.requestDialogue(flavor.Defeated)
		c.after(c.timing.DefeatSettle, c.afterMonsterDefeated)
	case progression.IsWinStreak(c.streak):
		c.clearGame()
	default:
		c.emit(Event{Kind: EventCorrect})
		c.after(c.timing.CorrectDelay, c.nextQuestion)
	}
}

func (c *Controller) afterMonsterDefeated() {
	if progression.IsWinStreak(c.streak) {
		c.clearGame()
		c.changed()
		return
	}

	if next, ok := progression.HarderNeighbor(c.level); ok {
		c.level = next
		if next.HarderThan(c.highest) {
			c.highest = next
		}
		c.emit(Event{Kind: EventLevelUp, Level: next})
		c.logger.Info("level up", "level", next)
	}

	c.hits = 0
	c.clearHint()
	c.clearDialogue()
	c.after(c.timing.RespawnDelay, c.spawn)
	c.changed()
}

func (c *Controller) clearGame() {
	c.emit(Event{Kind: EventGameCleared})
	c.logger.Info("game cleared", "score", c.score, "defeated", c.defeated)
	c.after(c.timing.ClearDelay, func() {
		c.transition(eventFinish)
		c.changed()
	})
}

func (c *Controller) handleWrong() {
	c.turn++
	c.streak = 0
	c.hp--
	c.emit(Event{Kind: EventWrong})
	c.requestDialogue(flavor.Attacked)

	if c.hp <= 0 {
		c.after(c.timing.PlayerDefeatedDelay, c.playerDefeated)
		return
	}
	c.after(c.timing.WrongDelay, c.nextQuestion)
}

func (c *Controller) playerDefeated() {
	if prev, ok := progression.EasierNeighbor(c.level); ok {
		c.level = prev
		c.emit(Event{Kind: EventLevelDown, Level: prev})
		c.logger.Info("level down", "level", prev)
	}

	c.hp = c.maxHP
	c.hits = 0
	c.clearHint()
	c.clearDialogue()
	c.after(c.timing.RespawnDelay, c.spawn)
	c.changed()
}

// requestDialogue sets the monster's line for the situation. A generated
// line is applied while the same monster of the same session is out and no
// newer line was requested.
func (c *Controller) requestDialogue(s flavor.Situation) {
	c.dialogueSeq++
	if !c.flavor.Enabled() {
		c.dialogue = c.flavor.FallbackDialogue(c.level, s)
		return
	}

	seq, session, spawn := c.dialogueSeq, c.session, c.spawnSeq
	ctx := c.sessionCtx
	req := flavor.DialogueRequest{MonsterName: c.monster.Name, Situation: s, Level: c.level}
	c.sched.Go(func() func() {
		text := c.flavor.Dialogue(ctx, req)
		return func() {
			if seq != c.dialogueSeq || session != c.session || spawn != c.spawnSeq {
				return
			}
			c.dialogue = text
			c.changed()
		}
	})
}

func (c *Controller) clearHint() {
	c.hint = ""
	c.loadingHint = false
	c.hintSeq++
}

func (c *Controller) clearDialogue() {
	c.dialogue = ""
}

// after schedules fn tagged with the current session and turn.
func (c *Controller) after(d time.Duration, fn func()) {
	tok := token{session: c.session, turn: c.turn}
	c.sched.After(d, func() {
		if tok != (token{session: c.session, turn: c.turn}) && c.stale == StaleDiscard {
			c.logger.Debug("discarded stale continuation",
				"session", tok.session,
				"turn", tok.turn)
			return
		}
		fn()
	})
}

func (c *Controller) emit(e Event) {
	c.event = e
	c.eventSeq++
	if c.onEvent != nil {
		c.onEvent(e)
	}
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

func (c *Controller) phaseChanged(from, to Phase) {
	c.logger.Debug("phase changed", "from", from, "to", to)
	if c.onPhaseChange != nil {
		c.onPhaseChange(from, to)
	}
}

func (c *Controller) lastPlayed() *kanji.Level {
	if c.levels == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.sessionCtx, c.storeTimeout)
	defer cancel()
	level, err := c.levels.LastPlayedLevel(ctx)
	if err != nil {
		c.logger.Debug("no last played level", "error", err)
		return nil
	}
	return &level
}

func (c *Controller) persistLevel() {
	if c.levels == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.sessionCtx, c.storeTimeout)
	defer cancel()
	if err := c.levels.SetLastPlayedLevel(ctx, c.level); err != nil {
		c.logger.Warn("saving last played level", "level", c.level, "error", err)
	}
}
