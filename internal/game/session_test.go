package game_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/f3rmion/kanjimon/internal/battle"
	"github.com/f3rmion/kanjimon/internal/catalog"
	"github.com/f3rmion/kanjimon/internal/game"
	"github.com/f3rmion/kanjimon/internal/kanji"
	"github.com/f3rmion/kanjimon/internal/sched"
	"github.com/f3rmion/kanjimon/internal/store"
)

type fakeMusic struct {
	mu      sync.Mutex
	played  []kanji.Level
	stops   int
	enabled []bool
}

func (m *fakeMusic) Play(level kanji.Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.played = append(m.played, level)
}

func (m *fakeMusic) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
}

func (m *fakeMusic) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = append(m.enabled, enabled)
}

type failingStore struct {
	*store.Memory
}

func (failingStore) RecordResult(context.Context, store.Result) error {
	return errors.New("disk full")
}

type SessionTestSuite struct {
	suite.Suite
	clock   *sched.Manual
	catalog *catalog.Catalog
	store   *store.Memory
	music   *fakeMusic
	session *game.Session
	timing  battle.Timing
}

func (s *SessionTestSuite) SetupTest() {
	var err error
	s.clock = sched.NewManual()
	s.catalog, err = catalog.Default(catalog.WithSeed(3))
	s.Require().NoError(err)
	s.store = store.NewMemory(10)
	s.music = &fakeMusic{}
	s.timing = battle.DefaultTiming()
	s.session = s.newSession(s.store)
}

func (s *SessionTestSuite) newSession(p game.Persistence) *game.Session {
	session, err := game.NewSession(&game.Config{
		Catalog:   s.catalog,
		Store:     p,
		Music:     s.music,
		Rand:      rand.New(rand.NewPCG(1, 2)),
		Scheduler: s.clock,
	})
	s.Require().NoError(err)
	return session
}

func (s *SessionTestSuite) answerCorrectly() {
	snap := s.session.Snapshot()
	s.session.SubmitAnswer(snap.Question.PrimaryReading())
}

func (s *SessionTestSuite) TestNewSessionValidation() {
	_, err := game.NewSession(nil)
	s.EqualError(err, "config is required")

	_, err = game.NewSession(&game.Config{})
	s.EqualError(err, "catalog is required")
}

func (s *SessionTestSuite) TestInitialState() {
	snap := s.session.Snapshot()
	s.Equal(battle.PhaseTitle, snap.Phase)
	s.True(s.session.BGMEnabled())
	s.Equal([]bool{true}, s.music.enabled)

	select {
	case <-s.session.Changes():
	default:
		s.Fail("expected an initial change signal")
	}
}

func (s *SessionTestSuite) TestRunRequiresOwnLoop() {
	s.Error(s.session.Run(context.Background()))
}

func (s *SessionTestSuite) TestBGMSettingRestored() {
	s.Require().NoError(s.store.SetBGMEnabled(context.Background(), false))
	s.music = &fakeMusic{}

	session := s.newSession(s.store)
	s.False(session.BGMEnabled())
	s.Equal([]bool{false}, s.music.enabled)
}

func (s *SessionTestSuite) TestSetBGMEnabledPersists() {
	s.session.StartGame(nil)
	s.session.SetBGMEnabled(false)
	s.False(s.session.BGMEnabled())

	enabled, err := s.store.BGMEnabled(context.Background())
	s.Require().NoError(err)
	s.False(enabled)

	s.session.SetBGMEnabled(true)
	s.Equal([]bool{true, false, true}, s.music.enabled)
	// Re-enabling during play restarts the current theme.
	s.Equal([]kanji.Level{kanji.Kyu5, kanji.Kyu5}, s.music.played)
}

func (s *SessionTestSuite) TestStartGamePlaysMusicAndPublishes() {
	<-s.session.Changes()

	s.session.StartGame(nil)

	snap := s.session.Snapshot()
	s.Equal(battle.PhasePlaying, snap.Phase)
	s.Equal(kanji.Kyu5, snap.Level)
	s.Equal([]kanji.Level{kanji.Kyu5}, s.music.played)
	s.Len(s.session.Changes(), 1)
}

func (s *SessionTestSuite) TestStartsAtLastPlayedLevel() {
	s.Require().NoError(s.store.SetLastPlayedLevel(context.Background(), kanji.Kyu2))

	s.session.StartGame(nil)

	s.Equal(kanji.Kyu2, s.session.Snapshot().Level)
	s.Equal([]kanji.Level{kanji.Kyu2}, s.music.played)
}

func (s *SessionTestSuite) TestLevelUpSwitchesMusic() {
	s.session.StartGame(nil)

	for range 2 {
		s.answerCorrectly()
		s.clock.Advance(s.timing.CorrectDelay)
	}
	s.answerCorrectly()
	s.Equal(battle.EventMonsterDefeated, s.session.Snapshot().Event.Kind)

	s.clock.Advance(s.timing.DefeatSettle)
	snap := s.session.Snapshot()
	s.Equal(battle.EventLevelUp, snap.Event.Kind)
	s.Equal(kanji.Kyu4, snap.Level)
	s.Equal([]kanji.Level{kanji.Kyu5, kanji.Kyu4}, s.music.played)
}

func (s *SessionTestSuite) TestReturnToTitleRecordsHistory() {
	s.session.StartGame(nil)
	s.answerCorrectly()

	s.session.ReturnToTitle()
	s.session.Wait()

	s.Equal(battle.PhaseTitle, s.session.Snapshot().Phase)
	s.Equal(1, s.music.stops)

	results, err := s.store.RecentResults(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(10, results[0].Score)
	s.Equal(1, results[0].Streak)
	s.Equal(kanji.Kyu5, results[0].Highest)
	s.False(results[0].Cleared)

	level, err := s.store.LastPlayedLevel(context.Background())
	s.Require().NoError(err)
	s.Equal(kanji.Kyu5, level)
}

func (s *SessionTestSuite) TestClearedGameRecordedOnce() {
	s.session.StartGame(nil)

	for range 4 {
		s.answerCorrectly()
		snap := s.session.Snapshot()
		if snap.Event.Kind == battle.EventMonsterDefeated {
			s.clock.Advance(s.timing.DefeatSettle + s.timing.RespawnDelay)
			continue
		}
		s.clock.Advance(s.timing.CorrectDelay)
	}
	s.answerCorrectly()
	s.Equal(5, s.session.Snapshot().Streak)

	s.clock.Advance(s.timing.DefeatSettle + s.timing.ClearDelay)
	s.Equal(battle.PhaseResult, s.session.Snapshot().Phase)
	s.True(s.session.Snapshot().Cleared())

	s.session.ReturnToTitle()
	s.session.Wait()

	results, err := s.store.RecentResults(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.True(results[0].Cleared)
	s.Equal(5, results[0].Streak)
}

func (s *SessionTestSuite) TestHistoryFailureIsIgnored() {
	session := s.newSession(failingStore{s.store})
	session.StartGame(nil)
	session.ReturnToTitle()
	session.Wait()

	s.Equal(battle.PhaseTitle, session.Snapshot().Phase)
}

func TestSessionTestSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}

func TestSessionOnRealLoop(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	session, err := game.NewSession(&game.Config{Catalog: cat})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()

	session.StartGame(nil)
	require.Eventually(t, func() bool {
		select {
		case <-session.Changes():
		default:
		}
		return session.Snapshot().Phase == battle.PhasePlaying
	}, time.Second, 5*time.Millisecond)

	snap := session.Snapshot()
	assert.Equal(t, 3, snap.PlayerHP)
	assert.True(t, snap.TimerRunning)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("session did not stop")
	}

	// Drain any pending signal; the channel must then report closed.
	select {
	case _, ok := <-session.Changes():
		if ok {
			_, ok = <-session.Changes()
		}
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("changes not closed after Run returned")
	}
}
