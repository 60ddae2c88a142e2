package views

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f3rmion/kanjimon/internal/battle"
	"github.com/f3rmion/kanjimon/internal/kanji"
)

type fakeGame struct {
	snap    battle.Snapshot
	changes chan struct{}
	bgm     bool

	started   []*kanji.Level
	answers   []string
	typed     []string
	hints     int
	titles    int
	acked     []uint64
	bgmToggle []bool
}

func newFakeGame() *fakeGame {
	return &fakeGame{changes: make(chan struct{}, 1), bgm: true}
}

func (g *fakeGame) Snapshot() battle.Snapshot   { return g.snap }
func (g *fakeGame) Changes() <-chan struct{}    { return g.changes }
func (g *fakeGame) BGMEnabled() bool            { return g.bgm }
func (g *fakeGame) StartGame(level *kanji.Level) { g.started = append(g.started, level) }
func (g *fakeGame) SubmitAnswer(text string)    { g.answers = append(g.answers, text) }
func (g *fakeGame) SetAnswerText(text string)   { g.typed = append(g.typed, text) }
func (g *fakeGame) RequestHint()                { g.hints++ }
func (g *fakeGame) ReturnToTitle()              { g.titles++ }
func (g *fakeGame) AcknowledgeEvent(seq uint64) { g.acked = append(g.acked, seq) }
func (g *fakeGame) SetBGMEnabled(enabled bool) {
	g.bgm = enabled
	g.bgmToggle = append(g.bgmToggle, enabled)
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) Write(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func playingSnapshot() battle.Snapshot {
	return battle.Snapshot{
		Phase:        battle.PhasePlaying,
		Level:        kanji.Kyu4,
		HighestLevel: kanji.Kyu4,
		PlayerHP:     2,
		MaxHP:        3,
		Streak:       1,
		Score:        40,
		Monster:      kanji.Monster{ID: 1, Name: "スライム", Sprite: "monster_01", Level: kanji.Kyu4, Color: kanji.ColorGreen},
		Question: kanji.Question{
			ID:       "q1",
			Kanji:    "山",
			Readings: []string{"やま", "さん"},
			Level:    kanji.Kyu4,
		},
		TimeRemaining: 5_000_000_000,
		AnswerWindow:  10_000_000_000,
		TimerRunning:  true,
	}
}

func TestTitleChoice(t *testing.T) {
	g := newFakeGame()
	m := NewTitleModel(g, nil)

	assert.Nil(t, m.Choice(), "defaults to continue")

	m, _ = m.Update(key("left"))
	assert.Nil(t, m.Choice(), "cannot move before continue")

	m, _ = m.Update(key("right"))
	require.NotNil(t, m.Choice())
	assert.Equal(t, kanji.Kyu5, *m.Choice())

	for range 10 {
		m, _ = m.Update(key("right"))
	}
	require.NotNil(t, m.Choice())
	assert.Equal(t, kanji.Kyu1, *m.Choice())

	m, _ = m.Update(key("enter"))
	require.Len(t, g.started, 1)
	require.NotNil(t, g.started[0])
	assert.Equal(t, kanji.Kyu1, *g.started[0])
}

func TestTitleContinueStartsWithNil(t *testing.T) {
	g := newFakeGame()
	m := NewTitleModel(g, nil)

	_, _ = m.Update(key("enter"))
	require.Len(t, g.started, 1)
	assert.Nil(t, g.started[0])
}

func TestTitleViewCredits(t *testing.T) {
	m := NewTitleModel(newFakeGame(), []kanji.Monster{{Name: "スライム", Sprite: "monster_01", Color: kanji.ColorLime}})

	view := m.View(battle.Snapshot{Phase: battle.PhaseTitle})
	assert.Contains(t, view, "© 2026 KanjiMonster")
	assert.Contains(t, view, "つづきから")
	assert.NotContains(t, view, "Gemini")

	view = m.View(battle.Snapshot{Phase: battle.PhaseTitle, FlavorEnabled: true})
	assert.Contains(t, view, "Powered by Gemini AI")
}

func TestBattleSubmitClearsInput(t *testing.T) {
	g := newFakeGame()
	m := NewBattleModel(g)

	m, _ = m.Update(key("やま"))
	assert.Equal(t, []string{"やま"}, g.typed)

	m, _ = m.Update(key("enter"))
	assert.Equal(t, []string{"やま"}, g.answers)
	assert.Empty(t, m.input.Value())
}

func TestBattleHintAndEscape(t *testing.T) {
	g := newFakeGame()
	m := NewBattleModel(g)

	m, _ = m.Update(key("tab"))
	assert.Equal(t, 1, g.hints)

	_, _ = m.Update(key("esc"))
	assert.Equal(t, 1, g.titles)
}

func TestBattleObserveSchedulesOneAckPerEvent(t *testing.T) {
	g := newFakeGame()
	m := NewBattleModel(g)

	snap := playingSnapshot()
	assert.Nil(t, m.Observe(snap), "no event")

	snap.Event = battle.Event{Kind: battle.EventCorrect}
	snap.EventSeq = 4
	assert.NotNil(t, m.Observe(snap))
	assert.Nil(t, m.Observe(snap), "same event is observed once")

	_, _ = m.Update(ackEventMsg{seq: 4})
	assert.Equal(t, []uint64{4}, g.acked)
}

func TestBattleView(t *testing.T) {
	m := NewBattleModel(newFakeGame())
	m.SetSize(80, 40)

	snap := playingSnapshot()
	view := m.View(snap, true)
	assert.Contains(t, view, "4級")
	assert.Contains(t, view, "SCORE 40")
	assert.Contains(t, view, "♥♥♡")
	assert.Contains(t, view, "♪ ON")
	assert.Contains(t, view, "スライム")

	snap.Event = battle.Event{Kind: battle.EventWrong}
	snap.Dialogue = "まだまだだな"
	view = m.View(snap, false)
	assert.Contains(t, view, "MISS!")
	assert.Contains(t, view, "正解: やま")
	assert.Contains(t, view, "まだまだだな")
	assert.Contains(t, view, "♪ OFF")
}

func TestRenderEvent(t *testing.T) {
	tests := []struct {
		name  string
		event battle.Event
		want  []string
	}{
		{"none", battle.Event{}, nil},
		{"correct", battle.Event{Kind: battle.EventCorrect}, []string{"HIT!"}},
		{"defeated", battle.Event{Kind: battle.EventMonsterDefeated}, []string{"DEFEATED!"}},
		{"level up", battle.Event{Kind: battle.EventLevelUp, Level: kanji.Kyu3}, []string{"LEVEL UP!", "3級に昇格！"}},
		{"level down", battle.Event{Kind: battle.EventLevelDown, Level: kanji.Kyu5}, []string{"LEVEL DOWN...", "5級に降格..."}},
		{"cleared", battle.Event{Kind: battle.EventGameCleared}, []string{"CLEAR!", "5問連続正解！"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := playingSnapshot()
			snap.Event = tt.event
			got := renderEvent(snap)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
		})
	}
}

func resultSnapshot(streak int) battle.Snapshot {
	return battle.Snapshot{
		Phase:         battle.PhaseResult,
		HighestLevel:  kanji.Kyu3,
		Score:         120,
		DefeatedCount: 2,
		Streak:        streak,
	}
}

func TestResultKeys(t *testing.T) {
	g := newFakeGame()
	m := NewResultModel(g, nil)
	snap := resultSnapshot(0)

	m, _ = m.Update(key("r"), snap)
	require.Len(t, g.started, 1)
	assert.Nil(t, g.started[0], "retry continues from the last level")

	_, _ = m.Update(key("t"), snap)
	assert.Equal(t, 1, g.titles)
}

func TestResultCopy(t *testing.T) {
	clip := &fakeClipboard{}
	m := NewResultModel(newFakeGame(), clip)
	snap := resultSnapshot(5)

	m, cmd := m.Update(key("y"), snap)
	assert.NotNil(t, cmd)
	assert.Equal(t, Summary(snap), clip.text)
	assert.Contains(t, m.View(snap), "コピーしました")

	m, _ = m.Update(resultClearCopiedMsg{}, snap)
	assert.NotContains(t, m.View(snap), "コピーしました")
}

func TestResultCopyFailure(t *testing.T) {
	m := NewResultModel(newFakeGame(), &fakeClipboard{err: errors.New("no display")})
	snap := resultSnapshot(0)

	m, _ = m.Update(key("y"), snap)
	assert.Contains(t, m.View(snap), "コピーできませんでした")

	m = NewResultModel(newFakeGame(), nil)
	m, _ = m.Update(key("y"), snap)
	assert.Contains(t, m.View(snap), "コピーできませんでした")
}

func TestResultView(t *testing.T) {
	m := NewResultModel(newFakeGame(), nil)

	view := m.View(resultSnapshot(2))
	assert.Contains(t, view, "GAME OVER")
	assert.Contains(t, view, "120")
	assert.Contains(t, view, "3級")

	view = m.View(resultSnapshot(5))
	assert.Contains(t, view, "GAME CLEAR!")
}

func TestSummary(t *testing.T) {
	assert.Equal(t,
		"漢字モンスター GAME CLEAR! SCORE 120 / DEFEATED 2 / HIGHEST 3級 / STREAK 5",
		Summary(resultSnapshot(5)))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "●●○○○", pips(2, 5, "●", "○"))
	assert.Equal(t, "█████░░░░░", bar(0.5, 10))
	assert.Equal(t, "░░░░", bar(-1, 4))
	assert.Equal(t, "████", bar(2, 4))
	assert.Equal(t, "漢字…", fit("漢字モンスター", 5))
	assert.Equal(t, "漢字\nモン\nスタ\nー", wrap("漢字モンスター", 4))
}
