package views

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/f3rmion/kanjimon/internal/battle"
	"github.com/f3rmion/kanjimon/internal/progression"
	"github.com/f3rmion/kanjimon/internal/tui/pixel"
)

// eventLinger is how long an outcome banner stays before it is acknowledged.
const eventLinger = 2 * time.Second

type ackEventMsg struct{ seq uint64 }

// BattleModel is the battle screen.
type BattleModel struct {
	game    Game
	input   textinput.Model
	seenSeq uint64
	width   int
	height  int
}

// NewBattleModel creates the battle screen.
func NewBattleModel(game Game) BattleModel {
	ti := textinput.New()
	ti.Placeholder = "よみがなを入力"
	ti.CharLimit = 32
	ti.Width = 24
	ti.Prompt = "› "
	ti.PromptStyle = labelStyle
	ti.TextStyle = textStyle
	ti.Focus()

	return BattleModel{game: game, input: ti}
}

// SetSize updates the layout size.
func (m *BattleModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Reset clears the answer field.
func (m *BattleModel) Reset() {
	m.input.Reset()
	m.input.Focus()
}

// Observe is called with every new snapshot. It schedules the
// acknowledgement of freshly emitted events.
func (m *BattleModel) Observe(snap battle.Snapshot) tea.Cmd {
	if snap.EventSeq == m.seenSeq || snap.Event.IsNone() {
		return nil
	}
	m.seenSeq = snap.EventSeq
	seq := snap.EventSeq
	return tea.Tick(eventLinger, func(time.Time) tea.Msg {
		return ackEventMsg{seq: seq}
	})
}

// Update handles input on the battle screen.
func (m BattleModel) Update(msg tea.Msg) (BattleModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ackEventMsg:
		m.game.AcknowledgeEvent(msg.seq)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			m.game.SubmitAnswer(m.input.Value())
			m.input.Reset()
			return m, nil
		case "tab":
			m.game.RequestHint()
			return m, nil
		case "esc":
			m.game.ReturnToTitle()
			m.input.Reset()
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.game.SetAnswerText(after)
	}
	return m, cmd
}

// View renders the battle screen.
func (m BattleModel) View(snap battle.Snapshot, bgm bool) string {
	width := max(m.width, 40)

	music := "♪ OFF"
	if bgm {
		music = "♪ ON"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		selectedStyle.Render(snap.Level.Label()),
		optionStyle.Render(fmt.Sprintf("SCORE %d", snap.Score)),
		optionStyle.Render(fmt.Sprintf("撃破 %d", snap.DefeatedCount)),
		dimStyle.Render(music),
	)

	status := lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render("HP "),
		textStyle.Render(pips(snap.PlayerHP, snap.MaxHP, "♥", "♡")),
		"   ",
		labelStyle.Render("連続 "),
		textStyle.Render(pips(snap.Streak, progression.WinStreak, "●", "○")),
	)

	monster := m.renderMonster(snap)
	kanji := m.renderKanji(snap)

	ratio := 0.0
	if snap.AnswerWindow > 0 {
		ratio = float64(snap.TimeRemaining) / float64(snap.AnswerWindow)
	}
	timer := lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render("TIME "),
		timerStyle(ratio).Render(bar(ratio, 20)),
		textStyle.Render(fmt.Sprintf(" %4.1f", snap.TimeRemaining.Seconds())),
	)

	sections := []string{header, status, "", monster, kanji, timer}

	if effect := renderEvent(snap); effect != "" {
		sections = append(sections, "", effect)
	}
	if snap.Dialogue != "" {
		sections = append(sections, bubbleStyle.Render(wrap(snap.Dialogue, width/2)))
	}
	switch {
	case snap.LoadingHint:
		sections = append(sections, panelStyle.Render(labelStyle.Render("ヒント ")+textStyle.Render(wrap(snap.Hint, width/2))+dimStyle.Render(" …")))
	case snap.Hint != "":
		sections = append(sections, panelStyle.Render(labelStyle.Render("ヒント ")+textStyle.Render(wrap(snap.Hint, width/2))))
	}

	input := m.input.View()
	if !snap.TimerRunning {
		input = dimStyle.Render(m.input.Value() + " …")
	}
	sections = append(sections, "", panelStyle.Render(input),
		helpStyle.Render("enter こたえる • tab ヒント • esc タイトル"))

	return lipgloss.JoinVertical(lipgloss.Center, sections...)
}

func (m BattleModel) renderMonster(snap battle.Snapshot) string {
	mon := snap.Monster
	sprite := pixel.Sprite(mon.Sprite).Render(spritePalette(mon.Color))
	if snap.Event.Kind == battle.EventMonsterDefeated {
		sprite = dimStyle.Render("✕ ✕ ✕")
	}
	hits := pips(progression.DefeatHits-snap.MonsterHitCount, progression.DefeatHits, "■", "□")
	return lipgloss.JoinVertical(lipgloss.Center,
		sprite,
		labelStyle.Render(fit(mon.Name, 20))+" "+textStyle.Render(hits),
	)
}

func (m BattleModel) renderKanji(snap battle.Snapshot) string {
	word := snap.Question.Kanji
	cols := min(16*len([]rune(word)), max(m.width-4, 16))
	if art := pixel.Cached(word, cols, 8); art != "" {
		return kanjiStyle.Render(art)
	}
	return kanjiStyle.Render(word)
}

func timerStyle(ratio float64) lipgloss.Style {
	switch {
	case ratio > 0.5:
		return lipgloss.NewStyle().Foreground(ColorLightest)
	case ratio > 0.25:
		return lipgloss.NewStyle().Foreground(ColorLight)
	default:
		return lipgloss.NewStyle().Foreground(ColorDark)
	}
}

// renderEvent draws the banner for the current outcome.
func renderEvent(snap battle.Snapshot) string {
	e := snap.Event
	switch e.Kind {
	case battle.EventCorrect:
		return effectStyle.Render("HIT!")
	case battle.EventWrong:
		return lipgloss.JoinVertical(lipgloss.Center,
			effectBadStyle.Render("MISS!"),
			labelStyle.Render("正解: "+snap.Question.PrimaryReading()),
		)
	case battle.EventMonsterDefeated:
		return effectStyle.Render("DEFEATED!")
	case battle.EventLevelUp:
		return lipgloss.JoinVertical(lipgloss.Center,
			effectStyle.Render("LEVEL UP!"),
			labelStyle.Render(e.Level.Label()+"に昇格！"),
		)
	case battle.EventLevelDown:
		return lipgloss.JoinVertical(lipgloss.Center,
			effectBadStyle.Render("LEVEL DOWN..."),
			dimStyle.Render(e.Level.Label()+"に降格..."),
		)
	case battle.EventGameCleared:
		return lipgloss.JoinVertical(lipgloss.Center,
			effectStyle.Render("CLEAR!"),
			labelStyle.Render(fmt.Sprintf("%d問連続正解！", progression.WinStreak)),
		)
	}
	return ""
}
