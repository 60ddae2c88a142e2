package views

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/f3rmion/kanjimon/internal/battle"
	"github.com/f3rmion/kanjimon/internal/clipboard"
)

type resultClearCopiedMsg struct{}

func resultClearCopiedAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return resultClearCopiedMsg{}
	})
}

// ResultModel is the end-of-game screen.
type ResultModel struct {
	game    Game
	clip    clipboard.Writer
	copied  bool
	copyErr error
	width   int
	height  int
}

// NewResultModel creates the result screen. clip may be nil to disable
// copying.
func NewResultModel(game Game, clip clipboard.Writer) ResultModel {
	return ResultModel{game: game, clip: clip}
}

// SetSize updates the layout size.
func (m *ResultModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Summary is the one-line result shared to the clipboard.
func Summary(snap battle.Snapshot) string {
	outcome := "GAME OVER"
	if snap.Cleared() {
		outcome = "GAME CLEAR!"
	}
	return fmt.Sprintf("漢字モンスター %s SCORE %d / DEFEATED %d / HIGHEST %s / STREAK %d",
		outcome, snap.Score, snap.DefeatedCount, snap.HighestLevel.Label(), snap.Streak)
}

// Update handles input on the result screen.
func (m ResultModel) Update(msg tea.Msg, snap battle.Snapshot) (ResultModel, tea.Cmd) {
	switch msg := msg.(type) {
	case resultClearCopiedMsg:
		m.copied = false
		m.copyErr = nil
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r", "enter":
			m.copied = false
			m.game.StartGame(nil)
		case "t", "esc":
			m.copied = false
			m.game.ReturnToTitle()
		case "y":
			if m.clip == nil {
				m.copyErr = clipboard.ErrUnavailable
				return m, resultClearCopiedAfter(2 * time.Second)
			}
			m.copyErr = m.clip.Write(Summary(snap))
			m.copied = m.copyErr == nil
			return m, resultClearCopiedAfter(2 * time.Second)
		}
	}
	return m, nil
}

// View renders the result screen.
func (m ResultModel) View(snap battle.Snapshot) string {
	header := effectBadStyle.Render("GAME OVER")
	if snap.Cleared() {
		header = effectStyle.Render("GAME CLEAR!")
	}

	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Width(10).Render(label),
			textStyle.Width(8).Align(lipgloss.Right).Render(value),
		)
	}
	stats := panelStyle.Padding(1, 3).Render(lipgloss.JoinVertical(lipgloss.Left,
		row("SCORE", fmt.Sprint(snap.Score)),
		row("DEFEATED", fmt.Sprint(snap.DefeatedCount)),
		row("HIGHEST", snap.HighestLevel.Label()),
		row("STREAK", fmt.Sprint(snap.Streak)),
	))

	var status string
	switch {
	case m.copied:
		status = labelStyle.Render("コピーしました")
	case m.copyErr != nil:
		status = effectBadStyle.Render("コピーできませんでした")
	}

	return lipgloss.JoinVertical(lipgloss.Center,
		header,
		dimStyle.Render("──────────────"),
		"",
		stats,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top,
			selectedStyle.Render("↻ RETRY (r)"),
			"  ",
			optionStyle.Render("⌂ TITLE (t)"),
		),
		"",
		status,
		helpStyle.Render("y 結果をコピー • q 終了"),
	)
}
