package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/f3rmion/kanjimon/internal/battle"
	"github.com/f3rmion/kanjimon/internal/clipboard"
	"github.com/f3rmion/kanjimon/internal/kanji"
	"github.com/f3rmion/kanjimon/internal/tui/views"
)

// changedMsg is sent when the game published a new snapshot.
type changedMsg struct{}

// waitForChange blocks on the game's change signal.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// Options configures the app.
type Options struct {
	Showcase  []kanji.Monster
	Clipboard clipboard.Writer
}

// AppModel is the root model. It routes input to the screen for the current
// phase and redraws whenever the game changes.
type AppModel struct {
	game views.Game
	snap battle.Snapshot

	title  views.TitleModel
	battle views.BattleModel
	result views.ResultModel

	width    int
	height   int
	ready    bool
	showHelp bool
}

// NewApp creates the root model for game.
func NewApp(game views.Game, opts Options) AppModel {
	return AppModel{
		game:   game,
		snap:   game.Snapshot(),
		title:  views.NewTitleModel(game, opts.Showcase),
		battle: views.NewBattleModel(game),
		result: views.NewResultModel(game, opts.Clipboard),
	}
}

// Init starts listening for game changes.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.title.Init(),
		waitForChange(m.game.Changes()),
	)
}

// Update handles messages.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		prev := m.snap.Phase
		m.snap = m.game.Snapshot()
		if m.snap.Phase == battle.PhasePlaying && prev != battle.PhasePlaying {
			m.battle.Reset()
		}
		return m, tea.Batch(m.battle.Observe(m.snap), waitForChange(m.game.Changes()))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.title.SetSize(msg.Width, msg.Height)
		m.battle.SetSize(msg.Width, msg.Height)
		m.result.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		playing := m.snap.Phase == battle.PhasePlaying
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if !playing {
				return m, tea.Quit
			}
		case "?":
			if !playing {
				m.showHelp = true
				return m, nil
			}
		case "m":
			if !playing {
				m.game.SetBGMEnabled(!m.game.BGMEnabled())
				return m, nil
			}
		case "ctrl+b":
			m.game.SetBGMEnabled(!m.game.BGMEnabled())
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.snap.Phase {
	case battle.PhaseTitle:
		m.title, cmd = m.title.Update(msg)
	case battle.PhasePlaying:
		m.battle, cmd = m.battle.Update(msg)
	case battle.PhaseResult:
		m.result, cmd = m.result.Update(msg, m.snap)
	}

	// Ticks belong to a screen regardless of which one is showing.
	switch msg.(type) {
	case tea.KeyMsg:
	default:
		if m.snap.Phase != battle.PhaseTitle {
			var titleCmd tea.Cmd
			m.title, titleCmd = m.title.Update(msg)
			cmd = tea.Batch(cmd, titleCmd)
		}
		if m.snap.Phase != battle.PhasePlaying {
			var battleCmd tea.Cmd
			m.battle, battleCmd = m.battle.Update(msg)
			cmd = tea.Batch(cmd, battleCmd)
		}
	}
	return m, cmd
}

// View renders the current screen.
func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var content string
	switch m.snap.Phase {
	case battle.PhaseTitle:
		content = m.title.View(m.snap)
	case battle.PhasePlaying:
		content = m.battle.View(m.snap, m.game.BGMEnabled())
	case battle.PhaseResult:
		content = m.result.View(m.snap)
	}

	return ScreenStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, content))
}

// renderHelp renders the help overlay
func (m AppModel) renderHelp() string {
	row := func(key, desc string) string {
		return HelpKeyStyle.Render(key) + HelpDescStyle.Render(desc) + "\n"
	}

	text := HelpTitleStyle.Render("漢字モンスター") + "\n\n"

	text += HelpSectionStyle.Render("Title") + "\n"
	text += row("←/→", "Choose level")
	text += row("enter", "Start")
	text += row("m", "Toggle BGM")

	text += HelpSectionStyle.Render("Battle") + "\n"
	text += row("enter", "Answer")
	text += row("tab", "Hint")
	text += row("ctrl+b", "Toggle BGM")
	text += row("esc", "Back to title")

	text += HelpSectionStyle.Render("Result") + "\n"
	text += row("r", "Retry")
	text += row("t", "Back to title")
	text += row("y", "Copy result")

	text += "\n" + HelpFooterStyle.Render("Press any key to close")

	box := HelpBoxStyle.Render(text)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
