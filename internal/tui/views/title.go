package views

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/f3rmion/kanjimon/internal/battle"
	"github.com/f3rmion/kanjimon/internal/kanji"
	"github.com/f3rmion/kanjimon/internal/tui/pixel"
)

type titleBlinkMsg struct{}

func titleBlinkAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return titleBlinkMsg{}
	})
}

// levelChoices is the start menu: continue from the last level, then each
// rank from easiest to hardest.
var levelChoices = append([]*kanji.Level{nil}, func() []*kanji.Level {
	out := make([]*kanji.Level, len(kanji.Levels))
	for i := range kanji.Levels {
		out[i] = &kanji.Levels[i]
	}
	return out
}()...)

// TitleModel is the start screen.
type TitleModel struct {
	game     Game
	showcase []kanji.Monster
	choice   int
	blink    bool
	width    int
	height   int
}

// NewTitleModel creates the title screen. showcase holds the monsters
// paraded under the logo.
func NewTitleModel(game Game, showcase []kanji.Monster) TitleModel {
	return TitleModel{game: game, showcase: showcase}
}

// Init starts the blinking prompt.
func (m TitleModel) Init() tea.Cmd {
	return titleBlinkAfter(600 * time.Millisecond)
}

// SetSize updates the layout size.
func (m *TitleModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Choice returns the selected start level, nil meaning "continue".
func (m TitleModel) Choice() *kanji.Level {
	return levelChoices[m.choice]
}

// Update handles input on the title screen.
func (m TitleModel) Update(msg tea.Msg) (TitleModel, tea.Cmd) {
	switch msg := msg.(type) {
	case titleBlinkMsg:
		m.blink = !m.blink
		return m, titleBlinkAfter(600 * time.Millisecond)

	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h":
			if m.choice > 0 {
				m.choice--
			}
		case "right", "l":
			if m.choice < len(levelChoices)-1 {
				m.choice++
			}
		case "enter", " ":
			m.game.StartGame(m.Choice())
		}
	}
	return m, nil
}

// View renders the title screen.
func (m TitleModel) View(snap battle.Snapshot) string {
	logo := lipgloss.JoinVertical(lipgloss.Center,
		logoStyle.Render("K A N J I"),
		logoAltStyle.Render("M O N S T E R"),
		dimStyle.Render("────────────────"),
		dimStyle.Render("漢字モンスター"),
	)

	var sprites []string
	for _, mon := range m.showcase {
		sprite := lipgloss.JoinVertical(lipgloss.Center,
			pixel.Sprite(mon.Sprite).Render(spritePalette(mon.Color)),
			labelStyle.Render(fit(mon.Name, pixel.SpriteSize+4)),
		)
		sprites = append(sprites, lipgloss.NewStyle().Margin(0, 2).Render(sprite))
	}
	showcase := lipgloss.JoinHorizontal(lipgloss.Bottom, sprites...)

	var options []string
	for i, l := range levelChoices {
		label := "つづきから"
		if l != nil {
			label = l.Label()
		}
		if i == m.choice {
			options = append(options, selectedStyle.Render(label))
		} else {
			options = append(options, optionStyle.Render(label))
		}
	}
	selector := lipgloss.JoinHorizontal(lipgloss.Center, options...)

	start := "▶ START"
	if m.blink {
		start = logoStyle.Render(start)
	} else {
		start = dimStyle.Render(start)
	}

	credits := []string{dimStyle.Render("© 2026 KanjiMonster")}
	if snap.FlavorEnabled {
		credits = append(credits, dimStyle.Render("Powered by Gemini AI"))
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		logo,
		"",
		showcase,
		"",
		selector,
		"",
		start,
		"",
		helpStyle.Render("←/→ レベル選択 • enter スタート • m BGM • q 終了"),
		"",
		lipgloss.JoinVertical(lipgloss.Center, credits...),
	)
	return body
}
