package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/f3rmion/kanjimon/internal/kanji"
	"github.com/f3rmion/kanjimon/internal/tui/pixel"
)

// Four-shade handheld palette
var (
	ColorDarkest  = lipgloss.Color("#0f380f")
	ColorDark     = lipgloss.Color("#306230")
	ColorLight    = lipgloss.Color("#8bac0f")
	ColorLightest = lipgloss.Color("#9bbc0f")
)

// monsterColors maps the roster palette onto terminal colors.
var monsterColors = map[kanji.Color]lipgloss.Color{
	kanji.ColorGreen:     lipgloss.Color("#8cab0f"),
	kanji.ColorDarkGreen: lipgloss.Color("#306130"),
	kanji.ColorLime:      lipgloss.Color("#8cbd0f"),
	kanji.ColorYellow:    lipgloss.Color("#9bbd0f"),
}

var (
	logoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorLightest)

	logoAltStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorLight)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorDark)

	textStyle = lipgloss.NewStyle().
			Foreground(ColorLightest)

	labelStyle = lipgloss.NewStyle().
			Foreground(ColorLight).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorDarkest).
			Background(ColorLight).
			Padding(0, 1)

	optionStyle = lipgloss.NewStyle().
			Foreground(ColorLight).
			Padding(0, 1)

	kanjiStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorLightest).
			Padding(1, 4).
			Align(lipgloss.Center)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorLight).
			Padding(0, 1)

	bubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDark).
			Foreground(ColorLight).
			Padding(0, 1)

	effectStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorLightest)

	effectBadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorDark)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorDark)
)

// spritePalette returns the colors for a monster's sprite.
func spritePalette(c kanji.Color) pixel.Palette {
	body, ok := monsterColors[c]
	if !ok {
		body = ColorLight
	}
	return pixel.Palette{ColorDarkest, body, ColorLight, ColorLightest}
}

// fit truncates s to width display cells, counting CJK runes as two.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// wrap breaks s into lines of at most width display cells.
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		for runewidth.StringWidth(para) > width {
			cut := runewidth.Truncate(para, width, "")
			if cut == "" {
				break
			}
			lines = append(lines, cut)
			para = para[len(cut):]
		}
		lines = append(lines, para)
	}
	return strings.Join(lines, "\n")
}

// pips draws n slots with the first filled ones lit.
func pips(filled, n int, on, off string) string {
	var sb strings.Builder
	for i := range n {
		if i < filled {
			sb.WriteString(on)
		} else {
			sb.WriteString(off)
		}
	}
	return sb.String()
}

// bar draws a horizontal gauge width cells wide.
func bar(ratio float64, width int) string {
	ratio = max(0, min(1, ratio))
	full := int(ratio*float64(width) + 0.5)
	return strings.Repeat("█", full) + strings.Repeat("░", width-full)
}
