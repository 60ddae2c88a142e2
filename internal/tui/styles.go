// Package tui provides the Kanji Monster terminal UI.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/f3rmion/kanjimon/internal/tui/views"
)

// Screen styles
var (
	ScreenStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(views.ColorDark)
)

// Help overlay styles
var (
	HelpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(views.ColorLightest).
			MarginBottom(1)

	HelpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(views.ColorLight).
				MarginTop(1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(views.ColorLightest).
			Width(10)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(views.ColorLight)

	HelpFooterStyle = lipgloss.NewStyle().
			Foreground(views.ColorDark).
			Italic(true)

	HelpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(views.ColorLight).
			Padding(1, 2).
			Width(40)
)
