package cmd

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/f3rmion/kanjimon/internal/audio"
	"github.com/f3rmion/kanjimon/internal/catalog"
	"github.com/f3rmion/kanjimon/internal/clipboard"
	"github.com/f3rmion/kanjimon/internal/game"
	"github.com/f3rmion/kanjimon/internal/kanji"
	"github.com/f3rmion/kanjimon/internal/tui"
)

func newPlayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "play",
		Short:       "Play in this terminal",
		Annotations: map[string]string{annotationTUI: "true"},
		Args:        cobra.NoArgs,
		RunE:        a.runPlay,
	}
}

func (a *app) runPlay(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cat, err := a.catalog()
	if err != nil {
		return err
	}
	st, err := a.store(ctx)
	if err != nil {
		return err
	}

	player := audio.NewPlayer(a.cfg.Audio, audio.WithLogger(a.logger))
	a.closers = append(a.closers, player)

	g, err := game.NewSession(&game.Config{
		Catalog:     cat,
		Store:       st,
		Flavor:      a.flavor(),
		Music:       player,
		Logger:      a.logger,
		Timing:      a.cfg.Battle.Timing,
		StalePolicy: a.cfg.StalePolicy(),
	})
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	var clip clipboard.Writer
	if clipboard.Available() {
		clip = clipboard.System{}
	} else {
		clip = clipboard.Terminal{Out: cmd.OutOrStdout()}
	}

	p := tea.NewProgram(
		tui.NewApp(g, tui.Options{Showcase: showcase(cat), Clipboard: clip}),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, runErr := p.Run()
	cancel()

	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Warn("game loop stopped", "error", err)
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", runErr)
	}
	return nil
}

// showcase picks one monster from each of the first three ranks for the
// title screen.
func showcase(cat *catalog.Catalog) []kanji.Monster {
	var out []kanji.Monster
	for _, level := range kanji.Levels {
		if len(out) == 3 {
			break
		}
		if ms := cat.MonstersForLevel(level); len(ms) > 0 {
			out = append(out, ms[0])
		}
	}
	return out
}
