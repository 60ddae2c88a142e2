package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/f3rmion/kanjimon/internal/kanji"
	"github.com/f3rmion/kanjimon/internal/store"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change saved game settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show saved settings",
			Args:  cobra.NoArgs,
			RunE:  a.runSettingsShow,
		},
		&cobra.Command{
			Use:   "set <level|bgm> <value>",
			Short: "Change a saved setting",
			Long: `Change a saved setting.

  kanjimon settings set level 3
  kanjimon settings set bgm off`,
			Args:      cobra.ExactArgs(2),
			ValidArgs: []string{"level", "bgm"},
			RunE:      a.runSettingsSet,
		},
	)
	return cmd
}

func (a *app) runSettingsShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st, err := a.store(ctx)
	if err != nil {
		return err
	}

	level := "-"
	switch l, err := st.LastPlayedLevel(ctx); {
	case err == nil:
		level = l.Label()
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("reading level: %w", err)
	}

	bgm, err := st.BGMEnabled(ctx)
	if err != nil {
		return fmt.Errorf("reading bgm: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Store:        %s\n", a.cfg.Store.Driver)
	fmt.Fprintf(out, "Last level:   %s\n", level)
	fmt.Fprintf(out, "BGM:          %s\n", onOff(bgm))
	fmt.Fprintf(out, "Flavor text:  %s\n", onOff(a.cfg.FlavorEnabled()))
	return nil
}

func (a *app) runSettingsSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	key, value := strings.ToLower(args[0]), args[1]

	st, err := a.store(ctx)
	if err != nil {
		return err
	}

	switch key {
	case "level":
		level, err := kanji.ParseLevel(value)
		if err != nil {
			return err
		}
		if err := st.SetLastPlayedLevel(ctx, level); err != nil {
			return fmt.Errorf("saving level: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Last level set to %s\n", level.Label())
	case "bgm":
		enabled, err := parseOnOff(value)
		if err != nil {
			return err
		}
		if err := st.SetBGMEnabled(ctx, enabled); err != nil {
			return fmt.Errorf("saving bgm: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "BGM set to %s\n", onOff(enabled))
	default:
		return fmt.Errorf("unknown setting %q (want level or bgm)", key)
	}
	return nil
}

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent game results",
		Args:  cobra.NoArgs,
		RunE:  a.runHistory,
	}
	cmd.Flags().IntP("limit", "n", 10, "number of results to show")
	return cmd
}

func (a *app) runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}

	st, err := a.store(ctx)
	if err != nil {
		return err
	}
	results, err := st.RecentResults(ctx, limit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No games played yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "PLAYED\tSCORE\tDEFEATED\tHIGHEST\tSTREAK\tRESULT")
	for _, r := range results {
		outcome := "over"
		if r.Cleared {
			outcome = "clear"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\t%s\n",
			r.PlayedAt.Local().Format(time.DateTime), r.Score, r.Defeated, r.Highest.Label(), r.Streak, outcome)
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid value %q (want on or off)", s)
	}
	return b, nil
}
