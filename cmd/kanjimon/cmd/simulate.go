package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/f3rmion/kanjimon/internal/battle"
	"github.com/f3rmion/kanjimon/internal/catalog"
	"github.com/f3rmion/kanjimon/internal/flavor"
	"github.com/f3rmion/kanjimon/internal/kanji"
	"github.com/f3rmion/kanjimon/internal/sim"
)

func newSimulateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Let a bot play a game on a virtual clock",
		Long: `Let a bot play a game on a virtual clock and print what happened.
The same seed always produces the same game.

  kanjimon simulate --answers 40 --accuracy 0.7 --seed 42`,
		Args: cobra.NoArgs,
		RunE: a.runSimulate,
	}
	flags := cmd.Flags()
	flags.Int("answers", 50, "questions to answer")
	flags.Float64("accuracy", 0.8, "chance of a correct answer (0-1)")
	flags.Duration("think", 3*time.Second, "virtual time spent on each question")
	flags.Uint64("seed", 1, "random seed")
	flags.String("level", "5", "starting level")
	flags.Bool("record", false, "save the result to the history store")
	return cmd
}

func (a *app) runSimulate(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	answers, _ := flags.GetInt("answers")
	accuracy, _ := flags.GetFloat64("accuracy")
	think, _ := flags.GetDuration("think")
	seed, _ := flags.GetUint64("seed")
	levelFlag, _ := flags.GetString("level")
	record, _ := flags.GetBool("record")

	level, err := kanji.ParseLevel(levelFlag)
	if err != nil {
		return err
	}
	cat, err := a.catalog(catalog.WithSeed(seed))
	if err != nil {
		return err
	}

	cfg := &sim.Config{
		Catalog:     cat,
		Answers:     answers,
		Accuracy:    accuracy,
		Think:       think,
		Seed:        seed,
		Start:       &level,
		Flavor:      flavor.NewGateway(nil, flavor.WithSeed(seed), flavor.WithLogger(a.logger)),
		Logger:      a.logger,
		Timing:      a.cfg.Battle.Timing,
		StalePolicy: a.cfg.StalePolicy(),
	}
	if record {
		st, err := a.store(cmd.Context())
		if err != nil {
			return err
		}
		cfg.Store = st
	}

	report, err := sim.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	final := report.Final
	outcome := "still fighting"
	switch {
	case final.Cleared():
		outcome = "GAME CLEAR!"
	case final.Phase == battle.PhaseResult:
		outcome = "GAME OVER"
	}

	fmt.Fprintf(out, "Outcome:   %s\n", outcome)
	fmt.Fprintf(out, "Answered:  %d (%d correct, %d timed out)\n", report.Answered, report.Correct, report.TimedOut)
	fmt.Fprintf(out, "Score:     %d\n", final.Score)
	fmt.Fprintf(out, "Defeated:  %d\n", final.DefeatedCount)
	fmt.Fprintf(out, "Level:     %s (highest %s)\n", final.Level.Label(), final.HighestLevel.Label())
	fmt.Fprintf(out, "Streak:    %d\n", final.Streak)
	fmt.Fprintf(out, "Elapsed:   %s\n", report.Elapsed)
	fmt.Fprintln(out, "Events:")
	for _, kind := range []battle.EventKind{
		battle.EventCorrect,
		battle.EventWrong,
		battle.EventMonsterDefeated,
		battle.EventLevelUp,
		battle.EventLevelDown,
		battle.EventGameCleared,
	} {
		fmt.Fprintf(out, "  %-17s %d\n", kind, report.Events[kind])
	}
	return nil
}
