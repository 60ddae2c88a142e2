package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/f3rmion/kanjimon/internal/anki"
	"github.com/f3rmion/kanjimon/internal/catalog"
	"github.com/f3rmion/kanjimon/internal/kanji"
	"github.com/f3rmion/kanjimon/internal/pinyin"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and extend the question catalog",
	}
	cmd.AddCommand(newCatalogListCmd(a), newCatalogImportCmd(a))
	return cmd
}

func newCatalogListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List questions",
		Args:  cobra.NoArgs,
		RunE:  a.runCatalogList,
	}
	cmd.Flags().String("level", "", "only list this level")
	cmd.Flags().Bool("zh", false, "show the Mandarin pinyin of each word")
	cmd.Flags().Bool("monsters", false, "list monsters instead of questions")
	return cmd
}

func (a *app) runCatalogList(cmd *cobra.Command, _ []string) error {
	levelFlag, _ := cmd.Flags().GetString("level")
	zh, _ := cmd.Flags().GetBool("zh")
	monsters, _ := cmd.Flags().GetBool("monsters")

	levels := kanji.Levels
	if levelFlag != "" {
		level, err := kanji.ParseLevel(levelFlag)
		if err != nil {
			return err
		}
		levels = []kanji.Level{level}
	}

	cat, err := a.catalog()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	if monsters {
		fmt.Fprintln(w, "ID\tLEVEL\tNAME\tCOLOR")
		for _, level := range levels {
			for _, m := range cat.MonstersForLevel(level) {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.ID, m.Level.Label(), m.Name, m.Color)
			}
		}
		return nil
	}

	var parser *pinyin.Parser
	header := "ID\tLEVEL\tKANJI\tREADINGS\tMEANING"
	if zh {
		parser = pinyin.NewParser()
		header += "\tPINYIN"
	}
	fmt.Fprintln(w, header)

	for _, level := range levels {
		for _, q := range cat.QuestionsForLevel(level) {
			row := fmt.Sprintf("%s\t%s\t%s\t%s\t%s", q.ID, q.Level.Label(), q.Kanji, strings.Join(q.Readings, "・"), q.Meaning)
			if parser != nil {
				row += "\t" + parser.Word(q.Kanji)
			}
			fmt.Fprintln(w, row)
		}
	}
	return nil
}

func newCatalogImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <deck.apkg>",
		Short: "Convert an Anki deck into a catalog file",
		Long: `Convert the notes of an Anki deck into questions and write them, together
with the current catalog, to a new catalog file. Use it with --catalog.

  kanjimon catalog import n3.apkg --level 3 \
      --kanji-field Expression --reading-field Reading --out n3.yaml
  kanjimon --catalog n3.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: a.runCatalogImport,
	}
	flags := cmd.Flags()
	flags.String("level", "", "level of the imported questions (required)")
	flags.String("kanji-field", "Kanji", "note field holding the word")
	flags.String("reading-field", "Reading", "note field holding the readings")
	flags.String("meaning-field", "", "note field holding the meaning")
	flags.String("hint-field", "", "note field holding a hint")
	flags.String("id-prefix", "anki", "prefix for generated question ids")
	flags.String("out", "", "output catalog file (required)")
	_ = cmd.MarkFlagRequired("level")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (a *app) runCatalogImport(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	levelFlag, _ := flags.GetString("level")
	level, err := kanji.ParseLevel(levelFlag)
	if err != nil {
		return err
	}

	opts := anki.ImportOptions{Level: level}
	opts.KanjiField, _ = flags.GetString("kanji-field")
	opts.ReadingField, _ = flags.GetString("reading-field")
	opts.MeaningField, _ = flags.GetString("meaning-field")
	opts.HintField, _ = flags.GetString("hint-field")
	opts.IDPrefix, _ = flags.GetString("id-prefix")
	out, _ := flags.GetString("out")

	pkg, err := anki.OpenPackage(args[0])
	if err != nil {
		return fmt.Errorf("opening deck: %w", err)
	}
	defer pkg.Close()

	questions, skipped, err := pkg.Questions(opts)
	if err != nil {
		return err
	}
	for _, s := range skipped {
		a.logger.Debug("skipped note", "note", s.NoteID, "reason", s.Reason)
	}
	if len(questions) == 0 {
		return fmt.Errorf("no questions found; fields in this deck: %s", strings.Join(pkg.FieldNames(), ", "))
	}

	base, err := a.catalog()
	if err != nil {
		return err
	}
	merged := catalog.Merge(base.File(), catalog.File{Questions: questions})

	// Round trip through New so the file is known to load.
	if _, err := catalog.New(merged); err != nil {
		return fmt.Errorf("validating catalog: %w", err)
	}
	if err := catalog.Save(out, merged); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d questions at %s (%d notes skipped)\n", len(questions), level.Label(), len(skipped))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
	return nil
}
