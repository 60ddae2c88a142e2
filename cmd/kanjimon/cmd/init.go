package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/f3rmion/kanjimon/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write config.yaml with every setting at its default to your config
directory. Edit it to switch the store to Redis, tune the battle pacing or
add a Gemini API key (GEMINI_API_KEY also works).`,
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}
	cmd.Flags().Bool("force", false, "overwrite an existing config file")
	return cmd
}

func (a *app) runInit(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path := filepath.Join(a.configDir, config.FileName)

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config file: %w", err)
	}

	if err := config.EnsureConfigDir(a.configDir); err != nil {
		return err
	}
	if err := config.Save(path, config.Default(a.configDir)); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s\n\n", path)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Run 'kanjimon' to play")
	fmt.Fprintln(out, "  2. Set GEMINI_API_KEY for generated hints and monster lines")
	fmt.Fprintln(out, "  3. Run 'kanjimon serve' to host the game over SSH")
	return nil
}
