// Package cmd contains all CLI commands for Kanji Monster.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/f3rmion/kanjimon/internal/catalog"
	"github.com/f3rmion/kanjimon/internal/config"
	"github.com/f3rmion/kanjimon/internal/flavor"
	"github.com/f3rmion/kanjimon/internal/llm"
	"github.com/f3rmion/kanjimon/internal/logging"
	"github.com/f3rmion/kanjimon/internal/store"
)

// annotationTUI marks commands that own the terminal; they log to a file.
const annotationTUI = "tui"

// app carries what every command needs once configuration is loaded.
type app struct {
	configDir string

	v      *viper.Viper
	cfg    config.Config
	logger *slog.Logger

	closers []io.Closer
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, a := newRootCmd()
	defer a.close()
	return root.ExecuteContext(ctx)
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "kanjimon",
		Short: "Kanji Monster - a kanji reading battle game",
		Long: `Kanji Monster (漢字モンスター) is a terminal game for practising kanji
readings. Type the hiragana reading of each word before the timer runs out
to hit the monster. Three hits defeat it and move you up a rank, three
misses knock you down one. Five correct answers in a row clears the game.

Running 'kanjimon' without arguments starts the game.`,
		SilenceUsage:      true,
		Annotations:       map[string]string{annotationTUI: "true"},
		PersistentPreRunE: a.load,
		RunE:              a.runPlay,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configDir, "config", "", "config directory (default is $HOME/.config/kanjimon)")
	flags.String("catalog", "", "catalog YAML file (default is the built-in catalog)")
	flags.String("store", "", "settings store driver: sqlite, redis or memory")
	flags.String("log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newPlayCmd(a),
		newServeCmd(a),
		newSimulateCmd(a),
		newCatalogCmd(a),
		newSettingsCmd(a),
		newHistoryCmd(a),
		newInitCmd(a),
	)
	return root, a
}

// load resolves the config directory, merges file, env and flags, and sets
// up logging.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	if a.configDir == "" {
		dir, err := config.GetConfigDir()
		if err != nil {
			return fmt.Errorf("finding config directory: %w", err)
		}
		a.configDir = dir
	}

	a.v = config.NewViper(a.configDir)
	flags := cmd.Flags()
	for key, flag := range map[string]string{
		"catalog":      "catalog",
		"store.driver": "store",
		"log.level":    "log-level",
	} {
		if f := flags.Lookup(flag); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	if err := config.ReadFile(a.v); err != nil {
		return err
	}

	cfg, err := config.FromViper(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := cfg.Log
	if cmd.Annotations[annotationTUI] != "true" {
		logCfg.File = ""
	}
	logger, closer, err := logging.New(logCfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = logger
	a.closers = append(a.closers, closer)
	slog.SetDefault(logger)
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && a.logger != nil {
			a.logger.Warn("closing resource", "error", err)
		}
	}
	a.closers = nil
}

// catalog loads the configured catalog, or the built-in one.
func (a *app) catalog(opts ...catalog.Option) (*catalog.Catalog, error) {
	if a.cfg.Catalog == "" {
		return catalog.Default(opts...)
	}
	c, err := catalog.LoadFile(a.cfg.Catalog, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", a.cfg.Catalog, err)
	}
	return c, nil
}

// store opens the settings store. It is closed with the app.
func (a *app) store(ctx context.Context) (store.Store, error) {
	s, err := store.Open(ctx, a.cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", a.cfg.Store.Driver, err)
	}
	a.closers = append(a.closers, s)
	return s, nil
}

// flavor returns a gateway backed by Gemini when a key is configured, and
// by local lines otherwise.
func (a *app) flavor() *flavor.Gateway {
	opts := []flavor.Option{flavor.WithLogger(a.logger), flavor.WithTimeout(a.cfg.Flavor.Timeout)}

	client, err := llm.NewClient(a.cfg.Flavor)
	if err != nil {
		if !errors.Is(err, llm.ErrNoAPIKey) {
			a.logger.Warn("flavor text disabled", "error", err)
		}
		return flavor.NewGateway(nil, opts...)
	}
	a.logger.Info("flavor text enabled", "model", client.Model())
	return flavor.NewGateway(client, opts...)
}
