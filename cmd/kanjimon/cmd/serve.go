package cmd

import (
	"github.com/spf13/cobra"

	"github.com/f3rmion/kanjimon/internal/game"
	"github.com/f3rmion/kanjimon/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the game over SSH",
		Long: `Host Kanji Monster over SSH. Each connection with a terminal plays its
own game; settings and history are shared through the configured store.

  kanjimon serve --addr :2323
  ssh -p 2323 localhost`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}
	cmd.Flags().String("addr", "", "listen address (default from serve.addr)")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg := a.cfg.Serve
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}

	cat, err := a.catalog()
	if err != nil {
		return err
	}
	st, err := a.store(ctx)
	if err != nil {
		return err
	}
	gateway := a.flavor()

	newGame := func() (*game.Session, error) {
		return game.NewSession(&game.Config{
			Catalog:     cat,
			Store:       st,
			Flavor:      gateway,
			Logger:      a.logger,
			Timing:      a.cfg.Battle.Timing,
			StalePolicy: a.cfg.StalePolicy(),
		})
	}

	srv, err := server.New(&cfg, newGame,
		server.WithLogger(a.logger),
		server.WithShowcase(showcase(cat)),
	)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}
