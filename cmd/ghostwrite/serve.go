package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Paranoid-AF/ghostwrite/generate"
	"github.com/Paranoid-AF/ghostwrite/serve"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the completion relay server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			boot := slog.New(slog.NewTextHandler(os.Stderr, nil))
			cfg, err := loadConfig(boot)
			if err != nil {
				return err
			}
			logger, closer := newLogger(root, cfg.Logging, os.Stderr)
			defer closer.Close()
			slog.SetDefault(logger)

			engine := generate.NewEngine(cfg, generate.WithLogger(logger))
			defer engine.Close()
			catalog := generate.NewModelCatalog(cfg, logger)
			defer catalog.Close()

			addr := serve.ResolveListenAddr(listen, cfg)
			ln, err := serve.Listen(addr)
			if err != nil {
				return err
			}
			logger.Info("ghostwrite relay listening", "addr", addr, "version", version)

			srv := serve.New(engine, catalog, cfg, serve.WithLogger(logger))
			return srv.Serve(cmd.Context(), ln)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", `listen address, "host:port" or "unix:/path.sock"`)
	return cmd
}
