package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-loader-mcp/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP protocol on stdin/stdout (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	l, store, err := a.newLoader(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	a.logger.Info("starting server", "version", version, "commit", commit, "backend", a.cfg.Cache.Backend)

	srv := server.New(
		server.WithLoader(l),
		server.WithLogger(a.logger),
		server.WithVersion(version),
	)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info("server stopped")
	return nil
}
