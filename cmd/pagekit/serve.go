package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pagekit-dev/pagekit"
)

func serveCmd() *cobra.Command {
	var flags projectFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the project",
		Long: `Serve the pages and static files of the project with production
cache headers. Bridge functions are registered by the project's own
main package, so run it with 'go run .' when you need them.

Examples:
  pagekit serve
  pagekit serve --port=8080 --host=0.0.0.0
  pagekit serve --pages-s3 s3://my-bucket/site/pages`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, &flags)
		},
	}

	flags.register(cmd.Flags(), true)

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, flags *projectFlags) error {
	pc, err := flags.load()
	if err != nil {
		return err
	}
	cfg, err := appConfig(ctx, pc)
	if err != nil {
		return err
	}
	cfg.Static.CacheControl = pagekit.CacheControlProduction

	app, err := pagekit.New(ctx, cfg)
	if err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "Serving %d routes on %s", len(app.Table().Entries), pc.URL())
	return app.Run(ctx)
}
