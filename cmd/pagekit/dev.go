package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pagekit-dev/pagekit"
	"github.com/pagekit-dev/pagekit/internal/dev"
)

func devCmd() *cobra.Command {
	var flags projectFlags

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Start the development server with hot reload.

The dev server watches the pages and static directories. Page changes
rebuild the route table and reload connected browsers; a malformed page
name shows an error overlay and the previous routes keep serving.
Stylesheet changes are swapped in place without a reload.

Examples:
  pagekit dev
  pagekit dev --port=8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDev(ctx, cmd, &flags)
		},
	}

	flags.register(cmd.Flags(), true)

	return cmd
}

func runDev(ctx context.Context, cmd *cobra.Command, flags *projectFlags) error {
	pc, err := flags.load()
	if err != nil {
		return err
	}
	cfg, err := appConfig(ctx, pc)
	if err != nil {
		return err
	}
	cfg.DevMode = pc.Dev.HotReload

	app, err := pagekit.New(ctx, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	success(out, "Serving %d routes on %s", len(app.Table().Entries), pc.URL())
	if !cfg.DevMode {
		warn(out, "Hot reload is disabled in pagekit.json")
		return app.Run(ctx)
	}
	if pc.UsesS3() {
		warn(out, "Pages are loaded from S3; only static files are watched")
	}

	loop, err := dev.NewLoop(dev.LoopConfig{
		App:      app,
		Paths:    pc.WatchPaths(),
		Ignore:   pc.Dev.Ignore,
		PageExt:  pc.Pages.Ext,
		Debounce: pc.DebounceDuration(),
		Reload:   app.ReloadServer(),
		Logger:   slog.Default(),
	})
	if err != nil {
		return err
	}
	info(out, "Watching %v", pc.WatchPaths())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- loop.Run(ctx)
	}()

	err = app.Run(ctx)
	cancel()
	if lerr := <-loopErr; err == nil && !errors.Is(lerr, context.Canceled) {
		err = lerr
	}
	return err
}
