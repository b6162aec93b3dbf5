package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// colors is false when stdout is not a terminal.
var colors = term.IsTerminal(int(os.Stdout.Fd()))

func main() {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		errors.DisableColors()
	}

	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logLevel string
		logFile  string
	)

	rootCmd := &cobra.Command{
		Use:   "pagekit",
		Short: "File-system routed pages for Go",
		Long: `pagekit turns a pages/ directory into routes.

  pages/index.html          -> /
  pages/blog/[slug].html    -> /blog/:slug
  pages/docs/[...path].html -> /docs/*
  pages/_app.html           -> shell around every page
  pages/404.html            -> rendered for unknown paths`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(setupLogger(logLevel, logFile))
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(
		createCmd(),
		routesCmd(),
		genCmd(),
		serveCmd(),
		devCmd(),
		publishCmd(),
		versionCmd(),
	)

	return rootCmd
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var writer io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
		} else {
			writer = f
		}
	}

	return slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel}))
}

func paint(code, text string) string {
	if !colors {
		return text
	}
	return "\033[" + code + "m" + text + "\033[0m"
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint("32", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint("33", "⚠"), fmt.Sprintf(format, args...))
}
