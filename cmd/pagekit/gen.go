package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/pagekit-dev/pagekit/pkg/router"
)

func genCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen <type>",
		Short: "Generate code",
		Long: `Generate static modules from the project.

Types:
  routes   Route module for client bundles (json or ts)
  bridge   TypeScript client for the registered bridge functions

Examples:
  pagekit gen routes                          # JSON manifest to stdout
  pagekit gen routes --format ts -o src/routes.ts
  pagekit gen bridge                          # writes bridge.output`,
	}

	cmd.AddCommand(
		genRoutesCmd(),
		genBridgeCmd(),
	)

	return cmd
}

func genRoutesCmd() *cobra.Command {
	var (
		flags      projectFlags
		format     string
		output     string
		importBase string
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Generate a static route module",
		Long: `Discover the pages directory and emit the route table as a static
module, so a client bundle can import every page without a runtime
directory walk.

The output is deterministic: running it twice produces identical
output unless the pages change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := flags.load()
			if err != nil {
				return err
			}
			if format != router.FormatJSON && format != router.FormatTS {
				return errors.New("E148").
					WithDetail(fmt.Sprintf("Unknown format %q", format)).
					WithSuggestion("Use --format json or --format ts")
			}
			table, err := buildTable(cmd.Context(), pc)
			if err != nil {
				return err
			}

			if output != "" && !filepath.IsAbs(output) {
				output = filepath.Join(pc.Dir(), output)
			}
			if importBase == "" {
				importBase = defaultImportBase(pc.Dir(), output)
			}
			code, err := router.NewGenerator(table, importBase).Generate(format)
			if err != nil {
				return err
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(code)
				return err
			}
			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(output, code, 0644); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Generated %s (%d routes)", output, len(table.Entries))
			return nil
		},
	}

	flags.register(cmd.Flags(), false)
	cmd.Flags().StringVarP(&format, "format", "f", router.FormatJSON, "Output format (json, ts)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, relative to the project (default: stdout)")
	cmd.Flags().StringVar(&importBase, "import-base", "", "Prefix for page imports (default: relative path from the output file to the project)")

	return cmd
}

// defaultImportBase is the path from the output file's directory back to
// the project root, so "/pages/x.tsx" resolves from the generated module.
func defaultImportBase(root, output string) string {
	if output == "" {
		return "."
	}
	rel, err := filepath.Rel(filepath.Dir(output), root)
	if err != nil {
		return "."
	}
	return filepath.ToSlash(rel)
}

func genBridgeCmd() *cobra.Command {
	var (
		flags  projectFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Generate the TypeScript bridge client",
		Long: `Build the project and write a TypeScript client for every function
registered on its bridge. The project's main package must handle the
-gen-bridge flag, as the spa template does.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := flags.load()
			if err != nil {
				return err
			}
			if output == "" {
				output = pc.Bridge.Output
			}
			if !filepath.IsAbs(output) {
				output = filepath.Join(pc.Dir(), output)
			}

			gen := exec.CommandContext(cmd.Context(), "go", "run", ".", "-gen-bridge", output)
			gen.Dir = pc.Dir()
			gen.Stdout = cmd.ErrOrStderr()
			gen.Stderr = cmd.ErrOrStderr()
			if err := gen.Run(); err != nil {
				return errors.New("E164").
					WithDetail("Running the project with -gen-bridge failed").
					WithSuggestion("Check that main.go handles the -gen-bridge flag").
					Wrap(err)
			}
			success(cmd.OutOrStdout(), "Generated %s", output)
			return nil
		},
	}

	flags.register(cmd.Flags(), false)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: bridge.output from pagekit.json)")

	return cmd
}
