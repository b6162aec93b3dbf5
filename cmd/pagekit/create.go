package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/pagekit-dev/pagekit/internal/templates"
)

type createOptions struct {
	template       string
	modulePath     string
	description    string
	jsRuntime      string
	packageManager string
}

func createCmd() *cobra.Command {
	var opts createOptions

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new pagekit project",
		Long: `Create a new pagekit project with the specified name.

Templates:
  minimal   Server-rendered html/template pages (default)
  spa       React pages with Go bridge functions

Examples:
  pagekit create my-site
  pagekit create my-app --template=spa --package-manager=pnpm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "minimal", "Project template (minimal, spa)")
	cmd.Flags().StringVarP(&opts.modulePath, "module", "m", "", "Go module path (default: the project name)")
	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "Project description")
	cmd.Flags().StringVar(&opts.jsRuntime, "js-runtime", "node", "JavaScript runtime for spa projects")
	cmd.Flags().StringVar(&opts.packageManager, "package-manager", "npm", "Package manager for spa projects")

	return cmd
}

func runCreate(w io.Writer, name string, opts createOptions) error {
	if !isValidProjectName(name) {
		return errors.New("E147").
			WithDetail("Project name must be a valid Go module name").
			WithSuggestion("Use lowercase letters, numbers, and hyphens")
	}

	projectDir, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(projectDir); !os.IsNotExist(err) {
		return errors.New("E140").
			WithDetail("Directory '" + name + "' already exists").
			WithSuggestion("Choose a different name or remove the existing directory")
	}

	tmpl, err := templates.Get(opts.template)
	if err != nil {
		return err
	}

	if opts.modulePath == "" {
		opts.modulePath = filepath.Base(name)
	}
	cfg := templates.Config{
		ProjectName:    filepath.Base(name),
		ModulePath:     opts.modulePath,
		Description:    opts.description,
		JSRuntime:      opts.jsRuntime,
		PackageManager: opts.packageManager,
	}

	info(w, "Creating project from '%s' template...", tmpl.Name)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return err
	}
	if err := tmpl.Create(projectDir, cfg); err != nil {
		os.RemoveAll(projectDir)
		return err
	}

	fmt.Fprintln(w)
	success(w, "Created %s/", name)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  To get started:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "    cd %s\n", name)
	fmt.Fprintln(w, "    go mod tidy")
	if tmpl.Name == "spa" {
		fmt.Fprintf(w, "    %s install\n", cfg.PackageManager)
	}
	fmt.Fprintln(w, "    pagekit dev")
	fmt.Fprintln(w)
	return nil
}

func isValidProjectName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == ' ' || r == '\\' {
			return false
		}
		if i == 0 && r >= '0' && r <= '9' {
			return false
		}
	}
	base := filepath.Base(name)
	return base != "." && base != ".." && base != "/"
}
