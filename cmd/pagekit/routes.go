package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pagekit-dev/pagekit/pkg/router"
)

func routesCmd() *cobra.Command {
	var flags projectFlags

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		Long: `Discover the pages directory and print the route table, most specific
route first. Malformed page names are reported with their file path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := flags.load()
			if err != nil {
				return err
			}
			table, err := buildTable(cmd.Context(), pc)
			if err != nil {
				return err
			}
			return printRoutes(cmd.OutOrStdout(), table)
		},
	}

	flags.register(cmd.Flags(), false)

	return cmd
}

func printRoutes(w io.Writer, table *router.RouteTable) error {
	entries := append([]router.RouteEntry(nil), table.Entries...)
	router.SortBySpecificity(entries)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATTERN\tFILE\tPARAMS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Pattern, e.RawPath, strings.Join(e.Params(), ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "app:      %s\n", orNone(table.AppPath))
	fmt.Fprintf(w, "notFound: %s\n", orNone(table.NotFoundPath))
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
