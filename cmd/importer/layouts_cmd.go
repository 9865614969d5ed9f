package main

import (
	"fmt"
	"text/tabwriter"

	"cybershield/internal/importer"
	"cybershield/internal/models"

	"github.com/spf13/cobra"
)

func newLayoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "Print the expected workbook files and person column layouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			files := importer.DefaultFiles()
			layouts := importer.DefaultLayouts()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, role := range models.Roles {
				fmt.Fprintf(w, "%s\t%s\t%s\n", role, files.People(role), layouts[role])
			}
			fmt.Fprintf(w, "COUNTRIES\t%s\tname=0 capital=1 iso=2\n", files.Countries)
			fmt.Fprintf(w, "CITIES\t%s\tindex=0 name=2\n", files.Cities)
			fmt.Fprintf(w, "EVENTS\t%s\ttitle=1 start=2 days=3 city=4\n", files.Events)
			fmt.Fprintf(w, "ACTIVITIES\t%s\tevent=1 title=4 day=5 time=6 moderator=7 jury=8..12 winner=13\n", files.Activities)
			return w.Flush()
		},
	}
}
