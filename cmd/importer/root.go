package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "importer",
		Short:         "Conference workbook importer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newLayoutsCmd())
	cmd.AddCommand(newTemplateCmd())
	return cmd
}
