package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexshd/dseframe/internal/ingest"
)

// columns [csv]: list the columns selectable with --x-var and --y-var.
func columnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns [results.csv]",
		Short: "List the objective columns of a results file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resultsPath(args)
			if err != nil {
				return err
			}
			cols, err := ingest.ReadColumns(path)
			if err != nil {
				return err
			}

			for _, c := range cols {
				marker := " "
				switch c {
				case cfg.XVar:
					marker = "x"
				case cfg.YVar:
					marker = "y"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, c)
			}
			return nil
		},
	}
}
