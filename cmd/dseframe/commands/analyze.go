package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexshd/dseframe"
	"github.com/alexshd/dseframe/internal/export"
	"github.com/alexshd/dseframe/internal/ingest"
)

// analyze [csv]: load a results file once and print per-group metrics.
func analyzeCmd() *cobra.Command {
	var (
		disable []int
		jsonOut string
		pngOut  string
		showAll bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [results.csv]",
		Short: "Score every method-group of a results file against the global frontier",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resultsPath(args)
			if err != nil {
				return err
			}

			sess, loader, err := openResults(path)
			if err != nil {
				return err
			}
			if _, err := loader.Load(cmd.Context()); err != nil {
				return err
			}
			remember(path)

			for _, id := range disable {
				if err := sess.SetEnabled(dseframe.GroupID(id), false); err != nil {
					return err
				}
			}
			sess.Analyze()
			snap := sess.Snapshot()

			if jsonOut == "-" {
				return export.WriteJSON(cmd.OutOrStdout(), snap)
			}
			printTable(cmd.OutOrStdout(), snap)

			if jsonOut != "" {
				if err := export.WriteSnapshot(jsonOut, snap); err != nil {
					return err
				}
				logger.Info("snapshot written", "path", jsonOut)
			}
			if pngOut != "" {
				opts := export.DefaultPlotOptions()
				opts.ShowAll = showAll
				opts.Title = fmt.Sprintf("%s vs %s", snap.Config.XVar, snap.Config.YVar)
				if err := export.WritePNG(pngOut, snap, opts); err != nil {
					return err
				}
				logger.Info("chart written", "path", pngOut)
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&disable, "disable", nil, "group IDs to leave out of the global frontier")
	cmd.Flags().StringVar(&jsonOut, "json", "", "write the snapshot as JSON to this file (- for stdout, replaces the table)")
	cmd.Flags().StringVar(&pngOut, "png", "", "render the frontiers to this PNG file")
	cmd.Flags().BoolVar(&showAll, "all-points", false, "also plot every ingested point, not only frontiers")
	return cmd
}

// openResults creates an empty session and a loader for path under the
// active configuration.
func openResults(path string) (*dseframe.Session, *ingest.Loader, error) {
	sess, err := dseframe.NewSession(cfg, dseframe.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	reader := ingest.NewReader(cfg, ingest.WithLogger(logger))
	return sess, ingest.NewLoader(path, reader, sess, logger), nil
}

func printTable(w io.Writer, snap dseframe.Snapshot) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMETHOD\tITERATION\tENABLED\tPOINTS\tFRONTIER\tADRS\tDOMINANCE\tHYPERVOLUME")

	for _, g := range snap.Groups {
		adrs, dom, hv := "-", "-", "-"
		if g.Metrics != nil {
			adrs = g.Metrics.ADRS.Percent()
			dom = g.Metrics.Dominance.Percent()
			hv = g.Metrics.Hypervolume.Percent()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%d\t%d\t%s\t%s\t%s\n",
			g.ID, g.Key.Method, g.Key.Iteration, g.Enabled,
			len(g.Points), len(g.Frontier), adrs, dom, hv)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nglobal frontier (%s, %s): %d points, groups %s\n",
		snap.Config.XVar, snap.Config.YVar, len(snap.GlobalFrontier), snap.CheckState)
	for _, p := range snap.GlobalFrontier {
		fmt.Fprintf(w, "  %s\n", p)
	}
}
