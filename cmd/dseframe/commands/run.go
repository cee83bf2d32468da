package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alexshd/dseframe/internal/runner"
)

// run -- <command...>: launch the exploration tool, optionally following the
// results file it writes.
func runCmd() *cobra.Command {
	var (
		results string
		dir     string
		grace   time.Duration
		opts    monitorOptions
	)

	cmd := &cobra.Command{
		Use:   "run [flags] -- <command> [args...]",
		Short: "Launch the exploration tool and stream its output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var m *monitor
			if results != "" {
				var err error
				if m, err = newMonitor(results, opts); err != nil {
					return err
				}
			}

			h, err := runner.StartArgs(ctx, args[0], args[1:],
				runner.WithDir(dir),
				runner.WithGracePeriod(grace),
				runner.WithLogger(logger),
			)
			if err != nil {
				return err
			}

			watchCtx, stopWatch := context.WithCancel(ctx)
			defer stopWatch()

			g := new(errgroup.Group)
			g.Go(func() error {
				defer stopWatch()
				for c := range h.Output() {
					out := cmd.OutOrStdout()
					if c.Stream == runner.Stderr {
						out = cmd.ErrOrStderr()
					}
					out.Write(c.Data)
				}
				return nil
			})
			if m != nil {
				g.Go(func() error {
					return m.run(watchCtx)
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			code, err := h.Wait()
			if m != nil {
				// Rows written just before exit may be inside the debounce window.
				m.refresh(context.Background())
				printTable(cmd.OutOrStdout(), m.sess.Snapshot())
			}
			if err != nil {
				return fmt.Errorf("%s: %w", h.Command(), err)
			}
			if code != 0 {
				return fmt.Errorf("%s exited with status %d", h.Command(), code)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&results, "watch", "", "results file the tool writes; followed while it runs")
	cmd.Flags().StringVar(&dir, "dir", "", "working directory of the tool")
	cmd.Flags().DurationVar(&grace, "grace", 2*time.Second, "time between terminate and kill on interrupt")
	opts.bind(cmd)
	return cmd
}
