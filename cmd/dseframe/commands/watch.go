package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alexshd/dseframe"
	"github.com/alexshd/dseframe/internal/export"
	"github.com/alexshd/dseframe/internal/ingest"
	"github.com/alexshd/dseframe/internal/telemetry"
	"github.com/alexshd/dseframe/internal/watch"
)

type monitorOptions struct {
	listen   string
	jsonOut  string
	debounce time.Duration
}

func (o *monitorOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.listen, "listen", "", "serve /status, /metrics, /chart.png and group toggles on this address (e.g. :8080)")
	cmd.Flags().StringVar(&o.jsonOut, "json", "", "rewrite the snapshot to this file after every change")
	cmd.Flags().DurationVar(&o.debounce, "debounce", 100*time.Millisecond, "quiet period before a changed file is re-read")
}

// watch [csv]: follow a results file while the exploration tool appends to it.
func watchCmd() *cobra.Command {
	var opts monitorOptions

	cmd := &cobra.Command{
		Use:   "watch [results.csv]",
		Short: "Re-analyze a results file every time it changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resultsPath(args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m, err := newMonitor(path, opts)
			if err != nil {
				return err
			}
			return m.run(ctx)
		},
	}

	opts.bind(cmd)
	return cmd
}

// monitor keeps a session in step with a growing results file and publishes
// every change.
type monitor struct {
	path   string
	opts   monitorOptions
	sess   *dseframe.Session
	loader *ingest.Loader
	pub    *telemetry.Publisher
}

func newMonitor(path string, opts monitorOptions) (*monitor, error) {
	sess, loader, err := openResults(path)
	if err != nil {
		return nil, err
	}
	return &monitor{
		path:   path,
		opts:   opts,
		sess:   sess,
		loader: loader,
		pub:    telemetry.NewPublisher(),
	}, nil
}

// refresh reads new rows, then re-analyzes and publishes. Load errors are
// logged; the session keeps what it had, or is empty after a reset.
func (m *monitor) refresh(ctx context.Context) {
	res, err := m.loader.Load(ctx)
	switch {
	case err == nil:
		if res.Lines > 0 {
			remember(m.path)
		}
	case errors.Is(err, context.Canceled):
		return
	default:
		logger.Warn("results not loaded", "path", m.path, "error", err)
	}

	m.pub.ObserveLoad(res.Ingested, res.Skipped)
	m.publish()
}

func (m *monitor) publish() {
	m.sess.Analyze()
	snap := m.sess.Snapshot()
	m.pub.Publish(snap)

	if m.opts.jsonOut != "" {
		if err := export.WriteSnapshot(m.opts.jsonOut, snap); err != nil {
			logger.Warn("snapshot not written", "path", m.opts.jsonOut, "error", err)
		}
	}
}

// run loads the file, then follows it until ctx is canceled.
func (m *monitor) run(ctx context.Context) error {
	m.refresh(ctx)

	w, err := watch.New(m.path, func([]watch.Event) { m.refresh(ctx) }, &watch.Options{
		Debounce: m.opts.debounce,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	logger.Info("watching results", "path", w.Path(), "x_var", cfg.XVar, "y_var", cfg.YVar)

	g, gctx := errgroup.WithContext(ctx)
	if m.opts.listen != "" {
		srv := &http.Server{
			Addr:              m.opts.listen,
			Handler:           m.routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("serving status", "addr", m.opts.listen)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	err = g.Wait()
	logger.Info("stopped watching", "path", m.path)
	return err
}
