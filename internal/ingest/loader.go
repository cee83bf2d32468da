package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/alexshd/dseframe"
)

// ResettableSink is a Sink that can drop everything it received.
// *dseframe.Session satisfies it.
type ResettableSink interface {
	Sink
	Reset()
}

// Loader binds a Reader to one results file and the sink it feeds.
//
// Load may be called from a file watcher and from a command at the same time;
// calls are serialized.
type Loader struct {
	path   string
	reader *Reader
	sink   ResettableSink
	logger *slog.Logger

	mu sync.Mutex
}

// NewLoader creates a loader for path.
func NewLoader(path string, reader *Reader, sink ResettableSink, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		path:   path,
		reader: reader,
		sink:   sink,
		logger: logger,
	}
}

// Path returns the results file path.
func (l *Loader) Path() string {
	return l.path
}

// Load scans the file for rows added since the previous Load.
//
// A truncated file resets the sink and reader and is scanned again from the
// top. A header without the required columns resets the sink and reader and
// returns the error.
func (l *Loader) Load(ctx context.Context) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res, err := l.scan(ctx)
	if errors.Is(err, ErrTruncated) {
		l.logger.Info("results file truncated, reloading", "path", l.path, "consumed", l.reader.Consumed())
		l.reset()
		res, err = l.scan(ctx)
	}

	if errors.Is(err, dseframe.ErrMissingRequiredColumn) {
		l.reset()
	}
	if err != nil {
		return res, err
	}

	l.logger.Info("results loaded",
		"path", l.path,
		"lines", res.Lines,
		"ingested", res.Ingested,
		"skipped", res.Skipped,
	)
	return res, nil
}

// Columns returns the objective columns of the file's header. It reads the
// header itself when nothing was loaded yet.
func (l *Loader) Columns() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cols := l.reader.Columns(); cols != nil {
		return cols, nil
	}
	return ReadColumns(l.path)
}

// Reset drops the sink's data and the reader's position.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset()
}

func (l *Loader) reset() {
	l.reader.Reset()
	l.sink.Reset()
}

func (l *Loader) scan(ctx context.Context) (Result, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return Result{Lines: l.reader.Consumed()}, fmt.Errorf("open results: %w", err)
	}
	defer f.Close()

	return l.reader.Scan(ctx, f, l.sink)
}

// ReadColumns returns the objective columns named by the first non-blank line
// of the file at path: every header field except Method and Iteration.
func ReadColumns(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}

	text := strings.TrimPrefix(string(data), byteOrderMark)
	for _, line := range strings.Split(text, "\n") {
		fields := splitFields(line)
		if len(fields) == 0 {
			continue
		}
		var cols []string
		for _, f := range fields {
			if f != dseframe.MethodColumn && f != dseframe.IterationColumn {
				cols = append(cols, f)
			}
		}
		return cols, nil
	}
	return nil, fmt.Errorf("%s: no header line", path)
}
