package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/alexshd/dseframe"
)

// ErrTruncated means the file now holds fewer lines than were already
// consumed. The owner resets its session and reader and scans again.
var ErrTruncated = errors.New("results file truncated")

// Sink receives one record per well-formed data row, in file order.
// *dseframe.Session satisfies it.
type Sink interface {
	Ingest(key dseframe.GroupKey, p dseframe.Point) (dseframe.GroupID, error)
}

// Result summarizes one Scan.
type Result struct {
	Lines    int `json:"lines"`    // lines consumed in total, header included
	Ingested int `json:"ingested"` // rows handed to the sink by this scan
	Skipped  int `json:"skipped"`  // malformed rows dropped by this scan
}

// Reader turns results CSV text into Sink records. It keeps the header and the
// consumed line count between scans, so it is bound to one file.
//
// Not safe for concurrent use.
type Reader struct {
	cfg    dseframe.Config
	logger *slog.Logger

	header    []string
	method    int
	iteration int
	x, y      int

	consumed int
	skipAll  bool // set once a row was dropped under PolicySkipAllRemaining
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the reader's logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReader creates a reader for the objective columns and record policy in
// cfg.
func NewReader(cfg dseframe.Config, opts ...Option) *Reader {
	r := &Reader{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scan reads src from its first byte, skips the lines consumed by earlier
// scans and feeds every new data row to sink.
//
// Errors:
//   - ErrMissingRequiredColumn (wrapped): the header lacks a required column.
//     Nothing was ingested.
//   - ErrRecordShapeMismatch or ErrInvalidPoint (wrapped) under PolicyAbort:
//     rows before the bad one were ingested and stay consumed; the bad row is
//     retried by the next Scan.
//   - ErrTruncated: src has fewer lines than were consumed.
//   - ctx.Err() when ctx is canceled between rows.
func (r *Reader) Scan(ctx context.Context, src io.Reader, sink Sink) (Result, error) {
	var res Result
	br := bufio.NewReader(src)

	line := 0
	for {
		if err := ctx.Err(); err != nil {
			res.Lines = r.consumed
			return res, err
		}

		text, err := br.ReadString('\n')
		if err == io.EOF {
			// A final line without newline may still be being written.
			break
		}
		if err != nil {
			res.Lines = r.consumed
			return res, fmt.Errorf("read line %d: %w", line+1, err)
		}

		line++
		if line <= r.consumed {
			continue
		}

		if err := r.consume(line, text, sink, &res); err != nil {
			res.Lines = r.consumed
			return res, err
		}
		r.consumed = line
	}

	res.Lines = r.consumed
	if line < r.consumed {
		return res, fmt.Errorf("%w: %d lines, %d already consumed", ErrTruncated, line, r.consumed)
	}
	return res, nil
}

func (r *Reader) consume(line int, text string, sink Sink, res *Result) error {
	if line == 1 {
		text = strings.TrimPrefix(text, byteOrderMark)
	}
	fields := splitFields(text)

	if r.header == nil {
		if len(fields) == 0 {
			return nil
		}
		return r.readHeader(fields)
	}

	if len(fields) == 0 {
		return nil
	}

	key, p, err := r.parseRecord(line, fields)
	if err != nil {
		return r.malformed(line, err, res)
	}

	if _, err := sink.Ingest(key, p); err != nil {
		if errors.Is(err, dseframe.ErrInvalidPoint) {
			return r.malformed(line, err, res)
		}
		return fmt.Errorf("line %d: %w", line, err)
	}
	res.Ingested++
	return nil
}

func (r *Reader) readHeader(fields []string) error {
	index := make(map[string]int, len(fields))
	for i, name := range fields {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := index[name]
		if !ok {
			missing = append(missing, name)
		}
		return i
	}

	method := lookup(dseframe.MethodColumn)
	iteration := lookup(dseframe.IterationColumn)
	x := lookup(r.cfg.XVar)
	y := lookup(r.cfg.YVar)

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", dseframe.ErrMissingRequiredColumn, strings.Join(missing, ", "))
	}

	r.header = fields
	r.method, r.iteration, r.x, r.y = method, iteration, x, y
	r.skipAll = false

	r.logger.Debug("results header read",
		"columns", len(fields),
		"x_var", r.cfg.XVar,
		"y_var", r.cfg.YVar,
	)
	return nil
}

func (r *Reader) parseRecord(line int, fields []string) (dseframe.GroupKey, dseframe.Point, error) {
	if len(fields) != len(r.header) {
		return dseframe.GroupKey{}, dseframe.Point{}, fmt.Errorf("%w: line %d has %d fields, header has %d",
			dseframe.ErrRecordShapeMismatch, line, len(fields), len(r.header))
	}

	x, err := parseObjective(fields[r.x])
	if err != nil {
		return dseframe.GroupKey{}, dseframe.Point{}, fmt.Errorf("%w: line %d %s: %w", dseframe.ErrInvalidPoint, line, r.cfg.XVar, err)
	}
	y, err := parseObjective(fields[r.y])
	if err != nil {
		return dseframe.GroupKey{}, dseframe.Point{}, fmt.Errorf("%w: line %d %s: %w", dseframe.ErrInvalidPoint, line, r.cfg.YVar, err)
	}

	key := dseframe.GroupKey{Method: fields[r.method], Iteration: fields[r.iteration]}
	return key, dseframe.Pt(x, y), nil
}

func parseObjective(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

// malformed applies the record policy to a bad row. A nil return means the
// row was dropped and scanning continues.
func (r *Reader) malformed(line int, err error, res *Result) error {
	switch r.cfg.RecordPolicy {
	case dseframe.PolicySkipOne:
		res.Skipped++
		r.logger.Warn("skipping malformed record", "line", line, "error", err)
		return nil

	case dseframe.PolicySkipAllRemaining:
		res.Skipped++
		if !r.skipAll {
			r.skipAll = true
			r.logger.Warn("skipping malformed records from here on", "line", line, "error", err)
		}
		return nil

	default:
		return err
	}
}

// byteOrderMark is written at the start of the file by spreadsheet exports.
const byteOrderMark = "\ufeff"

// splitFields splits a CSV line on commas, trims each field and drops empty
// ones.
func splitFields(text string) []string {
	text = strings.TrimRight(text, "\r\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	parts := strings.Split(text, ",")
	fields := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}
	return fields
}

// Columns returns the header columns selectable as objectives, in file order.
// Nil until a header was read.
func (r *Reader) Columns() []string {
	if r.header == nil {
		return nil
	}
	var cols []string
	for i, name := range r.header {
		if i == r.method || i == r.iteration {
			continue
		}
		cols = append(cols, name)
	}
	return cols
}

// Header returns a copy of the header row. Nil until a header was read.
func (r *Reader) Header() []string {
	if r.header == nil {
		return nil
	}
	return append([]string(nil), r.header...)
}

// Consumed returns the number of lines consumed so far, header included.
func (r *Reader) Consumed() int {
	return r.consumed
}

// Reset forgets the header and consumed lines.
func (r *Reader) Reset() {
	r.header = nil
	r.consumed = 0
	r.skipAll = false
}

// Reconfigure installs cfg and resets the reader.
func (r *Reader) Reconfigure(cfg dseframe.Config) {
	r.cfg = cfg
	r.Reset()
}
