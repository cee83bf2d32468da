// Package runner launches the exploration tool and streams its output.
//
// The tool typically forks workers of its own, so on Unix it runs in a fresh
// process group and Stop signals the whole group.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyCommand means the command line has no fields.
var ErrEmptyCommand = errors.New("empty command")

// Stream names the pipe a Chunk came from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Chunk is one read from the child's stdout or stderr.
type Chunk struct {
	Stream Stream
	Data   []byte
}

type options struct {
	dir    string
	grace  time.Duration
	logger *slog.Logger
}

// Option configures Start.
type Option func(*options)

// WithDir sets the child's working directory.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithGracePeriod sets how long Stop waits after the terminate signal before
// killing. Default: 2s.
func WithGracePeriod(d time.Duration) Option {
	return func(o *options) { o.grace = d }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Handle controls one running command.
type Handle struct {
	id      uuid.UUID
	command string
	cmd     *exec.Cmd
	grace   time.Duration
	logger  *slog.Logger

	output chan Chunk
	done   chan struct{}

	stopOnce sync.Once

	// set before done is closed
	exitCode int
	err      error
}

// Start runs command, split on white space, and returns once the process has
// started. Quoting is not interpreted; callers holding an argument vector use
// StartArgs. The caller must drain Output; the child blocks when its pipes
// fill.
//
// Canceling ctx stops the process like Stop.
func Start(ctx context.Context, command string, opts ...Option) (*Handle, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, ErrEmptyCommand
	}
	return start(ctx, command, fields[0], fields[1:], opts)
}

// StartArgs runs name with args passed through unchanged, as a shell would
// after word splitting. Otherwise it behaves like Start.
func StartArgs(ctx context.Context, name string, args []string, opts ...Option) (*Handle, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyCommand
	}
	return start(ctx, commandLine(name, args), name, args, opts)
}

func start(ctx context.Context, command, name string, args []string, opts []Option) (*Handle, error) {
	o := options{grace: 2 * time.Second, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	cmd := exec.Command(name, args...)
	cmd.Dir = o.dir
	setProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %q: %w", name, err)
	}

	id := uuid.New()
	h := &Handle{
		id:       id,
		command:  command,
		cmd:      cmd,
		grace:    o.grace,
		logger:   o.logger.With("run", id.String()),
		output:   make(chan Chunk, 64),
		done:     make(chan struct{}),
		exitCode: -1,
	}
	h.logger.Info("process started", "command", command, "pid", cmd.Process.Pid)

	var g errgroup.Group
	g.Go(func() error { return h.pump(stdout, Stdout) })
	g.Go(func() error { return h.pump(stderr, Stderr) })

	go func() {
		pumpErr := g.Wait()
		close(h.output)
		h.finish(cmd.Wait(), pumpErr)
	}()

	go func() {
		select {
		case <-ctx.Done():
			h.Stop()
		case <-h.done:
		}
	}()

	return h, nil
}

// commandLine renders an argument vector for logs, quoting the arguments
// that would not survive white-space splitting.
func commandLine(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{name}, args...) {
		if a == "" || strings.ContainsAny(a, " \t\n'\"") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

func (h *Handle) pump(r io.Reader, stream Stream) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			h.output <- Chunk{Stream: stream, Data: data}
		}
		if err == io.EOF || errors.Is(err, os.ErrClosed) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", stream, err)
		}
	}
}

func (h *Handle) finish(waitErr, pumpErr error) {
	if state := h.cmd.ProcessState; state != nil {
		h.exitCode = state.ExitCode()
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr != nil && !(errors.As(waitErr, &exitErr) && h.exitCode >= 0):
		// Killed by a signal, or Wait itself failed.
		h.err = waitErr
	case pumpErr != nil:
		h.err = pumpErr
	}

	h.logger.Info("process exited", "exit_code", h.exitCode, "error", h.err)
	close(h.done)
}

// ID identifies this run in logs.
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// Command returns the command line as given to Start, or the argument vector
// given to StartArgs rendered as one line.
func (h *Handle) Command() string {
	return h.command
}

// PID returns the child's process ID.
func (h *Handle) PID() int {
	return h.cmd.Process.Pid
}

// Output delivers the child's stdout and stderr in read order per stream. It
// is closed when both pipes reach EOF.
func (h *Handle) Output() <-chan Chunk {
	return h.output
}

// Done is closed when the process has exited and its output is drained.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Running reports whether the process has not exited yet.
func (h *Handle) Running() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the process exits. A non-zero exit status is reported
// through exitCode with a nil error; err is set when the process was killed by
// a signal (exitCode -1) or its output could not be read.
func (h *Handle) Wait() (exitCode int, err error) {
	<-h.done
	return h.exitCode, h.err
}

// Stop terminates the process group, waits up to the grace period, then
// kills the group and the process. It returns once the process has exited.
// Output must still be drained for Stop to return.
func (h *Handle) Stop() {
	if !h.Running() {
		return
	}

	h.stopOnce.Do(func() {
		p := h.cmd.Process
		h.logger.Info("stopping process", "pid", p.Pid, "grace", h.grace)

		if err := terminate(p); err != nil {
			h.logger.Debug("terminate failed", "error", err)
		}

		select {
		case <-h.done:
			return
		case <-time.After(h.grace):
		}

		if err := killGroup(p); err != nil {
			h.logger.Debug("kill process group failed", "error", err)
		}
		if err := p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			h.logger.Warn("kill process failed", "pid", p.Pid, "error", err)
		}
	})

	<-h.done
}
