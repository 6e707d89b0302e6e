package lint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/semaphore"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/document"
)

var log = commonlog.GetLogger("cloudify-ls.lint")

var (
	// ErrLintUnavailable is returned when cfy-lint cannot be started.
	ErrLintUnavailable = errors.New("lint: cfy-lint unavailable")

	// ErrLintBusy is returned when the concurrency cap is reached. The run
	// is skipped, not queued.
	ErrLintBusy = errors.New("lint: too many concurrent runs")
)

// ExecFunc runs a command and returns its standard output and error. A
// non-zero exit status is reported as *exec.ExitError alongside the output.
type ExecFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// Options configure a Runner.
type Options struct {
	Command       string
	MaxConcurrent int
	Timeout       time.Duration
	MaxProblems   int
	Exec          ExecFunc
}

// Runner invokes cfy-lint, never more than MaxConcurrent at a time.
type Runner struct {
	opts Options
	sem  *semaphore.Weighted
}

// NewRunner returns a Runner with defaults filled in.
func NewRunner(opts Options) *Runner {
	if opts.Command == "" {
		opts.Command = "cfy-lint"
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Exec == nil {
		opts.Exec = runCommand
	}
	return &Runner{opts: opts, sem: semaphore.NewWeighted(int64(opts.MaxConcurrent))}
}

// Available reports whether the lint command is on the PATH.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.opts.Command)
	return err == nil
}

// Lint runs cfy-lint on the blueprint at path, whose current text is doc.
// When cfy-lint cannot be started the single Unavailable finding is returned
// together with ErrLintUnavailable.
func (r *Runner) Lint(ctx context.Context, doc *document.Document, path string) ([]Finding, error) {
	out, err := r.run(ctx, "-f", "json", "-b", path)
	if errors.Is(err, ErrLintUnavailable) {
		return []Finding{Unavailable()}, err
	}
	if err != nil {
		return nil, err
	}
	return Findings(doc, ParseOutput(out), r.opts.MaxProblems), nil
}

// Fix asks cfy-lint to fix one finding in place. fix is a FixArgument.
func (r *Runner) Fix(ctx context.Context, path, fix string) error {
	_, err := r.run(ctx, "-b", path, "--fix", fix)
	return err
}

// run returns the report of one invocation. cfy-lint writes its findings to
// standard error and exits non-zero when there are any, so an exit status
// alone is no failure.
func (r *Runner) run(ctx context.Context, args ...string) ([]byte, error) {
	if !r.sem.TryAcquire(1) {
		return nil, ErrLintBusy
	}
	defer r.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	log.Debugf("running %s %v", r.opts.Command, args)
	stdout, stderr, err := r.opts.Exec(ctx, r.opts.Command, args...)
	if len(stdout) > 0 {
		log.Debugf("unexpected output from %s: %s", r.opts.Command, stdout)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return stderr, nil
	case ctx.Err() != nil:
		return nil, fmt.Errorf("%s: %w", r.opts.Command, ctx.Err())
	case errors.As(err, &exitErr):
		return stderr, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrLintUnavailable, err)
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
