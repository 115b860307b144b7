// Package builder runs the external static-site generation command,
// serializing concurrent invocations to at most one in-flight build.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/halvard/skald/internal/apperr"
)

// DefaultTimeout is the wall-clock limit for a single build.
const DefaultTimeout = 30 * time.Second

// DefaultMaxOutput caps the captured bytes per stream.
const DefaultMaxOutput = 1 << 20

// Result is the outcome of one build attempt.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Runner is the build contract consumed by the API layer and the watcher.
type Runner interface {
	Build(ctx context.Context) Result
	InProgress() bool
}

// Builder invokes a fixed external command with a fixed timeout and output
// cap. The capacity-1 semaphore is the single shared-mutable-resource
// discipline in the system: a second caller gets an immediate
// "build already in progress" result, never a queue slot.
type Builder struct {
	command string
	args    []string
	dir     string
	timeout time.Duration
	maxOut  int64
	sem     *semaphore.Weighted
}

// New creates a Builder for the given command, run in dir.
// Zero timeout and maxOutput fall back to the package defaults.
func New(command string, args []string, dir string, timeout time.Duration, maxOutput int64) *Builder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}
	return &Builder{
		command: command,
		args:    args,
		dir:     dir,
		timeout: timeout,
		maxOut:  maxOutput,
		sem:     semaphore.NewWeighted(1),
	}
}

// InProgress reports whether a build currently holds the semaphore.
// The answer is advisory: it can be stale by the time the caller acts on it.
func (b *Builder) InProgress() bool {
	if b.sem.TryAcquire(1) {
		b.sem.Release(1)
		return false
	}
	return true
}

// Build runs one build. If another build is in flight it returns immediately
// with a busy result; it never queues and never blocks. Failures (timeout,
// non-zero exit, output over the cap, non-warning stderr) are reported in the
// Result and logged; nothing is retried.
func (b *Builder) Build(ctx context.Context) Result {
	if !b.sem.TryAcquire(1) {
		return Result{Success: false, Error: apperr.ErrBuildBusy.Error()}
	}
	defer b.sem.Release(1)

	id := uuid.NewString()
	logger := slog.Default().With(slog.String("build_id", id))

	runCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, b.command, b.args...)
	cmd.Dir = b.dir
	// Generators spawn helper processes that inherit our output pipes.
	// Run the command in its own process group and kill the whole group on
	// cancel; otherwise a surviving grandchild keeps the pipes open and
	// Wait blocks past the deadline. WaitDelay is the backstop in case
	// something still escapes the group.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = time.Second
	stdout := newCapBuffer(b.maxOut)
	stderr := newCapBuffer(b.maxOut)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	logger.Info("build started",
		slog.String("command", b.command),
		slog.String("dir", b.dir))
	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	out := stdout.String()
	errOut := stderr.String()

	fail := func(msg string) Result {
		logger.Error("build failed",
			slog.String("reason", msg),
			slog.Duration("elapsed", elapsed),
			slog.String("stderr", errOut))
		return Result{Success: false, Output: out, Error: msg}
	}

	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		return fail(fmt.Sprintf("build timed out after %s", b.timeout))
	case runErr != nil:
		return fail(fmt.Sprintf("build command failed: %v", runErr))
	case stdout.Overflowed() || stderr.Overflowed():
		return fail(fmt.Sprintf("build output exceeded %d bytes", b.maxOut))
	case hasErrorLines(errOut):
		// A diagnostic stream carrying more than warnings is a failure
		// even when the process exits zero.
		return fail("build wrote errors to stderr")
	}

	logger.Info("build succeeded", slog.Duration("elapsed", elapsed))
	return Result{Success: true, Output: out}
}

// hasErrorLines reports whether stderr contains any non-empty line that is
// not warning-level.
func hasErrorLines(stderr string) bool {
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)
		if strings.HasPrefix(upper, "WARN") {
			continue
		}
		return true
	}
	return false
}
