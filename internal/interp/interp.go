// Package interp runs the interpreter under test as a child process and
// reports what happened: wall-clock time, exit status, and both output
// streams. The harness never links against the interpreter; this boundary
// is the whole integration surface.
package interp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"time"
)

const (
	// DefaultTimeout bounds one functional benchmark invocation.
	DefaultTimeout = 30 * time.Second

	// DefaultMemoryTimeout bounds a memory-profiled invocation. Profiled
	// runs get extra headroom for the wrapper's accounting overhead.
	DefaultMemoryTimeout = 60 * time.Second

	// TimePath is the profiler wrapper used for memory measurement. It
	// prints the child's maximum resident set size on stderr.
	TimePath = "/usr/bin/time"
)

// timeFlag selects the verbose-resources flag for the local time(1): BSD
// time (macOS) takes -l, GNU time takes -v.
func timeFlag() string {
	if runtime.GOOS == "darwin" {
		return "-l"
	}
	return "-v"
}

// Result is one observed invocation.
type Result struct {
	Elapsed  time.Duration
	ExitCode int
	Stdout   string
	Stderr   string
}

// FailKind classifies why an invocation produced no usable sample.
type FailKind string

const (
	FailExec    FailKind = "exec"    // child ran and exited non-zero
	FailTimeout FailKind = "timeout" // child overran the deadline and was killed
	FailSpawn   FailKind = "spawn"   // child never ran at all
)

// RunError reports a failed invocation together with whatever diagnostic
// text the child managed to produce.
type RunError struct {
	Kind   FailKind
	Stderr string
	Err    error
}

func (e *RunError) Error() string {
	switch e.Kind {
	case FailTimeout:
		return fmt.Sprintf("timed out: %v", e.Err)
	case FailExec:
		return fmt.Sprintf("exited with error: %v", e.Err)
	default:
		return fmt.Sprintf("failed to start: %v", e.Err)
	}
}

func (e *RunError) Unwrap() error { return e.Err }

// IsTimeout reports whether err wraps a deadline-kill of the child.
func IsTimeout(err error) bool {
	var re *RunError
	return errors.As(err, &re) && re.Kind == FailTimeout
}

// Invoker runs the interpreter once per call. Implementations capture both
// output streams in full and time the complete child lifetime.
type Invoker interface {
	Invoke(ctx context.Context, args ...string) (Result, error)
}

// Exec invokes a real executable with a bounded deadline.
type Exec struct {
	Path    string        // interpreter executable
	Wrapper []string      // optional command prefix, e.g. the time(1) profiler
	Timeout time.Duration // per-invocation deadline; DefaultTimeout when zero
}

// NewExec returns an Exec for the interpreter at path with the default
// deadline.
func NewExec(path string) *Exec {
	return &Exec{Path: path, Timeout: DefaultTimeout}
}

// NewProfiled returns an Exec that runs the interpreter under the time(1)
// profiler so peak resident memory shows up on the diagnostic stream.
func NewProfiled(path string) *Exec {
	return &Exec{
		Path:    path,
		Wrapper: []string{TimePath, timeFlag()},
		Timeout: DefaultMemoryTimeout,
	}
}

// Invoke runs the interpreter with args and waits for exit or deadline.
// Non-zero exit, deadline overrun, and spawn faults come back as *RunError.
// No retries happen at this layer.
func (e *Exec) Invoke(ctx context.Context, args ...string) (Result, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	argv := append(append([]string{}, e.Wrapper...), e.Path)
	argv = append(argv, args...)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// A killed interpreter can leave forked children holding the output
	// pipes; don't let them stall the deadline.
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Elapsed: time.Since(start),
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	}
	if ctx.Err() == context.DeadlineExceeded {
		return res, &RunError{Kind: FailTimeout, Stderr: res.Stderr, Err: ctx.Err()}
	}
	if exitErr != nil {
		return res, &RunError{Kind: FailExec, Stderr: res.Stderr, Err: err}
	}
	return res, &RunError{Kind: FailSpawn, Stderr: res.Stderr, Err: err}
}
