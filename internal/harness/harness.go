// Package harness drives benchmark suites end to end: interpreter checks,
// payload discovery, the repetition loop, aggregation, and reporting.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kingsejong-lang/kingsejong-lang/internal/bench"
	"github.com/kingsejong-lang/kingsejong-lang/internal/config"
	"github.com/kingsejong-lang/kingsejong-lang/internal/diag"
	"github.com/kingsejong-lang/kingsejong-lang/internal/interp"
	"github.com/kingsejong-lang/kingsejong-lang/internal/report"
	"github.com/kingsejong-lang/kingsejong-lang/internal/stats"
)

// Controller runs benchmark suites against one interpreter build.
type Controller struct {
	Config  config.Config
	Console *report.Console

	// Invoker runs one functional repetition. Tests install scripted fakes.
	Invoker interp.Invoker
	// MemInvoker runs one memory-profiled invocation.
	MemInvoker interp.Invoker
}

// New builds a controller for cfg, writing its transcript to out.
func New(cfg config.Config, out io.Writer) *Controller {
	run := interp.NewExec(cfg.Interpreter)
	run.Timeout = cfg.Timeout
	mem := interp.NewProfiled(cfg.Interpreter)
	mem.Timeout = cfg.MemoryTimeout
	return &Controller{
		Config:     cfg,
		Console:    report.NewConsole(out),
		Invoker:    run,
		MemInvoker: mem,
	}
}

// CheckInterpreter verifies the interpreter executable exists before any
// benchmark runs. Its absence is the only suite-fatal setup error.
func (c *Controller) CheckInterpreter() error {
	info, err := os.Stat(c.Config.Interpreter)
	if err != nil {
		return fmt.Errorf("interpreter not found at %s (build it first)", c.Config.Interpreter)
	}
	if info.IsDir() {
		return fmt.Errorf("interpreter path %s is a directory", c.Config.Interpreter)
	}
	return nil
}

// Run executes the standard suite: every payload in the benchmark dir,
// Config.Runs repetitions each. Per-benchmark failures land in the report
// and do not stop the suite; the returned error covers suite-fatal
// conditions only.
func (c *Controller) Run(ctx context.Context) (*report.Report, error) {
	if err := c.CheckInterpreter(); err != nil {
		return nil, err
	}
	benches, err := bench.Discover(c.Config.Dir)
	if err != nil {
		return nil, err
	}

	rep := report.New(c.Config.Interpreter, c.Config.Runs)
	c.Console.SuiteHeader(c.Config.Interpreter, c.Config.Runs, len(benches))

	for _, b := range benches {
		c.Console.BenchmarkStart(b.Name)
		rep.Append(c.runBenchmark(ctx, b))
	}

	c.Console.Summary(rep)
	if c.Config.Output != "" {
		if err := report.WriteTextFile(c.Config.Output, rep); err != nil {
			return rep, fmt.Errorf("writing report: %w", err)
		}
		c.Console.Saved(c.Config.Output)
	}
	return rep, nil
}

// runBenchmark executes all repetitions of one benchmark. Any failed
// repetition discards the whole sample set: a partial aggregate would hide
// exactly the slow or crashing runs the harness exists to catch.
func (c *Controller) runBenchmark(ctx context.Context, b bench.Benchmark) report.Entry {
	args := c.interpArgs(b)
	var times []time.Duration
	var counters *diag.Counters

	for i := 0; i < c.Config.Runs; i++ {
		res, err := c.Invoker.Invoke(ctx, args...)
		if err != nil {
			reason := c.failReason(err, c.Config.Timeout)
			c.Console.Failure(reason)
			return report.Entry{Name: b.Name, Err: reason}
		}
		times = append(times, res.Elapsed)
		c.Console.Rep(i+1, c.Config.Runs, res.Elapsed)
		// Counters come from the first successful repetition only; the
		// payload is identical each time, so so are the counts.
		if counters == nil && c.Config.JITStats {
			cs := diag.ParseCounters(res.Stderr)
			counters = &cs
		}
	}

	s, err := stats.Aggregate(times)
	if err != nil {
		return report.Entry{Name: b.Name, Err: err.Error()}
	}
	c.Console.StatsBlock(s)
	if counters != nil {
		c.Console.CountersBlock(*counters)
	}
	return report.Entry{Name: b.Name, Stats: &s, Counters: counters}
}

// interpArgs builds the interpreter argument list: extra arguments first,
// then the diagnostic flag when JIT stats are on, with the payload path
// always last.
func (c *Controller) interpArgs(b bench.Benchmark) []string {
	args := append([]string{}, c.Config.InterpArgs...)
	if c.Config.JITStats {
		args = append(args, c.Config.DiagFlag)
	}
	return append(args, b.Path)
}

// failReason renders an invocation error the way reports record it.
func (c *Controller) failReason(err error, timeout time.Duration) string {
	var re *interp.RunError
	if errors.As(err, &re) {
		switch re.Kind {
		case interp.FailTimeout:
			return fmt.Sprintf("timed out (%s)", timeout)
		case interp.FailExec:
			detail := truncate(strings.TrimSpace(re.Stderr), 300)
			if detail == "" {
				detail = re.Err.Error()
			}
			return "execution failed: " + detail
		}
	}
	return err.Error()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "... (truncated)"
}
