package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kingsejong-lang/kingsejong-lang/internal/bench"
	"github.com/kingsejong-lang/kingsejong-lang/internal/gate"
	"github.com/kingsejong-lang/kingsejong-lang/internal/report"
	"github.com/kingsejong-lang/kingsejong-lang/internal/stats"
)

// RunRegression executes the CI gate: every benchmark in the threshold
// table in name order, fail-fast sample collection, and an inclusive
// mean-vs-threshold decision per benchmark. The bool is the suite-level
// gate; the error covers suite-fatal conditions only.
func (c *Controller) RunRegression(ctx context.Context) ([]gate.Verdict, bool, error) {
	if err := c.CheckInterpreter(); err != nil {
		return nil, false, err
	}
	c.Console.RegressionHeader(c.Config.Interpreter, c.Config.Dir)

	var verdicts []gate.Verdict
	for _, name := range gate.Names(c.Config.Thresholds) {
		b, created, err := bench.Ensure(c.Config.Dir, name)
		if err != nil {
			if errors.Is(err, bench.ErrMissingFixture) {
				// A payload nobody checked in and nobody can synthesize:
				// warn and leave it out of the gate.
				c.Console.Warnf("missing payload %s, skipping", name+bench.Ext)
				continue
			}
			return nil, false, err
		}
		if created {
			c.Console.Warnf("synthesized missing payload %s", b.Path)
		}
		verdicts = append(verdicts, c.gateBenchmark(ctx, b, c.Config.Thresholds[name]))
	}

	passed := gate.AllPassed(verdicts)
	c.Console.Verdicts(verdicts)
	c.Console.RegressionOutcome(passed)

	if c.Config.Output != "" {
		if err := report.WriteRegressionJSON(c.Config.Output, verdicts); err != nil {
			return verdicts, passed, fmt.Errorf("writing regression report: %w", err)
		}
		c.Console.Saved(c.Config.Output)
	}
	return verdicts, passed, nil
}

// gateBenchmark collects samples for one gated benchmark. The first failed
// repetition abandons the benchmark with a failed verdict.
func (c *Controller) gateBenchmark(ctx context.Context, b bench.Benchmark, threshold float64) gate.Verdict {
	args := c.interpArgs(b)
	c.Console.ProgressStart(b.Name, c.Config.Runs)

	var times []time.Duration
	for i := 0; i < c.Config.Runs; i++ {
		res, err := c.Invoker.Invoke(ctx, args...)
		if err != nil {
			c.Console.Progress(false)
			c.Console.ProgressEnd()
			return gate.Fail(b.Name, c.failReason(err, c.Config.Timeout))
		}
		times = append(times, res.Elapsed)
		c.Console.Progress(true)
	}
	c.Console.ProgressEnd()

	s, err := stats.Aggregate(times)
	if err != nil {
		return gate.Fail(b.Name, err.Error())
	}
	return gate.Evaluate(b.Name, s, threshold)
}
