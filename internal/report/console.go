package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/kingsejong-lang/kingsejong-lang/internal/diag"
	"github.com/kingsejong-lang/kingsejong-lang/internal/gate"
	"github.com/kingsejong-lang/kingsejong-lang/internal/stats"
)

const (
	nameColWidth = 28
	numColWidth  = 10
	ruleWidth    = 60
)

// Console renders the live transcript of a harness run. Styling and rule
// sizing degrade to plain fixed-width text when the writer is not a
// terminal, so CI logs stay clean.
type Console struct {
	w     io.Writer
	out   *termenv.Output
	width int
}

// NewConsole wraps w for transcript output.
func NewConsole(w io.Writer) *Console {
	profile := termenv.Ascii
	width := 0
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		profile = termenv.EnvColorProfile()
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			width = tw
		}
	}
	return &Console{
		w:     w,
		out:   termenv.NewOutput(w, termenv.WithProfile(profile)),
		width: width,
	}
}

func (c *Console) ok(s string) string   { return c.out.String(s).Foreground(c.out.Color("2")).String() }
func (c *Console) bad(s string) string  { return c.out.String(s).Foreground(c.out.Color("1")).String() }
func (c *Console) warn(s string) string { return c.out.String(s).Foreground(c.out.Color("3")).String() }

func (c *Console) rule(ch byte, n int) {
	if c.width > 0 && n > c.width {
		n = c.width
	}
	fmt.Fprintln(c.w, strings.Repeat(string(ch), n))
}

// --- Standard suite transcript ---

// SuiteHeader prints the run banner.
func (c *Console) SuiteHeader(interpreter string, runs, benchmarks int) {
	fmt.Fprintln(c.w, "Running KingSejong benchmarks")
	fmt.Fprintf(c.w, "  interpreter: %s\n", interpreter)
	fmt.Fprintf(c.w, "  runs per benchmark: %d\n", runs)
	fmt.Fprintf(c.w, "  benchmarks: %d\n", benchmarks)
}

// BenchmarkStart opens one benchmark's section.
func (c *Console) BenchmarkStart(name string) {
	fmt.Fprintf(c.w, "\n%s:\n", name)
}

// Rep reports one repetition's wall-clock time.
func (c *Console) Rep(i, n int, elapsed time.Duration) {
	fmt.Fprintf(c.w, "  run %d/%d: %s\n", i, n, formatSeconds(elapsed))
}

// Failure marks the benchmark failed and prints why.
func (c *Console) Failure(reason string) {
	fmt.Fprintf(c.w, "  %s %s\n", c.bad("✗"), reason)
}

// StatsBlock prints the aggregate after all repetitions succeeded.
func (c *Console) StatsBlock(s stats.Stats) {
	fmt.Fprintf(c.w, "  %s avg: %s\n", c.ok("✓"), formatSeconds(s.Mean))
	fmt.Fprintf(c.w, "    min: %s  max: %s  stddev: %s\n",
		formatSeconds(s.Min), formatSeconds(s.Max), formatSeconds(s.StdDev))
}

// CountersBlock prints the JIT line when the interpreter reported activity.
func (c *Console) CountersBlock(cs diag.Counters) {
	if cs.Zero() {
		return
	}
	fmt.Fprintf(c.w, "    jit: %d tier1 + %d tier2 compilations, %d inlined\n",
		cs.Tier1Compilations, cs.Tier2Compilations, cs.InlinedFunctions)
}

// Summary prints the end-of-run table with a totals footer. JIT columns
// appear only when at least one entry collected counters.
func (c *Console) Summary(r *Report) {
	t := r.Totals()
	withJIT := r.HasCounters()

	width := nameColWidth + 3*(numColWidth+1)
	if withJIT {
		width += 3 * (numColWidth + 1)
	}

	fmt.Fprintln(c.w)
	c.rule('=', width)
	fmt.Fprintln(c.w, "Benchmark results")
	c.rule('=', width)

	header := fmt.Sprintf("%-*s %*s %*s %*s",
		nameColWidth, "Benchmark", numColWidth, "Avg (s)", numColWidth, "Min (s)", numColWidth, "Max (s)")
	if withJIT {
		header += fmt.Sprintf(" %*s %*s %*s",
			numColWidth, "T1 comp", numColWidth, "T2 comp", numColWidth, "Inlined")
	}
	fmt.Fprintln(c.w, header)
	c.rule('-', width)

	for _, e := range r.Entries {
		var row string
		if e.Failed() {
			row = fmt.Sprintf("%-*s %*s %*s %*s",
				nameColWidth, truncStr(e.Name, nameColWidth), numColWidth, "FAILED", numColWidth, "-", numColWidth, "-")
		} else {
			row = fmt.Sprintf("%-*s %*.4f %*.4f %*.4f",
				nameColWidth, truncStr(e.Name, nameColWidth),
				numColWidth, e.Stats.MeanSeconds(), numColWidth, e.Stats.MinSeconds(), numColWidth, e.Stats.MaxSeconds())
		}
		if withJIT {
			if !e.Failed() && e.Counters != nil {
				row += fmt.Sprintf(" %*d %*d %*d",
					numColWidth, e.Counters.Tier1Compilations, numColWidth, e.Counters.Tier2Compilations,
					numColWidth, e.Counters.InlinedFunctions)
			} else {
				row += fmt.Sprintf(" %*s %*s %*s", numColWidth, "-", numColWidth, "-", numColWidth, "-")
			}
		}
		fmt.Fprintln(c.w, row)
	}

	c.rule('-', width)
	totalRow := fmt.Sprintf("%-*s %*.4f %*s %*s",
		nameColWidth, "Total", numColWidth, t.MeanSeconds, numColWidth, "", numColWidth, "")
	if withJIT {
		totalRow += fmt.Sprintf(" %*d %*d %*d",
			numColWidth, t.Counters.Tier1Compilations, numColWidth, t.Counters.Tier2Compilations,
			numColWidth, t.Counters.InlinedFunctions)
	}
	fmt.Fprintln(c.w, strings.TrimRight(totalRow, " "))
	fmt.Fprintf(c.w, "%-*s %*s\n", nameColWidth, "Succeeded", numColWidth, fmt.Sprintf("%d/%d", t.Succeeded, t.Attempted))
}

// Saved notes where a report landed.
func (c *Console) Saved(path string) {
	fmt.Fprintf(c.w, "\nResults saved to %s\n", path)
}

// Warnf prints a non-fatal warning, e.g. a skipped benchmark.
func (c *Console) Warnf(format string, args ...any) {
	fmt.Fprintf(c.w, "%s %s\n", c.warn("!"), fmt.Sprintf(format, args...))
}

// --- Regression transcript ---

// RegressionHeader prints the gate banner.
func (c *Console) RegressionHeader(interpreter, dir string) {
	c.rule('=', ruleWidth)
	fmt.Fprintln(c.w, "Performance regression check")
	c.rule('=', ruleWidth)
	fmt.Fprintf(c.w, "  interpreter: %s\n", interpreter)
	fmt.Fprintf(c.w, "  benchmarks: %s\n", dir)
	fmt.Fprintln(c.w)
}

// ProgressStart opens one benchmark's dot line.
func (c *Console) ProgressStart(name string, runs int) {
	fmt.Fprintf(c.w, "%s (%d runs) ", name, runs)
}

// Progress prints one repetition marker: a dot for success, X for failure.
func (c *Console) Progress(ok bool) {
	if ok {
		fmt.Fprint(c.w, ".")
	} else {
		fmt.Fprint(c.w, c.bad("X"))
	}
}

// ProgressEnd closes the dot line.
func (c *Console) ProgressEnd() {
	fmt.Fprintln(c.w)
}

// Verdicts prints the per-benchmark gate decisions.
func (c *Console) Verdicts(verdicts []gate.Verdict) {
	fmt.Fprintln(c.w)
	c.rule('=', ruleWidth)
	fmt.Fprintln(c.w, "Results")
	c.rule('=', ruleWidth)
	for _, v := range verdicts {
		switch {
		case v.Failed():
			fmt.Fprintf(c.w, "  %s: %s\n", v.Name, c.bad("FAILED"))
			fmt.Fprintf(c.w, "    %s\n", v.Error)
		case v.Passed:
			fmt.Fprintf(c.w, "  %s: %s\n", v.Name, c.ok("PASS"))
			fmt.Fprintf(c.w, "    %.3fs (threshold %.3fs)\n", v.Avg, v.Threshold)
		default:
			fmt.Fprintf(c.w, "  %s: %s\n", v.Name, c.bad("REGRESSION"))
			fmt.Fprintf(c.w, "    %.3fs exceeds threshold %.3fs\n", v.Avg, v.Threshold)
		}
	}
	c.rule('=', ruleWidth)
}

// RegressionOutcome prints the final gate decision.
func (c *Console) RegressionOutcome(passed bool) {
	fmt.Fprintln(c.w)
	if passed {
		fmt.Fprintln(c.w, c.ok("All performance checks passed."))
	} else {
		fmt.Fprintln(c.w, c.bad("Performance regression detected."))
	}
}

// --- Memory transcript ---

// MemoryHeader prints the profiling banner.
func (c *Console) MemoryHeader(interpreter string) {
	c.rule('=', ruleWidth)
	fmt.Fprintln(c.w, "Peak memory by benchmark")
	c.rule('=', ruleWidth)
	fmt.Fprintf(c.w, "  interpreter: %s\n", interpreter)
	fmt.Fprintln(c.w)
}

// MemoryStart opens one profiled benchmark's line.
func (c *Console) MemoryStart(label, file string) {
	fmt.Fprintf(c.w, "%s (%s) ... ", label, file)
}

// MemoryValue closes the line with the measurement or its absence.
func (c *Console) MemoryValue(res MemoryResult) {
	switch {
	case res.Err != "":
		fmt.Fprintf(c.w, "%s %s\n", c.bad("✗"), res.Err)
	case res.Unavailable:
		fmt.Fprintln(c.w, "unavailable")
	default:
		fmt.Fprintf(c.w, "%.1f MB\n", res.MB)
	}
}

// MemorySummary prints the closing table.
func (c *Console) MemorySummary(results []MemoryResult) {
	fmt.Fprintln(c.w)
	c.rule('-', 40)
	for _, res := range results {
		value := "unavailable"
		switch {
		case res.Err != "":
			value = "failed"
		case !res.Unavailable:
			value = fmt.Sprintf("%.1f MB", res.MB)
		}
		fmt.Fprintf(c.w, "%-*s %12s\n", nameColWidth-2, truncStr(res.Label, nameColWidth-2), value)
	}
	c.rule('-', 40)
}

func truncStr(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
