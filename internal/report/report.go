// Package report holds the outcome of a harness run and renders it: a live
// console transcript, a persisted text report, and the regression JSON the
// CI pipeline consumes.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kingsejong-lang/kingsejong-lang/internal/diag"
	"github.com/kingsejong-lang/kingsejong-lang/internal/gate"
	"github.com/kingsejong-lang/kingsejong-lang/internal/stats"
)

// Entry is one benchmark's outcome inside a report.
type Entry struct {
	Name     string
	Stats    *stats.Stats   // nil when the benchmark failed
	Counters *diag.Counters // nil unless JIT diagnostics were collected
	Err      string         // failure reason when Stats is nil
}

// Failed reports whether the benchmark produced no aggregate.
func (e Entry) Failed() bool { return e.Stats == nil }

// Report collects every benchmark outcome of one run plus the metadata
// needed to tell two runs apart. Entries are appended while the run is in
// flight and the report is written out once afterwards.
type Report struct {
	RunID       string
	Interpreter string
	Runs        int
	StartedAt   time.Time
	Entries     []Entry
}

// New returns an empty report for a run against the given interpreter.
func New(interpreter string, runs int) *Report {
	return &Report{
		RunID:       uuid.New().String(),
		Interpreter: interpreter,
		Runs:        runs,
		StartedAt:   time.Now(),
	}
}

// Append records one benchmark outcome.
func (r *Report) Append(e Entry) {
	r.Entries = append(r.Entries, e)
}

// HasCounters reports whether any entry carries JIT diagnostics, which
// decides the summary table layout.
func (r *Report) HasCounters() bool {
	for _, e := range r.Entries {
		if e.Counters != nil {
			return true
		}
	}
	return false
}

// Totals is the summary footer: total mean runtime across succeeded
// benchmarks, summed JIT counters, and the success count.
type Totals struct {
	MeanSeconds float64
	Counters    diag.Counters
	Succeeded   int
	Attempted   int
}

// Totals folds the entries into the summary footer.
func (r *Report) Totals() Totals {
	t := Totals{Attempted: len(r.Entries)}
	for _, e := range r.Entries {
		if e.Failed() {
			continue
		}
		t.MeanSeconds += e.Stats.MeanSeconds()
		t.Succeeded++
		if e.Counters != nil {
			t.Counters.Add(*e.Counters)
		}
	}
	return t
}

// MemoryResult is one profiled benchmark's peak resident memory figure.
type MemoryResult struct {
	Name        string
	Label       string
	MB          float64
	Unavailable bool   // profiler ran but printed no recognizable memory line
	Err         string // invocation failed; MB and Unavailable are meaningless
}

// WriteText renders the persisted report: line-delimited key/value text that
// stays parseable without this package.
func (r *Report) WriteText(w io.Writer) error {
	bw := &errWriter{w: w}
	bw.printf("KingSejong benchmark results\n")
	bw.printf("run: %s\n", r.RunID)
	bw.printf("interpreter: %s\n", r.Interpreter)
	bw.printf("runs: %d\n", r.Runs)
	bw.printf("started: %s\n", r.StartedAt.UTC().Format(time.RFC3339))

	for _, e := range r.Entries {
		bw.printf("\n%s:\n", e.Name)
		if e.Failed() {
			bw.printf("  failed: %s\n", e.Err)
			continue
		}
		bw.printf("  avg: %s\n", formatSeconds(e.Stats.Mean))
		bw.printf("  min: %s\n", formatSeconds(e.Stats.Min))
		bw.printf("  max: %s\n", formatSeconds(e.Stats.Max))
		bw.printf("  stddev: %s\n", formatSeconds(e.Stats.StdDev))
		bw.printf("  times:")
		for _, t := range e.Stats.Times {
			bw.printf(" %s", formatSeconds(t))
		}
		bw.printf("\n")
		if e.Counters != nil {
			bw.printf("  tier1 compilations: %d\n", e.Counters.Tier1Compilations)
			bw.printf("  tier2 compilations: %d\n", e.Counters.Tier2Compilations)
			bw.printf("  tier1 executions: %d\n", e.Counters.Tier1Executions)
			bw.printf("  tier2 executions: %d\n", e.Counters.Tier2Executions)
			bw.printf("  inlined functions: %d\n", e.Counters.InlinedFunctions)
		}
	}
	return bw.err
}

// WriteTextFile persists the report at path, creating parent directories as
// needed.
func WriteTextFile(path string, r *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WriteText(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteRegressionJSON persists verdicts keyed by benchmark name, the format
// the CI pipeline archives.
func WriteRegressionJSON(path string, verdicts []gate.Verdict) error {
	m := make(map[string]gate.Verdict, len(verdicts))
	for _, v := range verdicts {
		m[v.Name] = v
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.4fs", d.Seconds())
}

// errWriter amortizes error checks across a batch of writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
