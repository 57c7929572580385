// Package gate decides whether measured benchmark times are acceptable for
// CI. Thresholds and repetition count are fixed constants so results stay
// comparable from one pipeline run to the next.
package gate

import (
	"sort"

	"github.com/kingsejong-lang/kingsejong-lang/internal/stats"
)

// DefaultRuns is the repetition count for regression gating. Kept low so the
// gate finishes inside a CI minute; the thresholds carry the slack instead.
const DefaultRuns = 3

// DefaultThresholds returns the per-benchmark ceiling on mean runtime in
// seconds, sized with roughly 20% margin over established baselines.
func DefaultThresholds() map[string]float64 {
	return map[string]float64{
		"arithmetic":     0.1,
		"loop_intensive": 0.1,
		"fibonacci_15":   0.5,
		"array_ops":      0.15,
		"memory_test":    0.2,
	}
}

// Verdict is one benchmark's regression decision, in the shape persisted to
// the regression report. Failed benchmarks carry only Error and Passed.
type Verdict struct {
	Name      string  `json:"-"`
	Avg       float64 `json:"avg,omitempty"`
	Min       float64 `json:"min,omitempty"`
	Max       float64 `json:"max,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Passed    bool    `json:"passed"`
	Runs      int     `json:"runs,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// Failed reports whether the benchmark produced no usable samples at all,
// as opposed to running slower than its threshold.
func (v Verdict) Failed() bool { return v.Error != "" }

// Evaluate judges one benchmark's aggregate against its threshold. The
// boundary is inclusive: a mean exactly at the threshold passes.
func Evaluate(name string, s stats.Stats, threshold float64) Verdict {
	return Verdict{
		Name:      name,
		Avg:       s.MeanSeconds(),
		Min:       s.MinSeconds(),
		Max:       s.MaxSeconds(),
		Threshold: threshold,
		Passed:    s.MeanSeconds() <= threshold,
		Runs:      len(s.Times),
	}
}

// Fail records a benchmark that produced no samples. It always fails the
// gate and carries the reason into the report.
func Fail(name, reason string) Verdict {
	return Verdict{Name: name, Passed: false, Error: reason}
}

// AllPassed is the suite-level decision: pass only when every attempted
// benchmark passed. Skipped benchmarks never reach the slice and so never
// fail the gate.
func AllPassed(verdicts []Verdict) bool {
	for _, v := range verdicts {
		if !v.Passed {
			return false
		}
	}
	return true
}

// Names returns the threshold table's keys in deterministic order.
func Names(thresholds map[string]float64) []string {
	names := make([]string, 0, len(thresholds))
	for name := range thresholds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
