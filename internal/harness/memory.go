package harness

import (
	"context"
	"os"
	"path/filepath"

	"github.com/kingsejong-lang/kingsejong-lang/internal/bench"
	"github.com/kingsejong-lang/kingsejong-lang/internal/diag"
	"github.com/kingsejong-lang/kingsejong-lang/internal/report"
)

// memoryBenchmarks is the fixed profiling set: the allocation-heavy
// payloads of the functional suite.
var memoryBenchmarks = []struct{ name, label string }{
	{"memory_test", "allocation stress"},
	{"arithmetic", "arithmetic workload"},
	{"loop_intensive", "loop workload"},
}

// RunMemory profiles peak resident memory by running each payload in the
// fixed set once under the time(1) wrapper. Profiler output with no
// recognizable memory line degrades to an unavailable entry; only
// invocation failures count as failed.
func (c *Controller) RunMemory(ctx context.Context) ([]report.MemoryResult, error) {
	if err := c.CheckInterpreter(); err != nil {
		return nil, err
	}
	c.Console.MemoryHeader(c.Config.Interpreter)

	var results []report.MemoryResult
	for _, mb := range memoryBenchmarks {
		file := mb.name + bench.Ext
		path := filepath.Join(c.Config.Dir, file)
		if _, err := os.Stat(path); err != nil {
			c.Console.Warnf("missing payload %s, skipping", path)
			continue
		}

		c.Console.MemoryStart(mb.label, file)
		res := report.MemoryResult{Name: mb.name, Label: mb.label}

		args := append(append([]string{}, c.Config.InterpArgs...), path)
		out, err := c.MemInvoker.Invoke(ctx, args...)
		switch {
		case err != nil:
			res.Err = c.failReason(err, c.Config.MemoryTimeout)
		default:
			v, perr := diag.ParseMemoryMB(out.Stderr)
			if perr != nil {
				res.Unavailable = true
			} else {
				res.MB = v
			}
		}
		c.Console.MemoryValue(res)
		results = append(results, res)
	}

	c.Console.MemorySummary(results)
	return results, nil
}
