package harness

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/kingsejong-lang/kingsejong-lang/internal/config"
	"github.com/kingsejong-lang/kingsejong-lang/internal/interp"
)

// The tests here spawn real child processes through the production Exec
// path, with shell scripts standing in for the interpreter.

func writeExecutable(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("integration tests use shell scripts as stand-in interpreters")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func integrationConfig(t *testing.T, interpBody string, payloads ...string) config.Config {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "benchmarks")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range payloads {
		if err := os.WriteFile(filepath.Join(dir, name+".ksj"), []byte("출력(610)\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.Interpreter = writeExecutable(t, root, "kingsejong", interpBody)
	cfg.Dir = dir
	cfg.Output = filepath.Join(root, "benchmark_results.txt")
	cfg.Runs = 2
	cfg.Timeout = 10 * time.Second
	return cfg
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := integrationConfig(t, `if [ "$1" = "--jit-stats" ]; then
  shift
  echo "Total Compilations:      3" >&2
  echo "Total Executions:        120" >&2
  echo "Tier 2 Compilations:     1" >&2
  echo "Tier 2 Executions:       80" >&2
  echo "Total Inlined Functions: 4" >&2
fi
cat "$1" > /dev/null || exit 2
echo 610`, "fibonacci", "arithmetic")

	var buf bytes.Buffer
	c := New(cfg, &buf)

	rep, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := rep.Totals(); got.Succeeded != 2 || got.Attempted != 2 {
		t.Fatalf("Succeeded/Attempted = %d/%d, want 2/2", got.Succeeded, got.Attempted)
	}
	for _, e := range rep.Entries {
		if e.Counters == nil {
			t.Fatalf("%s collected no counters", e.Name)
		}
		if e.Counters.Tier1Compilations != 3 || e.Counters.Tier2Executions != 80 {
			t.Errorf("%s counters = %+v", e.Name, e.Counters)
		}
		if len(e.Stats.Times) != 2 {
			t.Errorf("%s has %d samples, want 2", e.Name, len(e.Stats.Times))
		}
	}

	data, err := os.ReadFile(cfg.Output)
	if err != nil {
		t.Fatalf("report not persisted: %v", err)
	}
	for _, want := range []string{"arithmetic:", "fibonacci:", "tier1 compilations: 3", "inlined functions: 4"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("persisted report missing %q", want)
		}
	}
}

func TestRun_EndToEnd_FailingInterpreter(t *testing.T) {
	cfg := integrationConfig(t, `echo "runtime error: undefined variable" >&2
exit 7`, "arithmetic")

	var buf bytes.Buffer
	c := New(cfg, &buf)

	rep, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	e := rep.Entries[0]
	if !e.Failed() {
		t.Fatal("entry did not fail for a crashing interpreter")
	}
	if !strings.Contains(e.Err, "runtime error: undefined variable") {
		t.Errorf("Err = %q, want the child's stderr", e.Err)
	}
}

func TestRunRegression_EndToEnd(t *testing.T) {
	cfg := integrationConfig(t, `cat "$1" > /dev/null
exit 0`, "arithmetic")
	cfg.Runs = 3
	cfg.JITStats = false
	cfg.Thresholds = map[string]float64{"arithmetic": 5.0}
	cfg.Output = filepath.Join(cfg.Dir, "regression_results.json")

	var buf bytes.Buffer
	c := New(cfg, &buf)

	verdicts, passed, err := c.RunRegression(context.Background())
	if err != nil {
		t.Fatalf("RunRegression() error = %v", err)
	}
	if !passed || len(verdicts) != 1 || !verdicts[0].Passed {
		t.Fatalf("verdicts = %+v, passed = %v; want a clean pass", verdicts, passed)
	}
	if verdicts[0].Runs != 3 {
		t.Errorf("Runs = %d, want 3", verdicts[0].Runs)
	}
	if _, err := os.Stat(cfg.Output); err != nil {
		t.Errorf("regression JSON not persisted: %v", err)
	}
}

func TestRunMemory_EndToEnd(t *testing.T) {
	cfg := integrationConfig(t, `cat "$1" > /dev/null
exit 0`, "memory_test", "arithmetic", "loop_intensive")

	// Stand-in for time(1): swallow the -l flag, run the command, report a
	// fixed resident set size the way the real profiler does.
	wrapper := writeExecutable(t, t.TempDir(), "time", `shift
"$@"
echo "            31457280  maximum resident set size" >&2`)

	var buf bytes.Buffer
	c := New(cfg, &buf)
	c.MemInvoker = &interp.Exec{
		Path:    cfg.Interpreter,
		Wrapper: []string{wrapper, "-l"},
		Timeout: 10 * time.Second,
	}

	results, err := c.RunMemory(context.Background())
	if err != nil {
		t.Fatalf("RunMemory() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, res := range results {
		if res.Err != "" || res.Unavailable {
			t.Errorf("%s = %+v, want a measured value", res.Name, res)
		}
		if res.MB != 30.0 {
			t.Errorf("%s MB = %v, want 30.0", res.Name, res.MB)
		}
	}
}
