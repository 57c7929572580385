package interp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// writeScript drops an executable shell script into a temp dir. All tests
// here drive real child processes, same as production.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests use shell scripts as stand-in interpreters")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("writing script: %v", err)
	}
	return path
}

func TestInvoke_CapturesBothStreams(t *testing.T) {
	path := writeScript(t, "interp.sh", `echo "result 610"
echo "Total Compilations: 2" >&2
exit 0`)

	res, err := NewExec(path).Invoke(context.Background(), "bench.ksj")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if res.Stdout != "result 610\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "result 610\n")
	}
	if res.Stderr != "Total Compilations: 2\n" {
		t.Errorf("Stderr = %q, want %q", res.Stderr, "Total Compilations: 2\n")
	}
	if res.Elapsed <= 0 {
		t.Errorf("Elapsed = %v, want > 0", res.Elapsed)
	}
}

func TestInvoke_NonZeroExit(t *testing.T) {
	path := writeScript(t, "interp.sh", `echo "parse error" >&2
exit 3`)

	res, err := NewExec(path).Invoke(context.Background())
	if err == nil {
		t.Fatal("Invoke() error = nil, want exec failure")
	}
	var re *RunError
	if !errors.As(err, &re) {
		t.Fatalf("Invoke() error = %T, want *RunError", err)
	}
	if re.Kind != FailExec {
		t.Errorf("Kind = %q, want %q", re.Kind, FailExec)
	}
	if re.Stderr != "parse error\n" {
		t.Errorf("RunError.Stderr = %q, want the child's stderr", re.Stderr)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
}

func TestInvoke_Timeout(t *testing.T) {
	path := writeScript(t, "interp.sh", `sleep 5`)

	ex := NewExec(path)
	ex.Timeout = 150 * time.Millisecond

	start := time.Now()
	_, err := ex.Invoke(context.Background())
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("Invoke() took %v, child was not killed at the deadline", elapsed)
	}
	if !IsTimeout(err) {
		t.Fatalf("Invoke() error = %v, want timeout", err)
	}
}

func TestInvoke_MissingExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("tests use shell scripts as stand-in interpreters")
	}
	ex := NewExec(filepath.Join(t.TempDir(), "no-such-binary"))
	_, err := ex.Invoke(context.Background())
	var re *RunError
	if !errors.As(err, &re) {
		t.Fatalf("Invoke() error = %T, want *RunError", err)
	}
	if re.Kind != FailSpawn {
		t.Errorf("Kind = %q, want %q", re.Kind, FailSpawn)
	}
	if IsTimeout(err) {
		t.Error("IsTimeout() = true for a spawn failure")
	}
}

func TestInvoke_WrapperPrefixesCommand(t *testing.T) {
	// The wrapper sees the interpreter path and args as its own arguments,
	// exactly how time(1) is invoked for memory profiling.
	wrapper := writeScript(t, "wrapper.sh", `echo "wrapped: $@"`)

	ex := &Exec{Path: "/fake/interp", Wrapper: []string{wrapper, "-l"}, Timeout: time.Second}
	res, err := ex.Invoke(context.Background(), "bench.ksj")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if want := "wrapped: -l /fake/interp bench.ksj\n"; res.Stdout != want {
		t.Errorf("Stdout = %q, want %q", res.Stdout, want)
	}
}

func TestInvoke_ZeroTimeoutUsesDefault(t *testing.T) {
	path := writeScript(t, "interp.sh", `exit 0`)
	ex := &Exec{Path: path}
	if _, err := ex.Invoke(context.Background()); err != nil {
		t.Fatalf("Invoke() with zero timeout error = %v", err)
	}
}
