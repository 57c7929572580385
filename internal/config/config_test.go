package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ksjbench.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Interpreter != "build/bin/kingsejong" {
		t.Errorf("Interpreter = %q, want build/bin/kingsejong", cfg.Interpreter)
	}
	if cfg.Runs != 5 {
		t.Errorf("Runs = %d, want 5", cfg.Runs)
	}
	if !cfg.JITStats {
		t.Error("JITStats = false, want true by default")
	}
	if cfg.Timeout != 30*time.Second || cfg.MemoryTimeout != 60*time.Second {
		t.Errorf("timeouts = %s/%s, want 30s/60s", cfg.Timeout, cfg.MemoryTimeout)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v, want defaults for missing file", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load(missing) = %+v, want defaults", cfg)
	}
}

func TestLoad_PartialOverride(t *testing.T) {
	path := writeConfig(t, `interpreter: dist/ksj
runs: 10
timeout: 45s
jit_stats: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Interpreter != "dist/ksj" {
		t.Errorf("Interpreter = %q, want dist/ksj", cfg.Interpreter)
	}
	if cfg.Runs != 10 {
		t.Errorf("Runs = %d, want 10", cfg.Runs)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %s, want 45s", cfg.Timeout)
	}
	if cfg.JITStats {
		t.Error("JITStats = true, want false when the file disables it")
	}
	// Untouched keys keep their defaults.
	if cfg.Output != DefaultOutput || cfg.Dir != DefaultDir {
		t.Errorf("Output/Dir = %q/%q, want defaults", cfg.Output, cfg.Dir)
	}
}

func TestLoad_InterpArgs(t *testing.T) {
	path := writeConfig(t, `interp_args: --opt-level 2 --trace "jit events"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"--opt-level", "2", "--trace", "jit events"}
	if !reflect.DeepEqual(cfg.InterpArgs, want) {
		t.Errorf("InterpArgs = %v, want %v", cfg.InterpArgs, want)
	}
}

func TestLoad_Thresholds(t *testing.T) {
	path := writeConfig(t, `thresholds:
  arithmetic: 0.2
  custom_bench: 1.5
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := map[string]float64{"arithmetic": 0.2, "custom_bench": 1.5}
	if !reflect.DeepEqual(cfg.Thresholds, want) {
		t.Errorf("Thresholds = %v, want %v", cfg.Thresholds, want)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "{{not yaml")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero runs", "runs: 0\n"},
		{"negative runs", "runs: -3\n"},
		{"bad timeout", "timeout: fast\n"},
		{"negative timeout", "timeout: -5s\n"},
		{"zero threshold", "thresholds:\n  arithmetic: 0\n"},
		{"unbalanced quote in args", "interp_args: '--trace \"oops'\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.yaml)
			if _, err := Load(path); err == nil {
				t.Fatalf("Load(%q) error = nil, want rejection", tt.yaml)
			}
		})
	}
}

func TestSplitArgs(t *testing.T) {
	args, err := SplitArgs(`--flag "two words" plain`)
	if err != nil {
		t.Fatalf("SplitArgs() error = %v", err)
	}
	want := []string{"--flag", "two words", "plain"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("SplitArgs() = %v, want %v", args, want)
	}

	empty, err := SplitArgs("")
	if err != nil {
		t.Fatalf("SplitArgs(empty) error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("SplitArgs(empty) = %v, want no args", empty)
	}
}
