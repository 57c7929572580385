// Package config assembles the knobs a harness run needs from defaults, an
// optional YAML file, and flag overrides applied by the command layer. The
// result is passed around explicitly; nothing here is ambient state.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"

	"github.com/kingsejong-lang/kingsejong-lang/internal/interp"
)

const (
	// DefaultInterpreter is where the CMake build drops the interpreter
	// relative to the repository root.
	DefaultInterpreter = "build/bin/kingsejong"

	// DefaultRuns is the repetition count for the standard suite.
	DefaultRuns = 5

	// DefaultOutput is the persisted results path for the standard suite.
	DefaultOutput = "benchmark_results.txt"

	// DefaultDir holds the benchmark payloads.
	DefaultDir = "benchmarks"

	// DefaultDiagFlag asks the interpreter for JIT counters on stderr.
	DefaultDiagFlag = "--jit-stats"

	// DefaultFile is the config file looked up when --config is not given.
	DefaultFile = "ksjbench.yaml"
)

// Config carries every setting the harness reads.
type Config struct {
	Interpreter   string
	Runs          int
	Output        string
	Dir           string
	InterpArgs    []string // extra interpreter arguments, before the payload path
	JITStats      bool
	DiagFlag      string
	Timeout       time.Duration
	MemoryTimeout time.Duration
	Thresholds    map[string]float64 // regression ceilings in seconds
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Interpreter:   DefaultInterpreter,
		Runs:          DefaultRuns,
		Output:        DefaultOutput,
		Dir:           DefaultDir,
		JITStats:      true,
		DiagFlag:      DefaultDiagFlag,
		Timeout:       interp.DefaultTimeout,
		MemoryTimeout: interp.DefaultMemoryTimeout,
	}
}

// fileConfig is the YAML shape. Pointer fields distinguish "absent" from an
// explicit zero; durations are Go duration strings.
type fileConfig struct {
	Interpreter   string             `yaml:"interpreter"`
	Runs          *int               `yaml:"runs"`
	Output        string             `yaml:"output"`
	Dir           string             `yaml:"dir"`
	InterpArgs    string             `yaml:"interp_args"`
	JITStats      *bool              `yaml:"jit_stats"`
	DiagFlag      string             `yaml:"diag_flag"`
	Timeout       string             `yaml:"timeout"`
	MemoryTimeout string             `yaml:"memory_timeout"`
	Thresholds    map[string]float64 `yaml:"thresholds"`
}

// Load reads the config file at path, or DefaultFile when path is empty.
// A missing file yields the defaults with no error.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultFile
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.merge(fc); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) merge(fc fileConfig) error {
	if fc.Interpreter != "" {
		c.Interpreter = fc.Interpreter
	}
	if fc.Runs != nil {
		c.Runs = *fc.Runs
	}
	if fc.Output != "" {
		c.Output = fc.Output
	}
	if fc.Dir != "" {
		c.Dir = fc.Dir
	}
	if fc.InterpArgs != "" {
		args, err := SplitArgs(fc.InterpArgs)
		if err != nil {
			return fmt.Errorf("interp_args: %w", err)
		}
		c.InterpArgs = args
	}
	if fc.JITStats != nil {
		c.JITStats = *fc.JITStats
	}
	if fc.DiagFlag != "" {
		c.DiagFlag = fc.DiagFlag
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		c.Timeout = d
	}
	if fc.MemoryTimeout != "" {
		d, err := time.ParseDuration(fc.MemoryTimeout)
		if err != nil {
			return fmt.Errorf("memory_timeout: %w", err)
		}
		c.MemoryTimeout = d
	}
	if fc.Thresholds != nil {
		c.Thresholds = fc.Thresholds
	}
	return nil
}

func (c *Config) validate() error {
	if c.Runs < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", c.Runs)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.MemoryTimeout <= 0 {
		return fmt.Errorf("memory_timeout must be positive, got %s", c.MemoryTimeout)
	}
	for name, threshold := range c.Thresholds {
		if threshold <= 0 {
			return fmt.Errorf("threshold for %s must be positive, got %v", name, threshold)
		}
	}
	return nil
}

// SplitArgs splits a shell-quoted argument string the way /bin/sh would,
// without invoking a shell.
func SplitArgs(s string) ([]string, error) {
	return shlex.Split(s)
}
