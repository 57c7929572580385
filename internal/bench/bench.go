// Package bench locates benchmark payloads on disk and synthesizes missing
// fixtures so CI can gate on benchmarks that nobody checked in yet.
package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ext is the benchmark payload file extension.
const Ext = ".ksj"

// Benchmark is one payload script, named by its file base name.
type Benchmark struct {
	Name string
	Path string
}

// Discover lists every payload in dir, sorted by name. Iteration order must
// never depend on filesystem listing order, so reports stay diffable across
// machines.
func Discover(dir string) ([]Benchmark, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading benchmark dir: %w", err)
	}

	var benches []Benchmark
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Ext {
			continue
		}
		benches = append(benches, Benchmark{
			Name: strings.TrimSuffix(entry.Name(), Ext),
			Path: filepath.Join(dir, entry.Name()),
		})
	}
	sort.Slice(benches, func(i, j int) bool { return benches[i].Name < benches[j].Name })
	return benches, nil
}
