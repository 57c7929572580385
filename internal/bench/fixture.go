package bench

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrMissingFixture is returned by Ensure when a payload is absent and no
// template is registered to synthesize it.
var ErrMissingFixture = errors.New("benchmark file missing and no fixture template registered")

// fibonacci15Script is the KingSejong payload synthesized for the
// fibonacci_15 gate when the file is not checked in.
const fibonacci15Script = `// 피보나치 벤치마크 (CI용)
함수 피보나치(n) {
    만약 (n <= 1) {
        반환 n
    }
    반환 피보나치(n - 1) + 피보나치(n - 2)
}

정수 결과 = 피보나치(15)
출력(결과)
`

// fixtures maps benchmark names to payload templates Ensure may write when
// the file does not exist. Templates are fixed text so every generation of
// the harness produces byte-identical fixtures.
var fixtures = map[string]string{
	"fibonacci_15": fibonacci15Script,
}

// HasFixture reports whether a template is registered for name.
func HasFixture(name string) bool {
	_, ok := fixtures[name]
	return ok
}

// Ensure returns the benchmark for name inside dir, synthesizing the payload
// from its template when the file is absent. Synthesis never overwrites an
// existing file and is serialized across processes, so concurrent CI jobs
// converge on a single fixture. The bool reports whether synthesis happened.
func Ensure(dir, name string) (Benchmark, bool, error) {
	b := Benchmark{Name: name, Path: filepath.Join(dir, name+Ext)}
	if _, err := os.Stat(b.Path); err == nil {
		return b, false, nil
	} else if !os.IsNotExist(err) {
		return Benchmark{}, false, fmt.Errorf("checking benchmark file: %w", err)
	}

	script, ok := fixtures[name]
	if !ok {
		return Benchmark{}, false, ErrMissingFixture
	}
	if err := writeFixture(b.Path, script); err != nil {
		return Benchmark{}, false, err
	}
	return b, true, nil
}

func writeFixture(path, script string) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking fixture: %w", err)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			// Another invocation won the race; its fixture is identical.
			return nil
		}
		return fmt.Errorf("creating fixture: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(script); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	return nil
}
