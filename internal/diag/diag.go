// Package diag scrapes structured measurements out of the interpreter's
// diagnostic stream. The interpreter is opaque to the harness; these parsers
// are the only contract between the two.
package diag

import (
	"errors"
	"regexp"
	"strconv"
)

// Counters holds the tiered-JIT activity counters the interpreter prints on
// stderr when invoked with its diagnostic flag.
type Counters struct {
	Tier1Compilations int
	Tier2Compilations int
	Tier1Executions   int
	Tier2Executions   int
	InlinedFunctions  int
}

var (
	tier1CompRe = regexp.MustCompile(`Total Compilations:\s+(\d+)`)
	tier1ExecRe = regexp.MustCompile(`Total Executions:\s+(\d+)`)
	tier2CompRe = regexp.MustCompile(`Tier 2 Compilations:\s+(\d+)`)
	tier2ExecRe = regexp.MustCompile(`Tier 2 Executions:\s+(\d+)`)
	inlinedRe   = regexp.MustCompile(`Total Inlined Functions:\s+(\d+)`)
)

// ParseCounters extracts JIT counters from diagnostic text. Labels may
// appear in any order with arbitrary text between them; an absent label
// leaves its counter at zero. Unrecognized text is ignored.
func ParseCounters(text string) Counters {
	return Counters{
		Tier1Compilations: scrapeInt(tier1CompRe, text),
		Tier2Compilations: scrapeInt(tier2CompRe, text),
		Tier1Executions:   scrapeInt(tier1ExecRe, text),
		Tier2Executions:   scrapeInt(tier2ExecRe, text),
		InlinedFunctions:  scrapeInt(inlinedRe, text),
	}
}

func scrapeInt(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// Add accumulates o into c. Used for report totals.
func (c *Counters) Add(o Counters) {
	c.Tier1Compilations += o.Tier1Compilations
	c.Tier2Compilations += o.Tier2Compilations
	c.Tier1Executions += o.Tier1Executions
	c.Tier2Executions += o.Tier2Executions
	c.InlinedFunctions += o.InlinedFunctions
}

// Zero reports whether no counter was extracted at all.
func (c Counters) Zero() bool {
	return c == Counters{}
}

// ErrNoMemoryData is returned when diagnostic text carries no recognizable
// memory measurement. Distinct from a measured value of zero.
var ErrNoMemoryData = errors.New("no memory usage data in diagnostic output")

var (
	maxRSSRe        = regexp.MustCompile(`(\d+)\s+maximum resident set size`)
	maxRSSKBRe      = regexp.MustCompile(`Maximum resident set size \(kbytes\):\s+(\d+)`)
	peakFootprintRe = regexp.MustCompile(`peak memory footprint:\s+([\d.]+)([KMG])`)
)

// ParseMemoryMB extracts peak resident memory in megabytes from profiler
// output. Three formats are recognized, in precedence order: the BSD
// time(1) byte count ("<bytes>  maximum resident set size"), the GNU
// time(1) kilobyte line ("Maximum resident set size (kbytes): <kb>"), and
// a scaled figure ("peak memory footprint: <value><K|M|G>"). Absent data
// yields ErrNoMemoryData.
func ParseMemoryMB(text string) (float64, error) {
	if m := maxRSSRe.FindStringSubmatch(text); m != nil {
		bytes, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return bytes / (1024 * 1024), nil
		}
	}
	if m := maxRSSKBRe.FindStringSubmatch(text); m != nil {
		kb, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return kb / 1024, nil
		}
	}
	if m := peakFootprintRe.FindStringSubmatch(text); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			switch m[2] {
			case "K":
				return v / 1024, nil
			case "M":
				return v, nil
			case "G":
				return v * 1024, nil
			}
		}
	}
	return 0, ErrNoMemoryData
}
