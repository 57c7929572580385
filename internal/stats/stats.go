// Package stats reduces repeated timing samples to the summary figures the
// benchmark reports are built from.
package stats

import (
	"errors"
	"math"
	"time"
)

// ErrNoSamples is returned when aggregation is attempted over an empty
// sample set. Callers treat it as "benchmark produced no data", not a bug.
var ErrNoSamples = errors.New("no timing samples to aggregate")

// Stats summarizes the repetitions of one benchmark.
type Stats struct {
	Mean   time.Duration
	Min    time.Duration
	Max    time.Duration
	StdDev time.Duration
	Times  []time.Duration // raw samples in run order
}

// Aggregate computes summary statistics over a non-empty set of wall-clock
// samples. StdDev is the population form (divide by n): the samples are the
// whole set of runs that happened, not a sample of a larger population.
func Aggregate(times []time.Duration) (Stats, error) {
	if len(times) == 0 {
		return Stats{}, ErrNoSamples
	}

	s := Stats{
		Min:   times[0],
		Max:   times[0],
		Times: append([]time.Duration(nil), times...),
	}

	var total time.Duration
	for _, t := range times {
		total += t
		if t < s.Min {
			s.Min = t
		}
		if t > s.Max {
			s.Max = t
		}
	}

	mean := float64(total) / float64(len(times))
	var sumSq float64
	for _, t := range times {
		d := float64(t) - mean
		sumSq += d * d
	}

	s.Mean = time.Duration(mean)
	s.StdDev = time.Duration(math.Sqrt(sumSq / float64(len(times))))
	return s, nil
}

// MeanSeconds returns the mean in seconds, the unit regression thresholds
// are written in.
func (s Stats) MeanSeconds() float64 { return s.Mean.Seconds() }

// MinSeconds returns the fastest sample in seconds.
func (s Stats) MinSeconds() float64 { return s.Min.Seconds() }

// MaxSeconds returns the slowest sample in seconds.
func (s Stats) MaxSeconds() float64 { return s.Max.Seconds() }

// StdDevSeconds returns the population standard deviation in seconds.
func (s Stats) StdDevSeconds() float64 { return s.StdDev.Seconds() }
