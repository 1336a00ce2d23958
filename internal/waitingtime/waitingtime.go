// Package waitingtime implements the per-(region, game mode) wait-time
// estimator: a bounded queue of the most recent observations, reported as
// the median.
package waitingtime

import "sort"

// MaxSamples bounds how many observations each game mode retains.
const MaxSamples = 10

// Estimator tracks one bounded sample queue per game mode for a region.
type Estimator struct {
	samples map[string][]int64 // most-recent-first
}

// New constructs an empty Estimator.
func New() *Estimator {
	return &Estimator{samples: make(map[string][]int64)}
}

// Observe records a new wait-time sample for a game mode, evicting the
// oldest sample once the bound is exceeded. Callers must only invoke this
// for tickets with exactly one player, per the Matched->Activating
// transition rule.
func (e *Estimator) Observe(gameMode string, waitSeconds int64) {
	samples := append([]int64{waitSeconds}, e.samples[gameMode]...)
	if len(samples) > MaxSamples {
		samples = samples[:MaxSamples]
	}
	e.samples[gameMode] = samples
}

// Median returns the median of the retained samples for a game mode, or 0
// if none have been observed.
func (e *Estimator) Median(gameMode string) int64 {
	samples := e.samples[gameMode]
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]int64(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[len(sorted)/2]
}

// Medians returns the current median for every game mode with at least
// one observation, for the once-per-tick write-back.
func (e *Estimator) Medians() map[string]int64 {
	out := make(map[string]int64, len(e.samples))
	for mode := range e.samples {
		out[mode] = e.Median(mode)
	}
	return out
}

// GameModes returns the set of modes with at least one retained sample.
func (e *Estimator) GameModes() []string {
	out := make([]string, 0, len(e.samples))
	for mode := range e.samples {
		out = append(out, mode)
	}
	return out
}

// Reset wipes all modes of the region.
func (e *Estimator) Reset() {
	e.samples = make(map[string][]int64)
}
