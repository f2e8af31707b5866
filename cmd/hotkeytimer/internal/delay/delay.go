// Package delay produces randomized, human-plausible pacing for automated input.
package delay

import (
	"math/rand/v2"
	"time"
)

const (
	// DefaultTotal is the budget, in seconds, spread across one automation run.
	DefaultTotal = 5.0

	minStep   = 0.5
	maxStep   = 2.5
	lastFloor = 0.3
)

// Rand is the randomness the planner and its callers draw from. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

type globalRand struct{}

func (globalRand) Float64() float64                   { return rand.Float64() }
func (globalRand) IntN(n int) int                     { return rand.IntN(n) }
func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Default returns a Rand backed by the auto-seeded global source.
func Default() Rand { return globalRand{} }

// Uniform draws a float uniformly from [lo, hi].
func Uniform(r Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + r.Float64()*(hi-lo)
}

// IntBetween draws an integer uniformly from [lo, hi], both ends inclusive.
func IntBetween(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// Seconds converts a float number of seconds into a time.Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Compute returns n delays in seconds whose sum approximates total.
//
// Each of the first n-1 gaps is drawn from [0.5, min(2.5, remaining - gapsLeft*0.3)] so
// the remaining gaps always keep at least 0.3s each; the final gap absorbs whatever is
// left, floored at 0.3s.
func Compute(r Rand, n int, total float64) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{max(lastFloor, total)}
	}

	delays := make([]float64, 0, n)
	remaining := total
	for i := 0; i < n-1; i++ {
		gapsLeft := n - i - 1
		hi := min(maxStep, remaining-float64(gapsLeft)*lastFloor)

		var d float64
		if hi < minStep {
			// Budget too small for the usual floor; stay human-plausible anyway.
			d = max(lastFloor, hi)
		} else {
			d = Uniform(r, minStep, hi)
		}
		delays = append(delays, d)
		remaining -= d
	}
	return append(delays, max(lastFloor, remaining))
}

// Plan is an ordered sequence of pauses between automated actions.
type Plan []time.Duration

// NewPlan computes a Plan of n steps over total seconds.
func NewPlan(r Rand, n int, total float64) Plan {
	secs := Compute(r, n, total)
	plan := make(Plan, len(secs))
	for i, s := range secs {
		plan[i] = Seconds(s)
	}
	return plan
}

// Total sums every step in the plan.
func (p Plan) Total() time.Duration {
	var sum time.Duration
	for _, d := range p {
		sum += d
	}
	return sum
}
