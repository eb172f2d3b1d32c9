// Package simulate generates time-discretized sample paths for the risk
// factor models used by Monte Carlo exposure. Every simulator takes an
// explicit seed and builds its own random source; there is no shared
// global randomness.
package simulate

import (
	"time"

	"golang.org/x/exp/rand"
)

// PathSet is a dense (numPaths, numSteps+1) grid of simulated levels with
// a common step size. Column 0 holds the deterministic initial level for
// every path. PathSets are treated as immutable once produced.
type PathSet struct {
	paths [][]float64
	dt    float64
}

func newPathSet(numPaths, numSteps int, dt, initial float64) *PathSet {
	paths := make([][]float64, numPaths)
	for i := range paths {
		row := make([]float64, numSteps+1)
		row[0] = initial
		paths[i] = row
	}
	return &PathSet{paths: paths, dt: dt}
}

// NumPaths returns the number of simulated paths.
func (p *PathSet) NumPaths() int { return len(p.paths) }

// NumSteps returns the number of time steps (columns minus the initial).
func (p *PathSet) NumSteps() int {
	if len(p.paths) == 0 {
		return 0
	}
	return len(p.paths[0]) - 1
}

// Dt returns the step size in years.
func (p *PathSet) Dt() float64 { return p.dt }

// At returns the level of path i at step j (step 0 is the initial level).
func (p *PathSet) At(path, step int) float64 {
	return p.paths[path][step]
}

// Path returns the levels of one path. The returned slice is backing
// storage and must not be modified.
func (p *PathSet) Path(i int) []float64 {
	return p.paths[i]
}

// newRand builds an independent random stream from seed. Seed 0 derives
// from entropy; any other value is reproducible.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(uint64(seed)))
}
