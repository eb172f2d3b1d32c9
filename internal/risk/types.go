// Package risk computes Value-at-Risk and expected shortfall from return
// series under historical, parametric, and Monte Carlo models. VaR is
// reported as a positive loss magnitude for the left tail.
package risk

import "fmt"

// Method selects a VaR model family.
type Method string

const (
	MethodHistorical Method = "historical"
	MethodParametric Method = "parametric"
	MethodMonteCarlo Method = "monte_carlo"
)

// Tail selects which side of the return distribution the quantile is taken
// from. The left tail is the loss side.
type Tail string

const (
	TailLeft  Tail = "left"
	TailRight Tail = "right"
)

// ReturnType declares how periodic returns compound across the horizon.
type ReturnType string

const (
	ReturnSimple ReturnType = "simple"
	ReturnLog    ReturnType = "log"
)

// MonteCarloMethod selects the simulation scheme for Monte Carlo VaR.
type MonteCarloMethod string

const (
	MonteCarloNormal    MonteCarloMethod = "normal"
	MonteCarloBootstrap MonteCarloMethod = "bootstrap"
)

// Config carries the options shared by every VaR flavor. Zero values for
// Tail and ReturnType default to left tail and simple returns.
type Config struct {
	Confidence float64
	Horizon    int
	Tail       Tail
	ReturnType ReturnType
}

// normalize applies defaults and validates eagerly, before any computation.
func (c *Config) normalize() error {
	if c.Confidence <= 0.0 || c.Confidence >= 1.0 {
		return fmt.Errorf("confidence must be in (0, 1), got %v", c.Confidence)
	}
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be a positive integer, got %d", c.Horizon)
	}
	if c.Tail == "" {
		c.Tail = TailLeft
	}
	if c.Tail != TailLeft && c.Tail != TailRight {
		return fmt.Errorf("unknown tail %q", c.Tail)
	}
	if c.ReturnType == "" {
		c.ReturnType = ReturnSimple
	}
	if c.ReturnType != ReturnSimple && c.ReturnType != ReturnLog {
		return fmt.Errorf("unknown return type %q", c.ReturnType)
	}
	return nil
}

// MonteCarloConfig carries the simulation controls for Monte Carlo VaR.
// Seed 0 derives from entropy; any other value is reproducible.
type MonteCarloConfig struct {
	NumSims int
	Seed    int64
	Method  MonteCarloMethod
}

func (c *MonteCarloConfig) normalize() error {
	if c.NumSims <= 0 {
		return fmt.Errorf("num sims must be a positive integer, got %d", c.NumSims)
	}
	if c.Method == "" {
		c.Method = MonteCarloNormal
	}
	if c.Method != MonteCarloNormal && c.Method != MonteCarloBootstrap {
		return fmt.Errorf("unknown monte carlo method %q", c.Method)
	}
	return nil
}

// Result is the immutable outcome of one VaR computation. Fields beyond
// VaR/CVaR describe the distribution the model fitted; which are populated
// depends on the method. Warnings carry advisory conditions that did not
// abort the computation.
type Result struct {
	Method     Method
	VaR        float64
	CVaR       float64
	Confidence float64
	Horizon    int
	Tail       Tail
	ReturnType ReturnType

	Quantile float64 // unscaled quantile of the fitted/empirical distribution
	Mean     float64
	Std      float64
	Z        float64 // normal inversion input, parametric only

	NumSims int
	Seed    int64

	Warnings []string
}
