package simulate

import (
	"fmt"
	"math"
)

// SpotModel simulates spot-level paths for one equity risk factor.
type SpotModel interface {
	SpotPaths(spot, dt float64, numSteps, numPaths int, seed int64) (*PathSet, error)
}

// RateModel simulates short-rate paths for the discounting factor.
type RateModel interface {
	RatePaths(rate, dt float64, numSteps, numPaths int, seed int64) (*PathSet, error)
}

// GBMParams are Geometric Brownian Motion parameters.
type GBMParams struct {
	Drift float64
	Vol   float64
}

// Validate checks model parameters.
func (p GBMParams) Validate() error {
	if p.Vol < 0.0 {
		return fmt.Errorf("gbm vol must be >= 0, got %v", p.Vol)
	}
	return nil
}

// SpotPaths implements SpotModel.
func (p GBMParams) SpotPaths(spot, dt float64, numSteps, numPaths int, seed int64) (*PathSet, error) {
	return GBM(spot, p, dt, numSteps, numPaths, seed)
}

// HestonParams are Heston stochastic volatility parameters.
type HestonParams struct {
	Kappa      float64 // mean-reversion speed of variance
	LongVar    float64 // long-run variance
	VolOfVol   float64
	Rho        float64 // spot/variance correlation
	InitialVar float64
	Drift      float64
}

// Validate checks model parameters.
func (p HestonParams) Validate() error {
	if p.Kappa < 0.0 {
		return fmt.Errorf("heston kappa must be >= 0, got %v", p.Kappa)
	}
	if p.LongVar < 0.0 {
		return fmt.Errorf("heston long-run variance must be >= 0, got %v", p.LongVar)
	}
	if p.VolOfVol < 0.0 {
		return fmt.Errorf("heston vol-of-vol must be >= 0, got %v", p.VolOfVol)
	}
	if p.Rho < -1.0 || p.Rho > 1.0 {
		return fmt.Errorf("heston rho must be in [-1, 1], got %v", p.Rho)
	}
	if p.InitialVar < 0.0 {
		return fmt.Errorf("heston initial variance must be >= 0, got %v", p.InitialVar)
	}
	return nil
}

// SpotPaths implements SpotModel.
func (p HestonParams) SpotPaths(spot, dt float64, numSteps, numPaths int, seed int64) (*PathSet, error) {
	return Heston(spot, p, dt, numSteps, numPaths, seed)
}

// VasicekParams are Vasicek short-rate parameters.
type VasicekParams struct {
	MeanReversion float64
	LongRate      float64
	Vol           float64
}

// Validate checks model parameters.
func (p VasicekParams) Validate() error {
	return validateOU("vasicek", p.MeanReversion, p.Vol)
}

// RatePaths implements RateModel.
func (p VasicekParams) RatePaths(rate, dt float64, numSteps, numPaths int, seed int64) (*PathSet, error) {
	return Vasicek(rate, p, dt, numSteps, numPaths, seed)
}

// HullWhiteParams are one-factor Hull-White short-rate parameters.
type HullWhiteParams struct {
	MeanReversion float64
	LongRate      float64
	Vol           float64
}

// Validate checks model parameters.
func (p HullWhiteParams) Validate() error {
	return validateOU("hull-white", p.MeanReversion, p.Vol)
}

// RatePaths implements RateModel.
func (p HullWhiteParams) RatePaths(rate, dt float64, numSteps, numPaths int, seed int64) (*PathSet, error) {
	return HullWhite(rate, p, dt, numSteps, numPaths, seed)
}

func validateOU(model string, meanReversion, vol float64) error {
	if meanReversion < 0.0 {
		return fmt.Errorf("%s mean reversion must be >= 0, got %v", model, meanReversion)
	}
	if vol < 0.0 {
		return fmt.Errorf("%s vol must be >= 0, got %v", model, vol)
	}
	return nil
}

func validateGrid(dt float64, numSteps, numPaths int) error {
	if dt <= 0.0 {
		return fmt.Errorf("dt must be > 0, got %v", dt)
	}
	if numSteps <= 0 {
		return fmt.Errorf("num steps must be > 0, got %d", numSteps)
	}
	if numPaths <= 0 {
		return fmt.Errorf("num paths must be > 0, got %d", numPaths)
	}
	return nil
}

// GBM simulates spot paths under Geometric Brownian Motion using the exact
// log-level update.
func GBM(spot float64, params GBMParams, dt float64, numSteps, numPaths int, seed int64) (*PathSet, error) {
	if spot <= 0.0 {
		return nil, fmt.Errorf("spot must be > 0, got %v", spot)
	}
	if err := validateGrid(dt, numSteps, numPaths); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	rng := newRand(seed)
	drift := (params.Drift - 0.5*params.Vol*params.Vol) * dt
	diffusion := params.Vol * math.Sqrt(dt)

	set := newPathSet(numPaths, numSteps, dt, spot)
	for i := 0; i < numPaths; i++ {
		logLevel := math.Log(spot)
		row := set.paths[i]
		for j := 1; j <= numSteps; j++ {
			logLevel += drift + diffusion*rng.NormFloat64()
			row[j] = math.Exp(logLevel)
		}
	}
	return set, nil
}

// Heston simulates spot paths under Heston stochastic volatility with a
// full-truncation Euler scheme: negative variance is floored at zero in
// both drift and diffusion.
func Heston(spot float64, params HestonParams, dt float64, numSteps, numPaths int, seed int64) (*PathSet, error) {
	if spot <= 0.0 {
		return nil, fmt.Errorf("spot must be > 0, got %v", spot)
	}
	if err := validateGrid(dt, numSteps, numPaths); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	rng := newRand(seed)
	rhoComp := math.Sqrt(math.Max(1.0-params.Rho*params.Rho, 0.0))

	set := newPathSet(numPaths, numSteps, dt, spot)
	for i := 0; i < numPaths; i++ {
		row := set.paths[i]
		variance := params.InitialVar
		level := spot
		for j := 1; j <= numSteps; j++ {
			z1 := rng.NormFloat64()
			z2 := rng.NormFloat64()
			w1 := z1
			w2 := params.Rho*z1 + rhoComp*z2

			v := math.Max(variance, 0.0)
			level *= math.Exp((params.Drift-0.5*v)*dt + math.Sqrt(v*dt)*w1)
			row[j] = level

			variance = math.Max(v+params.Kappa*(params.LongVar-v)*dt+params.VolOfVol*math.Sqrt(v*dt)*w2, 0.0)
		}
	}
	return set, nil
}

// Vasicek simulates short-rate paths with an Euler discretization of the
// Ornstein-Uhlenbeck dynamics. Rates may go negative by design.
func Vasicek(rate float64, params VasicekParams, dt float64, numSteps, numPaths int, seed int64) (*PathSet, error) {
	if err := validateGrid(dt, numSteps, numPaths); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return ouPaths(rate, params.MeanReversion, params.LongRate, params.Vol, dt, numSteps, numPaths, seed), nil
}

// HullWhite simulates one-factor Hull-White short-rate paths. The scheme
// matches Vasicek with the long-run level standing in for the calibrated
// drift term.
func HullWhite(rate float64, params HullWhiteParams, dt float64, numSteps, numPaths int, seed int64) (*PathSet, error) {
	if err := validateGrid(dt, numSteps, numPaths); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return ouPaths(rate, params.MeanReversion, params.LongRate, params.Vol, dt, numSteps, numPaths, seed), nil
}

func ouPaths(rate, meanReversion, longRate, vol, dt float64, numSteps, numPaths int, seed int64) *PathSet {
	rng := newRand(seed)
	diffusion := vol * math.Sqrt(dt)

	set := newPathSet(numPaths, numSteps, dt, rate)
	for i := 0; i < numPaths; i++ {
		row := set.paths[i]
		level := rate
		for j := 1; j <= numSteps; j++ {
			level += meanReversion*(longRate-level)*dt + diffusion*rng.NormFloat64()
			row[j] = level
		}
	}
	return set
}
