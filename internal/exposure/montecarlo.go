package exposure

import (
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/exp/rand"

	"github.com/quantfold/riskengine/internal/engine"
	"github.com/quantfold/riskengine/internal/market"
	"github.com/quantfold/riskengine/internal/risk"
	"github.com/quantfold/riskengine/internal/simulate"
)

// MonteCarloConfig drives the simulated PFE profile. Every equity risk
// factor names its own spot model; RateModel nil holds the risk-free rate
// flat. Seed 0 derives from entropy.
type MonteCarloConfig struct {
	Horizons        []float64
	Dt              float64
	NumPaths        int
	Confidence      float64
	EquityModels    map[string]simulate.SpotModel
	RateModel       simulate.RateModel
	Threshold       float64
	ValueAdjustment float64
	Seed            int64
}

// MonteCarloPFEResult is the simulated exposure profile keyed by horizon.
type MonteCarloPFEResult struct {
	PFE              map[float64]float64
	ExpectedExposure map[float64]float64
	Confidence       float64
	Horizons         []float64
	NumPaths         int
	Dt               float64
	Seed             int64
	Threshold        float64
	ValueAdjustment  float64
}

// MonteCarloPFE simulates risk-factor paths on a shared time grid, reprices
// the rolled portfolio at every (path, horizon) point, and reduces each
// horizon's exposure vector to a quantile (PFE) and mean (EE).
//
// Sub-seeds for each factor stream are drawn from one top-level source over
// the sorted symbol order, so adding or removing a factor never perturbs
// another factor's draws.
func MonteCarloPFE(eng *engine.Engine, portfolio engine.Portfolio, state *market.State, cfg MonteCarloConfig) (MonteCarloPFEResult, error) {
	if err := validateConfidence(cfg.Confidence); err != nil {
		return MonteCarloPFEResult{}, err
	}
	if cfg.NumPaths <= 0 {
		return MonteCarloPFEResult{}, fmt.Errorf("num paths must be > 0, got %d", cfg.NumPaths)
	}
	horizons, numSteps, err := validateHorizons(cfg.Horizons, cfg.Dt)
	if err != nil {
		return MonteCarloPFEResult{}, err
	}
	if len(cfg.EquityModels) == 0 {
		return MonteCarloPFEResult{}, fmt.Errorf("equity models must contain at least one entry")
	}

	symbols := make([]string, 0, len(cfg.EquityModels))
	for symbol := range cfg.EquityModels {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		if !state.Has(market.SpotKey(symbol)) {
			return MonteCarloPFEResult{}, fmt.Errorf("market state missing spot for symbol %q", symbol)
		}
	}
	baseRate, err := state.Get(market.KeyRiskFreeRate)
	if err != nil {
		return MonteCarloPFEResult{}, err
	}

	rng := newRand(cfg.Seed)
	equityPaths := make(map[string]*simulate.PathSet, len(symbols))
	for _, symbol := range symbols {
		spot, _ := state.Lookup(market.SpotKey(symbol))
		paths, err := cfg.EquityModels[symbol].SpotPaths(spot, cfg.Dt, numSteps, cfg.NumPaths, subSeed(rng))
		if err != nil {
			return MonteCarloPFEResult{}, fmt.Errorf("simulate %q: %w", symbol, err)
		}
		equityPaths[symbol] = paths
	}

	var ratePaths *simulate.PathSet
	if cfg.RateModel != nil {
		ratePaths, err = cfg.RateModel.RatePaths(baseRate, cfg.Dt, numSteps, cfg.NumPaths, subSeed(rng))
		if err != nil {
			return MonteCarloPFEResult{}, fmt.Errorf("simulate rate: %w", err)
		}
	}

	pfe := make(map[float64]float64, len(horizons))
	ee := make(map[float64]float64, len(horizons))
	exposures := make([]float64, cfg.NumPaths)
	overrides := make(map[string]float64, len(symbols)+1)

	for _, horizon := range horizons {
		stepIdx := int(math.Round(horizon / cfg.Dt))
		rolled := portfolio.Roll(horizon)

		sum := 0.0
		for pathIdx := 0; pathIdx < cfg.NumPaths; pathIdx++ {
			for _, symbol := range symbols {
				overrides[market.SpotKey(symbol)] = equityPaths[symbol].At(pathIdx, stepIdx)
			}
			if ratePaths != nil {
				overrides[market.KeyRiskFreeRate] = ratePaths.At(pathIdx, stepIdx)
			} else {
				overrides[market.KeyRiskFreeRate] = baseRate
			}

			value, err := eng.PricePortfolio(rolled, state.WithFactors(overrides))
			if err != nil {
				return MonteCarloPFEResult{}, fmt.Errorf("horizon %v path %d: %w", horizon, pathIdx, err)
			}
			exposures[pathIdx] = positivePart(value.Total - cfg.ValueAdjustment - cfg.Threshold)
			sum += exposures[pathIdx]
		}

		q, err := risk.Quantile(exposures, cfg.Confidence)
		if err != nil {
			return MonteCarloPFEResult{}, err
		}
		pfe[horizon] = q
		ee[horizon] = sum / float64(cfg.NumPaths)
	}

	return MonteCarloPFEResult{
		PFE:              pfe,
		ExpectedExposure: ee,
		Confidence:       cfg.Confidence,
		Horizons:         horizons,
		NumPaths:         cfg.NumPaths,
		Dt:               cfg.Dt,
		Seed:             cfg.Seed,
		Threshold:        cfg.Threshold,
		ValueAdjustment:  cfg.ValueAdjustment,
	}, nil
}

// validateHorizons sorts the horizons and checks every one lands exactly on
// the dt grid, since path indices come from round(horizon/dt).
func validateHorizons(horizons []float64, dt float64) ([]float64, int, error) {
	if dt <= 0.0 {
		return nil, 0, fmt.Errorf("dt must be > 0, got %v", dt)
	}
	if len(horizons) == 0 {
		return nil, 0, fmt.Errorf("horizons must contain at least one value")
	}

	times := append([]float64(nil), horizons...)
	sort.Float64s(times)
	if times[0] < 0.0 {
		return nil, 0, fmt.Errorf("horizons must be >= 0, got %v", times[0])
	}
	maxHorizon := times[len(times)-1]
	if maxHorizon == 0.0 {
		return nil, 0, fmt.Errorf("max horizon must be > 0")
	}

	numSteps := int(math.Round(maxHorizon / dt))
	for _, h := range times {
		steps := h / dt
		if math.Abs(steps-math.Round(steps)) > 1e-8 {
			return nil, 0, fmt.Errorf("horizon %v does not align with dt %v", h, dt)
		}
	}
	return times, numSteps, nil
}

// subSeed draws a per-model seed from the top-level source, avoiding zero
// so the derived stream stays reproducible.
func subSeed(rng *rand.Rand) int64 {
	s := int64(rng.Uint64() >> 1)
	if s == 0 {
		s = 1
	}
	return s
}

// newRand builds an independent random stream from seed. Seed 0 derives
// from entropy; any other value is reproducible.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(uint64(seed)))
}
