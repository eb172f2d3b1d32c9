package risk

import (
	"math"
	"time"

	"golang.org/x/exp/rand"
)

// MonteCarlo computes VaR by simulating horizon returns, either from a
// normal model fitted to the sample or by bootstrap resampling. Bootstrap
// draws one return per horizon period and compounds multiplicatively for
// simple returns or additively for log returns. The empirical quantile of
// the simulated distribution is taken directly, with no further horizon
// scaling.
func MonteCarlo(returns []float64, cfg Config, mc MonteCarloConfig) (Result, error) {
	if err := cfg.normalize(); err != nil {
		return Result{}, err
	}
	if err := mc.normalize(); err != nil {
		return Result{}, err
	}
	if len(returns) == 0 {
		return Result{}, ErrEmptyReturns
	}

	mean := Mean(returns)
	std := StdDev(returns)
	rng := newRand(mc.Seed)

	sims := make([]float64, mc.NumSims)
	switch mc.Method {
	case MonteCarloNormal:
		sqrtH := math.Sqrt(float64(cfg.Horizon))
		if cfg.ReturnType == ReturnLog {
			h := float64(cfg.Horizon)
			for i := range sims {
				sims[i] = mean*h + std*sqrtH*rng.NormFloat64()
			}
		} else {
			for i := range sims {
				sims[i] = (mean + std*rng.NormFloat64()) * sqrtH
			}
		}
	case MonteCarloBootstrap:
		for i := range sims {
			if cfg.ReturnType == ReturnLog {
				sum := 0.0
				for j := 0; j < cfg.Horizon; j++ {
					sum += returns[rng.Intn(len(returns))]
				}
				sims[i] = sum
			} else {
				growth := 1.0
				for j := 0; j < cfg.Horizon; j++ {
					growth *= 1.0 + returns[rng.Intn(len(returns))]
				}
				sims[i] = growth - 1.0
			}
		}
	}

	q, err := Quantile(sims, quantileProb(cfg))
	if err != nil {
		return Result{}, err
	}
	tm := tailMean(sims, q, cfg.Tail)

	return Result{
		Method:     MethodMonteCarlo,
		VaR:        signByTail(q, cfg.Tail),
		CVaR:       signByTail(tm, cfg.Tail),
		Confidence: cfg.Confidence,
		Horizon:    cfg.Horizon,
		Tail:       cfg.Tail,
		ReturnType: cfg.ReturnType,
		Quantile:   q,
		Mean:       mean,
		Std:        std,
		NumSims:    mc.NumSims,
		Seed:       mc.Seed,
	}, nil
}

// newRand builds an independent random stream from seed. Seed 0 derives
// from entropy; any other value is reproducible.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(uint64(seed)))
}
