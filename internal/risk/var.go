package risk

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrEmptyReturns reports a VaR computation over an empty return series.
var ErrEmptyReturns = errors.New("returns must contain at least one value")

// scaleToHorizon scales a one-period statistic to the horizon. Simple
// returns scale by sqrt(horizon); log returns scale the mean by horizon and
// the deviation from the mean by sqrt(horizon).
func scaleToHorizon(q, mean float64, horizon int, rt ReturnType) float64 {
	h := float64(horizon)
	if rt == ReturnLog {
		return mean*h + (q-mean)*math.Sqrt(h)
	}
	return q * math.Sqrt(h)
}

// signByTail converts a scaled quantile into a reported magnitude: the left
// tail is a loss quantile and is negated, the right tail is reported as is.
func signByTail(scaled float64, tail Tail) float64 {
	if tail == TailLeft {
		return -scaled
	}
	return scaled
}

func quantileProb(cfg Config) float64 {
	if cfg.Tail == TailRight {
		return cfg.Confidence
	}
	return 1.0 - cfg.Confidence
}

// Historical computes empirical-quantile VaR from a return series.
func Historical(returns []float64, cfg Config) (Result, error) {
	if err := cfg.normalize(); err != nil {
		return Result{}, err
	}
	if len(returns) == 0 {
		return Result{}, ErrEmptyReturns
	}

	q, err := Quantile(returns, quantileProb(cfg))
	if err != nil {
		return Result{}, err
	}
	mean := Mean(returns)
	tm := tailMean(returns, q, cfg.Tail)

	return Result{
		Method:     MethodHistorical,
		VaR:        signByTail(scaleToHorizon(q, mean, cfg.Horizon, cfg.ReturnType), cfg.Tail),
		CVaR:       signByTail(scaleToHorizon(tm, mean, cfg.Horizon, cfg.ReturnType), cfg.Tail),
		Confidence: cfg.Confidence,
		Horizon:    cfg.Horizon,
		Tail:       cfg.Tail,
		ReturnType: cfg.ReturnType,
		Quantile:   q,
		Mean:       mean,
		Std:        StdDev(returns),
	}, nil
}

// Parametric computes Gaussian delta-normal VaR from a return series using
// the sample mean and Bessel-corrected standard deviation.
func Parametric(returns []float64, cfg Config) (Result, error) {
	if err := cfg.normalize(); err != nil {
		return Result{}, err
	}
	if len(returns) == 0 {
		return Result{}, ErrEmptyReturns
	}
	return parametricFromMoments(Mean(returns), StdDev(returns), cfg, nil)
}

// ParametricPortfolio computes delta-normal VaR for a weighted portfolio
// from a covariance matrix and an optional per-asset mean vector (nil means
// zero expected returns). Weights not summing to one and a covariance with a
// negative eigenvalue produce advisory warnings, not errors.
func ParametricPortfolio(weights []float64, covariance *mat.SymDense, meanVec []float64, cfg Config) (Result, error) {
	if err := cfg.normalize(); err != nil {
		return Result{}, err
	}
	n := len(weights)
	if n == 0 {
		return Result{}, fmt.Errorf("weights must contain at least one value")
	}
	if covariance == nil || covariance.SymmetricDim() != n {
		return Result{}, fmt.Errorf("covariance must be a %dx%d matrix", n, n)
	}
	if meanVec != nil && len(meanVec) != n {
		return Result{}, fmt.Errorf("mean vector length %d does not match %d weights", len(meanVec), n)
	}

	var warnings []string
	weightSum := 0.0
	for _, w := range weights {
		weightSum += w
	}
	if math.Abs(weightSum-1.0) > 1e-8 {
		warnings = append(warnings, fmt.Sprintf("portfolio weights sum to %v, not 1", weightSum))
	}
	// Eigenvalue check rather than Cholesky: a singular covariance (e.g.
	// perfectly correlated assets) is still PSD and must not warn.
	var eig mat.EigenSym
	if !eig.Factorize(covariance, false) {
		warnings = append(warnings, "covariance matrix is not positive semidefinite")
	} else {
		vals := eig.Values(nil)
		tol := 1e-10 * math.Max(1.0, math.Abs(vals[n-1]))
		if vals[0] < -tol {
			warnings = append(warnings, "covariance matrix is not positive semidefinite")
		}
	}

	w := mat.NewVecDense(n, weights)
	portfolioMean := 0.0
	if meanVec != nil {
		portfolioMean = mat.Dot(w, mat.NewVecDense(n, meanVec))
	}
	portfolioVar := mat.Inner(w, covariance, w)
	portfolioStd := math.Sqrt(math.Max(portfolioVar, 0.0))

	return parametricFromMoments(portfolioMean, portfolioStd, cfg, warnings)
}

func parametricFromMoments(mean, std float64, cfg Config, warnings []string) (Result, error) {
	z, err := NormPPF(quantileProb(cfg))
	if err != nil {
		return Result{}, err
	}
	quantile := mean + z*std

	// Gaussian tail mean beyond the quantile, for expected shortfall.
	tailMass := 1.0 - cfg.Confidence
	var etm float64
	if cfg.Tail == TailLeft {
		etm = mean - std*NormPDF(z)/tailMass
	} else {
		etm = mean + std*NormPDF(z)/tailMass
	}

	return Result{
		Method:     MethodParametric,
		VaR:        signByTail(scaleToHorizon(quantile, mean, cfg.Horizon, cfg.ReturnType), cfg.Tail),
		CVaR:       signByTail(scaleToHorizon(etm, mean, cfg.Horizon, cfg.ReturnType), cfg.Tail),
		Confidence: cfg.Confidence,
		Horizon:    cfg.Horizon,
		Tail:       cfg.Tail,
		ReturnType: cfg.ReturnType,
		Quantile:   quantile,
		Mean:       mean,
		Std:        std,
		Z:          z,
		Warnings:   warnings,
	}, nil
}

// ProjectReturns maps per-asset return observations onto portfolio returns
// through the weight vector. assetReturns is row-major (observation, asset).
func ProjectReturns(assetReturns [][]float64, weights []float64) ([]float64, error) {
	if len(assetReturns) == 0 {
		return nil, fmt.Errorf("asset returns must contain at least one observation")
	}
	numAssets := len(assetReturns[0])
	if numAssets == 0 {
		return nil, fmt.Errorf("asset returns must contain at least one asset")
	}
	if len(weights) != numAssets {
		return nil, fmt.Errorf("weights length %d does not match %d assets", len(weights), numAssets)
	}

	projected := make([]float64, len(assetReturns))
	for i, row := range assetReturns {
		if len(row) != numAssets {
			return nil, fmt.Errorf("asset returns row %d has %d values, want %d", i, len(row), numAssets)
		}
		dot := 0.0
		for j, v := range row {
			dot += v * weights[j]
		}
		projected[i] = dot
	}
	return projected, nil
}

// PortfolioConfig drives PortfolioFromReturns: one result is produced per
// (confidence, horizon) pair, in confidence-major order.
type PortfolioConfig struct {
	Method      Method
	Confidences []float64
	Horizons    []int
	Tail        Tail
	ReturnType  ReturnType
	MonteCarlo  MonteCarloConfig
}

// PortfolioFromReturns projects asset returns onto the portfolio and routes
// to the requested VaR method for every (confidence, horizon) pair.
func PortfolioFromReturns(assetReturns [][]float64, weights []float64, cfg PortfolioConfig) ([]Result, error) {
	if len(cfg.Confidences) == 0 {
		return nil, fmt.Errorf("at least one confidence level is required")
	}
	if len(cfg.Horizons) == 0 {
		return nil, fmt.Errorf("at least one horizon is required")
	}

	projected, err := ProjectReturns(assetReturns, weights)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(cfg.Confidences)*len(cfg.Horizons))
	for _, c := range cfg.Confidences {
		for _, h := range cfg.Horizons {
			single := Config{Confidence: c, Horizon: h, Tail: cfg.Tail, ReturnType: cfg.ReturnType}
			r, err := compute(projected, cfg.Method, single, cfg.MonteCarlo)
			if err != nil {
				return nil, err
			}
			results = append(results, r)
		}
	}
	return results, nil
}

// PortfolioVaR is the scalar convenience form of PortfolioFromReturns.
func PortfolioVaR(assetReturns [][]float64, weights []float64, method Method, cfg Config, mc MonteCarloConfig) (Result, error) {
	projected, err := ProjectReturns(assetReturns, weights)
	if err != nil {
		return Result{}, err
	}
	return compute(projected, method, cfg, mc)
}

func compute(returns []float64, method Method, cfg Config, mc MonteCarloConfig) (Result, error) {
	switch method {
	case MethodHistorical:
		return Historical(returns, cfg)
	case MethodParametric:
		return Parametric(returns, cfg)
	case MethodMonteCarlo:
		return MonteCarlo(returns, cfg, mc)
	default:
		return Result{}, fmt.Errorf("unknown method %q", method)
	}
}
