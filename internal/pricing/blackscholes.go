package pricing

import (
	"fmt"
	"math"

	"github.com/quantfold/riskengine/internal/instrument"
	"github.com/quantfold/riskengine/internal/market"
)

// BlackScholes prices European options. When used through the registry it
// resolves spot and vol from symbol-keyed market overrides and requires the
// risk-free rate factor; PriceOption values an option as given.
type BlackScholes struct{}

// Price implements Pricer for European options.
func (bs BlackScholes) Price(inst instrument.Instrument, state *market.State) (float64, error) {
	opt, ok := inst.(instrument.EuropeanOption)
	if !ok {
		return 0, &UnsupportedKindError{Kind: inst.Kind()}
	}

	rate, err := riskFreeRate(state)
	if err != nil {
		return 0, err
	}
	opt.Spot = spotFor(opt.Symbol, opt.Spot, state)
	opt.Vol = volFor(opt.Symbol, opt.Vol, state)
	opt.Rate = rate

	return bs.PriceOption(opt)
}

// PriceOption values an option from its embedded inputs with no market
// lookups.
func (BlackScholes) PriceOption(opt instrument.EuropeanOption) (float64, error) {
	if err := validateOption(opt); err != nil {
		return 0, err
	}

	s, k, t, r, vol := opt.Spot, opt.Strike, opt.Maturity, opt.Rate, opt.Vol

	if t == 0.0 {
		if opt.Type == instrument.OptionCall {
			return math.Max(s-k, 0.0), nil
		}
		return math.Max(k-s, 0.0), nil
	}

	df := math.Exp(-r * t)
	if vol == 0.0 {
		// Deterministic forward payoff, discounted.
		forward := s / df
		if opt.Type == instrument.OptionCall {
			return df * math.Max(forward-k, 0.0), nil
		}
		return df * math.Max(k-forward, 0.0), nil
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (r+0.5*vol*vol)*t) / (vol * sqrtT)
	d2 := d1 - vol*sqrtT

	if opt.Type == instrument.OptionCall {
		return s*normCDF(d1) - k*df*normCDF(d2), nil
	}
	return k*df*normCDF(-d2) - s*normCDF(-d1), nil
}

// Greeks holds first- and second-order option sensitivities.
type Greeks struct {
	Delta float64
	Gamma float64
	Vega  float64
	Theta float64
	Rho   float64
}

// OptionGreeks returns closed-form Black-Scholes greeks. At zero maturity
// or zero vol the option is digital in the forward and only delta is
// non-zero.
func (BlackScholes) OptionGreeks(opt instrument.EuropeanOption) (Greeks, error) {
	if err := validateOption(opt); err != nil {
		return Greeks{}, err
	}

	s, k, t, r, vol := opt.Spot, opt.Strike, opt.Maturity, opt.Rate, opt.Vol

	if t == 0.0 || vol == 0.0 {
		forward := s
		if t > 0.0 {
			forward = s * math.Exp(r*t)
		}
		var delta float64
		if opt.Type == instrument.OptionCall {
			if forward > k {
				delta = 1.0
			}
		} else {
			if forward < k {
				delta = -1.0
			}
		}
		return Greeks{Delta: delta}, nil
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (r+0.5*vol*vol)*t) / (vol * sqrtT)
	d2 := d1 - vol*sqrtT
	pdfD1 := normPDF(d1)
	df := math.Exp(-r * t)

	g := Greeks{
		Gamma: pdfD1 / (s * vol * sqrtT),
		Vega:  s * pdfD1 * sqrtT,
	}
	if opt.Type == instrument.OptionCall {
		g.Delta = normCDF(d1)
		g.Theta = -s*pdfD1*vol/(2.0*sqrtT) - r*k*df*normCDF(d2)
		g.Rho = k * t * df * normCDF(d2)
	} else {
		g.Delta = normCDF(d1) - 1.0
		g.Theta = -s*pdfD1*vol/(2.0*sqrtT) + r*k*df*normCDF(-d2)
		g.Rho = -k * t * df * normCDF(-d2)
	}
	return g, nil
}

// ImpliedVol solves for the volatility reproducing targetPrice by
// bisection over [volLower, volUpper].
func (bs BlackScholes) ImpliedVol(opt instrument.EuropeanOption, targetPrice float64) (float64, error) {
	const (
		tol      = 1e-6
		maxIter  = 200
		volLower = 1e-6
		volUpper = 5.0
	)

	if targetPrice < 0.0 {
		return 0, fmt.Errorf("target price must be >= 0")
	}
	if err := validateOption(opt); err != nil {
		return 0, err
	}

	priceAt := func(vol float64) (float64, error) {
		opt.Vol = vol
		return bs.PriceOption(opt)
	}

	low, high := volLower, volUpper
	priceLow, err := priceAt(low)
	if err != nil {
		return 0, err
	}
	priceHigh, err := priceAt(high)
	if err != nil {
		return 0, err
	}
	if targetPrice < priceLow || targetPrice > priceHigh {
		return 0, fmt.Errorf("target price %v is outside model price bounds [%v, %v]", targetPrice, priceLow, priceHigh)
	}

	for i := 0; i < maxIter; i++ {
		mid := 0.5 * (low + high)
		priceMid, err := priceAt(mid)
		if err != nil {
			return 0, err
		}
		if math.Abs(priceMid-targetPrice) <= tol {
			return mid, nil
		}
		if priceMid < targetPrice {
			low = mid
		} else {
			high = mid
		}
	}

	return 0.5 * (low + high), nil
}

func validateOption(opt instrument.EuropeanOption) error {
	if opt.Maturity < 0.0 {
		return fmt.Errorf("option maturity must be >= 0, got %v", opt.Maturity)
	}
	if opt.Vol < 0.0 {
		return fmt.Errorf("option vol must be >= 0, got %v", opt.Vol)
	}
	if opt.Spot <= 0.0 {
		return fmt.Errorf("option spot must be > 0, got %v", opt.Spot)
	}
	if opt.Strike <= 0.0 {
		return fmt.Errorf("option strike must be > 0, got %v", opt.Strike)
	}
	if opt.Type != instrument.OptionCall && opt.Type != instrument.OptionPut {
		return fmt.Errorf("option type must be %q or %q, got %q", instrument.OptionCall, instrument.OptionPut, opt.Type)
	}
	return nil
}

func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2.0*math.Pi)
}
