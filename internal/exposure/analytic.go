package exposure

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/quantfold/riskengine/internal/engine"
	"github.com/quantfold/riskengine/internal/instrument"
	"github.com/quantfold/riskengine/internal/market"
	"github.com/quantfold/riskengine/internal/pricing"
	"github.com/quantfold/riskengine/internal/risk"
)

// ErrNotMonotonic reports an analytic PFE portfolio whose value changes
// direction in the underlying spot, which invalidates the quantile mapping.
var ErrNotMonotonic = errors.New("portfolio value is not monotonic in spot")

// AnalyticConfig drives the closed-form PFE profile.
type AnalyticConfig struct {
	Horizons        []float64
	Confidence      float64
	Threshold       float64
	ValueAdjustment float64
}

// AnalyticPFEResult is the closed-form exposure profile keyed by horizon.
type AnalyticPFEResult struct {
	PFE              map[float64]float64
	ExpectedExposure map[float64]float64
	Confidence       float64
	Horizons         []float64
	Threshold        float64
	ValueAdjustment  float64
	Assumption       string
}

// underlying holds the single (spot, vol, rate, dividend) the analytic
// approximation requires every position to share, plus the portfolio's
// direction in spot.
type underlying struct {
	spot      float64
	vol       float64
	rate      float64
	dividend  float64
	direction float64
}

// AnalyticPFEProfile approximates PFE for a portfolio of equity forwards
// and European options on one underlying. The spot is assumed lognormal
// with drift r - q and constant vol; the portfolio value must be monotonic
// in spot so that the value quantile is the value at the spot quantile.
func AnalyticPFEProfile(portfolio engine.Portfolio, state *market.State, cfg AnalyticConfig) (AnalyticPFEResult, error) {
	if err := validateConfidence(cfg.Confidence); err != nil {
		return AnalyticPFEResult{}, err
	}
	if len(cfg.Horizons) == 0 {
		return AnalyticPFEResult{}, fmt.Errorf("horizons must contain at least one value")
	}
	for _, h := range cfg.Horizons {
		if h < 0.0 {
			return AnalyticPFEResult{}, fmt.Errorf("horizons must be >= 0, got %v", h)
		}
	}

	u, err := extractUnderlying(portfolio, state)
	if err != nil {
		return AnalyticPFEResult{}, err
	}
	mu := u.rate - u.dividend

	horizons := append([]float64(nil), cfg.Horizons...)
	sort.Float64s(horizons)

	pfe := make(map[float64]float64, len(horizons))
	ee := make(map[float64]float64, len(horizons))
	for _, h := range horizons {
		quantileProb := cfg.Confidence
		if u.direction < 0 {
			quantileProb = 1.0 - cfg.Confidence
		}
		spotQ, err := spotQuantile(u.spot, mu, u.vol, h, quantileProb)
		if err != nil {
			return AnalyticPFEResult{}, err
		}
		spotMean := expectedSpot(u.spot, mu, h)

		valueQ, err := priceAtSpot(portfolio, spotQ, h)
		if err != nil {
			return AnalyticPFEResult{}, err
		}
		valueMean, err := priceAtSpot(portfolio, spotMean, h)
		if err != nil {
			return AnalyticPFEResult{}, err
		}

		pfe[h] = positivePart(valueQ - cfg.ValueAdjustment - cfg.Threshold)
		ee[h] = positivePart(valueMean - cfg.ValueAdjustment - cfg.Threshold)
	}

	return AnalyticPFEResult{
		PFE:              pfe,
		ExpectedExposure: ee,
		Confidence:       cfg.Confidence,
		Horizons:         horizons,
		Threshold:        cfg.Threshold,
		ValueAdjustment:  cfg.ValueAdjustment,
		Assumption:       "lognormal spot, monotonic portfolio, exposure approx by value at E[S_t]",
	}, nil
}

// extractUnderlying walks the portfolio and requires every position to
// agree on spot, vol, and rate. Direction per position follows a
// call/forward/put sign convention times the quantity sign; any flip across
// positions is a hard error.
func extractUnderlying(portfolio engine.Portfolio, state *market.State) (underlying, error) {
	// The market risk-free rate, when present, seeds the shared rate before
	// the position loop; every embedded rate must then agree with it.
	sharedRate, rateSet := state.Lookup(market.KeyRiskFreeRate)

	// A single dividend factor acts as the default for instruments without
	// a symbol-keyed entry.
	defaultDividend := 0.0
	hasDefaultDividend := false
	if divKeys := state.KeysWithPrefix("DIV."); len(divKeys) == 1 {
		defaultDividend, _ = state.Lookup(divKeys[0])
		hasDefaultDividend = true
	}

	var u underlying
	seen := false
	symbol := ""

	for i, pos := range portfolio {
		var instSpot, instVol, instRate, instDiv, instDirection float64
		instSymbol := ""

		switch v := pos.Instrument.(type) {
		case instrument.EquityForward:
			instSymbol = v.Symbol
			instSpot = v.Spot
			if v.Symbol != "" {
				if s, ok := state.Lookup(market.SpotKey(v.Symbol)); ok {
					instSpot = s
				}
			}
			instRate = v.Rate
			if rateSet {
				instRate = sharedRate
			}
			instDiv = v.DividendYield
			if v.Symbol != "" {
				if d, ok := state.Lookup(market.DividendKey(v.Symbol)); ok {
					instDiv = d
				}
			}
			vol, ok := 0.0, false
			if v.Symbol != "" {
				vol, ok = state.Lookup(market.VolKey(v.Symbol))
			}
			if !ok {
				return underlying{}, fmt.Errorf("position %d: market state must carry the forward symbol's vol", i)
			}
			instVol = vol
			instDirection = 1.0
		case instrument.EuropeanOption:
			instSymbol = v.Symbol
			instSpot = v.Spot
			instRate = v.Rate
			instVol = v.Vol
			if hasDefaultDividend {
				instDiv = defaultDividend
			}
			switch v.Type {
			case instrument.OptionCall:
				instDirection = 1.0
			case instrument.OptionPut:
				instDirection = -1.0
			default:
				return underlying{}, fmt.Errorf("position %d: unknown option type %q", i, v.Type)
			}
		default:
			return underlying{}, fmt.Errorf("position %d: analytic PFE supports equity forwards and European options only, got %q", i, pos.Instrument.Kind())
		}

		if instSymbol != "" {
			if symbol == "" {
				symbol = instSymbol
			} else if symbol != instSymbol {
				return underlying{}, fmt.Errorf("all instruments must share the same underlying symbol")
			}
		}

		signed := instDirection
		if pos.Quantity < 0.0 {
			signed = -instDirection
		}

		if !seen {
			u = underlying{spot: instSpot, vol: instVol, dividend: instDiv, direction: signed}
			seen = true
		} else {
			if signed*u.direction < 0.0 {
				return underlying{}, ErrNotMonotonic
			}
			if !closeEnough(u.spot, instSpot) {
				return underlying{}, fmt.Errorf("all instruments must share the same spot")
			}
			if !closeEnough(u.vol, instVol) {
				return underlying{}, fmt.Errorf("all instruments must share the same vol")
			}
		}

		if !rateSet {
			sharedRate = instRate
			rateSet = true
		} else if !closeEnough(sharedRate, instRate) {
			return underlying{}, fmt.Errorf("all instruments must share the same rate")
		}
	}

	if !seen {
		return underlying{}, fmt.Errorf("portfolio must contain at least one supported instrument")
	}
	u.rate = sharedRate
	return u, nil
}

// priceAtSpot values the rolled portfolio at an externally chosen spot,
// using each instrument's embedded rate and vol rather than market
// overrides. The analytic flavor controls the spot path itself.
func priceAtSpot(portfolio engine.Portfolio, spot, horizon float64) (float64, error) {
	bs := pricing.BlackScholes{}
	total := 0.0
	for i, pos := range portfolio {
		var value float64
		switch v := pos.Instrument.(type) {
		case instrument.EquityForward:
			tau := math.Max(v.Maturity-horizon, 0.0)
			df := math.Exp(-v.Rate * tau)
			forward := spot * math.Exp(-v.DividendYield*tau)
			value = forward - v.Strike*df
		case instrument.EuropeanOption:
			rolled := v
			rolled.Spot = spot
			rolled.Maturity = math.Max(v.Maturity-horizon, 0.0)
			px, err := bs.PriceOption(rolled)
			if err != nil {
				return 0, fmt.Errorf("position %d: %w", i, err)
			}
			value = px
		default:
			return 0, fmt.Errorf("position %d: analytic PFE supports equity forwards and European options only, got %q", i, pos.Instrument.Kind())
		}
		total += pos.Quantity * value
	}
	return total, nil
}

// spotQuantile returns the lognormal spot quantile at the horizon.
func spotQuantile(spot, mu, vol, horizon, prob float64) (float64, error) {
	if horizon == 0.0 {
		return spot, nil
	}
	z, err := risk.NormPPF(prob)
	if err != nil {
		return 0, err
	}
	return spot * math.Exp((mu-0.5*vol*vol)*horizon+vol*math.Sqrt(horizon)*z), nil
}

func expectedSpot(spot, mu, horizon float64) float64 {
	if horizon == 0.0 {
		return spot
	}
	return spot * math.Exp(mu*horizon)
}

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) <= 1e-8+1e-5*math.Abs(b)
}
