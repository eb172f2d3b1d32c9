package exposure

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/riskengine/internal/engine"
	"github.com/quantfold/riskengine/internal/instrument"
	"github.com/quantfold/riskengine/internal/market"
	"github.com/quantfold/riskengine/internal/pricing"
	"github.com/quantfold/riskengine/internal/risk"
	"github.com/quantfold/riskengine/internal/simulate"
)

func newTestEngine() *engine.Engine {
	return engine.New(pricing.NewDefaultRegistry(), zerolog.Nop())
}

func TestScenarioPFEQuantileOverFlooredExposures(t *testing.T) {
	pnls := []float64{10, -5, 20, 0}

	r, err := ScenarioPFE(pnls, ScenarioConfig{Confidence: 0.5, Threshold: 2})
	require.NoError(t, err)

	// Exposures [8, 0, 18, 0]; median interpolates to 4.
	assert.InDelta(t, 4.0, r.PFE, 1e-12)
	assert.Equal(t, 4, r.NumScenarios)
	assert.Equal(t, 2.0, r.Threshold)
}

func TestScenarioPFEConfidenceMonotonicity(t *testing.T) {
	pnls := []float64{-3, 1, 4, 9, 12}
	prev := -1.0
	for _, c := range []float64{0.5, 0.75, 0.95} {
		r, err := ScenarioPFE(pnls, ScenarioConfig{Confidence: c})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, r.PFE, prev)
		prev = r.PFE
	}
}

func TestScenarioPFEValidation(t *testing.T) {
	_, err := ScenarioPFE([]float64{1}, ScenarioConfig{Confidence: 1.0})
	assert.Error(t, err)
	_, err = ScenarioPFE(nil, ScenarioConfig{Confidence: 0.95})
	assert.Error(t, err)
}

func TestScenarioPFEByPositionNetting(t *testing.T) {
	pnls := [][]float64{
		{10, -5},
		{-3, -2},
	}

	netted, err := ScenarioPFEByPosition(pnls, ScenarioConfig{Confidence: 0.95, Netting: true})
	require.NoError(t, err)
	// Net per scenario: [5, -5] -> exposures [5, 0] -> quantile 4.75.
	assert.InDelta(t, 4.75, netted.PFE, 1e-12)

	gross, err := ScenarioPFEByPosition(pnls, ScenarioConfig{Confidence: 0.95, Netting: false})
	require.NoError(t, err)
	// Positive parts per scenario: [10, 0] -> quantile 9.5.
	assert.InDelta(t, 9.5, gross.PFE, 1e-12)
	assert.Greater(t, gross.PFE, netted.PFE)
}

func TestScenarioPFEByPositionRaggedRows(t *testing.T) {
	pnls := [][]float64{
		{10, -5},
		{-3},
	}
	_, err := ScenarioPFEByPosition(pnls, ScenarioConfig{Confidence: 0.95, Netting: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestScenarioProfilePerHorizonThresholds(t *testing.T) {
	pnlsByHorizon := map[float64][]float64{
		1.0: {10, 20},
		2.0: {10, 20},
	}

	results, err := ScenarioProfile(pnlsByHorizon, ProfileConfig{
		Confidence: 0.95,
		Thresholds: map[float64]float64{1.0: 5.0},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Horizon 1 nets off its threshold; horizon 2 has no entry and
	// defaults to zero.
	assert.InDelta(t, 14.5, results[1.0].PFE, 1e-12)
	assert.InDelta(t, 19.5, results[2.0].PFE, 1e-12)
	assert.Equal(t, 1.0, results[1.0].Horizon)
}

func TestScenarioPFEFromRevaluation(t *testing.T) {
	reval := engine.ScenarioRevaluation{
		Base: 100,
		PnLs: []float64{5, -10, 15},
	}
	r, err := FromRevaluation(reval, ScenarioConfig{Confidence: 0.95, Horizon: 1})
	require.NoError(t, err)

	direct, err := ScenarioPFE(reval.PnLs, ScenarioConfig{Confidence: 0.95, Horizon: 1})
	require.NoError(t, err)
	assert.Equal(t, direct.PFE, r.PFE)
}

func TestProfileFromRevaluations(t *testing.T) {
	revals := map[float64]engine.ScenarioRevaluation{
		0.5: {PnLs: []float64{1, 2, 3}},
		1.0: {PnLs: []float64{4, 5, 6}},
	}
	results, err := ProfileFromRevaluations(revals, ProfileConfig{Confidence: 0.5})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InDelta(t, 2.0, results[0.5].PFE, 1e-12)
	assert.InDelta(t, 5.0, results[1.0].PFE, 1e-12)
}

func analyticState() *market.State {
	return market.New(map[string]float64{
		market.KeyRiskFreeRate: 0.0,
		market.SpotKey("AAPL"): 100.0,
		market.VolKey("AAPL"):  0.2,
	})
}

func TestAnalyticPFEForward(t *testing.T) {
	portfolio := engine.Portfolio{
		{Instrument: instrument.EquityForward{Spot: 100, Strike: 100, Maturity: 1.0, Symbol: "AAPL"}, Quantity: 1},
	}

	result, err := AnalyticPFEProfile(portfolio, analyticState(), AnalyticConfig{
		Horizons:   []float64{1.0},
		Confidence: 0.95,
	})
	require.NoError(t, err)

	// At the horizon the forward has expired: value is spot minus strike at
	// the lognormal spot quantile with zero drift.
	z, err := risk.NormPPF(0.95)
	require.NoError(t, err)
	spotQ := 100.0 * math.Exp(-0.5*0.2*0.2+0.2*z)
	assert.InDelta(t, spotQ-100.0, result.PFE[1.0], 1e-9)

	// Expected spot equals the initial spot with zero drift, so the ATM
	// forward carries no expected exposure.
	assert.InDelta(t, 0.0, result.ExpectedExposure[1.0], 1e-12)
}

func TestAnalyticPFEZeroHorizonUsesCurrentSpot(t *testing.T) {
	portfolio := engine.Portfolio{
		{Instrument: instrument.EquityForward{Spot: 100, Strike: 90, Maturity: 1.0, Symbol: "AAPL"}, Quantity: 1},
	}
	result, err := AnalyticPFEProfile(portfolio, analyticState(), AnalyticConfig{
		Horizons:   []float64{0.0, 1.0},
		Confidence: 0.95,
	})
	require.NoError(t, err)
	// Zero rate and dividend: value today is spot - strike.
	assert.InDelta(t, 10.0, result.PFE[0.0], 1e-9)
	assert.Equal(t, []float64{0.0, 1.0}, result.Horizons)
}

func TestAnalyticPFEPutUsesLowerTail(t *testing.T) {
	put := instrument.EuropeanOption{
		Spot: 100, Strike: 100, Maturity: 1.0, Rate: 0.0, Vol: 0.2,
		Type: instrument.OptionPut, Symbol: "AAPL",
	}
	portfolio := engine.Portfolio{{Instrument: put, Quantity: 1}}

	result, err := AnalyticPFEProfile(portfolio, analyticState(), AnalyticConfig{
		Horizons:   []float64{0.5},
		Confidence: 0.95,
	})
	require.NoError(t, err)

	// A long put gains when spot falls; its PFE sits at the lower spot
	// quantile and dominates the expected exposure.
	assert.Greater(t, result.PFE[0.5], 0.0)
	assert.GreaterOrEqual(t, result.PFE[0.5], result.ExpectedExposure[0.5])
}

func TestAnalyticPFENotMonotonic(t *testing.T) {
	call := instrument.EuropeanOption{
		Spot: 100, Strike: 100, Maturity: 1.0, Rate: 0.0, Vol: 0.2,
		Type: instrument.OptionCall, Symbol: "AAPL",
	}
	put := call
	put.Type = instrument.OptionPut
	portfolio := engine.Portfolio{
		{Instrument: call, Quantity: 1},
		{Instrument: put, Quantity: 1},
	}

	_, err := AnalyticPFEProfile(portfolio, analyticState(), AnalyticConfig{
		Horizons:   []float64{1.0},
		Confidence: 0.95,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotMonotonic))
}

func TestAnalyticPFEOptionRateMustMatchMarketRate(t *testing.T) {
	call := instrument.EuropeanOption{
		Spot: 100, Strike: 100, Maturity: 1.0, Rate: 0.02, Vol: 0.2,
		Type: instrument.OptionCall, Symbol: "AAPL",
	}
	portfolio := engine.Portfolio{{Instrument: call, Quantity: 1}}

	state := market.New(map[string]float64{
		market.KeyRiskFreeRate: 0.05,
		market.SpotKey("AAPL"): 100.0,
		market.VolKey("AAPL"):  0.2,
	})
	_, err := AnalyticPFEProfile(portfolio, state, AnalyticConfig{
		Horizons:   []float64{1.0},
		Confidence: 0.95,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same rate")
}

func TestAnalyticPFEMarketRateAgreesWithEmbedded(t *testing.T) {
	call := instrument.EuropeanOption{
		Spot: 100, Strike: 100, Maturity: 2.0, Rate: 0.05, Vol: 0.2,
		Type: instrument.OptionCall, Symbol: "AAPL",
	}
	portfolio := engine.Portfolio{{Instrument: call, Quantity: 1}}
	cfg := AnalyticConfig{Horizons: []float64{1.0}, Confidence: 0.95}

	withRate, err := AnalyticPFEProfile(portfolio, market.New(map[string]float64{
		market.KeyRiskFreeRate: 0.05,
	}), cfg)
	require.NoError(t, err)

	// An agreeing market rate yields the same drift as the embedded rate.
	withoutRate, err := AnalyticPFEProfile(portfolio, market.New(nil), cfg)
	require.NoError(t, err)
	assert.Equal(t, withoutRate.PFE[1.0], withRate.PFE[1.0])
}

func TestAnalyticPFEMismatchedUnderlying(t *testing.T) {
	a := instrument.EuropeanOption{Spot: 100, Strike: 100, Maturity: 1, Vol: 0.2, Type: instrument.OptionCall}
	b := instrument.EuropeanOption{Spot: 50, Strike: 100, Maturity: 1, Vol: 0.2, Type: instrument.OptionCall}
	portfolio := engine.Portfolio{
		{Instrument: a, Quantity: 1},
		{Instrument: b, Quantity: 1},
	}

	_, err := AnalyticPFEProfile(portfolio, market.New(nil), AnalyticConfig{
		Horizons:   []float64{1.0},
		Confidence: 0.95,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same spot")
}

func TestAnalyticPFEUnsupportedKind(t *testing.T) {
	portfolio := engine.Portfolio{
		{Instrument: instrument.ZeroCouponBond{Face: 100, Maturity: 1}, Quantity: 1},
	}
	_, err := AnalyticPFEProfile(portfolio, analyticState(), AnalyticConfig{
		Horizons:   []float64{1.0},
		Confidence: 0.95,
	})
	assert.Error(t, err)
}

func mcPortfolio() engine.Portfolio {
	return engine.Portfolio{
		{Instrument: instrument.EquityForward{Spot: 100, Strike: 100, Maturity: 2.0, Symbol: "AAPL"}, Quantity: 1},
	}
}

func mcState() *market.State {
	return market.New(map[string]float64{
		market.KeyRiskFreeRate: 0.0,
		market.SpotKey("AAPL"): 100.0,
	})
}

func TestMonteCarloPFEGridAlignment(t *testing.T) {
	cfg := MonteCarloConfig{
		Horizons:     []float64{0.5, 1.0},
		Dt:           1.0,
		NumPaths:     10,
		Confidence:   0.95,
		EquityModels: map[string]simulate.SpotModel{"AAPL": simulate.GBMParams{Vol: 0.2}},
		Seed:         1,
	}
	_, err := MonteCarloPFE(newTestEngine(), mcPortfolio(), mcState(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "align")

	cfg.Horizons = []float64{1.0, 2.0}
	_, err = MonteCarloPFE(newTestEngine(), mcPortfolio(), mcState(), cfg)
	assert.NoError(t, err)
}

func TestMonteCarloPFEZeroVolDeterministicForward(t *testing.T) {
	cfg := MonteCarloConfig{
		Horizons:     []float64{1.0, 2.0},
		Dt:           1.0,
		NumPaths:     100,
		Confidence:   0.95,
		EquityModels: map[string]simulate.SpotModel{"AAPL": simulate.GBMParams{Drift: 0.0, Vol: 0.0}},
		Seed:         7,
	}
	result, err := MonteCarloPFE(newTestEngine(), mcPortfolio(), mcState(), cfg)
	require.NoError(t, err)

	// All paths coincide with the flat forward: the ATM forward has zero
	// value on every path, so PFE and EE are both exactly zero.
	for _, h := range []float64{1.0, 2.0} {
		assert.Equal(t, 0.0, result.PFE[h], "horizon %v", h)
		assert.Equal(t, 0.0, result.ExpectedExposure[h], "horizon %v", h)
	}
}

func TestMonteCarloPFEDeterminism(t *testing.T) {
	cfg := MonteCarloConfig{
		Horizons:   []float64{1.0, 2.0},
		Dt:         0.5,
		NumPaths:   200,
		Confidence: 0.95,
		EquityModels: map[string]simulate.SpotModel{
			"AAPL": simulate.HestonParams{Kappa: 1.0, LongVar: 0.04, VolOfVol: 0.3, Rho: -0.5, InitialVar: 0.04},
		},
		RateModel: simulate.VasicekParams{MeanReversion: 0.2, LongRate: 0.02, Vol: 0.01},
		Seed:      42,
	}

	a, err := MonteCarloPFE(newTestEngine(), mcPortfolio(), mcState(), cfg)
	require.NoError(t, err)
	b, err := MonteCarloPFE(newTestEngine(), mcPortfolio(), mcState(), cfg)
	require.NoError(t, err)

	for _, h := range a.Horizons {
		assert.Equal(t, a.PFE[h], b.PFE[h], "horizon %v", h)
		assert.Equal(t, a.ExpectedExposure[h], b.ExpectedExposure[h], "horizon %v", h)
	}

	cfg.Seed = 43
	c, err := MonteCarloPFE(newTestEngine(), mcPortfolio(), mcState(), cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a.PFE[1.0], c.PFE[1.0])
}

func TestMonteCarloPFEFactorStreamIndependence(t *testing.T) {
	// Adding an unrelated symbol later in sort order must not perturb the
	// first symbol's draws.
	base := MonteCarloConfig{
		Horizons:     []float64{1.0},
		Dt:           1.0,
		NumPaths:     50,
		Confidence:   0.95,
		EquityModels: map[string]simulate.SpotModel{"AAPL": simulate.GBMParams{Vol: 0.2}},
		Seed:         11,
	}
	state := market.New(map[string]float64{
		market.KeyRiskFreeRate: 0.0,
		market.SpotKey("AAPL"): 100.0,
		market.SpotKey("ZULU"): 50.0,
	})

	a, err := MonteCarloPFE(newTestEngine(), mcPortfolio(), state, base)
	require.NoError(t, err)

	with := base
	with.EquityModels = map[string]simulate.SpotModel{
		"AAPL": simulate.GBMParams{Vol: 0.2},
		"ZULU": simulate.GBMParams{Vol: 0.5},
	}
	b, err := MonteCarloPFE(newTestEngine(), mcPortfolio(), state, with)
	require.NoError(t, err)

	assert.Equal(t, a.PFE[1.0], b.PFE[1.0])
	assert.Equal(t, a.ExpectedExposure[1.0], b.ExpectedExposure[1.0])
}

func TestMonteCarloPFEThresholdReducesExposure(t *testing.T) {
	cfg := MonteCarloConfig{
		Horizons:     []float64{1.0},
		Dt:           1.0,
		NumPaths:     500,
		Confidence:   0.95,
		EquityModels: map[string]simulate.SpotModel{"AAPL": simulate.GBMParams{Vol: 0.3}},
		Seed:         3,
	}
	bare, err := MonteCarloPFE(newTestEngine(), mcPortfolio(), mcState(), cfg)
	require.NoError(t, err)

	cfg.Threshold = 5.0
	collateralized, err := MonteCarloPFE(newTestEngine(), mcPortfolio(), mcState(), cfg)
	require.NoError(t, err)

	assert.Less(t, collateralized.PFE[1.0], bare.PFE[1.0])
}

func TestMonteCarloPFEValidation(t *testing.T) {
	eng := newTestEngine()
	valid := MonteCarloConfig{
		Horizons:     []float64{1.0},
		Dt:           1.0,
		NumPaths:     10,
		Confidence:   0.95,
		EquityModels: map[string]simulate.SpotModel{"AAPL": simulate.GBMParams{Vol: 0.2}},
		Seed:         1,
	}

	cfg := valid
	cfg.NumPaths = 0
	_, err := MonteCarloPFE(eng, mcPortfolio(), mcState(), cfg)
	assert.Error(t, err)

	cfg = valid
	cfg.EquityModels = nil
	_, err = MonteCarloPFE(eng, mcPortfolio(), mcState(), cfg)
	assert.Error(t, err)

	cfg = valid
	cfg.EquityModels = map[string]simulate.SpotModel{"MISSING": simulate.GBMParams{Vol: 0.2}}
	_, err = MonteCarloPFE(eng, mcPortfolio(), mcState(), cfg)
	assert.Error(t, err)

	// Missing risk-free rate is a market error at the point of use.
	cfg = valid
	noRate := market.New(map[string]float64{market.SpotKey("AAPL"): 100.0})
	_, err = MonteCarloPFE(eng, mcPortfolio(), noRate, cfg)
	require.Error(t, err)
	var notFound *market.FactorNotFoundError
	assert.True(t, errors.As(err, &notFound))
}
