package simulate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGBMShapeAndInitialColumn(t *testing.T) {
	set, err := GBM(100.0, GBMParams{Drift: 0.05, Vol: 0.2}, 1.0/252.0, 10, 25, 7)
	require.NoError(t, err)

	assert.Equal(t, 25, set.NumPaths())
	assert.Equal(t, 10, set.NumSteps())
	assert.Equal(t, 1.0/252.0, set.Dt())
	for i := 0; i < set.NumPaths(); i++ {
		assert.Equal(t, 100.0, set.At(i, 0))
	}
}

func TestGBMDeterminism(t *testing.T) {
	a, err := GBM(100.0, GBMParams{Drift: 0.05, Vol: 0.2}, 0.01, 50, 20, 42)
	require.NoError(t, err)
	b, err := GBM(100.0, GBMParams{Drift: 0.05, Vol: 0.2}, 0.01, 50, 20, 42)
	require.NoError(t, err)

	for i := 0; i < a.NumPaths(); i++ {
		for j := 0; j <= a.NumSteps(); j++ {
			// Bit-identical, not merely close.
			assert.Equal(t, a.At(i, j), b.At(i, j))
		}
	}

	c, err := GBM(100.0, GBMParams{Drift: 0.05, Vol: 0.2}, 0.01, 50, 20, 43)
	require.NoError(t, err)
	assert.NotEqual(t, a.At(0, 1), c.At(0, 1))
}

func TestGBMZeroVolDeterministicForward(t *testing.T) {
	set, err := GBM(100.0, GBMParams{Drift: 0.05, Vol: 0.0}, 0.5, 2, 4, 1)
	require.NoError(t, err)

	for i := 0; i < set.NumPaths(); i++ {
		assert.InDelta(t, 100.0*math.Exp(0.05*0.5), set.At(i, 1), 1e-10)
		assert.InDelta(t, 100.0*math.Exp(0.05*1.0), set.At(i, 2), 1e-10)
	}
}

func TestGBMValidation(t *testing.T) {
	_, err := GBM(0.0, GBMParams{Vol: 0.2}, 0.01, 10, 10, 1)
	assert.Error(t, err)
	_, err = GBM(100.0, GBMParams{Vol: -0.2}, 0.01, 10, 10, 1)
	assert.Error(t, err)
	_, err = GBM(100.0, GBMParams{Vol: 0.2}, 0.0, 10, 10, 1)
	assert.Error(t, err)
	_, err = GBM(100.0, GBMParams{Vol: 0.2}, 0.01, 0, 10, 1)
	assert.Error(t, err)
	_, err = GBM(100.0, GBMParams{Vol: 0.2}, 0.01, 10, 0, 1)
	assert.Error(t, err)
}

func TestHestonShapeAndPositivity(t *testing.T) {
	params := HestonParams{Kappa: 1.5, LongVar: 0.04, VolOfVol: 0.3, Rho: -0.6, InitialVar: 0.04, Drift: 0.02}
	set, err := Heston(100.0, params, 0.01, 100, 30, 11)
	require.NoError(t, err)

	assert.Equal(t, 30, set.NumPaths())
	assert.Equal(t, 100, set.NumSteps())
	for i := 0; i < set.NumPaths(); i++ {
		assert.Equal(t, 100.0, set.At(i, 0))
		for j := 1; j <= set.NumSteps(); j++ {
			assert.Greater(t, set.At(i, j), 0.0)
		}
	}
}

func TestHestonDeterminism(t *testing.T) {
	params := HestonParams{Kappa: 1.0, LongVar: 0.09, VolOfVol: 0.5, Rho: -0.5, InitialVar: 0.09, Drift: 0.0}

	a, err := Heston(50.0, params, 0.02, 25, 10, 99)
	require.NoError(t, err)
	b, err := Heston(50.0, params, 0.02, 25, 10, 99)
	require.NoError(t, err)

	for i := 0; i < a.NumPaths(); i++ {
		for j := 0; j <= a.NumSteps(); j++ {
			assert.Equal(t, a.At(i, j), b.At(i, j))
		}
	}
}

func TestHestonValidation(t *testing.T) {
	base := HestonParams{Kappa: 1.0, LongVar: 0.04, VolOfVol: 0.3, Rho: -0.5, InitialVar: 0.04}

	bad := base
	bad.Rho = -1.5
	_, err := Heston(100.0, bad, 0.01, 10, 10, 1)
	assert.Error(t, err)

	bad = base
	bad.Kappa = -1.0
	_, err = Heston(100.0, bad, 0.01, 10, 10, 1)
	assert.Error(t, err)

	bad = base
	bad.InitialVar = -0.01
	_, err = Heston(100.0, bad, 0.01, 10, 10, 1)
	assert.Error(t, err)
}

func TestVasicekMeanReversionPull(t *testing.T) {
	// Zero vol: the Euler update pulls the rate toward the long-run level.
	params := VasicekParams{MeanReversion: 0.5, LongRate: 0.05, Vol: 0.0}
	set, err := Vasicek(0.01, params, 0.1, 10, 3, 5)
	require.NoError(t, err)

	prevGap := math.Abs(0.01 - 0.05)
	for j := 1; j <= set.NumSteps(); j++ {
		gap := math.Abs(set.At(0, j) - 0.05)
		assert.Less(t, gap, prevGap)
		prevGap = gap
	}
}

func TestVasicekAllowsNegativeRates(t *testing.T) {
	// High vol and a negative start: no floor is applied.
	params := VasicekParams{MeanReversion: 0.1, LongRate: -0.02, Vol: 0.05}
	set, err := Vasicek(-0.01, params, 0.25, 40, 50, 17)
	require.NoError(t, err)

	negative := false
	for i := 0; i < set.NumPaths() && !negative; i++ {
		for j := 1; j <= set.NumSteps(); j++ {
			if set.At(i, j) < 0.0 {
				negative = true
				break
			}
		}
	}
	assert.True(t, negative, "expected at least one negative simulated rate")
}

func TestHullWhiteDeterminismMatchesSeed(t *testing.T) {
	params := HullWhiteParams{MeanReversion: 0.3, LongRate: 0.03, Vol: 0.01}

	a, err := HullWhite(0.02, params, 0.05, 20, 8, 123)
	require.NoError(t, err)
	b, err := HullWhite(0.02, params, 0.05, 20, 8, 123)
	require.NoError(t, err)

	for i := 0; i < a.NumPaths(); i++ {
		for j := 0; j <= a.NumSteps(); j++ {
			assert.Equal(t, a.At(i, j), b.At(i, j))
		}
	}
}

func TestModelInterfaces(t *testing.T) {
	var spotModel SpotModel = GBMParams{Drift: 0.0, Vol: 0.1}
	set, err := spotModel.SpotPaths(10.0, 0.5, 2, 3, 9)
	require.NoError(t, err)
	assert.Equal(t, 3, set.NumPaths())

	spotModel = HestonParams{Kappa: 1, LongVar: 0.04, VolOfVol: 0.2, Rho: 0, InitialVar: 0.04}
	_, err = spotModel.SpotPaths(10.0, 0.5, 2, 3, 9)
	require.NoError(t, err)

	var rateModel RateModel = VasicekParams{MeanReversion: 0.2, LongRate: 0.03, Vol: 0.01}
	_, err = rateModel.RatePaths(0.02, 0.5, 2, 3, 9)
	require.NoError(t, err)

	rateModel = HullWhiteParams{MeanReversion: 0.2, LongRate: 0.03, Vol: 0.01}
	_, err = rateModel.RatePaths(0.02, 0.5, 2, 3, 9)
	require.NoError(t, err)
}
