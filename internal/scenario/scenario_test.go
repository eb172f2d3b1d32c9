package scenario

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/riskengine/internal/market"
)

func baseState() *market.State {
	return market.New(map[string]float64{
		market.SpotKey("AAPL"): 100.0,
		market.VolKey("AAPL"):  0.25,
		market.KeyRiskFreeRate: 0.02,
	})
}

func TestApplyEmptySetIdempotent(t *testing.T) {
	state := baseState()

	shocked, err := Apply(state, ShockSet{Name: "noop"})
	require.NoError(t, err)

	// Same factor values, distinct object.
	assert.NotSame(t, state, shocked)
	assert.Equal(t, state.Keys(), shocked.Keys())
	for _, key := range state.Keys() {
		want, _ := state.Lookup(key)
		got, _ := shocked.Lookup(key)
		assert.Equal(t, want, got, key)
	}
}

func TestApplyAbsolute(t *testing.T) {
	state := baseState()

	shocked, err := Apply(state, Absolute("rates_up", map[string]float64{
		market.KeyRiskFreeRate: 0.01,
	}))
	require.NoError(t, err)

	v, err := shocked.Get(market.KeyRiskFreeRate)
	require.NoError(t, err)
	assert.InDelta(t, 0.03, v, 1e-15)

	// Unshocked keys pass through.
	v, err = shocked.Get(market.SpotKey("AAPL"))
	require.NoError(t, err)
	assert.Equal(t, 100.0, v)
}

func TestApplyRelative(t *testing.T) {
	state := baseState()

	shocked, err := Apply(state, Relative("spot_down", map[string]float64{
		market.SpotKey("AAPL"): -0.10,
	}))
	require.NoError(t, err)

	v, err := shocked.Get(market.SpotKey("AAPL"))
	require.NoError(t, err)
	assert.InDelta(t, 90.0, v, 1e-12)
}

func TestApplyIntroducesNewFactor(t *testing.T) {
	state := baseState()

	shocked, err := Apply(state, Absolute("add_div", map[string]float64{
		market.DividendKey("AAPL"): 0.015,
	}))
	require.NoError(t, err)

	v, err := shocked.Get(market.DividendKey("AAPL"))
	require.NoError(t, err)
	assert.Equal(t, 0.015, v)
}

func TestApplyDuplicateKeyLastWriteWins(t *testing.T) {
	state := baseState()

	set := ShockSet{
		Name: "dup",
		Shocks: []Shock{
			{Key: market.SpotKey("AAPL"), Type: ShockAbsolute, Value: 5.0},
			{Key: market.SpotKey("AAPL"), Type: ShockAbsolute, Value: 1.0},
		},
	}

	shocked, err := Apply(state, set)
	require.NoError(t, err)

	// Each shock reads the base level fresh; the later shock wins.
	v, err := shocked.Get(market.SpotKey("AAPL"))
	require.NoError(t, err)
	assert.Equal(t, 101.0, v)
}

func TestApplyUnknownType(t *testing.T) {
	state := baseState()

	set := ShockSet{Shocks: []Shock{{Key: market.SpotKey("AAPL"), Type: "bump", Value: 1.0}}}

	_, err := Apply(state, set)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownShockType))
}

func TestConcat(t *testing.T) {
	a := Absolute("rates", map[string]float64{market.KeyRiskFreeRate: 0.01})
	b := Relative("spots", map[string]float64{market.SpotKey("AAPL"): 0.05})

	combined := a.Concat(b)
	assert.Len(t, combined.Shocks, 2)
	assert.Equal(t, "rates", combined.Name)

	// Inputs untouched.
	assert.Len(t, a.Shocks, 1)
	assert.Len(t, b.Shocks, 1)
}

func TestConstructorsSortKeys(t *testing.T) {
	set := Absolute("s", map[string]float64{"b": 2.0, "a": 1.0, "c": 3.0})

	keys := make([]string, 0, len(set.Shocks))
	for _, sh := range set.Shocks {
		keys = append(keys, sh.Key)
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}
