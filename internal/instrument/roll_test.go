package instrument

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollForward(t *testing.T) {
	fwd := EquityForward{Spot: 100, Strike: 105, Maturity: 2.0, Rate: 0.03, Symbol: "AAPL"}

	rolled := Roll(fwd, 0.5).(EquityForward)
	assert.Equal(t, 1.5, rolled.Maturity)

	// Everything but maturity is preserved.
	assert.Equal(t, fwd.Spot, rolled.Spot)
	assert.Equal(t, fwd.Strike, rolled.Strike)
	assert.Equal(t, fwd.Symbol, rolled.Symbol)

	// Original untouched.
	assert.Equal(t, 2.0, fwd.Maturity)
}

func TestRollFloorsAtZero(t *testing.T) {
	opt := EuropeanOption{Spot: 100, Strike: 100, Maturity: 0.25, Rate: 0.01, Vol: 0.2, Type: OptionCall}

	rolled := Roll(opt, 1.0).(EuropeanOption)
	assert.Equal(t, 0.0, rolled.Maturity)
}

func TestRollBonds(t *testing.T) {
	zcb := Roll(ZeroCouponBond{Face: 1000, Maturity: 5.0}, 1.0).(ZeroCouponBond)
	assert.Equal(t, 4.0, zcb.Maturity)

	frb := Roll(FixedRateBond{Face: 1000, CouponRate: 0.04, Maturity: 3.0, PaymentsPerYear: 2}, 0.5).(FixedRateBond)
	assert.Equal(t, 2.5, frb.Maturity)
}

func TestRollPassThrough(t *testing.T) {
	spot := EquitySpot{Spot: 50, Symbol: "MSFT"}
	assert.Equal(t, spot, Roll(spot, 1.0))
}
