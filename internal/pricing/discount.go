package pricing

import (
	"fmt"
	"math"

	"github.com/quantfold/riskengine/internal/instrument"
	"github.com/quantfold/riskengine/internal/market"
)

// Discounting prices cash equities, forwards, and bonds by simple
// discounting. Bonds discount off the named discount curve when the market
// state carries one, otherwise off the flat risk-free rate.
type Discounting struct{}

// Price implements Pricer.
func (d Discounting) Price(inst instrument.Instrument, state *market.State) (float64, error) {
	switch v := inst.(type) {
	case instrument.EquitySpot:
		return spotFor(v.Symbol, v.Spot, state), nil
	case instrument.EquityForward:
		return d.priceForward(v, state)
	case instrument.ZeroCouponBond:
		return d.priceZeroCoupon(v, state)
	case instrument.FixedRateBond:
		return d.priceFixedRate(v, state)
	default:
		return 0, &UnsupportedKindError{Kind: inst.Kind()}
	}
}

func (d Discounting) priceForward(fwd instrument.EquityForward, state *market.State) (float64, error) {
	if fwd.Maturity < 0.0 {
		return 0, fmt.Errorf("forward maturity must be >= 0, got %v", fwd.Maturity)
	}

	rate, err := riskFreeRate(state)
	if err != nil {
		return 0, err
	}
	spot := spotFor(fwd.Symbol, fwd.Spot, state)
	dividend := dividendFor(fwd.Symbol, fwd.DividendYield, state)

	df := math.Exp(-rate * fwd.Maturity)
	forward := spot * math.Exp(-dividend*fwd.Maturity)
	return forward - fwd.Strike*df, nil
}

func (d Discounting) priceZeroCoupon(bond instrument.ZeroCouponBond, state *market.State) (float64, error) {
	if bond.Face <= 0.0 {
		return 0, fmt.Errorf("bond face must be > 0, got %v", bond.Face)
	}
	if bond.Maturity < 0.0 {
		return 0, fmt.Errorf("bond maturity must be >= 0, got %v", bond.Maturity)
	}

	df, err := discountFactor(state, bond.Maturity)
	if err != nil {
		return 0, err
	}
	return bond.Face * df, nil
}

func (d Discounting) priceFixedRate(bond instrument.FixedRateBond, state *market.State) (float64, error) {
	if bond.Face <= 0.0 {
		return 0, fmt.Errorf("bond face must be > 0, got %v", bond.Face)
	}
	if bond.CouponRate < 0.0 {
		return 0, fmt.Errorf("bond coupon rate must be >= 0, got %v", bond.CouponRate)
	}
	if bond.Maturity < 0.0 {
		return 0, fmt.Errorf("bond maturity must be >= 0, got %v", bond.Maturity)
	}
	if bond.PaymentsPerYear <= 0 {
		return 0, fmt.Errorf("bond payments per year must be > 0, got %d", bond.PaymentsPerYear)
	}

	periods := bond.Maturity * float64(bond.PaymentsPerYear)
	periodsInt := int(math.Round(periods))
	if math.Abs(periods-float64(periodsInt)) > 1e-8 {
		return 0, fmt.Errorf("bond maturity %v does not align with %d payments per year", bond.Maturity, bond.PaymentsPerYear)
	}

	coupon := bond.Face * bond.CouponRate / float64(bond.PaymentsPerYear)
	price := 0.0
	for i := 1; i <= periodsInt; i++ {
		t := float64(i) / float64(bond.PaymentsPerYear)
		df, err := discountFactor(state, t)
		if err != nil {
			return 0, err
		}
		price += coupon * df
	}

	df, err := discountFactor(state, bond.Maturity)
	if err != nil {
		return 0, err
	}
	return price + bond.Face*df, nil
}

func discountFactor(state *market.State, t float64) (float64, error) {
	if curve, ok := state.Curve(market.CurveDiscount); ok {
		return curve.DF(t), nil
	}
	rate, err := riskFreeRate(state)
	if err != nil {
		return 0, err
	}
	return math.Exp(-rate * t), nil
}
