package instrument

import "math"

// Roll returns an equivalent instrument with maturity reduced by horizon,
// floored at zero, representing the instrument's state at a future
// valuation date. Kinds without a maturity pass through unchanged.
func Roll(inst Instrument, horizon float64) Instrument {
	switch v := inst.(type) {
	case EquityForward:
		v.Maturity = math.Max(v.Maturity-horizon, 0.0)
		return v
	case EuropeanOption:
		v.Maturity = math.Max(v.Maturity-horizon, 0.0)
		return v
	case ZeroCouponBond:
		v.Maturity = math.Max(v.Maturity-horizon, 0.0)
		return v
	case FixedRateBond:
		v.Maturity = math.Max(v.Maturity-horizon, 0.0)
		return v
	default:
		return inst
	}
}
