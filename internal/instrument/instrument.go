// Package instrument defines the instrument variants the pricing registry
// dispatches over. Instruments are plain immutable value types; pricing
// lives in internal/pricing.
package instrument

// Kind identifies an instrument variant for registry dispatch.
type Kind string

const (
	KindEquitySpot     Kind = "equity_spot"
	KindEquityForward  Kind = "equity_forward"
	KindEuropeanOption Kind = "european_option"
	KindZeroCouponBond Kind = "zero_coupon_bond"
	KindFixedRateBond  Kind = "fixed_rate_bond"
)

// Instrument is implemented by every instrument variant.
type Instrument interface {
	Kind() Kind
}

// OptionType distinguishes calls from puts.
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
)

// EquitySpot is a cash equity position at the current spot level.
type EquitySpot struct {
	Spot   float64
	Symbol string
}

func (EquitySpot) Kind() Kind { return KindEquitySpot }

// EquityForward is an equity forward contract with carry inputs. Embedded
// spot/rate/dividend act as defaults when the market state carries no
// symbol-keyed override.
type EquityForward struct {
	Spot          float64
	Strike        float64
	Maturity      float64 // years
	Rate          float64
	DividendYield float64
	Symbol        string
}

func (EquityForward) Kind() Kind { return KindEquityForward }

// EuropeanOption is a vanilla European option with Black-Scholes inputs.
type EuropeanOption struct {
	Spot     float64
	Strike   float64
	Maturity float64 // years
	Rate     float64
	Vol      float64
	Type     OptionType
	Symbol   string
}

func (EuropeanOption) Kind() Kind { return KindEuropeanOption }

// ZeroCouponBond pays face at maturity.
type ZeroCouponBond struct {
	Face     float64
	Maturity float64 // years
}

func (ZeroCouponBond) Kind() Kind { return KindZeroCouponBond }

// FixedRateBond pays periodic coupons plus face at maturity.
type FixedRateBond struct {
	Face            float64
	CouponRate      float64
	Maturity        float64 // years
	PaymentsPerYear int
}

func (FixedRateBond) Kind() Kind { return KindFixedRateBond }
