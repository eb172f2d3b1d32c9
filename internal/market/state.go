// Package market holds the immutable market state consumed by pricing,
// revaluation, and risk measures. A State is built once per valuation date;
// every "update" returns a new State.
package market

import (
	"fmt"
	"sort"
)

// Factor key conventions. Symbol-keyed overrides (spot/vol/dividend per
// symbol) take precedence over instrument-embedded defaults during pricing.
const (
	// KeyRiskFreeRate is the flat risk-free rate factor required by
	// forward and option pricing.
	KeyRiskFreeRate = "RATE.RISK_FREE"

	// CurveDiscount names the optional discount curve used by bond pricing
	// in place of the flat rate.
	CurveDiscount = "discount"
)

// SpotKey returns the factor key for a symbol's spot level.
func SpotKey(symbol string) string { return "SPOT." + symbol }

// VolKey returns the factor key for a symbol's volatility.
func VolKey(symbol string) string { return "VOL." + symbol }

// DividendKey returns the factor key for a symbol's dividend yield.
func DividendKey(symbol string) string { return "DIV." + symbol }

// DiscountCurve supplies discount factors by time in years.
type DiscountCurve interface {
	DF(t float64) float64
}

// FactorNotFoundError reports a lookup for an absent risk factor.
type FactorNotFoundError struct {
	Key string
}

func (e *FactorNotFoundError) Error() string {
	return fmt.Sprintf("market factor not found: %q", e.Key)
}

// State is an immutable mapping from risk-factor keys to levels, plus
// optional named discount curves. The zero value is not usable; construct
// with New or NewWithCurves.
type State struct {
	factors map[string]float64
	curves  map[string]DiscountCurve
}

// New builds a State from a factor map. The input map is copied.
func New(factors map[string]float64) *State {
	return NewWithCurves(factors, nil)
}

// NewWithCurves builds a State from a factor map and named curves.
// Both inputs are copied.
func NewWithCurves(factors map[string]float64, curves map[string]DiscountCurve) *State {
	f := make(map[string]float64, len(factors))
	for k, v := range factors {
		f[k] = v
	}
	var c map[string]DiscountCurve
	if len(curves) > 0 {
		c = make(map[string]DiscountCurve, len(curves))
		for k, v := range curves {
			c[k] = v
		}
	}
	return &State{factors: f, curves: c}
}

// Get returns the level for key, failing loudly when absent.
func (s *State) Get(key string) (float64, error) {
	v, ok := s.factors[key]
	if !ok {
		return 0, &FactorNotFoundError{Key: key}
	}
	return v, nil
}

// Lookup returns the level for key and whether it is present.
func (s *State) Lookup(key string) (float64, bool) {
	v, ok := s.factors[key]
	return v, ok
}

// Has reports whether key is present.
func (s *State) Has(key string) bool {
	_, ok := s.factors[key]
	return ok
}

// Curve returns the named discount curve, if registered.
func (s *State) Curve(name string) (DiscountCurve, bool) {
	c, ok := s.curves[name]
	return c, ok
}

// WithFactors returns a new State with updates applied over the existing
// factors. The receiver is never modified; unshocked keys pass through.
func (s *State) WithFactors(updates map[string]float64) *State {
	f := make(map[string]float64, len(s.factors)+len(updates))
	for k, v := range s.factors {
		f[k] = v
	}
	for k, v := range updates {
		f[k] = v
	}
	return &State{factors: f, curves: s.curves}
}

// Keys returns all factor keys in sorted order.
func (s *State) Keys() []string {
	keys := make([]string, 0, len(s.factors))
	for k := range s.factors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of factors.
func (s *State) Len() int {
	return len(s.factors)
}

// KeysWithPrefix returns sorted factor keys sharing a prefix, e.g. all
// "DIV." entries.
func (s *State) KeysWithPrefix(prefix string) []string {
	var keys []string
	for k := range s.factors {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
