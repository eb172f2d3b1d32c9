// Package pricing maps instrument kinds to pricing strategies. Adding an
// instrument kind means registering a new Pricer, not editing a central
// conditional.
package pricing

import (
	"errors"
	"fmt"

	"github.com/quantfold/riskengine/internal/instrument"
	"github.com/quantfold/riskengine/internal/market"
)

// ErrMissingRiskFreeRate reports a pricing attempt against a market state
// without the required risk-free rate factor.
var ErrMissingRiskFreeRate = errors.New("market state missing risk-free rate factor")

// UnsupportedKindError reports an instrument kind with no registered pricer.
type UnsupportedKindError struct {
	Kind instrument.Kind
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("no pricer registered for instrument kind %q", e.Kind)
}

// Pricer values an instrument against a market state.
type Pricer interface {
	Price(inst instrument.Instrument, state *market.State) (float64, error)
}

// Registry dispatches pricing by instrument kind.
type Registry struct {
	pricers map[instrument.Kind]Pricer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pricers: make(map[instrument.Kind]Pricer)}
}

// NewDefaultRegistry creates a registry with every built-in pricer wired.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	bs := BlackScholes{}
	disc := Discounting{}
	r.Register(instrument.KindEquitySpot, disc)
	r.Register(instrument.KindEquityForward, disc)
	r.Register(instrument.KindZeroCouponBond, disc)
	r.Register(instrument.KindFixedRateBond, disc)
	r.Register(instrument.KindEuropeanOption, bs)
	return r
}

// Register binds a pricer to an instrument kind, replacing any previous
// binding.
func (r *Registry) Register(kind instrument.Kind, p Pricer) {
	r.pricers[kind] = p
}

// Price dispatches to the pricer registered for the instrument's kind.
func (r *Registry) Price(inst instrument.Instrument, state *market.State) (float64, error) {
	p, ok := r.pricers[inst.Kind()]
	if !ok {
		return 0, &UnsupportedKindError{Kind: inst.Kind()}
	}
	return p.Price(inst, state)
}

// Input resolution: market-state overrides keyed by symbol win over values
// embedded in the instrument.

func spotFor(symbol string, embedded float64, state *market.State) float64 {
	if symbol != "" {
		if v, ok := state.Lookup(market.SpotKey(symbol)); ok {
			return v
		}
	}
	return embedded
}

func volFor(symbol string, embedded float64, state *market.State) float64 {
	if symbol != "" {
		if v, ok := state.Lookup(market.VolKey(symbol)); ok {
			return v
		}
	}
	return embedded
}

func dividendFor(symbol string, embedded float64, state *market.State) float64 {
	if symbol != "" {
		if v, ok := state.Lookup(market.DividendKey(symbol)); ok {
			return v
		}
	}
	return embedded
}

func riskFreeRate(state *market.State) (float64, error) {
	v, ok := state.Lookup(market.KeyRiskFreeRate)
	if !ok {
		return 0, ErrMissingRiskFreeRate
	}
	return v, nil
}
