// Package engine values portfolios against market states and fans a
// portfolio out across shock scenarios. Pricing itself is delegated to the
// pricing registry; the engine owns aggregation by signed quantity.
package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quantfold/riskengine/internal/instrument"
	"github.com/quantfold/riskengine/internal/market"
	"github.com/quantfold/riskengine/internal/pricing"
	"github.com/quantfold/riskengine/internal/scenario"
)

// Position pairs an instrument with a signed quantity. Negative quantity
// means short.
type Position struct {
	Instrument instrument.Instrument
	Quantity   float64
}

// Portfolio is an ordered sequence of positions. Portfolios are treated as
// immutable; Roll returns a new portfolio.
type Portfolio []Position

// Roll returns a portfolio whose positions have maturities reduced by
// horizon, floored at zero.
func (p Portfolio) Roll(horizon float64) Portfolio {
	rolled := make(Portfolio, len(p))
	for i, pos := range p {
		rolled[i] = Position{
			Instrument: instrument.Roll(pos.Instrument, horizon),
			Quantity:   pos.Quantity,
		}
	}
	return rolled
}

// PositionValue is the per-position pricing breakdown.
type PositionValue struct {
	Kind     instrument.Kind
	Quantity float64
	Price    float64
	Value    float64 // Quantity * Price
}

// PortfolioValue is the result of pricing a portfolio against one market
// state.
type PortfolioValue struct {
	Total     float64
	Positions []PositionValue
}

// ScenarioRevaluation holds the base value plus per-scenario values and
// PnLs, index-aligned with the scenario slice passed in.
type ScenarioRevaluation struct {
	Base   float64
	Names  []string
	Values []float64
	PnLs   []float64
}

// Engine prices portfolios through a pricing registry.
type Engine struct {
	registry *pricing.Registry
	log      zerolog.Logger
}

// New creates an engine around the given registry.
func New(registry *pricing.Registry, log zerolog.Logger) *Engine {
	return &Engine{
		registry: registry,
		log:      log.With().Str("component", "engine").Logger(),
	}
}

// PricePortfolio values every position against the market state and sums by
// signed quantity. Any position pricing failure aborts the whole valuation.
func (e *Engine) PricePortfolio(portfolio Portfolio, state *market.State) (PortfolioValue, error) {
	result := PortfolioValue{Positions: make([]PositionValue, 0, len(portfolio))}
	for i, pos := range portfolio {
		price, err := e.registry.Price(pos.Instrument, state)
		if err != nil {
			return PortfolioValue{}, fmt.Errorf("price position %d: %w", i, err)
		}
		value := pos.Quantity * price
		result.Positions = append(result.Positions, PositionValue{
			Kind:     pos.Instrument.Kind(),
			Quantity: pos.Quantity,
			Price:    price,
			Value:    value,
		})
		result.Total += value
	}
	return result, nil
}

// RevalueScenarios prices the portfolio under the base state and under each
// shocked state, reporting per-scenario PnL against base.
func (e *Engine) RevalueScenarios(portfolio Portfolio, state *market.State, scenarios []scenario.ShockSet) (ScenarioRevaluation, error) {
	base, err := e.PricePortfolio(portfolio, state)
	if err != nil {
		return ScenarioRevaluation{}, fmt.Errorf("base valuation: %w", err)
	}

	reval := ScenarioRevaluation{
		Base:   base.Total,
		Names:  make([]string, len(scenarios)),
		Values: make([]float64, len(scenarios)),
		PnLs:   make([]float64, len(scenarios)),
	}
	for i, set := range scenarios {
		shocked, err := scenario.Apply(state, set)
		if err != nil {
			return ScenarioRevaluation{}, fmt.Errorf("scenario %q: %w", set.Name, err)
		}
		value, err := e.PricePortfolio(portfolio, shocked)
		if err != nil {
			return ScenarioRevaluation{}, fmt.Errorf("scenario %q: %w", set.Name, err)
		}
		reval.Names[i] = set.Name
		reval.Values[i] = value.Total
		reval.PnLs[i] = value.Total - base.Total
	}

	e.log.Debug().
		Int("positions", len(portfolio)).
		Int("scenarios", len(scenarios)).
		Float64("base", base.Total).
		Msg("scenario revaluation complete")
	return reval, nil
}
