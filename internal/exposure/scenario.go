// Package exposure computes Potential Future Exposure profiles three ways:
// empirical quantiles over scenario PnLs, a closed-form lognormal
// approximation, and full Monte Carlo revaluation over simulated paths.
// Exposure is always max(value - valueAdjustment - threshold, 0).
package exposure

import (
	"fmt"

	"github.com/quantfold/riskengine/internal/engine"
	"github.com/quantfold/riskengine/internal/risk"
)

// ScenarioConfig drives the scenario-quantile PFE flavor. Horizon is a
// label carried through to the result; it does not scale anything. Netting
// only matters for by-position PnLs: when enabled, position PnLs are summed
// before flooring, otherwise only positive position parts are summed.
type ScenarioConfig struct {
	Confidence float64
	Horizon    float64
	Threshold  float64
	Netting    bool
}

// ScenarioPFEResult is the outcome of one scenario-quantile PFE.
type ScenarioPFEResult struct {
	PFE          float64
	Confidence   float64
	Horizon      float64
	Threshold    float64
	Netting      bool
	NumScenarios int
}

func validateConfidence(confidence float64) error {
	if confidence <= 0.0 || confidence >= 1.0 {
		return fmt.Errorf("confidence must be in (0, 1), got %v", confidence)
	}
	return nil
}

// ScenarioPFE computes the empirical exposure quantile over per-scenario
// portfolio PnLs for a single horizon.
func ScenarioPFE(pnls []float64, cfg ScenarioConfig) (ScenarioPFEResult, error) {
	if err := validateConfidence(cfg.Confidence); err != nil {
		return ScenarioPFEResult{}, err
	}
	if len(pnls) == 0 {
		return ScenarioPFEResult{}, fmt.Errorf("scenario pnls must contain at least one value")
	}

	exposures := make([]float64, len(pnls))
	for i, pnl := range pnls {
		exposures[i] = positivePart(pnl - cfg.Threshold)
	}
	return scenarioResult(exposures, cfg)
}

// ScenarioPFEByPosition computes scenario PFE from a (scenario, position)
// PnL matrix, honoring the netting flag.
func ScenarioPFEByPosition(pnls [][]float64, cfg ScenarioConfig) (ScenarioPFEResult, error) {
	if err := validateConfidence(cfg.Confidence); err != nil {
		return ScenarioPFEResult{}, err
	}
	if len(pnls) == 0 {
		return ScenarioPFEResult{}, fmt.Errorf("scenario pnls must contain at least one value")
	}

	numPositions := len(pnls[0])
	exposures := make([]float64, len(pnls))
	for i, row := range pnls {
		if len(row) != numPositions {
			return ScenarioPFEResult{}, fmt.Errorf("scenario pnls row %d has %d values, want %d", i, len(row), numPositions)
		}
		net := 0.0
		for _, pnl := range row {
			if cfg.Netting {
				net += pnl
			} else {
				net += positivePart(pnl)
			}
		}
		exposures[i] = positivePart(net - cfg.Threshold)
	}
	return scenarioResult(exposures, cfg)
}

func scenarioResult(exposures []float64, cfg ScenarioConfig) (ScenarioPFEResult, error) {
	q, err := risk.Quantile(exposures, cfg.Confidence)
	if err != nil {
		return ScenarioPFEResult{}, err
	}
	return ScenarioPFEResult{
		PFE:          q,
		Confidence:   cfg.Confidence,
		Horizon:      cfg.Horizon,
		Threshold:    cfg.Threshold,
		Netting:      cfg.Netting,
		NumScenarios: len(exposures),
	}, nil
}

// ProfileConfig drives the multi-horizon scenario PFE profile. When
// Thresholds is non-nil it replaces the scalar Threshold entirely, with
// absent horizons defaulting to zero.
type ProfileConfig struct {
	Confidence float64
	Threshold  float64
	Thresholds map[float64]float64
	Netting    bool
}

func (c ProfileConfig) thresholdFor(horizon float64) float64 {
	if c.Thresholds != nil {
		return c.Thresholds[horizon]
	}
	return c.Threshold
}

// ScenarioProfile computes scenario PFE per horizon from a map of horizon
// to scenario PnLs.
func ScenarioProfile(pnlsByHorizon map[float64][]float64, cfg ProfileConfig) (map[float64]ScenarioPFEResult, error) {
	if err := validateConfidence(cfg.Confidence); err != nil {
		return nil, err
	}
	results := make(map[float64]ScenarioPFEResult, len(pnlsByHorizon))
	for horizon, pnls := range pnlsByHorizon {
		r, err := ScenarioPFE(pnls, ScenarioConfig{
			Confidence: cfg.Confidence,
			Horizon:    horizon,
			Threshold:  cfg.thresholdFor(horizon),
			Netting:    cfg.Netting,
		})
		if err != nil {
			return nil, fmt.Errorf("horizon %v: %w", horizon, err)
		}
		results[horizon] = r
	}
	return results, nil
}

// FromRevaluation computes scenario PFE from a scenario revaluation's PnLs.
func FromRevaluation(reval engine.ScenarioRevaluation, cfg ScenarioConfig) (ScenarioPFEResult, error) {
	return ScenarioPFE(reval.PnLs, cfg)
}

// ProfileFromRevaluations computes a scenario PFE profile from per-horizon
// scenario revaluations.
func ProfileFromRevaluations(revalsByHorizon map[float64]engine.ScenarioRevaluation, cfg ProfileConfig) (map[float64]ScenarioPFEResult, error) {
	pnls := make(map[float64][]float64, len(revalsByHorizon))
	for horizon, reval := range revalsByHorizon {
		pnls[horizon] = reval.PnLs
	}
	return ScenarioProfile(pnls, cfg)
}

func positivePart(v float64) float64 {
	if v > 0.0 {
		return v
	}
	return 0.0
}
