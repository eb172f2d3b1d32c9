// Package report assembles risk run records out of the VaR and exposure
// engines and persists them to Postgres.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantfold/riskengine/internal/exposure"
	"github.com/quantfold/riskengine/internal/risk"
)

// Report is one persisted risk run: a VaR set over the portfolio return
// series plus an optional scenario PFE figure.
type Report struct {
	RunID       string                      `json:"run_id"`
	ReportDate  time.Time                   `json:"report_date"`
	SampleCount int                         `json:"sample_count"`
	MeanReturn  float64                     `json:"mean_return"`
	StdDev      float64                     `json:"std_dev"`
	VaR         []risk.Result               `json:"var_results"`
	ScenarioPFE *exposure.ScenarioPFEResult `json:"scenario_pfe,omitempty"`
	GeneratedAt time.Time                   `json:"generated_at"`
}

// ToJSON renders the report for storage or API output.
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Summary renders a human-readable digest.
func (r *Report) Summary() string {
	s := fmt.Sprintf("=== Risk Report (%s) ===\n", r.ReportDate.Format("2006-01-02"))
	s += fmt.Sprintf("Run ID: %s\n", r.RunID)
	s += fmt.Sprintf("Samples: %d  mean %.6f  std %.6f\n", r.SampleCount, r.MeanReturn, r.StdDev)
	for _, v := range r.VaR {
		s += fmt.Sprintf("  %s VaR %.2f%%/%dd: %.6f  CVaR: %.6f\n",
			v.Method, v.Confidence*100, v.Horizon, v.VaR, v.CVaR)
	}
	if r.ScenarioPFE != nil {
		s += fmt.Sprintf("  Scenario PFE %.2f%%: %.6f over %d scenarios\n",
			r.ScenarioPFE.Confidence*100, r.ScenarioPFE.PFE, r.ScenarioPFE.NumScenarios)
	}
	return s
}

// Input carries the already-resolved data for one risk run. ScenarioPnLs is
// optional; when present a scenario PFE at PFEConfidence is attached.
type Input struct {
	PortfolioReturns []float64
	Confidences      []float64
	Horizon          int
	ScenarioPnLs     []float64
	PFEConfidence    float64
	PFEThreshold     float64
}

// Reporter turns run inputs into persisted reports.
type Reporter struct {
	repo *Repository
	log  zerolog.Logger
}

// NewReporter creates a reporter around the repository.
func NewReporter(repo *Repository, log zerolog.Logger) *Reporter {
	return &Reporter{
		repo: repo,
		log:  log.With().Str("component", "report").Logger(),
	}
}

// Generate computes historical and parametric VaR at every confidence
// level, plus the optional scenario PFE, without touching storage.
func (r *Reporter) Generate(input Input) (*Report, error) {
	if len(input.PortfolioReturns) == 0 {
		return nil, fmt.Errorf("portfolio returns must contain at least one value")
	}
	if len(input.Confidences) == 0 {
		return nil, fmt.Errorf("at least one confidence level is required")
	}
	horizon := input.Horizon
	if horizon <= 0 {
		horizon = 1
	}

	now := time.Now()
	report := &Report{
		RunID:       uuid.NewString(),
		ReportDate:  now,
		SampleCount: len(input.PortfolioReturns),
		MeanReturn:  risk.Mean(input.PortfolioReturns),
		StdDev:      risk.StdDev(input.PortfolioReturns),
		GeneratedAt: now,
	}

	for _, c := range input.Confidences {
		cfg := risk.Config{Confidence: c, Horizon: horizon}
		hist, err := risk.Historical(input.PortfolioReturns, cfg)
		if err != nil {
			return nil, fmt.Errorf("historical var at %v: %w", c, err)
		}
		param, err := risk.Parametric(input.PortfolioReturns, cfg)
		if err != nil {
			return nil, fmt.Errorf("parametric var at %v: %w", c, err)
		}
		report.VaR = append(report.VaR, hist, param)
	}

	if len(input.ScenarioPnLs) > 0 {
		pfe, err := exposure.ScenarioPFE(input.ScenarioPnLs, exposure.ScenarioConfig{
			Confidence: input.PFEConfidence,
			Horizon:    float64(horizon),
			Threshold:  input.PFEThreshold,
			Netting:    true,
		})
		if err != nil {
			return nil, fmt.Errorf("scenario pfe: %w", err)
		}
		report.ScenarioPFE = &pfe
	}

	r.log.Info().
		Str("run_id", report.RunID).
		Int("sample_count", report.SampleCount).
		Int("var_results", len(report.VaR)).
		Msg("risk report generated")
	return report, nil
}

// Run generates a report and persists it.
func (r *Reporter) Run(ctx context.Context, input Input) (*Report, error) {
	report, err := r.Generate(input)
	if err != nil {
		return nil, err
	}
	if err := r.repo.SaveReport(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}
