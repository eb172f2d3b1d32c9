// Package jobs holds the scheduled job implementations.
package jobs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quantfold/riskengine/internal/report"
)

// RiskSnapshotJob computes the daily VaR snapshot from the stored
// portfolio return history and persists the resulting report.
type RiskSnapshotJob struct {
	repo        *report.Repository
	reporter    *report.Reporter
	schedule    string
	lookback    int
	confidences []float64
	log         zerolog.Logger
}

// NewRiskSnapshotJob creates the snapshot job. Lookback is the number of
// most recent return observations fed into the VaR models.
func NewRiskSnapshotJob(repo *report.Repository, reporter *report.Reporter, schedule string, lookback int, confidences []float64, log zerolog.Logger) *RiskSnapshotJob {
	return &RiskSnapshotJob{
		repo:        repo,
		reporter:    reporter,
		schedule:    schedule,
		lookback:    lookback,
		confidences: confidences,
		log:         log.With().Str("component", "jobs.risk_snapshot").Logger(),
	}
}

// Name implements scheduler.Job.
func (j *RiskSnapshotJob) Name() string { return "risk_snapshot" }

// Schedule implements scheduler.Job.
func (j *RiskSnapshotJob) Schedule() string { return j.schedule }

// Run implements scheduler.Job.
func (j *RiskSnapshotJob) Run(ctx context.Context) error {
	returns, err := j.repo.LatestReturns(ctx, j.lookback)
	if err != nil {
		return fmt.Errorf("load returns: %w", err)
	}
	if len(returns) == 0 {
		return fmt.Errorf("no portfolio returns available")
	}

	rep, err := j.reporter.Run(ctx, report.Input{
		PortfolioReturns: returns,
		Confidences:      j.confidences,
		Horizon:          1,
	})
	if err != nil {
		return fmt.Errorf("risk snapshot: %w", err)
	}

	j.log.Info().
		Str("run_id", rep.RunID).
		Int("sample_count", rep.SampleCount).
		Msg("daily risk snapshot saved")
	return nil
}
