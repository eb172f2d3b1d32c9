package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles risk report persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a report repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveReport upserts a report keyed by run ID.
func (r *Repository) SaveReport(ctx context.Context, report *Report) error {
	varJSON, err := json.Marshal(report.VaR)
	if err != nil {
		return fmt.Errorf("failed to marshal var results: %w", err)
	}
	var pfeJSON []byte
	if report.ScenarioPFE != nil {
		pfeJSON, err = json.Marshal(report.ScenarioPFE)
		if err != nil {
			return fmt.Errorf("failed to marshal scenario pfe: %w", err)
		}
	}

	query := `
		INSERT INTO risk.reports (
			run_id, report_date, sample_count, mean_return, std_dev,
			var_results, scenario_pfe, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO UPDATE SET
			sample_count = EXCLUDED.sample_count,
			mean_return = EXCLUDED.mean_return,
			std_dev = EXCLUDED.std_dev,
			var_results = EXCLUDED.var_results,
			scenario_pfe = EXCLUDED.scenario_pfe,
			generated_at = EXCLUDED.generated_at
	`

	_, err = r.pool.Exec(ctx, query,
		report.RunID, report.ReportDate, report.SampleCount,
		report.MeanReturn, report.StdDev, varJSON, pfeJSON, report.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetReport retrieves a report by run ID.
func (r *Repository) GetReport(ctx context.Context, runID string) (*Report, error) {
	query := `
		SELECT run_id, report_date, sample_count, mean_return, std_dev,
		       var_results, scenario_pfe, generated_at
		FROM risk.reports
		WHERE run_id = $1
	`

	var report Report
	var varJSON, pfeJSON []byte

	err := r.pool.QueryRow(ctx, query, runID).Scan(
		&report.RunID, &report.ReportDate, &report.SampleCount,
		&report.MeanReturn, &report.StdDev, &varJSON, &pfeJSON, &report.GeneratedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("report not found for run %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	if err := json.Unmarshal(varJSON, &report.VaR); err != nil {
		return nil, fmt.Errorf("failed to unmarshal var results: %w", err)
	}
	if len(pfeJSON) > 0 {
		if err := json.Unmarshal(pfeJSON, &report.ScenarioPFE); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scenario pfe: %w", err)
		}
	}
	return &report, nil
}

// SaveReturn records one daily portfolio return.
func (r *Repository) SaveReturn(ctx context.Context, date time.Time, value float64) error {
	query := `
		INSERT INTO risk.portfolio_returns (date, return)
		VALUES ($1, $2)
		ON CONFLICT (date) DO UPDATE SET return = EXCLUDED.return
	`
	if _, err := r.pool.Exec(ctx, query, date, value); err != nil {
		return fmt.Errorf("failed to save return: %w", err)
	}
	return nil
}

// LatestReturns retrieves the most recent portfolio returns in
// chronological order, up to lookback observations.
func (r *Repository) LatestReturns(ctx context.Context, lookback int) ([]float64, error) {
	query := `
		SELECT return FROM (
			SELECT date, return
			FROM risk.portfolio_returns
			ORDER BY date DESC
			LIMIT $1
		) recent
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, lookback)
	if err != nil {
		return nil, fmt.Errorf("failed to query returns: %w", err)
	}
	defer rows.Close()

	var returns []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan return: %w", err)
		}
		returns = append(returns, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read returns: %w", err)
	}
	return returns, nil
}
