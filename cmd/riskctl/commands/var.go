package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantfold/riskengine/internal/risk"
)

// varCmd represents the var command
var varCmd = &cobra.Command{
	Use:   "var",
	Short: "Compute Value-at-Risk from a return series",
	Long: `Computes VaR and expected shortfall from a CSV return series.

The input file holds one return per row. With --weights, the file holds
one column per asset and observations are projected onto the portfolio
before the VaR model runs.

Methods:
  historical   - empirical quantile of the observed returns
  parametric   - Gaussian delta-normal from sample mean and std
  monte_carlo  - simulated returns (normal or bootstrap resampling)

Example:
  go run ./cmd/riskctl var --input returns.csv --method historical --confidence 0.99
  go run ./cmd/riskctl var --input assets.csv --weights 0.6,0.4 --method parametric
  go run ./cmd/riskctl var --input returns.csv --method monte_carlo --num-sims 100000 --seed 42`,
	RunE: runVaR,
}

var (
	varInput      string
	varMethod     string
	varConfidence float64
	varHorizon    int
	varTail       string
	varReturnType string
	varWeights    []float64
	varNumSims    int
	varSeed       int64
	varMCMethod   string
)

func init() {
	rootCmd.AddCommand(varCmd)

	varCmd.Flags().StringVar(&varInput, "input", "", "CSV file with returns (required)")
	varCmd.Flags().StringVar(&varMethod, "method", "historical", "VaR method (historical|parametric|monte_carlo)")
	varCmd.Flags().Float64Var(&varConfidence, "confidence", 0.95, "confidence level in (0, 1)")
	varCmd.Flags().IntVar(&varHorizon, "horizon", 1, "horizon in periods")
	varCmd.Flags().StringVar(&varTail, "tail", "left", "distribution tail (left|right)")
	varCmd.Flags().StringVar(&varReturnType, "return-type", "simple", "return compounding (simple|log)")
	varCmd.Flags().Float64SliceVar(&varWeights, "weights", nil, "portfolio weights for multi-asset input")
	varCmd.Flags().IntVar(&varNumSims, "num-sims", 10000, "Monte Carlo simulation count")
	varCmd.Flags().Int64Var(&varSeed, "seed", 0, "Monte Carlo seed (0 = entropy)")
	varCmd.Flags().StringVar(&varMCMethod, "mc-method", "normal", "Monte Carlo scheme (normal|bootstrap)")
	varCmd.MarkFlagRequired("input")
}

func runVaR(cmd *cobra.Command, args []string) error {
	returns, err := loadReturns()
	if err != nil {
		return err
	}

	cfg := risk.Config{
		Confidence: varConfidence,
		Horizon:    varHorizon,
		Tail:       risk.Tail(varTail),
		ReturnType: risk.ReturnType(varReturnType),
	}
	mc := risk.MonteCarloConfig{
		NumSims: varNumSims,
		Seed:    varSeed,
		Method:  risk.MonteCarloMethod(varMCMethod),
	}

	var result risk.Result
	switch risk.Method(varMethod) {
	case risk.MethodHistorical:
		result, err = risk.Historical(returns, cfg)
	case risk.MethodParametric:
		result, err = risk.Parametric(returns, cfg)
	case risk.MethodMonteCarlo:
		result, err = risk.MonteCarlo(returns, cfg, mc)
	default:
		return fmt.Errorf("unknown method %q", varMethod)
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// loadReturns reads the input series, projecting multi-asset observations
// onto the portfolio when weights are given.
func loadReturns() ([]float64, error) {
	if len(varWeights) > 0 {
		assetReturns, err := readCSVMatrix(varInput)
		if err != nil {
			return nil, err
		}
		return risk.ProjectReturns(assetReturns, varWeights)
	}
	return readCSVSeries(varInput)
}
