package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantfold/riskengine/internal/exposure"
)

// pfeCmd represents the pfe command
var pfeCmd = &cobra.Command{
	Use:   "pfe",
	Short: "Compute scenario potential future exposure",
	Long: `Computes the PFE quantile from scenario P&L.

The input file holds one scenario P&L per row. With --by-position, the
file holds one column per position and the netting flag controls whether
positions offset each other before the exposure floor.

Example:
  go run ./cmd/riskctl pfe --input pnls.csv --confidence 0.95 --threshold 1000
  go run ./cmd/riskctl pfe --input positions.csv --by-position --netting=false`,
	RunE: runPFE,
}

var (
	pfeInput      string
	pfeConfidence float64
	pfeHorizon    float64
	pfeThreshold  float64
	pfeByPosition bool
	pfeNetting    bool
)

func init() {
	rootCmd.AddCommand(pfeCmd)

	pfeCmd.Flags().StringVar(&pfeInput, "input", "", "CSV file with scenario P&L (required)")
	pfeCmd.Flags().Float64Var(&pfeConfidence, "confidence", 0.95, "confidence level in (0, 1)")
	pfeCmd.Flags().Float64Var(&pfeHorizon, "horizon", 1.0, "horizon label in years")
	pfeCmd.Flags().Float64Var(&pfeThreshold, "threshold", 0.0, "collateral threshold subtracted before the floor")
	pfeCmd.Flags().BoolVar(&pfeByPosition, "by-position", false, "input holds one column per position")
	pfeCmd.Flags().BoolVar(&pfeNetting, "netting", true, "net positions before the exposure floor")
	pfeCmd.MarkFlagRequired("input")
}

func runPFE(cmd *cobra.Command, args []string) error {
	cfg := exposure.ScenarioConfig{
		Confidence: pfeConfidence,
		Horizon:    pfeHorizon,
		Threshold:  pfeThreshold,
		Netting:    pfeNetting,
	}

	var (
		result exposure.ScenarioPFEResult
		err    error
	)
	if pfeByPosition {
		var pnls [][]float64
		pnls, err = readCSVMatrix(pfeInput)
		if err != nil {
			return err
		}
		result, err = exposure.ScenarioPFEByPosition(pnls, cfg)
	} else {
		var pnls []float64
		pnls, err = readCSVSeries(pfeInput)
		if err != nil {
			return err
		}
		result, err = exposure.ScenarioPFE(pnls, cfg)
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
