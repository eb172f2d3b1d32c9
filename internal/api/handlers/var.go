// Package handlers maps HTTP request bodies onto the risk and exposure
// engines. Bodies mirror engine inputs one to one; handlers do no
// computation of their own.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/quantfold/riskengine/internal/risk"
)

// VaRHandler serves VaR computations over submitted return series.
type VaRHandler struct {
	log zerolog.Logger
}

// NewVaRHandler creates a VaR handler.
func NewVaRHandler(log zerolog.Logger) *VaRHandler {
	return &VaRHandler{log: log.With().Str("component", "api.var").Logger()}
}

type varRequest struct {
	Returns      []float64   `json:"returns,omitempty"`
	AssetReturns [][]float64 `json:"asset_returns,omitempty"`
	Weights      []float64   `json:"weights,omitempty"`
	Confidence   float64     `json:"confidence"`
	Horizon      int         `json:"horizon"`
	Tail         string      `json:"tail,omitempty"`
	ReturnType   string      `json:"return_type,omitempty"`
	NumSims      int         `json:"num_sims,omitempty"`
	Seed         int64       `json:"seed,omitempty"`
	MCMethod     string      `json:"mc_method,omitempty"`
}

// Compute handles POST /api/var/{method}.
func (h *VaRHandler) Compute(w http.ResponseWriter, r *http.Request) {
	method := risk.Method(mux.Vars(r)["method"])

	var req varRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	returns := req.Returns
	if len(req.AssetReturns) > 0 {
		projected, err := risk.ProjectReturns(req.AssetReturns, req.Weights)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		returns = projected
	}

	cfg := risk.Config{
		Confidence: req.Confidence,
		Horizon:    req.Horizon,
		Tail:       risk.Tail(req.Tail),
		ReturnType: risk.ReturnType(req.ReturnType),
	}
	mcCfg := risk.MonteCarloConfig{
		NumSims: req.NumSims,
		Seed:    req.Seed,
		Method:  risk.MonteCarloMethod(req.MCMethod),
	}

	var result risk.Result
	var err error
	switch method {
	case risk.MethodHistorical:
		result, err = risk.Historical(returns, cfg)
	case risk.MethodParametric:
		result, err = risk.Parametric(returns, cfg)
	case risk.MethodMonteCarlo:
		result, err = risk.MonteCarlo(returns, cfg, mcCfg)
	default:
		writeError(w, http.StatusNotFound, "unknown var method")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.log.Debug().
		Str("method", string(method)).
		Float64("confidence", req.Confidence).
		Int("observations", len(returns)).
		Msg("var computed")
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
