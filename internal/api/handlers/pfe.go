package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quantfold/riskengine/internal/exposure"
)

// PFEHandler serves scenario PFE computations over submitted PnLs.
type PFEHandler struct {
	log zerolog.Logger
}

// NewPFEHandler creates a PFE handler.
func NewPFEHandler(log zerolog.Logger) *PFEHandler {
	return &PFEHandler{log: log.With().Str("component", "api.pfe").Logger()}
}

type scenarioPFERequest struct {
	PnLs           []float64   `json:"pnls,omitempty"`
	PnLsByPosition [][]float64 `json:"pnls_by_position,omitempty"`
	Confidence     float64     `json:"confidence"`
	Horizon        float64     `json:"horizon,omitempty"`
	Threshold      float64     `json:"threshold,omitempty"`
	Netting        *bool       `json:"netting,omitempty"`
}

// Scenario handles POST /api/pfe/scenario.
func (h *PFEHandler) Scenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioPFERequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Netting defaults on, matching the engine's netted-exposure default.
	netting := true
	if req.Netting != nil {
		netting = *req.Netting
	}
	cfg := exposure.ScenarioConfig{
		Confidence: req.Confidence,
		Horizon:    req.Horizon,
		Threshold:  req.Threshold,
		Netting:    netting,
	}

	var result exposure.ScenarioPFEResult
	var err error
	if len(req.PnLsByPosition) > 0 {
		result, err = exposure.ScenarioPFEByPosition(req.PnLsByPosition, cfg)
	} else {
		result, err = exposure.ScenarioPFE(req.PnLs, cfg)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.log.Debug().
		Float64("confidence", req.Confidence).
		Int("scenarios", result.NumScenarios).
		Msg("scenario pfe computed")
	writeJSON(w, http.StatusOK, result)
}
