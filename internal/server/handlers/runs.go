package handlers

import (
	"net/http"

	"github.com/mutantautomate/mutant"
	"github.com/mutantautomate/mutant/internal/server/response"
)

// HandleExamples handles GET /api/v1/examples.
// @Summary Preset analysis parameters
// @Tags runs
// @Produce json
// @Success 200 {object} response.Response{data=[]mutant.Example}
// @Router /examples [get].
func (h *Handlers) HandleExamples(w http.ResponseWriter, _ *http.Request) {
	type example struct {
		mutant.Params
		Label string `json:"label"`
	}
	examples := mutant.Examples()
	out := make([]example, len(examples))
	for i, e := range examples {
		out[i] = example{Params: e.Params, Label: e.Label()}
	}
	response.OK(w, out)
}

// HandleStartRun handles POST /api/v1/runs.
// @Summary Start an analysis run
// @Description Stops the current run, clears all results, and opens a new analysis stream.
// @Tags runs
// @Accept json
// @Produce json
// @Param params body mutant.Params true "Gene and substitution"
// @Success 201 {object} response.Response{data=object}
// @Failure 400 {object} response.Response{error=response.Error}
// @Router /runs [post].
func (h *Handlers) HandleStartRun(w http.ResponseWriter, r *http.Request) {
	var params mutant.Params
	if !decode(w, r, &params) {
		return
	}

	// The run outlives this request; Start keeps only the context's values.
	id, err := h.client.Start(r.Context(), params)
	if err != nil {
		fail(w, r, err)
		return
	}

	response.Created(w, map[string]any{
		"run_id": id,
		"state":  h.client.RunState(),
		"params": params,
	})
}

// HandleStopRun handles DELETE /api/v1/runs/current.
// @Summary Stop the current run
// @Tags runs
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /runs/current [delete].
func (h *Handlers) HandleStopRun(w http.ResponseWriter, _ *http.Request) {
	h.client.Stop()
	response.OK(w, map[string]any{
		"run_id": h.client.RunID(),
		"state":  h.client.RunState(),
	})
}
