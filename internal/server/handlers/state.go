package handlers

import (
	"net/http"

	"github.com/mutantautomate/mutant/internal/server/response"
	"github.com/mutantautomate/mutant/pkg/events"
	"github.com/mutantautomate/mutant/pkg/structure"
)

// HandleState handles GET /api/v1/state.
// @Summary Current client state
// @Tags state
// @Produce json
// @Success 200 {object} response.Response{data=mutant.Status}
// @Router /state [get].
func (h *Handlers) HandleState(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, h.client.Status())
}

// HandleEvents handles GET /api/v1/events.
// @Summary Event log of the current run
// @Tags state
// @Produce json
// @Success 200 {object} response.Response{data=[]object}
// @Router /events [get].
func (h *Handlers) HandleEvents(w http.ResponseWriter, _ *http.Request) {
	type entry struct {
		Kind  events.Kind  `json:"kind"`
		Event events.Event `json:"event"`
	}
	evs := h.client.Events()
	out := make([]entry, len(evs))
	for i, e := range evs {
		out[i] = entry{Kind: e.Kind(), Event: e}
	}
	response.OK(w, out)
}

// HandleBlob handles GET /api/v1/blobs/{kind}.
// @Summary Structure text
// @Tags state
// @Produce chemical/x-pdb
// @Param kind path string true "raw, trimmed or mutated"
// @Success 200 {string} string
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /blobs/{kind} [get].
func (h *Handlers) HandleBlob(w http.ResponseWriter, r *http.Request) {
	kind, ok := structure.ParseKind(r.PathValue("kind"))
	if !ok {
		response.BadRequest(w, "Unknown structure kind", "expected one of raw, trimmed, mutated")
		return
	}

	content := h.client.Blob(kind)
	if content == "" {
		response.NotFound(w, "No "+string(kind)+" structure loaded", "")
		return
	}
	response.Text(w, "chemical/x-pdb", content)
}

// HandleSequence handles GET /api/v1/sequence.
// @Summary Viewer sequence
// @Tags state
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /sequence [get].
func (h *Handlers) HandleSequence(w http.ResponseWriter, _ *http.Request) {
	residues := h.client.Sequence()
	response.OK(w, map[string]any{
		"sequence": residues,
		"length":   len(residues),
	})
}
