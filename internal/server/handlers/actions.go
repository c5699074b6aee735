package handlers

import (
	"net/http"
	"strings"

	"github.com/mutantautomate/mutant/internal/server/response"
	"github.com/mutantautomate/mutant/pkg/errors"
)

func isoform(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		response.ErrorFromType(w, errors.NewValidationError("isoform", id, "must not be empty"))
		return "", false
	}
	return id, true
}

// HandleFetchSequence handles POST /api/v1/isoforms/{id}/sequence.
// @Summary Load an isoform sequence into the viewer
// @Tags actions
// @Produce json
// @Param id path string true "UniProt isoform accession"
// @Success 200 {object} response.Response{data=object}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /isoforms/{id}/sequence [post].
func (h *Handlers) HandleFetchSequence(w http.ResponseWriter, r *http.Request) {
	iso, ok := isoform(w, r)
	if !ok {
		return
	}

	residues, err := h.client.FetchSequence(r.Context(), iso)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, map[string]any{"isoform": iso, "sequence": residues, "length": len(residues)})
}

// StructureRequest is the body of a structure fetch.
type StructureRequest struct {
	PDBID  string `json:"pdb_id"`
	Chains string `json:"chains,omitempty"`
}

// HandleFetchStructure handles POST /api/v1/isoforms/{id}/structure.
// @Summary Load an experimental structure and trim it
// @Tags actions
// @Accept json
// @Produce json
// @Param id path string true "UniProt isoform accession"
// @Param request body StructureRequest true "Structure id and chain specification"
// @Success 200 {object} response.Response{data=object}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 502 {object} response.Response{error=response.Error}
// @Router /isoforms/{id}/structure [post].
func (h *Handlers) HandleFetchStructure(w http.ResponseWriter, r *http.Request) {
	iso, ok := isoform(w, r)
	if !ok {
		return
	}
	var req StructureRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PDBID == "" {
		response.ErrorFromType(w, errors.NewValidationError("pdb_id", req.PDBID, "must not be empty"))
		return
	}

	blobs, err := h.client.FetchStructure(r.Context(), iso, req.PDBID, req.Chains)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, map[string]any{
		"isoform":      iso,
		"pdb_id":       req.PDBID,
		"raw_size":     len(blobs.Raw),
		"trimmed_size": len(blobs.Trimmed),
	})
}

// HandleLoadPrediction handles POST /api/v1/isoforms/{id}/prediction.
// @Summary Load the predicted structure of an isoform
// @Tags actions
// @Produce json
// @Param id path string true "UniProt isoform accession"
// @Success 200 {object} response.Response{data=object}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /isoforms/{id}/prediction [post].
func (h *Handlers) HandleLoadPrediction(w http.ResponseWriter, r *http.Request) {
	iso, ok := isoform(w, r)
	if !ok {
		return
	}

	blobs, err := h.client.LoadPrediction(r.Context(), iso)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, map[string]any{
		"isoform":      iso,
		"raw_size":     len(blobs.Raw),
		"trimmed_size": len(blobs.Trimmed),
	})
}

// HandleMutate handles POST /api/v1/mutate.
// @Summary Mutate the trimmed structure
// @Tags actions
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Failure 409 {object} response.Response{error=response.Error} "a mutation is already running"
// @Failure 412 {object} response.Response{error=response.Error} "no trimmed structure loaded"
// @Router /mutate [post].
func (h *Handlers) HandleMutate(w http.ResponseWriter, r *http.Request) {
	mutated, err := h.client.Mutate(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, map[string]any{"mutated_size": len(mutated)})
}

// ZoomRequest is the body of a zoom.
type ZoomRequest struct {
	Position int `json:"position"`
}

// HandleZoom handles POST /api/v1/zoom.
// @Summary Highlight a residue in every viewer
// @Description Without a position the run's position is used. Viewers without a model are skipped.
// @Tags actions
// @Accept json
// @Produce json
// @Param request body ZoomRequest false "Residue position"
// @Success 200 {object} response.Response{data=object}
// @Router /zoom [post].
func (h *Handlers) HandleZoom(w http.ResponseWriter, r *http.Request) {
	var req ZoomRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Position == 0 {
		if params, ok := h.client.Params(); ok {
			req.Position = params.Position
		}
	}

	h.client.ZoomTo(req.Position)
	response.OK(w, map[string]any{"position": req.Position})
}
