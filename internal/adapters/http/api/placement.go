package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/lingua/internal/domain/placement"
)

// PlacementHandler serves POST /placement.
type PlacementHandler struct {
	deps Dependencies
	srv  *Server
}

type placementRequest struct {
	Results []placement.Score `json:"results"`
}

// HandlePlace handles POST /placement.
func (h *PlacementHandler) HandlePlace(w http.ResponseWriter, r *http.Request) {
	const op = "api.placement"
	body, err := h.srv.readBody(w, r, op)
	if err != nil {
		h.srv.writeServiceError(w, r, err)
		return
	}
	var req placementRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.srv.writeServiceError(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Place(r.Context(), req.Results)
	if err != nil {
		h.srv.writeServiceError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
