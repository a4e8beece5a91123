package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/elchinm/attendance-gate/internal/database"
	"github.com/elchinm/attendance-gate/internal/facematch"
)

// IdentifyHandler answers "whose face is this" queries against the in-memory
// descriptor index. Unlike the attendance endpoint it needs no claimed
// identity; it is an admin tool for resolving unlabeled shots.
type IdentifyHandler struct {
	index *database.DescriptorIndex
}

// NewIdentifyHandler creates a new identify handler.
func NewIdentifyHandler(index *database.DescriptorIndex) *IdentifyHandler {
	return &IdentifyHandler{index: index}
}

type identifyRequest struct {
	Descriptor []float32 `json:"descriptor"`
	Limit      int       `json:"limit"`
}

type identifyMatch struct {
	WorkerID int64   `json:"worker_id"`
	Name     string  `json:"name"`
	Surname  string  `json:"surname"`
	Role     string  `json:"role"`
	Distance float64 `json:"distance"`
}

// Identify returns the nearest enrolled workers for a probe descriptor.
func (h *IdentifyHandler) Identify(w http.ResponseWriter, r *http.Request) {
	var req identifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Descriptor) == 0 {
		respondError(w, http.StatusBadRequest, "descriptor must be a non-empty JSON array of numbers")
		return
	}
	limit := req.Limit
	if limit <= 0 || limit > 20 {
		limit = 5
	}

	if h.index.Count() == 0 {
		respondJSON(w, http.StatusOK, map[string]any{"matches": []identifyMatch{}})
		return
	}

	matches, err := h.index.Search(req.Descriptor, limit)
	if errors.Is(err, facematch.ErrShapeMismatch) {
		respondError(w, http.StatusBadRequest, "descriptor length does not match enrolled descriptors")
		return
	}
	if err != nil {
		log.Printf("descriptor search failed: %v", err)
		respondError(w, http.StatusInternalServerError, "descriptor search failed")
		return
	}

	out := make([]identifyMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, identifyMatch{
			WorkerID: m.Worker.ID,
			Name:     m.Worker.Name,
			Surname:  m.Worker.Surname,
			Role:     m.Worker.Role,
			Distance: m.Distance,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"matches": out})
}
