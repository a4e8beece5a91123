package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/elchinm/attendance-gate/internal/database"
	"github.com/elchinm/attendance-gate/internal/subscription"
)

// AllowListHandler handles the admin phone allow-list endpoints.
type AllowListHandler struct {
	registry  *subscription.Registry
	allowList database.AllowListStore
}

// NewAllowListHandler creates a new allow-list handler.
func NewAllowListHandler(registry *subscription.Registry, allowList database.AllowListStore) *AllowListHandler {
	return &AllowListHandler{registry: registry, allowList: allowList}
}

type allowedPhoneResponse struct {
	ID        int64     `json:"id"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns allow-list entries, newest first.
func (h *AllowListHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 100, 1000)

	entries, err := h.allowList.List(r.Context(), limit)
	if err != nil {
		log.Printf("failed to list allowed phones: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list allowed phones")
		return
	}

	out := make([]allowedPhoneResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, allowedPhoneResponse{ID: e.ID, Phone: e.Phone, CreatedAt: e.CreatedAt})
	}
	respondJSON(w, http.StatusOK, map[string]any{"phones": out})
}

type addPhoneRequest struct {
	Phone string `json:"phone"`
}

// Add normalizes and allow-lists a phone number.
func (h *AllowListHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addPhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	id, normalized, err := h.registry.RegisterAllowedPhone(r.Context(), req.Phone)
	if errors.Is(err, subscription.ErrUnusablePhone) {
		respondError(w, http.StatusBadRequest, "phone number is not usable")
		return
	}
	if errors.Is(err, database.ErrDuplicate) {
		respondError(w, http.StatusConflict, "phone is already allow-listed")
		return
	}
	if err != nil {
		log.Printf("failed to allow-list phone: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to allow-list phone")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "phone": normalized})
}

// Remove deletes an allow-list entry. Existing subscriptions are untouched;
// the allow-list only gates new opt-ins.
func (h *AllowListHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	err := h.allowList.Remove(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "entry not found")
		return
	}
	if err != nil {
		log.Printf("failed to remove allowed phone %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to remove allowed phone")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
