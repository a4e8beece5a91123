package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/elchinm/attendance-gate/internal/database"
	"github.com/elchinm/attendance-gate/internal/storage"
)

// EventsHandler handles the admin attendance log endpoints.
type EventsHandler struct {
	events  database.EventStore
	uploads *storage.Store
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(events database.EventStore, uploads *storage.Store) *EventsHandler {
	return &EventsHandler{events: events, uploads: uploads}
}

type eventResponse struct {
	ID        int64     `json:"id"`
	WorkerID  *int64    `json:"worker_id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Role      string    `json:"role"`
	Site      string    `json:"site"`
	Kind      string    `json:"kind"`
	Outcome   string    `json:"outcome"`
	Note      string    `json:"note,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *EventsHandler) eventToResponse(e database.AttendanceEvent) eventResponse {
	resp := eventResponse{
		ID:        e.ID,
		WorkerID:  e.WorkerID,
		Name:      e.Name,
		Surname:   e.Surname,
		Role:      e.Role,
		Site:      e.Site,
		Kind:      string(e.Kind),
		Outcome:   string(e.Outcome),
		Note:      e.Note,
		CreatedAt: e.CreatedAt,
	}
	if e.ImagePath != "" && h.uploads != nil {
		resp.ImageURL = h.uploads.WebPath(e.ImagePath)
	}
	return resp
}

// List returns the latest events, newest first.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50, 500)

	events, err := h.events.ListRecent(r.Context(), limit)
	if err != nil {
		log.Printf("failed to list events: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, h.eventToResponse(e))
	}
	respondJSON(w, http.StatusOK, map[string]any{"events": out})
}

// Delete removes an event from the log.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	err := h.events.Delete(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		log.Printf("failed to delete event %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
