package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/elchinm/attendance-gate/internal/attendance"
	"github.com/elchinm/attendance-gate/internal/storage"
)

// AttendanceHandler handles attendance submissions from the kiosk client.
type AttendanceHandler struct {
	service *attendance.Service
	uploads *storage.Store
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(service *attendance.Service, uploads *storage.Store) *AttendanceHandler {
	return &AttendanceHandler{service: service, uploads: uploads}
}

type attendanceResponse struct {
	EventID int64  `json:"event_id"`
	Outcome string `json:"outcome"`
	Kind    string `json:"kind"`
	Note    string `json:"note,omitempty"`
}

// Submit handles a multipart attendance submission: identity fields, the
// probe descriptor as a JSON array, and an optional camera shot.
func (h *AttendanceHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	sub := attendance.Submission{
		Name:    r.FormValue("name"),
		Surname: r.FormValue("surname"),
		Role:    r.FormValue("role"),
		Site:    r.FormValue("site"),
	}

	if raw := r.FormValue("descriptor"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sub.Descriptor); err != nil {
			respondError(w, http.StatusBadRequest, "descriptor must be a JSON array of numbers")
			return
		}
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		path, err := h.uploads.SaveEventImage(file, header.Filename)
		if err != nil {
			// The decision does not depend on the shot, keep going.
			log.Printf("failed to store event image: %v", err)
		} else {
			sub.ImagePath = path
		}
	}

	result, err := h.service.Submit(r.Context(), sub)
	if errors.Is(err, attendance.ErrMissingFields) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("attendance submission failed for %s %s: %v",
			sanitizeForLog(sub.Name), sanitizeForLog(sub.Surname), err)
		respondError(w, http.StatusInternalServerError, "failed to record attendance")
		return
	}

	respondJSON(w, http.StatusOK, attendanceResponse{
		EventID: result.EventID,
		Outcome: string(result.Outcome),
		Kind:    string(result.Kind),
		Note:    result.Note,
	})
}
