package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/elchinm/attendance-gate/internal/database"
	"github.com/elchinm/attendance-gate/internal/storage"
)

// WorkersHandler handles the admin worker management endpoints.
type WorkersHandler struct {
	workers database.WorkerStore
	uploads *storage.Store
	index   *database.DescriptorIndex
}

// NewWorkersHandler creates a new workers handler.
func NewWorkersHandler(workers database.WorkerStore, uploads *storage.Store, index *database.DescriptorIndex) *WorkersHandler {
	return &WorkersHandler{workers: workers, uploads: uploads, index: index}
}

type workerResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	Enrolled     bool      `json:"enrolled"`
	RefImageURL  string    `json:"ref_image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (h *WorkersHandler) workerToResponse(w database.Worker) workerResponse {
	resp := workerResponse{
		ID:        w.ID,
		Name:      w.Name,
		Surname:   w.Surname,
		Role:      w.Role,
		Active:    w.Active,
		Enrolled:  w.Enrolled(),
		CreatedAt: w.CreatedAt,
	}
	if w.RefImagePath != "" && h.uploads != nil {
		resp.RefImageURL = h.uploads.WebPath(w.RefImagePath)
	}
	return resp
}

// List returns workers, newest first.
func (h *WorkersHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 100, 1000)

	workers, err := h.workers.List(r.Context(), limit)
	if err != nil {
		log.Printf("failed to list workers: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list workers")
		return
	}

	out := make([]workerResponse, 0, len(workers))
	for _, worker := range workers {
		out = append(out, h.workerToResponse(worker))
	}
	respondJSON(w, http.StatusOK, map[string]any{"workers": out})
}

type createWorkerRequest struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Role    string `json:"role"`
}

// Create registers a new worker without a reference image.
func (h *WorkersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name == "" || req.Surname == "" || req.Role == "" {
		respondError(w, http.StatusBadRequest, "name, surname and role are required")
		return
	}

	id, err := h.workers.Create(r.Context(), req.Name, req.Surname, req.Role)
	if errors.Is(err, database.ErrDuplicate) {
		respondError(w, http.StatusConflict, "worker with this identity already exists")
		return
	}
	if err != nil {
		log.Printf("failed to create worker %s %s: %v", sanitizeForLog(req.Name), sanitizeForLog(req.Surname), err)
		respondError(w, http.StatusInternalServerError, "failed to create worker")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// Get returns one worker.
func (h *WorkersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid worker id")
		return
	}

	worker, err := h.workers.Get(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "worker not found")
		return
	}
	if err != nil {
		log.Printf("failed to get worker %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to get worker")
		return
	}
	respondJSON(w, http.StatusOK, h.workerToResponse(*worker))
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// SetActive toggles a worker's active flag.
func (h *WorkersHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid worker id")
		return
	}

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	err := h.workers.SetActive(r.Context(), id, req.Active)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "worker not found")
		return
	}
	if err != nil {
		log.Printf("failed to set worker %d active=%t: %v", id, req.Active, err)
		respondError(w, http.StatusInternalServerError, "failed to update worker")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"active": req.Active})
}

// SetReference enrolls a worker's reference: a descriptor as a JSON array
// and the reference shot, as multipart form fields.
func (h *WorkersHandler) SetReference(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid worker id")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	var descriptor []float32
	if err := json.Unmarshal([]byte(r.FormValue("descriptor")), &descriptor); err != nil || len(descriptor) == 0 {
		respondError(w, http.StatusBadRequest, "descriptor must be a non-empty JSON array of numbers")
		return
	}

	imagePath := ""
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		imagePath, err = h.uploads.SaveReferenceImage(file, header.Filename)
		if err != nil {
			log.Printf("failed to store reference image for worker %d: %v", id, err)
			respondError(w, http.StatusInternalServerError, "failed to store reference image")
			return
		}
	}

	err := h.workers.SetReference(r.Context(), id, descriptor, imagePath)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "worker not found")
		return
	}
	if err != nil {
		log.Printf("failed to set reference for worker %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to set reference")
		return
	}

	h.rebuildIndex(r)
	respondJSON(w, http.StatusOK, map[string]bool{"enrolled": true})
}

// Delete removes a worker together with the worker's attendance events.
func (h *WorkersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid worker id")
		return
	}

	err := h.workers.Delete(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "worker not found")
		return
	}
	if err != nil {
		log.Printf("failed to delete worker %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to delete worker")
		return
	}

	if h.index != nil {
		h.index.Remove(id)
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// rebuildIndex refreshes the in-memory descriptor index from the store.
func (h *WorkersHandler) rebuildIndex(r *http.Request) {
	if h.index == nil {
		return
	}
	enrolled, err := h.workers.ListEnrolled(r.Context())
	if err != nil {
		log.Printf("failed to rebuild descriptor index: %v", err)
		return
	}
	h.index.Rebuild(enrolled)
}
