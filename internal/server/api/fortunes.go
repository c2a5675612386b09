// Package api provides HTTP API handlers for the Hanabi application.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/xinyuewang/hanabi/internal/store"
)

// FortuneHandler handles HTTP requests for fortune resources.
type FortuneHandler struct {
	store *store.Store
}

// NewFortuneHandler creates a new FortuneHandler with the given store.
func NewFortuneHandler(s *store.Store) *FortuneHandler {
	return &FortuneHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *FortuneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/fortunes or /api/fortunes/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/fortunes")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/fortunes
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// Item endpoint: /api/fortunes/{id}
	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createFortuneRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Weight   int    `json:"weight"`
}

type updateFortuneRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Weight   int    `json:"weight"`
	Enabled  *bool  `json:"enabled"`
}

type fortuneResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Category  string `json:"category"`
	Weight    int    `json:"weight"`
	Enabled   bool   `json:"enabled"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type listFortunesResponse struct {
	Fortunes []fortuneResponse `json:"fortunes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Fortune to a fortuneResponse.
func toResponse(f *store.Fortune) fortuneResponse {
	return fortuneResponse{
		ID:        f.ID,
		Text:      f.Text,
		Category:  f.Category,
		Weight:    f.Weight,
		Enabled:   f.Enabled,
		CreatedAt: f.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: f.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/fortunes and returns all fortunes.
func (h *FortuneHandler) list(w http.ResponseWriter, r *http.Request) {
	fortunes, err := h.store.Fortunes().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list fortunes")
		return
	}

	response := listFortunesResponse{
		Fortunes: make([]fortuneResponse, 0, len(fortunes)),
	}

	for _, f := range fortunes {
		response.Fortunes = append(response.Fortunes, toResponse(f))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/fortunes/{id} and returns a single fortune.
func (h *FortuneHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	fortune, err := h.store.Fortunes().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Fortune not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get fortune")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(fortune))
}

// create handles POST /api/fortunes and creates a new fortune.
func (h *FortuneHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createFortuneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	category := req.Category
	if category == "" {
		category = "general"
	}

	weight := req.Weight
	if weight == 0 {
		weight = 1
	}

	fortune := &store.Fortune{
		ID:       uuid.New().String(),
		Text:     req.Text,
		Category: category,
		Weight:   weight,
		Enabled:  true,
	}

	if err := h.store.Fortunes().Create(fortune); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create fortune")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(fortune))
}

// update handles PUT /api/fortunes/{id} and updates an existing fortune.
func (h *FortuneHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	fortune, err := h.store.Fortunes().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Fortune not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get fortune")
		return
	}

	var req updateFortuneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Text != "" {
		fortune.Text = req.Text
	}
	if req.Category != "" {
		fortune.Category = req.Category
	}
	if req.Weight != 0 {
		fortune.Weight = req.Weight
	}
	if req.Enabled != nil {
		fortune.Enabled = *req.Enabled
	}

	if err := h.store.Fortunes().Update(fortune); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update fortune")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(fortune))
}

// delete handles DELETE /api/fortunes/{id} and removes a fortune.
func (h *FortuneHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Fortunes().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Fortune not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete fortune")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
