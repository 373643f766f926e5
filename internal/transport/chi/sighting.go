package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CreateSighting handles POST /sightings.
func (s *Server) CreateSighting(w http.ResponseWriter, r *http.Request) {
	var req CreateSightingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rec, err := s.sightings.Create(r.Context(), recordFromCreate(req))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/sightings/%s", rec.ID))
	writeJSON(w, http.StatusCreated, recordToResponse(rec))
}

// ListSightings handles GET /sightings.
func (s *Server) ListSightings(w http.ResponseWriter, r *http.Request) {
	p, err := bindList(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	page, size := p.resolve(defaultListSize)

	recs, err := s.sightings.List(r.Context(), page, size)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]SightingResponse, len(recs))
	for i, rec := range recs {
		items[i] = recordToResponse(rec)
	}
	writeJSON(w, http.StatusOK, SightingListResponse{Page: max(0, page), Items: items})
}

// GetSighting handles GET /sightings/{id}.
func (s *Server) GetSighting(w http.ResponseWriter, r *http.Request) {
	rec, err := s.sightings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordToResponse(rec))
}

// UpdateSighting handles PUT /sightings/{id}.
func (s *Server) UpdateSighting(w http.ResponseWriter, r *http.Request) {
	var req UpdateSightingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rec, err := s.sightings.Update(r.Context(), chi.URLParam(r, "id"), patchFromUpdate(req))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordToResponse(rec))
}
