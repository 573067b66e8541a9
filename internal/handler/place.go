package handler

import (
	"net/http"
	"time"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

type PlaceResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type PlaceRequest struct {
	Name string `json:"name"`
}

// ListPlaces handles GET /places?q=.
func (s *Server) ListPlaces(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	p := q.page()
	if q.err != nil {
		badRequest(w, q.err.Error())
		return
	}
	page, err := s.svc.Places.List(r.Context(), q.str("q"), p)
	if err != nil {
		fail(w, r, "place", err)
		return
	}
	writeJSON(w, http.StatusOK, listOf(page, placeToResponse))
}

// CreatePlace handles POST /places. An existing place with the same
// normalized name is returned instead of a duplicate.
func (s *Server) CreatePlace(w http.ResponseWriter, r *http.Request) {
	var req PlaceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := s.svc.Places.GetOrCreate(r.Context(), req.Name)
	if err != nil {
		fail(w, r, "place", err)
		return
	}
	writeJSON(w, http.StatusCreated, placeToResponse(p))
}

// GetPlace handles GET /places/{id}.
func (s *Server) GetPlace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.svc.Places.Get(r.Context(), id)
	if err != nil {
		fail(w, r, "place", err)
		return
	}
	writeJSON(w, http.StatusOK, placeToResponse(p))
}

// DeletePlace handles DELETE /places/{id}. Staff only.
func (s *Server) DeletePlace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Places.Delete(r.Context(), actorID(r), id); err != nil {
		fail(w, r, "place", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func placeToResponse(p domain.Place) PlaceResponse {
	return PlaceResponse{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt}
}

func optionalPlace(p *domain.Place) *PlaceResponse {
	if p == nil {
		return nil
	}
	resp := placeToResponse(*p)
	return &resp
}
