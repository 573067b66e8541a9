package handler

import (
	"net/http"
	"time"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// CurrentPlaceResponse echoes coordinates exactly as they were stored.
type CurrentPlaceResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Latitude    string    `json:"latitude"`
	Longitude   string    `json:"longitude"`
	CreatedAt   time.Time `json:"created_at"`
}

type CurrentPlaceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
}

// ListCurrentPlaces handles GET /current-places, newest first.
func (s *Server) ListCurrentPlaces(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	p := q.page()
	if q.err != nil {
		badRequest(w, q.err.Error())
		return
	}
	page, err := s.svc.CurrentPlaces.List(r.Context(), actorID(r), p)
	if err != nil {
		fail(w, r, "current place", err)
		return
	}
	writeJSON(w, http.StatusOK, listOf(page, currentPlaceToResponse))
}

// CreateCurrentPlace handles POST /current-places.
func (s *Server) CreateCurrentPlace(w http.ResponseWriter, r *http.Request) {
	var req CurrentPlaceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := s.svc.CurrentPlaces.Create(r.Context(), actorID(r), domain.CurrentPlace{
		Title:       req.Title,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		fail(w, r, "current place", err)
		return
	}
	writeJSON(w, http.StatusCreated, currentPlaceToResponse(c))
}

// DeleteCurrentPlace handles DELETE /current-places/{id}. Another user's
// snapshot reads as not found.
func (s *Server) DeleteCurrentPlace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.CurrentPlaces.Delete(r.Context(), actorID(r), id); err != nil {
		fail(w, r, "current place", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func currentPlaceToResponse(c domain.CurrentPlace) CurrentPlaceResponse {
	return CurrentPlaceResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		CreatedAt:   c.CreatedAt,
	}
}
