package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

type UgurResponse struct {
	ID          int64             `json:"id"`
	OwnerID     int64             `json:"owner_id"`
	DriverID    *int64            `json:"driver_id"`
	Type        string            `json:"type"`
	TypeDisplay string            `json:"type_display"`
	Title       string            `json:"title"`
	IsActive    bool              `json:"is_active"`
	IsCompleted bool              `json:"is_completed"`
	Views       int64             `json:"views"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Routes      []RouteResponse   `json:"routes"`
	Bookings    []BookingResponse `json:"bookings,omitempty"`
}

type NewUgurRequest struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Routes []NewRouteRequest `json:"routes"`
}

type UgurUpdateRequest struct {
	Title       *string `json:"title"`
	IsActive    *bool   `json:"is_active"`
	IsCompleted *bool   `json:"is_completed"`
}

type AssignDriverRequest struct {
	DriverID *int64 `json:"driver_id"`
}

type DeactivateRequest struct {
	IDs []int64 `json:"ids"`
}

type DeactivateResponse struct {
	Deactivated int64 `json:"deactivated"`
}

// ListUgurs handles GET /ugurs. Inactive trips are hidden unless
// ?include_inactive=true.
func (s *Server) ListUgurs(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	f := domain.UgurFilter{
		DriverID: q.id("driver"),
		OwnerID:  q.id("owner"),
		Query:    q.str("q"),
	}
	if inc := q.flag("include_inactive"); inc != nil {
		f.IncludeInactive = *inc
	}
	if t := q.str("type"); t != "" {
		ut := domain.UgurType(t)
		f.Type = &ut
	}
	p := q.page()
	if q.err != nil {
		badRequest(w, q.err.Error())
		return
	}
	page, err := s.svc.Ugurs.List(r.Context(), f, p)
	if err != nil {
		fail(w, r, "ugur", err)
		return
	}
	writeJSON(w, http.StatusOK, listOf(page, ugurToResponse))
}

// CreateUgur handles POST /ugurs. The caller becomes the owner.
func (s *Server) CreateUgur(w http.ResponseWriter, r *http.Request) {
	var req NewUgurRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in := domain.NewUgur{Type: domain.UgurType(req.Type), Title: req.Title}
	for i, rr := range req.Routes {
		nr, err := rr.toDomain(fmt.Sprintf("routes[%d].", i))
		if err != nil {
			fail(w, r, "ugur", err)
			return
		}
		in.Routes = append(in.Routes, nr)
	}
	u, err := s.svc.Ugurs.Create(r.Context(), actorID(r), in)
	if err != nil {
		fail(w, r, "ugur", err)
		return
	}
	writeJSON(w, http.StatusCreated, ugurToResponse(u))
}

// GetUgur handles GET /ugurs/{id}. Inactive trips are still returned.
func (s *Server) GetUgur(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := s.svc.Ugurs.Get(r.Context(), id)
	if err != nil {
		fail(w, r, "ugur", err)
		return
	}
	writeJSON(w, http.StatusOK, ugurToResponse(u))
}

// ViewUgur handles POST /ugurs/{id}/view: the detail plus one view.
func (s *Server) ViewUgur(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := s.svc.Ugurs.View(r.Context(), id)
	if err != nil {
		fail(w, r, "ugur", err)
		return
	}
	writeJSON(w, http.StatusOK, ugurToResponse(u))
}

// UpdateUgur handles PATCH /ugurs/{id}.
func (s *Server) UpdateUgur(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UgurUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := s.svc.Ugurs.Update(r.Context(), actorID(r), id, domain.UgurUpdate{
		Title:       req.Title,
		IsActive:    req.IsActive,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		fail(w, r, "ugur", err)
		return
	}
	writeJSON(w, http.StatusOK, ugurToResponse(u))
}

// DeleteUgur handles DELETE /ugurs/{id}.
func (s *Server) DeleteUgur(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Ugurs.Delete(r.Context(), actorID(r), id); err != nil {
		fail(w, r, "ugur", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignUgurDriver handles PUT /ugurs/{id}/driver. A null driver_id
// unassigns.
func (s *Server) AssignUgurDriver(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req AssignDriverRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := s.svc.Ugurs.AssignDriver(r.Context(), actorID(r), id, req.DriverID)
	if err != nil {
		fail(w, r, "ugur", err)
		return
	}
	writeJSON(w, http.StatusOK, ugurToResponse(u))
}

// DeactivateUgurs handles POST /ugurs/deactivate. Already inactive trips
// are not counted.
func (s *Server) DeactivateUgurs(w http.ResponseWriter, r *http.Request) {
	var req DeactivateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	n, err := s.svc.Ugurs.Deactivate(r.Context(), actorID(r), req.IDs)
	if err != nil {
		fail(w, r, "ugur", err)
		return
	}
	writeJSON(w, http.StatusOK, DeactivateResponse{Deactivated: n})
}

// AddUgurRoute handles POST /ugurs/{id}/routes.
func (s *Server) AddUgurRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req NewRouteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	nr, err := req.toDomain("")
	if err != nil {
		fail(w, r, "ugur", err)
		return
	}
	rt, err := s.svc.Ugurs.AddRoute(r.Context(), actorID(r), id, nr)
	if err != nil {
		fail(w, r, "ugur", err)
		return
	}
	writeJSON(w, http.StatusCreated, routeToResponse(rt))
}

func ugurToResponse(u domain.Ugur) UgurResponse {
	resp := UgurResponse{
		ID:          u.ID,
		OwnerID:     u.OwnerID,
		DriverID:    u.DriverID,
		Type:        string(u.Type),
		TypeDisplay: u.Type.Label(),
		Title:       u.DisplayTitle(),
		IsActive:    u.IsActive,
		IsCompleted: u.IsCompleted,
		Views:       u.Views,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		Routes:      make([]RouteResponse, len(u.Routes)),
	}
	for i, rt := range u.Routes {
		resp.Routes[i] = routeToResponse(rt)
	}
	for _, b := range u.Bookings {
		resp.Bookings = append(resp.Bookings, bookingToResponse(b))
	}
	return resp
}
