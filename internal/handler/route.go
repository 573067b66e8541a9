package handler

import (
	"encoding/json"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

type RouteResponse struct {
	ID             int64              `json:"id"`
	UgurID         int64              `json:"ugur_id"`
	Title          string             `json:"title"`
	FromPlace      PlaceResponse      `json:"from_place"`
	ToPlace        PlaceResponse      `json:"to_place"`
	DepartureDate  openapi_types.Date `json:"departure_date"`
	DateDisplay    string             `json:"date_display"`
	DepartureTime  *string            `json:"departure_time"`
	AvailableSeats int                `json:"available_seats"`
	Price          *float64           `json:"price"`
	Comment        string             `json:"comment"`
	Stops          []json.RawMessage  `json:"stops"`
	CreatedAt      time.Time          `json:"created_at"`
}

// NewRouteRequest is a leg in POST /ugurs and POST /ugurs/{id}/routes.
// Places are given by name and created on first use.
type NewRouteRequest struct {
	FromPlace      string             `json:"from_place"`
	ToPlace        string             `json:"to_place"`
	DepartureDate  openapi_types.Date `json:"departure_date"`
	DepartureTime  *string            `json:"departure_time"`
	AvailableSeats *int               `json:"available_seats"`
	Price          *float64           `json:"price"`
	Comment        string             `json:"comment"`
	Stops          []json.RawMessage  `json:"stops"`
}

type RouteUpdateRequest struct {
	DepartureDate  *openapi_types.Date `json:"departure_date"`
	DepartureTime  *string             `json:"departure_time"`
	AvailableSeats *int                `json:"available_seats"`
	Price          *float64            `json:"price"`
	Comment        *string             `json:"comment"`
	Stops          []json.RawMessage   `json:"stops"`
}

// ListRoutes handles GET /routes?from_place=&to_place=&departure_date=.
func (s *Server) ListRoutes(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	f := domain.RouteFilter{
		FromPlaceID:   q.id("from_place"),
		ToPlaceID:     q.id("to_place"),
		DepartureDate: q.date("departure_date"),
	}
	p := q.page()
	if q.err != nil {
		badRequest(w, q.err.Error())
		return
	}
	page, err := s.svc.Routes.List(r.Context(), f, p)
	if err != nil {
		fail(w, r, "route", err)
		return
	}
	writeJSON(w, http.StatusOK, listOf(page, routeToResponse))
}

// GetRoute handles GET /routes/{id}.
func (s *Server) GetRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rt, err := s.svc.Routes.Get(r.Context(), id)
	if err != nil {
		fail(w, r, "route", err)
		return
	}
	writeJSON(w, http.StatusOK, routeToResponse(rt))
}

// UpdateRoute handles PATCH /routes/{id}.
func (s *Server) UpdateRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req RouteUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	upd, err := req.toDomain()
	if err != nil {
		fail(w, r, "route", err)
		return
	}
	rt, err := s.svc.Routes.Update(r.Context(), actorID(r), id, upd)
	if err != nil {
		fail(w, r, "route", err)
		return
	}
	writeJSON(w, http.StatusOK, routeToResponse(rt))
}

// DeleteRoute handles DELETE /routes/{id}.
func (s *Server) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Routes.Delete(r.Context(), actorID(r), id); err != nil {
		fail(w, r, "route", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseTime converts an optional "HH:MM" string. Blank means no time.
func parseTime(field string, s *string) (*domain.TimeOfDay, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := domain.ParseTimeOfDay(*s)
	if err != nil {
		return nil, domain.NewFieldError(field, "must be HH:MM")
	}
	return &t, nil
}

func (req NewRouteRequest) toDomain(prefix string) (domain.NewRoute, error) {
	t, err := parseTime(prefix+"departure_time", req.DepartureTime)
	if err != nil {
		return domain.NewRoute{}, err
	}
	return domain.NewRoute{
		FromPlace:      req.FromPlace,
		ToPlace:        req.ToPlace,
		DepartureDate:  req.DepartureDate.Time,
		DepartureTime:  t,
		AvailableSeats: req.AvailableSeats,
		Price:          req.Price,
		Comment:        req.Comment,
		Stops:          req.Stops,
	}, nil
}

func (req RouteUpdateRequest) toDomain() (domain.RouteUpdate, error) {
	t, err := parseTime("departure_time", req.DepartureTime)
	if err != nil {
		return domain.RouteUpdate{}, err
	}
	upd := domain.RouteUpdate{
		DepartureTime:  t,
		AvailableSeats: req.AvailableSeats,
		Price:          req.Price,
		Comment:        req.Comment,
		Stops:          req.Stops,
	}
	if req.DepartureDate != nil {
		d := req.DepartureDate.Time
		upd.DepartureDate = &d
	}
	return upd, nil
}

func routeToResponse(rt domain.UgurRoute) RouteResponse {
	resp := RouteResponse{
		ID:             rt.ID,
		UgurID:         rt.UgurID,
		Title:          domain.RouteTitle(rt),
		FromPlace:      placeToResponse(rt.FromPlace),
		ToPlace:        placeToResponse(rt.ToPlace),
		DepartureDate:  openapi_types.Date{Time: rt.DepartureDate},
		DateDisplay:    rt.DateDisplay(),
		AvailableSeats: rt.AvailableSeats,
		Price:          rt.Price,
		Comment:        rt.Comment,
		Stops:          rt.Stops,
		CreatedAt:      rt.CreatedAt,
	}
	if rt.DepartureTime != nil {
		t := rt.DepartureTime.String()
		resp.DepartureTime = &t
	}
	if resp.Stops == nil {
		resp.Stops = []json.RawMessage{}
	}
	return resp
}
