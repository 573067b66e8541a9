package handler

import (
	"net/http"
	"time"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

type BookingResponse struct {
	ID          int64     `json:"id"`
	RouteID     int64     `json:"route_id"`
	PassengerID int64     `json:"passenger_id"`
	SeatsBooked int       `json:"seats_booked"`
	Status      string    `json:"status"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookingRequest creates a booking for the caller. seats_booked defaults to 1.
type BookingRequest struct {
	RouteID     int64  `json:"route_id"`
	SeatsBooked *int   `json:"seats_booked"`
	Comment     string `json:"comment"`
}

// StatusRequest drives the booking and load state machines.
type StatusRequest struct {
	Status string `json:"status"`
}

// ListBookings handles GET /bookings. Passengers see their own bookings,
// drivers and owners see bookings on their trips, staff see all.
func (s *Server) ListBookings(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	p := q.page()
	if q.err != nil {
		badRequest(w, q.err.Error())
		return
	}
	page, err := s.svc.Bookings.List(r.Context(), actorID(r), p)
	if err != nil {
		fail(w, r, "booking", err)
		return
	}
	writeJSON(w, http.StatusOK, listOf(page, bookingToResponse))
}

// CreateBooking handles POST /bookings.
func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	seats := 1
	if req.SeatsBooked != nil {
		seats = *req.SeatsBooked
	}
	b, err := s.svc.Bookings.Create(r.Context(), actorID(r), domain.NewBooking{
		RouteID:     req.RouteID,
		SeatsBooked: seats,
		Comment:     req.Comment,
	})
	if err != nil {
		fail(w, r, "route", err)
		return
	}
	writeJSON(w, http.StatusCreated, bookingToResponse(b))
}

// GetBooking handles GET /bookings/{id}.
func (s *Server) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := s.svc.Bookings.Get(r.Context(), actorID(r), id)
	if err != nil {
		fail(w, r, "booking", err)
		return
	}
	writeJSON(w, http.StatusOK, bookingToResponse(b))
}

// ChangeBookingStatus handles POST /bookings/{id}/status.
func (s *Server) ChangeBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := s.svc.Bookings.ChangeStatus(r.Context(), actorID(r), id, domain.BookingStatus(req.Status))
	if err != nil {
		fail(w, r, "booking", err)
		return
	}
	writeJSON(w, http.StatusOK, bookingToResponse(b))
}

func bookingToResponse(b domain.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		RouteID:     b.RouteID,
		PassengerID: b.PassengerID,
		SeatsBooked: b.SeatsBooked,
		Status:      string(b.Status),
		Comment:     b.Comment,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
