package domain

import (
	"fmt"
	"time"
)

// BookingStatus is the lifecycle state of a seat claim.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// bookingTransitions lists the legal next states for each state.
// cancelled and completed are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCancelled, BookingCompleted},
}

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// HoldsSeats reports whether a booking in state s counts against capacity.
func (s BookingStatus) HoldsSeats() bool {
	return s != BookingCancelled
}

// CanTransition reports whether moving from s to next is allowed.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateBookingTransition returns ErrValidation for an unknown target and
// ErrConflict for a transition the state machine does not allow.
func ValidateBookingTransition(from, to BookingStatus) error {
	if !to.Valid() {
		return NewFieldError("status", "unknown booking status %q", to)
	}
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: booking cannot move from %s to %s", ErrConflict, from, to)
	}
	return nil
}

// ImportedBookingComment marks bookings created by the legacy importer.
const ImportedBookingComment = "Awtoimport"

// Booking is a passenger's claim on seats of one route leg.
// At most one booking exists per (route, passenger).
type Booking struct {
	ID          int64
	RouteID     int64
	PassengerID int64
	SeatsBooked int
	Status      BookingStatus
	Comment     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBooking is the creation input. The passenger is the acting user.
type NewBooking struct {
	RouteID     int64
	SeatsBooked int
	Comment     string
}

// Validate checks the seat count.
func (b NewBooking) Validate() error {
	if b.RouteID <= 0 {
		return NewFieldError("route_id", "is required")
	}
	if b.SeatsBooked < 1 {
		return NewFieldError("seats_booked", "must be at least 1")
	}
	return nil
}

// RemainingSeats returns capacity minus seats held by non-cancelled
// bookings. The result may be negative for legacy data.
func RemainingSeats(available int, held int) int {
	return available - held
}
