package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultAvailableSeats is the seat count of a leg when none is given.
const DefaultAvailableSeats = 4

// UgurRoute is one origin→destination leg of a trip. It is deleted with its
// trip and with either endpoint place.
type UgurRoute struct {
	ID             int64
	UgurID         int64
	FromPlace      Place
	ToPlace        Place
	DepartureDate  time.Time
	DepartureTime  *TimeOfDay
	AvailableSeats int
	Price          *float64
	Comment        string
	Stops          []json.RawMessage // ordered, unstructured stop descriptors
	CreatedAt      time.Time
}

// DateDisplay renders the departure date as DD.MM.YYYY.
func (r UgurRoute) DateDisplay() string {
	return r.DepartureDate.Format("02.01.2006")
}

// NewRoute is the input for adding a leg. Places are given by name and
// resolved with get-or-create semantics.
type NewRoute struct {
	FromPlace      string
	ToPlace        string
	DepartureDate  time.Time
	DepartureTime  *TimeOfDay
	AvailableSeats *int
	Price          *float64
	Comment        string
	Stops          []json.RawMessage
}

// Validate checks the fields of a new leg. The field prefix lets callers
// report "routes[1].to_place" when validating nested input.
func (r NewRoute) Validate(prefix string) error {
	if err := ValidatePlaceName(prefix+"from_place", r.FromPlace); err != nil {
		return err
	}
	if err := ValidatePlaceName(prefix+"to_place", r.ToPlace); err != nil {
		return err
	}
	if r.DepartureDate.IsZero() {
		return NewFieldError(prefix+"departure_date", "is required")
	}
	if r.AvailableSeats != nil && *r.AvailableSeats < 0 {
		return NewFieldError(prefix+"available_seats", "must not be negative")
	}
	if r.Price != nil && *r.Price < 0 {
		return NewFieldError(prefix+"price", "must not be negative")
	}
	return nil
}

// Seats returns the requested seat count or the default.
func (r NewRoute) Seats() int {
	if r.AvailableSeats == nil {
		return DefaultAvailableSeats
	}
	return *r.AvailableSeats
}

// RouteUpdate carries the mutable fields of a leg. Nil fields stay unchanged.
type RouteUpdate struct {
	DepartureDate  *time.Time
	DepartureTime  *TimeOfDay
	AvailableSeats *int
	Price          *float64
	Comment        *string
	Stops          []json.RawMessage
}

// RouteFilter narrows leg listings.
type RouteFilter struct {
	FromPlaceID   *int64
	ToPlaceID     *int64
	DepartureDate *time.Time
}

// TimeOfDay is a wall-clock time without a date, minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a strict 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// String renders the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Duration returns the offset from midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute
}

// TimeOfDayFromDuration converts an offset from midnight, dropping seconds.
func TimeOfDayFromDuration(d time.Duration) TimeOfDay {
	return TimeOfDay{Hour: int(d / time.Hour), Minute: int((d % time.Hour) / time.Minute)}
}
