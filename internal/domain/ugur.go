package domain

import (
	"fmt"
	"strings"
	"time"
)

// UgurType tags a trip as offering seats (posted by a driver) or seeking
// seats (posted by a passenger).
type UgurType string

const (
	UgurTypeDriver    UgurType = "driver"
	UgurTypePassenger UgurType = "passenger"
)

// Valid reports whether t is a known trip type.
func (t UgurType) Valid() bool {
	return t == UgurTypeDriver || t == UgurTypePassenger
}

// Label is the human-readable form of the type.
func (t UgurType) Label() string {
	switch t {
	case UgurTypeDriver:
		return "Offering seats"
	case UgurTypePassenger:
		return "Seeking seats"
	}
	return string(t)
}

// ImportedUgurTitle marks trips created by the legacy importer.
const ImportedUgurTitle = "Import edilen syýahat"

// Ugur is the trip header aggregate. Routes are its ordered legs.
// DriverID is nil when no driver is assigned; deleting the driver user
// clears it while the trip survives.
type Ugur struct {
	ID          int64
	OwnerID     int64
	DriverID    *int64
	Type        UgurType
	Title       string // explicit title; empty means derive from the first leg
	IsActive    bool
	IsCompleted bool
	Views       int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Routes   []UgurRoute
	Bookings []Booking
}

// DisplayTitle returns the explicit title when set, otherwise
// "{from} → {to}" of the first leg, otherwise "Ugur #<id>".
func (u Ugur) DisplayTitle() string {
	if t := strings.TrimSpace(u.Title); t != "" {
		return t
	}
	if first, ok := u.FirstRoute(); ok {
		return RouteTitle(first)
	}
	return fmt.Sprintf("Ugur #%d", u.ID)
}

// FirstRoute returns the first leg added to the trip, if any. Legs are
// listed by departure, so the first added is the one with the lowest id.
func (u Ugur) FirstRoute() (UgurRoute, bool) {
	return FirstAdded(u.Routes)
}

// FirstAdded returns the leg with the lowest persisted id. Unsaved legs
// (id 0) only win when no leg has an id.
func FirstAdded(routes []UgurRoute) (UgurRoute, bool) {
	if len(routes) == 0 {
		return UgurRoute{}, false
	}
	best := routes[0]
	for _, r := range routes[1:] {
		if r.ID != 0 && (best.ID == 0 || r.ID < best.ID) {
			best = r
		}
	}
	return best, true
}

// RouteTitle renders a leg as "{from} → {to}".
func RouteTitle(r UgurRoute) string {
	return fmt.Sprintf("%s → %s", r.FromPlace.Name, r.ToPlace.Name)
}

// UgurFilter narrows trip listings.
type UgurFilter struct {
	Type            *UgurType
	DriverID        *int64
	OwnerID         *int64
	Query           string
	IncludeInactive bool
}

// UgurUpdate carries the mutable header fields. Nil fields stay unchanged.
type UgurUpdate struct {
	Title       *string
	IsActive    *bool
	IsCompleted *bool
}

// NewUgur is the creation input: header plus zero or more legs.
type NewUgur struct {
	Type   UgurType
	Title  string
	Routes []NewRoute
}
