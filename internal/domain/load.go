package domain

import (
	"fmt"
	"time"
)

// LoadStatus is the lifecycle state of a freight item.
type LoadStatus string

const (
	LoadSearching LoadStatus = "searching"
	LoadAssigned  LoadStatus = "assigned"
	LoadInTransit LoadStatus = "in_transit"
	LoadDelivered LoadStatus = "delivered"
	LoadCancelled LoadStatus = "cancelled"
)

var loadTransitions = map[LoadStatus][]LoadStatus{
	LoadSearching: {LoadAssigned, LoadCancelled},
	LoadAssigned:  {LoadInTransit, LoadCancelled},
	LoadInTransit: {LoadDelivered, LoadCancelled},
}

// Valid reports whether s is a known load status.
func (s LoadStatus) Valid() bool {
	switch s {
	case LoadSearching, LoadAssigned, LoadInTransit, LoadDelivered, LoadCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s LoadStatus) Terminal() bool {
	return s == LoadDelivered || s == LoadCancelled
}

// CanTransition reports whether moving from s to next is allowed.
func (s LoadStatus) CanTransition(next LoadStatus) bool {
	for _, allowed := range loadTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateLoadTransition returns ErrValidation for an unknown target and
// ErrConflict for a transition the state machine does not allow.
func ValidateLoadTransition(from, to LoadStatus) error {
	if !to.Valid() {
		return NewFieldError("status", "unknown load status %q", to)
	}
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: load cannot move from %s to %s", ErrConflict, from, to)
	}
	return nil
}

// Load is a shipment created by a sender and optionally attached to a trip
// and/or one of its legs.
type Load struct {
	ID            int64
	SenderID      int64
	UgurID        *int64
	RouteID       *int64
	Description   string
	ReceiverName  string
	ReceiverPhone string
	WeightKg      *float64
	Price         *float64
	Status        LoadStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Populated on read for the derived place accessors.
	Route          *UgurRoute
	UgurFirstRoute *UgurRoute
}

// ApplyAttachmentRule forces searching → assigned when a trip is attached.
// It must run before every persistence of a Load and is idempotent.
func (l *Load) ApplyAttachmentRule() {
	if l.UgurID != nil && l.Status == LoadSearching {
		l.Status = LoadAssigned
	}
}

// FromPlace resolves the origin via the attached leg, else the trip's
// first leg, else nil.
func (l Load) FromPlace() *Place {
	if r := l.placeSource(); r != nil {
		p := r.FromPlace
		return &p
	}
	return nil
}

// ToPlace resolves the destination the same way as FromPlace.
func (l Load) ToPlace() *Place {
	if r := l.placeSource(); r != nil {
		p := r.ToPlace
		return &p
	}
	return nil
}

func (l Load) placeSource() *UgurRoute {
	if l.RouteID != nil && l.Route != nil {
		return l.Route
	}
	if l.UgurID != nil && l.UgurFirstRoute != nil {
		return l.UgurFirstRoute
	}
	return nil
}

// Validate checks the free-form fields of a load.
func (l Load) Validate() error {
	if l.ReceiverPhone != "" {
		if err := ValidatePhone(l.ReceiverPhone); err != nil {
			return NewFieldError("receiver_phone", "must match +<country code><8 digits>")
		}
	}
	if l.WeightKg != nil && *l.WeightKg <= 0 {
		return NewFieldError("weight_kg", "must be positive")
	}
	if l.Price != nil && *l.Price < 0 {
		return NewFieldError("price", "must not be negative")
	}
	if !l.Status.Valid() {
		return NewFieldError("status", "unknown load status %q", l.Status)
	}
	return nil
}

// LoadAttachment replaces the trip and leg references of a load.
type LoadAttachment struct {
	UgurID  *int64
	RouteID *int64
}

// LoadFilter narrows load listings. Place filters match any leg of the
// attached trip.
type LoadFilter struct {
	Status      *LoadStatus
	UgurID      *int64
	RouteID     *int64
	FromPlaceID *int64
	ToPlaceID   *int64
}
