package domain

import (
	"fmt"
	"time"
)

// DriverNotification is a queued message for one driver.
type DriverNotification struct {
	ID        int64
	DriverID  int64
	FromPlace *Place
	ToPlace   *Place
	Price     *float64
	Message   string
	IsSeen    bool
	CreatedAt time.Time
}

// PushTitle is the title used when the notification is dispatched.
func (n DriverNotification) PushTitle() string {
	if n.FromPlace != nil && n.ToPlace != nil {
		return fmt.Sprintf("%s → %s", n.FromPlace.Name, n.ToPlace.Name)
	}
	return "Täze bildiriş"
}

// PushBody is the body used when the notification is dispatched.
func (n DriverNotification) PushBody() string {
	if n.Message != "" {
		return n.Message
	}
	if n.Price != nil {
		return fmt.Sprintf("%.2f TMT", *n.Price)
	}
	return ""
}

// NewNotification is the creation input. Places are given by name.
type NewNotification struct {
	DriverID  int64
	FromPlace string
	ToPlace   string
	Price     *float64
	Message   string
}

// Validate checks the addressee and optional price.
func (n NewNotification) Validate() error {
	if n.DriverID <= 0 {
		return NewFieldError("driver_id", "is required")
	}
	if n.Price != nil && *n.Price < 0 {
		return NewFieldError("price", "must not be negative")
	}
	return nil
}

// DeviceToken is a push registration for one of a user's devices.
type DeviceToken struct {
	ID         int64
	UserID     int64
	Token      string
	DeviceType string // "ios" or "android"
	CreatedAt  time.Time
}

// Validate checks the token and platform.
func (d DeviceToken) Validate() error {
	if d.Token == "" {
		return NewFieldError("token", "is required")
	}
	if d.DeviceType != "ios" && d.DeviceType != "android" {
		return NewFieldError("device_type", "must be ios or android")
	}
	return nil
}
