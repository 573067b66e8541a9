// Package domain contains the core data types and pure business rules for the
// Ugur ride-sharing backend. It has no dependency on the database or HTTP
// layers and is imported by every other internal package.
package domain

import (
	"regexp"
	"strings"
	"time"
)

// phonePattern accepts "+" followed by a 1–3 digit country code and an
// 8-digit subscriber number, e.g. +99365123456.
var phonePattern = regexp.MustCompile(`^\+[1-9][0-9]{0,2}[0-9]{8}$`)

// Vehicle year bounds for DriverProfile.CarYear.
const (
	MinCarYear = 1900
	MaxCarYear = 2100
)

// Rating bounds shared by both profile kinds.
const (
	MinProfileRating = 0.0
	MaxProfileRating = 5.0

	DefaultDriverRating    = 4.5
	DefaultPassengerRating = 5.0
)

// User is the identity aggregate. IsDriver and IsPassenger are independent
// capability flags: both, either, or neither may be set.
type User struct {
	ID           int64
	Phone        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsDriver     bool
	IsPassenger  bool
	IsStaff      bool
	IsActive     bool
	DateJoined   time.Time
}

// FullName joins first and last name, skipping empty parts.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ValidatePhone reports whether phone has the +<country><8 digits> shape.
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return NewFieldError("phone", "must match +<country code><8 digits>")
	}
	return nil
}

// DriverProfile holds vehicle data and driver statistics. One per user.
// Plate is globally unique when non-empty.
type DriverProfile struct {
	ID         int64
	UserID     int64
	Make       string
	Model      string
	Color      string
	Plate      string
	CarYear    *int
	Rating     float64
	TripCount  int
	IsVerified bool
	OnDuty     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CarDisplay renders the vehicle for listings, e.g. "Toyota Camry (AG 1234)".
func (p DriverProfile) CarDisplay() string {
	s := strings.TrimSpace(p.Make + " " + p.Model)
	if p.Plate != "" {
		s = strings.TrimSpace(s + " (" + p.Plate + ")")
	}
	return s
}

// DriverProfilePatch is a partial update of the vehicle attributes.
// Nil fields are left unchanged.
type DriverProfilePatch struct {
	Make    *string
	Model   *string
	Color   *string
	Plate   *string
	CarYear *int
}

// IsEmpty reports whether the patch carries no fields.
func (p DriverProfilePatch) IsEmpty() bool {
	return p.Make == nil && p.Model == nil && p.Color == nil && p.Plate == nil && p.CarYear == nil
}

// Apply copies every non-nil field of the patch onto dp.
func (p DriverProfilePatch) Apply(dp *DriverProfile) {
	if p.Make != nil {
		dp.Make = strings.TrimSpace(*p.Make)
	}
	if p.Model != nil {
		dp.Model = strings.TrimSpace(*p.Model)
	}
	if p.Color != nil {
		dp.Color = strings.TrimSpace(*p.Color)
	}
	if p.Plate != nil {
		dp.Plate = strings.ToUpper(strings.TrimSpace(*p.Plate))
	}
	if p.CarYear != nil {
		y := *p.CarYear
		dp.CarYear = &y
	}
}

// Validate checks the bounded fields of a driver profile.
func (p DriverProfile) Validate() error {
	if p.CarYear != nil && (*p.CarYear < MinCarYear || *p.CarYear > MaxCarYear) {
		return NewFieldError("car_year", "must be between %d and %d", MinCarYear, MaxCarYear)
	}
	if p.Rating < MinProfileRating || p.Rating > MaxProfileRating {
		return NewFieldError("rating", "must be between 0 and 5")
	}
	return nil
}

// PassengerProfile holds passenger statistics. One per user.
type PassengerProfile struct {
	ID             int64
	UserID         int64
	Rating         float64
	CompletedRides int
	CreatedAt      time.Time
}

// RoleUpdate sets both role flags at once. DriverProfile, when non-nil,
// is applied as a partial update to the (possibly new) driver profile.
type RoleUpdate struct {
	IsDriver      bool
	IsPassenger   bool
	DriverProfile *DriverProfilePatch
}

// ProfilePolicy decides, per role, whether removing the role deletes the
// matching profile. Deleting a driver profile loses its vehicle data,
// rating, and trip count for good.
type ProfilePolicy struct {
	DeleteDriverProfileOnRoleRemoval    bool
	DeletePassengerProfileOnRoleRemoval bool
}

// DefaultProfilePolicy hard-deletes the driver profile and keeps the
// passenger profile so rating history survives a role toggle.
func DefaultProfilePolicy() ProfilePolicy {
	return ProfilePolicy{DeleteDriverProfileOnRoleRemoval: true}
}

// Registration is the input for creating a user account.
type Registration struct {
	Phone         string
	FirstName     string
	LastName      string
	Password      string
	IsDriver      bool
	IsPassenger   bool
	DriverProfile *DriverProfilePatch
}

// UserFilter narrows user listings. Query matches phone, first or last name.
type UserFilter struct {
	Query string
}

// Account is a user together with whichever profiles it currently holds.
type Account struct {
	User      User
	Driver    *DriverProfile
	Passenger *PassengerProfile
}

// Password length bounds. bcrypt ignores bytes past 72.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// Validate checks the registration input before any write.
func (r Registration) Validate() error {
	if err := ValidatePhone(r.Phone); err != nil {
		return err
	}
	if n := len(r.Password); n < MinPasswordLength || n > MaxPasswordLength {
		return NewFieldError("password", "must be between %d and %d characters", MinPasswordLength, MaxPasswordLength)
	}
	if len([]rune(r.FirstName)) > 150 {
		return NewFieldError("first_name", "must be at most 150 characters")
	}
	if len([]rune(r.LastName)) > 150 {
		return NewFieldError("last_name", "must be at most 150 characters")
	}
	if r.DriverProfile != nil && !r.IsDriver {
		return NewFieldError("driver_profile", "requires is_driver")
	}
	return nil
}

// LoginRole is the role a client signs in as.
type LoginRole string

const (
	LoginAsDriver    LoginRole = "driver"
	LoginAsPassenger LoginRole = "passenger"
)

// Permits reports whether u holds the role. Unknown roles are never held.
func (r LoginRole) Permits(u User) bool {
	switch r {
	case LoginAsDriver:
		return u.IsDriver
	case LoginAsPassenger:
		return u.IsPassenger
	}
	return false
}
