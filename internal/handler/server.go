// Package handler implements the HTTP handlers for the Ugur API.
// All handlers are methods on Server. Methods are split into
// resource-specific files (ugur.go, booking.go, etc.) but share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"time"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// The interfaces below are defined here, in the consumer package, so
// handler tests can inject mocks without touching the database or the
// service layer.

// UserServicer covers accounts, login, and role changes.
type UserServicer interface {
	Register(ctx context.Context, reg domain.Registration) (domain.Account, error)
	Login(ctx context.Context, phone, password string, role domain.LoginRole) (domain.User, error)
	GetAccount(ctx context.Context, id int64) (domain.Account, error)
	List(ctx context.Context, f domain.UserFilter, p domain.PaginationParams) (domain.Page[domain.User], error)
	UpdateRoles(ctx context.Context, userID int64, upd domain.RoleUpdate) (domain.Account, error)
	UpdateDriverProfile(ctx context.Context, userID int64, patch domain.DriverProfilePatch) (domain.DriverProfile, error)
}

// TokenIssuer signs bearer tokens after a successful login.
type TokenIssuer interface {
	Issue(userID int64, role domain.LoginRole) (string, time.Time, error)
}

// ProfileServicer exposes driver and passenger profiles read-only.
type ProfileServicer interface {
	GetDriver(ctx context.Context, id int64) (domain.DriverProfile, error)
	ListDrivers(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.DriverProfile], error)
	GetPassenger(ctx context.Context, id int64) (domain.PassengerProfile, error)
	ListPassengers(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.PassengerProfile], error)
}

// PlaceServicer is the place registry.
type PlaceServicer interface {
	GetOrCreate(ctx context.Context, name string) (domain.Place, error)
	Get(ctx context.Context, id int64) (domain.Place, error)
	List(ctx context.Context, query string, p domain.PaginationParams) (domain.Page[domain.Place], error)
	Delete(ctx context.Context, actorID, id int64) error
}

// UgurServicer manages trips and their legs.
type UgurServicer interface {
	Create(ctx context.Context, ownerID int64, in domain.NewUgur) (domain.Ugur, error)
	Get(ctx context.Context, id int64) (domain.Ugur, error)
	View(ctx context.Context, id int64) (domain.Ugur, error)
	List(ctx context.Context, f domain.UgurFilter, p domain.PaginationParams) (domain.Page[domain.Ugur], error)
	Update(ctx context.Context, actorID, id int64, upd domain.UgurUpdate) (domain.Ugur, error)
	AssignDriver(ctx context.Context, actorID, id int64, driverID *int64) (domain.Ugur, error)
	Deactivate(ctx context.Context, actorID int64, ids []int64) (int64, error)
	Delete(ctx context.Context, actorID, id int64) error
	AddRoute(ctx context.Context, actorID, ugurID int64, nr domain.NewRoute) (domain.UgurRoute, error)
}

// RouteServicer manages individual legs.
type RouteServicer interface {
	Get(ctx context.Context, id int64) (domain.UgurRoute, error)
	List(ctx context.Context, f domain.RouteFilter, p domain.PaginationParams) (domain.Page[domain.UgurRoute], error)
	Update(ctx context.Context, actorID, id int64, upd domain.RouteUpdate) (domain.UgurRoute, error)
	Delete(ctx context.Context, actorID, id int64) error
}

// BookingServicer manages seat claims.
type BookingServicer interface {
	Create(ctx context.Context, passengerID int64, in domain.NewBooking) (domain.Booking, error)
	Get(ctx context.Context, actorID, id int64) (domain.Booking, error)
	List(ctx context.Context, actorID int64, p domain.PaginationParams) (domain.Page[domain.Booking], error)
	ChangeStatus(ctx context.Context, actorID, id int64, to domain.BookingStatus) (domain.Booking, error)
}

// LoadServicer manages freight.
type LoadServicer interface {
	Create(ctx context.Context, senderID int64, l domain.Load) (domain.Load, error)
	Get(ctx context.Context, id int64) (domain.Load, error)
	List(ctx context.Context, f domain.LoadFilter, p domain.PaginationParams) (domain.Page[domain.Load], error)
	Attach(ctx context.Context, actorID, id int64, att domain.LoadAttachment) (domain.Load, error)
	ChangeStatus(ctx context.Context, actorID, id int64, to domain.LoadStatus) (domain.Load, error)
}

// NotificationServicer queues and lists driver notifications.
type NotificationServicer interface {
	Create(ctx context.Context, in domain.NewNotification) (domain.DriverNotification, error)
	ListForDriver(ctx context.Context, driverID int64, seen *bool, p domain.PaginationParams) (domain.Page[domain.DriverNotification], error)
	MarkSeen(ctx context.Context, driverID, id int64) (domain.DriverNotification, error)
}

// CurrentPlaceServicer stores location snapshots.
type CurrentPlaceServicer interface {
	Create(ctx context.Context, userID int64, c domain.CurrentPlace) (domain.CurrentPlace, error)
	List(ctx context.Context, userID int64, p domain.PaginationParams) (domain.Page[domain.CurrentPlace], error)
	Delete(ctx context.Context, userID, id int64) error
}

// DeviceTokenServicer registers push targets.
type DeviceTokenServicer interface {
	Register(ctx context.Context, userID int64, t domain.DeviceToken) (domain.DeviceToken, error)
	List(ctx context.Context, userID int64) ([]domain.DeviceToken, error)
}

// ReviewServicer records ratings between users.
type ReviewServicer interface {
	Create(ctx context.Context, fromID int64, rv domain.Review) (domain.Review, error)
	ListForUser(ctx context.Context, userID int64, p domain.PaginationParams) (domain.Page[domain.Review], error)
}

// Importer converts one legacy trip record.
type Importer interface {
	Import(ctx context.Context, actorID int64, in domain.LegacyImport) (domain.ImportResult, error)
}

// Services bundles every dependency of Server. Nil fields are allowed in
// tests that only exercise other resources.
type Services struct {
	Users         UserServicer
	Tokens        TokenIssuer
	Profiles      ProfileServicer
	Places        PlaceServicer
	Ugurs         UgurServicer
	Routes        RouteServicer
	Bookings      BookingServicer
	Loads         LoadServicer
	Notifications NotificationServicer
	CurrentPlaces CurrentPlaceServicer
	DeviceTokens  DeviceTokenServicer
	Reviews       ReviewServicer
	Importer      Importer
}

// Server holds the API's dependencies. Mount it with Routes.
type Server struct {
	svc     Services
	openAPI []byte
}

// NewServer constructs the Server with all its dependencies. openAPI is
// served verbatim at /openapi.yaml.
func NewServer(svc Services, openAPI []byte) *Server {
	return &Server{svc: svc, openAPI: openAPI}
}
