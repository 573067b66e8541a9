package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ugurtm/ugur-backend/internal/auth"
	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/handler"
)

// Each mock is a test double for one handler interface.
// Set only the method fields your test needs.

type mockUserServicer struct {
	register            func(ctx context.Context, reg domain.Registration) (domain.Account, error)
	login               func(ctx context.Context, phone, password string, role domain.LoginRole) (domain.User, error)
	getAccount          func(ctx context.Context, id int64) (domain.Account, error)
	list                func(ctx context.Context, f domain.UserFilter, p domain.PaginationParams) (domain.Page[domain.User], error)
	updateRoles         func(ctx context.Context, userID int64, upd domain.RoleUpdate) (domain.Account, error)
	updateDriverProfile func(ctx context.Context, userID int64, patch domain.DriverProfilePatch) (domain.DriverProfile, error)
}

func (m *mockUserServicer) Register(ctx context.Context, reg domain.Registration) (domain.Account, error) {
	return m.register(ctx, reg)
}
func (m *mockUserServicer) Login(ctx context.Context, phone, password string, role domain.LoginRole) (domain.User, error) {
	return m.login(ctx, phone, password, role)
}
func (m *mockUserServicer) GetAccount(ctx context.Context, id int64) (domain.Account, error) {
	return m.getAccount(ctx, id)
}
func (m *mockUserServicer) List(ctx context.Context, f domain.UserFilter, p domain.PaginationParams) (domain.Page[domain.User], error) {
	return m.list(ctx, f, p)
}
func (m *mockUserServicer) UpdateRoles(ctx context.Context, userID int64, upd domain.RoleUpdate) (domain.Account, error) {
	return m.updateRoles(ctx, userID, upd)
}
func (m *mockUserServicer) UpdateDriverProfile(ctx context.Context, userID int64, patch domain.DriverProfilePatch) (domain.DriverProfile, error) {
	return m.updateDriverProfile(ctx, userID, patch)
}

type mockTokenIssuer struct {
	issue func(userID int64, role domain.LoginRole) (string, time.Time, error)
}

func (m *mockTokenIssuer) Issue(userID int64, role domain.LoginRole) (string, time.Time, error) {
	return m.issue(userID, role)
}

type mockUgurServicer struct {
	create       func(ctx context.Context, ownerID int64, in domain.NewUgur) (domain.Ugur, error)
	get          func(ctx context.Context, id int64) (domain.Ugur, error)
	view         func(ctx context.Context, id int64) (domain.Ugur, error)
	list         func(ctx context.Context, f domain.UgurFilter, p domain.PaginationParams) (domain.Page[domain.Ugur], error)
	update       func(ctx context.Context, actorID, id int64, upd domain.UgurUpdate) (domain.Ugur, error)
	assignDriver func(ctx context.Context, actorID, id int64, driverID *int64) (domain.Ugur, error)
	deactivate   func(ctx context.Context, actorID int64, ids []int64) (int64, error)
	delete       func(ctx context.Context, actorID, id int64) error
	addRoute     func(ctx context.Context, actorID, ugurID int64, nr domain.NewRoute) (domain.UgurRoute, error)
}

func (m *mockUgurServicer) Create(ctx context.Context, ownerID int64, in domain.NewUgur) (domain.Ugur, error) {
	return m.create(ctx, ownerID, in)
}
func (m *mockUgurServicer) Get(ctx context.Context, id int64) (domain.Ugur, error) {
	return m.get(ctx, id)
}
func (m *mockUgurServicer) View(ctx context.Context, id int64) (domain.Ugur, error) {
	return m.view(ctx, id)
}
func (m *mockUgurServicer) List(ctx context.Context, f domain.UgurFilter, p domain.PaginationParams) (domain.Page[domain.Ugur], error) {
	return m.list(ctx, f, p)
}
func (m *mockUgurServicer) Update(ctx context.Context, actorID, id int64, upd domain.UgurUpdate) (domain.Ugur, error) {
	return m.update(ctx, actorID, id, upd)
}
func (m *mockUgurServicer) AssignDriver(ctx context.Context, actorID, id int64, driverID *int64) (domain.Ugur, error) {
	return m.assignDriver(ctx, actorID, id, driverID)
}
func (m *mockUgurServicer) Deactivate(ctx context.Context, actorID int64, ids []int64) (int64, error) {
	return m.deactivate(ctx, actorID, ids)
}
func (m *mockUgurServicer) Delete(ctx context.Context, actorID, id int64) error {
	return m.delete(ctx, actorID, id)
}
func (m *mockUgurServicer) AddRoute(ctx context.Context, actorID, ugurID int64, nr domain.NewRoute) (domain.UgurRoute, error) {
	return m.addRoute(ctx, actorID, ugurID, nr)
}

type mockRouteServicer struct {
	get    func(ctx context.Context, id int64) (domain.UgurRoute, error)
	list   func(ctx context.Context, f domain.RouteFilter, p domain.PaginationParams) (domain.Page[domain.UgurRoute], error)
	update func(ctx context.Context, actorID, id int64, upd domain.RouteUpdate) (domain.UgurRoute, error)
	delete func(ctx context.Context, actorID, id int64) error
}

func (m *mockRouteServicer) Get(ctx context.Context, id int64) (domain.UgurRoute, error) {
	return m.get(ctx, id)
}
func (m *mockRouteServicer) List(ctx context.Context, f domain.RouteFilter, p domain.PaginationParams) (domain.Page[domain.UgurRoute], error) {
	return m.list(ctx, f, p)
}
func (m *mockRouteServicer) Update(ctx context.Context, actorID, id int64, upd domain.RouteUpdate) (domain.UgurRoute, error) {
	return m.update(ctx, actorID, id, upd)
}
func (m *mockRouteServicer) Delete(ctx context.Context, actorID, id int64) error {
	return m.delete(ctx, actorID, id)
}

type mockBookingServicer struct {
	create       func(ctx context.Context, passengerID int64, in domain.NewBooking) (domain.Booking, error)
	get          func(ctx context.Context, actorID, id int64) (domain.Booking, error)
	list         func(ctx context.Context, actorID int64, p domain.PaginationParams) (domain.Page[domain.Booking], error)
	changeStatus func(ctx context.Context, actorID, id int64, to domain.BookingStatus) (domain.Booking, error)
}

func (m *mockBookingServicer) Create(ctx context.Context, passengerID int64, in domain.NewBooking) (domain.Booking, error) {
	return m.create(ctx, passengerID, in)
}
func (m *mockBookingServicer) Get(ctx context.Context, actorID, id int64) (domain.Booking, error) {
	return m.get(ctx, actorID, id)
}
func (m *mockBookingServicer) List(ctx context.Context, actorID int64, p domain.PaginationParams) (domain.Page[domain.Booking], error) {
	return m.list(ctx, actorID, p)
}
func (m *mockBookingServicer) ChangeStatus(ctx context.Context, actorID, id int64, to domain.BookingStatus) (domain.Booking, error) {
	return m.changeStatus(ctx, actorID, id, to)
}

type mockLoadServicer struct {
	create       func(ctx context.Context, senderID int64, l domain.Load) (domain.Load, error)
	get          func(ctx context.Context, id int64) (domain.Load, error)
	list         func(ctx context.Context, f domain.LoadFilter, p domain.PaginationParams) (domain.Page[domain.Load], error)
	attach       func(ctx context.Context, actorID, id int64, att domain.LoadAttachment) (domain.Load, error)
	changeStatus func(ctx context.Context, actorID, id int64, to domain.LoadStatus) (domain.Load, error)
}

func (m *mockLoadServicer) Create(ctx context.Context, senderID int64, l domain.Load) (domain.Load, error) {
	return m.create(ctx, senderID, l)
}
func (m *mockLoadServicer) Get(ctx context.Context, id int64) (domain.Load, error) {
	return m.get(ctx, id)
}
func (m *mockLoadServicer) List(ctx context.Context, f domain.LoadFilter, p domain.PaginationParams) (domain.Page[domain.Load], error) {
	return m.list(ctx, f, p)
}
func (m *mockLoadServicer) Attach(ctx context.Context, actorID, id int64, att domain.LoadAttachment) (domain.Load, error) {
	return m.attach(ctx, actorID, id, att)
}
func (m *mockLoadServicer) ChangeStatus(ctx context.Context, actorID, id int64, to domain.LoadStatus) (domain.Load, error) {
	return m.changeStatus(ctx, actorID, id, to)
}

type mockNotificationServicer struct {
	create        func(ctx context.Context, in domain.NewNotification) (domain.DriverNotification, error)
	listForDriver func(ctx context.Context, driverID int64, seen *bool, p domain.PaginationParams) (domain.Page[domain.DriverNotification], error)
	markSeen      func(ctx context.Context, driverID, id int64) (domain.DriverNotification, error)
}

func (m *mockNotificationServicer) Create(ctx context.Context, in domain.NewNotification) (domain.DriverNotification, error) {
	return m.create(ctx, in)
}
func (m *mockNotificationServicer) ListForDriver(ctx context.Context, driverID int64, seen *bool, p domain.PaginationParams) (domain.Page[domain.DriverNotification], error) {
	return m.listForDriver(ctx, driverID, seen, p)
}
func (m *mockNotificationServicer) MarkSeen(ctx context.Context, driverID, id int64) (domain.DriverNotification, error) {
	return m.markSeen(ctx, driverID, id)
}

type mockPlaceServicer struct {
	getOrCreate func(ctx context.Context, name string) (domain.Place, error)
	get         func(ctx context.Context, id int64) (domain.Place, error)
	list        func(ctx context.Context, query string, p domain.PaginationParams) (domain.Page[domain.Place], error)
	delete      func(ctx context.Context, actorID, id int64) error
}

func (m *mockPlaceServicer) GetOrCreate(ctx context.Context, name string) (domain.Place, error) {
	return m.getOrCreate(ctx, name)
}
func (m *mockPlaceServicer) Get(ctx context.Context, id int64) (domain.Place, error) {
	return m.get(ctx, id)
}
func (m *mockPlaceServicer) List(ctx context.Context, query string, p domain.PaginationParams) (domain.Page[domain.Place], error) {
	return m.list(ctx, query, p)
}
func (m *mockPlaceServicer) Delete(ctx context.Context, actorID, id int64) error {
	return m.delete(ctx, actorID, id)
}

type mockImporter struct {
	imp func(ctx context.Context, actorID int64, in domain.LegacyImport) (domain.ImportResult, error)
}

func (m *mockImporter) Import(ctx context.Context, actorID int64, in domain.LegacyImport) (domain.ImportResult, error) {
	return m.imp(ctx, actorID, in)
}

// compile-time checks: each mock must satisfy its handler interface.
var (
	_ handler.UserServicer         = (*mockUserServicer)(nil)
	_ handler.TokenIssuer          = (*mockTokenIssuer)(nil)
	_ handler.UgurServicer         = (*mockUgurServicer)(nil)
	_ handler.RouteServicer        = (*mockRouteServicer)(nil)
	_ handler.BookingServicer      = (*mockBookingServicer)(nil)
	_ handler.LoadServicer         = (*mockLoadServicer)(nil)
	_ handler.NotificationServicer = (*mockNotificationServicer)(nil)
	_ handler.PlaceServicer        = (*mockPlaceServicer)(nil)
	_ handler.Importer             = (*mockImporter)(nil)
)

// ---- helpers ---------------------------------------------------------------

// userTokens accepts tokens of the form "user-<id>".
type userTokens struct{}

func (userTokens) Verify(raw string) (auth.Identity, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "user-"), 10, 64)
	if err != nil || !strings.HasPrefix(raw, "user-") {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return auth.Identity{UserID: id, Role: domain.LoginAsPassenger}, nil
}

// newHTTPHandler wires a Server with the given mocks into its router.
// This mirrors how main.go wires it in production.
func newHTTPHandler(svc handler.Services) http.Handler {
	return handler.NewServer(svc, []byte("openapi: 3.0.3\n")).Routes(userTokens{})
}

// do sends a request as userID (0 means anonymous) and returns the recorder.
func do(t *testing.T, h http.Handler, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer user-%d", userID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func ptr[T any](v T) *T { return &v }

var departure = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func placeFixture(id int64, name string) domain.Place {
	return domain.Place{ID: id, Name: name}
}

func routeFixture() domain.UgurRoute {
	return domain.UgurRoute{
		ID:             21,
		UgurID:         9,
		FromPlace:      placeFixture(1, "Aşgabat"),
		ToPlace:        placeFixture(2, "Mary"),
		DepartureDate:  departure,
		DepartureTime:  &domain.TimeOfDay{Hour: 8, Minute: 30},
		AvailableSeats: 4,
	}
}
