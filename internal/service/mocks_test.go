package service_test

import (
	"context"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
)

// Hand-written test doubles for the repo interfaces. Each method is a
// function field; set only the ones a test needs. Calling an unset method
// panics, which flags an unexpected repo call.

type mockUserRepo struct {
	create                  func(ctx context.Context, u domain.User) (domain.User, error)
	getByID                 func(ctx context.Context, id int64) (domain.User, error)
	getByPhone              func(ctx context.Context, phone string) (domain.User, error)
	getByDriverProfileID    func(ctx context.Context, profileID int64) (domain.User, error)
	getByPassengerProfileID func(ctx context.Context, profileID int64) (domain.User, error)
	listPaged               func(ctx context.Context, f domain.UserFilter, p domain.PaginationParams) ([]domain.User, int64, error)
	setRoles                func(ctx context.Context, id int64, isDriver, isPassenger bool) (domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return m.create(ctx, u)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserRepo) GetByPhone(ctx context.Context, phone string) (domain.User, error) {
	return m.getByPhone(ctx, phone)
}
func (m *mockUserRepo) GetByDriverProfileID(ctx context.Context, profileID int64) (domain.User, error) {
	return m.getByDriverProfileID(ctx, profileID)
}
func (m *mockUserRepo) GetByPassengerProfileID(ctx context.Context, profileID int64) (domain.User, error) {
	return m.getByPassengerProfileID(ctx, profileID)
}
func (m *mockUserRepo) ListPaged(ctx context.Context, f domain.UserFilter, p domain.PaginationParams) ([]domain.User, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockUserRepo) SetRoles(ctx context.Context, id int64, isDriver, isPassenger bool) (domain.User, error) {
	return m.setRoles(ctx, id, isDriver, isPassenger)
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

// usersByID serves GetByID from a fixed set of users.
func usersByID(users ...domain.User) *mockUserRepo {
	byID := make(map[int64]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return &mockUserRepo{
		getByID: func(_ context.Context, id int64) (domain.User, error) {
			u, ok := byID[id]
			if !ok {
				return domain.User{}, domain.ErrNotFound
			}
			return u, nil
		},
	}
}

type mockProfileRepo struct {
	ensureDriver            func(ctx context.Context, userID int64) (domain.DriverProfile, error)
	getDriverByID           func(ctx context.Context, id int64) (domain.DriverProfile, error)
	getDriverByUserID       func(ctx context.Context, userID int64) (domain.DriverProfile, error)
	updateDriver            func(ctx context.Context, p domain.DriverProfile) (domain.DriverProfile, error)
	deleteDriverByUserID    func(ctx context.Context, userID int64) error
	listDriversPaged        func(ctx context.Context, p domain.PaginationParams) ([]domain.DriverProfile, int64, error)
	ensurePassenger         func(ctx context.Context, userID int64) (domain.PassengerProfile, error)
	getPassengerByID        func(ctx context.Context, id int64) (domain.PassengerProfile, error)
	getPassengerByUserID    func(ctx context.Context, userID int64) (domain.PassengerProfile, error)
	deletePassengerByUserID func(ctx context.Context, userID int64) error
	listPassengersPaged     func(ctx context.Context, p domain.PaginationParams) ([]domain.PassengerProfile, int64, error)
}

func (m *mockProfileRepo) EnsureDriver(ctx context.Context, userID int64) (domain.DriverProfile, error) {
	return m.ensureDriver(ctx, userID)
}
func (m *mockProfileRepo) GetDriverByID(ctx context.Context, id int64) (domain.DriverProfile, error) {
	return m.getDriverByID(ctx, id)
}
func (m *mockProfileRepo) GetDriverByUserID(ctx context.Context, userID int64) (domain.DriverProfile, error) {
	return m.getDriverByUserID(ctx, userID)
}
func (m *mockProfileRepo) UpdateDriver(ctx context.Context, p domain.DriverProfile) (domain.DriverProfile, error) {
	return m.updateDriver(ctx, p)
}
func (m *mockProfileRepo) DeleteDriverByUserID(ctx context.Context, userID int64) error {
	return m.deleteDriverByUserID(ctx, userID)
}
func (m *mockProfileRepo) ListDriversPaged(ctx context.Context, p domain.PaginationParams) ([]domain.DriverProfile, int64, error) {
	return m.listDriversPaged(ctx, p)
}
func (m *mockProfileRepo) EnsurePassenger(ctx context.Context, userID int64) (domain.PassengerProfile, error) {
	return m.ensurePassenger(ctx, userID)
}
func (m *mockProfileRepo) GetPassengerByID(ctx context.Context, id int64) (domain.PassengerProfile, error) {
	return m.getPassengerByID(ctx, id)
}
func (m *mockProfileRepo) GetPassengerByUserID(ctx context.Context, userID int64) (domain.PassengerProfile, error) {
	return m.getPassengerByUserID(ctx, userID)
}
func (m *mockProfileRepo) DeletePassengerByUserID(ctx context.Context, userID int64) error {
	return m.deletePassengerByUserID(ctx, userID)
}
func (m *mockProfileRepo) ListPassengersPaged(ctx context.Context, p domain.PaginationParams) ([]domain.PassengerProfile, int64, error) {
	return m.listPassengersPaged(ctx, p)
}

var _ repo.ProfileRepo = (*mockProfileRepo)(nil)

type mockPlaceRepo struct {
	getOrCreate func(ctx context.Context, name string) (domain.Place, error)
	getByID     func(ctx context.Context, id int64) (domain.Place, error)
	listPaged   func(ctx context.Context, query string, p domain.PaginationParams) ([]domain.Place, int64, error)
	delete      func(ctx context.Context, id int64) error
}

func (m *mockPlaceRepo) GetOrCreate(ctx context.Context, name string) (domain.Place, error) {
	return m.getOrCreate(ctx, name)
}
func (m *mockPlaceRepo) GetByID(ctx context.Context, id int64) (domain.Place, error) {
	return m.getByID(ctx, id)
}
func (m *mockPlaceRepo) ListPaged(ctx context.Context, query string, p domain.PaginationParams) ([]domain.Place, int64, error) {
	return m.listPaged(ctx, query, p)
}
func (m *mockPlaceRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

var _ repo.PlaceRepo = (*mockPlaceRepo)(nil)

// placesByName hands out sequential ids for each distinct name.
func placesByName() *mockPlaceRepo {
	byName := map[string]domain.Place{}
	return &mockPlaceRepo{
		getOrCreate: func(_ context.Context, name string) (domain.Place, error) {
			if p, ok := byName[name]; ok {
				return p, nil
			}
			p := domain.Place{ID: int64(len(byName) + 1), Name: name}
			byName[name] = p
			return p, nil
		},
	}
}

type mockUgurRepo struct {
	create         func(ctx context.Context, u domain.Ugur) (domain.Ugur, error)
	getByID        func(ctx context.Context, id int64) (domain.Ugur, error)
	listPaged      func(ctx context.Context, f domain.UgurFilter, p domain.PaginationParams) ([]domain.Ugur, int64, error)
	update         func(ctx context.Context, id int64, upd domain.UgurUpdate) (domain.Ugur, error)
	setDriver      func(ctx context.Context, id int64, driverID *int64) (domain.Ugur, error)
	incrementViews func(ctx context.Context, id int64) error
	deactivate     func(ctx context.Context, ids []int64, ownerID *int64) (int64, error)
	delete         func(ctx context.Context, id int64) error
}

func (m *mockUgurRepo) Create(ctx context.Context, u domain.Ugur) (domain.Ugur, error) {
	return m.create(ctx, u)
}
func (m *mockUgurRepo) GetByID(ctx context.Context, id int64) (domain.Ugur, error) {
	return m.getByID(ctx, id)
}
func (m *mockUgurRepo) ListPaged(ctx context.Context, f domain.UgurFilter, p domain.PaginationParams) ([]domain.Ugur, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockUgurRepo) Update(ctx context.Context, id int64, upd domain.UgurUpdate) (domain.Ugur, error) {
	return m.update(ctx, id, upd)
}
func (m *mockUgurRepo) SetDriver(ctx context.Context, id int64, driverID *int64) (domain.Ugur, error) {
	return m.setDriver(ctx, id, driverID)
}
func (m *mockUgurRepo) IncrementViews(ctx context.Context, id int64) error {
	return m.incrementViews(ctx, id)
}
func (m *mockUgurRepo) Deactivate(ctx context.Context, ids []int64, ownerID *int64) (int64, error) {
	return m.deactivate(ctx, ids, ownerID)
}
func (m *mockUgurRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

var _ repo.UgurRepo = (*mockUgurRepo)(nil)

// ugursByID serves GetByID from a fixed set of trips.
func ugursByID(ugurs ...domain.Ugur) *mockUgurRepo {
	byID := make(map[int64]domain.Ugur, len(ugurs))
	for _, u := range ugurs {
		byID[u.ID] = u
	}
	return &mockUgurRepo{
		getByID: func(_ context.Context, id int64) (domain.Ugur, error) {
			u, ok := byID[id]
			if !ok {
				return domain.Ugur{}, domain.ErrNotFound
			}
			return u, nil
		},
	}
}

type mockRouteRepo struct {
	create        func(ctx context.Context, r domain.UgurRoute) (domain.UgurRoute, error)
	getByID       func(ctx context.Context, id int64) (domain.UgurRoute, error)
	listByUgur    func(ctx context.Context, ugurID int64) ([]domain.UgurRoute, error)
	listByUgurIDs func(ctx context.Context, ugurIDs []int64) (map[int64][]domain.UgurRoute, error)
	listPaged     func(ctx context.Context, f domain.RouteFilter, p domain.PaginationParams) ([]domain.UgurRoute, int64, error)
	lockForUpdate func(ctx context.Context, id int64) (domain.UgurRoute, error)
	update        func(ctx context.Context, id int64, upd domain.RouteUpdate) (domain.UgurRoute, error)
	delete        func(ctx context.Context, id int64) error
}

func (m *mockRouteRepo) Create(ctx context.Context, r domain.UgurRoute) (domain.UgurRoute, error) {
	return m.create(ctx, r)
}
func (m *mockRouteRepo) GetByID(ctx context.Context, id int64) (domain.UgurRoute, error) {
	return m.getByID(ctx, id)
}
func (m *mockRouteRepo) ListByUgur(ctx context.Context, ugurID int64) ([]domain.UgurRoute, error) {
	return m.listByUgur(ctx, ugurID)
}
func (m *mockRouteRepo) ListByUgurIDs(ctx context.Context, ugurIDs []int64) (map[int64][]domain.UgurRoute, error) {
	return m.listByUgurIDs(ctx, ugurIDs)
}
func (m *mockRouteRepo) ListPaged(ctx context.Context, f domain.RouteFilter, p domain.PaginationParams) ([]domain.UgurRoute, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockRouteRepo) LockForUpdate(ctx context.Context, id int64) (domain.UgurRoute, error) {
	return m.lockForUpdate(ctx, id)
}
func (m *mockRouteRepo) Update(ctx context.Context, id int64, upd domain.RouteUpdate) (domain.UgurRoute, error) {
	return m.update(ctx, id, upd)
}
func (m *mockRouteRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

var _ repo.RouteRepo = (*mockRouteRepo)(nil)

// routesByID serves GetByID and LockForUpdate from a fixed set of legs.
func routesByID(routes ...domain.UgurRoute) *mockRouteRepo {
	byID := make(map[int64]domain.UgurRoute, len(routes))
	for _, r := range routes {
		byID[r.ID] = r
	}
	get := func(_ context.Context, id int64) (domain.UgurRoute, error) {
		r, ok := byID[id]
		if !ok {
			return domain.UgurRoute{}, domain.ErrNotFound
		}
		return r, nil
	}
	return &mockRouteRepo{getByID: get, lockForUpdate: get}
}

type mockBookingRepo struct {
	create       func(ctx context.Context, b domain.Booking) (domain.Booking, error)
	getByID      func(ctx context.Context, id int64) (domain.Booking, error)
	listByUgur   func(ctx context.Context, ugurID int64) ([]domain.Booking, error)
	listVisible  func(ctx context.Context, userID int64, allUsers bool, p domain.PaginationParams) ([]domain.Booking, int64, error)
	updateStatus func(ctx context.Context, id int64, from, to domain.BookingStatus) (domain.Booking, error)
	seatsHeld    func(ctx context.Context, routeID int64) (int, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	return m.create(ctx, b)
}
func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (domain.Booking, error) {
	return m.getByID(ctx, id)
}
func (m *mockBookingRepo) ListByUgur(ctx context.Context, ugurID int64) ([]domain.Booking, error) {
	return m.listByUgur(ctx, ugurID)
}
func (m *mockBookingRepo) ListVisible(ctx context.Context, userID int64, allUsers bool, p domain.PaginationParams) ([]domain.Booking, int64, error) {
	return m.listVisible(ctx, userID, allUsers, p)
}
func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (domain.Booking, error) {
	return m.updateStatus(ctx, id, from, to)
}
func (m *mockBookingRepo) SeatsHeld(ctx context.Context, routeID int64) (int, error) {
	return m.seatsHeld(ctx, routeID)
}

var _ repo.BookingRepo = (*mockBookingRepo)(nil)

type mockLoadRepo struct {
	create    func(ctx context.Context, l domain.Load) (domain.Load, error)
	getByID   func(ctx context.Context, id int64) (domain.Load, error)
	listPaged func(ctx context.Context, f domain.LoadFilter, p domain.PaginationParams) ([]domain.Load, int64, error)
	save      func(ctx context.Context, l domain.Load, from domain.LoadStatus) (domain.Load, error)
}

func (m *mockLoadRepo) Create(ctx context.Context, l domain.Load) (domain.Load, error) {
	return m.create(ctx, l)
}
func (m *mockLoadRepo) GetByID(ctx context.Context, id int64) (domain.Load, error) {
	return m.getByID(ctx, id)
}
func (m *mockLoadRepo) ListPaged(ctx context.Context, f domain.LoadFilter, p domain.PaginationParams) ([]domain.Load, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockLoadRepo) Save(ctx context.Context, l domain.Load, from domain.LoadStatus) (domain.Load, error) {
	return m.save(ctx, l, from)
}

var _ repo.LoadRepo = (*mockLoadRepo)(nil)

type mockReviewRepo struct {
	create          func(ctx context.Context, rv domain.Review) (domain.Review, error)
	listByRecipient func(ctx context.Context, toUserID int64, p domain.PaginationParams) ([]domain.Review, int64, error)
}

func (m *mockReviewRepo) Create(ctx context.Context, rv domain.Review) (domain.Review, error) {
	return m.create(ctx, rv)
}
func (m *mockReviewRepo) ListByRecipient(ctx context.Context, toUserID int64, p domain.PaginationParams) ([]domain.Review, int64, error) {
	return m.listByRecipient(ctx, toUserID, p)
}

var _ repo.ReviewRepo = (*mockReviewRepo)(nil)

type mockNotificationRepo struct {
	create       func(ctx context.Context, n domain.DriverNotification) (domain.DriverNotification, error)
	getByID      func(ctx context.Context, id int64) (domain.DriverNotification, error)
	listByDriver func(ctx context.Context, driverID int64, seen *bool, p domain.PaginationParams) ([]domain.DriverNotification, int64, error)
	markSeen     func(ctx context.Context, id, driverID int64) (domain.DriverNotification, error)
}

func (m *mockNotificationRepo) Create(ctx context.Context, n domain.DriverNotification) (domain.DriverNotification, error) {
	return m.create(ctx, n)
}
func (m *mockNotificationRepo) GetByID(ctx context.Context, id int64) (domain.DriverNotification, error) {
	return m.getByID(ctx, id)
}
func (m *mockNotificationRepo) ListByDriver(ctx context.Context, driverID int64, seen *bool, p domain.PaginationParams) ([]domain.DriverNotification, int64, error) {
	return m.listByDriver(ctx, driverID, seen, p)
}
func (m *mockNotificationRepo) MarkSeen(ctx context.Context, id, driverID int64) (domain.DriverNotification, error) {
	return m.markSeen(ctx, id, driverID)
}

var _ repo.NotificationRepo = (*mockNotificationRepo)(nil)

type mockCurrentPlaceRepo struct {
	create     func(ctx context.Context, c domain.CurrentPlace) (domain.CurrentPlace, error)
	listByUser func(ctx context.Context, userID int64, p domain.PaginationParams) ([]domain.CurrentPlace, int64, error)
	delete     func(ctx context.Context, id, userID int64) error
}

func (m *mockCurrentPlaceRepo) Create(ctx context.Context, c domain.CurrentPlace) (domain.CurrentPlace, error) {
	return m.create(ctx, c)
}
func (m *mockCurrentPlaceRepo) ListByUser(ctx context.Context, userID int64, p domain.PaginationParams) ([]domain.CurrentPlace, int64, error) {
	return m.listByUser(ctx, userID, p)
}
func (m *mockCurrentPlaceRepo) Delete(ctx context.Context, id, userID int64) error {
	return m.delete(ctx, id, userID)
}

var _ repo.CurrentPlaceRepo = (*mockCurrentPlaceRepo)(nil)

type mockDeviceTokenRepo struct {
	upsert       func(ctx context.Context, t domain.DeviceToken) (domain.DeviceToken, error)
	listByUser   func(ctx context.Context, userID int64) ([]domain.DeviceToken, error)
	deleteTokens func(ctx context.Context, tokens []string) error
}

func (m *mockDeviceTokenRepo) Upsert(ctx context.Context, t domain.DeviceToken) (domain.DeviceToken, error) {
	return m.upsert(ctx, t)
}
func (m *mockDeviceTokenRepo) ListByUser(ctx context.Context, userID int64) ([]domain.DeviceToken, error) {
	return m.listByUser(ctx, userID)
}
func (m *mockDeviceTokenRepo) DeleteTokens(ctx context.Context, tokens []string) error {
	return m.deleteTokens(ctx, tokens)
}

var _ repo.DeviceTokenRepo = (*mockDeviceTokenRepo)(nil)

// fakeTx runs fn against the same repos with no real transaction.
// Set err to make InTx fail as if commit failed.
type fakeTx struct {
	repos repo.Repos
	calls int
	err   error
}

func (f *fakeTx) InTx(_ context.Context, fn func(repo.Repos) error) error {
	f.calls++
	if err := fn(f.repos); err != nil {
		return err
	}
	return f.err
}

var _ repo.Transactor = (*fakeTx)(nil)

func ptr[T any](v T) *T { return &v }

var (
	driverUser    = domain.User{ID: 1, Phone: "+99361000001", FirstName: "Aman", IsDriver: true}
	passengerUser = domain.User{ID: 2, Phone: "+99361000002", FirstName: "Maral", IsPassenger: true}
	staffUser     = domain.User{ID: 3, Phone: "+99361000003", FirstName: "Admin", IsStaff: true}
	otherUser     = domain.User{ID: 4, Phone: "+99361000004", FirstName: "Başga", IsPassenger: true}
)
