package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
	"github.com/ugurtm/ugur-backend/internal/service"
)

// profileRecorder is a ProfileRepo that keeps profiles in memory and
// records deletions.
type profileRecorder struct {
	mockProfileRepo
	drivers          map[int64]domain.DriverProfile
	passengers       map[int64]domain.PassengerProfile
	deletedDriver    []int64
	deletedPassenger []int64
}

func newProfileRecorder() *profileRecorder {
	p := &profileRecorder{
		drivers:    map[int64]domain.DriverProfile{},
		passengers: map[int64]domain.PassengerProfile{},
	}
	nextDriverID := int64(100)
	p.ensureDriver = func(_ context.Context, userID int64) (domain.DriverProfile, error) {
		dp, ok := p.drivers[userID]
		if !ok {
			nextDriverID++
			dp = domain.DriverProfile{ID: nextDriverID, UserID: userID, Rating: domain.DefaultDriverRating}
			p.drivers[userID] = dp
		}
		return dp, nil
	}
	p.updateDriver = func(_ context.Context, dp domain.DriverProfile) (domain.DriverProfile, error) {
		p.drivers[dp.UserID] = dp
		return dp, nil
	}
	p.deleteDriverByUserID = func(_ context.Context, userID int64) error {
		delete(p.drivers, userID)
		p.deletedDriver = append(p.deletedDriver, userID)
		return nil
	}
	p.ensurePassenger = func(_ context.Context, userID int64) (domain.PassengerProfile, error) {
		pp, ok := p.passengers[userID]
		if !ok {
			pp = domain.PassengerProfile{ID: userID + 200, UserID: userID}
			p.passengers[userID] = pp
		}
		return pp, nil
	}
	p.deletePassengerByUserID = func(_ context.Context, userID int64) error {
		delete(p.passengers, userID)
		p.deletedPassenger = append(p.deletedPassenger, userID)
		return nil
	}
	return p
}

func newUserService(users *mockUserRepo, profiles repo.ProfileRepo) *service.UserService {
	tx := &fakeTx{repos: repo.Repos{Users: users, Profiles: profiles}}
	return service.NewUserService(tx, users, profiles, domain.DefaultProfilePolicy()).WithHashCost(bcrypt.MinCost)
}

func validRegistration() domain.Registration {
	return domain.Registration{
		Phone:       "+99365123456",
		FirstName:   "Aman",
		LastName:    "Amanow",
		Password:    "gizlin-soz",
		IsPassenger: true,
	}
}

// ---- Register --------------------------------------------------------------

func TestUserService_Register_HashesPasswordAndCreatesProfiles(t *testing.T) {
	var stored domain.User
	users := &mockUserRepo{
		create: func(_ context.Context, u domain.User) (domain.User, error) {
			u.ID = 10
			stored = u
			return u, nil
		},
	}
	profiles := newProfileRecorder()
	svc := newUserService(users, profiles)

	reg := validRegistration()
	reg.IsDriver = true
	reg.DriverProfile = &domain.DriverProfilePatch{Make: ptr("Toyota"), Plate: ptr("ag 1234")}

	acct, err := svc.Register(context.Background(), reg)

	require.NoError(t, err)
	assert.NotEqual(t, reg.Password, stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(reg.Password)))
	require.NotNil(t, acct.Driver)
	assert.Equal(t, "Toyota", acct.Driver.Make)
	assert.Equal(t, "AG 1234", acct.Driver.Plate)
	require.NotNil(t, acct.Passenger)
	assert.Equal(t, int64(10), acct.Passenger.UserID)
}

func TestUserService_Register_DriverWithoutVehicleHasNoProfile(t *testing.T) {
	users := &mockUserRepo{
		create: func(_ context.Context, u domain.User) (domain.User, error) {
			u.ID = 11
			return u, nil
		},
	}
	profiles := newProfileRecorder()
	svc := newUserService(users, profiles)

	reg := validRegistration()
	reg.IsDriver = true
	acct, err := svc.Register(context.Background(), reg)

	require.NoError(t, err)
	assert.True(t, acct.User.IsDriver)
	assert.Nil(t, acct.Driver)
	assert.Empty(t, profiles.drivers)
	require.NotNil(t, acct.Passenger)
}

func TestUserService_Register_InvalidPhone(t *testing.T) {
	svc := newUserService(&mockUserRepo{}, newProfileRecorder())

	reg := validRegistration()
	reg.Phone = "865123456"
	_, err := svc.Register(context.Background(), reg)

	require.ErrorIs(t, err, domain.ErrValidation)
	var fe *domain.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "phone", fe.Field)
}

func TestUserService_Register_ShortPassword(t *testing.T) {
	svc := newUserService(&mockUserRepo{}, newProfileRecorder())

	reg := validRegistration()
	reg.Password = "123"
	_, err := svc.Register(context.Background(), reg)

	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserService_Register_DriverProfileWithoutDriverRole(t *testing.T) {
	svc := newUserService(&mockUserRepo{}, newProfileRecorder())

	reg := validRegistration()
	reg.DriverProfile = &domain.DriverProfilePatch{Make: ptr("Lada")}
	_, err := svc.Register(context.Background(), reg)

	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserService_Register_DuplicatePhone(t *testing.T) {
	users := &mockUserRepo{
		create: func(_ context.Context, _ domain.User) (domain.User, error) {
			return domain.User{}, domain.ErrConflict
		},
	}
	svc := newUserService(users, newProfileRecorder())

	_, err := svc.Register(context.Background(), validRegistration())

	require.ErrorIs(t, err, domain.ErrConflict)
}

// ---- Login -----------------------------------------------------------------

func loginUsers(t *testing.T, u domain.User, password string) *mockUserRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u.PasswordHash = string(hash)
	return &mockUserRepo{
		getByPhone: func(_ context.Context, phone string) (domain.User, error) {
			if phone != u.Phone {
				return domain.User{}, domain.ErrNotFound
			}
			return u, nil
		},
	}
}

func TestUserService_Login(t *testing.T) {
	users := loginUsers(t, passengerUser, "dogry-soz")
	svc := newUserService(users, newProfileRecorder())
	ctx := context.Background()

	tests := []struct {
		name     string
		phone    string
		password string
		role     domain.LoginRole
		wantErr  error
	}{
		{"passenger ok", passengerUser.Phone, "dogry-soz", domain.LoginAsPassenger, nil},
		{"wrong password", passengerUser.Phone, "nadogry", domain.LoginAsPassenger, domain.ErrUnauthorized},
		{"unknown phone", "+99361999999", "dogry-soz", domain.LoginAsPassenger, domain.ErrUnauthorized},
		{"role not held", passengerUser.Phone, "dogry-soz", domain.LoginAsDriver, domain.ErrForbidden},
		{"unknown role", passengerUser.Phone, "dogry-soz", domain.LoginRole("admin"), domain.ErrValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, err := svc.Login(ctx, tc.phone, tc.password, tc.role)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, passengerUser.ID, u.ID)
		})
	}
}

// ---- UpdateRoles -----------------------------------------------------------

func TestUserService_UpdateRoles_DroppingDriverDeletesProfile(t *testing.T) {
	users := &mockUserRepo{
		setRoles: func(_ context.Context, id int64, isDriver, isPassenger bool) (domain.User, error) {
			return domain.User{ID: id, IsDriver: isDriver, IsPassenger: isPassenger}, nil
		},
	}
	profiles := newProfileRecorder()
	profiles.drivers[7] = domain.DriverProfile{ID: 70, UserID: 7}
	svc := newUserService(users, profiles)

	acct, err := svc.UpdateRoles(context.Background(), 7, domain.RoleUpdate{IsPassenger: true})

	require.NoError(t, err)
	assert.Nil(t, acct.Driver)
	require.NotNil(t, acct.Passenger)
	assert.Equal(t, []int64{7}, profiles.deletedDriver)
	assert.Empty(t, profiles.deletedPassenger)
}

func TestUserService_UpdateRoles_ReenableDriverStartsEmpty(t *testing.T) {
	users := &mockUserRepo{
		setRoles: func(_ context.Context, id int64, isDriver, isPassenger bool) (domain.User, error) {
			return domain.User{ID: id, IsDriver: isDriver, IsPassenger: isPassenger}, nil
		},
	}
	profiles := newProfileRecorder()
	profiles.drivers[7] = domain.DriverProfile{ID: 70, UserID: 7, Make: "Toyota", Plate: "AG 1234", TripCount: 12}
	svc := newUserService(users, profiles)
	ctx := context.Background()

	_, err := svc.UpdateRoles(ctx, 7, domain.RoleUpdate{IsPassenger: true})
	require.NoError(t, err)
	acct, err := svc.UpdateRoles(ctx, 7, domain.RoleUpdate{IsDriver: true, IsPassenger: true})

	require.NoError(t, err)
	require.NotNil(t, acct.Driver)
	assert.NotEqual(t, int64(70), acct.Driver.ID)
	assert.Empty(t, acct.Driver.Make)
	assert.Empty(t, acct.Driver.Plate)
	assert.Zero(t, acct.Driver.TripCount)
	assert.Equal(t, domain.DefaultDriverRating, acct.Driver.Rating)
}

func TestUserService_UpdateRoles_IsIdempotent(t *testing.T) {
	users := &mockUserRepo{
		setRoles: func(_ context.Context, id int64, isDriver, isPassenger bool) (domain.User, error) {
			return domain.User{ID: id, IsDriver: isDriver, IsPassenger: isPassenger}, nil
		},
	}
	profiles := newProfileRecorder()
	svc := newUserService(users, profiles)
	upd := domain.RoleUpdate{IsDriver: true, IsPassenger: true}

	first, err := svc.UpdateRoles(context.Background(), 7, upd)
	require.NoError(t, err)
	second, err := svc.UpdateRoles(context.Background(), 7, upd)
	require.NoError(t, err)

	assert.Equal(t, first.Driver.ID, second.Driver.ID)
	assert.Equal(t, first.Passenger.ID, second.Passenger.ID)
	assert.Len(t, profiles.drivers, 1)
}

func TestUserService_UpdateRoles_PatchRequiresDriver(t *testing.T) {
	svc := newUserService(&mockUserRepo{}, newProfileRecorder())

	_, err := svc.UpdateRoles(context.Background(), 7, domain.RoleUpdate{
		IsPassenger:   true,
		DriverProfile: &domain.DriverProfilePatch{Color: ptr("ak")},
	})

	require.ErrorIs(t, err, domain.ErrValidation)
}

// ---- UpdateDriverProfile ---------------------------------------------------

func TestUserService_UpdateDriverProfile_NonDriverForbidden(t *testing.T) {
	svc := newUserService(usersByID(passengerUser), newProfileRecorder())

	_, err := svc.UpdateDriverProfile(context.Background(), passengerUser.ID, domain.DriverProfilePatch{Make: ptr("Kia")})

	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUserService_UpdateDriverProfile_RejectsBadYear(t *testing.T) {
	svc := newUserService(usersByID(driverUser), newProfileRecorder())

	_, err := svc.UpdateDriverProfile(context.Background(), driverUser.ID, domain.DriverProfilePatch{CarYear: ptr(1850)})

	var fe *domain.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "car_year", fe.Field)
}

// ---- GetAccount ------------------------------------------------------------

func TestUserService_GetAccount_MissingProfilesAreNil(t *testing.T) {
	profiles := newProfileRecorder()
	profiles.getDriverByUserID = func(_ context.Context, _ int64) (domain.DriverProfile, error) {
		return domain.DriverProfile{}, domain.ErrNotFound
	}
	profiles.getPassengerByUserID = func(_ context.Context, userID int64) (domain.PassengerProfile, error) {
		return domain.PassengerProfile{ID: 5, UserID: userID}, nil
	}
	svc := newUserService(usersByID(passengerUser), profiles)

	acct, err := svc.GetAccount(context.Background(), passengerUser.ID)

	require.NoError(t, err)
	assert.Nil(t, acct.Driver)
	require.NotNil(t, acct.Passenger)
	assert.Equal(t, int64(5), acct.Passenger.ID)
}
