package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
)

// UserService implements registration, login, role toggling, and profile
// maintenance. Role changes touch the user row and both profile tables, so
// they run inside one transaction.
type UserService struct {
	tx       repo.Transactor
	users    repo.UserRepo
	profiles repo.ProfileRepo
	policy   domain.ProfilePolicy
	hashCost int
}

// NewUserService constructs a UserService. users and profiles serve reads;
// writes go through tx.
func NewUserService(tx repo.Transactor, users repo.UserRepo, profiles repo.ProfileRepo, policy domain.ProfilePolicy) *UserService {
	return &UserService{tx: tx, users: users, profiles: profiles, policy: policy, hashCost: bcrypt.DefaultCost}
}

// WithHashCost returns a copy of the service hashing passwords at cost.
// Tests use bcrypt.MinCost to stay fast.
func (s *UserService) WithHashCost(cost int) *UserService {
	c := *s
	c.hashCost = cost
	return &c
}

// Register validates the input, hashes the password, and creates the user
// with the profiles its roles imply. A driver profile is only created when
// vehicle data is supplied; the role update or the driver profile patch
// creates it later otherwise.
// Returns domain.ErrConflict when the phone or plate is already taken.
func (s *UserService) Register(ctx context.Context, reg domain.Registration) (domain.Account, error) {
	if err := reg.Validate(); err != nil {
		return domain.Account{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.hashCost)
	if err != nil {
		return domain.Account{}, fmt.Errorf("service.UserService.Register: hash password: %w", err)
	}

	var acct domain.Account
	err = s.tx.InTx(ctx, func(r repo.Repos) error {
		u, err := r.Users.Create(ctx, domain.User{
			Phone:        reg.Phone,
			FirstName:    reg.FirstName,
			LastName:     reg.LastName,
			PasswordHash: string(hash),
			IsDriver:     reg.IsDriver,
			IsPassenger:  reg.IsPassenger,
		})
		if err != nil {
			return err
		}
		acct, err = syncProfiles(ctx, r, u, reg.DriverProfile, s.policy, false)
		return err
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("service.UserService.Register: %w", err)
	}
	return acct, nil
}

// Login checks the password and that the user holds the requested role.
// Unknown phones and wrong passwords both yield domain.ErrUnauthorized; a
// correct password for a role the user does not hold yields
// domain.ErrForbidden.
func (s *UserService) Login(ctx context.Context, phone, password string, role domain.LoginRole) (domain.User, error) {
	if role != domain.LoginAsDriver && role != domain.LoginAsPassenger {
		return domain.User{}, domain.NewFieldError("role", "must be driver or passenger")
	}
	u, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%w: invalid phone or password", domain.ErrUnauthorized)
		}
		return domain.User{}, fmt.Errorf("service.UserService.Login: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, fmt.Errorf("%w: invalid phone or password", domain.ErrUnauthorized)
	}
	if !role.Permits(u) {
		return domain.User{}, forbidden("user is not a %s", role)
	}
	return u, nil
}

// GetAccount returns a user with the profiles it holds.
func (s *UserService) GetAccount(ctx context.Context, id int64) (domain.Account, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.Account{}, fmt.Errorf("service.UserService.GetAccount: %w", err)
	}
	acct := domain.Account{User: u}
	if dp, err := s.profiles.GetDriverByUserID(ctx, id); err == nil {
		acct.Driver = &dp
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Account{}, fmt.Errorf("service.UserService.GetAccount: %w", err)
	}
	if pp, err := s.profiles.GetPassengerByUserID(ctx, id); err == nil {
		acct.Passenger = &pp
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Account{}, fmt.Errorf("service.UserService.GetAccount: %w", err)
	}
	return acct, nil
}

// List returns one page of active users matching the filter.
func (s *UserService) List(ctx context.Context, f domain.UserFilter, p domain.PaginationParams) (domain.Page[domain.User], error) {
	users, total, err := s.users.ListPaged(ctx, f, p)
	if err != nil {
		return domain.Page[domain.User]{}, fmt.Errorf("service.UserService.List: %w", err)
	}
	return domain.Page[domain.User]{Items: users, Total: total, Params: p}, nil
}

// UpdateRoles sets both role flags and reconciles the profiles:
// turning driver on creates or updates the driver profile, turning a role
// off deletes its profile when the policy says so. Repeating the same call
// is a no-op apart from the optional vehicle patch.
func (s *UserService) UpdateRoles(ctx context.Context, userID int64, upd domain.RoleUpdate) (domain.Account, error) {
	if upd.DriverProfile != nil && !upd.IsDriver {
		return domain.Account{}, domain.NewFieldError("driver_profile", "requires is_driver")
	}

	var acct domain.Account
	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		u, err := r.Users.SetRoles(ctx, userID, upd.IsDriver, upd.IsPassenger)
		if err != nil {
			return err
		}
		acct, err = syncProfiles(ctx, r, u, upd.DriverProfile, s.policy, true)
		return err
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("service.UserService.UpdateRoles: %w", err)
	}
	return acct, nil
}

// UpdateDriverProfile applies a partial vehicle update to the user's own
// driver profile. Users without the driver role are forbidden.
func (s *UserService) UpdateDriverProfile(ctx context.Context, userID int64, patch domain.DriverProfilePatch) (domain.DriverProfile, error) {
	u, err := loadActor(ctx, s.users, userID)
	if err != nil {
		return domain.DriverProfile{}, fmt.Errorf("service.UserService.UpdateDriverProfile: %w", err)
	}
	if !u.IsDriver {
		return domain.DriverProfile{}, forbidden("user is not a driver")
	}

	var dp domain.DriverProfile
	err = s.tx.InTx(ctx, func(r repo.Repos) error {
		var err error
		dp, err = applyDriverPatch(ctx, r.Profiles, userID, &patch)
		return err
	})
	if err != nil {
		return domain.DriverProfile{}, fmt.Errorf("service.UserService.UpdateDriverProfile: %w", err)
	}
	return dp, nil
}

// syncProfiles brings the profile rows in line with the user's role flags.
// With emptyDriver false, a driver without vehicle data gets no profile.
func syncProfiles(ctx context.Context, r repo.Repos, u domain.User, patch *domain.DriverProfilePatch, policy domain.ProfilePolicy, emptyDriver bool) (domain.Account, error) {
	acct := domain.Account{User: u}

	hasVehicle := patch != nil && !patch.IsEmpty()
	switch {
	case u.IsDriver && (emptyDriver || hasVehicle):
		dp, err := applyDriverPatch(ctx, r.Profiles, u.ID, patch)
		if err != nil {
			return domain.Account{}, err
		}
		acct.Driver = &dp
	case u.IsDriver:
		// no vehicle data yet
	case policy.DeleteDriverProfileOnRoleRemoval:
		if err := r.Profiles.DeleteDriverByUserID(ctx, u.ID); err != nil {
			return domain.Account{}, err
		}
	}

	switch {
	case u.IsPassenger:
		pp, err := r.Profiles.EnsurePassenger(ctx, u.ID)
		if err != nil {
			return domain.Account{}, err
		}
		acct.Passenger = &pp
	case policy.DeletePassengerProfileOnRoleRemoval:
		if err := r.Profiles.DeletePassengerByUserID(ctx, u.ID); err != nil {
			return domain.Account{}, err
		}
	}
	return acct, nil
}

// applyDriverPatch ensures the driver profile exists and applies patch to it.
func applyDriverPatch(ctx context.Context, profiles repo.ProfileRepo, userID int64, patch *domain.DriverProfilePatch) (domain.DriverProfile, error) {
	dp, err := profiles.EnsureDriver(ctx, userID)
	if err != nil {
		return domain.DriverProfile{}, err
	}
	if patch == nil || patch.IsEmpty() {
		return dp, nil
	}
	patch.Apply(&dp)
	if err := dp.Validate(); err != nil {
		return domain.DriverProfile{}, err
	}
	return profiles.UpdateDriver(ctx, dp)
}
