package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// ProfileRepo defines the persistence operations for driver and passenger
// profiles. Each user owns at most one of each.
type ProfileRepo interface {
	// EnsureDriver returns the user's driver profile, creating an empty one
	// if none exists.
	EnsureDriver(ctx context.Context, userID int64) (domain.DriverProfile, error)

	// GetDriverByID retrieves a driver profile by its own id.
	GetDriverByID(ctx context.Context, id int64) (domain.DriverProfile, error)

	// GetDriverByUserID retrieves the driver profile of a user.
	GetDriverByUserID(ctx context.Context, userID int64) (domain.DriverProfile, error)

	// UpdateDriver overwrites the vehicle fields. Returns domain.ErrConflict
	// when the plate belongs to another profile.
	UpdateDriver(ctx context.Context, p domain.DriverProfile) (domain.DriverProfile, error)

	// DeleteDriverByUserID hard-deletes the user's driver profile. Deleting a
	// missing profile is not an error.
	DeleteDriverByUserID(ctx context.Context, userID int64) error

	// ListDriversPaged returns one page of driver profiles ordered by id.
	ListDriversPaged(ctx context.Context, p domain.PaginationParams) ([]domain.DriverProfile, int64, error)

	// EnsurePassenger returns the user's passenger profile, creating it if needed.
	EnsurePassenger(ctx context.Context, userID int64) (domain.PassengerProfile, error)

	// GetPassengerByID retrieves a passenger profile by its own id.
	GetPassengerByID(ctx context.Context, id int64) (domain.PassengerProfile, error)

	// GetPassengerByUserID retrieves the passenger profile of a user.
	GetPassengerByUserID(ctx context.Context, userID int64) (domain.PassengerProfile, error)

	// DeletePassengerByUserID hard-deletes the user's passenger profile.
	DeletePassengerByUserID(ctx context.Context, userID int64) error

	// ListPassengersPaged returns one page of passenger profiles ordered by id.
	ListPassengersPaged(ctx context.Context, p domain.PaginationParams) ([]domain.PassengerProfile, int64, error)
}

type pgProfileRepo struct {
	db db
}

// NewProfileRepo constructs a ProfileRepo backed by the provided db connection.
func NewProfileRepo(db db) ProfileRepo {
	return &pgProfileRepo{db: db}
}

const driverProfileColumns = `id, user_id, make, model, color, COALESCE(plate, ''), car_year,
	rating, trip_count, is_verified, on_duty, created_at, updated_at`

// EnsureDriver uses the DO UPDATE SET trick so RETURNING fires on conflict.
func (r *pgProfileRepo) EnsureDriver(ctx context.Context, userID int64) (domain.DriverProfile, error) {
	const q = `
		INSERT INTO driver_profiles (user_id)
		VALUES (@user_id)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + driverProfileColumns

	result, err := scanDriverProfile(r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID}))
	if err != nil {
		return domain.DriverProfile{}, fmt.Errorf("repo.ProfileRepo.EnsureDriver: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgProfileRepo) GetDriverByID(ctx context.Context, id int64) (domain.DriverProfile, error) {
	const q = `SELECT ` + driverProfileColumns + ` FROM driver_profiles WHERE id = @id`

	result, err := scanDriverProfile(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.DriverProfile{}, fmt.Errorf("repo.ProfileRepo.GetDriverByID: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgProfileRepo) GetDriverByUserID(ctx context.Context, userID int64) (domain.DriverProfile, error) {
	const q = `SELECT ` + driverProfileColumns + ` FROM driver_profiles WHERE user_id = @user_id`

	result, err := scanDriverProfile(r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID}))
	if err != nil {
		return domain.DriverProfile{}, fmt.Errorf("repo.ProfileRepo.GetDriverByUserID: %w", mapErr(err))
	}
	return result, nil
}

// UpdateDriver stores an empty plate as NULL so the unique index ignores it.
func (r *pgProfileRepo) UpdateDriver(ctx context.Context, p domain.DriverProfile) (domain.DriverProfile, error) {
	const q = `
		UPDATE driver_profiles
		SET make       = @make,
		    model      = @model,
		    color      = @color,
		    plate      = NULLIF(@plate::text, ''),
		    car_year   = @car_year,
		    updated_at = now()
		WHERE id = @id
		RETURNING ` + driverProfileColumns

	args := pgx.NamedArgs{
		"id":       p.ID,
		"make":     p.Make,
		"model":    p.Model,
		"color":    p.Color,
		"plate":    p.Plate,
		"car_year": p.CarYear, // nil becomes NULL
	}
	result, err := scanDriverProfile(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.DriverProfile{}, fmt.Errorf("repo.ProfileRepo.UpdateDriver: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgProfileRepo) DeleteDriverByUserID(ctx context.Context, userID int64) error {
	const q = `DELETE FROM driver_profiles WHERE user_id = @user_id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"user_id": userID}); err != nil {
		return fmt.Errorf("repo.ProfileRepo.DeleteDriverByUserID: %w", err)
	}
	return nil
}

func (r *pgProfileRepo) ListDriversPaged(ctx context.Context, p domain.PaginationParams) ([]domain.DriverProfile, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM driver_profiles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ProfileRepo.ListDriversPaged: count: %w", err)
	}

	const q = `SELECT ` + driverProfileColumns + ` FROM driver_profiles
		ORDER BY id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ProfileRepo.ListDriversPaged: %w", err)
	}
	defer rows.Close()

	profiles := []domain.DriverProfile{}
	for rows.Next() {
		dp, err := scanDriverProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ProfileRepo.ListDriversPaged: scan: %w", err)
		}
		profiles = append(profiles, dp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ProfileRepo.ListDriversPaged: rows: %w", err)
	}
	return profiles, total, nil
}

const passengerProfileColumns = `id, user_id, rating, completed_rides, created_at`

func (r *pgProfileRepo) EnsurePassenger(ctx context.Context, userID int64) (domain.PassengerProfile, error) {
	const q = `
		INSERT INTO passenger_profiles (user_id)
		VALUES (@user_id)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + passengerProfileColumns

	result, err := scanPassengerProfile(r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID}))
	if err != nil {
		return domain.PassengerProfile{}, fmt.Errorf("repo.ProfileRepo.EnsurePassenger: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgProfileRepo) GetPassengerByID(ctx context.Context, id int64) (domain.PassengerProfile, error) {
	const q = `SELECT ` + passengerProfileColumns + ` FROM passenger_profiles WHERE id = @id`

	result, err := scanPassengerProfile(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.PassengerProfile{}, fmt.Errorf("repo.ProfileRepo.GetPassengerByID: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgProfileRepo) GetPassengerByUserID(ctx context.Context, userID int64) (domain.PassengerProfile, error) {
	const q = `SELECT ` + passengerProfileColumns + ` FROM passenger_profiles WHERE user_id = @user_id`

	result, err := scanPassengerProfile(r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID}))
	if err != nil {
		return domain.PassengerProfile{}, fmt.Errorf("repo.ProfileRepo.GetPassengerByUserID: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgProfileRepo) DeletePassengerByUserID(ctx context.Context, userID int64) error {
	const q = `DELETE FROM passenger_profiles WHERE user_id = @user_id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"user_id": userID}); err != nil {
		return fmt.Errorf("repo.ProfileRepo.DeletePassengerByUserID: %w", err)
	}
	return nil
}

func (r *pgProfileRepo) ListPassengersPaged(ctx context.Context, p domain.PaginationParams) ([]domain.PassengerProfile, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM passenger_profiles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ProfileRepo.ListPassengersPaged: count: %w", err)
	}

	const q = `SELECT ` + passengerProfileColumns + ` FROM passenger_profiles
		ORDER BY id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ProfileRepo.ListPassengersPaged: %w", err)
	}
	defer rows.Close()

	profiles := []domain.PassengerProfile{}
	for rows.Next() {
		pp, err := scanPassengerProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ProfileRepo.ListPassengersPaged: scan: %w", err)
		}
		profiles = append(profiles, pp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ProfileRepo.ListPassengersPaged: rows: %w", err)
	}
	return profiles, total, nil
}

func scanDriverProfile(s scanner) (domain.DriverProfile, error) {
	var p domain.DriverProfile
	err := s.Scan(&p.ID, &p.UserID, &p.Make, &p.Model, &p.Color, &p.Plate, &p.CarYear,
		&p.Rating, &p.TripCount, &p.IsVerified, &p.OnDuty, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.DriverProfile{}, err
	}
	return p, nil
}

func scanPassengerProfile(s scanner) (domain.PassengerProfile, error) {
	var p domain.PassengerProfile
	err := s.Scan(&p.ID, &p.UserID, &p.Rating, &p.CompletedRides, &p.CreatedAt)
	if err != nil {
		return domain.PassengerProfile{}, err
	}
	return p, nil
}
