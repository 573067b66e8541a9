package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// UserRepo defines the persistence operations for Users.
type UserRepo interface {
	// Create inserts a user. Returns domain.ErrConflict if the phone is taken.
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// GetByID retrieves an active user. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (domain.User, error)

	// GetByPhone retrieves an active user by phone number.
	GetByPhone(ctx context.Context, phone string) (domain.User, error)

	// GetByDriverProfileID resolves the owner of a driver profile.
	GetByDriverProfileID(ctx context.Context, profileID int64) (domain.User, error)

	// GetByPassengerProfileID resolves the owner of a passenger profile.
	GetByPassengerProfileID(ctx context.Context, profileID int64) (domain.User, error)

	// ListPaged returns one page of active users matching the filter and the total count.
	ListPaged(ctx context.Context, f domain.UserFilter, p domain.PaginationParams) ([]domain.User, int64, error)

	// SetRoles overwrites both role flags.
	SetRoles(ctx context.Context, id int64, isDriver, isPassenger bool) (domain.User, error)
}

type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

const userColumns = `u.id, u.phone, u.first_name, u.last_name, u.password_hash,
	u.is_driver, u.is_passenger, u.is_staff, u.is_active, u.date_joined`

func (r *pgUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users AS u (phone, first_name, last_name, password_hash, is_driver, is_passenger)
		VALUES (@phone, @first_name, @last_name, @password_hash, @is_driver, @is_passenger)
		RETURNING ` + userColumns

	args := pgx.NamedArgs{
		"phone":         u.Phone,
		"first_name":    u.FirstName,
		"last_name":     u.LastName,
		"password_hash": u.PasswordHash,
		"is_driver":     u.IsDriver,
		"is_passenger":  u.IsPassenger,
	}
	result, err := scanUser(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users u WHERE u.id = @id AND u.is_active`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgUserRepo) GetByPhone(ctx context.Context, phone string) (domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users u WHERE u.phone = @phone AND u.is_active`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"phone": phone}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByPhone: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgUserRepo) GetByDriverProfileID(ctx context.Context, profileID int64) (domain.User, error) {
	const q = `
		SELECT ` + userColumns + `
		FROM users u
		JOIN driver_profiles dp ON dp.user_id = u.id
		WHERE dp.id = @id`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": profileID}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByDriverProfileID: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgUserRepo) GetByPassengerProfileID(ctx context.Context, profileID int64) (domain.User, error) {
	const q = `
		SELECT ` + userColumns + `
		FROM users u
		JOIN passenger_profiles pp ON pp.user_id = u.id
		WHERE pp.id = @id`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": profileID}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByPassengerProfileID: %w", mapErr(err))
	}
	return result, nil
}

// ListPaged matches the query against phone and both name fields.
func (r *pgUserRepo) ListPaged(ctx context.Context, f domain.UserFilter, p domain.PaginationParams) ([]domain.User, int64, error) {
	const where = `
		WHERE u.is_active
		  AND (@q::text = '' OR u.phone ILIKE '%' || @q::text || '%'
		       OR u.first_name ILIKE '%' || @q::text || '%'
		       OR u.last_name ILIKE '%' || @q::text || '%')`

	args := pgx.NamedArgs{"q": f.Query, "limit": p.Limit, "offset": p.Offset()}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM users u`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.UserRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users u`+where+`
		ORDER BY u.id
		LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.UserRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.UserRepo.ListPaged: scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.UserRepo.ListPaged: rows: %w", err)
	}
	return users, total, nil
}

func (r *pgUserRepo) SetRoles(ctx context.Context, id int64, isDriver, isPassenger bool) (domain.User, error) {
	const q = `
		UPDATE users AS u
		SET is_driver = @is_driver, is_passenger = @is_passenger
		WHERE u.id = @id
		RETURNING ` + userColumns

	args := pgx.NamedArgs{"id": id, "is_driver": isDriver, "is_passenger": isPassenger}
	result, err := scanUser(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.SetRoles: %w", mapErr(err))
	}
	return result, nil
}

func scanUser(s scanner) (domain.User, error) {
	var u domain.User
	err := s.Scan(&u.ID, &u.Phone, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.IsDriver, &u.IsPassenger, &u.IsStaff, &u.IsActive, &u.DateJoined)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}
