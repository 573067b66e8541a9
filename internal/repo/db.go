// Package repo contains all database access logic for the Ugur API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txStarter is satisfied by *pgxpool.Pool and pgx.Tx (which nests via savepoints).
type txStarter interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scan helpers to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// Postgres error codes mapped onto domain sentinels.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// mapErr translates driver errors into domain sentinels. Unknown errors are
// returned unchanged so callers can still wrap them.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrConflict, constraintMessage(pgErr.ConstraintName))
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", domain.ErrNotFound, constraintMessage(pgErr.ConstraintName))
		case pgCheckViolation:
			return fmt.Errorf("%w: %s", domain.ErrValidation, constraintMessage(pgErr.ConstraintName))
		}
	}
	return err
}

// staleStatus explains an update guarded on the current status that
// touched no row: the row is gone (ErrNotFound) or another writer moved
// it first (ErrConflict). table is always a package constant.
func staleStatus(ctx context.Context, db db, table string, id int64) error {
	var exists bool
	err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = @id)`, pgx.NamedArgs{"id": id}).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%w: %s %d changed status concurrently", domain.ErrConflict, table, id)
}

// constraintMessage turns a constraint name into a caller-facing reason.
func constraintMessage(name string) string {
	switch name {
	case "users_phone_key":
		return "phone already registered"
	case "driver_profiles_plate_key":
		return "plate already registered"
	case "driver_profiles_user_id_key", "passenger_profiles_user_id_key":
		return "profile already exists"
	case "bookings_route_passenger_key":
		return "passenger already booked this route"
	case "places_name_key":
		return "place already exists"
	case "users_phone_format":
		return "phone has an invalid format"
	case "":
		return "constraint violated"
	}
	return name
}

// Repos bundles every repository bound to the same connection or transaction.
type Repos struct {
	Users         UserRepo
	Profiles      ProfileRepo
	Places        PlaceRepo
	Ugurs         UgurRepo
	Routes        RouteRepo
	Bookings      BookingRepo
	Loads         LoadRepo
	Reviews       ReviewRepo
	Notifications NotificationRepo
	CurrentPlaces CurrentPlaceRepo
	DeviceTokens  DeviceTokenRepo
}

// NewRepos constructs every repository against db.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewRepos(db db) Repos {
	return Repos{
		Users:         NewUserRepo(db),
		Profiles:      NewProfileRepo(db),
		Places:        NewPlaceRepo(db),
		Ugurs:         NewUgurRepo(db),
		Routes:        NewRouteRepo(db),
		Bookings:      NewBookingRepo(db),
		Loads:         NewLoadRepo(db),
		Reviews:       NewReviewRepo(db),
		Notifications: NewNotificationRepo(db),
		CurrentPlaces: NewCurrentPlaceRepo(db),
		DeviceTokens:  NewDeviceTokenRepo(db),
	}
}

// Transactor runs fn inside one database transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	InTx(ctx context.Context, fn func(Repos) error) error
}

// pgTransactor is the Postgres implementation of Transactor.
type pgTransactor struct {
	db txStarter
}

// NewTransactor constructs a Transactor over a pool, or over a pgx.Tx in
// tests where each InTx becomes a savepoint.
func NewTransactor(db txStarter) Transactor {
	return &pgTransactor{db: db}
}

// InTx begins a transaction, hands fn a Repos bound to it, and commits or
// rolls back depending on fn's result.
func (t *pgTransactor) InTx(ctx context.Context, fn func(Repos) error) error {
	return pgx.BeginFunc(ctx, t.db, func(tx pgx.Tx) error {
		return fn(NewRepos(tx))
	})
}
