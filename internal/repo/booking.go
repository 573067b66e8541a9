package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// BookingRepo defines the persistence operations for seat bookings.
type BookingRepo interface {
	// Create inserts a booking with the status it carries. Returns
	// domain.ErrConflict if the passenger already booked the leg.
	Create(ctx context.Context, b domain.Booking) (domain.Booking, error)

	// GetByID retrieves a single booking.
	GetByID(ctx context.Context, id int64) (domain.Booking, error)

	// ListByUgur returns every booking on any leg of a trip.
	ListByUgur(ctx context.Context, ugurID int64) ([]domain.Booking, error)

	// ListVisible returns one page of bookings the user made as a passenger
	// or that sit on trips the user drives or owns. allUsers lifts the
	// restriction.
	ListVisible(ctx context.Context, userID int64, allUsers bool, p domain.PaginationParams) ([]domain.Booking, int64, error)

	// UpdateStatus moves a booking from one status to another. Returns
	// domain.ErrConflict when the booking no longer has status from.
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (domain.Booking, error)

	// SeatsHeld sums the seats of every non-cancelled booking on a leg.
	SeatsHeld(ctx context.Context, routeID int64) (int, error)
}

type pgBookingRepo struct {
	db db
}

// NewBookingRepo constructs a BookingRepo backed by the provided db connection.
func NewBookingRepo(db db) BookingRepo {
	return &pgBookingRepo{db: db}
}

const bookingColumns = `b.id, b.route_id, b.passenger_id, b.seats_booked, b.status, b.comment, b.created_at, b.updated_at`

func (r *pgBookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	const q = `
		INSERT INTO bookings AS b (route_id, passenger_id, seats_booked, status, comment)
		VALUES (@route_id, @passenger_id, @seats_booked, @status, @comment)
		RETURNING ` + bookingColumns

	args := pgx.NamedArgs{
		"route_id":     b.RouteID,
		"passenger_id": b.PassengerID,
		"seats_booked": b.SeatsBooked,
		"status":       string(b.Status),
		"comment":      b.Comment,
	}
	result, err := scanBooking(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgBookingRepo) GetByID(ctx context.Context, id int64) (domain.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = @id`

	result, err := scanBooking(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.GetByID: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgBookingRepo) ListByUgur(ctx context.Context, ugurID int64) ([]domain.Booking, error) {
	const q = `
		SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN ugur_routes r ON r.id = b.route_id
		WHERE r.ugur_id = @ugur_id
		ORDER BY b.created_at, b.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ugur_id": ugurID})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByUgur: %w", err)
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByUgur: %w", err)
	}
	return bookings, nil
}

func (r *pgBookingRepo) ListVisible(ctx context.Context, userID int64, allUsers bool, p domain.PaginationParams) ([]domain.Booking, int64, error) {
	const from = `
		FROM bookings b
		JOIN ugur_routes r ON r.id = b.route_id
		JOIN ugurs u ON u.id = r.ugur_id
		WHERE @all_users
		   OR b.passenger_id = @user_id
		   OR u.driver_id = @user_id
		   OR u.owner_id = @user_id`

	args := pgx.NamedArgs{
		"all_users": allUsers,
		"user_id":   userID,
		"limit":     p.Limit,
		"offset":    p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*)`+from, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.BookingRepo.ListVisible: count: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+from+`
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.BookingRepo.ListVisible: %w", err)
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.BookingRepo.ListVisible: %w", err)
	}
	return bookings, total, nil
}

func (r *pgBookingRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (domain.Booking, error) {
	const q = `
		UPDATE bookings AS b
		SET status = @to, updated_at = now()
		WHERE b.id = @id AND b.status = @from
		RETURNING ` + bookingColumns

	args := pgx.NamedArgs{"id": id, "from": string(from), "to": string(to)}
	result, err := scanBooking(r.db.QueryRow(ctx, q, args))
	if errors.Is(err, pgx.ErrNoRows) {
		err = staleStatus(ctx, r.db, "bookings", id)
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.UpdateStatus: %w", err)
	}
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.UpdateStatus: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgBookingRepo) SeatsHeld(ctx context.Context, routeID int64) (int, error) {
	const q = `
		SELECT COALESCE(sum(seats_booked), 0)
		FROM bookings
		WHERE route_id = @route_id AND status <> 'cancelled'`

	var held int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"route_id": routeID}).Scan(&held); err != nil {
		return 0, fmt.Errorf("repo.BookingRepo.SeatsHeld: %w", err)
	}
	return held, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return bookings, nil
}

func scanBooking(s scanner) (domain.Booking, error) {
	var (
		b      domain.Booking
		status string
	)
	err := s.Scan(&b.ID, &b.RouteID, &b.PassengerID, &b.SeatsBooked, &status,
		&b.Comment, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}
