package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// NotificationRepo defines the persistence operations for driver notifications.
type NotificationRepo interface {
	// Create inserts a notification. Place pointers are referenced by id.
	Create(ctx context.Context, n domain.DriverNotification) (domain.DriverNotification, error)

	// GetByID retrieves a notification with its places resolved.
	GetByID(ctx context.Context, id int64) (domain.DriverNotification, error)

	// ListByDriver returns one page of a driver's notifications, newest
	// first. A non-nil seen narrows to seen or unseen ones.
	ListByDriver(ctx context.Context, driverID int64, seen *bool, p domain.PaginationParams) ([]domain.DriverNotification, int64, error)

	// MarkSeen flags a notification of driverID as seen. Returns
	// domain.ErrNotFound when the notification is absent or addressed to
	// someone else.
	MarkSeen(ctx context.Context, id, driverID int64) (domain.DriverNotification, error)
}

type pgNotificationRepo struct {
	db db
}

// NewNotificationRepo constructs a NotificationRepo backed by the provided db connection.
func NewNotificationRepo(db db) NotificationRepo {
	return &pgNotificationRepo{db: db}
}

const notificationSelect = `
	SELECT n.id, n.driver_id,
	       fp.id, fp.name, fp.created_at,
	       tp.id, tp.name, tp.created_at,
	       n.price, n.message, n.is_seen, n.created_at
	FROM driver_notifications n
	LEFT JOIN places fp ON fp.id = n.from_place_id
	LEFT JOIN places tp ON tp.id = n.to_place_id`

func (r *pgNotificationRepo) Create(ctx context.Context, n domain.DriverNotification) (domain.DriverNotification, error) {
	const q = `
		INSERT INTO driver_notifications (driver_id, from_place_id, to_place_id, price, message)
		VALUES (@driver_id, @from_place_id, @to_place_id, @price, @message)
		RETURNING id`

	args := pgx.NamedArgs{
		"driver_id":     n.DriverID,
		"from_place_id": placeID(n.FromPlace),
		"to_place_id":   placeID(n.ToPlace),
		"price":         n.Price,
		"message":       n.Message,
	}
	var id int64
	if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
		return domain.DriverNotification{}, fmt.Errorf("repo.NotificationRepo.Create: %w", mapErr(err))
	}
	return r.GetByID(ctx, id)
}

func (r *pgNotificationRepo) GetByID(ctx context.Context, id int64) (domain.DriverNotification, error) {
	result, err := scanNotification(r.db.QueryRow(ctx, notificationSelect+` WHERE n.id = @id`, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.DriverNotification{}, fmt.Errorf("repo.NotificationRepo.GetByID: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgNotificationRepo) ListByDriver(ctx context.Context, driverID int64, seen *bool, p domain.PaginationParams) ([]domain.DriverNotification, int64, error) {
	const where = `
		WHERE n.driver_id = @driver_id
		  AND (@seen::boolean IS NULL OR n.is_seen = @seen::boolean)`

	args := pgx.NamedArgs{"driver_id": driverID, "seen": seen, "limit": p.Limit, "offset": p.Offset()}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM driver_notifications n`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.NotificationRepo.ListByDriver: count: %w", err)
	}

	rows, err := r.db.Query(ctx, notificationSelect+where+`
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.NotificationRepo.ListByDriver: %w", err)
	}
	defer rows.Close()

	out := []domain.DriverNotification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.NotificationRepo.ListByDriver: scan: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.NotificationRepo.ListByDriver: rows: %w", err)
	}
	return out, total, nil
}

func (r *pgNotificationRepo) MarkSeen(ctx context.Context, id, driverID int64) (domain.DriverNotification, error) {
	const q = `UPDATE driver_notifications SET is_seen = TRUE WHERE id = @id AND driver_id = @driver_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "driver_id": driverID})
	if err != nil {
		return domain.DriverNotification{}, fmt.Errorf("repo.NotificationRepo.MarkSeen: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.DriverNotification{}, fmt.Errorf("repo.NotificationRepo.MarkSeen: %w", domain.ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

func placeID(p *domain.Place) *int64 {
	if p == nil {
		return nil
	}
	return &p.ID
}

func scanNotification(s scanner) (domain.DriverNotification, error) {
	var (
		n                domain.DriverNotification
		fromID, toID     *int64
		fromName, toName *string
		fromTime, toTime *time.Time
	)
	err := s.Scan(&n.ID, &n.DriverID,
		&fromID, &fromName, &fromTime,
		&toID, &toName, &toTime,
		&n.Price, &n.Message, &n.IsSeen, &n.CreatedAt)
	if err != nil {
		return domain.DriverNotification{}, err
	}
	if fromID != nil {
		n.FromPlace = &domain.Place{ID: *fromID, Name: *fromName, CreatedAt: *fromTime}
	}
	if toID != nil {
		n.ToPlace = &domain.Place{ID: *toID, Name: *toName, CreatedAt: *toTime}
	}
	return n, nil
}
