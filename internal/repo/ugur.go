package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// UgurRepo defines the persistence operations for trip headers.
// Legs and bookings are loaded through RouteRepo and BookingRepo.
type UgurRepo interface {
	// Create inserts a trip header and returns the persisted record.
	Create(ctx context.Context, u domain.Ugur) (domain.Ugur, error)

	// GetByID retrieves a trip header regardless of its active flag.
	GetByID(ctx context.Context, id int64) (domain.Ugur, error)

	// ListPaged returns one page of trip headers, newest first.
	// Inactive trips are excluded unless the filter asks for them.
	ListPaged(ctx context.Context, f domain.UgurFilter, p domain.PaginationParams) ([]domain.Ugur, int64, error)

	// Update applies the non-nil header fields.
	Update(ctx context.Context, id int64, upd domain.UgurUpdate) (domain.Ugur, error)

	// SetDriver assigns or clears the trip's driver.
	SetDriver(ctx context.Context, id int64, driverID *int64) (domain.Ugur, error)

	// IncrementViews bumps the view counter by one.
	IncrementViews(ctx context.Context, id int64) error

	// Deactivate clears is_active on every listed trip owned by ownerID, or
	// on every listed trip when ownerID is nil. Already inactive trips count
	// as affected. Returns the number of matching trips.
	Deactivate(ctx context.Context, ids []int64, ownerID *int64) (int64, error)

	// Delete removes a trip with its legs and their bookings.
	Delete(ctx context.Context, id int64) error
}

type pgUgurRepo struct {
	db db
}

// NewUgurRepo constructs a UgurRepo backed by the provided db connection.
func NewUgurRepo(db db) UgurRepo {
	return &pgUgurRepo{db: db}
}

const ugurColumns = `id, owner_id, driver_id, type, title, is_active, is_completed, views, created_at, updated_at`

func (r *pgUgurRepo) Create(ctx context.Context, u domain.Ugur) (domain.Ugur, error) {
	const q = `
		INSERT INTO ugurs (owner_id, driver_id, type, title)
		VALUES (@owner_id, @driver_id, @type, @title)
		RETURNING ` + ugurColumns

	args := pgx.NamedArgs{
		"owner_id":  u.OwnerID,
		"driver_id": u.DriverID, // nil becomes NULL
		"type":      string(u.Type),
		"title":     u.Title,
	}
	result, err := scanUgur(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Ugur{}, fmt.Errorf("repo.UgurRepo.Create: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgUgurRepo) GetByID(ctx context.Context, id int64) (domain.Ugur, error) {
	const q = `SELECT ` + ugurColumns + ` FROM ugurs WHERE id = @id`

	result, err := scanUgur(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Ugur{}, fmt.Errorf("repo.UgurRepo.GetByID: %w", mapErr(err))
	}
	return result, nil
}

// ListPaged matches the query against the title and both place names of
// every leg.
func (r *pgUgurRepo) ListPaged(ctx context.Context, f domain.UgurFilter, p domain.PaginationParams) ([]domain.Ugur, int64, error) {
	const where = `
		WHERE (@include_inactive OR u.is_active)
		  AND (@type::text IS NULL OR u.type = @type::text)
		  AND (@driver_id::bigint IS NULL OR u.driver_id = @driver_id::bigint)
		  AND (@owner_id::bigint IS NULL OR u.owner_id = @owner_id::bigint)
		  AND (@q::text = ''
		       OR u.title ILIKE '%' || @q::text || '%'
		       OR EXISTS (
		           SELECT 1
		           FROM ugur_routes r
		           JOIN places fp ON fp.id = r.from_place_id
		           JOIN places tp ON tp.id = r.to_place_id
		           WHERE r.ugur_id = u.id
		             AND (fp.name ILIKE '%' || @q::text || '%' OR tp.name ILIKE '%' || @q::text || '%')))`

	var typ *string
	if f.Type != nil {
		s := string(*f.Type)
		typ = &s
	}
	args := pgx.NamedArgs{
		"include_inactive": f.IncludeInactive,
		"type":             typ,
		"driver_id":        f.DriverID,
		"owner_id":         f.OwnerID,
		"q":                f.Query,
		"limit":            p.Limit,
		"offset":           p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM ugurs u`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.UgurRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+ugurColumns+` FROM ugurs u`+where+`
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.UgurRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	ugurs := []domain.Ugur{}
	for rows.Next() {
		u, err := scanUgur(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.UgurRepo.ListPaged: scan: %w", err)
		}
		ugurs = append(ugurs, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.UgurRepo.ListPaged: rows: %w", err)
	}
	return ugurs, total, nil
}

func (r *pgUgurRepo) Update(ctx context.Context, id int64, upd domain.UgurUpdate) (domain.Ugur, error) {
	const q = `
		UPDATE ugurs
		SET title        = COALESCE(@title, title),
		    is_active    = COALESCE(@is_active, is_active),
		    is_completed = COALESCE(@is_completed, is_completed),
		    updated_at   = now()
		WHERE id = @id
		RETURNING ` + ugurColumns

	args := pgx.NamedArgs{
		"id":           id,
		"title":        upd.Title,
		"is_active":    upd.IsActive,
		"is_completed": upd.IsCompleted,
	}
	result, err := scanUgur(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Ugur{}, fmt.Errorf("repo.UgurRepo.Update: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgUgurRepo) SetDriver(ctx context.Context, id int64, driverID *int64) (domain.Ugur, error) {
	const q = `
		UPDATE ugurs
		SET driver_id = @driver_id, updated_at = now()
		WHERE id = @id
		RETURNING ` + ugurColumns

	result, err := scanUgur(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "driver_id": driverID}))
	if err != nil {
		return domain.Ugur{}, fmt.Errorf("repo.UgurRepo.SetDriver: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgUgurRepo) IncrementViews(ctx context.Context, id int64) error {
	const q = `UPDATE ugurs SET views = views + 1 WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.UgurRepo.IncrementViews: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.UgurRepo.IncrementViews: %w", domain.ErrNotFound)
	}
	return nil
}

// Deactivate has no transition check: re-deactivating inactive or
// completed trips succeeds and still counts them.
func (r *pgUgurRepo) Deactivate(ctx context.Context, ids []int64, ownerID *int64) (int64, error) {
	const q = `
		UPDATE ugurs
		SET is_active = FALSE, updated_at = now()
		WHERE id = ANY(@ids)
		  AND (@owner_id::bigint IS NULL OR owner_id = @owner_id::bigint)`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"ids": ids, "owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("repo.UgurRepo.Deactivate: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgUgurRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ugurs WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.UgurRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.UgurRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanUgur(s scanner) (domain.Ugur, error) {
	var (
		u   domain.Ugur
		typ string
	)
	err := s.Scan(&u.ID, &u.OwnerID, &u.DriverID, &typ, &u.Title, &u.IsActive,
		&u.IsCompleted, &u.Views, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.Ugur{}, err
	}
	u.Type = domain.UgurType(typ)
	return u, nil
}
