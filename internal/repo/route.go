package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// RouteRepo defines the persistence operations for trip legs.
// Every read returns the legs with both endpoint places resolved.
type RouteRepo interface {
	// Create inserts a leg. FromPlace.ID and ToPlace.ID must reference
	// existing places.
	Create(ctx context.Context, r domain.UgurRoute) (domain.UgurRoute, error)

	// GetByID retrieves a single leg.
	GetByID(ctx context.Context, id int64) (domain.UgurRoute, error)

	// ListByUgur returns the legs of one trip in departure order.
	ListByUgur(ctx context.Context, ugurID int64) ([]domain.UgurRoute, error)

	// ListByUgurIDs returns the legs of several trips keyed by trip id.
	ListByUgurIDs(ctx context.Context, ugurIDs []int64) (map[int64][]domain.UgurRoute, error)

	// ListPaged returns legs of active trips matching the filter in
	// departure order.
	ListPaged(ctx context.Context, f domain.RouteFilter, p domain.PaginationParams) ([]domain.UgurRoute, int64, error)

	// LockForUpdate reads a leg and holds a row lock on it until the
	// surrounding transaction ends.
	LockForUpdate(ctx context.Context, id int64) (domain.UgurRoute, error)

	// Update applies the non-nil fields of upd.
	Update(ctx context.Context, id int64, upd domain.RouteUpdate) (domain.UgurRoute, error)

	// Delete removes a leg and its bookings.
	Delete(ctx context.Context, id int64) error
}

type pgRouteRepo struct {
	db db
}

// NewRouteRepo constructs a RouteRepo backed by the provided db connection.
func NewRouteRepo(db db) RouteRepo {
	return &pgRouteRepo{db: db}
}

// routeSelect reads legs aliased as r joined with their endpoints.
const routeSelect = `
	SELECT r.id, r.ugur_id,
	       fp.id, fp.name, fp.created_at,
	       tp.id, tp.name, tp.created_at,
	       r.departure_date, r.departure_time, r.available_seats, r.price,
	       r.comment, r.stops, r.created_at
	FROM ugur_routes r
	JOIN places fp ON fp.id = r.from_place_id
	JOIN places tp ON tp.id = r.to_place_id`

const routeOrder = ` ORDER BY r.departure_date, r.departure_time NULLS LAST, r.id`

// Create reads the leg back after inserting it so both endpoints are resolved.
func (r *pgRouteRepo) Create(ctx context.Context, route domain.UgurRoute) (domain.UgurRoute, error) {
	const q = `
		INSERT INTO ugur_routes (ugur_id, from_place_id, to_place_id, departure_date,
		                         departure_time, available_seats, price, comment, stops)
		VALUES (@ugur_id, @from_place_id, @to_place_id, @departure_date,
		        @departure_time, @available_seats, @price, @comment, @stops)
		RETURNING id`

	args := pgx.NamedArgs{
		"ugur_id":         route.UgurID,
		"from_place_id":   route.FromPlace.ID,
		"to_place_id":     route.ToPlace.ID,
		"departure_date":  route.DepartureDate,
		"departure_time":  timeParam(route.DepartureTime),
		"available_seats": route.AvailableSeats,
		"price":           route.Price, // nil becomes NULL
		"comment":         route.Comment,
		"stops":           stopsParam(route.Stops),
	}
	var id int64
	if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
		return domain.UgurRoute{}, fmt.Errorf("repo.RouteRepo.Create: %w", mapErr(err))
	}
	return r.GetByID(ctx, id)
}

func (r *pgRouteRepo) GetByID(ctx context.Context, id int64) (domain.UgurRoute, error) {
	result, err := scanRoute(r.db.QueryRow(ctx, routeSelect+` WHERE r.id = @id`, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.UgurRoute{}, fmt.Errorf("repo.RouteRepo.GetByID: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgRouteRepo) ListByUgur(ctx context.Context, ugurID int64) ([]domain.UgurRoute, error) {
	rows, err := r.db.Query(ctx, routeSelect+` WHERE r.ugur_id = @ugur_id`+routeOrder,
		pgx.NamedArgs{"ugur_id": ugurID})
	if err != nil {
		return nil, fmt.Errorf("repo.RouteRepo.ListByUgur: %w", err)
	}
	routes, err := collectRoutes(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.RouteRepo.ListByUgur: %w", err)
	}
	return routes, nil
}

func (r *pgRouteRepo) ListByUgurIDs(ctx context.Context, ugurIDs []int64) (map[int64][]domain.UgurRoute, error) {
	out := make(map[int64][]domain.UgurRoute, len(ugurIDs))
	if len(ugurIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, routeSelect+` WHERE r.ugur_id = ANY(@ids)`+routeOrder,
		pgx.NamedArgs{"ids": ugurIDs})
	if err != nil {
		return nil, fmt.Errorf("repo.RouteRepo.ListByUgurIDs: %w", err)
	}
	routes, err := collectRoutes(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.RouteRepo.ListByUgurIDs: %w", err)
	}
	for _, rt := range routes {
		out[rt.UgurID] = append(out[rt.UgurID], rt)
	}
	return out, nil
}

func (r *pgRouteRepo) ListPaged(ctx context.Context, f domain.RouteFilter, p domain.PaginationParams) ([]domain.UgurRoute, int64, error) {
	const where = `
		WHERE u.is_active
		  AND (@from_place_id::bigint IS NULL OR r.from_place_id = @from_place_id::bigint)
		  AND (@to_place_id::bigint IS NULL OR r.to_place_id = @to_place_id::bigint)
		  AND (@departure_date::date IS NULL OR r.departure_date = @departure_date::date)`

	args := pgx.NamedArgs{
		"from_place_id":  f.FromPlaceID,
		"to_place_id":    f.ToPlaceID,
		"departure_date": f.DepartureDate,
		"limit":          p.Limit,
		"offset":         p.Offset(),
	}

	var total int64
	const countQ = `SELECT count(*) FROM ugur_routes r JOIN ugurs u ON u.id = r.ugur_id`
	if err := r.db.QueryRow(ctx, countQ+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.RouteRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, routeSelect+` JOIN ugurs u ON u.id = r.ugur_id`+where+routeOrder+`
		LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.RouteRepo.ListPaged: %w", err)
	}
	routes, err := collectRoutes(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.RouteRepo.ListPaged: %w", err)
	}
	return routes, total, nil
}

// LockForUpdate locks only the leg row, not the joined places.
func (r *pgRouteRepo) LockForUpdate(ctx context.Context, id int64) (domain.UgurRoute, error) {
	q := routeSelect + ` WHERE r.id = @id FOR UPDATE OF r`

	result, err := scanRoute(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.UgurRoute{}, fmt.Errorf("repo.RouteRepo.LockForUpdate: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgRouteRepo) Update(ctx context.Context, id int64, upd domain.RouteUpdate) (domain.UgurRoute, error) {
	const q = `
		UPDATE ugur_routes
		SET departure_date  = COALESCE(@departure_date, departure_date),
		    departure_time  = COALESCE(@departure_time, departure_time),
		    available_seats = COALESCE(@available_seats, available_seats),
		    price           = COALESCE(@price, price),
		    comment         = COALESCE(@comment, comment),
		    stops           = COALESCE(@stops, stops)
		WHERE id = @id`

	var stops any
	if upd.Stops != nil {
		stops = stopsParam(upd.Stops)
	}
	args := pgx.NamedArgs{
		"id":              id,
		"departure_date":  upd.DepartureDate,
		"departure_time":  timeParam(upd.DepartureTime),
		"available_seats": upd.AvailableSeats,
		"price":           upd.Price,
		"comment":         upd.Comment,
		"stops":           stops,
	}
	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return domain.UgurRoute{}, fmt.Errorf("repo.RouteRepo.Update: %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.UgurRoute{}, fmt.Errorf("repo.RouteRepo.Update: %w", domain.ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

func (r *pgRouteRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ugur_routes WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.RouteRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RouteRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// timeParam encodes an optional time of day as a TIME parameter.
func timeParam(t *domain.TimeOfDay) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: t.Duration().Microseconds(), Valid: true}
}

// stopsParam encodes stops as a JSON array, never as JSON null.
func stopsParam(stops []json.RawMessage) []json.RawMessage {
	if stops == nil {
		return []json.RawMessage{}
	}
	return stops
}

func collectRoutes(rows pgx.Rows) ([]domain.UgurRoute, error) {
	defer rows.Close()

	routes := []domain.UgurRoute{}
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		routes = append(routes, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return routes, nil
}

func scanRoute(s scanner) (domain.UgurRoute, error) {
	var (
		rt  domain.UgurRoute
		dep pgtype.Time
	)
	err := s.Scan(&rt.ID, &rt.UgurID,
		&rt.FromPlace.ID, &rt.FromPlace.Name, &rt.FromPlace.CreatedAt,
		&rt.ToPlace.ID, &rt.ToPlace.Name, &rt.ToPlace.CreatedAt,
		&rt.DepartureDate, &dep, &rt.AvailableSeats, &rt.Price,
		&rt.Comment, &rt.Stops, &rt.CreatedAt)
	if err != nil {
		return domain.UgurRoute{}, err
	}
	if dep.Valid {
		t := domain.TimeOfDayFromDuration(time.Duration(dep.Microseconds) * time.Microsecond)
		rt.DepartureTime = &t
	}
	if rt.Stops == nil {
		rt.Stops = []json.RawMessage{}
	}
	return rt, nil
}
