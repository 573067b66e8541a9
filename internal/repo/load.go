package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// LoadRepo defines the persistence operations for freight loads.
// Reads hydrate the attached leg and the attached trip's first leg so the
// derived places can be resolved.
type LoadRepo interface {
	// Create inserts a load as given. Callers apply the attachment rule first.
	Create(ctx context.Context, l domain.Load) (domain.Load, error)

	// GetByID retrieves a single load.
	GetByID(ctx context.Context, id int64) (domain.Load, error)

	// ListPaged returns one page of loads, newest first.
	ListPaged(ctx context.Context, f domain.LoadFilter, p domain.PaginationParams) ([]domain.Load, int64, error)

	// Save overwrites every mutable column of an existing load whose stored
	// status is still from. Returns domain.ErrConflict when it is not.
	Save(ctx context.Context, l domain.Load, from domain.LoadStatus) (domain.Load, error)
}

type pgLoadRepo struct {
	db     db
	routes RouteRepo
}

// NewLoadRepo constructs a LoadRepo backed by the provided db connection.
func NewLoadRepo(db db) LoadRepo {
	return &pgLoadRepo{db: db, routes: NewRouteRepo(db)}
}

const loadColumns = `l.id, l.sender_id, l.ugur_id, l.route_id, l.description, l.receiver_name,
	l.receiver_phone, l.weight_kg, l.price, l.status, l.created_at, l.updated_at`

func (r *pgLoadRepo) Create(ctx context.Context, l domain.Load) (domain.Load, error) {
	const q = `
		INSERT INTO loads AS l (sender_id, ugur_id, route_id, description, receiver_name,
		                        receiver_phone, weight_kg, price, status)
		VALUES (@sender_id, @ugur_id, @route_id, @description, @receiver_name,
		        @receiver_phone, @weight_kg, @price, @status)
		RETURNING ` + loadColumns

	result, err := scanLoad(r.db.QueryRow(ctx, q, loadArgs(l)))
	if err != nil {
		return domain.Load{}, fmt.Errorf("repo.LoadRepo.Create: %w", mapErr(err))
	}
	if err := r.hydrate(ctx, []*domain.Load{&result}); err != nil {
		return domain.Load{}, fmt.Errorf("repo.LoadRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgLoadRepo) GetByID(ctx context.Context, id int64) (domain.Load, error) {
	const q = `SELECT ` + loadColumns + ` FROM loads l WHERE l.id = @id`

	result, err := scanLoad(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Load{}, fmt.Errorf("repo.LoadRepo.GetByID: %w", mapErr(err))
	}
	if err := r.hydrate(ctx, []*domain.Load{&result}); err != nil {
		return domain.Load{}, fmt.Errorf("repo.LoadRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged matches place filters against the attached leg and every leg
// of the attached trip.
func (r *pgLoadRepo) ListPaged(ctx context.Context, f domain.LoadFilter, p domain.PaginationParams) ([]domain.Load, int64, error) {
	const where = `
		WHERE (@status::text IS NULL OR l.status = @status::text)
		  AND (@ugur_id::bigint IS NULL OR l.ugur_id = @ugur_id::bigint)
		  AND (@route_id::bigint IS NULL OR l.route_id = @route_id::bigint)
		  AND (@from_place_id::bigint IS NULL OR EXISTS (
		       SELECT 1 FROM ugur_routes rr
		       WHERE (rr.id = l.route_id OR rr.ugur_id = l.ugur_id)
		         AND rr.from_place_id = @from_place_id::bigint))
		  AND (@to_place_id::bigint IS NULL OR EXISTS (
		       SELECT 1 FROM ugur_routes rr
		       WHERE (rr.id = l.route_id OR rr.ugur_id = l.ugur_id)
		         AND rr.to_place_id = @to_place_id::bigint))`

	var status *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}
	args := pgx.NamedArgs{
		"status":        status,
		"ugur_id":       f.UgurID,
		"route_id":      f.RouteID,
		"from_place_id": f.FromPlaceID,
		"to_place_id":   f.ToPlaceID,
		"limit":         p.Limit,
		"offset":        p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM loads l`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.LoadRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+loadColumns+` FROM loads l`+where+`
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.LoadRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	loads := []domain.Load{}
	for rows.Next() {
		l, err := scanLoad(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.LoadRepo.ListPaged: scan: %w", err)
		}
		loads = append(loads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.LoadRepo.ListPaged: rows: %w", err)
	}

	ptrs := make([]*domain.Load, len(loads))
	for i := range loads {
		ptrs[i] = &loads[i]
	}
	if err := r.hydrate(ctx, ptrs); err != nil {
		return nil, 0, fmt.Errorf("repo.LoadRepo.ListPaged: %w", err)
	}
	return loads, total, nil
}

func (r *pgLoadRepo) Save(ctx context.Context, l domain.Load, from domain.LoadStatus) (domain.Load, error) {
	const q = `
		UPDATE loads AS l
		SET ugur_id        = @ugur_id,
		    route_id       = @route_id,
		    description    = @description,
		    receiver_name  = @receiver_name,
		    receiver_phone = @receiver_phone,
		    weight_kg      = @weight_kg,
		    price          = @price,
		    status         = @status,
		    updated_at     = now()
		WHERE l.id = @id AND l.status = @from
		RETURNING ` + loadColumns

	args := loadArgs(l)
	args["id"] = l.ID
	args["from"] = string(from)
	result, err := scanLoad(r.db.QueryRow(ctx, q, args))
	if errors.Is(err, pgx.ErrNoRows) {
		err = staleStatus(ctx, r.db, "loads", l.ID)
		return domain.Load{}, fmt.Errorf("repo.LoadRepo.Save: %w", err)
	}
	if err != nil {
		return domain.Load{}, fmt.Errorf("repo.LoadRepo.Save: %w", mapErr(err))
	}
	if err := r.hydrate(ctx, []*domain.Load{&result}); err != nil {
		return domain.Load{}, fmt.Errorf("repo.LoadRepo.Save: %w", err)
	}
	return result, nil
}

// hydrate fills Route and UgurFirstRoute for every load with two queries.
func (r *pgLoadRepo) hydrate(ctx context.Context, loads []*domain.Load) error {
	var ugurIDs []int64
	for _, l := range loads {
		if l.UgurID != nil {
			ugurIDs = append(ugurIDs, *l.UgurID)
		}
	}
	byUgur, err := r.routes.ListByUgurIDs(ctx, ugurIDs)
	if err != nil {
		return fmt.Errorf("hydrate: %w", err)
	}

	for _, l := range loads {
		if l.UgurID != nil {
			if first, ok := domain.FirstAdded(byUgur[*l.UgurID]); ok {
				l.UgurFirstRoute = &first
			}
		}
		if l.RouteID == nil {
			continue
		}
		// The attached leg usually belongs to the attached trip.
		if l.UgurID != nil {
			for _, leg := range byUgur[*l.UgurID] {
				if leg.ID == *l.RouteID {
					found := leg
					l.Route = &found
					break
				}
			}
		}
		if l.Route == nil {
			leg, err := r.routes.GetByID(ctx, *l.RouteID)
			if err != nil {
				return fmt.Errorf("hydrate: %w", err)
			}
			l.Route = &leg
		}
	}
	return nil
}

func loadArgs(l domain.Load) pgx.NamedArgs {
	return pgx.NamedArgs{
		"sender_id":      l.SenderID,
		"ugur_id":        l.UgurID,
		"route_id":       l.RouteID,
		"description":    l.Description,
		"receiver_name":  l.ReceiverName,
		"receiver_phone": l.ReceiverPhone,
		"weight_kg":      l.WeightKg,
		"price":          l.Price,
		"status":         string(l.Status),
	}
}

func scanLoad(s scanner) (domain.Load, error) {
	var (
		l      domain.Load
		status string
	)
	err := s.Scan(&l.ID, &l.SenderID, &l.UgurID, &l.RouteID, &l.Description, &l.ReceiverName,
		&l.ReceiverPhone, &l.WeightKg, &l.Price, &status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return domain.Load{}, err
	}
	l.Status = domain.LoadStatus(status)
	return l, nil
}
