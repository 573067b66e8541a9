package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// PlaceRepo defines the persistence operations for Places.
type PlaceRepo interface {
	// GetOrCreate inserts a place by name, or returns the existing row.
	GetOrCreate(ctx context.Context, name string) (domain.Place, error)

	// GetByID retrieves a place. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (domain.Place, error)

	// ListPaged returns places whose name contains query, ordered by name.
	ListPaged(ctx context.Context, query string, p domain.PaginationParams) ([]domain.Place, int64, error)

	// Delete removes a place. Every route leg using it is deleted with it.
	Delete(ctx context.Context, id int64) error
}

type pgPlaceRepo struct {
	db db
}

// NewPlaceRepo constructs a PlaceRepo backed by the provided db connection.
func NewPlaceRepo(db db) PlaceRepo {
	return &pgPlaceRepo{db: db}
}

// GetOrCreate relies on the DO UPDATE SET trick: without it, RETURNING
// yields nothing when the conflict handler skips the insert.
func (r *pgPlaceRepo) GetOrCreate(ctx context.Context, name string) (domain.Place, error) {
	const q = `
		INSERT INTO places (name)
		VALUES (@name)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at`

	result, err := scanPlace(r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name}))
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.GetOrCreate: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgPlaceRepo) GetByID(ctx context.Context, id int64) (domain.Place, error) {
	const q = `SELECT id, name, created_at FROM places WHERE id = @id`

	result, err := scanPlace(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.GetByID: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgPlaceRepo) ListPaged(ctx context.Context, query string, p domain.PaginationParams) ([]domain.Place, int64, error) {
	const where = ` WHERE @q::text = '' OR name ILIKE '%' || @q::text || '%'`
	args := pgx.NamedArgs{"q": query, "limit": p.Limit, "offset": p.Offset()}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM places`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.PlaceRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT id, name, created_at FROM places`+where+`
		ORDER BY name
		LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.PlaceRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	places := []domain.Place{}
	for rows.Next() {
		pl, err := scanPlace(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.PlaceRepo.ListPaged: scan: %w", err)
		}
		places = append(places, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.PlaceRepo.ListPaged: rows: %w", err)
	}
	return places, total, nil
}

func (r *pgPlaceRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM places WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.PlaceRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlaceRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanPlace(s scanner) (domain.Place, error) {
	var p domain.Place
	if err := s.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
		return domain.Place{}, err
	}
	return p, nil
}
