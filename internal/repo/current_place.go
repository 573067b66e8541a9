package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// CurrentPlaceRepo defines the persistence operations for location snapshots.
type CurrentPlaceRepo interface {
	Create(ctx context.Context, c domain.CurrentPlace) (domain.CurrentPlace, error)

	// ListByUser returns one page of a user's snapshots, newest first.
	ListByUser(ctx context.Context, userID int64, p domain.PaginationParams) ([]domain.CurrentPlace, int64, error)

	// Delete removes a snapshot owned by userID.
	Delete(ctx context.Context, id, userID int64) error
}

type pgCurrentPlaceRepo struct {
	db db
}

// NewCurrentPlaceRepo constructs a CurrentPlaceRepo backed by the provided db connection.
func NewCurrentPlaceRepo(db db) CurrentPlaceRepo {
	return &pgCurrentPlaceRepo{db: db}
}

const currentPlaceColumns = `id, user_id, title, description, latitude, longitude, created_at`

func (r *pgCurrentPlaceRepo) Create(ctx context.Context, c domain.CurrentPlace) (domain.CurrentPlace, error) {
	const q = `
		INSERT INTO current_places (user_id, title, description, latitude, longitude)
		VALUES (@user_id, @title, @description, @latitude, @longitude)
		RETURNING ` + currentPlaceColumns

	args := pgx.NamedArgs{
		"user_id":     c.UserID,
		"title":       c.Title,
		"description": c.Description,
		"latitude":    c.Latitude,
		"longitude":   c.Longitude,
	}
	result, err := scanCurrentPlace(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.CurrentPlace{}, fmt.Errorf("repo.CurrentPlaceRepo.Create: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgCurrentPlaceRepo) ListByUser(ctx context.Context, userID int64, p domain.PaginationParams) ([]domain.CurrentPlace, int64, error) {
	args := pgx.NamedArgs{"user_id": userID, "limit": p.Limit, "offset": p.Offset()}

	var total int64
	const countQ = `SELECT count(*) FROM current_places WHERE user_id = @user_id`
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.CurrentPlaceRepo.ListByUser: count: %w", err)
	}

	const q = `SELECT ` + currentPlaceColumns + ` FROM current_places
		WHERE user_id = @user_id
		ORDER BY created_at DESC, id DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.CurrentPlaceRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	places := []domain.CurrentPlace{}
	for rows.Next() {
		c, err := scanCurrentPlace(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.CurrentPlaceRepo.ListByUser: scan: %w", err)
		}
		places = append(places, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.CurrentPlaceRepo.ListByUser: rows: %w", err)
	}
	return places, total, nil
}

func (r *pgCurrentPlaceRepo) Delete(ctx context.Context, id, userID int64) error {
	const q = `DELETE FROM current_places WHERE id = @id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.CurrentPlaceRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CurrentPlaceRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanCurrentPlace(s scanner) (domain.CurrentPlace, error) {
	var c domain.CurrentPlace
	err := s.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Latitude, &c.Longitude, &c.CreatedAt)
	if err != nil {
		return domain.CurrentPlace{}, err
	}
	return c, nil
}
