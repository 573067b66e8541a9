package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// ReviewRepo defines the persistence operations for user reviews.
type ReviewRepo interface {
	Create(ctx context.Context, rv domain.Review) (domain.Review, error)

	// ListByRecipient returns one page of reviews addressed to a user, newest first.
	ListByRecipient(ctx context.Context, toUserID int64, p domain.PaginationParams) ([]domain.Review, int64, error)
}

type pgReviewRepo struct {
	db db
}

// NewReviewRepo constructs a ReviewRepo backed by the provided db connection.
func NewReviewRepo(db db) ReviewRepo {
	return &pgReviewRepo{db: db}
}

const reviewColumns = `id, from_user_id, to_user_id, rating, comment, created_at`

func (r *pgReviewRepo) Create(ctx context.Context, rv domain.Review) (domain.Review, error) {
	const q = `
		INSERT INTO reviews (from_user_id, to_user_id, rating, comment)
		VALUES (@from_user_id, @to_user_id, @rating, @comment)
		RETURNING ` + reviewColumns

	args := pgx.NamedArgs{
		"from_user_id": rv.FromUserID,
		"to_user_id":   rv.ToUserID,
		"rating":       rv.Rating,
		"comment":      rv.Comment,
	}
	result, err := scanReview(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.Create: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgReviewRepo) ListByRecipient(ctx context.Context, toUserID int64, p domain.PaginationParams) ([]domain.Review, int64, error) {
	args := pgx.NamedArgs{"to_user_id": toUserID, "limit": p.Limit, "offset": p.Offset()}

	var total int64
	const countQ = `SELECT count(*) FROM reviews WHERE to_user_id = @to_user_id`
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ReviewRepo.ListByRecipient: count: %w", err)
	}

	const q = `SELECT ` + reviewColumns + ` FROM reviews
		WHERE to_user_id = @to_user_id
		ORDER BY created_at DESC, id DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReviewRepo.ListByRecipient: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ReviewRepo.ListByRecipient: scan: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ReviewRepo.ListByRecipient: rows: %w", err)
	}
	return reviews, total, nil
}

func scanReview(s scanner) (domain.Review, error) {
	var rv domain.Review
	if err := s.Scan(&rv.ID, &rv.FromUserID, &rv.ToUserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
		return domain.Review{}, err
	}
	return rv, nil
}
