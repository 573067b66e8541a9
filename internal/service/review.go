package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
)

// ReviewService implements user-to-user reviews.
type ReviewService struct {
	reviews repo.ReviewRepo
	users   repo.UserRepo
}

// NewReviewService constructs a ReviewService backed by the provided repos.
func NewReviewService(reviews repo.ReviewRepo, users repo.UserRepo) *ReviewService {
	return &ReviewService{reviews: reviews, users: users}
}

// Create stores a review written by fromID. The same pair may review each
// other repeatedly.
func (s *ReviewService) Create(ctx context.Context, fromID int64, rv domain.Review) (domain.Review, error) {
	rv.FromUserID = fromID
	rv.Comment = strings.TrimSpace(rv.Comment)
	if err := rv.Validate(); err != nil {
		return domain.Review{}, err
	}
	if _, err := s.users.GetByID(ctx, rv.ToUserID); err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Create: to_user: %w", err)
	}
	created, err := s.reviews.Create(ctx, rv)
	if err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Create: %w", err)
	}
	return created, nil
}

// ListForUser returns one page of reviews addressed to userID.
func (s *ReviewService) ListForUser(ctx context.Context, userID int64, p domain.PaginationParams) (domain.Page[domain.Review], error) {
	items, total, err := s.reviews.ListByRecipient(ctx, userID, p)
	if err != nil {
		return domain.Page[domain.Review]{}, fmt.Errorf("service.ReviewService.ListForUser: %w", err)
	}
	return domain.Page[domain.Review]{Items: items, Total: total, Params: p}, nil
}
