package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
)

// CurrentPlaceService implements per-user location snapshots.
type CurrentPlaceService struct {
	places repo.CurrentPlaceRepo
}

// NewCurrentPlaceService constructs a CurrentPlaceService backed by the provided repo.
func NewCurrentPlaceService(places repo.CurrentPlaceRepo) *CurrentPlaceService {
	return &CurrentPlaceService{places: places}
}

// Create stores a new snapshot for userID. Coordinates are kept verbatim.
func (s *CurrentPlaceService) Create(ctx context.Context, userID int64, c domain.CurrentPlace) (domain.CurrentPlace, error) {
	c.UserID = userID
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	if err := c.Validate(); err != nil {
		return domain.CurrentPlace{}, err
	}
	created, err := s.places.Create(ctx, c)
	if err != nil {
		return domain.CurrentPlace{}, fmt.Errorf("service.CurrentPlaceService.Create: %w", err)
	}
	return created, nil
}

// List returns the user's snapshots, newest first.
func (s *CurrentPlaceService) List(ctx context.Context, userID int64, p domain.PaginationParams) (domain.Page[domain.CurrentPlace], error) {
	items, total, err := s.places.ListByUser(ctx, userID, p)
	if err != nil {
		return domain.Page[domain.CurrentPlace]{}, fmt.Errorf("service.CurrentPlaceService.List: %w", err)
	}
	return domain.Page[domain.CurrentPlace]{Items: items, Total: total, Params: p}, nil
}

// Delete removes one of the user's snapshots.
func (s *CurrentPlaceService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.places.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("service.CurrentPlaceService.Delete: %w", err)
	}
	return nil
}
