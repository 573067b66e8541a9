package service

import (
	"context"
	"fmt"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
)

// PlaceService implements the place registry.
type PlaceService struct {
	places repo.PlaceRepo
	users  repo.UserRepo
}

// NewPlaceService constructs a PlaceService backed by the provided repos.
func NewPlaceService(places repo.PlaceRepo, users repo.UserRepo) *PlaceService {
	return &PlaceService{places: places, users: users}
}

// GetOrCreate normalizes name and returns the matching place, creating it
// on first use.
func (s *PlaceService) GetOrCreate(ctx context.Context, name string) (domain.Place, error) {
	if err := domain.ValidatePlaceName("name", name); err != nil {
		return domain.Place{}, err
	}
	p, err := s.places.GetOrCreate(ctx, domain.NormalizePlaceName(name))
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.GetOrCreate: %w", err)
	}
	return p, nil
}

// Get returns a single place.
func (s *PlaceService) Get(ctx context.Context, id int64) (domain.Place, error) {
	p, err := s.places.GetByID(ctx, id)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Get: %w", err)
	}
	return p, nil
}

// List returns one page of places whose name contains query.
func (s *PlaceService) List(ctx context.Context, query string, p domain.PaginationParams) (domain.Page[domain.Place], error) {
	items, total, err := s.places.ListPaged(ctx, domain.NormalizePlaceName(query), p)
	if err != nil {
		return domain.Page[domain.Place]{}, fmt.Errorf("service.PlaceService.List: %w", err)
	}
	return domain.Page[domain.Place]{Items: items, Total: total, Params: p}, nil
}

// Delete removes a place and, through the schema, every leg that uses it.
// Only staff may delete places.
func (s *PlaceService) Delete(ctx context.Context, actorID, id int64) error {
	actor, err := loadActor(ctx, s.users, actorID)
	if err != nil {
		return fmt.Errorf("service.PlaceService.Delete: %w", err)
	}
	if !actor.IsStaff {
		return forbidden("only staff may delete places")
	}
	if err := s.places.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.PlaceService.Delete: %w", err)
	}
	return nil
}
