package service

import (
	"context"
	"fmt"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
)

// RouteService implements reads and edits of individual legs. Legs are
// created through UgurService so that a trip and its first legs are
// written together.
type RouteService struct {
	r repo.Repos
}

// NewRouteService constructs a RouteService backed by the provided repos.
func NewRouteService(r repo.Repos) *RouteService {
	return &RouteService{r: r}
}

// Get returns a single leg.
func (s *RouteService) Get(ctx context.Context, id int64) (domain.UgurRoute, error) {
	rt, err := s.r.Routes.GetByID(ctx, id)
	if err != nil {
		return domain.UgurRoute{}, fmt.Errorf("service.RouteService.Get: %w", err)
	}
	return rt, nil
}

// List returns legs of active trips in departure order.
func (s *RouteService) List(ctx context.Context, f domain.RouteFilter, p domain.PaginationParams) (domain.Page[domain.UgurRoute], error) {
	items, total, err := s.r.Routes.ListPaged(ctx, f, p)
	if err != nil {
		return domain.Page[domain.UgurRoute]{}, fmt.Errorf("service.RouteService.List: %w", err)
	}
	return domain.Page[domain.UgurRoute]{Items: items, Total: total, Params: p}, nil
}

// Update edits a leg. Only the trip owner or staff may do so.
func (s *RouteService) Update(ctx context.Context, actorID, id int64, upd domain.RouteUpdate) (domain.UgurRoute, error) {
	if upd.AvailableSeats != nil && *upd.AvailableSeats < 0 {
		return domain.UgurRoute{}, domain.NewFieldError("available_seats", "must not be negative")
	}
	if upd.Price != nil && *upd.Price < 0 {
		return domain.UgurRoute{}, domain.NewFieldError("price", "must not be negative")
	}
	if err := s.authorize(ctx, actorID, id); err != nil {
		return domain.UgurRoute{}, fmt.Errorf("service.RouteService.Update: %w", err)
	}
	rt, err := s.r.Routes.Update(ctx, id, upd)
	if err != nil {
		return domain.UgurRoute{}, fmt.Errorf("service.RouteService.Update: %w", err)
	}
	return rt, nil
}

// Delete removes a leg and its bookings.
func (s *RouteService) Delete(ctx context.Context, actorID, id int64) error {
	if err := s.authorize(ctx, actorID, id); err != nil {
		return fmt.Errorf("service.RouteService.Delete: %w", err)
	}
	if err := s.r.Routes.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.RouteService.Delete: %w", err)
	}
	return nil
}

func (s *RouteService) authorize(ctx context.Context, actorID, routeID int64) error {
	rt, err := s.r.Routes.GetByID(ctx, routeID)
	if err != nil {
		return err
	}
	_, err = authorizeUgur(ctx, s.r, actorID, rt.UgurID)
	return err
}
