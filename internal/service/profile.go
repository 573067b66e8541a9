package service

import (
	"context"
	"fmt"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
)

// ProfileService serves read access to driver and passenger profiles.
type ProfileService struct {
	profiles repo.ProfileRepo
}

// NewProfileService constructs a ProfileService backed by the provided ProfileRepo.
func NewProfileService(profiles repo.ProfileRepo) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// GetDriver returns a driver profile by its own id.
func (s *ProfileService) GetDriver(ctx context.Context, id int64) (domain.DriverProfile, error) {
	dp, err := s.profiles.GetDriverByID(ctx, id)
	if err != nil {
		return domain.DriverProfile{}, fmt.Errorf("service.ProfileService.GetDriver: %w", err)
	}
	return dp, nil
}

// ListDrivers returns one page of driver profiles.
func (s *ProfileService) ListDrivers(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.DriverProfile], error) {
	items, total, err := s.profiles.ListDriversPaged(ctx, p)
	if err != nil {
		return domain.Page[domain.DriverProfile]{}, fmt.Errorf("service.ProfileService.ListDrivers: %w", err)
	}
	return domain.Page[domain.DriverProfile]{Items: items, Total: total, Params: p}, nil
}

// GetPassenger returns a passenger profile by its own id.
func (s *ProfileService) GetPassenger(ctx context.Context, id int64) (domain.PassengerProfile, error) {
	pp, err := s.profiles.GetPassengerByID(ctx, id)
	if err != nil {
		return domain.PassengerProfile{}, fmt.Errorf("service.ProfileService.GetPassenger: %w", err)
	}
	return pp, nil
}

// ListPassengers returns one page of passenger profiles.
func (s *ProfileService) ListPassengers(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.PassengerProfile], error) {
	items, total, err := s.profiles.ListPassengersPaged(ctx, p)
	if err != nil {
		return domain.Page[domain.PassengerProfile]{}, fmt.Errorf("service.ProfileService.ListPassengers: %w", err)
	}
	return domain.Page[domain.PassengerProfile]{Items: items, Total: total, Params: p}, nil
}
