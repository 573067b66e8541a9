package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
)

// importedRouteSeats is the capacity of every imported leg.
const importedRouteSeats = domain.DefaultAvailableSeats

// ImporterService translates legacy exports into the current schema.
type ImporterService struct {
	tx    repo.Transactor
	users repo.UserRepo
}

// NewImporterService constructs an ImporterService. users is only used to
// check the caller before the transaction opens.
func NewImporterService(tx repo.Transactor, users repo.UserRepo) *ImporterService {
	return &ImporterService{tx: tx, users: users}
}

// Import writes one legacy record as a trip with a single leg and the
// confirmed bookings of every passenger that still resolves. A missing
// driver or malformed date aborts the whole import; a missing passenger
// is skipped.
func (s *ImporterService) Import(ctx context.Context, actorID int64, in domain.LegacyImport) (domain.ImportResult, error) {
	if _, err := loadActor(ctx, s.users, actorID); err != nil {
		return domain.ImportResult{}, fmt.Errorf("service.ImporterService.Import: %w", err)
	}
	if err := in.Validate(); err != nil {
		return domain.ImportResult{}, err
	}
	date, tod, err := in.Ugur.ParseDeparture()
	if err != nil {
		return domain.ImportResult{}, err
	}
	fromName, toName := in.Ugur.PlaceNames()

	var res domain.ImportResult
	err = s.tx.InTx(ctx, func(r repo.Repos) error {
		driver, err := r.Users.GetByDriverProfileID(ctx, in.Ugur.DriverProfileID)
		if err != nil {
			return fmt.Errorf("driver profile %d: %w", in.Ugur.DriverProfileID, err)
		}

		u, err := r.Ugurs.Create(ctx, domain.Ugur{
			OwnerID:  driver.ID,
			DriverID: &driver.ID,
			Type:     domain.UgurTypeDriver,
			Title:    domain.ImportedUgurTitle,
		})
		if err != nil {
			return err
		}

		seats := importedRouteSeats
		rt, err := createRoute(ctx, r, u.ID, domain.NewRoute{
			FromPlace:      fromName,
			ToPlace:        toName,
			DepartureDate:  date,
			DepartureTime:  &tod,
			AvailableSeats: &seats,
			Comment:        domain.ImportedRouteComment(in.Created),
		})
		if err != nil {
			return err
		}

		booked := make(map[int64]bool, len(in.Passengers))
		for _, p := range in.Passengers {
			passenger, err := r.Users.GetByPassengerProfileID(ctx, p.ID)
			if errors.Is(err, domain.ErrNotFound) {
				slog.InfoContext(ctx, "legacy passenger not found, skipping", "passenger_profile_id", p.ID)
				continue
			}
			if err != nil {
				return fmt.Errorf("passenger profile %d: %w", p.ID, err)
			}
			if booked[passenger.ID] {
				continue
			}
			if _, err := r.Bookings.Create(ctx, domain.Booking{
				RouteID:     rt.ID,
				PassengerID: passenger.ID,
				SeatsBooked: 1,
				Status:      domain.BookingConfirmed,
				Comment:     domain.ImportedBookingComment,
			}); err != nil {
				return err
			}
			booked[passenger.ID] = true
		}

		u.Routes = []domain.UgurRoute{rt}
		res = domain.ImportResult{Ugur: u, Route: rt, BookingsCreated: len(booked)}
		return nil
	})
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("service.ImporterService.Import: %w", err)
	}

	slog.InfoContext(ctx, "legacy trip imported",
		"ugur_id", res.Ugur.ID,
		"route_id", res.Route.ID,
		"bookings_created", res.BookingsCreated,
	)
	return res, nil
}
