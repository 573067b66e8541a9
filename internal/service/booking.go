package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
)

// BookingService implements seat bookings and their status machine.
type BookingService struct {
	tx            repo.Transactor
	r             repo.Repos
	checkCapacity bool
}

// NewBookingService constructs a BookingService. With checkCapacity off,
// bookings are accepted regardless of the seats left on the leg.
func NewBookingService(tx repo.Transactor, r repo.Repos, checkCapacity bool) *BookingService {
	return &BookingService{tx: tx, r: r, checkCapacity: checkCapacity}
}

// Create books seats on a leg for the acting passenger. The leg row is
// locked for the rest of the transaction, so two concurrent requests
// cannot both take the last seats.
// Returns domain.ErrForbidden when the actor does not hold the passenger
// role and domain.ErrConflict for a second booking of the same leg or when
// the leg has too few seats left.
func (s *BookingService) Create(ctx context.Context, passengerID int64, in domain.NewBooking) (domain.Booking, error) {
	if err := in.Validate(); err != nil {
		return domain.Booking{}, err
	}
	actor, err := loadActor(ctx, s.r.Users, passengerID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", err)
	}
	if !actor.IsPassenger {
		return domain.Booking{}, forbidden("user is not a passenger")
	}

	var created domain.Booking
	err = s.tx.InTx(ctx, func(r repo.Repos) error {
		rt, err := r.Routes.LockForUpdate(ctx, in.RouteID)
		if err != nil {
			return err
		}
		if s.checkCapacity {
			held, err := r.Bookings.SeatsHeld(ctx, rt.ID)
			if err != nil {
				return err
			}
			if left := domain.RemainingSeats(rt.AvailableSeats, held); in.SeatsBooked > left {
				return fmt.Errorf("%w: only %d seats left on route %d", domain.ErrConflict, max(left, 0), rt.ID)
			}
		}
		created, err = r.Bookings.Create(ctx, domain.Booking{
			RouteID:     rt.ID,
			PassengerID: passengerID,
			SeatsBooked: in.SeatsBooked,
			Status:      domain.BookingPending,
			Comment:     strings.TrimSpace(in.Comment),
		})
		return err
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", err)
	}
	return created, nil
}

// Get returns a booking visible to the actor: its passenger, the trip's
// driver or owner, or staff.
func (s *BookingService) Get(ctx context.Context, actorID, id int64) (domain.Booking, error) {
	b, _, _, err := s.loadWithAccess(ctx, actorID, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Get: %w", err)
	}
	return b, nil
}

// List returns the bookings visible to the actor, newest first.
func (s *BookingService) List(ctx context.Context, actorID int64, p domain.PaginationParams) (domain.Page[domain.Booking], error) {
	actor, err := loadActor(ctx, s.r.Users, actorID)
	if err != nil {
		return domain.Page[domain.Booking]{}, fmt.Errorf("service.BookingService.List: %w", err)
	}
	items, total, err := s.r.Bookings.ListVisible(ctx, actor.ID, actor.IsStaff, p)
	if err != nil {
		return domain.Page[domain.Booking]{}, fmt.Errorf("service.BookingService.List: %w", err)
	}
	return domain.Page[domain.Booking]{Items: items, Total: total, Params: p}, nil
}

// ChangeStatus moves a booking along its state machine. The passenger may
// only cancel; the trip's driver or owner may confirm, cancel, or
// complete; staff may do anything the machine allows. The write only
// lands if the status is still the one validated, so a concurrent change
// surfaces as domain.ErrConflict instead of overwriting a terminal state.
func (s *BookingService) ChangeStatus(ctx context.Context, actorID, id int64, to domain.BookingStatus) (domain.Booking, error) {
	b, actor, u, err := s.loadWithAccess(ctx, actorID, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.ChangeStatus: %w", err)
	}
	if err := domain.ValidateBookingTransition(b.Status, to); err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.ChangeStatus: %w", err)
	}
	if !actor.IsStaff && !drivesOrOwns(actor, u) && to != domain.BookingCancelled {
		return domain.Booking{}, forbidden("passengers may only cancel their bookings")
	}
	updated, err := s.r.Bookings.UpdateStatus(ctx, id, b.Status, to)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.ChangeStatus: %w", err)
	}
	return updated, nil
}

// loadWithAccess fetches the booking with its trip and checks visibility.
func (s *BookingService) loadWithAccess(ctx context.Context, actorID, id int64) (domain.Booking, domain.User, domain.Ugur, error) {
	actor, err := loadActor(ctx, s.r.Users, actorID)
	if err != nil {
		return domain.Booking{}, domain.User{}, domain.Ugur{}, err
	}
	b, err := s.r.Bookings.GetByID(ctx, id)
	if err != nil {
		return domain.Booking{}, domain.User{}, domain.Ugur{}, err
	}
	rt, err := s.r.Routes.GetByID(ctx, b.RouteID)
	if err != nil {
		return domain.Booking{}, domain.User{}, domain.Ugur{}, err
	}
	u, err := s.r.Ugurs.GetByID(ctx, rt.UgurID)
	if err != nil {
		return domain.Booking{}, domain.User{}, domain.Ugur{}, err
	}
	if !actor.IsStaff && b.PassengerID != actor.ID && !drivesOrOwns(actor, u) {
		return domain.Booking{}, domain.User{}, domain.Ugur{}, forbidden("booking %d belongs to someone else", id)
	}
	return b, actor, u, nil
}
