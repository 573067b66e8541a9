package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
)

// UgurService implements the trip aggregate: headers, their legs, and the
// bookings shown on trip detail.
type UgurService struct {
	tx repo.Transactor
	r  repo.Repos
}

// NewUgurService constructs a UgurService. Reads go through r, multi-row
// writes through tx.
func NewUgurService(tx repo.Transactor, r repo.Repos) *UgurService {
	return &UgurService{tx: tx, r: r}
}

// Create persists a trip header and its initial legs atomically. A
// driver-type trip is always driven by its owner, who must hold the
// driver role.
func (s *UgurService) Create(ctx context.Context, ownerID int64, in domain.NewUgur) (domain.Ugur, error) {
	if !in.Type.Valid() {
		return domain.Ugur{}, domain.NewFieldError("type", "must be driver or passenger")
	}
	for i, nr := range in.Routes {
		if err := nr.Validate(fmt.Sprintf("routes[%d].", i)); err != nil {
			return domain.Ugur{}, err
		}
	}
	owner, err := loadActor(ctx, s.r.Users, ownerID)
	if err != nil {
		return domain.Ugur{}, fmt.Errorf("service.UgurService.Create: %w", err)
	}

	header := domain.Ugur{OwnerID: owner.ID, Type: in.Type, Title: strings.TrimSpace(in.Title)}
	if in.Type == domain.UgurTypeDriver {
		if !owner.IsDriver {
			return domain.Ugur{}, forbidden("only drivers can offer seats")
		}
		header.DriverID = &owner.ID
	}

	var created domain.Ugur
	err = s.tx.InTx(ctx, func(r repo.Repos) error {
		u, err := r.Ugurs.Create(ctx, header)
		if err != nil {
			return err
		}
		u.Routes = make([]domain.UgurRoute, 0, len(in.Routes))
		for _, nr := range in.Routes {
			rt, err := createRoute(ctx, r, u.ID, nr)
			if err != nil {
				return err
			}
			u.Routes = append(u.Routes, rt)
		}
		u.Bookings = []domain.Booking{}
		created = u
		return nil
	})
	if err != nil {
		return domain.Ugur{}, fmt.Errorf("service.UgurService.Create: %w", err)
	}
	return created, nil
}

// Get returns a trip with all legs and bookings regardless of its active
// flag. It does not count as a view.
func (s *UgurService) Get(ctx context.Context, id int64) (domain.Ugur, error) {
	u, err := s.r.Ugurs.GetByID(ctx, id)
	if err != nil {
		return domain.Ugur{}, fmt.Errorf("service.UgurService.Get: %w", err)
	}
	if u, err = s.loadDetail(ctx, u); err != nil {
		return domain.Ugur{}, fmt.Errorf("service.UgurService.Get: %w", err)
	}
	return u, nil
}

// View is Get plus one on the view counter.
func (s *UgurService) View(ctx context.Context, id int64) (domain.Ugur, error) {
	if err := s.r.Ugurs.IncrementViews(ctx, id); err != nil {
		return domain.Ugur{}, fmt.Errorf("service.UgurService.View: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *UgurService) loadDetail(ctx context.Context, u domain.Ugur) (domain.Ugur, error) {
	routes, err := s.r.Routes.ListByUgur(ctx, u.ID)
	if err != nil {
		return domain.Ugur{}, err
	}
	bookings, err := s.r.Bookings.ListByUgur(ctx, u.ID)
	if err != nil {
		return domain.Ugur{}, err
	}
	u.Routes, u.Bookings = routes, bookings
	return u, nil
}

// List returns one page of trip headers with their legs attached.
func (s *UgurService) List(ctx context.Context, f domain.UgurFilter, p domain.PaginationParams) (domain.Page[domain.Ugur], error) {
	if f.Type != nil && !f.Type.Valid() {
		return domain.Page[domain.Ugur]{}, domain.NewFieldError("type", "must be driver or passenger")
	}
	f.Query = strings.TrimSpace(f.Query)

	ugurs, total, err := s.r.Ugurs.ListPaged(ctx, f, p)
	if err != nil {
		return domain.Page[domain.Ugur]{}, fmt.Errorf("service.UgurService.List: %w", err)
	}
	ids := make([]int64, len(ugurs))
	for i, u := range ugurs {
		ids[i] = u.ID
	}
	byUgur, err := s.r.Routes.ListByUgurIDs(ctx, ids)
	if err != nil {
		return domain.Page[domain.Ugur]{}, fmt.Errorf("service.UgurService.List: %w", err)
	}
	for i := range ugurs {
		ugurs[i].Routes = byUgur[ugurs[i].ID]
		if ugurs[i].Routes == nil {
			ugurs[i].Routes = []domain.UgurRoute{}
		}
	}
	return domain.Page[domain.Ugur]{Items: ugurs, Total: total, Params: p}, nil
}

// Update changes the header fields. Only the owner or staff may do so.
func (s *UgurService) Update(ctx context.Context, actorID, id int64, upd domain.UgurUpdate) (domain.Ugur, error) {
	if _, err := s.authorize(ctx, actorID, id); err != nil {
		return domain.Ugur{}, fmt.Errorf("service.UgurService.Update: %w", err)
	}
	if upd.Title != nil {
		t := strings.TrimSpace(*upd.Title)
		upd.Title = &t
	}
	if _, err := s.r.Ugurs.Update(ctx, id, upd); err != nil {
		return domain.Ugur{}, fmt.Errorf("service.UgurService.Update: %w", err)
	}
	return s.Get(ctx, id)
}

// AssignDriver sets or clears the driver of a trip. The new driver must
// hold the driver role.
func (s *UgurService) AssignDriver(ctx context.Context, actorID, id int64, driverID *int64) (domain.Ugur, error) {
	if _, err := s.authorize(ctx, actorID, id); err != nil {
		return domain.Ugur{}, fmt.Errorf("service.UgurService.AssignDriver: %w", err)
	}
	if driverID != nil {
		driver, err := s.r.Users.GetByID(ctx, *driverID)
		if err != nil {
			return domain.Ugur{}, fmt.Errorf("service.UgurService.AssignDriver: driver: %w", err)
		}
		if !driver.IsDriver {
			return domain.Ugur{}, domain.NewFieldError("driver", "user %d is not a driver", driver.ID)
		}
	}
	if _, err := s.r.Ugurs.SetDriver(ctx, id, driverID); err != nil {
		return domain.Ugur{}, fmt.Errorf("service.UgurService.AssignDriver: %w", err)
	}
	return s.Get(ctx, id)
}

// Deactivate flips is_active off for every listed trip the actor owns, or
// for every listed trip when the actor is staff. Repeating the call is
// harmless. Returns how many trips matched.
func (s *UgurService) Deactivate(ctx context.Context, actorID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, domain.NewFieldError("ids", "must not be empty")
	}
	actor, err := loadActor(ctx, s.r.Users, actorID)
	if err != nil {
		return 0, fmt.Errorf("service.UgurService.Deactivate: %w", err)
	}
	var owner *int64
	if !actor.IsStaff {
		owner = &actor.ID
	}
	n, err := s.r.Ugurs.Deactivate(ctx, ids, owner)
	if err != nil {
		return 0, fmt.Errorf("service.UgurService.Deactivate: %w", err)
	}
	return n, nil
}

// Delete removes a trip with its legs and bookings.
func (s *UgurService) Delete(ctx context.Context, actorID, id int64) error {
	if _, err := s.authorize(ctx, actorID, id); err != nil {
		return fmt.Errorf("service.UgurService.Delete: %w", err)
	}
	if err := s.r.Ugurs.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.UgurService.Delete: %w", err)
	}
	return nil
}

// AddRoute appends a leg to an existing trip.
func (s *UgurService) AddRoute(ctx context.Context, actorID, ugurID int64, nr domain.NewRoute) (domain.UgurRoute, error) {
	if err := nr.Validate(""); err != nil {
		return domain.UgurRoute{}, err
	}
	if _, err := s.authorize(ctx, actorID, ugurID); err != nil {
		return domain.UgurRoute{}, fmt.Errorf("service.UgurService.AddRoute: %w", err)
	}

	var rt domain.UgurRoute
	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		var err error
		rt, err = createRoute(ctx, r, ugurID, nr)
		return err
	})
	if err != nil {
		return domain.UgurRoute{}, fmt.Errorf("service.UgurService.AddRoute: %w", err)
	}
	return rt, nil
}

// authorize loads the trip and checks the actor may manage it.
func (s *UgurService) authorize(ctx context.Context, actorID, id int64) (domain.Ugur, error) {
	return authorizeUgur(ctx, s.r, actorID, id)
}

func authorizeUgur(ctx context.Context, r repo.Repos, actorID, id int64) (domain.Ugur, error) {
	actor, err := loadActor(ctx, r.Users, actorID)
	if err != nil {
		return domain.Ugur{}, err
	}
	u, err := r.Ugurs.GetByID(ctx, id)
	if err != nil {
		return domain.Ugur{}, err
	}
	if !canManageUgur(actor, u) {
		return domain.Ugur{}, forbidden("only the owner may change trip %d", id)
	}
	return u, nil
}

// createRoute resolves both places by name and inserts the leg.
func createRoute(ctx context.Context, r repo.Repos, ugurID int64, nr domain.NewRoute) (domain.UgurRoute, error) {
	from, err := r.Places.GetOrCreate(ctx, domain.NormalizePlaceName(nr.FromPlace))
	if err != nil {
		return domain.UgurRoute{}, err
	}
	to, err := r.Places.GetOrCreate(ctx, domain.NormalizePlaceName(nr.ToPlace))
	if err != nil {
		return domain.UgurRoute{}, err
	}
	return r.Routes.Create(ctx, domain.UgurRoute{
		UgurID:         ugurID,
		FromPlace:      from,
		ToPlace:        to,
		DepartureDate:  nr.DepartureDate,
		DepartureTime:  nr.DepartureTime,
		AvailableSeats: nr.Seats(),
		Price:          nr.Price,
		Comment:        strings.TrimSpace(nr.Comment),
		Stops:          nr.Stops,
	})
}
