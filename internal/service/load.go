package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
)

// LoadService implements freight loads. Every write applies the
// attachment rule before persisting, so a searching load attached to a
// trip is always stored as assigned.
type LoadService struct {
	r repo.Repos
}

// NewLoadService constructs a LoadService backed by the provided repos.
func NewLoadService(r repo.Repos) *LoadService {
	return &LoadService{r: r}
}

// Create validates and persists a load sent by senderID. Every load starts
// as searching whatever status the caller set, and becomes assigned when
// attached. A load attached only to a leg is also attached to that leg's trip.
func (s *LoadService) Create(ctx context.Context, senderID int64, l domain.Load) (domain.Load, error) {
	if _, err := loadActor(ctx, s.r.Users, senderID); err != nil {
		return domain.Load{}, fmt.Errorf("service.LoadService.Create: %w", err)
	}
	l.SenderID = senderID
	l.Description = strings.TrimSpace(l.Description)
	l.ReceiverName = strings.TrimSpace(l.ReceiverName)
	l.Status = domain.LoadSearching
	if err := l.Validate(); err != nil {
		return domain.Load{}, err
	}
	if err := s.resolveAttachment(ctx, &l, domain.LoadAttachment{UgurID: l.UgurID, RouteID: l.RouteID}); err != nil {
		return domain.Load{}, fmt.Errorf("service.LoadService.Create: %w", err)
	}

	l.ApplyAttachmentRule()
	created, err := s.r.Loads.Create(ctx, l)
	if err != nil {
		return domain.Load{}, fmt.Errorf("service.LoadService.Create: %w", err)
	}
	return created, nil
}

// Get returns a single load with its derived places resolvable.
func (s *LoadService) Get(ctx context.Context, id int64) (domain.Load, error) {
	l, err := s.r.Loads.GetByID(ctx, id)
	if err != nil {
		return domain.Load{}, fmt.Errorf("service.LoadService.Get: %w", err)
	}
	return l, nil
}

// List returns one page of loads matching the filter.
func (s *LoadService) List(ctx context.Context, f domain.LoadFilter, p domain.PaginationParams) (domain.Page[domain.Load], error) {
	if f.Status != nil && !f.Status.Valid() {
		return domain.Page[domain.Load]{}, domain.NewFieldError("status", "unknown load status %q", *f.Status)
	}
	items, total, err := s.r.Loads.ListPaged(ctx, f, p)
	if err != nil {
		return domain.Page[domain.Load]{}, fmt.Errorf("service.LoadService.List: %w", err)
	}
	return domain.Page[domain.Load]{Items: items, Total: total, Params: p}, nil
}

// Attach replaces the trip and leg references of a load. Only the sender
// or staff may do so. Detaching never reverts the status.
func (s *LoadService) Attach(ctx context.Context, actorID, id int64, att domain.LoadAttachment) (domain.Load, error) {
	l, actor, err := s.loadWithActor(ctx, actorID, id)
	if err != nil {
		return domain.Load{}, fmt.Errorf("service.LoadService.Attach: %w", err)
	}
	if !actor.IsStaff && actor.ID != l.SenderID {
		return domain.Load{}, forbidden("only the sender may attach load %d", id)
	}
	if l.Status.Terminal() {
		return domain.Load{}, fmt.Errorf("service.LoadService.Attach: %w: load is %s", domain.ErrConflict, l.Status)
	}
	if err := s.resolveAttachment(ctx, &l, att); err != nil {
		return domain.Load{}, fmt.Errorf("service.LoadService.Attach: %w", err)
	}
	return s.save(ctx, l, l.Status)
}

// ChangeStatus moves a load along its state machine. The sender, the
// driver of the attached trip, and staff may do so.
func (s *LoadService) ChangeStatus(ctx context.Context, actorID, id int64, to domain.LoadStatus) (domain.Load, error) {
	l, actor, err := s.loadWithActor(ctx, actorID, id)
	if err != nil {
		return domain.Load{}, fmt.Errorf("service.LoadService.ChangeStatus: %w", err)
	}
	if !actor.IsStaff && actor.ID != l.SenderID {
		ok, err := s.drivesAttachedTrip(ctx, actor, l)
		if err != nil {
			return domain.Load{}, fmt.Errorf("service.LoadService.ChangeStatus: %w", err)
		}
		if !ok {
			return domain.Load{}, forbidden("load %d belongs to someone else", id)
		}
	}
	if err := domain.ValidateLoadTransition(l.Status, to); err != nil {
		return domain.Load{}, fmt.Errorf("service.LoadService.ChangeStatus: %w", err)
	}
	from := l.Status
	l.Status = to
	return s.save(ctx, l, from)
}

// save persists l only if its stored status is still from.
func (s *LoadService) save(ctx context.Context, l domain.Load, from domain.LoadStatus) (domain.Load, error) {
	l.ApplyAttachmentRule()
	saved, err := s.r.Loads.Save(ctx, l, from)
	if err != nil {
		return domain.Load{}, fmt.Errorf("service.LoadService.save: %w", err)
	}
	return saved, nil
}

func (s *LoadService) loadWithActor(ctx context.Context, actorID, id int64) (domain.Load, domain.User, error) {
	actor, err := loadActor(ctx, s.r.Users, actorID)
	if err != nil {
		return domain.Load{}, domain.User{}, err
	}
	l, err := s.r.Loads.GetByID(ctx, id)
	if err != nil {
		return domain.Load{}, domain.User{}, err
	}
	return l, actor, nil
}

func (s *LoadService) drivesAttachedTrip(ctx context.Context, actor domain.User, l domain.Load) (bool, error) {
	if l.UgurID == nil {
		return false, nil
	}
	u, err := s.r.Ugurs.GetByID(ctx, *l.UgurID)
	if err != nil {
		return false, err
	}
	return u.DriverID != nil && *u.DriverID == actor.ID, nil
}

// resolveAttachment checks that the referenced trip and leg exist and
// agree, fills the trip from the leg when only the leg is given, and
// stores both on l.
func (s *LoadService) resolveAttachment(ctx context.Context, l *domain.Load, att domain.LoadAttachment) error {
	if att.RouteID != nil {
		rt, err := s.r.Routes.GetByID(ctx, *att.RouteID)
		if err != nil {
			return fmt.Errorf("route: %w", err)
		}
		if att.UgurID == nil {
			att.UgurID = &rt.UgurID
		} else if *att.UgurID != rt.UgurID {
			return domain.NewFieldError("route", "route %d does not belong to ugur %d", rt.ID, *att.UgurID)
		}
	}
	if att.UgurID != nil {
		if _, err := s.r.Ugurs.GetByID(ctx, *att.UgurID); err != nil {
			return fmt.Errorf("ugur: %w", err)
		}
	}
	l.UgurID, l.RouteID = att.UgurID, att.RouteID
	return nil
}
