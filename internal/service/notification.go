package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
)

// Notifier dispatches a push message to every device of a user.
// Implementations live in the push package.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, body string) error
}

// NotificationService implements driver notifications and their push
// dispatch.
type NotificationService struct {
	r        repo.Repos
	notifier Notifier
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(r repo.Repos, notifier Notifier) *NotificationService {
	return &NotificationService{r: r, notifier: notifier}
}

// Create stores a notification for a driver and pushes it. A failed push
// is logged and does not fail the call.
func (s *NotificationService) Create(ctx context.Context, in domain.NewNotification) (domain.DriverNotification, error) {
	if err := in.Validate(); err != nil {
		return domain.DriverNotification{}, err
	}
	driver, err := s.r.Users.GetByID(ctx, in.DriverID)
	if err != nil {
		return domain.DriverNotification{}, fmt.Errorf("service.NotificationService.Create: driver: %w", err)
	}
	if !driver.IsDriver {
		return domain.DriverNotification{}, domain.NewFieldError("driver_id", "user %d is not a driver", driver.ID)
	}

	n := domain.DriverNotification{DriverID: driver.ID, Price: in.Price, Message: strings.TrimSpace(in.Message)}
	if n.FromPlace, err = s.optionalPlace(ctx, "from_place", in.FromPlace); err != nil {
		return domain.DriverNotification{}, err
	}
	if n.ToPlace, err = s.optionalPlace(ctx, "to_place", in.ToPlace); err != nil {
		return domain.DriverNotification{}, err
	}

	created, err := s.r.Notifications.Create(ctx, n)
	if err != nil {
		return domain.DriverNotification{}, fmt.Errorf("service.NotificationService.Create: %w", err)
	}

	if err := s.notifier.Notify(ctx, created.DriverID, created.PushTitle(), created.PushBody()); err != nil {
		slog.WarnContext(ctx, "push dispatch failed",
			"notification_id", created.ID,
			"driver_id", created.DriverID,
			"error", err,
		)
	}
	return created, nil
}

// ListForDriver returns one page of the driver's own notifications.
func (s *NotificationService) ListForDriver(ctx context.Context, driverID int64, seen *bool, p domain.PaginationParams) (domain.Page[domain.DriverNotification], error) {
	items, total, err := s.r.Notifications.ListByDriver(ctx, driverID, seen, p)
	if err != nil {
		return domain.Page[domain.DriverNotification]{}, fmt.Errorf("service.NotificationService.ListForDriver: %w", err)
	}
	return domain.Page[domain.DriverNotification]{Items: items, Total: total, Params: p}, nil
}

// MarkSeen flags one of the driver's notifications as seen.
func (s *NotificationService) MarkSeen(ctx context.Context, driverID, id int64) (domain.DriverNotification, error) {
	n, err := s.r.Notifications.MarkSeen(ctx, id, driverID)
	if err != nil {
		return domain.DriverNotification{}, fmt.Errorf("service.NotificationService.MarkSeen: %w", err)
	}
	return n, nil
}

func (s *NotificationService) optionalPlace(ctx context.Context, field, name string) (*domain.Place, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	if err := domain.ValidatePlaceName(field, name); err != nil {
		return nil, err
	}
	p, err := s.r.Places.GetOrCreate(ctx, domain.NormalizePlaceName(name))
	if err != nil {
		return nil, fmt.Errorf("service.NotificationService.Create: %s: %w", field, err)
	}
	return &p, nil
}
