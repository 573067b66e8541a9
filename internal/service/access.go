// Package service contains the business logic for the Ugur API.
// Services validate inputs, enforce business rules and authorization, and
// orchestrate repo calls. No SQL lives here; services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
)

// loadActor resolves the acting user. A token for a user that no longer
// exists or was deactivated is treated as unauthenticated.
func loadActor(ctx context.Context, users repo.UserRepo, id int64) (domain.User, error) {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, err
	}
	return u, nil
}

// canManageUgur reports whether actor may edit the trip header and legs.
func canManageUgur(actor domain.User, u domain.Ugur) bool {
	return actor.IsStaff || actor.ID == u.OwnerID
}

// drivesOrOwns reports whether actor is the trip's driver or owner.
func drivesOrOwns(actor domain.User, u domain.Ugur) bool {
	if actor.ID == u.OwnerID {
		return true
	}
	return u.DriverID != nil && *u.DriverID == actor.ID
}

func forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrForbidden, fmt.Sprintf(format, args...))
}
