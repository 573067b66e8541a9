package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
)

// DeviceTokenService registers push tokens for the acting user.
type DeviceTokenService struct {
	tokens repo.DeviceTokenRepo
}

// NewDeviceTokenService constructs a DeviceTokenService backed by the provided repo.
func NewDeviceTokenService(tokens repo.DeviceTokenRepo) *DeviceTokenService {
	return &DeviceTokenService{tokens: tokens}
}

// Register stores or re-assigns a device token to userID.
func (s *DeviceTokenService) Register(ctx context.Context, userID int64, t domain.DeviceToken) (domain.DeviceToken, error) {
	t.UserID = userID
	t.Token = strings.TrimSpace(t.Token)
	t.DeviceType = strings.ToLower(strings.TrimSpace(t.DeviceType))
	if err := t.Validate(); err != nil {
		return domain.DeviceToken{}, err
	}
	saved, err := s.tokens.Upsert(ctx, t)
	if err != nil {
		return domain.DeviceToken{}, fmt.Errorf("service.DeviceTokenService.Register: %w", err)
	}
	return saved, nil
}

// List returns every token registered to userID.
func (s *DeviceTokenService) List(ctx context.Context, userID int64) ([]domain.DeviceToken, error) {
	tokens, err := s.tokens.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.DeviceTokenService.List: %w", err)
	}
	return tokens, nil
}
