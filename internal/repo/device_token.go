package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// DeviceTokenRepo defines the persistence operations for push registrations.
type DeviceTokenRepo interface {
	// Upsert registers a token for a user. A token already registered to
	// another user moves to this one.
	Upsert(ctx context.Context, t domain.DeviceToken) (domain.DeviceToken, error)

	// ListByUser returns every token of a user.
	ListByUser(ctx context.Context, userID int64) ([]domain.DeviceToken, error)

	// DeleteTokens removes the given tokens regardless of owner.
	DeleteTokens(ctx context.Context, tokens []string) error
}

type pgDeviceTokenRepo struct {
	db db
}

// NewDeviceTokenRepo constructs a DeviceTokenRepo backed by the provided db connection.
func NewDeviceTokenRepo(db db) DeviceTokenRepo {
	return &pgDeviceTokenRepo{db: db}
}

const deviceTokenColumns = `id, user_id, token, device_type, created_at`

func (r *pgDeviceTokenRepo) Upsert(ctx context.Context, t domain.DeviceToken) (domain.DeviceToken, error) {
	const q = `
		INSERT INTO device_tokens (user_id, token, device_type)
		VALUES (@user_id, @token, @device_type)
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id, device_type = EXCLUDED.device_type
		RETURNING ` + deviceTokenColumns

	args := pgx.NamedArgs{"user_id": t.UserID, "token": t.Token, "device_type": t.DeviceType}
	result, err := scanDeviceToken(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.DeviceToken{}, fmt.Errorf("repo.DeviceTokenRepo.Upsert: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgDeviceTokenRepo) ListByUser(ctx context.Context, userID int64) ([]domain.DeviceToken, error) {
	const q = `SELECT ` + deviceTokenColumns + ` FROM device_tokens WHERE user_id = @user_id ORDER BY id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.DeviceTokenRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	tokens := []domain.DeviceToken{}
	for rows.Next() {
		t, err := scanDeviceToken(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.DeviceTokenRepo.ListByUser: scan: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.DeviceTokenRepo.ListByUser: rows: %w", err)
	}
	return tokens, nil
}

func (r *pgDeviceTokenRepo) DeleteTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	const q = `DELETE FROM device_tokens WHERE token = ANY(@tokens)`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"tokens": tokens}); err != nil {
		return fmt.Errorf("repo.DeviceTokenRepo.DeleteTokens: %w", err)
	}
	return nil
}

func scanDeviceToken(s scanner) (domain.DeviceToken, error) {
	var t domain.DeviceToken
	if err := s.Scan(&t.ID, &t.UserID, &t.Token, &t.DeviceType, &t.CreatedAt); err != nil {
		return domain.DeviceToken{}, err
	}
	return t, nil
}
