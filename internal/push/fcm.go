package push

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/ugurtm/ugur-backend/internal/repo"
)

// multicastSender is the part of *messaging.Client FCM uses.
type multicastSender interface {
	SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCM sends pushes through Firebase Cloud Messaging to every registered
// device of the user. Tokens FCM reports as unregistered are deleted.
type FCM struct {
	client multicastSender
	tokens repo.DeviceTokenRepo
}

// NewFCM builds an FCM notifier from a service-account file or its
// base64-encoded JSON. Exactly one of the two should be set; the file wins.
func NewFCM(ctx context.Context, credentialsFile, credentialsBase64 string, tokens repo.DeviceTokenRepo) (*FCM, error) {
	var opt option.ClientOption
	switch {
	case credentialsFile != "":
		opt = option.WithCredentialsFile(credentialsFile)
	case credentialsBase64 != "":
		raw, err := base64.StdEncoding.DecodeString(credentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("push.NewFCM: decode credentials: %w", err)
		}
		opt = option.WithCredentialsJSON(raw)
	default:
		return nil, fmt.Errorf("push.NewFCM: no credentials")
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("push.NewFCM: init app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("push.NewFCM: messaging client: %w", err)
	}
	return &FCM{client: client, tokens: tokens}, nil
}

// Notify sends one multicast to the user's devices. A user without
// devices is not an error.
func (f *FCM) Notify(ctx context.Context, userID int64, title, body string) error {
	devices, err := f.tokens.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("push.FCM.Notify: %w", err)
	}
	if len(devices) == 0 {
		return nil
	}
	tokens := make([]string, len(devices))
	for i, d := range devices {
		tokens[i] = d.Token
	}

	resp, err := f.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data: map[string]string{
			"type":    "driver_notification",
			"user_id": strconv.FormatInt(userID, 10),
		},
		Android: &messaging.AndroidConfig{Priority: "high"},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{Aps: &messaging.Aps{Sound: "default"}},
		},
	})
	if err != nil {
		return fmt.Errorf("push.FCM.Notify: %w", err)
	}

	var stale []string
	for i, r := range resp.Responses {
		if r.Success || i >= len(tokens) {
			continue
		}
		if messaging.IsUnregistered(r.Error) {
			stale = append(stale, tokens[i])
		}
	}
	if len(stale) > 0 {
		if err := f.tokens.DeleteTokens(ctx, stale); err != nil {
			slog.WarnContext(ctx, "failed to prune stale device tokens", "user_id", userID, "error", err)
		}
	}
	if resp.FailureCount > 0 && resp.SuccessCount == 0 {
		return fmt.Errorf("push.FCM.Notify: all %d sends failed", resp.FailureCount)
	}
	return nil
}
