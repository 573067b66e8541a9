package handler

import (
	"net/http"
	"time"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

type NotificationResponse struct {
	ID        int64          `json:"id"`
	DriverID  int64          `json:"driver_id"`
	FromPlace *PlaceResponse `json:"from_place"`
	ToPlace   *PlaceResponse `json:"to_place"`
	Price     *float64       `json:"price"`
	Message   string         `json:"message"`
	IsSeen    bool           `json:"is_seen"`
	CreatedAt time.Time      `json:"created_at"`
}

type NotificationRequest struct {
	DriverID  int64    `json:"driver_id"`
	FromPlace string   `json:"from_place"`
	ToPlace   string   `json:"to_place"`
	Price     *float64 `json:"price"`
	Message   string   `json:"message"`
}

type DeviceTokenResponse struct {
	ID         int64     `json:"id"`
	Token      string    `json:"token"`
	DeviceType string    `json:"device_type"`
	CreatedAt  time.Time `json:"created_at"`
}

type DeviceTokenList struct {
	Data []DeviceTokenResponse `json:"data"`
}

type DeviceTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}

// ListNotifications handles GET /driver-notifications?seen=. Drivers only
// ever see their own.
func (s *Server) ListNotifications(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	seen := q.flag("seen")
	p := q.page()
	if q.err != nil {
		badRequest(w, q.err.Error())
		return
	}
	page, err := s.svc.Notifications.ListForDriver(r.Context(), actorID(r), seen, p)
	if err != nil {
		fail(w, r, "notification", err)
		return
	}
	writeJSON(w, http.StatusOK, listOf(page, notificationToResponse))
}

// CreateNotification handles POST /driver-notifications and dispatches a push.
func (s *Server) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var req NotificationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	n, err := s.svc.Notifications.Create(r.Context(), domain.NewNotification{
		DriverID:  req.DriverID,
		FromPlace: req.FromPlace,
		ToPlace:   req.ToPlace,
		Price:     req.Price,
		Message:   req.Message,
	})
	if err != nil {
		fail(w, r, "driver", err)
		return
	}
	writeJSON(w, http.StatusCreated, notificationToResponse(n))
}

// MarkNotificationSeen handles POST /driver-notifications/{id}/seen.
func (s *Server) MarkNotificationSeen(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	n, err := s.svc.Notifications.MarkSeen(r.Context(), actorID(r), id)
	if err != nil {
		fail(w, r, "notification", err)
		return
	}
	writeJSON(w, http.StatusOK, notificationToResponse(n))
}

// ListDeviceTokens handles GET /device-tokens.
func (s *Server) ListDeviceTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.svc.DeviceTokens.List(r.Context(), actorID(r))
	if err != nil {
		fail(w, r, "device token", err)
		return
	}
	data := make([]DeviceTokenResponse, len(tokens))
	for i, t := range tokens {
		data[i] = deviceTokenToResponse(t)
	}
	writeJSON(w, http.StatusOK, DeviceTokenList{Data: data})
}

// RegisterDeviceToken handles POST /device-tokens. Re-registering a known
// token moves it to the caller.
func (s *Server) RegisterDeviceToken(w http.ResponseWriter, r *http.Request) {
	var req DeviceTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := s.svc.DeviceTokens.Register(r.Context(), actorID(r), domain.DeviceToken{Token: req.Token, DeviceType: req.DeviceType})
	if err != nil {
		fail(w, r, "device token", err)
		return
	}
	writeJSON(w, http.StatusCreated, deviceTokenToResponse(t))
}

func notificationToResponse(n domain.DriverNotification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		DriverID:  n.DriverID,
		FromPlace: optionalPlace(n.FromPlace),
		ToPlace:   optionalPlace(n.ToPlace),
		Price:     n.Price,
		Message:   n.Message,
		IsSeen:    n.IsSeen,
		CreatedAt: n.CreatedAt,
	}
}

func deviceTokenToResponse(t domain.DeviceToken) DeviceTokenResponse {
	return DeviceTokenResponse{ID: t.ID, Token: t.Token, DeviceType: t.DeviceType, CreatedAt: t.CreatedAt}
}
