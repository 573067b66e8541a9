package handler

import (
	"net/http"
	"time"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

type LoadResponse struct {
	ID            int64          `json:"id"`
	SenderID      int64          `json:"sender_id"`
	UgurID        *int64         `json:"ugur_id"`
	RouteID       *int64         `json:"route_id"`
	Description   string         `json:"description"`
	ReceiverName  string         `json:"receiver_name"`
	ReceiverPhone string         `json:"receiver_phone"`
	WeightKg      *float64       `json:"weight_kg"`
	Price         *float64       `json:"price"`
	Status        string         `json:"status"`
	FromPlace     *PlaceResponse `json:"from_place"`
	ToPlace       *PlaceResponse `json:"to_place"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type LoadRequest struct {
	UgurID        *int64   `json:"ugur_id"`
	RouteID       *int64   `json:"route_id"`
	Description   string   `json:"description"`
	ReceiverName  string   `json:"receiver_name"`
	ReceiverPhone string   `json:"receiver_phone"`
	WeightKg      *float64 `json:"weight_kg"`
	Price         *float64 `json:"price"`
}

// AttachmentRequest replaces both references; nulls detach.
type AttachmentRequest struct {
	UgurID  *int64 `json:"ugur_id"`
	RouteID *int64 `json:"route_id"`
}

// ListLoads handles GET /loads?status=&ugur=&route=&from_place=&to_place=.
func (s *Server) ListLoads(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	f := domain.LoadFilter{
		UgurID:      q.id("ugur"),
		RouteID:     q.id("route"),
		FromPlaceID: q.id("from_place"),
		ToPlaceID:   q.id("to_place"),
	}
	if st := q.str("status"); st != "" {
		ls := domain.LoadStatus(st)
		f.Status = &ls
	}
	p := q.page()
	if q.err != nil {
		badRequest(w, q.err.Error())
		return
	}
	page, err := s.svc.Loads.List(r.Context(), f, p)
	if err != nil {
		fail(w, r, "load", err)
		return
	}
	writeJSON(w, http.StatusOK, listOf(page, loadToResponse))
}

// CreateLoad handles POST /loads. The caller is the sender.
func (s *Server) CreateLoad(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	l, err := s.svc.Loads.Create(r.Context(), actorID(r), domain.Load{
		UgurID:        req.UgurID,
		RouteID:       req.RouteID,
		Description:   req.Description,
		ReceiverName:  req.ReceiverName,
		ReceiverPhone: req.ReceiverPhone,
		WeightKg:      req.WeightKg,
		Price:         req.Price,
	})
	if err != nil {
		fail(w, r, "load", err)
		return
	}
	writeJSON(w, http.StatusCreated, loadToResponse(l))
}

// GetLoad handles GET /loads/{id}.
func (s *Server) GetLoad(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	l, err := s.svc.Loads.Get(r.Context(), id)
	if err != nil {
		fail(w, r, "load", err)
		return
	}
	writeJSON(w, http.StatusOK, loadToResponse(l))
}

// AttachLoad handles PUT /loads/{id}/attachment.
func (s *Server) AttachLoad(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req AttachmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	l, err := s.svc.Loads.Attach(r.Context(), actorID(r), id, domain.LoadAttachment{UgurID: req.UgurID, RouteID: req.RouteID})
	if err != nil {
		fail(w, r, "load", err)
		return
	}
	writeJSON(w, http.StatusOK, loadToResponse(l))
}

// ChangeLoadStatus handles POST /loads/{id}/status.
func (s *Server) ChangeLoadStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	l, err := s.svc.Loads.ChangeStatus(r.Context(), actorID(r), id, domain.LoadStatus(req.Status))
	if err != nil {
		fail(w, r, "load", err)
		return
	}
	writeJSON(w, http.StatusOK, loadToResponse(l))
}

func loadToResponse(l domain.Load) LoadResponse {
	return LoadResponse{
		ID:            l.ID,
		SenderID:      l.SenderID,
		UgurID:        l.UgurID,
		RouteID:       l.RouteID,
		Description:   l.Description,
		ReceiverName:  l.ReceiverName,
		ReceiverPhone: l.ReceiverPhone,
		WeightKg:      l.WeightKg,
		Price:         l.Price,
		Status:        string(l.Status),
		FromPlace:     optionalPlace(l.FromPlace()),
		ToPlace:       optionalPlace(l.ToPlace()),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}
