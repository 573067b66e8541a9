package handler

import (
	"net/http"
	"time"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

type ReviewResponse struct {
	ID         int64     `json:"id"`
	FromUserID int64     `json:"from_user"`
	ToUserID   int64     `json:"to_user"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReviewRequest struct {
	ToUserID int64  `json:"to_user"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

// CreateReview handles POST /reviews. The caller is the author.
func (s *Server) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rv, err := s.svc.Reviews.Create(r.Context(), actorID(r), domain.Review{
		ToUserID: req.ToUserID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		fail(w, r, "user", err)
		return
	}
	writeJSON(w, http.StatusCreated, reviewToResponse(rv))
}

// ListUserReviews handles GET /users/{id}/reviews.
func (s *Server) ListUserReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	q := newQuery(r)
	p := q.page()
	if q.err != nil {
		badRequest(w, q.err.Error())
		return
	}
	page, err := s.svc.Reviews.ListForUser(r.Context(), id, p)
	if err != nil {
		fail(w, r, "user", err)
		return
	}
	writeJSON(w, http.StatusOK, listOf(page, reviewToResponse))
}

func reviewToResponse(rv domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:         rv.ID,
		FromUserID: rv.FromUserID,
		ToUserID:   rv.ToUserID,
		Rating:     rv.Rating,
		Comment:    rv.Comment,
		CreatedAt:  rv.CreatedAt,
	}
}
