package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/middleware"
)

// decodeBody reads a JSON body into dst, writing a 400 (or 413 when the
// body limit tripped) and returning false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorBody(w, http.StatusRequestEntityTooLarge, ErrorDetail{Code: "payload_too_large", Message: "request body too large"})
			return false
		}
		badRequest(w, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// actorID returns the authenticated caller. Routes behind RequireAuth
// always have one.
func actorID(r *http.Request) int64 {
	id, _ := middleware.UserID(r.Context())
	return id
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// query collects typed query parameters and remembers the first failure.
type query struct {
	r   *http.Request
	err error
}

func newQuery(r *http.Request) *query { return &query{r: r} }

func (q *query) str(key string) string { return q.r.URL.Query().Get(key) }

func (q *query) id(key string) *int64 {
	v := q.str(key)
	if v == "" || q.err != nil {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		q.err = fmt.Errorf("%s must be an integer", key)
		return nil
	}
	return &n
}

func (q *query) num(key string) *int {
	n := q.id(key)
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}

func (q *query) flag(key string) *bool {
	v := q.str(key)
	if v == "" || q.err != nil {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		q.err = fmt.Errorf("%s must be a boolean", key)
		return nil
	}
	return &b
}

// date parses a YYYY-MM-DD parameter the same way request bodies do.
func (q *query) date(key string) *time.Time {
	v := q.str(key)
	if v == "" || q.err != nil {
		return nil
	}
	var d openapi_types.Date
	if err := d.UnmarshalText([]byte(v)); err != nil {
		q.err = fmt.Errorf("%s must be a YYYY-MM-DD date", key)
		return nil
	}
	return &d.Time
}

// page reads ?page= and ?limit=.
func (q *query) page() domain.PaginationParams {
	return domain.NewPaginationParams(q.num("page"), q.num("limit"))
}

// Pagination is the listing metadata returned alongside Data.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// ListResponse is the envelope for every paginated listing.
type ListResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func listOf[T, D any](p domain.Page[T], conv func(T) D) ListResponse[D] {
	data := make([]D, len(p.Items))
	for i, item := range p.Items {
		data[i] = conv(item)
	}
	return ListResponse[D]{
		Data:       data,
		Pagination: Pagination{Page: p.Params.Page, Limit: p.Params.Limit, Total: p.Total},
	}
}
