package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// LegacyUgurRequest is the trip part of an old-format record. driver is
// the old driver-profile id.
type LegacyUgurRequest struct {
	DateToGo  string `json:"date_to_go"`
	TimeToGo  string `json:"time_to_go"`
	Driver    int64  `json:"driver"`
	FromPlace string `json:"from_place"`
	ToPlace   string `json:"to_place"`
}

type LegacyPassengerRequest struct {
	ID int64 `json:"id"`
}

type LegacyImportRequest struct {
	Ugur       LegacyUgurRequest        `json:"ugur"`
	Created    string                   `json:"created"`
	Passengers []LegacyPassengerRequest `json:"passengers"`
}

type ImportResponse struct {
	Success  bool  `json:"success"`
	UgurID   int64 `json:"ugur_id"`
	RouteID  int64 `json:"route_id"`
	Bookings int   `json:"bookings"`
}

// ImportOldUgur handles POST /import-old-ugur. The body is one record or
// a one-element array holding it.
func (s *Server) ImportOldUgur(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if !decodeBody(w, r, &raw) {
		return
	}
	var req LegacyImportRequest
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []LegacyImportRequest
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			badRequest(w, "invalid JSON body: "+err.Error())
			return
		}
		if len(batch) != 1 {
			badRequest(w, "expected exactly one record")
			return
		}
		req = batch[0]
	} else if err := json.Unmarshal(trimmed, &req); err != nil {
		badRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	in := domain.LegacyImport{
		Ugur: domain.LegacyUgur{
			DateToGo:        req.Ugur.DateToGo,
			TimeToGo:        req.Ugur.TimeToGo,
			DriverProfileID: req.Ugur.Driver,
			FromPlace:       req.Ugur.FromPlace,
			ToPlace:         req.Ugur.ToPlace,
		},
		Created: req.Created,
	}
	for _, p := range req.Passengers {
		in.Passengers = append(in.Passengers, domain.LegacyPassenger{ID: p.ID})
	}

	res, err := s.svc.Importer.Import(r.Context(), actorID(r), in)
	if err != nil {
		fail(w, r, "driver profile", err)
		return
	}
	writeJSON(w, http.StatusCreated, ImportResponse{
		Success:  true,
		UgurID:   res.Ugur.ID,
		RouteID:  res.Route.ID,
		Bookings: res.BookingsCreated,
	})
}
