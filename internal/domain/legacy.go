package domain

import (
	"fmt"
	"strings"
	"time"
)

// Fallback endpoints for legacy trips that carry no place data.
const (
	LegacyDefaultFromPlace = "Aşgabat"
	LegacyDefaultToPlace   = "Görkezilmedik"
)

// legacyDateLayout is DD.MM.YY with a two-digit year.
const legacyDateLayout = "02.01.06"

// LegacyUgur is the trip part of an old-format export.
type LegacyUgur struct {
	DateToGo        string
	TimeToGo        string
	DriverProfileID int64
	FromPlace       string // optional; falls back to LegacyDefaultFromPlace
	ToPlace         string // optional; falls back to LegacyDefaultToPlace
}

// LegacyPassenger references an old passenger profile by id.
type LegacyPassenger struct {
	ID int64
}

// LegacyImport is one old-format record.
type LegacyImport struct {
	Ugur       LegacyUgur
	Created    string // free-text creation marker, e.g. "12:50"
	Passengers []LegacyPassenger
}

// ImportResult describes what the importer wrote.
type ImportResult struct {
	Ugur            Ugur
	Route           UgurRoute
	BookingsCreated int
}

// Validate checks presence of required fields before any write.
func (in LegacyImport) Validate() error {
	if strings.TrimSpace(in.Ugur.DateToGo) == "" {
		return NewFieldError("ugur.date_to_go", "is required")
	}
	if strings.TrimSpace(in.Ugur.TimeToGo) == "" {
		return NewFieldError("ugur.time_to_go", "is required")
	}
	if in.Ugur.DriverProfileID <= 0 {
		return NewFieldError("ugur.driver", "is required")
	}
	if len([]rune(in.Created)) > 8 {
		return NewFieldError("created", "must be at most 8 characters")
	}
	return nil
}

// ParseDeparture parses the strict DD.MM.YY date and HH:MM time.
func (u LegacyUgur) ParseDeparture() (time.Time, TimeOfDay, error) {
	date, err := time.Parse(legacyDateLayout, strings.TrimSpace(u.DateToGo))
	if err != nil {
		return time.Time{}, TimeOfDay{}, NewFieldError("ugur.date_to_go", "must be DD.MM.YY")
	}
	tod, err := ParseTimeOfDay(u.TimeToGo)
	if err != nil {
		return time.Time{}, TimeOfDay{}, NewFieldError("ugur.time_to_go", "must be HH:MM")
	}
	return date, tod, nil
}

// PlaceNames returns the endpoint names, using explicit data when present.
func (u LegacyUgur) PlaceNames() (from, to string) {
	from, to = NormalizePlaceName(u.FromPlace), NormalizePlaceName(u.ToPlace)
	if from == "" {
		from = LegacyDefaultFromPlace
	}
	if to == "" {
		to = LegacyDefaultToPlace
	}
	return from, to
}

// ImportedRouteComment embeds the original creation marker.
func ImportedRouteComment(created string) string {
	return fmt.Sprintf("%s-da köne ulgamdan import", created)
}
