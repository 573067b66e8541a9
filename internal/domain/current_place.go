package domain

import "time"

// CurrentPlace is an ad-hoc location snapshot. A user may have many rows;
// none is marked current, so readers order by CreatedAt.
// Latitude and Longitude are stored as given and never parsed.
type CurrentPlace struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	Latitude    string
	Longitude   string
	CreatedAt   time.Time
}

// Validate requires a title.
func (c CurrentPlace) Validate() error {
	if c.Title == "" {
		return NewFieldError("title", "is required")
	}
	return nil
}
