package domain

import "time"

// Review is a directed rating from one user to another.
// The schema declares (to, from, created_at) unique, which does not stop
// repeat reviews between the same pair.
type Review struct {
	ID         int64
	FromUserID int64
	ToUserID   int64
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

// Validate checks the rating range and that the review is not self-addressed.
func (r Review) Validate() error {
	if r.ToUserID <= 0 {
		return NewFieldError("to_user", "is required")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return NewFieldError("rating", "must be between 1 and 5")
	}
	if r.FromUserID == r.ToUserID {
		return NewFieldError("to_user", "cannot review yourself")
	}
	return nil
}
