package models

import "time"

// UnavailabilityReason explains why a scribe is blocked on a date.
type UnavailabilityReason string

const (
	ReasonPersonal   UnavailabilityReason = "PERSONAL"
	ReasonExamBooked UnavailabilityReason = "EXAM_BOOKED"
)

// Valid reports whether r is a known reason.
func (r UnavailabilityReason) Valid() bool {
	return r == ReasonPersonal || r == ReasonExamBooked
}

// Unavailability blocks a scribe from matching on a date. Unique per
// (scribe, date).
type Unavailability struct {
	ID        string               `db:"id" json:"id"`
	ScribeID  string               `db:"scribe_id" json:"scribe_id"`
	Date      string               `db:"date" json:"date"`
	Reason    UnavailabilityReason `db:"reason" json:"reason"`
	CreatedAt time.Time            `db:"created_at" json:"created_at"`
}
