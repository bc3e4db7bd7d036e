package models

import (
	"time"

	"github.com/lib/pq"
)

// Scribe is a volunteer profile. Verification and profile edits belong to the
// admin subsystem; the matching engine only reads these rows.
type Scribe struct {
	ID          string         `db:"id" json:"scribe_id"`
	UserID      string         `db:"user_id" json:"user_id"`
	Verified    bool           `db:"verified" json:"verified"`
	State       string         `db:"state" json:"state"`
	District    string         `db:"district" json:"district"`
	City        string         `db:"city" json:"city"`
	Languages   pq.StringArray `db:"languages" json:"languages"`
	Rating      float64        `db:"rating" json:"rating"`
	RatingCount int            `db:"rating_count" json:"rating_count"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// Candidate is a ranked matching result shown to the student.
type Candidate struct {
	ScribeID    string  `db:"scribe_id" json:"scribe_id"`
	FirstName   string  `db:"first_name" json:"first_name"`
	LastName    string  `db:"last_name" json:"last_name"`
	District    string  `db:"district" json:"district"`
	City        string  `db:"city" json:"city"`
	Rating      float64 `db:"rating" json:"rating"`
	RatingCount int     `db:"rating_count" json:"rating_count"`
	// Priority is 1 for a district match, 2 for a state-level match.
	Priority int `db:"priority" json:"priority"`
}

// CandidateCriteria filters candidate discovery. Derived from the stored
// request, never from client input, once a draft exists.
type CandidateCriteria struct {
	Language string
	State    string
	District string
	ExamDate string
}

// ScribeProfile is the scribe's own dashboard view.
type ScribeProfile struct {
	Scribe
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
}
