package models

import "time"

// Feedback is a student's rating of the scribe after a completed exam.
// One row per exam request; submitting it folds the stars into the scribe's
// rating aggregate.
type Feedback struct {
	ID            string    `db:"id" json:"id"`
	ExamRequestID string    `db:"exam_request_id" json:"exam_request_id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	ScribeID      string    `db:"scribe_id" json:"scribe_id"`
	Stars         int       `db:"stars" json:"stars"`
	Review        string    `db:"review" json:"review"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
