package models

import "time"

// RequestStatus is the exam-request lifecycle state.
type RequestStatus string

const (
	RequestOpen      RequestStatus = "OPEN"
	RequestAccepted  RequestStatus = "ACCEPTED"
	RequestCompleted RequestStatus = "COMPLETED"
	RequestTimedOut  RequestStatus = "TIMED_OUT"
)

// Valid reports whether s is a known status. Used to validate filters.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestOpen, RequestAccepted, RequestCompleted, RequestTimedOut:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestTimedOut
}

// ExamRequest is a student's booking intent for a scribe.
//
// accepted_scribe_id is set iff status is ACCEPTED or COMPLETED; the
// repository enforces this through guarded status updates.
type ExamRequest struct {
	ID               string        `db:"id" json:"exam_request_id"`
	StudentID        string        `db:"student_id" json:"student_id"`
	ExamDate         string        `db:"exam_date" json:"exam_date"`
	ExamTime         *string       `db:"exam_time" json:"exam_time,omitempty"`
	Language         string        `db:"language" json:"language"`
	State            string        `db:"state" json:"state"`
	District         string        `db:"district" json:"district"`
	City             string        `db:"city" json:"city"`
	Status           RequestStatus `db:"status" json:"status"`
	AcceptedScribeID *string       `db:"accepted_scribe_id" json:"accepted_scribe_id,omitempty"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	CompletedAt      *time.Time    `db:"completed_at" json:"completed_at,omitempty"`
}

// RequestDetail joins the counterpart's name onto a request for list views.
type RequestDetail struct {
	ExamRequest
	StudentName *string `db:"student_name" json:"student_name,omitempty"`
	ScribeName  *string `db:"scribe_name" json:"scribe_name,omitempty"`
}

// RequestFilter selects requests for the student or scribe dashboards.
type RequestFilter struct {
	Status RequestStatus
	Page   int
}
