package models

import "time"

// InvitationStatus is the lifecycle of a single-use invitation token.
type InvitationStatus string

const (
	InvitePending  InvitationStatus = "PENDING"
	InviteAccepted InvitationStatus = "ACCEPTED"
	InviteDeclined InvitationStatus = "DECLINED"
	InviteExpired  InvitationStatus = "EXPIRED"
)

// Invitation offers one exam request to one candidate scribe. The token is
// the primary key: opaque, unguessable, single-use. For a given request at
// most one invitation ever reaches ACCEPTED; the winning acceptance expires
// all sibling PENDING rows in the same transaction.
type Invitation struct {
	Token         string           `db:"token" json:"token"`
	ExamRequestID string           `db:"exam_request_id" json:"exam_request_id"`
	ScribeID      string           `db:"scribe_id" json:"scribe_id"`
	Status        InvitationStatus `db:"status" json:"status"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
}

// InvitationDetail joins exam context onto a pending invitation for the
// scribe's invite list.
type InvitationDetail struct {
	Invitation
	ExamDate    string  `db:"exam_date" json:"exam_date"`
	ExamTime    *string `db:"exam_time" json:"exam_time,omitempty"`
	Language    string  `db:"language" json:"language"`
	District    string  `db:"district" json:"district"`
	City        string  `db:"city" json:"city"`
	StudentName string  `db:"student_name" json:"student_name"`
}
