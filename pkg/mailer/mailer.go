package mailer

import "context"

// Message is a single outbound email.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	HTML    string
}

// Mailer delivers messages to a single recipient. Implementations must be
// safe for concurrent use; callers treat delivery as best-effort.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
