// Package notify delivers outbound email off the request path. Handlers hand
// a payload to the dispatcher and return immediately; a worker queue retries
// transient mailer failures in the background.
package notify

import (
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scribeconnect/scribe-portal-api/pkg/jobs"
	"github.com/scribeconnect/scribe-portal-api/pkg/mailer"
)

const (
	jobTypeInvitation = "invitation_email"
	jobTypeAcceptance = "acceptance_email"
)

// InvitationEmail is the payload for a single scribe invitation.
type InvitationEmail struct {
	ToName      string
	ToEmail     string
	StudentName string
	ExamDate    string
	ExamTime    string
	Language    string
	District    string
	City        string
	AcceptURL   string
}

var invitationTmpl = template.Must(template.New("invitation").Parse(`
<p>Hi {{.ToName}},</p>
<p>{{.StudentName}} needs a scribe for a <b>{{.Language}}</b> exam on
<b>{{.ExamDate}}</b>{{if .ExamTime}} at <b>{{.ExamTime}}</b>{{end}} in
{{.City}}, {{.District}}.</p>
<p><a href="{{.AcceptURL}}">Accept this request</a></p>
<p>The link is valid for you alone and stops working once the request is
taken or withdrawn.</p>
`))

// AcceptanceEmail is the payload confirming to the student that a scribe
// took their request.
type AcceptanceEmail struct {
	ToName     string
	ToEmail    string
	ScribeName string
	ExamDate   string
	ExamTime   string
	Language   string
}

var acceptanceTmpl = template.Must(template.New("acceptance").Parse(`
<p>Hi {{.ToName}},</p>
<p><b>{{.ScribeName}}</b> has accepted your scribe request for the
<b>{{.Language}}</b> exam on <b>{{.ExamDate}}</b>{{if .ExamTime}} at
<b>{{.ExamTime}}</b>{{end}}.</p>
<p>You can reach them through the portal chat to plan the day.</p>
`))

// Dispatcher queues and sends notification email.
type Dispatcher struct {
	queue       *jobs.Queue
	mailer      mailer.Mailer
	frontendURL string
	logger      *zap.Logger
}

// NewDispatcher builds a Dispatcher backed by an in-memory queue.
func NewDispatcher(m mailer.Mailer, frontendURL string, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{mailer: m, frontendURL: strings.TrimRight(frontendURL, "/"), logger: logger}
	d.queue = jobs.NewQueue("notify", d.handle, jobs.QueueConfig{
		Workers: 2,
		Logger:  logger,
	})
	return d
}

// Start begins background delivery.
func (d *Dispatcher) Start(ctx context.Context) { d.queue.Start(ctx) }

// Stop drains the workers.
func (d *Dispatcher) Stop() { d.queue.Stop() }

// AcceptURL builds the frontend link a scribe follows to accept an invitation.
func (d *Dispatcher) AcceptURL(token string) string {
	return d.frontendURL + "/scribe/accept-request?token=" + url.QueryEscape(token)
}

// SendInvitation enqueues one invitation email. Failure to enqueue is logged
// and swallowed; the invitation row already exists and the scribe can still
// see it in their invite list.
func (d *Dispatcher) SendInvitation(email InvitationEmail) {
	err := d.queue.Enqueue(jobs.Job{
		ID:      uuid.New().String(),
		Type:    jobTypeInvitation,
		Payload: email,
	})
	if err != nil {
		d.logger.Sugar().Warnw("failed to enqueue invitation email", "to", email.ToEmail, "error", err)
	}
}

// SendAcceptance enqueues the student's confirmation email. Like invitations
// the send is best effort; the request is already ACCEPTED either way.
func (d *Dispatcher) SendAcceptance(email AcceptanceEmail) {
	err := d.queue.Enqueue(jobs.Job{
		ID:      uuid.New().String(),
		Type:    jobTypeAcceptance,
		Payload: email,
	})
	if err != nil {
		d.logger.Sugar().Warnw("failed to enqueue acceptance email", "to", email.ToEmail, "error", err)
	}
}

func (d *Dispatcher) handle(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case jobTypeInvitation:
		email, ok := job.Payload.(InvitationEmail)
		if !ok {
			return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type)
		}
		return d.sendInvitation(ctx, email)
	case jobTypeAcceptance:
		email, ok := job.Payload.(AcceptanceEmail)
		if !ok {
			return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type)
		}
		return d.sendAcceptance(ctx, email)
	default:
		return fmt.Errorf("unknown job type %s", job.Type)
	}
}

func (d *Dispatcher) sendInvitation(ctx context.Context, email InvitationEmail) error {
	var body strings.Builder
	if err := invitationTmpl.Execute(&body, email); err != nil {
		return fmt.Errorf("render invitation email: %w", err)
	}
	return d.mailer.Send(ctx, mailer.Message{
		ToName:  email.ToName,
		ToEmail: email.ToEmail,
		Subject: "You have a new scribe request",
		HTML:    body.String(),
	})
}

func (d *Dispatcher) sendAcceptance(ctx context.Context, email AcceptanceEmail) error {
	var body strings.Builder
	if err := acceptanceTmpl.Execute(&body, email); err != nil {
		return fmt.Errorf("render acceptance email: %w", err)
	}
	return d.mailer.Send(ctx, mailer.Message{
		ToName:  email.ToName,
		ToEmail: email.ToEmail,
		Subject: "A scribe has accepted your request",
		HTML:    body.String(),
	})
}
