package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
	"github.com/scribeconnect/scribe-portal-api/internal/notify"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
)

type invitationStore interface {
	CreateBatch(ctx context.Context, requestID string, scribeIDs []string) ([]models.Invitation, error)
	Accept(ctx context.Context, token, scribeID string) (string, error)
	Decline(ctx context.Context, token, scribeID string) error
	HasAccepted(ctx context.Context, requestID string) (bool, error)
	ListPendingByScribe(ctx context.Context, scribeID string) ([]models.InvitationDetail, error)
}

type requestFinder interface {
	FindByID(ctx context.Context, id string) (*models.ExamRequest, error)
}

type scribeDirectory interface {
	FindIDByUser(ctx context.Context, userID string) (string, error)
	EmailsByIDs(ctx context.Context, scribeIDs []string) (map[string]models.User, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type inviteNotifier interface {
	AcceptURL(token string) string
	SendInvitation(email notify.InvitationEmail)
	SendAcceptance(email notify.AcceptanceEmail)
}

// SendInvitationsRequest selects candidate scribes to invite for a request.
type SendInvitationsRequest struct {
	ExamRequestID string   `json:"examRequestId" validate:"required"`
	ScribeIDs     []string `json:"scribeIds" validate:"required,min=1,dive,required"`
}

// InvitationService issues single-use invitation tokens and resolves their
// accept/decline outcomes. Acceptance is first-wins: the repository commits
// the winner and everyone else sees a conflict.
type InvitationService struct {
	invitations invitationStore
	requests    requestFinder
	scribes     scribeDirectory
	users       userFinder
	notifier    inviteNotifier
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewInvitationService constructs InvitationService. notifier may be nil.
func NewInvitationService(invitations invitationStore, requests requestFinder, scribes scribeDirectory, users userFinder, notifier inviteNotifier, validate *validator.Validate, logger *zap.Logger) *InvitationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvitationService{
		invitations: invitations,
		requests:    requests,
		scribes:     scribes,
		users:       users,
		notifier:    notifier,
		validator:   validate,
		logger:      logger,
	}
}

// SendInvitations issues one token per selected scribe and queues the emails.
// The request must be OPEN and belong to the calling student.
func (s *InvitationService) SendInvitations(ctx context.Context, studentID string, req SendInvitationsRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invitation payload")
	}

	request, err := s.requests.FindByID(ctx, req.ExamRequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "exam request not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam request")
	}
	if request.StudentID != studentID {
		return 0, appErrors.Clone(appErrors.ErrForbidden, "this request belongs to another student")
	}
	if request.Status != models.RequestOpen {
		return 0, appErrors.ErrRequestNotOpen
	}
	accepted, err := s.invitations.HasAccepted(ctx, request.ID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check invitations")
	}
	if accepted {
		return 0, appErrors.Clone(appErrors.ErrConflict, "a scribe has already accepted this request")
	}

	invitations, err := s.invitations.CreateBatch(ctx, request.ID, dedupe(req.ScribeIDs))
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create invitations")
	}

	s.logger.Sugar().Infow("invitations issued",
		"exam_request_id", request.ID, "student_id", studentID, "count", len(invitations))

	s.notifyScribes(ctx, request, invitations)
	return len(invitations), nil
}

// Accept redeems a token for the calling scribe. On success the request is
// ACCEPTED and the winning request id is returned.
func (s *InvitationService) Accept(ctx context.Context, scribeUserID, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "token is required")
	}
	scribeID, err := s.scribeID(ctx, scribeUserID)
	if err != nil {
		return "", err
	}
	requestID, err := s.invitations.Accept(ctx, token, scribeID)
	if err != nil {
		return "", err
	}
	s.logger.Sugar().Infow("invitation accepted",
		"exam_request_id", requestID, "scribe_id", scribeID)
	s.notifyStudent(ctx, requestID, scribeID)
	return requestID, nil
}

// Decline marks a pending token DECLINED. Declining an already resolved
// token is a no-op.
func (s *InvitationService) Decline(ctx context.Context, scribeUserID, token string) error {
	if strings.TrimSpace(token) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "token is required")
	}
	scribeID, err := s.scribeID(ctx, scribeUserID)
	if err != nil {
		return err
	}
	return s.invitations.Decline(ctx, token, scribeID)
}

// ListPending returns the scribe's open invitations with exam context.
func (s *InvitationService) ListPending(ctx context.Context, scribeUserID string) ([]models.InvitationDetail, error) {
	scribeID, err := s.scribeID(ctx, scribeUserID)
	if err != nil {
		return nil, err
	}
	invites, err := s.invitations.ListPendingByScribe(ctx, scribeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invitations")
	}
	return invites, nil
}

func (s *InvitationService) scribeID(ctx context.Context, userID string) (string, error) {
	scribeID, err := s.scribes.FindIDByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrForbidden, "no scribe profile for this account")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scribe profile")
	}
	return scribeID, nil
}

func (s *InvitationService) notifyScribes(ctx context.Context, request *models.ExamRequest, invitations []models.Invitation) {
	if s.notifier == nil {
		return
	}
	scribeIDs := make([]string, 0, len(invitations))
	for _, inv := range invitations {
		scribeIDs = append(scribeIDs, inv.ScribeID)
	}
	recipients, err := s.scribes.EmailsByIDs(ctx, scribeIDs)
	if err != nil {
		s.logger.Sugar().Warnw("failed to resolve invitation recipients",
			"exam_request_id", request.ID, "error", err)
		return
	}
	studentName := ""
	if student, err := s.users.FindByID(ctx, request.StudentID); err == nil {
		studentName = displayName(student.FirstName, student.LastName)
	}

	examTime := ""
	if request.ExamTime != nil {
		examTime = *request.ExamTime
	}
	for _, inv := range invitations {
		to, ok := recipients[inv.ScribeID]
		if !ok {
			continue
		}
		s.notifier.SendInvitation(notify.InvitationEmail{
			ToName:      displayName(to.FirstName, to.LastName),
			ToEmail:     to.Email,
			StudentName: studentName,
			ExamDate:    request.ExamDate,
			ExamTime:    examTime,
			Language:    request.Language,
			District:    request.District,
			City:        request.City,
			AcceptURL:   s.notifier.AcceptURL(inv.Token),
		})
	}
}

// notifyStudent queues the acceptance confirmation after the winning commit.
// Any lookup failure only costs the email, never the acceptance.
func (s *InvitationService) notifyStudent(ctx context.Context, requestID, scribeID string) {
	if s.notifier == nil {
		return
	}
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		s.logger.Sugar().Warnw("failed to load request for acceptance email",
			"exam_request_id", requestID, "error", err)
		return
	}
	student, err := s.users.FindByID(ctx, request.StudentID)
	if err != nil || student.Email == "" {
		s.logger.Sugar().Warnw("failed to resolve student for acceptance email",
			"exam_request_id", requestID, "error", err)
		return
	}
	scribeName := ""
	if recipients, err := s.scribes.EmailsByIDs(ctx, []string{scribeID}); err == nil {
		if scribe, ok := recipients[scribeID]; ok {
			scribeName = displayName(scribe.FirstName, scribe.LastName)
		}
	}

	examTime := ""
	if request.ExamTime != nil {
		examTime = *request.ExamTime
	}
	s.notifier.SendAcceptance(notify.AcceptanceEmail{
		ToName:     displayName(student.FirstName, student.LastName),
		ToEmail:    student.Email,
		ScribeName: scribeName,
		ExamDate:   request.ExamDate,
		ExamTime:   examTime,
		Language:   request.Language,
	})
}

func displayName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
