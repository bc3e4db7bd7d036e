package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
)

type feedbackStore interface {
	Create(ctx context.Context, fb *models.Feedback) error
}

// FeedbackRequest rates a completed exam request.
type FeedbackRequest struct {
	ExamRequestID string `json:"examRequestId" validate:"required"`
	Stars         int    `json:"stars" validate:"required,min=1,max=5"`
	Review        string `json:"review" validate:"omitempty,max=2000"`
}

// FeedbackService records one rating per completed request and folds it into
// the scribe's running average.
type FeedbackService struct {
	feedback  feedbackStore
	requests  requestFinder
	validator *validator.Validate
	logger    *zap.Logger
}

func NewFeedbackService(feedback feedbackStore, requests requestFinder, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{feedback: feedback, requests: requests, validator: validate, logger: logger}
}

// Submit stores feedback for the calling student's COMPLETED request.
// A second submission for the same request is rejected.
func (s *FeedbackService) Submit(ctx context.Context, studentID string, req FeedbackRequest) (*models.Feedback, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}

	request, err := s.requests.FindByID(ctx, req.ExamRequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam request")
	}
	if request.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "this request belongs to another student")
	}
	if request.Status != models.RequestCompleted {
		return nil, appErrors.Clone(appErrors.ErrConflict, "feedback is only accepted for completed requests")
	}
	if request.AcceptedScribeID == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "request has no accepted scribe")
	}

	fb := &models.Feedback{
		ExamRequestID: request.ID,
		StudentID:     studentID,
		ScribeID:      *request.AcceptedScribeID,
		Stars:         req.Stars,
		Review:        req.Review,
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrConflict.Code {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save feedback")
	}

	s.logger.Sugar().Infow("feedback recorded",
		"exam_request_id", request.ID, "scribe_id", fb.ScribeID, "stars", fb.Stars)
	return fb, nil
}
