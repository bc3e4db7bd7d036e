package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
)

type requestLister interface {
	ListByStudent(ctx context.Context, studentID string, filter models.RequestFilter) ([]models.RequestDetail, bool, error)
	ListByScribe(ctx context.Context, scribeID string, filter models.RequestFilter) ([]models.RequestDetail, bool, error)
}

type scribeResolver interface {
	FindIDByUser(ctx context.Context, userID string) (string, error)
}

// RequestPage is one page of a request listing.
type RequestPage struct {
	Requests []models.RequestDetail `json:"requests"`
	HasMore  bool                   `json:"has_more"`
}

// RequestService serves request history for both sides of a booking.
type RequestService struct {
	requests requestLister
	scribes  scribeResolver
	logger   *zap.Logger
}

func NewRequestService(requests requestLister, scribes scribeResolver, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{requests: requests, scribes: scribes, logger: logger}
}

// ListForStudent returns the student's own requests, newest first.
func (s *RequestService) ListForStudent(ctx context.Context, studentID string, filter models.RequestFilter) (*RequestPage, error) {
	if err := normalizeFilter(&filter); err != nil {
		return nil, err
	}
	rows, hasMore, err := s.requests.ListByStudent(ctx, studentID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return &RequestPage{Requests: rows, HasMore: hasMore}, nil
}

// ListForScribe returns the requests this scribe has accepted, newest first.
func (s *RequestService) ListForScribe(ctx context.Context, scribeUserID string, filter models.RequestFilter) (*RequestPage, error) {
	if err := normalizeFilter(&filter); err != nil {
		return nil, err
	}
	scribeID, err := s.scribes.FindIDByUser(ctx, scribeUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no scribe profile for this account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scribe profile")
	}
	rows, hasMore, err := s.requests.ListByScribe(ctx, scribeID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return &RequestPage{Requests: rows, HasMore: hasMore}, nil
}

func normalizeFilter(filter *models.RequestFilter) error {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}
	return nil
}
