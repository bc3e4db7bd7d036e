package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
)

type candidateFinder interface {
	FindCandidates(ctx context.Context, criteria models.CandidateCriteria, page, pageSize int) ([]models.Candidate, bool, error)
}

type requestCreator interface {
	Create(ctx context.Context, req *models.ExamRequest) error
	FindByID(ctx context.Context, id string) (*models.ExamRequest, error)
}

type candidateCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CreateRequestRequest is the student's exam submission.
type CreateRequestRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"time" validate:"omitempty,datetime=15:04"`
	Language string `json:"language" validate:"required"`
	State    string `json:"state" validate:"required"`
	District string `json:"district" validate:"required"`
	City     string `json:"city" validate:"required"`
}

// CandidatePage is one page of ranked scribes plus the paging flag.
type CandidatePage struct {
	ExamRequestID string             `json:"exam_request_id"`
	Scribes       []models.Candidate `json:"scribes"`
	HasMore       bool               `json:"has_more"`
}

// MatchingService creates draft requests and discovers ranked candidates.
// Candidate pages are cached briefly so a student paging back and forth does
// not re-run the ranking query; unavailability writes invalidate the cache.
type MatchingService struct {
	requests  requestCreator
	scribes   candidateFinder
	cache     candidateCache
	cacheTTL  time.Duration
	pageSize  int
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMatchingService constructs MatchingService. cache may be nil.
func NewMatchingService(requests requestCreator, scribes candidateFinder, cache candidateCache, cacheTTL time.Duration, pageSize int, validate *validator.Validate, logger *zap.Logger) *MatchingService {
	if pageSize <= 0 {
		pageSize = 10
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchingService{requests: requests, scribes: scribes, cache: cache, cacheTTL: cacheTTL, pageSize: pageSize, validator: validate, logger: logger}
}

// CreateRequestAndMatch creates an OPEN draft request and returns page 1 of
// candidates. Zero candidates is not an error: the request stays OPEN with
// no invitations until the student retries or it times out.
func (s *MatchingService) CreateRequestAndMatch(ctx context.Context, studentID string, req CreateRequestRequest) (*CandidatePage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam request payload")
	}

	draft := &models.ExamRequest{
		StudentID: studentID,
		ExamDate:  req.Date,
		Language:  strings.ToLower(req.Language),
		State:     strings.ToLower(req.State),
		District:  strings.ToLower(req.District),
		City:      req.City,
	}
	if req.Time != "" {
		t := req.Time + ":00"
		draft.ExamTime = &t
	}
	if err := s.requests.Create(ctx, draft); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam request")
	}

	candidates, hasMore, err := s.scribes.FindCandidates(ctx, criteriaOf(draft), 1, s.pageSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find scribes")
	}

	s.logger.Sugar().Infow("exam request created",
		"exam_request_id", draft.ID, "student_id", studentID, "candidates", len(candidates))

	result := &CandidatePage{ExamRequestID: draft.ID, Scribes: candidates, HasMore: hasMore}
	s.cachePage(ctx, draft.ID, 1, result)
	return result, nil
}

// LoadMoreCandidates returns a later page for an existing draft. Criteria
// are re-derived from the stored request, not from client input, so the
// location and language cannot be tampered with after draft creation.
func (s *MatchingService) LoadMoreCandidates(ctx context.Context, studentID, requestID string, page int) (*CandidatePage, error) {
	if requestID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "examRequestId is required")
	}
	if page < 1 {
		page = 1
	}

	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam request")
	}
	if req.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "this request belongs to another student")
	}
	if req.Status != models.RequestOpen {
		return nil, appErrors.ErrRequestNotOpen
	}

	if cached := s.cachedPage(ctx, requestID, page); cached != nil {
		return cached, nil
	}

	candidates, hasMore, err := s.scribes.FindCandidates(ctx, criteriaOf(req), page, s.pageSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find scribes")
	}
	result := &CandidatePage{ExamRequestID: req.ID, Scribes: candidates, HasMore: hasMore}
	s.cachePage(ctx, req.ID, page, result)
	return result, nil
}

func candidateCacheKey(requestID string, page int) string {
	return fmt.Sprintf("candidates:%s:%d", requestID, page)
}

func (s *MatchingService) cachedPage(ctx context.Context, requestID string, page int) *CandidatePage {
	if s.cache == nil {
		return nil
	}
	var cached CandidatePage
	if err := s.cache.Get(ctx, candidateCacheKey(requestID, page), &cached); err != nil {
		return nil
	}
	return &cached
}

func (s *MatchingService) cachePage(ctx context.Context, requestID string, page int, value *CandidatePage) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, candidateCacheKey(requestID, page), value, s.cacheTTL); err != nil {
		s.logger.Sugar().Warnw("failed to cache candidate page", "exam_request_id", requestID, "page", page, "error", err)
	}
}

func criteriaOf(req *models.ExamRequest) models.CandidateCriteria {
	return models.CandidateCriteria{
		Language: req.Language,
		State:    req.State,
		District: req.District,
		ExamDate: req.ExamDate,
	}
}
