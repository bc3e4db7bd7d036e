package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
	"github.com/scribeconnect/scribe-portal-api/pkg/clock"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
)

type profileReader interface {
	FindIDByUser(ctx context.Context, userID string) (string, error)
	FindProfileByUser(ctx context.Context, userID string) (*models.ScribeProfile, error)
}

type unavailabilityStore interface {
	ListByScribe(ctx context.Context, scribeID string) ([]models.Unavailability, error)
	Upsert(ctx context.Context, rec *models.Unavailability) error
	Delete(ctx context.Context, scribeID, date string) error
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// SetUnavailabilityRequest blocks one date, replacing any existing reason.
type SetUnavailabilityRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Reason string `json:"reason" validate:"required,oneof=PERSONAL EXAM_BOOKED"`
}

// ScribeService serves the scribe's own profile and availability calendar.
// Availability writes invalidate cached candidate pages so students do not
// keep seeing a scribe who just blocked the exam date.
type ScribeService struct {
	scribes        profileReader
	unavailability unavailabilityStore
	cache          cacheInvalidator
	validator      *validator.Validate
	logger         *zap.Logger
}

// NewScribeService constructs ScribeService. cache may be nil.
func NewScribeService(scribes profileReader, unavailability unavailabilityStore, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ScribeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScribeService{
		scribes:        scribes,
		unavailability: unavailability,
		cache:          cache,
		validator:      validate,
		logger:         logger,
	}
}

// Profile returns the scribe dashboard view for the calling account.
func (s *ScribeService) Profile(ctx context.Context, userID string) (*models.ScribeProfile, error) {
	profile, err := s.scribes.FindProfileByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no scribe profile for this account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scribe profile")
	}
	return profile, nil
}

// ListUnavailability returns the scribe's blocked dates.
func (s *ScribeService) ListUnavailability(ctx context.Context, userID string) ([]models.Unavailability, error) {
	scribeID, err := s.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	records, err := s.unavailability.ListByScribe(ctx, scribeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list unavailability")
	}
	return records, nil
}

// SetUnavailability blocks a date. Setting an already blocked date replaces
// the stored reason.
func (s *ScribeService) SetUnavailability(ctx context.Context, userID string, req SetUnavailabilityRequest) (*models.Unavailability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unavailability payload")
	}
	if pastDate(req.Date) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot block a past date")
	}
	scribeID, err := s.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec := &models.Unavailability{
		ScribeID: scribeID,
		Date:     req.Date,
		Reason:   models.UnavailabilityReason(req.Reason),
	}
	if err := s.unavailability.Upsert(ctx, rec); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save unavailability")
	}
	s.invalidateCandidates(ctx)
	return rec, nil
}

// DeleteUnavailability unblocks a date. Missing rows are a no-op.
func (s *ScribeService) DeleteUnavailability(ctx context.Context, userID, date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	scribeID, err := s.resolve(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.unavailability.Delete(ctx, scribeID, date); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete unavailability")
	}
	s.invalidateCandidates(ctx)
	return nil
}

func (s *ScribeService) resolve(ctx context.Context, userID string) (string, error) {
	scribeID, err := s.scribes.FindIDByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrForbidden, "no scribe profile for this account")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scribe profile")
	}
	return scribeID, nil
}

func (s *ScribeService) invalidateCandidates(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "candidates:*"); err != nil {
		s.logger.Sugar().Warnw("failed to invalidate candidate cache", "error", err)
	}
}

// pastDate compares against today's civil date; ISO dates order
// lexicographically.
func pastDate(date string) bool {
	return date < clock.CivilOf(time.Now()).Date()
}
