package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
)

// ChatToken grants entry to the external chat room for one booking.
type ChatToken struct {
	Token     string    `json:"token"`
	RoomID    string    `json:"room_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ChatService mints short-lived room tokens for the messaging provider.
// Rooms are keyed by exam request; only the student and the accepted scribe
// of an ACCEPTED request may join.
type ChatService struct {
	requests requestFinder
	scribes  scribeResolver
	secret   []byte
	ttl      time.Duration
	logger   *zap.Logger
}

func NewChatService(requests requestFinder, scribes scribeResolver, secret string, ttl time.Duration, logger *zap.Logger) *ChatService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{requests: requests, scribes: scribes, secret: []byte(secret), ttl: ttl, logger: logger}
}

// Token issues a room token for the calling user if they belong to the
// booking.
func (s *ChatService) Token(ctx context.Context, userID string, role models.UserRole, requestID string) (*ChatToken, error) {
	if requestID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "examRequestId is required")
	}

	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam request")
	}
	if request.Status != models.RequestAccepted {
		return nil, appErrors.Clone(appErrors.ErrConflict, "chat is only available for accepted requests")
	}
	if err := s.authorize(ctx, request, userID, role); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expires := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"room": request.ID,
		"iat":  now.Unix(),
		"exp":  expires.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign chat token")
	}
	return &ChatToken{Token: signed, RoomID: request.ID, ExpiresAt: expires}, nil
}

func (s *ChatService) authorize(ctx context.Context, request *models.ExamRequest, userID string, role models.UserRole) error {
	switch role {
	case models.RoleStudent:
		if request.StudentID == userID {
			return nil
		}
	case models.RoleScribe:
		scribeID, err := s.scribes.FindIDByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrForbidden, "no scribe profile for this account")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scribe profile")
		}
		if request.AcceptedScribeID != nil && *request.AcceptedScribeID == scribeID {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "you are not a participant of this booking")
}
