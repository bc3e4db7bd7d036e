package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
)

func chatFixture() (*ChatService, *fakeScribeDirectory) {
	scribeID := "s1"
	requests := &fakeRequestStore{requests: map[string]*models.ExamRequest{
		"req-1": {
			ID: "req-1", StudentID: "student-1",
			Status: models.RequestAccepted, AcceptedScribeID: &scribeID,
		},
	}}
	scribes := &fakeScribeDirectory{idsByUser: map[string]string{"user-scribe-1": "s1", "user-scribe-2": "s2"}}
	return NewChatService(requests, scribes, "chat-secret", time.Hour, nil), scribes
}

func TestChatTokenForParticipants(t *testing.T) {
	svc, _ := chatFixture()

	for _, tc := range []struct {
		userID string
		role   models.UserRole
	}{
		{"student-1", models.RoleStudent},
		{"user-scribe-1", models.RoleScribe},
	} {
		token, err := svc.Token(context.Background(), tc.userID, tc.role, "req-1")
		require.NoError(t, err, tc.userID)
		assert.Equal(t, "req-1", token.RoomID)

		parsed, err := jwt.Parse(token.Token, func(*jwt.Token) (interface{}, error) {
			return []byte("chat-secret"), nil
		})
		require.NoError(t, err)
		claims := parsed.Claims.(jwt.MapClaims)
		assert.Equal(t, "req-1", claims["room"])
		assert.Equal(t, tc.userID, claims["sub"])
	}
}

func TestChatTokenRejectsOutsiders(t *testing.T) {
	svc, _ := chatFixture()

	_, err := svc.Token(context.Background(), "student-2", models.RoleStudent, "req-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Token(context.Background(), "user-scribe-2", models.RoleScribe, "req-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestChatTokenRequiresAcceptedRequest(t *testing.T) {
	svc, _ := chatFixture()
	svcRequests := svc.requests.(*fakeRequestStore)
	svcRequests.requests["req-1"].Status = models.RequestOpen

	_, err := svc.Token(context.Background(), "student-1", models.RoleStudent, "req-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestChatTokenUnknownRequest(t *testing.T) {
	svc, _ := chatFixture()

	_, err := svc.Token(context.Background(), "student-1", models.RoleStudent, "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
