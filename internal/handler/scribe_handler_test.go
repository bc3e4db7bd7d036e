package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
	"github.com/scribeconnect/scribe-portal-api/internal/service"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
)

type stubInvitationStore struct {
	acceptErr error
	pending   []models.InvitationDetail
}

func (s *stubInvitationStore) CreateBatch(_ context.Context, requestID string, scribeIDs []string) ([]models.Invitation, error) {
	return nil, nil
}

func (s *stubInvitationStore) Accept(context.Context, string, string) (string, error) {
	if s.acceptErr != nil {
		return "", s.acceptErr
	}
	return "req-1", nil
}

func (s *stubInvitationStore) Decline(context.Context, string, string) error { return nil }

func (s *stubInvitationStore) HasAccepted(context.Context, string) (bool, error) { return false, nil }

func (s *stubInvitationStore) ListPendingByScribe(context.Context, string) ([]models.InvitationDetail, error) {
	return s.pending, nil
}

type stubScribeDirectory struct{}

func (stubScribeDirectory) FindIDByUser(_ context.Context, userID string) (string, error) {
	if userID != "student-1" {
		return "", sql.ErrNoRows
	}
	return "s1", nil
}

func (stubScribeDirectory) EmailsByIDs(context.Context, []string) (map[string]models.User, error) {
	return map[string]models.User{}, nil
}

func newScribeHandlerFixture(store *stubInvitationStore) *ScribeHandler {
	invitations := service.NewInvitationService(store, &stubRequestStore{}, stubScribeDirectory{}, nil, nil, nil, nil)
	return NewScribeHandler(invitations, nil, nil, nil)
}

func TestScribeHandlerAcceptRequest(t *testing.T) {
	h := newScribeHandlerFixture(&stubInvitationStore{})

	c, rec := studentContext(t, http.MethodPost, "/scribe/acceptRequest", `{"token":"tok-1"}`)
	h.AcceptRequest(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-1", body["exam_request_id"])
}

func TestScribeHandlerAcceptRequestTaken(t *testing.T) {
	h := newScribeHandlerFixture(&stubInvitationStore{acceptErr: appErrors.ErrRequestTaken})

	c, rec := studentContext(t, http.MethodPost, "/scribe/acceptRequest", `{"token":"tok-1"}`)
	h.AcceptRequest(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, appErrors.ErrRequestTaken.Code, body["code"])
	assert.NotEmpty(t, body["message"])
}

func TestScribeHandlerAcceptRequestMalformedBody(t *testing.T) {
	h := newScribeHandlerFixture(&stubInvitationStore{})

	c, rec := studentContext(t, http.MethodPost, "/scribe/acceptRequest", `{`)
	h.AcceptRequest(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScribeHandlerInvites(t *testing.T) {
	h := newScribeHandlerFixture(&stubInvitationStore{pending: []models.InvitationDetail{
		{Invitation: models.Invitation{Token: "tok-1"}, StudentName: "Ravi Kumar"},
	}})

	c, rec := studentContext(t, http.MethodGet, "/scribe/invites", "")
	h.Invites(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Invites []models.InvitationDetail `json:"invites"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Invites, 1)
	assert.Equal(t, "Ravi Kumar", body.Invites[0].StudentName)
}
