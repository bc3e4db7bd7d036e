package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
	"github.com/scribeconnect/scribe-portal-api/internal/notify"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
)

type fakeInvitationStore struct {
	batches   [][]string
	accepted  map[string]bool
	acceptErr error
	declined  []string
	pending   []models.InvitationDetail
}

func (f *fakeInvitationStore) CreateBatch(_ context.Context, requestID string, scribeIDs []string) ([]models.Invitation, error) {
	f.batches = append(f.batches, scribeIDs)
	invitations := make([]models.Invitation, 0, len(scribeIDs))
	for i, id := range scribeIDs {
		invitations = append(invitations, models.Invitation{
			Token:         "tok-" + string(rune('a'+i)),
			ExamRequestID: requestID,
			ScribeID:      id,
			Status:        models.InvitePending,
		})
	}
	return invitations, nil
}

func (f *fakeInvitationStore) Accept(_ context.Context, token, _ string) (string, error) {
	if f.acceptErr != nil {
		return "", f.acceptErr
	}
	return "req-1", nil
}

func (f *fakeInvitationStore) Decline(_ context.Context, token, _ string) error {
	f.declined = append(f.declined, token)
	return nil
}

func (f *fakeInvitationStore) HasAccepted(_ context.Context, requestID string) (bool, error) {
	return f.accepted[requestID], nil
}

func (f *fakeInvitationStore) ListPendingByScribe(_ context.Context, _ string) ([]models.InvitationDetail, error) {
	return f.pending, nil
}

type fakeScribeDirectory struct {
	idsByUser map[string]string
	emails    map[string]models.User
}

func (f *fakeScribeDirectory) FindIDByUser(_ context.Context, userID string) (string, error) {
	id, ok := f.idsByUser[userID]
	if !ok {
		return "", sql.ErrNoRows
	}
	return id, nil
}

func (f *fakeScribeDirectory) EmailsByIDs(_ context.Context, scribeIDs []string) (map[string]models.User, error) {
	result := map[string]models.User{}
	for _, id := range scribeIDs {
		if u, ok := f.emails[id]; ok {
			result[id] = u
		}
	}
	return result, nil
}

type fakeUserFinder struct {
	users map[string]*models.User
}

func (f *fakeUserFinder) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

type fakeNotifier struct {
	sent      []notify.InvitationEmail
	confirmed []notify.AcceptanceEmail
}

func (f *fakeNotifier) AcceptURL(token string) string {
	return "https://portal.test/scribe/accept-request?token=" + token
}

func (f *fakeNotifier) SendInvitation(email notify.InvitationEmail) {
	f.sent = append(f.sent, email)
}

func (f *fakeNotifier) SendAcceptance(email notify.AcceptanceEmail) {
	f.confirmed = append(f.confirmed, email)
}

func newInvitationFixture(status models.RequestStatus) (*InvitationService, *fakeInvitationStore, *fakeNotifier) {
	invitations := &fakeInvitationStore{accepted: map[string]bool{}}
	requests := &fakeRequestStore{requests: map[string]*models.ExamRequest{
		"req-1": {
			ID: "req-1", StudentID: "student-1", Status: status,
			ExamDate: "2026-03-14", Language: "english", District: "mysuru", City: "Mysuru",
		},
	}}
	scribes := &fakeScribeDirectory{
		idsByUser: map[string]string{"user-scribe-1": "s1"},
		emails: map[string]models.User{
			"s1": {ID: "u1", Email: "asha@example.com", FirstName: "Asha", LastName: "Rao"},
			"s2": {ID: "u2", Email: "vikram@example.com", FirstName: "Vikram"},
		},
	}
	users := &fakeUserFinder{users: map[string]*models.User{
		"student-1": {ID: "student-1", Email: "ravi@example.com", FirstName: "Ravi", LastName: "Kumar"},
	}}
	notifier := &fakeNotifier{}
	svc := NewInvitationService(invitations, requests, scribes, users, notifier, nil, nil)
	return svc, invitations, notifier
}

func TestSendInvitationsIssuesTokensAndEmails(t *testing.T) {
	svc, invitations, notifier := newInvitationFixture(models.RequestOpen)

	count, err := svc.SendInvitations(context.Background(), "student-1", SendInvitationsRequest{
		ExamRequestID: "req-1",
		ScribeIDs:     []string{"s1", "s2", "s1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.Len(t, invitations.batches, 1)
	assert.Equal(t, []string{"s1", "s2"}, invitations.batches[0])

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "Asha Rao", notifier.sent[0].ToName)
	assert.Equal(t, "Ravi Kumar", notifier.sent[0].StudentName)
	assert.Contains(t, notifier.sent[0].AcceptURL, "token=tok-a")
}

func TestSendInvitationsRequiresOpenRequest(t *testing.T) {
	svc, _, notifier := newInvitationFixture(models.RequestAccepted)

	_, err := svc.SendInvitations(context.Background(), "student-1", SendInvitationsRequest{
		ExamRequestID: "req-1",
		ScribeIDs:     []string{"s1"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRequestNotOpen.Code, appErrors.FromError(err).Code)
	assert.Empty(t, notifier.sent)
}

func TestSendInvitationsRejectsForeignRequest(t *testing.T) {
	svc, _, _ := newInvitationFixture(models.RequestOpen)

	_, err := svc.SendInvitations(context.Background(), "student-2", SendInvitationsRequest{
		ExamRequestID: "req-1",
		ScribeIDs:     []string{"s1"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSendInvitationsRejectsAlreadyAccepted(t *testing.T) {
	svc, invitations, _ := newInvitationFixture(models.RequestOpen)
	invitations.accepted["req-1"] = true

	_, err := svc.SendInvitations(context.Background(), "student-1", SendInvitationsRequest{
		ExamRequestID: "req-1",
		ScribeIDs:     []string{"s1"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAcceptResolvesScribeProfile(t *testing.T) {
	svc, _, _ := newInvitationFixture(models.RequestOpen)

	requestID, err := svc.Accept(context.Background(), "user-scribe-1", "tok-a")
	require.NoError(t, err)
	assert.Equal(t, "req-1", requestID)

	_, err = svc.Accept(context.Background(), "user-without-profile", "tok-a")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Accept(context.Background(), "user-scribe-1", "  ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAcceptQueuesStudentConfirmation(t *testing.T) {
	svc, _, notifier := newInvitationFixture(models.RequestAccepted)

	_, err := svc.Accept(context.Background(), "user-scribe-1", "tok-a")
	require.NoError(t, err)

	require.Len(t, notifier.confirmed, 1)
	confirmation := notifier.confirmed[0]
	assert.Equal(t, "ravi@example.com", confirmation.ToEmail)
	assert.Equal(t, "Ravi Kumar", confirmation.ToName)
	assert.Equal(t, "Asha Rao", confirmation.ScribeName)
	assert.Equal(t, "2026-03-14", confirmation.ExamDate)
	assert.Equal(t, "english", confirmation.Language)
}

func TestAcceptSurfacesRepositoryConflict(t *testing.T) {
	svc, invitations, notifier := newInvitationFixture(models.RequestOpen)
	invitations.acceptErr = appErrors.ErrRequestTaken

	_, err := svc.Accept(context.Background(), "user-scribe-1", "tok-a")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRequestTaken.Code, appErrors.FromError(err).Code)
	assert.Empty(t, notifier.confirmed)
}

func TestDeclinePassesThrough(t *testing.T) {
	svc, invitations, _ := newInvitationFixture(models.RequestOpen)

	require.NoError(t, svc.Decline(context.Background(), "user-scribe-1", "tok-a"))
	require.NoError(t, svc.Decline(context.Background(), "user-scribe-1", "tok-a"))
	assert.Equal(t, []string{"tok-a", "tok-a"}, invitations.declined)
}
