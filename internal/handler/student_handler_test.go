package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scribeconnect/scribe-portal-api/internal/middleware"
	"github.com/scribeconnect/scribe-portal-api/internal/models"
	"github.com/scribeconnect/scribe-portal-api/internal/service"
)

type stubRequestStore struct {
	requests map[string]*models.ExamRequest
}

func (s *stubRequestStore) Create(_ context.Context, req *models.ExamRequest) error {
	req.ID = "req-1"
	req.Status = models.RequestOpen
	return nil
}

func (s *stubRequestStore) FindByID(_ context.Context, id string) (*models.ExamRequest, error) {
	req, ok := s.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return req, nil
}

type stubCandidateFinder struct {
	candidates []models.Candidate
	hasMore    bool
}

func (s *stubCandidateFinder) FindCandidates(context.Context, models.CandidateCriteria, int, int) ([]models.Candidate, bool, error) {
	return s.candidates, s.hasMore, nil
}

func studentContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
	return c, rec
}

func newStudentHandlerFixture(finder *stubCandidateFinder) *StudentHandler {
	matching := service.NewMatchingService(&stubRequestStore{}, finder, nil, 0, 10, nil, nil)
	return NewStudentHandler(matching, nil, nil, nil, nil)
}

func TestStudentHandlerCreateRequest(t *testing.T) {
	h := newStudentHandlerFixture(&stubCandidateFinder{
		candidates: []models.Candidate{{ScribeID: "s1", FirstName: "Asha"}},
		hasMore:    true,
	})

	c, rec := studentContext(t, http.MethodPost, "/student/createRequest",
		`{"date":"2026-03-14","time":"10:30","language":"English","state":"Karnataka","district":"Mysuru","city":"Mysuru"}`)
	h.CreateRequest(c)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		ExamRequestID string             `json:"exam_request_id"`
		Scribes       []models.Candidate `json:"scribes"`
		HasMore       bool               `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-1", body.ExamRequestID)
	assert.Len(t, body.Scribes, 1)
	assert.True(t, body.HasMore)
}

func TestStudentHandlerCreateRequestInvalidPayload(t *testing.T) {
	h := newStudentHandlerFixture(&stubCandidateFinder{})

	c, rec := studentContext(t, http.MethodPost, "/student/createRequest", `{"date":"not-a-date"}`)
	h.CreateRequest(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["message"])
}

func TestStudentHandlerCreateRequestRequiresClaims(t *testing.T) {
	h := newStudentHandlerFixture(&stubCandidateFinder{})

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/student/createRequest", strings.NewReader(`{}`))

	h.CreateRequest(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStudentHandlerLoadScribesMissingID(t *testing.T) {
	h := newStudentHandlerFixture(&stubCandidateFinder{})

	c, rec := studentContext(t, http.MethodGet, "/student/load-scribes?page=2", "")
	h.LoadScribes(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
