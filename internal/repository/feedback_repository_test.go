package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
)

func TestFeedbackRepositoryCreateUpdatesAggregate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO feedback").
		WithArgs(sqlmock.AnyArg(), "req-1", "student-1", "scribe-1", 5, "great support", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE scribes").
		WithArgs("scribe-1", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	fb := &models.Feedback{
		ExamRequestID: "req-1",
		StudentID:     "student-1",
		ScribeID:      "scribe-1",
		Stars:         5,
		Review:        "great support",
	}
	require.NoError(t, repo.Create(context.Background(), fb))
	assert.NotEmpty(t, fb.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO feedback").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "feedback_exam_request_id_key"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Feedback{
		ExamRequestID: "req-1",
		StudentID:     "student-1",
		ScribeID:      "scribe-1",
		Stars:         4,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestFeedbackRepositoryCreateOtherErrorIsNotConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	// A non-pq error mentioning "duplicate key" must not be mistaken for
	// the unique constraint.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO feedback").
		WillReturnError(errors.New("write failed: duplicate key buffer"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Feedback{
		ExamRequestID: "req-1",
		StudentID:     "student-1",
		ScribeID:      "scribe-1",
		Stars:         4,
	})
	require.Error(t, err)
	assert.NotEqual(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
