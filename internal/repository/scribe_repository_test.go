package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
)

func candidateColumns() []string {
	return []string{"scribe_id", "first_name", "last_name", "district", "city", "rating", "rating_count", "priority"}
}

func TestScribeRepositoryFindCandidatesRanksAndPages(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScribeRepository(db)

	criteria := models.CandidateCriteria{
		Language: "english",
		State:    "karnataka",
		District: "mysuru",
		ExamDate: "2026-03-14",
	}

	rows := sqlmock.NewRows(candidateColumns()).
		AddRow("s1", "Asha", "Rao", "mysuru", "Mysuru", 4.8, 20, 1).
		AddRow("s2", "Vikram", "N", "mysuru", "Mysuru", 4.5, 12, 1).
		AddRow("s3", "Deepa", "K", "bengaluru urban", "Bengaluru", 4.9, 40, 2)
	mock.ExpectQuery("FROM scribes s").
		WithArgs("mysuru", "english", "karnataka", "2026-03-14", 3, 2).
		WillReturnRows(rows)

	candidates, hasMore, err := repo.FindCandidates(context.Background(), criteria, 2, 2)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
	assert.True(t, hasMore)
	assert.Equal(t, 1, candidates[0].Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScribeRepositoryFindCandidatesEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScribeRepository(db)

	mock.ExpectQuery("FROM scribes s").
		WillReturnRows(sqlmock.NewRows(candidateColumns()))

	candidates, hasMore, err := repo.FindCandidates(context.Background(), models.CandidateCriteria{}, 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, candidates)
	assert.Empty(t, candidates)
	assert.False(t, hasMore)
}

func TestScribeRepositoryEmailsByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScribeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "email", "first_name", "last_name"}).
		AddRow("s1", "u1", "asha@example.com", "Asha", "Rao").
		AddRow("s2", "u2", "vikram@example.com", "Vikram", "N")
	mock.ExpectQuery("FROM scribes s JOIN users u").
		WithArgs("s1", "s2").
		WillReturnRows(rows)

	result, err := repo.EmailsByIDs(context.Background(), []string{"s1", "s2"})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "asha@example.com", result["s1"].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScribeRepositoryEmailsByIDsEmptyInput(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScribeRepository(db)

	result, err := repo.EmailsByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}
