package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
)

// FeedbackRepository persists post-exam ratings and folds them into the
// scribe's rating aggregate in the same transaction.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts the feedback row and updates the scribe's running mean
// rating. A second submission for the same request hits the unique
// constraint and surfaces as a conflict.
func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin feedback: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insert = `INSERT INTO feedback (id, exam_request_id, student_id, scribe_id, stars, review, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, insert,
		fb.ID, fb.ExamRequestID, fb.StudentID, fb.ScribeID, fb.Stars, fb.Review, fb.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "feedback already submitted for this request")
		}
		return fmt.Errorf("insert feedback: %w", err)
	}

	const aggregate = `UPDATE scribes
        SET rating = ((rating * rating_count) + $2) / (rating_count + 1),
            rating_count = rating_count + 1
        WHERE id = $1`
	if _, err := tx.ExecContext(ctx, aggregate, fb.ScribeID, fb.Stars); err != nil {
		return fmt.Errorf("update rating aggregate: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit feedback: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
