package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
)

// UnavailabilityRepository persists the dates a scribe cannot serve.
type UnavailabilityRepository struct {
	db *sqlx.DB
}

// NewUnavailabilityRepository constructs the repository.
func NewUnavailabilityRepository(db *sqlx.DB) *UnavailabilityRepository {
	return &UnavailabilityRepository{db: db}
}

// ListByScribe returns the scribe's blocked dates, soonest first.
func (r *UnavailabilityRepository) ListByScribe(ctx context.Context, scribeID string) ([]models.Unavailability, error) {
	const query = `SELECT id, scribe_id, to_char(date, 'YYYY-MM-DD') AS date, reason, created_at
        FROM scribe_unavailability WHERE scribe_id = $1 ORDER BY date`
	var records []models.Unavailability
	if err := r.db.SelectContext(ctx, &records, query, scribeID); err != nil {
		return nil, fmt.Errorf("list unavailability: %w", err)
	}
	if records == nil {
		records = []models.Unavailability{}
	}
	return records, nil
}

// Upsert records a blocked date, updating the reason when the date is
// already blocked. Unique per (scribe, date).
func (r *UnavailabilityRepository) Upsert(ctx context.Context, rec *models.Unavailability) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO scribe_unavailability (id, scribe_id, date, reason, created_at)
        VALUES ($1, $2, $3::date, $4, $5)
        ON CONFLICT (scribe_id, date) DO UPDATE SET reason = EXCLUDED.reason`
	if _, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.ScribeID, rec.Date, rec.Reason, rec.CreatedAt); err != nil {
		return fmt.Errorf("upsert unavailability: %w", err)
	}
	return nil
}

// Delete removes a blocked date. Deleting an absent date is a no-op.
func (r *UnavailabilityRepository) Delete(ctx context.Context, scribeID, date string) error {
	const query = `DELETE FROM scribe_unavailability WHERE scribe_id = $1 AND date = $2::date`
	if _, err := r.db.ExecContext(ctx, query, scribeID, date); err != nil {
		return fmt.Errorf("delete unavailability: %w", err)
	}
	return nil
}
