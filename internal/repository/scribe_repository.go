package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
)

// ScribeRepository reads scribe profiles and runs candidate discovery.
// Profile writes belong to the admin verification and feedback subsystems.
type ScribeRepository struct {
	db *sqlx.DB
}

// NewScribeRepository constructs the repository.
func NewScribeRepository(db *sqlx.DB) *ScribeRepository {
	return &ScribeRepository{db: db}
}

// FindCandidates returns one page of eligible scribes for the criteria.
//
// Eligibility: verified, active account, speaks the language, same state,
// and no unavailability record on the exam date. Ranking: scribes in the
// request's district (priority 1) before same-state scribes (priority 2),
// then rating descending, then rating count descending. One extra row is
// fetched to compute hasMore.
func (r *ScribeRepository) FindCandidates(ctx context.Context, criteria models.CandidateCriteria, page, pageSize int) ([]models.Candidate, bool, error) {
	if page < 1 {
		page = 1
	}

	const query = `SELECT s.id AS scribe_id, u.first_name, u.last_name, s.district, s.city,
            s.rating, s.rating_count,
            CASE WHEN s.district = $1 THEN 1 ELSE 2 END AS priority
        FROM scribes s
        JOIN users u ON u.id = s.user_id
        WHERE s.verified = TRUE
          AND u.active = TRUE
          AND $2 = ANY(s.languages)
          AND s.state = $3
          AND NOT EXISTS (
              SELECT 1 FROM scribe_unavailability su
              WHERE su.scribe_id = s.id AND su.date = $4::date)
        ORDER BY priority, s.rating DESC, s.rating_count DESC, s.id
        LIMIT $5 OFFSET $6`

	var candidates []models.Candidate
	err := r.db.SelectContext(ctx, &candidates, query,
		criteria.District, criteria.Language, criteria.State, criteria.ExamDate,
		pageSize+1, (page-1)*pageSize)
	if err != nil {
		return nil, false, fmt.Errorf("find candidates: %w", err)
	}

	hasMore := len(candidates) > pageSize
	if hasMore {
		candidates = candidates[:pageSize]
	}
	if candidates == nil {
		candidates = []models.Candidate{}
	}
	return candidates, hasMore, nil
}

// FindIDByUser resolves a scribe ID from the account ID in the JWT.
func (r *ScribeRepository) FindIDByUser(ctx context.Context, userID string) (string, error) {
	var id string
	if err := r.db.GetContext(ctx, &id, `SELECT id FROM scribes WHERE user_id = $1`, userID); err != nil {
		return "", err
	}
	return id, nil
}

// FindProfileByUser returns the scribe's own profile with account fields.
func (r *ScribeRepository) FindProfileByUser(ctx context.Context, userID string) (*models.ScribeProfile, error) {
	const query = `SELECT s.id, s.user_id, s.verified, s.state, s.district, s.city,
            s.languages, s.rating, s.rating_count, s.created_at,
            u.first_name, u.last_name, u.email
        FROM scribes s
        JOIN users u ON u.id = s.user_id
        WHERE s.user_id = $1`
	var profile models.ScribeProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// EmailsByIDs returns recipient name/email pairs for invitation delivery.
func (r *ScribeRepository) EmailsByIDs(ctx context.Context, scribeIDs []string) (map[string]models.User, error) {
	if len(scribeIDs) == 0 {
		return map[string]models.User{}, nil
	}

	query, args, err := sqlx.In(`SELECT s.id, u.id AS user_id, u.email, u.first_name, u.last_name
        FROM scribes s JOIN users u ON u.id = s.user_id WHERE s.id IN (?)`, scribeIDs)
	if err != nil {
		return nil, fmt.Errorf("build scribe email query: %w", err)
	}
	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load scribe emails: %w", err)
	}
	defer rows.Close()

	result := make(map[string]models.User, len(scribeIDs))
	for rows.Next() {
		var scribeID string
		var u models.User
		if err := rows.Scan(&scribeID, &u.ID, &u.Email, &u.FirstName, &u.LastName); err != nil {
			return nil, fmt.Errorf("scan scribe email: %w", err)
		}
		result[scribeID] = u
	}
	return result, rows.Err()
}
