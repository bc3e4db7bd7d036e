package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
)

// InvitationRepository handles persistence of invitation tokens. The accept
// path is a single transaction so that two scribes racing for the same
// request resolve to exactly one winner.
type InvitationRepository struct {
	db *sqlx.DB
}

// NewInvitationRepository constructs the repository.
func NewInvitationRepository(db *sqlx.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// CreateBatch inserts one PENDING invitation per scribe in a single
// transaction and returns the created rows with their tokens.
func (r *InvitationRepository) CreateBatch(ctx context.Context, requestID string, scribeIDs []string) ([]models.Invitation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin invitation batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO invitations (token, exam_request_id, scribe_id, status, created_at)
        VALUES ($1, $2, $3, $4, $5)`

	now := time.Now().UTC()
	invitations := make([]models.Invitation, 0, len(scribeIDs))
	for _, scribeID := range scribeIDs {
		inv := models.Invitation{
			Token:         uuid.NewString(),
			ExamRequestID: requestID,
			ScribeID:      scribeID,
			Status:        models.InvitePending,
			CreatedAt:     now,
		}
		if _, err := tx.ExecContext(ctx, query,
			inv.Token, inv.ExamRequestID, inv.ScribeID, inv.Status, inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("insert invitation for scribe %s: %w", scribeID, err)
		}
		invitations = append(invitations, inv)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit invitation batch: %w", err)
	}
	return invitations, nil
}

// FindByToken returns an invitation by its token.
func (r *InvitationRepository) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	const query = `SELECT token, exam_request_id, scribe_id, status, created_at
        FROM invitations WHERE token = $1`
	var inv models.Invitation
	if err := r.db.GetContext(ctx, &inv, query, token); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Accept atomically flips the token to ACCEPTED, the parent request from
// OPEN to ACCEPTED with the scribe assigned, and every sibling PENDING
// token to EXPIRED. First acceptance wins: the loser's request-side guard
// matches zero rows, its token is expired instead, and ErrRequestTaken is
// returned. Returns the parent request ID on success.
func (r *InvitationRepository) Accept(ctx context.Context, token, scribeID string) (string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin accept: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var inv models.Invitation
	err = tx.GetContext(ctx, &inv, `SELECT token, exam_request_id, scribe_id, status, created_at
        FROM invitations WHERE token = $1 FOR UPDATE`, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.ErrTokenNotFound
		}
		return "", fmt.Errorf("load invitation: %w", err)
	}
	if inv.ScribeID != scribeID {
		return "", appErrors.Clone(appErrors.ErrForbidden, "this invitation was issued to another scribe")
	}
	if inv.Status != models.InvitePending {
		return "", appErrors.ErrTokenUsed
	}

	res, err := tx.ExecContext(ctx, `UPDATE exam_requests
        SET status = $1, accepted_scribe_id = $2
        WHERE id = $3 AND status = $4`,
		models.RequestAccepted, scribeID, inv.ExamRequestID, models.RequestOpen)
	if err != nil {
		return "", fmt.Errorf("accept request: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("accept request rows: %w", err)
	}
	if rows == 0 {
		// Request already taken or timed out; retire this token so the
		// scribe is not offered it again.
		if _, err := tx.ExecContext(ctx, `UPDATE invitations SET status = $1 WHERE token = $2 AND status = $3`,
			models.InviteExpired, token, models.InvitePending); err != nil {
			return "", fmt.Errorf("expire stale invitation: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return "", fmt.Errorf("commit stale invitation: %w", err)
		}
		return "", appErrors.ErrRequestTaken
	}

	if _, err := tx.ExecContext(ctx, `UPDATE invitations SET status = $1 WHERE token = $2 AND status = $3`,
		models.InviteAccepted, token, models.InvitePending); err != nil {
		return "", fmt.Errorf("accept invitation: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE invitations
        SET status = $1 WHERE exam_request_id = $2 AND status = $3 AND token <> $4`,
		models.InviteExpired, inv.ExamRequestID, models.InvitePending, token); err != nil {
		return "", fmt.Errorf("expire sibling invitations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit accept: %w", err)
	}
	return inv.ExamRequestID, nil
}

// Decline flips a PENDING token to DECLINED. Declining an already terminal
// token is a no-op; the parent request is never touched.
func (r *InvitationRepository) Decline(ctx context.Context, token, scribeID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE invitations
        SET status = $1 WHERE token = $2 AND scribe_id = $3 AND status = $4`,
		models.InviteDeclined, token, scribeID, models.InvitePending)
	if err != nil {
		return fmt.Errorf("decline invitation: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decline invitation rows: %w", err)
	}
	if rows > 0 {
		return nil
	}

	inv, err := r.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrTokenNotFound
		}
		return fmt.Errorf("load invitation: %w", err)
	}
	if inv.ScribeID != scribeID {
		return appErrors.Clone(appErrors.ErrForbidden, "this invitation was issued to another scribe")
	}
	return nil
}

// HasAccepted reports whether any invitation for the request already reached
// ACCEPTED.
func (r *InvitationRepository) HasAccepted(ctx context.Context, requestID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM invitations
        WHERE exam_request_id = $1 AND status = $2 LIMIT 1`, requestID, models.InviteAccepted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check accepted invitation: %w", err)
	}
	return true, nil
}

// ListPendingByScribe returns the scribe's live invitations with exam
// context, newest first. Invitations whose request is no longer OPEN are
// omitted even if the sweep has not retired them yet.
func (r *InvitationRepository) ListPendingByScribe(ctx context.Context, scribeID string) ([]models.InvitationDetail, error) {
	const query = `SELECT i.token, i.exam_request_id, i.scribe_id, i.status, i.created_at,
            to_char(r.exam_date, 'YYYY-MM-DD') AS exam_date,
            to_char(r.exam_time, 'HH24:MI:SS') AS exam_time,
            r.language, r.district, r.city,
            (u.first_name || ' ' || u.last_name) AS student_name
        FROM invitations i
        JOIN exam_requests r ON r.id = i.exam_request_id
        JOIN users u ON u.id = r.student_id
        WHERE i.scribe_id = $1 AND i.status = $2 AND r.status = $3
        ORDER BY i.created_at DESC`
	var invites []models.InvitationDetail
	if err := r.db.SelectContext(ctx, &invites, query, scribeID, models.InvitePending, models.RequestOpen); err != nil {
		return nil, fmt.Errorf("list pending invitations: %w", err)
	}
	if invites == nil {
		invites = []models.InvitationDetail{}
	}
	return invites, nil
}
