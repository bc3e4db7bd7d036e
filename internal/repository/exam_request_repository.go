package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
	"github.com/scribeconnect/scribe-portal-api/pkg/clock"
)

// RequestPageSize is the fixed page size for request listings.
const RequestPageSize = 10

const requestColumns = `id, student_id, to_char(exam_date, 'YYYY-MM-DD') AS exam_date,
        to_char(exam_time, 'HH24:MI:SS') AS exam_time, language, state, district, city,
        status, accepted_scribe_id, created_at, completed_at`

// ExamRequestRepository handles persistence of exam requests. Every status
// write is a conditional UPDATE guarded on the expected prior status, so a
// sweep tick racing an acceptance can never produce a lost update.
type ExamRequestRepository struct {
	db *sqlx.DB
}

// NewExamRequestRepository constructs the repository.
func NewExamRequestRepository(db *sqlx.DB) *ExamRequestRepository {
	return &ExamRequestRepository{db: db}
}

// Create persists a new draft request with status OPEN.
func (r *ExamRequestRepository) Create(ctx context.Context, req *models.ExamRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	req.Status = models.RequestOpen

	const query = `INSERT INTO exam_requests
        (id, student_id, exam_date, exam_time, language, state, district, city, status, created_at)
        VALUES ($1, $2, $3::date, $4::time, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query,
		req.ID, req.StudentID, req.ExamDate, req.ExamTime,
		req.Language, req.State, req.District, req.City, req.Status, req.CreatedAt,
	); err != nil {
		return fmt.Errorf("create exam request: %w", err)
	}
	return nil
}

// FindByID returns a request by its ID.
func (r *ExamRequestRepository) FindByID(ctx context.Context, id string) (*models.ExamRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM exam_requests WHERE id = $1`, requestColumns)
	var req models.ExamRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListByStudent returns the student's requests, most recent first, with the
// accepted scribe's name joined on. The extra fetched row drives has_more.
func (r *ExamRequestRepository) ListByStudent(ctx context.Context, studentID string, filter models.RequestFilter) ([]models.RequestDetail, bool, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}

	query := fmt.Sprintf(`SELECT %s, (u.first_name || ' ' || u.last_name) AS scribe_name
        FROM exam_requests r
        LEFT JOIN scribes s ON s.id = r.accepted_scribe_id
        LEFT JOIN users u ON u.id = s.user_id
        WHERE r.student_id = $1`, requestSelectAliased("r"))
	args := []interface{}{studentID}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND r.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	query += fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT %d OFFSET %d",
		RequestPageSize+1, (page-1)*RequestPageSize)

	var rows []models.RequestDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, false, fmt.Errorf("list student requests: %w", err)
	}
	return trimRequestPage(rows)
}

// ListByScribe returns requests assigned to the scribe, most recent first.
func (r *ExamRequestRepository) ListByScribe(ctx context.Context, scribeID string, filter models.RequestFilter) ([]models.RequestDetail, bool, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}

	query := fmt.Sprintf(`SELECT %s, (u.first_name || ' ' || u.last_name) AS student_name
        FROM exam_requests r
        JOIN users u ON u.id = r.student_id
        WHERE r.accepted_scribe_id = $1`, requestSelectAliased("r"))
	args := []interface{}{scribeID}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND r.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	query += fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT %d OFFSET %d",
		RequestPageSize+1, (page-1)*RequestPageSize)

	var rows []models.RequestDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, false, fmt.Errorf("list scribe requests: %w", err)
	}
	return trimRequestPage(rows)
}

// CompleteElapsed is the sweep's COMPLETED transition: one bulk guarded
// update moving every ACCEPTED request with an assigned scribe whose exam
// slot is strictly in the civil past. Returns the number of rows moved.
func (r *ExamRequestRepository) CompleteElapsed(ctx context.Context, now clock.CivilTime) (int64, error) {
	const query = `UPDATE exam_requests
        SET status = $1, completed_at = $2
        WHERE status = $3
          AND accepted_scribe_id IS NOT NULL
          AND (exam_date < $4::date OR (exam_date = $4::date AND exam_time < $5::time))`
	res, err := r.db.ExecContext(ctx, query,
		models.RequestCompleted, now.At(), models.RequestAccepted, now.Date(), now.TimeOfDay())
	if err != nil {
		return 0, fmt.Errorf("complete elapsed requests: %w", err)
	}
	return res.RowsAffected()
}

// TimeOutElapsed is the sweep's TIMED_OUT transition. A null exam_time is
// treated as expiring at the end of its exam date, not immediately.
func (r *ExamRequestRepository) TimeOutElapsed(ctx context.Context, now clock.CivilTime) (int64, error) {
	const query = `UPDATE exam_requests
        SET status = $1
        WHERE status = $2
          AND (exam_date < $3::date
               OR (exam_date = $3::date AND COALESCE(exam_time, '23:59:59'::time) < $4::time))`
	res, err := r.db.ExecContext(ctx, query,
		models.RequestTimedOut, models.RequestOpen, now.Date(), now.TimeOfDay())
	if err != nil {
		return 0, fmt.Errorf("time out elapsed requests: %w", err)
	}
	return res.RowsAffected()
}

func trimRequestPage(rows []models.RequestDetail) ([]models.RequestDetail, bool, error) {
	hasMore := len(rows) > RequestPageSize
	if hasMore {
		rows = rows[:RequestPageSize]
	}
	if rows == nil {
		rows = []models.RequestDetail{}
	}
	return rows, hasMore, nil
}

// requestSelectAliased prefixes every request column with the table alias.
func requestSelectAliased(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.student_id, to_char(%[1]s.exam_date, 'YYYY-MM-DD') AS exam_date,
        to_char(%[1]s.exam_time, 'HH24:MI:SS') AS exam_time, %[1]s.language, %[1]s.state,
        %[1]s.district, %[1]s.city, %[1]s.status, %[1]s.accepted_scribe_id,
        %[1]s.created_at, %[1]s.completed_at`, alias)
}
