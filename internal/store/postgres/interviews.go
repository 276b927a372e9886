package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"hrdesk/recruitment-service/internal/common"
	"hrdesk/recruitment-service/internal/domain/interview"
)

const interviewColumns = `id, application_id, stage, scheduled_date, method, panel,
	COALESCE(video_link, ''), status, created_at, updated_at`

func scanInterview(row pgx.Row) (interview.Interview, error) {
	var iv interview.Interview
	err := row.Scan(
		&iv.ID, &iv.ApplicationID, &iv.Stage, &iv.ScheduledDate, &iv.Method, &iv.Panel,
		&iv.VideoLink, &iv.Status, &iv.CreatedAt, &iv.UpdatedAt,
	)
	return iv, err
}

func (s *Store) CreateInterview(ctx context.Context, iv *interview.Interview) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO interviews
		   (id, application_id, stage, scheduled_date, method, panel, video_link, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		iv.ID, iv.ApplicationID, string(iv.Stage), iv.ScheduledDate, string(iv.Method), iv.Panel,
		nullIfEmpty(iv.VideoLink), string(iv.Status), iv.CreatedAt, iv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert interview: %w", err)
	}
	return nil
}

func (s *Store) GetInterview(ctx context.Context, id string) (*interview.Interview, error) {
	iv, err := scanInterview(s.pool.QueryRow(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "interview", id, "get interview")
	}
	return &iv, nil
}

func (s *Store) UpdateInterview(ctx context.Context, iv *interview.Interview) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE interviews
		 SET stage = $1, scheduled_date = $2, method = $3, panel = $4, video_link = $5,
		     status = $6, updated_at = $7
		 WHERE id = $8`,
		string(iv.Stage), iv.ScheduledDate, string(iv.Method), iv.Panel, nullIfEmpty(iv.VideoLink),
		string(iv.Status), iv.UpdatedAt, iv.ID,
	)
	if err != nil {
		return fmt.Errorf("update interview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("interview", iv.ID)
	}
	return nil
}

func (s *Store) DeleteInterview(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM interviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete interview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("interview", id)
	}
	return nil
}

// ListPanelInterviews returns non-cancelled interviews with employeeID on
// the panel scheduled strictly between from and to.
func (s *Store) ListPanelInterviews(ctx context.Context, employeeID string, from, to time.Time) ([]interview.Interview, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+interviewColumns+`
		 FROM interviews
		 WHERE $1 = ANY(panel)
		   AND status <> 'CANCELLED'
		   AND scheduled_date > $2 AND scheduled_date < $3
		 ORDER BY scheduled_date`,
		employeeID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list panel interviews: %w", err)
	}
	defer rows.Close()

	out := make([]interview.Interview, 0)
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interview: %w", err)
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// SaveAssessment upserts on (interview, interviewer); a resubmission keeps
// the original id.
func (s *Store) SaveAssessment(ctx context.Context, a *interview.Assessment) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO interview_assessments (id, interview_id, interviewer_id, score, comments, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (interview_id, interviewer_id) DO UPDATE
		 SET score = EXCLUDED.score, comments = EXCLUDED.comments, submitted_at = EXCLUDED.submitted_at
		 RETURNING id`,
		a.ID, a.InterviewID, a.InterviewerID, a.Score, a.Comments, a.SubmittedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("save assessment: %w", err)
	}
	return nil
}

func (s *Store) ListAssessments(ctx context.Context, interviewID string) ([]interview.Assessment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, interview_id, interviewer_id, score, comments, submitted_at
		 FROM interview_assessments
		 WHERE interview_id = $1
		 ORDER BY interviewer_id`,
		interviewID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	out := make([]interview.Assessment, 0)
	for rows.Next() {
		var a interview.Assessment
		if err := rows.Scan(&a.ID, &a.InterviewID, &a.InterviewerID, &a.Score, &a.Comments, &a.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
