package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hrdesk/recruitment-service/internal/common"
	"hrdesk/recruitment-service/internal/domain/application"
)

func (s *Store) GetApplication(ctx context.Context, id string) (*application.Application, error) {
	var (
		a         application.Application
		completed []string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT a.id, a.candidate_id, COALESCE(a.requisition_id, ''), a.current_stage, a.status,
		        COALESCE(a.assigned_hr_id, ''), a.created_at, a.updated_at,
		        COALESCE(w.current_stage, a.current_stage), COALESCE(w.completed_stages, '{}'),
		        COALESCE(w.progress, 0), COALESCE(w.updated_at, a.updated_at)
		 FROM applications a
		 LEFT JOIN application_workflow w ON w.application_id = a.id
		 WHERE a.id = $1`,
		id,
	).Scan(
		&a.ID, &a.CandidateID, &a.RequisitionID, &a.CurrentStage, &a.Status,
		&a.AssignedHRID, &a.CreatedAt, &a.UpdatedAt,
		&a.Workflow.CurrentStage, &completed, &a.Workflow.Progress, &a.Workflow.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "application", id, "get application")
	}
	a.Workflow.CompletedStages = make([]application.Stage, len(completed))
	for i, st := range completed {
		a.Workflow.CompletedStages[i] = application.Stage(st)
	}
	return &a, nil
}

// UpdateApplication writes the application row, its workflow state and the
// history record in one transaction.
func (s *Store) UpdateApplication(ctx context.Context, a *application.Application, h *application.History) error {
	completed := make([]string, len(a.Workflow.CompletedStages))
	for i, st := range a.Workflow.CompletedStages {
		completed[i] = string(st)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE applications
			 SET current_stage = $1, status = $2, assigned_hr_id = $3, updated_at = $4
			 WHERE id = $5`,
			string(a.CurrentStage), string(a.Status), nullIfEmpty(a.AssignedHRID), a.UpdatedAt, a.ID,
		)
		if err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return common.NotFound("application", a.ID)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO application_workflow (application_id, current_stage, completed_stages, progress, updated_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (application_id) DO UPDATE
			 SET current_stage = EXCLUDED.current_stage,
			     completed_stages = EXCLUDED.completed_stages,
			     progress = EXCLUDED.progress,
			     updated_at = EXCLUDED.updated_at`,
			a.ID, string(a.Workflow.CurrentStage), completed, a.Workflow.Progress, a.Workflow.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert workflow state: %w", err)
		}
		if h == nil {
			return nil
		}
		return insertHistory(ctx, tx, h)
	})
}

func (s *Store) GetRequisition(ctx context.Context, id string) (*application.Requisition, error) {
	var r application.Requisition
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, COALESCE(hiring_manager_id, '') FROM requisitions WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Title, &r.HiringManagerID)
	if err != nil {
		return nil, notFound(err, "requisition", id, "get requisition")
	}
	return &r, nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, h *application.History) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO application_history
		   (id, application_id, old_stage, new_stage, old_status, new_status, changed_by, changed_at, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		h.ID, h.ApplicationID,
		nullIfEmpty(string(h.OldStage)), nullIfEmpty(string(h.NewStage)),
		nullIfEmpty(string(h.OldStatus)), nullIfEmpty(string(h.NewStatus)),
		nullIfEmpty(h.ChangedBy), h.ChangedAt, h.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (s *Store) ListHistory(ctx context.Context, applicationID string) ([]application.History, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, application_id, COALESCE(old_stage, ''), COALESCE(new_stage, ''),
		        COALESCE(old_status, ''), COALESCE(new_status, ''), COALESCE(changed_by, ''),
		        changed_at, notes
		 FROM application_history
		 WHERE application_id = $1
		 ORDER BY changed_at, id`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := make([]application.History, 0)
	for rows.Next() {
		var h application.History
		if err := rows.Scan(
			&h.ID, &h.ApplicationID, &h.OldStage, &h.NewStage,
			&h.OldStatus, &h.NewStatus, &h.ChangedBy, &h.ChangedAt, &h.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
