package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"hrdesk/recruitment-service/internal/common"
	"hrdesk/recruitment-service/internal/domain/application"
	"hrdesk/recruitment-service/internal/notify"
)

// StageEngine moves applications through the hiring funnel.
type StageEngine struct {
	apps   application.Repository
	notify *notify.Dispatcher
	log    *slog.Logger
	now    func() time.Time
}

// NewStageEngine returns a configured StageEngine.
func NewStageEngine(apps application.Repository, d *notify.Dispatcher, opts ...Option) *StageEngine {
	o := buildOptions(opts)
	return &StageEngine{apps: apps, notify: d, log: o.log, now: o.now}
}

// StageChange is a request to move an application to NewStage.
type StageChange struct {
	ApplicationID string
	NewStage      string
	Notes         string
	ChangedBy     string
}

// StageResult is the updated application joined with its requisition.
type StageResult struct {
	Application *application.Application `json:"application"`
	Requisition *application.Requisition `json:"requisition,omitempty"`
	Progress    int                      `json:"progress"`
}

// Transition validates and applies a stage change, records it in the
// application history and notifies the candidate, the assigned HR employee
// and the hiring manager.
func (e *StageEngine) Transition(ctx context.Context, ch StageChange) (*StageResult, error) {
	stage, err := application.ParseStage(ch.NewStage)
	if err != nil {
		return nil, common.NewValidationError("invalid stage", map[string]string{"stage": err.Error()})
	}

	app, err := e.apps.GetApplication(ctx, ch.ApplicationID)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	oldStage := app.CurrentStage
	app.CurrentStage = stage
	app.Workflow = application.StateAt(stage, now)
	app.UpdatedAt = now

	notes := ch.Notes
	if notes == "" {
		notes = fmt.Sprintf("Stage updated to %s", stage)
	}
	if err := e.apps.UpdateApplication(ctx, app, &application.History{
		ID:            uuid.NewString(),
		ApplicationID: app.ID,
		OldStage:      oldStage,
		NewStage:      stage,
		ChangedBy:     ch.ChangedBy,
		ChangedAt:     now,
		Notes:         notes,
	}); err != nil {
		return nil, fmt.Errorf("update application stage: %w", err)
	}

	st := resolveStakeholders(ctx, e.apps, app, e.log)
	e.notifyStage(ctx, app, st, oldStage)

	return &StageResult{
		Application: app,
		Requisition: st.requisition,
		Progress:    app.Workflow.Progress,
	}, nil
}

func (e *StageEngine) notifyStage(ctx context.Context, app *application.Application, st stakeholders, from application.Stage) {
	meta := map[string]string{
		"applicationId": app.ID,
		"fromStage":     string(from),
		"toStage":       string(app.CurrentStage),
	}

	e.notify.Send(ctx, notify.Event{
		UserID:   st.candidate,
		Title:    "Application progress",
		Message:  candidateStageMessage(app.CurrentStage, st.jobTitle()),
		Metadata: meta,
	})
	e.notify.Send(ctx, notify.Event{
		UserID:   st.hr,
		Title:    "Candidate advanced",
		Message:  fmt.Sprintf("A candidate for %s advanced to %s.", st.jobTitle(), app.CurrentStage),
		Metadata: meta,
	})
	e.notify.Send(ctx, notify.Event{
		UserID:   st.hiringManager,
		Title:    "Candidate stage updated",
		Message:  fmt.Sprintf("An application for %s moved to %s.", st.jobTitle(), app.CurrentStage),
		Metadata: meta,
	})
}

func candidateStageMessage(s application.Stage, job string) string {
	switch s {
	case application.StageScreening:
		return fmt.Sprintf("Your application for %s is being screened.", job)
	case application.StageDepartmentInterview:
		return fmt.Sprintf("Good news: your application for %s has moved to the department interview stage.", job)
	case application.StageHRInterview:
		return fmt.Sprintf("Your application for %s has moved to the HR interview stage.", job)
	case application.StageOffer:
		return fmt.Sprintf("Your application for %s has reached the offer stage.", job)
	}
	return fmt.Sprintf("Your application for %s was updated.", job)
}
