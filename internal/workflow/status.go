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

// StatusEngine changes the lifecycle status of applications.
type StatusEngine struct {
	apps   application.Repository
	notify *notify.Dispatcher
	log    *slog.Logger
	now    func() time.Time
}

// NewStatusEngine returns a configured StatusEngine.
func NewStatusEngine(apps application.Repository, d *notify.Dispatcher, opts ...Option) *StatusEngine {
	o := buildOptions(opts)
	return &StatusEngine{apps: apps, notify: d, log: o.log, now: o.now}
}

// StatusChange is a request to move an application to NewStatus.
type StatusChange struct {
	ApplicationID   string
	NewStatus       string
	RejectionReason string
	Notes           string
	ChangedBy       string
}

// Transition records the status change and notifies the candidate, the
// assigned HR employee and the hiring manager.
func (e *StatusEngine) Transition(ctx context.Context, ch StatusChange) (*application.Application, error) {
	app, old, err := e.apply(ctx, ch)
	if err != nil {
		return nil, err
	}
	st := resolveStakeholders(ctx, e.apps, app, e.log)
	e.notifyStatus(ctx, app, st, old, ch.RejectionReason)
	return app, nil
}

// Record applies the status change and its audit record without sending
// any notification. Callers that notify on their own terms use this.
func (e *StatusEngine) Record(ctx context.Context, ch StatusChange) (*application.Application, error) {
	app, _, err := e.apply(ctx, ch)
	return app, err
}

func (e *StatusEngine) apply(ctx context.Context, ch StatusChange) (*application.Application, application.Status, error) {
	status, err := application.ParseStatus(ch.NewStatus)
	if err != nil {
		return nil, "", common.NewValidationError("invalid status", map[string]string{"status": err.Error()})
	}

	app, err := e.apps.GetApplication(ctx, ch.ApplicationID)
	if err != nil {
		return nil, "", err
	}

	now := e.now().UTC()
	old := app.Status
	app.Status = status
	app.UpdatedAt = now

	notes := ch.Notes
	if notes == "" {
		notes = ch.RejectionReason
	}
	if notes == "" {
		notes = fmt.Sprintf("Status updated to %s", status)
	}
	if err := e.apps.UpdateApplication(ctx, app, &application.History{
		ID:            uuid.NewString(),
		ApplicationID: app.ID,
		OldStatus:     old,
		NewStatus:     status,
		ChangedBy:     ch.ChangedBy,
		ChangedAt:     now,
		Notes:         notes,
	}); err != nil {
		return nil, "", fmt.Errorf("update application status: %w", err)
	}
	return app, old, nil
}

func (e *StatusEngine) notifyStatus(ctx context.Context, app *application.Application, st stakeholders, from application.Status, reason string) {
	meta := map[string]string{
		"applicationId": app.ID,
		"fromStatus":    string(from),
		"toStatus":      string(app.Status),
	}
	if reason != "" {
		meta["reason"] = reason
	}

	var title, candidateMsg, staffMsg string
	switch app.Status {
	case application.StatusHired:
		title = "Congratulations!"
		candidateMsg = fmt.Sprintf("Congratulations! You have been hired for %s. Welcome aboard!", st.jobTitle())
		staffMsg = fmt.Sprintf("A candidate for %s has been hired.", st.jobTitle())
	case application.StatusRejected:
		title = "Application update"
		candidateMsg = fmt.Sprintf("Thank you for your interest in %s. We will not be moving forward with your application.", st.jobTitle())
		staffMsg = fmt.Sprintf("An application for %s was rejected.", st.jobTitle())
		if reason != "" {
			candidateMsg += " Reason: " + reason
			staffMsg += " Reason: " + reason
		}
	default:
		title = "Application status updated"
		candidateMsg = fmt.Sprintf("Your application for %s is now %s.", st.jobTitle(), app.Status)
		staffMsg = fmt.Sprintf("An application for %s changed status from %s to %s.", st.jobTitle(), from, app.Status)
	}

	e.notify.Send(ctx, notify.Event{UserID: st.candidate, Title: title, Message: candidateMsg, Metadata: meta})
	e.notify.Send(ctx, notify.Event{UserID: st.hr, Title: "Application status changed", Message: staffMsg, Metadata: meta})
	e.notify.Send(ctx, notify.Event{UserID: st.hiringManager, Title: "Application status changed", Message: staffMsg, Metadata: meta})
}
