// Package workflow is the recruitment workflow engine: stage and status
// transitions, interview scheduling, offer approval and onboarding.
//
// Every operation is a read-modify-write against a single entity by id.
// Concurrent operations on the same entity are not serialized here and the
// last write wins; callers that need stronger guarantees must serialize
// upstream. Notifications go through notify.Dispatcher and never fail an
// operation.
package workflow

import (
	"context"
	"log/slog"
	"time"

	"hrdesk/recruitment-service/internal/domain/application"
)

// Option tunes an engine.
type Option func(*options)

type options struct {
	now                  func() time.Time
	log                  *slog.Logger
	enforceApproverRoles bool
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger used for non-fatal failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithApproverRoleEnforcement makes OfferWorkflow.Create reject a non-empty
// approver list that does not cover every required role. When off, gaps are
// only logged.
func WithApproverRoleEnforcement(on bool) Option {
	return func(o *options) { o.enforceApproverRoles = on }
}

// stakeholders are the people told about an application's progress.
type stakeholders struct {
	candidate     string
	hr            string
	hiringManager string
	requisition   *application.Requisition
}

// resolveStakeholders fetches the application's requisition to find the
// hiring manager. A failed lookup only drops the hiring manager.
func resolveStakeholders(ctx context.Context, apps application.Repository, app *application.Application, log *slog.Logger) stakeholders {
	st := stakeholders{candidate: app.CandidateID, hr: app.AssignedHRID}
	if app.RequisitionID == "" {
		return st
	}
	req, err := apps.GetRequisition(ctx, app.RequisitionID)
	if err != nil {
		log.Warn("requisition lookup failed", "applicationId", app.ID, "requisitionId", app.RequisitionID, "err", err)
		return st
	}
	st.requisition = req
	st.hiringManager = req.HiringManagerID
	return st
}

func (s stakeholders) jobTitle() string {
	if s.requisition == nil || s.requisition.Title == "" {
		return "the position"
	}
	return s.requisition.Title
}
