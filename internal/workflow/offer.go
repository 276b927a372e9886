package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrdesk/recruitment-service/internal/common"
	"hrdesk/recruitment-service/internal/domain/application"
	"hrdesk/recruitment-service/internal/domain/offer"
	"hrdesk/recruitment-service/internal/domain/onboarding"
	"hrdesk/recruitment-service/internal/notify"
	"hrdesk/recruitment-service/internal/rolematch"
)

// StatusRecorder applies an application status change with its audit
// record. *StatusEngine satisfies it.
type StatusRecorder interface {
	Record(ctx context.Context, ch StatusChange) (*application.Application, error)
}

// OnboardingTrigger starts onboarding for an accepted offer.
// *OnboardingGenerator satisfies it.
type OnboardingTrigger interface {
	Trigger(ctx context.Context, candidateID, offerID string) (*onboarding.Onboarding, error)
}

// OfferWorkflow runs offer approval and the candidate's response.
type OfferWorkflow struct {
	offers       offer.Repository
	apps         application.Repository
	status       StatusRecorder
	onboarding   OnboardingTrigger
	roles        *rolematch.Matcher
	enforceRoles bool
	notify       *notify.Dispatcher
	log          *slog.Logger
	now          func() time.Time
}

// NewOfferWorkflow returns a configured OfferWorkflow.
func NewOfferWorkflow(
	offers offer.Repository,
	apps application.Repository,
	status StatusRecorder,
	onb OnboardingTrigger,
	roles *rolematch.Matcher,
	d *notify.Dispatcher,
	opts ...Option,
) *OfferWorkflow {
	o := buildOptions(opts)
	return &OfferWorkflow{
		offers:       offers,
		apps:         apps,
		status:       status,
		onboarding:   onb,
		roles:        roles,
		enforceRoles: o.enforceApproverRoles,
		notify:       d,
		log:          o.log,
		now:          o.now,
	}
}

// ApproverInput names one approver for a new offer.
type ApproverInput struct {
	EmployeeID string
	Role       string
}

// CreateOfferInput describes a new offer.
type CreateOfferInput struct {
	ApplicationID string
	Position      string
	GrossSalary   float64
	Bonus         float64
	Benefits      []string
	Approvers     []ApproverInput
	Deadline      time.Time
	CreatedBy     string
}

// MissingRoles returns the roles required at grossSalary that no approver
// covers, in RequiredApprovers order.
func (w *OfferWorkflow) MissingRoles(approvers []ApproverInput, grossSalary float64) []offer.Role {
	var missing []offer.Role
	for _, required := range offer.RequiredApprovers(grossSalary) {
		covered := slices.ContainsFunc(approvers, func(a ApproverInput) bool {
			return w.roles.Matches(a.Role, string(required))
		})
		if !covered {
			missing = append(missing, required)
		}
	}
	return missing
}

// Create stores a new offer, moves its application to OFFER and asks each
// approver for a decision. An offer without approvers is approved on the spot
// and the candidate is told right away.
func (w *OfferWorkflow) Create(ctx context.Context, in CreateOfferInput) (*offer.Offer, error) {
	now := w.now().UTC()
	fields := map[string]string{}
	if in.GrossSalary <= 0 {
		fields["grossSalary"] = "grossSalary must be positive"
	}
	if !in.Deadline.After(now) {
		fields["deadline"] = "deadline must be in the future"
	}
	seen := make(map[string]struct{}, len(in.Approvers))
	for _, a := range in.Approvers {
		if a.EmployeeID == "" {
			fields["approvers"] = "every approver needs an employee id"
			break
		}
		if _, dup := seen[a.EmployeeID]; dup {
			fields["approvers"] = fmt.Sprintf("approver %s is listed twice", a.EmployeeID)
			break
		}
		seen[a.EmployeeID] = struct{}{}
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid offer", fields)
	}

	app, err := w.apps.GetApplication(ctx, in.ApplicationID)
	if err != nil {
		return nil, err
	}

	if len(in.Approvers) > 0 {
		if missing := w.MissingRoles(in.Approvers, in.GrossSalary); len(missing) > 0 {
			if w.enforceRoles {
				return nil, common.NewValidationError("offer approvers do not cover the required roles",
					map[string]string{"approvers": "missing " + joinRoles(missing)})
			}
			w.log.Warn("offer approvers do not cover required roles",
				"applicationId", app.ID, "grossSalary", in.GrossSalary, "missing", joinRoles(missing))
		}
	}

	o := &offer.Offer{
		ID:                uuid.NewString(),
		ApplicationID:     app.ID,
		CandidateID:       app.CandidateID,
		Position:          in.Position,
		GrossSalary:       in.GrossSalary,
		Bonus:             in.Bonus,
		Benefits:          slices.Clone(in.Benefits),
		Approvers:         make([]offer.Approver, 0, len(in.Approvers)),
		ApplicantResponse: offer.ResponsePending,
		Deadline:          in.Deadline.UTC(),
		CreatedBy:         in.CreatedBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for _, a := range in.Approvers {
		o.Approvers = append(o.Approvers, offer.Approver{EmployeeID: a.EmployeeID, Role: a.Role, Status: offer.DecisionPending})
	}
	o.FinalStatus = offer.DeriveFinalStatus(o.Approvers)

	// The application moves first. If the offer insert then fails, calling
	// Create again records OFFER once more and stores the offer.
	if _, err := w.status.Record(ctx, StatusChange{
		ApplicationID: app.ID,
		NewStatus:     string(application.StatusOffer),
		Notes:         "Offer created",
		ChangedBy:     in.CreatedBy,
	}); err != nil {
		return nil, fmt.Errorf("move application to OFFER: %w", err)
	}
	if err := w.offers.CreateOffer(ctx, o); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}

	meta := offerMeta(o)
	if len(o.Approvers) == 0 {
		w.notifyOfferReady(ctx, o)
	} else {
		for _, a := range o.Approvers {
			w.notify.Send(ctx, notify.Event{
				UserID:   a.EmployeeID,
				Title:    "Offer approval required",
				Message:  fmt.Sprintf("Your decision as %s is required on an offer for %s.", a.Role, positionLabel(o)),
				Metadata: meta,
			})
		}
		w.notify.Send(ctx, notify.Event{
			UserID:   app.AssignedHRID,
			Title:    "Offer created",
			Message:  fmt.Sprintf("An offer for %s was created and is awaiting %d approval(s).", positionLabel(o), len(o.Approvers)),
			Metadata: meta,
		})
	}
	return o, nil
}

// RecordDecision stores one approver's verdict and recomputes the offer's
// final status.
func (w *OfferWorkflow) RecordDecision(ctx context.Context, offerID, approverID, decision, comment string) (*offer.Offer, error) {
	verdict, err := offer.ParseVerdict(decision)
	if err != nil {
		return nil, common.NewValidationError("invalid decision", map[string]string{"decision": err.Error()})
	}

	o, err := w.offers.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	a := o.Approver(approverID)
	if a == nil {
		return nil, common.Validation("employee %s is not an approver of offer %s", approverID, o.ID)
	}
	if a.Status != offer.DecisionPending {
		return nil, common.Validation("approver %s already responded to offer %s", approverID, o.ID)
	}

	now := w.now().UTC()
	a.Status = verdict
	a.ActionDate = &now
	a.Comment = comment
	previous := o.FinalStatus
	o.FinalStatus = offer.DeriveFinalStatus(o.Approvers)
	o.UpdatedAt = now
	if err := w.offers.UpdateOffer(ctx, o); err != nil {
		return nil, fmt.Errorf("update offer: %w", err)
	}

	meta := offerMeta(o)
	w.notify.Send(ctx, notify.Event{
		UserID:   approverID,
		Title:    "Decision recorded",
		Message:  fmt.Sprintf("Your decision (%s) on the offer for %s has been recorded.", strings.ToLower(string(verdict)), positionLabel(o)),
		Metadata: meta,
	})

	if o.FinalStatus == previous {
		return o, nil
	}
	switch o.FinalStatus {
	case offer.DecisionRejected:
		w.notify.Send(ctx, notify.Event{
			UserID:   w.assignedHR(ctx, o),
			Title:    "Offer rejected",
			Message:  fmt.Sprintf("The offer for %s was rejected by %s.", positionLabel(o), approverID),
			Metadata: meta,
		})
	case offer.DecisionApproved:
		w.notify.Send(ctx, notify.Event{
			UserID:   w.assignedHR(ctx, o),
			Title:    "Offer approved",
			Message:  fmt.Sprintf("All approvers signed off on the offer for %s. It can now be sent.", positionLabel(o)),
			Metadata: meta,
		})
		w.notifyOfferReady(ctx, o)
	}
	return o, nil
}

// Accept records the candidate's acceptance, marks the application HIRED and
// starts onboarding. A failed onboarding start is logged, not returned.
func (w *OfferWorkflow) Accept(ctx context.Context, offerID, candidateID string) (*offer.Offer, error) {
	o, err := w.answerable(ctx, offerID, candidateID)
	if err != nil {
		return nil, err
	}
	now := w.now().UTC()
	if o.IsExpired(now) {
		return nil, common.Validation("offer %s expired on %s", o.ID, o.Deadline.Format(time.RFC3339))
	}

	// The offer is written after the application. A failed write leaves it
	// answerable so Accept can be retried.
	app, err := w.status.Record(ctx, StatusChange{
		ApplicationID: o.ApplicationID,
		NewStatus:     string(application.StatusHired),
		Notes:         "Offer accepted by candidate",
		ChangedBy:     candidateID,
	})
	if err != nil {
		return nil, fmt.Errorf("move application to HIRED: %w", err)
	}

	o.ApplicantResponse = offer.ResponseAccepted
	o.SignedAt = &now
	o.UpdatedAt = now
	if err := w.offers.UpdateOffer(ctx, o); err != nil {
		return nil, fmt.Errorf("update offer: %w", err)
	}

	if _, err := w.onboarding.Trigger(ctx, candidateID, o.ID); err != nil {
		w.log.Error("onboarding trigger failed", "offerId", o.ID, "candidateId", candidateID, "err", err)
	}

	meta := offerMeta(o)
	w.notify.Send(ctx, notify.Event{
		UserID:   app.AssignedHRID,
		Title:    "Offer accepted",
		Message:  fmt.Sprintf("The candidate accepted the offer for %s.", positionLabel(o)),
		Metadata: meta,
	})
	w.notify.Send(ctx, notify.Event{
		UserID:   o.CandidateID,
		Title:    "Welcome aboard!",
		Message:  fmt.Sprintf("Thank you for accepting the offer for %s. Your onboarding checklist is on its way.", positionLabel(o)),
		Metadata: meta,
	})
	return o, nil
}

// Reject records the candidate declining the offer and marks the application
// REJECTED. The deadline does not apply to declining.
func (w *OfferWorkflow) Reject(ctx context.Context, offerID, candidateID, reason string) (*offer.Offer, error) {
	o, err := w.answerable(ctx, offerID, candidateID)
	if err != nil {
		return nil, err
	}

	auditReason := reason
	if auditReason == "" {
		auditReason = "Offer declined by candidate"
	}
	app, err := w.status.Record(ctx, StatusChange{
		ApplicationID:   o.ApplicationID,
		NewStatus:       string(application.StatusRejected),
		RejectionReason: auditReason,
		ChangedBy:       candidateID,
	})
	if err != nil {
		return nil, fmt.Errorf("move application to REJECTED: %w", err)
	}

	o.ApplicantResponse = offer.ResponseRejected
	o.ResponseReason = reason
	o.UpdatedAt = w.now().UTC()
	if err := w.offers.UpdateOffer(ctx, o); err != nil {
		return nil, fmt.Errorf("update offer: %w", err)
	}

	meta := offerMeta(o)
	hrMsg := fmt.Sprintf("The candidate declined the offer for %s.", positionLabel(o))
	if reason != "" {
		hrMsg += " Reason: " + reason
		meta["reason"] = reason
	}
	w.notify.Send(ctx, notify.Event{UserID: app.AssignedHRID, Title: "Offer declined", Message: hrMsg, Metadata: meta})
	w.notify.Send(ctx, notify.Event{
		UserID:   o.CandidateID,
		Title:    "Offer declined",
		Message:  fmt.Sprintf("We have recorded that you declined the offer for %s. Thank you for your time.", positionLabel(o)),
		Metadata: meta,
	})
	return o, nil
}

// SweepExpired tells HR and the candidate, once, about approved offers whose
// deadline passed without an answer. It returns how many offers were handled.
func (w *OfferWorkflow) SweepExpired(ctx context.Context) (int, error) {
	now := w.now().UTC()
	expired, err := w.offers.ListExpiredUnanswered(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list expired offers: %w", err)
	}

	handled := 0
	for i := range expired {
		o := &expired[i]
		o.ExpiryNotifiedAt = &now
		o.UpdatedAt = now
		if err := w.offers.UpdateOffer(ctx, o); err != nil {
			w.log.Warn("mark offer expiry failed", "offerId", o.ID, "err", err)
			continue
		}
		meta := offerMeta(o)
		w.notify.Send(ctx, notify.Event{
			UserID:   w.assignedHR(ctx, o),
			Title:    "Offer expired",
			Message:  fmt.Sprintf("The offer for %s expired on %s without a response.", positionLabel(o), o.Deadline.Format(time.DateOnly)),
			Metadata: meta,
		})
		w.notify.Send(ctx, notify.Event{
			UserID:   o.CandidateID,
			Title:    "Offer expired",
			Message:  fmt.Sprintf("The offer for %s expired on %s. Please contact HR if you are still interested.", positionLabel(o), o.Deadline.Format(time.DateOnly)),
			Metadata: meta,
		})
		handled++
	}
	return handled, nil
}

// answerable loads an offer and checks the candidate may still respond.
func (w *OfferWorkflow) answerable(ctx context.Context, offerID, candidateID string) (*offer.Offer, error) {
	o, err := w.offers.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if o.CandidateID != candidateID {
		return nil, common.Forbidden("offer %s belongs to another candidate", o.ID)
	}
	if o.FinalStatus != offer.DecisionApproved {
		return nil, common.Validation("offer %s is %s, not APPROVED", o.ID, o.FinalStatus)
	}
	if o.ApplicantResponse != offer.ResponsePending {
		return nil, common.Validation("offer %s was already %s", o.ID, strings.ToLower(string(o.ApplicantResponse)))
	}
	return o, nil
}

func (w *OfferWorkflow) assignedHR(ctx context.Context, o *offer.Offer) string {
	app, err := w.apps.GetApplication(ctx, o.ApplicationID)
	if err != nil {
		w.log.Warn("application lookup for offer notice failed", "offerId", o.ID, "err", err)
		return ""
	}
	return app.AssignedHRID
}

func (w *OfferWorkflow) notifyOfferReady(ctx context.Context, o *offer.Offer) {
	w.notify.Send(ctx, notify.Event{
		UserID: o.CandidateID,
		Title:  "Your offer is ready",
		Message: fmt.Sprintf("An offer for %s is ready for you. Please respond by %s.",
			positionLabel(o), o.Deadline.Format(time.DateOnly)),
		Metadata: offerMeta(o),
	})
}

func offerMeta(o *offer.Offer) map[string]string {
	return map[string]string{
		"offerId":       o.ID,
		"applicationId": o.ApplicationID,
		"finalStatus":   string(o.FinalStatus),
		"deadline":      o.Deadline.Format(time.RFC3339),
	}
}

func positionLabel(o *offer.Offer) string {
	if o.Position == "" {
		return "the position"
	}
	return o.Position
}

func joinRoles(roles []offer.Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
