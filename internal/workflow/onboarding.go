package workflow

import (
	"context"
	"errors"
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
)

// StartDelay is the time between offer acceptance and the first working day.
const StartDelay = 14 * 24 * time.Hour

type taskTemplate struct {
	name       string
	department string
	daysBefore int
}

var standardTasks = []taskTemplate{
	{"Sign employment contract", "HR", 10},
	{"Complete tax forms", "HR", 7},
	{"Upload identification documents", "HR", 7},
	{"Review employee handbook", "HR", 5},
	{"Authorize background check", "HR", 10},
	{"Set up direct deposit", "Finance", 3},
	{"Enroll in benefits", "HR", 5},
}

var itAccountsTask = taskTemplate{"Set up IT accounts", "IT", 3}

// OnboardingGenerator builds and tracks pre-boarding checklists.
type OnboardingGenerator struct {
	repo   onboarding.Repository
	offers offer.Repository
	apps   application.Repository
	notify *notify.Dispatcher
	log    *slog.Logger
	now    func() time.Time
}

// NewOnboardingGenerator returns a configured OnboardingGenerator.
func NewOnboardingGenerator(
	repo onboarding.Repository,
	offers offer.Repository,
	apps application.Repository,
	d *notify.Dispatcher,
	opts ...Option,
) *OnboardingGenerator {
	o := buildOptions(opts)
	return &OnboardingGenerator{repo: repo, offers: offers, apps: apps, notify: d, log: o.log, now: o.now}
}

// Trigger snapshots the offer into a contract and creates the onboarding
// checklist for the candidate. An offer gets at most one onboarding.
func (g *OnboardingGenerator) Trigger(ctx context.Context, candidateID, offerID string) (*onboarding.Onboarding, error) {
	o, err := g.offers.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if o.CandidateID != candidateID {
		return nil, common.Forbidden("offer %s belongs to another candidate", o.ID)
	}
	existing, err := g.repo.FindOnboardingByOffer(ctx, o.ID)
	switch {
	case err == nil:
		return nil, common.NewError(common.CodeConflict,
			fmt.Sprintf("offer %s already has onboarding %s", o.ID, existing.ID), nil)
	case !common.Is(err, common.CodeNotFound):
		return nil, fmt.Errorf("look up onboarding: %w", err)
	}

	now := g.now().UTC()
	start := now.Add(StartDelay)

	contract := &onboarding.Contract{
		ID:          uuid.NewString(),
		OfferID:     o.ID,
		CandidateID: candidateID,
		Role:        o.Position,
		GrossSalary: o.GrossSalary,
		Bonus:       o.Bonus,
		Benefits:    slices.Clone(o.Benefits),
		StartDate:   start,
		CreatedAt:   now,
	}
	if err := g.repo.CreateContract(ctx, contract); err != nil {
		return nil, fmt.Errorf("create contract: %w", err)
	}

	ob := &onboarding.Onboarding{
		ID:         uuid.NewString(),
		EmployeeID: candidateID,
		OfferID:    o.ID,
		ContractID: contract.ID,
		Tasks:      checklist(o.Position, start),
		StartDate:  start,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := g.repo.CreateOnboarding(ctx, ob); err != nil {
		return nil, fmt.Errorf("create onboarding: %w", err)
	}

	meta := map[string]string{
		"onboardingId": ob.ID,
		"offerId":      o.ID,
		"startDate":    start.Format(time.DateOnly),
	}
	g.notify.Send(ctx, notify.Event{
		UserID: candidateID,
		Title:  "Your onboarding has started",
		Message: fmt.Sprintf("Your start date is %s. You have %d onboarding tasks to complete before then.",
			start.Format(time.DateOnly), len(ob.Tasks)),
		Metadata: meta,
	})
	g.notify.Send(ctx, notify.Event{
		UserID:   g.assignedHR(ctx, o),
		Title:    "Onboarding created",
		Message:  fmt.Sprintf("Onboarding for %s was created with %d tasks.", positionLabel(o), len(ob.Tasks)),
		Metadata: meta,
	})
	return ob, nil
}

// UpdateTaskStatus changes one checklist item. The onboarding is complete
// while every item is COMPLETED; the employee is told the first time only.
func (g *OnboardingGenerator) UpdateTaskStatus(ctx context.Context, onboardingID, taskID, status, notes string) (*onboarding.Onboarding, error) {
	st, err := onboarding.ParseTaskStatus(status)
	if err != nil {
		return nil, common.NewValidationError("invalid task status", map[string]string{"status": err.Error()})
	}

	ob, err := g.repo.GetOnboarding(ctx, onboardingID)
	if err != nil {
		return nil, err
	}
	task := ob.Task(taskID)
	if task == nil {
		return nil, common.NotFound("onboarding task", taskID)
	}

	now := g.now().UTC()
	task.Status = st
	if notes != "" {
		task.Notes = notes
	}
	if st == onboarding.TaskCompleted {
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}

	wasCompleted := ob.Completed
	ob.Completed = ob.AllTasksCompleted()
	switch {
	case ob.Completed && !wasCompleted:
		ob.CompletedAt = &now
	case !ob.Completed:
		ob.CompletedAt = nil
	}
	announce := ob.Completed && ob.CompletionNotifiedAt == nil
	if announce {
		ob.CompletionNotifiedAt = &now
	}
	ob.UpdatedAt = now
	if err := g.repo.UpdateOnboarding(ctx, ob); err != nil {
		return nil, fmt.Errorf("update onboarding: %w", err)
	}

	if announce {
		g.notify.Send(ctx, notify.Event{
			UserID:   ob.EmployeeID,
			Title:    "Onboarding complete",
			Message:  fmt.Sprintf("All onboarding tasks are done. See you on %s!", ob.StartDate.Format(time.DateOnly)),
			Metadata: map[string]string{"onboardingId": ob.ID},
		})
	}
	return ob, nil
}

// SweepOverdueTasks reminds employees once about each task past its deadline.
// It returns how many reminders were sent.
func (g *OnboardingGenerator) SweepOverdueTasks(ctx context.Context) (int, error) {
	open, err := g.repo.ListOpenOnboardings(ctx)
	if err != nil {
		return 0, fmt.Errorf("list open onboardings: %w", err)
	}

	now := g.now().UTC()
	sent := 0
	var errs []error
	for i := range open {
		ob := &open[i]
		var overdue []string
		for j := range ob.Tasks {
			t := &ob.Tasks[j]
			if t.Status == onboarding.TaskCompleted || t.RemindedAt != nil || !now.After(t.Deadline) {
				continue
			}
			t.RemindedAt = &now
			overdue = append(overdue, t.Name)
		}
		if len(overdue) == 0 {
			continue
		}
		ob.UpdatedAt = now
		if err := g.repo.UpdateOnboarding(ctx, ob); err != nil {
			errs = append(errs, fmt.Errorf("onboarding %s: %w", ob.ID, err))
			continue
		}
		for _, name := range overdue {
			g.notify.Send(ctx, notify.Event{
				UserID:   ob.EmployeeID,
				Title:    "Onboarding task overdue",
				Message:  fmt.Sprintf("%q is past its deadline. Please complete it as soon as possible.", name),
				Metadata: map[string]string{"onboardingId": ob.ID, "task": name},
			})
			sent++
		}
	}
	return sent, errors.Join(errs...)
}

func (g *OnboardingGenerator) assignedHR(ctx context.Context, o *offer.Offer) string {
	app, err := g.apps.GetApplication(ctx, o.ApplicationID)
	if err != nil {
		g.log.Warn("application lookup for onboarding notice failed", "offerId", o.ID, "err", err)
		return ""
	}
	return app.AssignedHRID
}

func checklist(position string, start time.Time) []onboarding.Task {
	templates := standardTasks
	if needsITAccounts(position) {
		templates = append(slices.Clone(standardTasks), itAccountsTask)
	}
	tasks := make([]onboarding.Task, 0, len(templates))
	for _, tpl := range templates {
		tasks = append(tasks, onboarding.Task{
			ID:         uuid.NewString(),
			Name:       tpl.name,
			Department: tpl.department,
			Status:     onboarding.TaskPending,
			Deadline:   start.AddDate(0, 0, -tpl.daysBefore),
		})
	}
	return tasks
}

func needsITAccounts(position string) bool {
	p := strings.ToLower(position)
	return strings.Contains(p, "engineer") || strings.Contains(p, "developer")
}
