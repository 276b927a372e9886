package workflow_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"hrdesk/recruitment-service/internal/domain/application"
	"hrdesk/recruitment-service/internal/domain/offer"
	"hrdesk/recruitment-service/internal/notify"
	"hrdesk/recruitment-service/internal/rolematch"
	"hrdesk/recruitment-service/internal/store/memory"
	"hrdesk/recruitment-service/internal/workflow"
)

// ─── Fakes ───────────────────────────────────────────────────────────────────

// recorder is a notify.Notifier that keeps every event it is given. With
// fail set every emit errors; with failFor set only that user's do.
type recorder struct {
	mu      sync.Mutex
	events  []notify.Event
	fail    bool
	failFor string
}

func (r *recorder) Emit(_ context.Context, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	if r.fail || (r.failFor != "" && ev.UserID == r.failFor) {
		return errors.New("broker unavailable")
	}
	return nil
}

func (r *recorder) to(userID string) []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Event
	for _, ev := range r.events {
		if ev.UserID == userID {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// flakyRecorder fails StatusRecorder calls for one status until healed.
type flakyRecorder struct {
	next   workflow.StatusRecorder
	failOn application.Status
}

func (f *flakyRecorder) Record(ctx context.Context, ch workflow.StatusChange) (*application.Application, error) {
	if f.failOn != "" && application.Status(ch.NewStatus) == f.failOn {
		return nil, errors.New("db down")
	}
	return f.next.Record(ctx, ch)
}

// flakyOffers fails every UpdateOffer while failing is set.
type flakyOffers struct {
	*memory.Store
	failing bool
}

func (f *flakyOffers) UpdateOffer(ctx context.Context, o *offer.Offer) error {
	if f.failing {
		return errors.New("db down")
	}
	return f.Store.UpdateOffer(ctx, o)
}

// leaveSet marks employees as on leave for every date.
type leaveSet map[string]bool

func (l leaveSet) IsOnLeave(_ context.Context, employeeID string, _ time.Time, _ bool) (bool, error) {
	return l[employeeID], nil
}

// ─── Harness ─────────────────────────────────────────────────────────────────

const (
	appID       = "app-1"
	candidateID = "cand-1"
	hrID        = "hr-1"
	managerID   = "hm-1"
	reqID       = "req-1"
)

var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type harness struct {
	store *memory.Store
	rec   *recorder
	leave leaveSet
	now   time.Time
	d     *notify.Dispatcher
	opts  []workflow.Option

	stages     *workflow.StageEngine
	status     *workflow.StatusEngine
	interviews *workflow.InterviewScheduler
	offers     *workflow.OfferWorkflow
	onboarding *workflow.OnboardingGenerator
}

func newHarness(t *testing.T, extra ...workflow.Option) *harness {
	t.Helper()
	h := &harness{
		store: memory.New(),
		rec:   &recorder{},
		leave: leaveSet{},
		now:   baseTime,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := notify.NewDispatcher(h.rec, log)
	opts := append([]workflow.Option{
		workflow.WithClock(func() time.Time { return h.now }),
		workflow.WithLogger(log),
	}, extra...)
	h.d, h.opts = d, opts

	h.stages = workflow.NewStageEngine(h.store, d, opts...)
	h.status = workflow.NewStatusEngine(h.store, d, opts...)
	h.interviews = workflow.NewInterviewScheduler(h.store, h.store, h.leave, d, opts...)
	h.onboarding = workflow.NewOnboardingGenerator(h.store, h.store, h.store, d, opts...)
	h.offers = workflow.NewOfferWorkflow(h.store, h.store, h.status, h.onboarding, rolematch.NewDefault(), d, opts...)

	h.store.PutRequisition(application.Requisition{ID: reqID, Title: "Backend Engineer", HiringManagerID: managerID})
	h.store.PutApplication(application.Application{
		ID:            appID,
		CandidateID:   candidateID,
		RequisitionID: reqID,
		CurrentStage:  application.StageScreening,
		Status:        application.StatusInProcess,
		AssignedHRID:  hrID,
		Workflow:      application.StateAt(application.StageScreening, baseTime),
		CreatedAt:     baseTime,
		UpdatedAt:     baseTime,
	})
	return h
}

func (h *harness) application(t *testing.T) *application.Application {
	t.Helper()
	app, err := h.store.GetApplication(context.Background(), appID)
	if err != nil {
		t.Fatalf("GetApplication: %v", err)
	}
	return app
}

func (h *harness) history(t *testing.T) []application.History {
	t.Helper()
	hist, err := h.store.ListHistory(context.Background(), appID)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	return hist
}

// offersWith builds an OfferWorkflow on the harness store with the given
// offer repository and status recorder swapped in.
func (h *harness) offersWith(repo offer.Repository, status workflow.StatusRecorder) *workflow.OfferWorkflow {
	return workflow.NewOfferWorkflow(repo, h.store, status, h.onboarding, rolematch.NewDefault(), h.d, h.opts...)
}
