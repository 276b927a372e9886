package memory_test

import (
	"context"
	"testing"
	"time"

	"hrdesk/recruitment-service/internal/common"
	"hrdesk/recruitment-service/internal/domain/application"
	"hrdesk/recruitment-service/internal/domain/interview"
	"hrdesk/recruitment-service/internal/domain/offer"
	"hrdesk/recruitment-service/internal/store/memory"
)

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

// ── Copies ───────────────────────────────────────────────────────────────────

func TestGetApplication_ReturnsCopy(t *testing.T) {
	s := memory.New()
	s.PutApplication(application.Application{ID: "app-1", CurrentStage: application.StageScreening})

	got, err := s.GetApplication(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("GetApplication: %v", err)
	}
	got.CurrentStage = application.StageOffer
	got.Workflow.CompletedStages = append(got.Workflow.CompletedStages, application.StageScreening)

	again, _ := s.GetApplication(context.Background(), "app-1")
	if again.CurrentStage != application.StageScreening || len(again.Workflow.CompletedStages) != 0 {
		t.Errorf("stored application was mutated through a returned pointer: %+v", again)
	}
}

func TestUpdateOffer_StoresCopy(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	o := &offer.Offer{ID: "off-1", Benefits: []string{"Health"}}
	if err := s.CreateOffer(ctx, o); err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	o.Benefits[0] = "Gym"

	got, _ := s.GetOffer(ctx, "off-1")
	if got.Benefits[0] != "Health" {
		t.Errorf("benefits = %v, want [Health]", got.Benefits)
	}
}

// ── Application writes ───────────────────────────────────────────────────────

func TestUpdateApplication_HistoryRejectedLeavesApplication(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	s.PutApplication(application.Application{ID: "app-1", Status: application.StatusInProcess})

	entry := &application.History{ID: "h-1", ApplicationID: "app-1", NewStatus: application.StatusOffer, ChangedAt: t0}
	if err := s.UpdateApplication(ctx, &application.Application{ID: "app-1", Status: application.StatusOffer}, entry); err != nil {
		t.Fatalf("UpdateApplication: %v", err)
	}

	dup := *entry
	dup.NewStatus = application.StatusHired
	err := s.UpdateApplication(ctx, &application.Application{ID: "app-1", Status: application.StatusHired}, &dup)
	if !common.Is(err, common.CodeConflict) {
		t.Fatalf("expected conflict on a reused history id, got %v", err)
	}

	app, _ := s.GetApplication(ctx, "app-1")
	if app.Status != application.StatusOffer {
		t.Errorf("status = %s, want OFFER", app.Status)
	}
	if hist, _ := s.ListHistory(ctx, "app-1"); len(hist) != 1 {
		t.Errorf("expected 1 history record, got %d", len(hist))
	}
}

// ── Not found ────────────────────────────────────────────────────────────────

func TestMissingEntities_AreNotFound(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	checks := map[string]error{
		"application": func() error { _, err := s.GetApplication(ctx, "x"); return err }(),
		"requisition": func() error { _, err := s.GetRequisition(ctx, "x"); return err }(),
		"interview":   func() error { _, err := s.GetInterview(ctx, "x"); return err }(),
		"offer":       func() error { _, err := s.GetOffer(ctx, "x"); return err }(),
		"onboarding":  func() error { _, err := s.GetOnboarding(ctx, "x"); return err }(),
		"by offer":    func() error { _, err := s.FindOnboardingByOffer(ctx, "x"); return err }(),
		"update":      s.UpdateApplication(ctx, &application.Application{ID: "x"}, nil),
		"delete":      s.DeleteInterview(ctx, "x"),
	}
	for name, err := range checks {
		if !common.Is(err, common.CodeNotFound) {
			t.Errorf("%s: expected NotFound, got %v", name, err)
		}
	}
}

// ── Interviews ───────────────────────────────────────────────────────────────

func TestListPanelInterviews_OpenWindowSkipsCancelled(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	seed := []interview.Interview{
		{ID: "at-start", Panel: []string{"emp-1"}, ScheduledDate: t0.Add(-time.Hour), Status: interview.StatusScheduled},
		{ID: "inside", Panel: []string{"emp-1"}, ScheduledDate: t0, Status: interview.StatusScheduled},
		{ID: "cancelled", Panel: []string{"emp-1"}, ScheduledDate: t0, Status: interview.StatusCancelled},
		{ID: "other", Panel: []string{"emp-2"}, ScheduledDate: t0, Status: interview.StatusScheduled},
	}
	for i := range seed {
		if err := s.CreateInterview(ctx, &seed[i]); err != nil {
			t.Fatalf("CreateInterview: %v", err)
		}
	}

	got, err := s.ListPanelInterviews(ctx, "emp-1", t0.Add(-time.Hour), t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListPanelInterviews: %v", err)
	}
	if len(got) != 1 || got[0].ID != "inside" {
		t.Errorf("got %+v, want only the interview strictly inside the window", got)
	}
}

func TestSaveAssessment_UpsertKeepsID(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	first := &interview.Assessment{ID: "a-1", InterviewID: "iv-1", InterviewerID: "emp-1", Score: 2}
	if err := s.SaveAssessment(ctx, first); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}
	second := &interview.Assessment{ID: "a-2", InterviewID: "iv-1", InterviewerID: "emp-1", Score: 5}
	if err := s.SaveAssessment(ctx, second); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}
	if second.ID != "a-1" {
		t.Errorf("resubmission id = %q, want a-1", second.ID)
	}

	list, _ := s.ListAssessments(ctx, "iv-1")
	if len(list) != 1 || list[0].Score != 5 {
		t.Errorf("got %+v, want one assessment with score 5", list)
	}
}

// ── Offers ───────────────────────────────────────────────────────────────────

func TestListExpiredUnanswered(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	notified := t0
	seed := []offer.Offer{
		{ID: "expired", FinalStatus: offer.DecisionApproved, ApplicantResponse: offer.ResponsePending, Deadline: t0.Add(-time.Hour)},
		{ID: "future", FinalStatus: offer.DecisionApproved, ApplicantResponse: offer.ResponsePending, Deadline: t0.Add(time.Hour)},
		{ID: "answered", FinalStatus: offer.DecisionApproved, ApplicantResponse: offer.ResponseAccepted, Deadline: t0.Add(-time.Hour)},
		{ID: "pending", FinalStatus: offer.DecisionPending, ApplicantResponse: offer.ResponsePending, Deadline: t0.Add(-time.Hour)},
		{ID: "notified", FinalStatus: offer.DecisionApproved, ApplicantResponse: offer.ResponsePending, Deadline: t0.Add(-time.Hour), ExpiryNotifiedAt: &notified},
	}
	for i := range seed {
		if err := s.CreateOffer(ctx, &seed[i]); err != nil {
			t.Fatalf("CreateOffer: %v", err)
		}
	}

	got, err := s.ListExpiredUnanswered(ctx, t0)
	if err != nil {
		t.Fatalf("ListExpiredUnanswered: %v", err)
	}
	if len(got) != 1 || got[0].ID != "expired" {
		t.Errorf("got %+v, want only the expired unanswered offer", got)
	}
}
