package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hrdesk/recruitment-service/internal/common"
	"hrdesk/recruitment-service/internal/domain/application"
	"hrdesk/recruitment-service/internal/store/memory"
	"hrdesk/recruitment-service/internal/workflow"
)

// ─── Stage transitions ───────────────────────────────────────────────────────

func TestStageTransition_ScreeningToHRInterview(t *testing.T) {
	h := newHarness(t)

	res, err := h.stages.Transition(context.Background(), workflow.StageChange{
		ApplicationID: appID,
		NewStage:      "HR_INTERVIEW",
		ChangedBy:     hrID,
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if res.Progress != 75 {
		t.Errorf("progress = %d, want 75", res.Progress)
	}
	if res.Requisition == nil || res.Requisition.ID != reqID {
		t.Errorf("expected requisition %s in result, got %+v", reqID, res.Requisition)
	}

	app := h.application(t)
	if app.CurrentStage != application.StageHRInterview {
		t.Errorf("stage = %s, want HR_INTERVIEW", app.CurrentStage)
	}
	want := []application.Stage{application.StageScreening, application.StageDepartmentInterview}
	if len(app.Workflow.CompletedStages) != len(want) {
		t.Fatalf("completed stages = %v, want %v", app.Workflow.CompletedStages, want)
	}
	for i, s := range want {
		if app.Workflow.CompletedStages[i] != s {
			t.Errorf("completed[%d] = %s, want %s", i, app.Workflow.CompletedStages[i], s)
		}
	}

	hist := h.history(t)
	if len(hist) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(hist))
	}
	if hist[0].OldStage != application.StageScreening || hist[0].NewStage != application.StageHRInterview {
		t.Errorf("history = %s -> %s, want SCREENING -> HR_INTERVIEW", hist[0].OldStage, hist[0].NewStage)
	}
	if hist[0].Notes != "Stage updated to HR_INTERVIEW" {
		t.Errorf("default notes = %q", hist[0].Notes)
	}
}

func TestStageTransition_ProgressPerStage(t *testing.T) {
	cases := []struct {
		stage    string
		progress int
	}{
		{"SCREENING", 25},
		{"DEPARTMENT_INTERVIEW", 50},
		{"HR_INTERVIEW", 75},
		{"OFFER", 100},
	}
	for _, tc := range cases {
		h := newHarness(t)
		res, err := h.stages.Transition(context.Background(), workflow.StageChange{ApplicationID: appID, NewStage: tc.stage})
		if err != nil {
			t.Fatalf("%s: %v", tc.stage, err)
		}
		if res.Progress != tc.progress {
			t.Errorf("%s: progress = %d, want %d", tc.stage, res.Progress, tc.progress)
		}
	}
}

func TestStageTransition_InvalidStageLeavesApplicationUntouched(t *testing.T) {
	h := newHarness(t)
	before := h.application(t)

	_, err := h.stages.Transition(context.Background(), workflow.StageChange{ApplicationID: appID, NewStage: "InvalidStage"})
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	after := h.application(t)
	if after.CurrentStage != before.CurrentStage || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("application changed: %+v -> %+v", before, after)
	}
	if n := len(h.history(t)); n != 0 {
		t.Errorf("expected no history, got %d records", n)
	}
	if h.rec.count() != 0 {
		t.Errorf("expected no notifications, got %d", h.rec.count())
	}
}

func TestStageTransition_UnknownApplication(t *testing.T) {
	h := newHarness(t)
	_, err := h.stages.Transition(context.Background(), workflow.StageChange{ApplicationID: "missing", NewStage: "OFFER"})
	if !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStageTransition_NotifiesStakeholders(t *testing.T) {
	h := newHarness(t)
	if _, err := h.stages.Transition(context.Background(), workflow.StageChange{ApplicationID: appID, NewStage: "DEPARTMENT_INTERVIEW"}); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	for _, id := range []string{candidateID, hrID, managerID} {
		if n := len(h.rec.to(id)); n != 1 {
			t.Errorf("%s: expected 1 notification, got %d", id, n)
		}
	}
	msg := h.rec.to(candidateID)[0].Message
	if !strings.Contains(msg, "Backend Engineer") || !strings.Contains(msg, "department interview") {
		t.Errorf("unexpected candidate message %q", msg)
	}
}

func TestStageTransition_NotificationFailureDoesNotFail(t *testing.T) {
	h := newHarness(t)
	h.rec.fail = true

	if _, err := h.stages.Transition(context.Background(), workflow.StageChange{ApplicationID: appID, NewStage: "OFFER"}); err != nil {
		t.Fatalf("expected success despite notifier failure, got %v", err)
	}
	if got := h.application(t).CurrentStage; got != application.StageOffer {
		t.Errorf("stage = %s, want OFFER", got)
	}
}

func TestStageTransition_FailedNoticeDoesNotBlockOthers(t *testing.T) {
	h := newHarness(t)
	h.rec.failFor = candidateID

	if _, err := h.stages.Transition(context.Background(), workflow.StageChange{ApplicationID: appID, NewStage: "HR_INTERVIEW"}); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	for _, id := range []string{hrID, managerID} {
		if n := len(h.rec.to(id)); n != 1 {
			t.Errorf("%s: expected 1 notification, got %d", id, n)
		}
	}
}

// ─── Audit atomicity ─────────────────────────────────────────────────────────

// staleHistory rejects every application write, as a store would when the
// audit insert fails inside the transaction.
type staleHistory struct{ *memory.Store }

func (staleHistory) UpdateApplication(context.Context, *application.Application, *application.History) error {
	return errors.New("insert history: connection reset")
}

func TestTransitions_WriteFailureLeavesNoPartialChange(t *testing.T) {
	h := newHarness(t)
	repo := staleHistory{h.store}
	stages := workflow.NewStageEngine(repo, h.d, h.opts...)
	status := workflow.NewStatusEngine(repo, h.d, h.opts...)

	if _, err := stages.Transition(context.Background(), workflow.StageChange{ApplicationID: appID, NewStage: "OFFER"}); err == nil {
		t.Error("stage: expected the write failure to surface")
	}
	if _, err := status.Transition(context.Background(), workflow.StatusChange{ApplicationID: appID, NewStatus: "HIRED"}); err == nil {
		t.Error("status: expected the write failure to surface")
	}

	app := h.application(t)
	if app.CurrentStage != application.StageScreening || app.Status != application.StatusInProcess {
		t.Errorf("application changed: stage=%s status=%s", app.CurrentStage, app.Status)
	}
	if n := len(h.history(t)); n != 0 {
		t.Errorf("expected no history, got %d", n)
	}
	if n := h.rec.count(); n != 0 {
		t.Errorf("expected no notifications, got %d", n)
	}
}

// ─── Status transitions ──────────────────────────────────────────────────────

func TestStatusTransition_RecordsHistory(t *testing.T) {
	h := newHarness(t)
	app, err := h.status.Transition(context.Background(), workflow.StatusChange{
		ApplicationID: appID,
		NewStatus:     "OFFER",
		ChangedBy:     hrID,
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if app.Status != application.StatusOffer {
		t.Errorf("status = %s, want OFFER", app.Status)
	}
	hist := h.history(t)
	if len(hist) != 1 || hist[0].OldStatus != application.StatusInProcess || hist[0].NewStatus != application.StatusOffer {
		t.Fatalf("unexpected history %+v", hist)
	}
	if hist[0].Notes != "Status updated to OFFER" {
		t.Errorf("notes = %q", hist[0].Notes)
	}
}

func TestStatusTransition_FailedNoticeDoesNotBlockOthers(t *testing.T) {
	h := newHarness(t)
	h.rec.failFor = candidateID

	if _, err := h.status.Transition(context.Background(), workflow.StatusChange{ApplicationID: appID, NewStatus: "OFFER"}); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	for _, id := range []string{hrID, managerID} {
		if n := len(h.rec.to(id)); n != 1 {
			t.Errorf("%s: expected 1 notification, got %d", id, n)
		}
	}
}

func TestStatusTransition_Messages(t *testing.T) {
	cases := []struct {
		status string
		reason string
		title  string
		want   string
	}{
		{"HIRED", "", "Congratulations!", "hired for Backend Engineer"},
		{"REJECTED", "Position filled", "Application update", "Reason: Position filled"},
		{"IN_PROCESS", "", "Application status updated", "is now IN_PROCESS"},
	}
	for _, tc := range cases {
		h := newHarness(t)
		_, err := h.status.Transition(context.Background(), workflow.StatusChange{
			ApplicationID:   appID,
			NewStatus:       tc.status,
			RejectionReason: tc.reason,
		})
		if err != nil {
			t.Fatalf("%s: %v", tc.status, err)
		}
		got := h.rec.to(candidateID)
		if len(got) != 1 {
			t.Fatalf("%s: expected 1 candidate notification, got %d", tc.status, len(got))
		}
		if got[0].Title != tc.title || !strings.Contains(got[0].Message, tc.want) {
			t.Errorf("%s: got %q / %q", tc.status, got[0].Title, got[0].Message)
		}
	}
}

func TestStatusTransition_RejectionReasonBecomesNotes(t *testing.T) {
	h := newHarness(t)
	if _, err := h.status.Transition(context.Background(), workflow.StatusChange{
		ApplicationID:   appID,
		NewStatus:       "REJECTED",
		RejectionReason: "Not enough experience",
	}); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if hist := h.history(t); hist[0].Notes != "Not enough experience" {
		t.Errorf("notes = %q", hist[0].Notes)
	}
}

func TestStatusTransition_InvalidStatus(t *testing.T) {
	h := newHarness(t)
	_, err := h.status.Transition(context.Background(), workflow.StatusChange{ApplicationID: appID, NewStatus: "ARCHIVED"})
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := h.application(t).Status; got != application.StatusInProcess {
		t.Errorf("status changed to %s", got)
	}
}

func TestStatusRecord_SendsNothing(t *testing.T) {
	h := newHarness(t)
	if _, err := h.status.Record(context.Background(), workflow.StatusChange{ApplicationID: appID, NewStatus: "OFFER"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if h.rec.count() != 0 {
		t.Errorf("expected no notifications, got %d", h.rec.count())
	}
	if len(h.history(t)) != 1 {
		t.Error("expected the change to be audited")
	}
}
