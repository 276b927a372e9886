package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"hrdesk/recruitment-service/internal/common"
	"hrdesk/recruitment-service/internal/domain/application"
	"hrdesk/recruitment-service/internal/domain/interview"
	"hrdesk/recruitment-service/internal/notify"
)

// LeaveChecker answers whether an employee is away on a given day.
type LeaveChecker interface {
	IsOnLeave(ctx context.Context, employeeID string, date time.Time, includePending bool) (bool, error)
}

// InterviewScheduler books interviews while keeping panel members from being
// double-booked or scheduled during leave.
type InterviewScheduler struct {
	interviews interview.Repository
	apps       application.Repository
	leave      LeaveChecker
	notify     *notify.Dispatcher
	log        *slog.Logger
	now        func() time.Time
}

// NewInterviewScheduler returns a configured InterviewScheduler.
func NewInterviewScheduler(interviews interview.Repository, apps application.Repository, leave LeaveChecker, d *notify.Dispatcher, opts ...Option) *InterviewScheduler {
	o := buildOptions(opts)
	return &InterviewScheduler{
		interviews: interviews,
		apps:       apps,
		leave:      leave,
		notify:     d,
		log:        o.log,
		now:        o.now,
	}
}

// ScheduleRequest describes a new interview.
type ScheduleRequest struct {
	ApplicationID string
	Stage         string
	ScheduledDate time.Time
	Method        string
	Panel         []string
	VideoLink     string
}

// Schedule creates an interview. The record is written first and every panel
// member is then checked for leave and overlapping interviews; on any
// conflict the record is deleted again and a validation error names the
// member.
func (s *InterviewScheduler) Schedule(ctx context.Context, req ScheduleRequest) (*interview.Interview, error) {
	stage, err := application.ParseStage(req.Stage)
	if err != nil {
		return nil, common.NewValidationError("invalid interview", map[string]string{"stage": err.Error()})
	}
	method, err := interview.ParseMethod(req.Method)
	if err != nil {
		return nil, common.NewValidationError("invalid interview", map[string]string{"method": err.Error()})
	}
	if req.ScheduledDate.IsZero() {
		return nil, common.NewValidationError("invalid interview", map[string]string{"scheduledDate": "scheduledDate is required"})
	}
	panel := uniquePanel(req.Panel)
	if len(panel) == 0 {
		return nil, common.NewValidationError("invalid interview", map[string]string{"panel": "at least one panel member is required"})
	}

	app, err := s.apps.GetApplication(ctx, req.ApplicationID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	iv := &interview.Interview{
		ID:            uuid.NewString(),
		ApplicationID: app.ID,
		Stage:         stage,
		ScheduledDate: req.ScheduledDate.UTC(),
		Method:        method,
		Panel:         panel,
		VideoLink:     req.VideoLink,
		Status:        interview.StatusScheduled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.interviews.CreateInterview(ctx, iv); err != nil {
		return nil, fmt.Errorf("create interview: %w", err)
	}

	if err := s.checkPanel(ctx, iv.Panel, iv.ScheduledDate, iv.ID); err != nil {
		if delErr := s.interviews.DeleteInterview(ctx, iv.ID); delErr != nil {
			s.log.Error("interview rollback failed", "interviewId", iv.ID, "err", delErr)
			err = errors.Join(err, fmt.Errorf("rollback interview %s: %w", iv.ID, delErr))
		}
		return nil, err
	}

	s.notifyParticipants(ctx, iv, app.CandidateID, inviteNotice)
	return iv, nil
}

// Update applies patch to an interview. When the date moves, the resulting
// panel is checked again before anything is written and everyone is told
// about the new time.
func (s *InterviewScheduler) Update(ctx context.Context, interviewID string, patch interview.Patch) (*interview.Interview, error) {
	iv, err := s.interviews.GetInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Status == interview.StatusCancelled {
		return nil, common.Validation("interview %s is cancelled", iv.ID)
	}

	if patch.Stage != nil {
		if application.StageIndex(*patch.Stage) < 0 {
			return nil, common.NewValidationError("invalid interview", map[string]string{"stage": fmt.Sprintf("unknown application stage %q", *patch.Stage)})
		}
		iv.Stage = *patch.Stage
	}
	if patch.Method != nil {
		m, err := interview.ParseMethod(string(*patch.Method))
		if err != nil {
			return nil, common.NewValidationError("invalid interview", map[string]string{"method": err.Error()})
		}
		iv.Method = m
	}
	if patch.Panel != nil {
		panel := uniquePanel(patch.Panel)
		if len(panel) == 0 {
			return nil, common.NewValidationError("invalid interview", map[string]string{"panel": "at least one panel member is required"})
		}
		iv.Panel = panel
	}
	if patch.VideoLink != nil {
		iv.VideoLink = *patch.VideoLink
	}

	rescheduled := false
	if patch.ScheduledDate != nil && !patch.ScheduledDate.Equal(iv.ScheduledDate) {
		if patch.ScheduledDate.IsZero() {
			return nil, common.NewValidationError("invalid interview", map[string]string{"scheduledDate": "scheduledDate is required"})
		}
		iv.ScheduledDate = patch.ScheduledDate.UTC()
		rescheduled = true
		if err := s.checkPanel(ctx, iv.Panel, iv.ScheduledDate, iv.ID); err != nil {
			return nil, err
		}
	}

	iv.UpdatedAt = s.now().UTC()
	if err := s.interviews.UpdateInterview(ctx, iv); err != nil {
		return nil, fmt.Errorf("update interview: %w", err)
	}

	if rescheduled {
		s.notifyParticipants(ctx, iv, s.candidateOf(ctx, iv), rescheduleNotice)
	}
	return iv, nil
}

// Cancel marks an interview CANCELLED and tells the panel and candidate.
func (s *InterviewScheduler) Cancel(ctx context.Context, interviewID string) (*interview.Interview, error) {
	iv, err := s.interviews.GetInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Status == interview.StatusCancelled {
		return nil, common.Validation("interview %s is already cancelled", iv.ID)
	}

	iv.Status = interview.StatusCancelled
	iv.UpdatedAt = s.now().UTC()
	if err := s.interviews.UpdateInterview(ctx, iv); err != nil {
		return nil, fmt.Errorf("cancel interview: %w", err)
	}

	s.notifyParticipants(ctx, iv, s.candidateOf(ctx, iv), cancelNotice)
	return iv, nil
}

// Complete marks a scheduled interview as held.
func (s *InterviewScheduler) Complete(ctx context.Context, interviewID string) (*interview.Interview, error) {
	iv, err := s.interviews.GetInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Status != interview.StatusScheduled {
		return nil, common.Validation("interview %s is %s, not SCHEDULED", iv.ID, iv.Status)
	}
	iv.Status = interview.StatusCompleted
	iv.UpdatedAt = s.now().UTC()
	if err := s.interviews.UpdateInterview(ctx, iv); err != nil {
		return nil, fmt.Errorf("complete interview: %w", err)
	}
	return iv, nil
}

// AssessmentInput is one interviewer's evaluation.
type AssessmentInput struct {
	InterviewID   string
	InterviewerID string
	Score         int
	Comments      string
}

// Assessment score bounds.
const (
	MinScore = 1
	MaxScore = 5
)

// SubmitAssessment stores an interviewer's result. A second submission by
// the same interviewer replaces the first.
func (s *InterviewScheduler) SubmitAssessment(ctx context.Context, in AssessmentInput) (*interview.Assessment, error) {
	if in.Score < MinScore || in.Score > MaxScore {
		return nil, common.NewValidationError("invalid assessment", map[string]string{
			"score": fmt.Sprintf("score must be between %d and %d", MinScore, MaxScore),
		})
	}
	iv, err := s.interviews.GetInterview(ctx, in.InterviewID)
	if err != nil {
		return nil, err
	}
	if iv.Status == interview.StatusCancelled {
		return nil, common.Validation("interview %s is cancelled", iv.ID)
	}
	if !iv.OnPanel(in.InterviewerID) {
		return nil, common.Validation("interviewer %s is not on the panel of interview %s", in.InterviewerID, iv.ID)
	}

	a := &interview.Assessment{
		ID:            uuid.NewString(),
		InterviewID:   iv.ID,
		InterviewerID: in.InterviewerID,
		Score:         in.Score,
		Comments:      in.Comments,
		SubmittedAt:   s.now().UTC(),
	}
	if err := s.interviews.SaveAssessment(ctx, a); err != nil {
		return nil, fmt.Errorf("save assessment: %w", err)
	}
	return a, nil
}

// Assessments lists the results recorded for an interview.
func (s *InterviewScheduler) Assessments(ctx context.Context, interviewID string) ([]interview.Assessment, error) {
	if _, err := s.interviews.GetInterview(ctx, interviewID); err != nil {
		return nil, err
	}
	return s.interviews.ListAssessments(ctx, interviewID)
}

// ─── Conflict checks ─────────────────────────────────────────────────────────

// checkPanel checks members in order and stops at the first conflict.
func (s *InterviewScheduler) checkPanel(ctx context.Context, panel []string, at time.Time, excludeID string) error {
	for _, member := range panel {
		onLeave, err := s.leave.IsOnLeave(ctx, member, at, true)
		if err != nil {
			return fmt.Errorf("leave check for %s: %w", member, err)
		}
		if onLeave {
			return common.NewValidationError(
				fmt.Sprintf("panel member %s is on leave on %s", member, at.Format(time.DateOnly)),
				map[string]string{"panel": member},
			)
		}

		existing, err := s.interviews.ListPanelInterviews(ctx, member, at.Add(-interview.ConflictWindow), at.Add(interview.ConflictWindow))
		if err != nil {
			return fmt.Errorf("overlap check for %s: %w", member, err)
		}
		for _, other := range existing {
			if other.ID == excludeID || other.Status == interview.StatusCancelled {
				continue
			}
			if interview.Overlaps(at, other.ScheduledDate) {
				return common.NewValidationError(
					fmt.Sprintf("panel member %s already has interview %s at %s", member, other.ID, other.ScheduledDate.Format(time.RFC3339)),
					map[string]string{"panel": member},
				)
			}
		}
	}
	return nil
}

func uniquePanel(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, id := range in {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ─── Notifications ───────────────────────────────────────────────────────────

type noticeKind int

const (
	inviteNotice noticeKind = iota
	rescheduleNotice
	cancelNotice
)

func (s *InterviewScheduler) candidateOf(ctx context.Context, iv *interview.Interview) string {
	app, err := s.apps.GetApplication(ctx, iv.ApplicationID)
	if err != nil {
		s.log.Warn("application lookup for interview notice failed", "interviewId", iv.ID, "err", err)
		return ""
	}
	return app.CandidateID
}

func (s *InterviewScheduler) notifyParticipants(ctx context.Context, iv *interview.Interview, candidateID string, kind noticeKind) {
	when := iv.ScheduledDate.Format("Mon 2 Jan 2006 15:04 MST")
	meta := map[string]string{
		"interviewId":   iv.ID,
		"applicationId": iv.ApplicationID,
		"stage":         string(iv.Stage),
		"method":        string(iv.Method),
		"scheduledDate": iv.ScheduledDate.Format(time.RFC3339),
	}
	if iv.VideoLink != "" {
		meta["videoLink"] = iv.VideoLink
	}

	var panelTitle, panelMsg, candTitle, candMsg string
	switch kind {
	case inviteNotice:
		panelTitle = "Interview invitation"
		panelMsg = fmt.Sprintf("You are on the panel for a %s interview on %s. %s", stageLabel(iv.Stage), when, methodDetails(iv))
		candTitle = "Interview scheduled"
		candMsg = fmt.Sprintf("Your %s interview is scheduled for %s. %s", stageLabel(iv.Stage), when, methodDetails(iv))
	case rescheduleNotice:
		panelTitle = "Interview rescheduled"
		panelMsg = fmt.Sprintf("The %s interview you are on has moved to %s. %s", stageLabel(iv.Stage), when, methodDetails(iv))
		candTitle = "Interview rescheduled"
		candMsg = fmt.Sprintf("Your %s interview has been moved to %s. %s", stageLabel(iv.Stage), when, methodDetails(iv))
	case cancelNotice:
		panelTitle = "Interview cancelled"
		panelMsg = fmt.Sprintf("The %s interview on %s has been cancelled.", stageLabel(iv.Stage), when)
		candTitle = "Interview cancelled"
		candMsg = fmt.Sprintf("Your %s interview on %s has been cancelled. We will be in touch.", stageLabel(iv.Stage), when)
	}

	for _, member := range iv.Panel {
		s.notify.Send(ctx, notify.Event{UserID: member, Title: panelTitle, Message: panelMsg, Metadata: meta})
	}
	s.notify.Send(ctx, notify.Event{UserID: candidateID, Title: candTitle, Message: candMsg, Metadata: meta})
}

func methodDetails(iv *interview.Interview) string {
	switch iv.Method {
	case interview.MethodVideo:
		if iv.VideoLink != "" {
			return "Join the video call at " + iv.VideoLink + "."
		}
		return "A video call link will follow."
	case interview.MethodPhone:
		return "This is a phone interview."
	case interview.MethodOnsite:
		return "This interview takes place on site."
	}
	return ""
}

func stageLabel(s application.Stage) string {
	switch s {
	case application.StageScreening:
		return "screening"
	case application.StageDepartmentInterview:
		return "department"
	case application.StageHRInterview:
		return "HR"
	case application.StageOffer:
		return "offer"
	}
	return string(s)
}
