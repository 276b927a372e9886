// Package interview defines interviews, their panels and assessment results.
package interview

import (
	"context"
	"fmt"
	"slices"
	"time"

	"hrdesk/recruitment-service/internal/domain/application"
)

// Method is how an interview is conducted.
type Method string

const (
	MethodVideo  Method = "VIDEO"
	MethodPhone  Method = "PHONE"
	MethodOnsite Method = "ONSITE"
)

// ParseMethod converts a raw string to a Method.
func ParseMethod(s string) (Method, error) {
	m := Method(s)
	switch m {
	case MethodVideo, MethodPhone, MethodOnsite:
		return m, nil
	}
	return "", fmt.Errorf("unknown interview method %q", s)
}

// Status is the interview lifecycle state.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ConflictWindow is the assumed interview length used for double-booking
// checks. Interviews carry no duration of their own.
const ConflictWindow = time.Hour

// Interview is one scheduled conversation between a panel and a candidate.
type Interview struct {
	ID            string            `json:"id"`
	ApplicationID string            `json:"applicationId"`
	Stage         application.Stage `json:"stage"`
	ScheduledDate time.Time         `json:"scheduledDate"`
	Method        Method            `json:"method"`
	Panel         []string          `json:"panel"`
	VideoLink     string            `json:"videoLink,omitempty"`
	Status        Status            `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// OnPanel reports whether employeeID sits on the interview panel.
func (i *Interview) OnPanel(employeeID string) bool {
	return slices.Contains(i.Panel, employeeID)
}

// Overlaps reports whether an interview starting at other falls strictly
// inside the conflict window around at.
func Overlaps(at, other time.Time) bool {
	return other.Before(at.Add(ConflictWindow)) && other.After(at.Add(-ConflictWindow))
}

// Patch carries the optional fields of an interview update.
type Patch struct {
	Stage         *application.Stage
	ScheduledDate *time.Time
	Method        *Method
	Panel         []string
	VideoLink     *string
}

// Assessment is one interviewer's evaluation of an interview.
type Assessment struct {
	ID            string    `json:"id"`
	InterviewID   string    `json:"interviewId"`
	InterviewerID string    `json:"interviewerId"`
	Score         int       `json:"score"`
	Comments      string    `json:"comments"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// Repository persists interviews and assessments.
type Repository interface {
	CreateInterview(ctx context.Context, iv *Interview) error
	GetInterview(ctx context.Context, id string) (*Interview, error)
	UpdateInterview(ctx context.Context, iv *Interview) error
	DeleteInterview(ctx context.Context, id string) error
	// ListPanelInterviews returns non-cancelled interviews on which employeeID
	// sits whose scheduled date lies strictly between from and to.
	ListPanelInterviews(ctx context.Context, employeeID string, from, to time.Time) ([]Interview, error)
	// SaveAssessment inserts or replaces the assessment for its
	// (interview, interviewer) pair.
	SaveAssessment(ctx context.Context, a *Assessment) error
	ListAssessments(ctx context.Context, interviewID string) ([]Assessment, error)
}
