package grpcserver

import (
	"time"

	"hrdesk/recruitment-service/internal/domain/interview"
)

// Request and response messages of recruitment.v1.RecruitmentService. On the
// wire each one is a google.protobuf.Struct keyed by the json tags below;
// timestamps are RFC 3339 strings.

type TransitionStageRequest struct {
	ApplicationID string `json:"applicationId"`
	Stage         string `json:"stage"`
	Notes         string `json:"notes"`
}

type TransitionStatusRequest struct {
	ApplicationID   string `json:"applicationId"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
	Notes           string `json:"notes"`
}

type ScheduleInterviewRequest struct {
	ApplicationID string    `json:"applicationId"`
	Stage         string    `json:"stage"`
	ScheduledDate time.Time `json:"scheduledDate"`
	Method        string    `json:"method"`
	Panel         []string  `json:"panel"`
	VideoLink     string    `json:"videoLink"`
}

// UpdateInterviewRequest changes only the fields that are present.
type UpdateInterviewRequest struct {
	InterviewID   string     `json:"interviewId"`
	Stage         *string    `json:"stage"`
	ScheduledDate *time.Time `json:"scheduledDate"`
	Method        *string    `json:"method"`
	Panel         *[]string  `json:"panel"`
	VideoLink     *string    `json:"videoLink"`
}

type InterviewRef struct {
	InterviewID string `json:"interviewId"`
}

type SubmitAssessmentRequest struct {
	InterviewID string `json:"interviewId"`
	Score       int    `json:"score"`
	Comments    string `json:"comments"`
}

type ListAssessmentsResponse struct {
	Assessments []interview.Assessment `json:"assessments"`
}

type Approver struct {
	EmployeeID string `json:"employeeId"`
	Role       string `json:"role"`
}

type CreateOfferRequest struct {
	ApplicationID string     `json:"applicationId"`
	Position      string     `json:"position"`
	GrossSalary   float64    `json:"grossSalary"`
	Bonus         float64    `json:"bonus"`
	Benefits      []string   `json:"benefits"`
	Approvers     []Approver `json:"approvers"`
	Deadline      time.Time  `json:"deadline"`
}

type MissingApproverRolesRequest struct {
	GrossSalary float64    `json:"grossSalary"`
	Approvers   []Approver `json:"approvers"`
}

type MissingApproverRolesResponse struct {
	Missing []string `json:"missing"`
}

type OfferDecisionRequest struct {
	OfferID  string `json:"offerId"`
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

type OfferRef struct {
	OfferID string `json:"offerId"`
}

type RejectOfferRequest struct {
	OfferID string `json:"offerId"`
	Reason  string `json:"reason"`
}

type UpdateOnboardingTaskRequest struct {
	OnboardingID string `json:"onboardingId"`
	TaskID       string `json:"taskId"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
}
