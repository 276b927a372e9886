// Package offer defines job offers, their approval chain and the candidate's
// response.
package offer

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Role is an approver role required for an offer.
type Role string

const (
	RoleHRManager      Role = "HR_MANAGER"
	RoleHiringManager  Role = "HIRING_MANAGER"
	RoleFinance        Role = "FINANCE"
	RoleDepartmentHead Role = "DEPARTMENT_HEAD"
)

// Salary thresholds above which extra approvers are required. A salary equal
// to a threshold does not add the role.
const (
	FinanceThreshold        = 100000
	DepartmentHeadThreshold = 200000
)

// RequiredApprovers returns the approver roles an offer at grossSalary needs.
func RequiredApprovers(grossSalary float64) []Role {
	roles := []Role{RoleHRManager, RoleHiringManager}
	if grossSalary > FinanceThreshold {
		roles = append(roles, RoleFinance)
	}
	if grossSalary > DepartmentHeadThreshold {
		roles = append(roles, RoleDepartmentHead)
	}
	return roles
}

// Decision is an approval state, used both per approver and for the offer as
// a whole.
type Decision string

const (
	DecisionPending  Decision = "PENDING"
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

// ParseVerdict accepts an approver's verdict ("approved" or "rejected", any
// case) and returns the matching Decision.
func ParseVerdict(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved":
		return DecisionApproved, nil
	case "rejected":
		return DecisionRejected, nil
	}
	return "", fmt.Errorf("decision must be approved or rejected, got %q", s)
}

// Response is the candidate's answer to an approved offer.
type Response string

const (
	ResponsePending  Response = "PENDING"
	ResponseAccepted Response = "ACCEPTED"
	ResponseRejected Response = "REJECTED"
)

// Approver is one sign-off slot on an offer.
type Approver struct {
	EmployeeID string     `json:"employeeId"`
	Role       string     `json:"role"`
	Status     Decision   `json:"status"`
	ActionDate *time.Time `json:"actionDate,omitempty"`
	Comment    string     `json:"comment,omitempty"`
}

// Offer is a compensation proposal for an application.
type Offer struct {
	ID                string     `json:"id"`
	ApplicationID     string     `json:"applicationId"`
	CandidateID       string     `json:"candidateId"`
	Position          string     `json:"position"`
	GrossSalary       float64    `json:"grossSalary"`
	Bonus             float64    `json:"bonus"`
	Benefits          []string   `json:"benefits"`
	Approvers         []Approver `json:"approvers"`
	ApplicantResponse Response   `json:"applicantResponse"`
	FinalStatus       Decision   `json:"finalStatus"`
	Deadline          time.Time  `json:"deadline"`
	SignedAt          *time.Time `json:"signedAt,omitempty"`
	ResponseReason    string     `json:"responseReason,omitempty"`
	ExpiryNotifiedAt  *time.Time `json:"expiryNotifiedAt,omitempty"`
	CreatedBy         string     `json:"createdBy,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// DeriveFinalStatus computes the offer outcome from its approvers: any
// rejection rejects, unanimous approval approves, anything else is pending.
// An empty approver list approves.
func DeriveFinalStatus(approvers []Approver) Decision {
	allApproved := true
	for _, a := range approvers {
		switch a.Status {
		case DecisionRejected:
			return DecisionRejected
		case DecisionApproved:
		default:
			allApproved = false
		}
	}
	if allApproved {
		return DecisionApproved
	}
	return DecisionPending
}

// Approver returns the slot for employeeID, or nil.
func (o *Offer) Approver(employeeID string) *Approver {
	for i := range o.Approvers {
		if o.Approvers[i].EmployeeID == employeeID {
			return &o.Approvers[i]
		}
	}
	return nil
}

// IsExpired reports whether the response deadline has passed at now.
func (o *Offer) IsExpired(now time.Time) bool {
	return now.After(o.Deadline)
}

// AwaitingResponse reports whether the candidate can still answer.
func (o *Offer) AwaitingResponse() bool {
	return o.FinalStatus == DecisionApproved && o.ApplicantResponse == ResponsePending
}

// Repository persists offers.
type Repository interface {
	CreateOffer(ctx context.Context, o *Offer) error
	GetOffer(ctx context.Context, id string) (*Offer, error)
	UpdateOffer(ctx context.Context, o *Offer) error
	// ListExpiredUnanswered returns approved offers still awaiting a response
	// whose deadline is before now and whose expiry has not been notified.
	ListExpiredUnanswered(ctx context.Context, now time.Time) ([]Offer, error)
}
