// Package onboarding defines the pre-boarding checklist created when a
// candidate accepts an offer, and the contract snapshot taken at that time.
package onboarding

import (
	"context"
	"fmt"
	"time"
)

// TaskStatus is the progress of a single checklist item.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
)

// ParseTaskStatus converts a raw string to a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(s)
	switch st {
	case TaskPending, TaskInProgress, TaskCompleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// Task is one checklist item.
type Task struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Department  string     `json:"department"`
	Status      TaskStatus `json:"status"`
	Deadline    time.Time  `json:"deadline"`
	Notes       string     `json:"notes,omitempty"`
	DocumentID  string     `json:"documentId,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	RemindedAt  *time.Time `json:"remindedAt,omitempty"`
}

// Onboarding is the checklist for a hired candidate. Completed tracks the
// current task states and is cleared when a task is reopened;
// CompletionNotifiedAt is set once, the first time the checklist completes.
type Onboarding struct {
	ID                   string     `json:"id"`
	EmployeeID           string     `json:"employeeId"`
	OfferID              string     `json:"offerId"`
	ContractID           string     `json:"contractId"`
	Tasks                []Task     `json:"tasks"`
	StartDate            time.Time  `json:"startDate"`
	Completed            bool       `json:"completed"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`
	CompletionNotifiedAt *time.Time `json:"completionNotifiedAt,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// Task returns the task with id, or nil.
func (o *Onboarding) Task(id string) *Task {
	for i := range o.Tasks {
		if o.Tasks[i].ID == id {
			return &o.Tasks[i]
		}
	}
	return nil
}

// AllTasksCompleted reports whether every task is COMPLETED. An empty
// checklist is not considered complete.
func (o *Onboarding) AllTasksCompleted() bool {
	if len(o.Tasks) == 0 {
		return false
	}
	for _, t := range o.Tasks {
		if t.Status != TaskCompleted {
			return false
		}
	}
	return true
}

// Contract is the immutable compensation snapshot taken from an accepted
// offer.
type Contract struct {
	ID          string    `json:"id"`
	OfferID     string    `json:"offerId"`
	CandidateID string    `json:"candidateId"`
	Role        string    `json:"role"`
	GrossSalary float64   `json:"grossSalary"`
	Bonus       float64   `json:"bonus"`
	Benefits    []string  `json:"benefits"`
	StartDate   time.Time `json:"startDate"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Repository persists onboardings and contracts.
type Repository interface {
	CreateContract(ctx context.Context, c *Contract) error
	CreateOnboarding(ctx context.Context, o *Onboarding) error
	GetOnboarding(ctx context.Context, id string) (*Onboarding, error)
	// FindOnboardingByOffer returns a common.CodeNotFound error when the
	// offer has no onboarding yet.
	FindOnboardingByOffer(ctx context.Context, offerID string) (*Onboarding, error)
	UpdateOnboarding(ctx context.Context, o *Onboarding) error
	ListOpenOnboardings(ctx context.Context) ([]Onboarding, error)
}
