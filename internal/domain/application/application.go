package application

import (
	"context"
	"time"
)

// Application is a candidate's application to a job requisition.
type Application struct {
	ID            string        `json:"id"`
	CandidateID   string        `json:"candidateId"`
	RequisitionID string        `json:"requisitionId"`
	CurrentStage  Stage         `json:"currentStage"`
	Status        Status        `json:"status"`
	AssignedHRID  string        `json:"assignedHrId,omitempty"`
	Workflow      WorkflowState `json:"workflow"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// WorkflowState is the typed record of funnel progress kept alongside the
// application.
type WorkflowState struct {
	CurrentStage    Stage     `json:"currentStage"`
	CompletedStages []Stage   `json:"completedStages"`
	Progress        int       `json:"progress"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// StateAt derives the workflow state for an application sitting in s.
func StateAt(s Stage, at time.Time) WorkflowState {
	i := StageIndex(s)
	completed := make([]Stage, 0, len(Stages))
	if i > 0 {
		completed = append(completed, Stages[:i]...)
	}
	return WorkflowState{
		CurrentStage:    s,
		CompletedStages: completed,
		Progress:        Progress(s),
		UpdatedAt:       at,
	}
}

// History is an append-only audit record of one stage or status change.
// Exactly one of the stage pair or the status pair is set.
type History struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"applicationId"`
	OldStage      Stage     `json:"oldStage,omitempty"`
	NewStage      Stage     `json:"newStage,omitempty"`
	OldStatus     Status    `json:"oldStatus,omitempty"`
	NewStatus     Status    `json:"newStatus,omitempty"`
	ChangedBy     string    `json:"changedBy,omitempty"`
	ChangedAt     time.Time `json:"changedAt"`
	Notes         string    `json:"notes"`
}

// Requisition is the job opening an application targets.
type Requisition struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	HiringManagerID string `json:"hiringManagerId,omitempty"`
}

// Repository persists applications and their history. Getters return a
// common.CodeNotFound error for unknown ids.
//
// UpdateApplication writes the application, its workflow state and the
// audit record h as one unit: either all of them are stored or none is.
type Repository interface {
	GetApplication(ctx context.Context, id string) (*Application, error)
	UpdateApplication(ctx context.Context, app *Application, h *History) error
	GetRequisition(ctx context.Context, id string) (*Requisition, error)
	ListHistory(ctx context.Context, applicationID string) ([]History, error)
}
