// Package application defines the hiring funnel for candidate applications.
//
// Stage is the position in the funnel:
//
//	SCREENING ──► DEPARTMENT_INTERVIEW ──► HR_INTERVIEW ──► OFFER
//
// Status is the broader lifecycle state, independent of the funnel:
//
//	SUBMITTED, IN_PROCESS, OFFER, HIRED, REJECTED
//
// Any member of either enumeration may be set directly; the engine validates
// membership, not adjacency.
package application

import "fmt"

// Stage values mirror the application_stage enum in PostgreSQL.
type Stage string

const (
	StageScreening           Stage = "SCREENING"
	StageDepartmentInterview Stage = "DEPARTMENT_INTERVIEW"
	StageHRInterview         Stage = "HR_INTERVIEW"
	StageOffer               Stage = "OFFER"
)

// Stages is the canonical funnel order.
var Stages = []Stage{StageScreening, StageDepartmentInterview, StageHRInterview, StageOffer}

// Status values mirror the application_status enum in PostgreSQL.
type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusInProcess Status = "IN_PROCESS"
	StatusOffer     Status = "OFFER"
	StatusHired     Status = "HIRED"
	StatusRejected  Status = "REJECTED"
)

// ParseStage converts a raw string to a Stage, returning an error for
// unknown values.
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	if StageIndex(st) < 0 {
		return "", fmt.Errorf("unknown application stage %q", s)
	}
	return st, nil
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusSubmitted, StatusInProcess, StatusOffer, StatusHired, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// StageIndex returns the position of s in Stages, or -1.
func StageIndex(s Stage) int {
	for i, candidate := range Stages {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Progress returns the funnel completion percentage for s: 25, 50, 75 or 100.
// Unknown stages report 0.
func Progress(s Stage) int {
	i := StageIndex(s)
	if i < 0 {
		return 0
	}
	return (i + 1) * 100 / len(Stages)
}
