package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	AnalysisKindConflict = "conflict"
	AnalysisKindCompare  = "compare"

	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
	JobStatusCancelled = "cancelled"

	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// AnalysisJob is request-scoped state, held in memory only. Terminal
// statuses (succeeded, failed, cancelled) are final.
type AnalysisJob struct {
	Id          uuid.UUID
	ProjectId   uuid.UUID
	AccountId   uuid.UUID
	Kind        string
	DocumentIds []uuid.UUID
	Status      string
	Result      *AnalysisResult
	Error       string
	StartedAt   time.Time
	FinishedAt  *time.Time
}

func (j *AnalysisJob) IsTerminal() bool {
	switch j.Status {
	case JobStatusSucceeded, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// AnalysisResult carries structured findings for conflict jobs and a
// free-text summary for compare jobs.
type AnalysisResult struct {
	Findings []Finding `json:"findings,omitempty"`
	Summary  string    `json:"summary,omitempty"`
}

type Finding struct {
	Title        string   `json:"title"`
	Severity     string   `json:"severity"`
	Description  string   `json:"description"`
	DocumentRefs []string `json:"document_refs"`
}
