package dto

import (
	"time"

	"github.com/google/uuid"
)

type TriggerAnalysisRequest struct {
	Kind        string      `json:"kind" validate:"required,oneof=conflict compare"`
	DocumentIds []uuid.UUID `json:"document_ids"`
}

type AnalysisFindingResponse struct {
	Title        string   `json:"title"`
	Severity     string   `json:"severity"`
	Description  string   `json:"description"`
	DocumentRefs []string `json:"document_refs"`
}

type AnalysisResultResponse struct {
	Findings []AnalysisFindingResponse `json:"findings,omitempty"`
	Summary  string                    `json:"summary,omitempty"`
}

type AnalysisJobResponse struct {
	Id          uuid.UUID               `json:"id"`
	ProjectId   uuid.UUID               `json:"project_id"`
	Kind        string                  `json:"kind"`
	Status      string                  `json:"status"`
	DocumentIds []uuid.UUID             `json:"document_ids"`
	Result      *AnalysisResultResponse `json:"result,omitempty"`
	Error       string                  `json:"error,omitempty"`
	StartedAt   time.Time               `json:"started_at"`
	FinishedAt  *time.Time              `json:"finished_at,omitempty"`
}

// AnalysisJobMessage travels on the internal work queue between Trigger
// and the worker.
type AnalysisJobMessage struct {
	JobId uuid.UUID `json:"job_id"`
}
