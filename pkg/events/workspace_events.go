package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeAnalysisFinished = "ANALYSIS_FINISHED"
	TypeDocumentUploaded = "DOCUMENT_UPLOADED"
	TypeProjectDeleted   = "PROJECT_DELETED"
)

// NewAnalysisFinishedEvent fires when an analysis job reaches a terminal
// status. Consumers push the outcome to the owning account's sockets.
func NewAnalysisFinishedEvent(accountId, projectId, jobId uuid.UUID, kind, status string) Event {
	return BaseEvent{
		Type: TypeAnalysisFinished,
		Data: map[string]interface{}{
			"account_id": accountId.String(),
			"project_id": projectId.String(),
			"job_id":     jobId.String(),
			"kind":       kind,
			"status":     status,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentUploadedEvent(accountId, projectId, documentId uuid.UUID, filename, docType string) Event {
	return BaseEvent{
		Type: TypeDocumentUploaded,
		Data: map[string]interface{}{
			"account_id":  accountId.String(),
			"project_id":  projectId.String(),
			"document_id": documentId.String(),
			"filename":    filename,
			"doc_type":    docType,
		},
		OccurredAt: time.Now(),
	}
}

func NewProjectDeletedEvent(accountId, projectId uuid.UUID) Event {
	return BaseEvent{
		Type: TypeProjectDeleted,
		Data: map[string]interface{}{
			"account_id": accountId.String(),
			"project_id": projectId.String(),
		},
		OccurredAt: time.Now(),
	}
}
