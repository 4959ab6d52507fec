package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentResponse struct {
	Id           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	DocumentType string    `json:"document_type"`
	SizeBytes    int64     `json:"size_bytes"`
	// Warning is set when extraction failed and the document was stored
	// without text. The upload itself still succeeded.
	Warning string `json:"warning,omitempty"`
}

type GetAllDocumentResponse struct {
	Id           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	DocumentType string    `json:"document_type"`
	SizeBytes    int64     `json:"size_bytes"`
	HasText      bool      `json:"has_text"`
	CreatedAt    time.Time `json:"created_at"`
}

type DeleteDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}
