package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id               uuid.UUID
	ProjectId        uuid.UUID
	OriginalFilename string
	StoredPath       string
	ExtractedText    string
	DocumentType     string
	SizeBytes        int64
	CreatedAt        time.Time
}
