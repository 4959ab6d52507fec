package model

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId        uuid.UUID `gorm:"type:uuid;not null;index"`
	OriginalFilename string    `gorm:"type:varchar(512);not null"`
	StoredPath       string    `gorm:"type:varchar(1024);not null"`
	ExtractedText    string    `gorm:"type:text"`
	DocumentType     string    `gorm:"type:varchar(32);not null;default:'unknown'"`
	SizeBytes        int64     `gorm:"not null"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

func (Document) TableName() string {
	return "documents"
}
