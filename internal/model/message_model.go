package model

import (
	"time"

	"github.com/google/uuid"
)

// Message rows are append-only. Seq is a bigserial so concurrent appends
// still get a strictly increasing, deterministic ordering key.
type Message struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId uuid.UUID `gorm:"type:uuid;not null;index"`
	Seq       int64     `gorm:"autoIncrement;uniqueIndex"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}
