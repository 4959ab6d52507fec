package entity

import (
	"time"

	"github.com/google/uuid"
)

// Message is one turn in a project's conversation. Seq is assigned by the
// database and is the authoritative ordering key; CreatedAt is for display.
type Message struct {
	Id        uuid.UUID
	ProjectId uuid.UUID
	Seq       int64
	Role      string
	Content   string
	CreatedAt time.Time
}
