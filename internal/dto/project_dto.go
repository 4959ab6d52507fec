package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

type CreateProjectResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllProjectResponse struct {
	Id            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Description   *string    `json:"description"`
	DocumentCount int64      `json:"document_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

// DeleteProjectResponse names the project the client should select next.
type DeleteProjectResponse struct {
	Id                uuid.UUID `json:"id"`
	FallbackProjectId uuid.UUID `json:"fallback_project_id"`
}
