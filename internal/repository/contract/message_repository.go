package contract

import (
	"context"

	"construction-docs-be/internal/entity"
	"construction-docs-be/internal/repository/specification"

	"github.com/google/uuid"
)

// MessageRepository is append-only: messages are never updated and only
// removed through project cascade deletion.
type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	DeleteByProjectId(ctx context.Context, projectId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
