package unitofwork

import (
	"context"

	"construction-docs-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ProjectRepository() contract.ProjectRepository
	DocumentRepository() contract.DocumentRepository
	MessageRepository() contract.MessageRepository
}
