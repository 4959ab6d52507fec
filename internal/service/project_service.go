package service

import (
	"context"
	"strings"
	"time"

	"construction-docs-be/internal/dto"
	"construction-docs-be/internal/entity"
	"construction-docs-be/internal/pkg/apperror"
	"construction-docs-be/internal/pkg/filestore"
	"construction-docs-be/internal/pkg/locker"
	"construction-docs-be/internal/pkg/logger"
	"construction-docs-be/internal/repository/memory"
	"construction-docs-be/internal/repository/specification"
	"construction-docs-be/internal/repository/unitofwork"
	"construction-docs-be/pkg/events"
	pktNats "construction-docs-be/pkg/nats"

	"github.com/google/uuid"
)

const defaultProjectName = "My First Project"

type IProjectService interface {
	Create(ctx context.Context, accountId uuid.UUID, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error)
	GetAll(ctx context.Context, accountId uuid.UUID) ([]*dto.GetAllProjectResponse, error)
	Delete(ctx context.Context, accountId uuid.UUID, id uuid.UUID) (*dto.DeleteProjectResponse, error)
}

type projectService struct {
	uowFactory unitofwork.RepositoryFactory
	jobs       *memory.JobRepository
	files      *filestore.FileStore
	locks      *locker.ProjectLocker
	natsPub    *pktNats.Publisher
	logger     logger.ILogger
}

func NewProjectService(
	uowFactory unitofwork.RepositoryFactory,
	jobs *memory.JobRepository,
	files *filestore.FileStore,
	locks *locker.ProjectLocker,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) IProjectService {
	return &projectService{
		uowFactory: uowFactory,
		jobs:       jobs,
		files:      files,
		locks:      locks,
		natsPub:    natsPub,
		logger:     log,
	}
}

func (s *projectService) Create(ctx context.Context, accountId uuid.UUID, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("project name must not be empty")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	project := entity.Project{
		Id:          uuid.New(),
		AccountId:   accountId,
		Name:        name,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}

	if err := uow.ProjectRepository().Create(ctx, &project); err != nil {
		return nil, err
	}

	return &dto.CreateProjectResponse{
		Id: project.Id,
	}, nil
}

func (s *projectService) GetAll(ctx context.Context, accountId uuid.UUID) ([]*dto.GetAllProjectResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	projects, err := uow.ProjectRepository().FindAll(ctx,
		specification.AccountOwnedBy{AccountID: accountId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	// Every account always sees at least one project.
	if len(projects) == 0 {
		starter := entity.Project{
			Id:        uuid.New(),
			AccountId: accountId,
			Name:      defaultProjectName,
			CreatedAt: time.Now(),
		}
		if err := uow.ProjectRepository().Create(ctx, &starter); err != nil {
			return nil, err
		}
		s.logger.Info("ProjectService", "Created starter project", map[string]interface{}{"account_id": accountId})
		projects = append(projects, &starter)
	}

	result := make([]*dto.GetAllProjectResponse, 0, len(projects))
	for _, project := range projects {
		count, err := uow.DocumentRepository().Count(ctx, specification.ByProjectID{ProjectID: project.Id})
		if err != nil {
			return nil, err
		}
		result = append(result, &dto.GetAllProjectResponse{
			Id:            project.Id,
			Name:          project.Name,
			Description:   project.Description,
			DocumentCount: count,
			CreatedAt:     project.CreatedAt,
			UpdatedAt:     project.UpdatedAt,
		})
	}

	return result, nil
}

func (s *projectService) Delete(ctx context.Context, accountId uuid.UUID, id uuid.UUID) (*dto.DeleteProjectResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.AccountOwnedBy{AccountID: accountId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.NotFound("project not found")
	}

	// Serialize with in-flight chat writes for this project. Unlock must
	// come before Forget; forgetting a held mutex leaves it locked forever
	// for whoever still references it.
	s.locks.Lock(id)
	err = s.cascadeDelete(ctx, uow, accountId, id)
	s.locks.Unlock(id)
	if err != nil {
		return nil, err
	}
	s.locks.Forget(id)

	// In-flight analyses for a deleted project must not resurface results.
	cancelled := s.jobs.CancelByProject(id)
	if len(cancelled) > 0 {
		s.logger.Info("ProjectService", "Cancelled active analysis jobs on project deletion", map[string]interface{}{
			"project_id": id,
			"count":      len(cancelled),
		})
	}

	if err := s.files.DeleteProject(id); err != nil {
		s.logger.Warn("ProjectService", "Failed to remove uploaded files", map[string]interface{}{
			"project_id": id,
			"error":      err.Error(),
		})
	}

	if s.natsPub != nil {
		if err := s.natsPub.Publish(ctx, events.NewProjectDeletedEvent(accountId, id)); err != nil {
			s.logger.Warn("ProjectService", "Failed to publish project deleted event", map[string]interface{}{"error": err.Error()})
		}
	}

	// Fallback selection: oldest remaining project.
	remaining, err := uow.ProjectRepository().FindAll(ctx,
		specification.AccountOwnedBy{AccountID: accountId},
		specification.OrderBy{Field: "created_at"},
		specification.Pagination{Limit: 1},
	)
	if err != nil {
		return nil, err
	}
	if len(remaining) == 0 {
		return nil, apperror.New(apperror.KindInternal, "no fallback project after deletion")
	}

	return &dto.DeleteProjectResponse{
		Id:                id,
		FallbackProjectId: remaining[0].Id,
	}, nil
}

// cascadeDelete removes the project and its rows in one transaction. The
// account's project rows are locked for the duration so two racing deletes
// cannot both pass the last-project check.
func (s *projectService) cascadeDelete(ctx context.Context, uow unitofwork.UnitOfWork, accountId, id uuid.UUID) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	owned, err := uow.ProjectRepository().FindAll(ctx,
		specification.AccountOwnedBy{AccountID: accountId},
		specification.ForUpdate{},
	)
	if err != nil {
		return err
	}
	if len(owned) <= 1 {
		return apperror.Invariant("cannot delete the last remaining project")
	}

	found := false
	for _, p := range owned {
		if p.Id == id {
			found = true
			break
		}
	}
	if !found {
		// A concurrent delete got here first.
		return apperror.NotFound("project not found")
	}

	if err := uow.MessageRepository().DeleteByProjectId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().DeleteByProjectId(ctx, id); err != nil {
		return err
	}
	if err := uow.ProjectRepository().Delete(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}
