package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"construction-docs-be/internal/dto"
	"construction-docs-be/internal/entity"
	"construction-docs-be/internal/pkg/apperror"
	"construction-docs-be/internal/pkg/logger"
	"construction-docs-be/internal/repository/memory"
	"construction-docs-be/internal/repository/specification"
	"construction-docs-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IAnalysisService interface {
	Trigger(ctx context.Context, accountId, projectId uuid.UUID, req *dto.TriggerAnalysisRequest) (*dto.AnalysisJobResponse, error)
	Get(ctx context.Context, accountId, projectId, jobId uuid.UUID) (*dto.AnalysisJobResponse, error)
}

type analysisService struct {
	uowFactory unitofwork.RepositoryFactory
	jobs       *memory.JobRepository
	publisher  IPublisherService
	logger     logger.ILogger
}

func NewAnalysisService(
	uowFactory unitofwork.RepositoryFactory,
	jobs *memory.JobRepository,
	publisher IPublisherService,
	log logger.ILogger,
) IAnalysisService {
	return &analysisService{
		uowFactory: uowFactory,
		jobs:       jobs,
		publisher:  publisher,
		logger:     log,
	}
}

func (s *analysisService) Trigger(ctx context.Context, accountId, projectId uuid.UUID, req *dto.TriggerAnalysisRequest) (*dto.AnalysisJobResponse, error) {
	if req.Kind != entity.AnalysisKindConflict && req.Kind != entity.AnalysisKindCompare {
		return nil, apperror.Validation("kind must be conflict or compare")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: projectId},
		specification.AccountOwnedBy{AccountID: accountId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.NotFound("project not found")
	}

	documentIds, err := s.resolveScope(ctx, uow, projectId, req.DocumentIds)
	if err != nil {
		return nil, err
	}
	if len(documentIds) < 2 {
		return nil, apperror.Precondition("analysis requires at least 2 documents")
	}

	job := &entity.AnalysisJob{
		Id:          uuid.New(),
		ProjectId:   projectId,
		AccountId:   accountId,
		Kind:        req.Kind,
		DocumentIds: documentIds,
		Status:      entity.JobStatusPending,
		StartedAt:   time.Now(),
	}

	ok, active := s.jobs.TryCreate(job)
	if !ok {
		return nil, apperror.Conflict(fmt.Sprintf("a %s analysis is already active for this project (job %s)", req.Kind, active.Id))
	}

	payload, err := json.Marshal(dto.AnalysisJobMessage{JobId: job.Id})
	if err != nil {
		s.jobs.Finish(job.Id, entity.JobStatusFailed, nil, "failed to enqueue job")
		return nil, err
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.jobs.Finish(job.Id, entity.JobStatusFailed, nil, "failed to enqueue job")
		return nil, apperror.Wrap(apperror.KindInternal, "failed to enqueue analysis job", err)
	}

	s.logger.Info("AnalysisService", "Analysis job queued", map[string]interface{}{
		"job_id":     job.Id,
		"project_id": projectId,
		"kind":       req.Kind,
		"documents":  len(documentIds),
	})

	return toJobResponse(job), nil
}

func (s *analysisService) Get(ctx context.Context, accountId, projectId, jobId uuid.UUID) (*dto.AnalysisJobResponse, error) {
	job := s.jobs.Get(jobId)
	if job == nil || job.ProjectId != projectId || job.AccountId != accountId {
		return nil, apperror.NotFound("analysis job not found")
	}
	return toJobResponse(job), nil
}

// resolveScope returns the document ids the job will analyze. Explicit ids
// must all belong to the project; the default scope is every document.
func (s *analysisService) resolveScope(ctx context.Context, uow unitofwork.UnitOfWork, projectId uuid.UUID, requested []uuid.UUID) ([]uuid.UUID, error) {
	if len(requested) > 0 {
		documents, err := uow.DocumentRepository().FindAll(ctx,
			specification.ByIDs{IDs: requested},
			specification.ByProjectID{ProjectID: projectId},
		)
		if err != nil {
			return nil, err
		}

		found := make(map[uuid.UUID]bool, len(documents))
		for _, document := range documents {
			found[document.Id] = true
		}
		scope := make([]uuid.UUID, 0, len(requested))
		for _, id := range requested {
			if !found[id] {
				return nil, apperror.NotFound(fmt.Sprintf("document %s not found in project", id))
			}
			if !contains(scope, id) {
				scope = append(scope, id)
			}
		}
		return scope, nil
	}

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	scope := make([]uuid.UUID, 0, len(documents))
	for _, document := range documents {
		scope = append(scope, document.Id)
	}
	return scope, nil
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func toJobResponse(job *entity.AnalysisJob) *dto.AnalysisJobResponse {
	res := &dto.AnalysisJobResponse{
		Id:          job.Id,
		ProjectId:   job.ProjectId,
		Kind:        job.Kind,
		Status:      job.Status,
		DocumentIds: job.DocumentIds,
		Error:       job.Error,
		StartedAt:   job.StartedAt,
		FinishedAt:  job.FinishedAt,
	}

	if job.Result != nil {
		result := &dto.AnalysisResultResponse{
			Summary: job.Result.Summary,
		}
		for _, finding := range job.Result.Findings {
			result.Findings = append(result.Findings, dto.AnalysisFindingResponse{
				Title:        finding.Title,
				Severity:     finding.Severity,
				Description:  finding.Description,
				DocumentRefs: finding.DocumentRefs,
			})
		}
		res.Result = result
	}

	return res
}
