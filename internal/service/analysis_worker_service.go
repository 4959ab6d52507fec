package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"construction-docs-be/internal/constant"
	"construction-docs-be/internal/dto"
	"construction-docs-be/internal/entity"
	"construction-docs-be/internal/pkg/logger"
	"construction-docs-be/internal/repository/memory"
	"construction-docs-be/internal/repository/specification"
	"construction-docs-be/internal/repository/unitofwork"
	"construction-docs-be/pkg/analysis"
	"construction-docs-be/pkg/assembler"
	"construction-docs-be/pkg/events"
	"construction-docs-be/pkg/llm"
	pktNats "construction-docs-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Per-document excerpt limits for the two analysis shapes. Conflict sees
// every document at once, compare works through pairs and can afford more
// text per document.
const (
	conflictCharsPerDoc = 2500
	compareCharsPerDoc  = 4000
)

type IAnalysisWorkerService interface {
	Consume(ctx context.Context) error
}

type analysisWorkerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	jobs           *memory.JobRepository
	llmProvider    llm.LLMProvider
	natsPub        *pktNats.Publisher
	requestTimeout time.Duration
	logger         logger.ILogger
}

func NewAnalysisWorkerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	jobs *memory.JobRepository,
	llmProvider llm.LLMProvider,
	natsPub *pktNats.Publisher,
	requestTimeout time.Duration,
	log logger.ILogger,
) IAnalysisWorkerService {
	return &analysisWorkerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		jobs:           jobs,
		llmProvider:    llmProvider,
		natsPub:        natsPub,
		requestTimeout: requestTimeout,
		logger:         log,
	}
}

func (s *analysisWorkerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *analysisWorkerService) processMessage(ctx context.Context, msg *message.Message) {
	// Bad payloads are acked, retrying them cannot help.
	var payload dto.AnalysisJobMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("AnalysisWorker", "Failed to unmarshal job message", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	s.runJob(ctx, payload)
	msg.Ack()
}

func (s *analysisWorkerService) runJob(ctx context.Context, payload dto.AnalysisJobMessage) {
	job := s.jobs.Get(payload.JobId)
	if job == nil {
		s.logger.Warn("AnalysisWorker", "Job vanished before execution", map[string]interface{}{"job_id": payload.JobId})
		return
	}

	if !s.jobs.MarkRunning(job.Id) {
		// Cancelled (project deleted) or picked up twice.
		s.logger.Info("AnalysisWorker", "Job not runnable, skipping", map[string]interface{}{"job_id": job.Id, "status": job.Status})
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	excerpts, filenames, err := s.loadDocuments(ctx, uow, job)
	if err != nil {
		s.finish(ctx, job, entity.JobStatusFailed, nil, err.Error())
		return
	}
	if excerpts == nil {
		// Project gone while the job waited in the queue.
		s.finish(ctx, job, entity.JobStatusCancelled, nil, "")
		return
	}

	var result *entity.AnalysisResult
	var runErr error
	switch job.Kind {
	case entity.AnalysisKindConflict:
		result, runErr = s.runConflict(ctx, excerpts)
	case entity.AnalysisKindCompare:
		result, runErr = s.runCompare(ctx, excerpts, filenames)
	default:
		runErr = fmt.Errorf("unknown analysis kind %q", job.Kind)
	}

	if runErr != nil {
		s.finish(ctx, job, entity.JobStatusFailed, nil, runErr.Error())
		return
	}

	// The project may have been deleted during the Collaborator round-trip.
	// A cancelled job never resurrects its result. Cancelled is reserved for
	// actual deletion; a failing lookup fails the job instead.
	project, err := uow.ProjectRepository().FindOne(ctx, specification.ByID{ID: job.ProjectId})
	if err != nil {
		s.finish(ctx, job, entity.JobStatusFailed, nil, err.Error())
		return
	}
	if project == nil {
		s.finish(ctx, job, entity.JobStatusCancelled, nil, "")
		return
	}

	s.finish(ctx, job, entity.JobStatusSucceeded, result, "")
}

// loadDocuments fetches the job's documents. A nil excerpt slice with nil
// error means the project no longer exists.
func (s *analysisWorkerService) loadDocuments(ctx context.Context, uow unitofwork.UnitOfWork, job *entity.AnalysisJob) ([]assembler.DocumentExcerpt, []string, error) {
	project, err := uow.ProjectRepository().FindOne(ctx, specification.ByID{ID: job.ProjectId})
	if err != nil {
		return nil, nil, err
	}
	if project == nil {
		return nil, nil, nil
	}

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByIDs{IDs: job.DocumentIds},
		specification.ByProjectID{ProjectID: job.ProjectId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, nil, err
	}
	if len(documents) < 2 {
		return nil, nil, errors.New("documents no longer available for analysis")
	}

	excerpts := make([]assembler.DocumentExcerpt, 0, len(documents))
	filenames := make([]string, 0, len(documents))
	for _, document := range documents {
		excerpts = append(excerpts, assembler.DocumentExcerpt{
			Filename: document.OriginalFilename,
			DocType:  document.DocumentType,
			Text:     document.ExtractedText,
		})
		filenames = append(filenames, document.OriginalFilename)
	}
	return excerpts, filenames, nil
}

func (s *analysisWorkerService) runConflict(ctx context.Context, excerpts []assembler.DocumentExcerpt) (*entity.AnalysisResult, error) {
	prompt := constant.ConflictAnalysisInstruction + "\n\n" + assembler.BuildAnalysisContext(excerpts, conflictCharsPerDoc)

	reply, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("collaborator call failed: %w", err)
	}

	findings, err := analysis.ParseConflictFindings(reply)
	if err != nil {
		// Keep the raw reply for diagnosis, never coerce it into findings.
		return nil, fmt.Errorf("unparseable reply (%v): %s", err, reply)
	}

	result := &entity.AnalysisResult{Findings: make([]entity.Finding, 0, len(findings))}
	for _, finding := range findings {
		result.Findings = append(result.Findings, entity.Finding{
			Title:        finding.Title,
			Severity:     finding.Severity,
			Description:  finding.Description,
			DocumentRefs: finding.DocumentRefs,
		})
	}
	return result, nil
}

func (s *analysisWorkerService) runCompare(ctx context.Context, excerpts []assembler.DocumentExcerpt, filenames []string) (*entity.AnalysisResult, error) {
	var sections []string
	for _, pair := range assembler.Pairs(len(excerpts)) {
		a, b := excerpts[pair[0]], excerpts[pair[1]]
		prompt := constant.CompareInstruction + "\n\n" + assembler.BuildPairContext(a, b, compareCharsPerDoc)

		reply, err := s.generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("collaborator call failed for %s vs %s: %w", filenames[pair[0]], filenames[pair[1]], err)
		}

		sections = append(sections, fmt.Sprintf("## %s vs %s\n\n%s", filenames[pair[0]], filenames[pair[1]], reply))
	}

	return &entity.AnalysisResult{
		Summary: strings.Join(sections, "\n\n"),
	}, nil
}

func (s *analysisWorkerService) generate(ctx context.Context, prompt string) (string, error) {
	reply, err := s.generateOnce(ctx, prompt)
	if errors.Is(err, context.DeadlineExceeded) {
		// One retry on timeout, never more.
		s.logger.Warn("AnalysisWorker", "Collaborator timed out, retrying once", nil)
		reply, err = s.generateOnce(ctx, prompt)
	}
	return reply, err
}

func (s *analysisWorkerService) generateOnce(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	return s.llmProvider.Chat(callCtx, []llm.Message{
		{Role: constant.RoleSystem, Content: constant.SystemPrompt},
		{Role: constant.RoleUser, Content: prompt},
	}, llm.WithTemperature(0.3))
}

func (s *analysisWorkerService) finish(ctx context.Context, job *entity.AnalysisJob, status string, result *entity.AnalysisResult, errMsg string) {
	s.jobs.Finish(job.Id, status, result, errMsg)

	s.logger.Info("AnalysisWorker", "Job finished", map[string]interface{}{
		"job_id": job.Id,
		"status": status,
	})

	// Cancellation comes from project deletion; the account already knows.
	if status == entity.JobStatusCancelled || s.natsPub == nil {
		return
	}

	event := events.NewAnalysisFinishedEvent(job.AccountId, job.ProjectId, job.Id, job.Kind, status)
	if err := s.natsPub.Publish(ctx, event); err != nil {
		s.logger.Warn("AnalysisWorker", "Failed to publish job finished event", map[string]interface{}{"error": err.Error()})
	}
}
