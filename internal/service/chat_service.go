package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"construction-docs-be/internal/constant"
	"construction-docs-be/internal/dto"
	"construction-docs-be/internal/entity"
	"construction-docs-be/internal/pkg/apperror"
	"construction-docs-be/internal/pkg/locker"
	"construction-docs-be/internal/pkg/logger"
	"construction-docs-be/internal/repository/specification"
	"construction-docs-be/internal/repository/unitofwork"
	"construction-docs-be/pkg/assembler"
	"construction-docs-be/pkg/llm"

	"github.com/google/uuid"
)

type IChatService interface {
	Ask(ctx context.Context, accountId, projectId uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error)
	History(ctx context.Context, accountId, projectId uuid.UUID, limit int) ([]*dto.HistoryMessageResponse, error)
}

type ChatConfig struct {
	MaxContextChars int
	HistoryWindow   int
	RequestTimeout  time.Duration
}

type chatService struct {
	uowFactory  unitofwork.RepositoryFactory
	llmProvider llm.LLMProvider
	locks       *locker.ProjectLocker
	cfg         ChatConfig
	logger      logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	locks *locker.ProjectLocker,
	cfg ChatConfig,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:  uowFactory,
		llmProvider: llmProvider,
		locks:       locks,
		cfg:         cfg,
		logger:      log,
	}
}

func (s *chatService) Ask(ctx context.Context, accountId, projectId uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, apperror.Validation("question must not be empty")
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

	// One writer per project: the lock spans the whole question round-trip
	// so a racing ask cannot interleave its message pair with ours.
	s.locks.Lock(projectId)
	defer s.locks.Unlock(projectId)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	// Without documents the reply is canned and the Collaborator is never
	// called. Both messages still land in the ledger.
	if len(documents) == 0 {
		return s.persistExchange(ctx, uow, projectId, question, constant.NoDocumentsReply)
	}

	history, err := uow.MessageRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.OrderBy{Field: "seq"},
	)
	if err != nil {
		return nil, err
	}

	userMessage := entity.Message{
		Id:        uuid.New(),
		ProjectId: projectId,
		Role:      constant.RoleUser,
		Content:   question,
		CreatedAt: time.Now(),
	}
	// Questions are durable even when the answer never arrives.
	if err := uow.MessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}

	reply, err := s.callCollaborator(ctx, documents, history, question)
	if err != nil {
		s.logger.Error("ChatService", "Collaborator call failed", map[string]interface{}{
			"project_id": projectId,
			"error":      err.Error(),
		})
		return nil, apperror.Collaborator(err)
	}

	assistantMessage := entity.Message{
		Id:        uuid.New(),
		ProjectId: projectId,
		Role:      constant.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, &assistantMessage); err != nil {
		return nil, err
	}

	return &dto.AskResponse{
		Reply:              reply,
		UserMessageId:      userMessage.Id,
		AssistantMessageId: assistantMessage.Id,
	}, nil
}

func (s *chatService) callCollaborator(ctx context.Context, documents []*entity.Document, history []*entity.Message, question string) (string, error) {
	excerpts := make([]assembler.DocumentExcerpt, 0, len(documents))
	for _, document := range documents {
		if document.ExtractedText == "" {
			continue
		}
		excerpts = append(excerpts, assembler.DocumentExcerpt{
			Filename: document.OriginalFilename,
			DocType:  document.DocumentType,
			Text:     document.ExtractedText,
		})
	}

	window := make([]llm.Message, 0, len(history))
	for _, msg := range history {
		window = append(window, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	window = assembler.HistoryWindow(window, s.cfg.HistoryWindow)

	messages := assembler.BuildQuestionMessages(constant.SystemPrompt, excerpts, window, question, s.cfg.MaxContextChars)

	reply, err := s.chatOnce(ctx, messages)
	if errors.Is(err, context.DeadlineExceeded) {
		// One retry on timeout, never more.
		s.logger.Warn("ChatService", "Collaborator timed out, retrying once", nil)
		reply, err = s.chatOnce(ctx, messages)
	}
	return reply, err
}

func (s *chatService) chatOnce(ctx context.Context, messages []llm.Message) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	return s.llmProvider.Chat(callCtx, messages, llm.WithTemperature(0.4))
}

func (s *chatService) persistExchange(ctx context.Context, uow unitofwork.UnitOfWork, projectId uuid.UUID, question, reply string) (*dto.AskResponse, error) {
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	userMessage := entity.Message{
		Id:        uuid.New(),
		ProjectId: projectId,
		Role:      constant.RoleUser,
		Content:   question,
		CreatedAt: time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}

	assistantMessage := entity.Message{
		Id:        uuid.New(),
		ProjectId: projectId,
		Role:      constant.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, &assistantMessage); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.AskResponse{
		Reply:              reply,
		UserMessageId:      userMessage.Id,
		AssistantMessageId: assistantMessage.Id,
	}, nil
}

func (s *chatService) History(ctx context.Context, accountId, projectId uuid.UUID, limit int) ([]*dto.HistoryMessageResponse, error) {
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

	specs := []specification.Specification{
		specification.ByProjectID{ProjectID: projectId},
	}
	if limit > 0 {
		specs = append(specs,
			specification.OrderBy{Field: "seq", Desc: true},
			specification.Pagination{Limit: limit},
		)
	} else {
		specs = append(specs, specification.OrderBy{Field: "seq"})
	}

	messages, err := uow.MessageRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.HistoryMessageResponse, 0, len(messages))
	for _, msg := range messages {
		result = append(result, &dto.HistoryMessageResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}

	return result, nil
}
