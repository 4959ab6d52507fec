package service

import (
	"context"
	"time"

	"construction-docs-be/internal/dto"
	"construction-docs-be/internal/entity"
	"construction-docs-be/internal/pkg/apperror"
	"construction-docs-be/internal/pkg/filestore"
	"construction-docs-be/internal/pkg/logger"
	"construction-docs-be/internal/repository/specification"
	"construction-docs-be/internal/repository/unitofwork"
	"construction-docs-be/pkg/doctype"
	"construction-docs-be/pkg/events"
	"construction-docs-be/pkg/extractor"
	pktNats "construction-docs-be/pkg/nats"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Upload(ctx context.Context, accountId, projectId uuid.UUID, filename string, data []byte) (*dto.UploadDocumentResponse, error)
	GetAll(ctx context.Context, accountId, projectId uuid.UUID) ([]*dto.GetAllDocumentResponse, error)
	Delete(ctx context.Context, accountId, projectId, documentId uuid.UUID) (*dto.DeleteDocumentResponse, error)
	Download(ctx context.Context, accountId, projectId, documentId uuid.UUID) (string, []byte, error)
}

type documentService struct {
	uowFactory     unitofwork.RepositoryFactory
	files          *filestore.FileStore
	extractAdapter extractor.Adapter
	extractTimeout time.Duration
	natsPub        *pktNats.Publisher
	logger         logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	files *filestore.FileStore,
	extractAdapter extractor.Adapter,
	extractTimeout time.Duration,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:     uowFactory,
		files:          files,
		extractAdapter: extractAdapter,
		extractTimeout: extractTimeout,
		natsPub:        natsPub,
		logger:         log,
	}
}

func (s *documentService) Upload(ctx context.Context, accountId, projectId uuid.UUID, filename string, data []byte) (*dto.UploadDocumentResponse, error) {
	if filename == "" {
		return nil, apperror.Validation("filename must not be empty")
	}
	if len(data) == 0 {
		return nil, apperror.Validation("file must not be empty")
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

	documentId := uuid.New()
	storedPath, err := s.files.Save(projectId, documentId, data)
	if err != nil {
		return nil, err
	}

	// Extraction is best-effort: a failed parse still stores the document.
	warning := ""
	extractedText := ""
	docType := ""

	extractCtx, cancel := context.WithTimeout(ctx, s.extractTimeout)
	result, err := s.extractAdapter.Extract(extractCtx, filename, data)
	cancel()
	if err != nil {
		warning = "text extraction failed; the document was stored without searchable text"
		s.logger.Warn("DocumentService", "Extraction failed", map[string]interface{}{
			"filename": filename,
			"error":    err.Error(),
		})
	} else {
		extractedText = result.Text
		docType = doctype.Normalize(result.DocumentType)
	}

	// Adapter classification first, filename keywords as fallback.
	if docType == "" || docType == doctype.Unknown {
		docType = doctype.InferFromFilename(filename)
	}

	document := entity.Document{
		Id:               documentId,
		ProjectId:        projectId,
		OriginalFilename: filename,
		StoredPath:       storedPath,
		ExtractedText:    extractedText,
		DocumentType:     docType,
		SizeBytes:        int64(len(data)),
		CreatedAt:        time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		if removeErr := s.files.Delete(storedPath); removeErr != nil {
			s.logger.Warn("DocumentService", "Failed to clean up stored file", map[string]interface{}{"path": storedPath})
		}
		return nil, err
	}

	if s.natsPub != nil {
		if err := s.natsPub.Publish(ctx, events.NewDocumentUploadedEvent(accountId, projectId, documentId, filename, docType)); err != nil {
			s.logger.Warn("DocumentService", "Failed to publish document uploaded event", map[string]interface{}{"error": err.Error()})
		}
	}

	return &dto.UploadDocumentResponse{
		Id:           documentId,
		Filename:     filename,
		DocumentType: docType,
		SizeBytes:    document.SizeBytes,
		Warning:      warning,
	}, nil
}

func (s *documentService) GetAll(ctx context.Context, accountId, projectId uuid.UUID) ([]*dto.GetAllDocumentResponse, error) {
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

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.GetAllDocumentResponse, 0, len(documents))
	for _, document := range documents {
		result = append(result, &dto.GetAllDocumentResponse{
			Id:           document.Id,
			Filename:     document.OriginalFilename,
			DocumentType: document.DocumentType,
			SizeBytes:    document.SizeBytes,
			HasText:      document.ExtractedText != "",
			CreatedAt:    document.CreatedAt,
		})
	}

	return result, nil
}

func (s *documentService) Delete(ctx context.Context, accountId, projectId, documentId uuid.UUID) (*dto.DeleteDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := s.findOwnedDocument(ctx, uow, accountId, projectId, documentId)
	if err != nil {
		return nil, err
	}

	if err := uow.DocumentRepository().Delete(ctx, documentId); err != nil {
		return nil, err
	}

	if err := s.files.Delete(document.StoredPath); err != nil {
		s.logger.Warn("DocumentService", "Failed to remove stored file", map[string]interface{}{
			"path":  document.StoredPath,
			"error": err.Error(),
		})
	}

	return &dto.DeleteDocumentResponse{Id: documentId}, nil
}

func (s *documentService) Download(ctx context.Context, accountId, projectId, documentId uuid.UUID) (string, []byte, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := s.findOwnedDocument(ctx, uow, accountId, projectId, documentId)
	if err != nil {
		return "", nil, err
	}

	data, err := s.files.Read(document.StoredPath)
	if err != nil {
		return "", nil, apperror.Wrap(apperror.KindInternal, "stored file unavailable", err)
	}

	return document.OriginalFilename, data, nil
}

func (s *documentService) findOwnedDocument(ctx context.Context, uow unitofwork.UnitOfWork, accountId, projectId, documentId uuid.UUID) (*entity.Document, error) {
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

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.ByProjectID{ProjectID: projectId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, apperror.NotFound("document not found")
	}

	return document, nil
}
