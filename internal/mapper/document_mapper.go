package mapper

import (
	"construction-docs-be/internal/entity"
	"construction-docs-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	return &entity.Document{
		Id:               d.Id,
		ProjectId:        d.ProjectId,
		OriginalFilename: d.OriginalFilename,
		StoredPath:       d.StoredPath,
		ExtractedText:    d.ExtractedText,
		DocumentType:     d.DocumentType,
		SizeBytes:        d.SizeBytes,
		CreatedAt:        d.CreatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	return &model.Document{
		Id:               d.Id,
		ProjectId:        d.ProjectId,
		OriginalFilename: d.OriginalFilename,
		StoredPath:       d.StoredPath,
		ExtractedText:    d.ExtractedText,
		DocumentType:     d.DocumentType,
		SizeBytes:        d.SizeBytes,
		CreatedAt:        d.CreatedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
