package local

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"construction-docs-be/pkg/extractor"
)

// LocalAdapter handles plain-text formats without an external service.
// Binary formats (PDF, DOCX, scans) are out of its reach and fail with an
// error so the upload path can fall back to filename classification.
type LocalAdapter struct{}

var _ extractor.Adapter = &LocalAdapter{}

var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".csv": true,
}

func NewLocalAdapter() *LocalAdapter {
	return &LocalAdapter{}
}

func (a *LocalAdapter) Extract(ctx context.Context, filename string, data []byte) (*extractor.Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !textExtensions[ext] {
		return nil, fmt.Errorf("unsupported format for local extraction: %s", ext)
	}

	if !utf8.Valid(data) {
		return nil, fmt.Errorf("file %s is not valid UTF-8 text", filename)
	}

	return &extractor.Result{
		Text:         string(data),
		DocumentType: "", // Local adapter never classifies; callers fall back to the filename.
	}, nil
}
