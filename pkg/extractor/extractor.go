package extractor

import (
	"context"
)

// Result carries what the extraction backend pulled out of an uploaded file.
// DocumentType may be empty or "unknown" when the backend cannot classify.
type Result struct {
	Text         string
	DocumentType string
}

// Adapter defines the contract for any text extraction backend.
type Adapter interface {
	// Extract pulls plain text (and optionally a document type) from raw
	// file bytes. Failures are recoverable upstream; uploads proceed
	// without extracted text.
	Extract(ctx context.Context, filename string, data []byte) (*Result, error)
}
