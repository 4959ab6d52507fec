package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"construction-docs-be/pkg/extractor"
)

// HttpAdapter talks to an external extraction service over multipart POST.
type HttpAdapter struct {
	baseURL string
	client  *http.Client
}

var _ extractor.Adapter = &HttpAdapter{}

type extractResponse struct {
	Text         string `json:"text"`
	DocumentType string `json:"document_type"`
	Error        string `json:"error,omitempty"`
}

func NewHttpAdapter(baseURL string, timeout time.Duration) *HttpAdapter {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HttpAdapter{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (a *HttpAdapter) Extract(ctx context.Context, filename string, data []byte) (*extractor.Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	url := a.baseURL + "/extract"
	req, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var extractResp extractResponse
	if err := json.Unmarshal(bodyBytes, &extractResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if extractResp.Error != "" {
		return nil, fmt.Errorf("extraction service returned error: %s", extractResp.Error)
	}

	return &extractor.Result{
		Text:         extractResp.Text,
		DocumentType: extractResp.DocumentType,
	}, nil
}
