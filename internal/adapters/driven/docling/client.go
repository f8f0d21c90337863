package docling

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
)

// Ensure Client implements DocumentExtractor
var _ driven.DocumentExtractor = (*Client)(nil)

// Heavy OCR can be slow.
const defaultTimeout = 5 * time.Minute

// Client talks to the Docling sidecar for OCR and text extraction. Files are
// submitted inline as base64 and come back as markdown.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new Docling client
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("docling base URL is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// convertRequest is the request body for POST /v1/convert/source
type convertRequest struct {
	Sources []convertSource `json:"sources"`
}

type convertSource struct {
	Kind     string `json:"kind"`
	Data     string `json:"data"`
	Filename string `json:"filename"`
}

// convertResponse tolerates the response shapes different Docling versions
// produce: text under documents[0] or at the top level, keyed md_content,
// markdown or output.
type convertResponse struct {
	Documents []convertedText `json:"documents"`
	convertedText
}

type convertedText struct {
	MDContent string `json:"md_content"`
	Markdown  string `json:"markdown"`
	Output    string `json:"output"`
}

func (c convertedText) text() string {
	if c.MDContent != "" {
		return c.MDContent
	}
	if c.Markdown != "" {
		return c.Markdown
	}
	return c.Output
}

// Extract reads the file at path and converts it via the sidecar.
func (c *Client) Extract(ctx context.Context, path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("document file not found: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("failed to read document file: %w", err)
	}

	reqBody := convertRequest{
		Sources: []convertSource{{
			Kind:     "base64",
			Data:     base64.StdEncoding.EncodeToString(raw),
			Filename: filepath.Base(path),
		}},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/convert/source", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("docling request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read docling response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("docling returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var converted convertResponse
	if err := json.Unmarshal(respBody, &converted); err != nil {
		return "", fmt.Errorf("failed to parse docling response: %w", err)
	}

	if len(converted.Documents) > 0 {
		if text := converted.Documents[0].text(); text != "" {
			return text, nil
		}
	}
	if text := converted.convertedText.text(); text != "" {
		return text, nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrNoExtractableText, filepath.Base(path))
}

// HealthCheck probes GET /health.
func (c *Client) HealthCheck(ctx context.Context) domain.ServiceHealth {
	health := domain.ServiceHealth{Host: c.baseURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		health.Status = domain.HealthError
		health.Error = err.Error()
		return health
	}

	resp, err := c.client.Do(req)
	if err != nil {
		health.Status = domain.HealthUnreachable
		health.Error = fmt.Sprintf("cannot connect to docling at %s", c.baseURL)
		return health
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		health.Status = domain.HealthError
		health.Error = fmt.Sprintf("docling returned status %d", resp.StatusCode)
		return health
	}
	health.Status = domain.HealthConnected
	return health
}
