package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
	"github.com/atria-labs/vitals-core/internal/metrics"
)

// First slice of parsed text handed to the extraction model.
const extractionTextLimit = 8000

const extractionSystemPrompt = "You are a medical data extractor. Return ONLY valid JSON."

const extractionUserTemplate = `Extract all lab results from the following medical document text.

Return a JSON object with this exact structure:
{
  "lab_results": [
    {
      "test_name": "Hemoglobin",
      "value": 14.2,
      "unit": "g/dL",
      "reference_min": 13.5,
      "reference_max": 17.5,
      "recorded_at": "2024-01-15",
      "status": "normal"
    }
  ]
}

Rules:
- "value" must be a number (not a string)
- "reference_min" and "reference_max" may be null if not stated
- "recorded_at" must be YYYY-MM-DD format; use today's date if not found
- "status" must be one of: "normal", "high", "low", or null
- Only include results with a numeric value

Document text:
%s`

// ExtractResult summarizes one extraction stage run.
type ExtractResult struct {
	DocumentID string
	Saved      int
	Skipped    int
}

// Pipeline coordinates the two document processing stages. Each stage is an
// independently schedulable unit of work dispatched by the worker; within
// one document, parse completion strictly precedes extraction start because
// the parse stage enqueues the extraction task itself.
//
// Stage errors split two ways for the scheduler: transient transport or
// model failures return a plain error and should be retried; terminal
// conditions (missing document, no extractable/parsed text) return
// domain.ErrNotFound, domain.ErrNoExtractableText or domain.ErrNoRawText
// and must not consume retry attempts.
type Pipeline struct {
	documents driven.DocumentStore
	labs      driven.LabStore
	extractor driven.DocumentExtractor
	provider  driven.ChatProvider
	queue     driven.TaskQueue
	logger    *slog.Logger
}

// PipelineConfig holds the dependencies for creating a Pipeline
type PipelineConfig struct {
	DocumentStore driven.DocumentStore
	LabStore      driven.LabStore
	Extractor     driven.DocumentExtractor
	Provider      driven.ChatProvider
	TaskQueue     driven.TaskQueue
	Logger        *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		documents: cfg.DocumentStore,
		labs:      cfg.LabStore,
		extractor: cfg.Extractor,
		provider:  cfg.Provider,
		queue:     cfg.TaskQueue,
		logger:    logger.With("component", "pipeline"),
	}
}

// Parse runs the OCR stage: read the stored file, extract its text and
// advance the document to parsed, then chain the extraction stage. A
// document already past parsing is skipped, which makes redelivered tasks
// idempotent. A retry attempt re-enters from failed.
func (p *Pipeline) Parse(ctx context.Context, documentID string) error {
	doc, err := p.documents.Get(ctx, documentID)
	if err != nil {
		return fmt.Errorf("parse stage: %w", err)
	}

	switch doc.Status {
	case domain.DocumentStatusPending, domain.DocumentStatusFailed, domain.DocumentStatusParsing:
	default:
		p.logger.Info("parse stage skipped, document already past parsing",
			"document_id", documentID, "status", doc.Status)
		return nil
	}

	if err := p.documents.UpdateStatus(ctx, documentID, domain.DocumentStatusParsing); err != nil {
		return fmt.Errorf("parse stage: %w", err)
	}

	rawText, err := p.extractor.Extract(ctx, doc.FilePath)
	if err != nil {
		p.logger.Error("document parse failed", "document_id", documentID, "error", err)
		if statusErr := p.documents.UpdateStatus(ctx, documentID, domain.DocumentStatusFailed); statusErr != nil {
			p.logger.Error("failed to mark document failed", "document_id", documentID, "error", statusErr)
		}
		return fmt.Errorf("parse stage: %w", err)
	}

	if err := p.documents.SaveRawText(ctx, documentID, rawText, domain.DocumentStatusParsed); err != nil {
		return fmt.Errorf("parse stage: %w", err)
	}

	p.logger.Info("document parsed",
		"document_id", documentID, "chars", len(rawText))

	// Auto-chain the extraction stage.
	task := domain.NewExtractResultsTask(doc.UserID, documentID)
	if err := p.queue.Enqueue(ctx, task); err != nil {
		return fmt.Errorf("parse stage: failed to chain extraction: %w", err)
	}
	return nil
}

// Extract runs the structured-extraction stage: send the parsed text to the
// extraction model, persist each measurement individually and advance the
// document to completed. Duplicate measurements are absorbed per item and
// counted as skipped; the document completes regardless of how many were.
func (p *Pipeline) Extract(ctx context.Context, documentID string) (*ExtractResult, error) {
	doc, err := p.documents.Get(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("extract stage: %w", err)
	}

	if doc.Status == domain.DocumentStatusCompleted {
		p.logger.Info("extract stage skipped, document already completed",
			"document_id", documentID)
		return &ExtractResult{DocumentID: documentID}, nil
	}

	// Missing text is not transient. Fail immediately without consuming a
	// retry attempt against the model.
	if doc.RawText == nil || strings.TrimSpace(*doc.RawText) == "" {
		p.logger.Error("extract stage: document has no parsed text", "document_id", documentID)
		if statusErr := p.documents.UpdateStatus(ctx, documentID, domain.DocumentStatusFailed); statusErr != nil {
			p.logger.Error("failed to mark document failed", "document_id", documentID, "error", statusErr)
		}
		return nil, fmt.Errorf("extract stage: %w", domain.ErrNoRawText)
	}

	if err := p.documents.UpdateStatus(ctx, documentID, domain.DocumentStatusExtracting); err != nil {
		return nil, fmt.Errorf("extract stage: %w", err)
	}

	text := *doc.RawText
	if runes := []rune(text); len(runes) > extractionTextLimit {
		text = string(runes[:extractionTextLimit])
	}
	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: extractionSystemPrompt},
		{Role: domain.RoleUser, Content: fmt.Sprintf(extractionUserTemplate, text)},
	}

	started := time.Now()
	turn, err := p.provider.Chat(ctx, messages, nil)
	metrics.ObserveProviderCall("extract", time.Since(started))
	if err != nil {
		p.logger.Error("extraction model call failed", "document_id", documentID, "error", err)
		if statusErr := p.documents.UpdateStatus(ctx, documentID, domain.DocumentStatusFailed); statusErr != nil {
			p.logger.Error("failed to mark document failed", "document_id", documentID, "error", statusErr)
		}
		return nil, fmt.Errorf("extract stage: %w", err)
	}

	var payload struct {
		LabResults []extractedItem `json:"lab_results"`
	}
	if err := json.Unmarshal([]byte(turn.Content), &payload); err != nil {
		p.logger.Error("extraction response is not valid JSON", "document_id", documentID, "error", err)
		if statusErr := p.documents.UpdateStatus(ctx, documentID, domain.DocumentStatusFailed); statusErr != nil {
			p.logger.Error("failed to mark document failed", "document_id", documentID, "error", statusErr)
		}
		return nil, fmt.Errorf("extract stage: malformed extraction response: %w", err)
	}

	result := &ExtractResult{DocumentID: documentID}
	for _, item := range payload.LabResults {
		lab, ok := item.toLabResult(doc.UserID, documentID)
		if !ok {
			result.Skipped++
			continue
		}
		if err := p.labs.Save(ctx, lab); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				p.logger.Debug("duplicate measurement skipped",
					"document_id", documentID,
					"test_name", lab.TestName,
					"recorded_at", lab.RecordedAt.Format("2006-01-02"))
				result.Skipped++
				continue
			}
			return nil, fmt.Errorf("extract stage: %w", err)
		}
		result.Saved++
	}

	if err := p.documents.UpdateStatus(ctx, documentID, domain.DocumentStatusCompleted); err != nil {
		return nil, fmt.Errorf("extract stage: %w", err)
	}

	p.logger.Info("extraction completed",
		"document_id", documentID,
		"saved", result.Saved,
		"skipped", result.Skipped)
	return result, nil
}

// extractedItem is one measurement as the model returned it. Fields arrive
// loosely typed and are coerced leniently.
type extractedItem struct {
	TestName     string `json:"test_name"`
	Value        any    `json:"value"`
	Unit         string `json:"unit"`
	ReferenceMin any    `json:"reference_min"`
	ReferenceMax any    `json:"reference_max"`
	RecordedAt   string `json:"recorded_at"`
	Status       string `json:"status"`
}

// toLabResult validates and coerces one extracted item. ok is false when
// the value is non-numeric; every other malformed field degrades to a
// default instead of rejecting the item.
func (item extractedItem) toLabResult(userID, documentID string) (*domain.LabResult, bool) {
	value, ok := toDecimal(item.Value)
	if !ok {
		return nil, false
	}

	refMin := toDecimalPtr(item.ReferenceMin)
	refMax := toDecimalPtr(item.ReferenceMax)

	recordedAt, err := time.Parse("2006-01-02", item.RecordedAt)
	if err != nil {
		recordedAt = time.Now().UTC().Truncate(24 * time.Hour)
	}

	// A stated reference range is authoritative over the model's own
	// classification.
	status := domain.ClassifyLabValue(value, refMin, refMax)
	if status == nil && domain.ValidLabStatus(item.Status) {
		s := domain.LabStatus(item.Status)
		status = &s
	}

	testName := strings.TrimSpace(item.TestName)
	if testName == "" {
		testName = "Unknown"
	}
	unit := strings.TrimSpace(item.Unit)
	if unit == "" {
		unit = "?"
	}

	return &domain.LabResult{
		ID:           domain.GenerateID(),
		DocumentID:   &documentID,
		UserID:       userID,
		TestName:     testName,
		Value:        value,
		Unit:         unit,
		ReferenceMin: refMin,
		ReferenceMax: refMax,
		Status:       status,
		RecordedAt:   recordedAt,
		CreatedAt:    time.Now().UTC(),
	}, true
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

func toDecimalPtr(v any) *decimal.Decimal {
	d, ok := toDecimal(v)
	if !ok {
		return nil
	}
	return &d
}
