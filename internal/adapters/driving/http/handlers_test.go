package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven/mocks"
	"github.com/atria-labs/vitals-core/internal/core/ports/driving"
)

// Mock services for testing

type mockDocumentService struct {
	uploadFn    func(ctx context.Context, userID string, req driving.UploadRequest) (*domain.Document, error)
	getFn       func(ctx context.Context, userID, documentID string) (*domain.Document, error)
	listFn      func(ctx context.Context, userID string, limit, offset int) ([]*domain.Document, error)
	deleteFn    func(ctx context.Context, userID, documentID string) error
	reprocessFn func(ctx context.Context, userID, documentID string) (*domain.Document, error)
}

func (m *mockDocumentService) Upload(ctx context.Context, userID string, req driving.UploadRequest) (*domain.Document, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, userID, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockDocumentService) Get(ctx context.Context, userID, documentID string) (*domain.Document, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, documentID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockDocumentService) List(ctx context.Context, userID string, limit, offset int) ([]*domain.Document, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit, offset)
	}
	return nil, errors.New("not implemented")
}

func (m *mockDocumentService) Delete(ctx context.Context, userID, documentID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, documentID)
	}
	return errors.New("not implemented")
}

func (m *mockDocumentService) Reprocess(ctx context.Context, userID, documentID string) (*domain.Document, error) {
	if m.reprocessFn != nil {
		return m.reprocessFn(ctx, userID, documentID)
	}
	return nil, errors.New("not implemented")
}

type mockLabService struct {
	listFn   func(ctx context.Context, userID string, days int, testName string) ([]*domain.LabResult, error)
	trendFn  func(ctx context.Context, userID, testName string, months int) (*driving.LabTrend, error)
	createFn func(ctx context.Context, userID string, req driving.LabCreateRequest) (*domain.LabResult, error)
	deleteFn func(ctx context.Context, userID, labID string) error
}

func (m *mockLabService) List(ctx context.Context, userID string, days int, testName string) ([]*domain.LabResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, days, testName)
	}
	return nil, errors.New("not implemented")
}

func (m *mockLabService) Trend(ctx context.Context, userID, testName string, months int) (*driving.LabTrend, error) {
	if m.trendFn != nil {
		return m.trendFn(ctx, userID, testName, months)
	}
	return nil, errors.New("not implemented")
}

func (m *mockLabService) Create(ctx context.Context, userID string, req driving.LabCreateRequest) (*domain.LabResult, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockLabService) Delete(ctx context.Context, userID, labID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, labID)
	}
	return errors.New("not implemented")
}

type mockSymptomService struct {
	listFn   func(ctx context.Context, userID string, days int, symptomType string) ([]*domain.SymptomEntry, error)
	createFn func(ctx context.Context, userID string, req driving.SymptomCreateRequest) (*domain.SymptomEntry, error)
	deleteFn func(ctx context.Context, userID, entryID string) error
}

func (m *mockSymptomService) List(ctx context.Context, userID string, days int, symptomType string) ([]*domain.SymptomEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, days, symptomType)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSymptomService) Create(ctx context.Context, userID string, req driving.SymptomCreateRequest) (*domain.SymptomEntry, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSymptomService) Delete(ctx context.Context, userID, entryID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, entryID)
	}
	return errors.New("not implemented")
}

type mockChatService struct {
	createSessionFn func(ctx context.Context, userID string, title *string) (*domain.ChatSession, error)
	getSessionFn    func(ctx context.Context, userID, sessionID string) (*domain.ChatSession, error)
	listSessionsFn  func(ctx context.Context, userID string, limit int) ([]*domain.ChatSession, error)
	deleteSessionFn func(ctx context.Context, userID, sessionID string) error
	listMessagesFn  func(ctx context.Context, userID, sessionID string, limit int) ([]*domain.ChatMessage, error)
	sendMessageFn   func(ctx context.Context, userID, sessionID, content string) (<-chan domain.StreamEvent, error)
}

func (m *mockChatService) CreateSession(ctx context.Context, userID string, title *string) (*domain.ChatSession, error) {
	if m.createSessionFn != nil {
		return m.createSessionFn(ctx, userID, title)
	}
	return nil, errors.New("not implemented")
}

func (m *mockChatService) GetSession(ctx context.Context, userID, sessionID string) (*domain.ChatSession, error) {
	if m.getSessionFn != nil {
		return m.getSessionFn(ctx, userID, sessionID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockChatService) ListSessions(ctx context.Context, userID string, limit int) ([]*domain.ChatSession, error) {
	if m.listSessionsFn != nil {
		return m.listSessionsFn(ctx, userID, limit)
	}
	return nil, errors.New("not implemented")
}

func (m *mockChatService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if m.deleteSessionFn != nil {
		return m.deleteSessionFn(ctx, userID, sessionID)
	}
	return errors.New("not implemented")
}

func (m *mockChatService) ListMessages(ctx context.Context, userID, sessionID string, limit int) ([]*domain.ChatMessage, error) {
	if m.listMessagesFn != nil {
		return m.listMessagesFn(ctx, userID, sessionID, limit)
	}
	return nil, errors.New("not implemented")
}

func (m *mockChatService) SendMessage(ctx context.Context, userID, sessionID, content string) (<-chan domain.StreamEvent, error) {
	if m.sendMessageFn != nil {
		return m.sendMessageFn(ctx, userID, sessionID, content)
	}
	return nil, errors.New("not implemented")
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("down") }

// authedRequest builds a request whose context carries an authenticated user,
// bypassing the token middleware.
func authedRequest(method, target string, body *bytes.Buffer) *http.Request {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	ctx := context.WithValue(req.Context(), userContextKey, "user-1")
	return req.WithContext(ctx)
}

// Health endpoints

func TestHealthHandler(t *testing.T) {
	server := &Server{version: "test"}

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()

	server.handleHealth(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("expected status 'ok', got %s", response["status"])
	}
}

func TestReadyHandler(t *testing.T) {
	server := &Server{version: "test"}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()

	server.handleReady(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestReadyHandler_DatabaseDown(t *testing.T) {
	server := &Server{version: "test", db: failingPinger{}}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()

	server.handleReady(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rr.Code)
	}
}

func TestVersionHandler(t *testing.T) {
	server := &Server{version: "1.2.3"}

	req := httptest.NewRequest("GET", "/version", nil)
	rr := httptest.NewRecorder()

	server.handleVersion(rr, req)

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["version"] != "1.2.3" {
		t.Errorf("expected version '1.2.3', got %s", response["version"])
	}
}

func TestAIHealthHandler(t *testing.T) {
	provider := mocks.NewMockChatProvider()
	extractor := mocks.NewMockDocumentExtractor()
	extractor.HealthCheckFn = func(ctx context.Context) domain.ServiceHealth {
		return domain.ServiceHealth{Status: domain.HealthUnreachable, Error: "connection refused"}
	}

	server := &Server{provider: provider, extractor: extractor}

	req := authedRequest("GET", "/api/v1/ai/health", nil)
	rr := httptest.NewRecorder()

	server.handleAIHealth(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var response map[string]domain.ServiceHealth
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["provider"].Status != domain.HealthConnected {
		t.Errorf("expected provider connected, got %s", response["provider"].Status)
	}
	if response["extractor"].Status != domain.HealthUnreachable {
		t.Errorf("expected extractor unreachable, got %s", response["extractor"].Status)
	}
}

// Document endpoints

func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	var gotReq driving.UploadRequest
	docs := &mockDocumentService{
		uploadFn: func(ctx context.Context, userID string, req driving.UploadRequest) (*domain.Document, error) {
			if userID != "user-1" {
				t.Errorf("expected user-1, got %s", userID)
			}
			gotReq = req
			return &domain.Document{ID: "doc-1", Status: domain.DocumentStatusPending}, nil
		},
	}
	server := &Server{documentService: docs}

	body, contentType := multipartBody(t, "cbc.pdf", []byte("%PDF-1.4"), map[string]string{
		"title":    "CBC Panel",
		"doc_type": "lab_report",
	})
	req := authedRequest("POST", "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	server.handleUploadDocument(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotReq.Filename != "cbc.pdf" {
		t.Errorf("expected filename cbc.pdf, got %s", gotReq.Filename)
	}
	if gotReq.Title != "CBC Panel" {
		t.Errorf("expected title, got %s", gotReq.Title)
	}
	if gotReq.DocType != domain.DocumentTypeLabReport {
		t.Errorf("expected lab_report, got %s", gotReq.DocType)
	}
	if string(gotReq.Content) != "%PDF-1.4" {
		t.Errorf("expected file content to round-trip")
	}

	var doc domain.Document
	if err := json.NewDecoder(rr.Body).Decode(&doc); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if doc.Status != domain.DocumentStatusPending {
		t.Errorf("expected pending status, got %s", doc.Status)
	}
}

func TestUploadDocument_MissingFile(t *testing.T) {
	server := &Server{documentService: &mockDocumentService{}}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "no file here")
	mw.Close()

	req := authedRequest("POST", "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()

	server.handleUploadDocument(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	docs := &mockDocumentService{
		getFn: func(ctx context.Context, userID, documentID string) (*domain.Document, error) {
			return nil, domain.ErrNotFound
		},
	}
	server := &Server{documentService: docs}

	req := authedRequest("GET", "/api/v1/documents/doc-404", nil)
	req.SetPathValue("id", "doc-404")
	rr := httptest.NewRecorder()

	server.handleGetDocument(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestReprocessDocument_NotFailed(t *testing.T) {
	docs := &mockDocumentService{
		reprocessFn: func(ctx context.Context, userID, documentID string) (*domain.Document, error) {
			return nil, fmt.Errorf("document is pending: %w", domain.ErrInvalidStatus)
		},
	}
	server := &Server{documentService: docs}

	req := authedRequest("POST", "/api/v1/documents/doc-1/reprocess", nil)
	req.SetPathValue("id", "doc-1")
	rr := httptest.NewRecorder()

	server.handleReprocessDocument(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rr.Code)
	}
}

func TestListDocuments(t *testing.T) {
	docs := &mockDocumentService{
		listFn: func(ctx context.Context, userID string, limit, offset int) ([]*domain.Document, error) {
			if limit != 10 || offset != 20 {
				t.Errorf("expected limit 10 offset 20, got %d %d", limit, offset)
			}
			return []*domain.Document{{ID: "doc-1"}, {ID: "doc-2"}}, nil
		},
	}
	server := &Server{documentService: docs}

	req := authedRequest("GET", "/api/v1/documents?limit=10&offset=20", nil)
	rr := httptest.NewRecorder()

	server.handleListDocuments(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var list []*domain.Document
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 documents, got %d", len(list))
	}
}

// Lab endpoints

func TestCreateLab(t *testing.T) {
	labs := &mockLabService{
		createFn: func(ctx context.Context, userID string, req driving.LabCreateRequest) (*domain.LabResult, error) {
			if req.TestName != "Hemoglobin" {
				t.Errorf("expected Hemoglobin, got %s", req.TestName)
			}
			if !req.Value.Equal(decimal.NewFromFloat(13.5)) {
				t.Errorf("expected value 13.5, got %s", req.Value)
			}
			if req.RecordedAt.Format("2006-01-02") != "2026-08-01" {
				t.Errorf("expected recorded_at 2026-08-01, got %v", req.RecordedAt)
			}
			status := domain.LabStatusNormal
			return &domain.LabResult{ID: "lab-1", TestName: req.TestName, Value: req.Value, Status: &status}, nil
		},
	}
	server := &Server{labService: labs}

	body := bytes.NewBufferString(`{
		"test_name": "Hemoglobin",
		"value": 13.5,
		"unit": "g/dL",
		"reference_min": 12.0,
		"reference_max": 16.0,
		"recorded_at": "2026-08-01"
	}`)
	req := authedRequest("POST", "/api/v1/labs", body)
	rr := httptest.NewRecorder()

	server.handleCreateLab(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCreateLab_Duplicate(t *testing.T) {
	labs := &mockLabService{
		createFn: func(ctx context.Context, userID string, req driving.LabCreateRequest) (*domain.LabResult, error) {
			return nil, domain.ErrAlreadyExists
		},
	}
	server := &Server{labService: labs}

	body := bytes.NewBufferString(`{"test_name": "Hemoglobin", "value": 13.5, "unit": "g/dL"}`)
	req := authedRequest("POST", "/api/v1/labs", body)
	rr := httptest.NewRecorder()

	server.handleCreateLab(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rr.Code)
	}
}

func TestCreateLab_InvalidJSON(t *testing.T) {
	server := &Server{labService: &mockLabService{}}

	req := authedRequest("POST", "/api/v1/labs", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()

	server.handleCreateLab(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestLabTrend_MissingName(t *testing.T) {
	labs := &mockLabService{
		trendFn: func(ctx context.Context, userID, testName string, months int) (*driving.LabTrend, error) {
			return nil, fmt.Errorf("%w: test name is required", domain.ErrInvalidInput)
		},
	}
	server := &Server{labService: labs}

	req := authedRequest("GET", "/api/v1/labs/trend", nil)
	rr := httptest.NewRecorder()

	server.handleLabTrend(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestLabTrend(t *testing.T) {
	labs := &mockLabService{
		trendFn: func(ctx context.Context, userID, testName string, months int) (*driving.LabTrend, error) {
			if testName != "Ferritin" {
				t.Errorf("expected Ferritin, got %s", testName)
			}
			if months != 6 {
				t.Errorf("expected 6 months, got %d", months)
			}
			return &driving.LabTrend{TestName: testName, Points: []driving.TrendPoint{}}, nil
		},
	}
	server := &Server{labService: labs}

	req := authedRequest("GET", "/api/v1/labs/trend?test_name=Ferritin&months=6", nil)
	rr := httptest.NewRecorder()

	server.handleLabTrend(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

// Symptom endpoints

func TestCreateSymptom(t *testing.T) {
	symptoms := &mockSymptomService{
		createFn: func(ctx context.Context, userID string, req driving.SymptomCreateRequest) (*domain.SymptomEntry, error) {
			return &domain.SymptomEntry{ID: "sym-1", SymptomType: req.SymptomType, Severity: req.Severity}, nil
		},
	}
	server := &Server{symptomService: symptoms}

	body := bytes.NewBufferString(`{"symptom_type": "headache", "severity": 6}`)
	req := authedRequest("POST", "/api/v1/symptoms", body)
	rr := httptest.NewRecorder()

	server.handleCreateSymptom(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
}

func TestCreateSymptom_Invalid(t *testing.T) {
	symptoms := &mockSymptomService{
		createFn: func(ctx context.Context, userID string, req driving.SymptomCreateRequest) (*domain.SymptomEntry, error) {
			return nil, fmt.Errorf("%w: severity must be between 0 and 10", domain.ErrInvalidInput)
		},
	}
	server := &Server{symptomService: symptoms}

	body := bytes.NewBufferString(`{"symptom_type": "headache", "severity": 15}`)
	req := authedRequest("POST", "/api/v1/symptoms", body)
	rr := httptest.NewRecorder()

	server.handleCreateSymptom(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestDeleteSymptom_WrongUser(t *testing.T) {
	symptoms := &mockSymptomService{
		deleteFn: func(ctx context.Context, userID, entryID string) error {
			return domain.ErrNotFound
		},
	}
	server := &Server{symptomService: symptoms}

	req := authedRequest("DELETE", "/api/v1/symptoms/sym-1", nil)
	req.SetPathValue("id", "sym-1")
	rr := httptest.NewRecorder()

	server.handleDeleteSymptom(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

// Chat endpoints

func TestCreateSession(t *testing.T) {
	chat := &mockChatService{
		createSessionFn: func(ctx context.Context, userID string, title *string) (*domain.ChatSession, error) {
			if title == nil || *title != "Iron questions" {
				t.Errorf("expected title to pass through")
			}
			return &domain.ChatSession{ID: "sess-1", UserID: userID, Title: title}, nil
		},
	}
	server := &Server{chatService: chat}

	body := bytes.NewBufferString(`{"title": "Iron questions"}`)
	req := authedRequest("POST", "/api/v1/chat/sessions", body)
	rr := httptest.NewRecorder()

	server.handleCreateSession(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
}

func TestCreateSession_EmptyBody(t *testing.T) {
	chat := &mockChatService{
		createSessionFn: func(ctx context.Context, userID string, title *string) (*domain.ChatSession, error) {
			if title != nil {
				t.Errorf("expected nil title, got %v", *title)
			}
			return &domain.ChatSession{ID: "sess-1", UserID: userID}, nil
		},
	}
	server := &Server{chatService: chat}

	req := authedRequest("POST", "/api/v1/chat/sessions", nil)
	rr := httptest.NewRecorder()

	server.handleCreateSession(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
}

func TestSendMessage_StreamsSSE(t *testing.T) {
	chat := &mockChatService{
		sendMessageFn: func(ctx context.Context, userID, sessionID, content string) (<-chan domain.StreamEvent, error) {
			if sessionID != "sess-1" {
				t.Errorf("expected sess-1, got %s", sessionID)
			}
			if content != "How is my iron?" {
				t.Errorf("unexpected content %q", content)
			}
			events := make(chan domain.StreamEvent, 4)
			events <- domain.ToolCallEvent("get_lab_results", map[string]any{"test_name": "Ferritin"})
			events <- domain.ToolResultEvent("get_lab_results", `{"count": 2}`)
			events <- domain.ContentEvent("Your ferritin is low.")
			events <- domain.DoneEvent()
			close(events)
			return events, nil
		},
	}
	server := &Server{chatService: chat}

	body := bytes.NewBufferString(`{"content": "How is my iron?"}`)
	req := authedRequest("POST", "/api/v1/chat/sessions/sess-1/messages", body)
	req.SetPathValue("id", "sess-1")
	rr := httptest.NewRecorder()

	server.handleSendMessage(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %s", ct)
	}

	frames := strings.Split(strings.TrimSpace(rr.Body.String()), "\n\n")
	if len(frames) != 4 {
		t.Fatalf("expected 4 SSE frames, got %d: %q", len(frames), rr.Body.String())
	}

	var types []domain.StreamEventType
	for _, frame := range frames {
		if !strings.HasPrefix(frame, "data: ") {
			t.Fatalf("frame missing data prefix: %q", frame)
		}
		var event domain.StreamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(frame, "data: ")), &event); err != nil {
			t.Fatalf("failed to decode frame: %v", err)
		}
		types = append(types, event.Type)
	}

	want := []domain.StreamEventType{domain.EventToolCall, domain.EventToolResult, domain.EventContent, domain.EventDone}
	for i, typ := range want {
		if types[i] != typ {
			t.Errorf("frame %d: expected %s, got %s", i, typ, types[i])
		}
	}
}

func TestSendMessage_SessionNotFound(t *testing.T) {
	chat := &mockChatService{
		sendMessageFn: func(ctx context.Context, userID, sessionID, content string) (<-chan domain.StreamEvent, error) {
			return nil, domain.ErrNotFound
		},
	}
	server := &Server{chatService: chat}

	body := bytes.NewBufferString(`{"content": "hello"}`)
	req := authedRequest("POST", "/api/v1/chat/sessions/nope/messages", body)
	req.SetPathValue("id", "nope")
	rr := httptest.NewRecorder()

	server.handleSendMessage(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

// Helper functions

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusCreated, map[string]string{"foo": "bar"})

	if rr.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrInvalidStatus, http.StatusConflict},
		{domain.ErrAlreadyExists, http.StatusConflict},
		{domain.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rr := httptest.NewRecorder()
		writeServiceError(rr, tt.err)
		if rr.Code != tt.status {
			t.Errorf("%v: expected status %d, got %d", tt.err, tt.status, rr.Code)
		}
	}
}

func TestParseDate(t *testing.T) {
	if d, err := parseDate(""); err != nil || !d.IsZero() {
		t.Errorf("expected zero time for empty input")
	}
	if d, err := parseDate("2026-08-01"); err != nil || d.Format("2006-01-02") != "2026-08-01" {
		t.Errorf("expected bare date to parse, got %v %v", d, err)
	}
	if _, err := parseDate("2026-08-01T10:30:00Z"); err != nil {
		t.Errorf("expected RFC 3339 to parse, got %v", err)
	}
	if _, err := parseDate("yesterday"); err == nil {
		t.Error("expected error for junk date")
	}
}
