package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driving"
	"github.com/atria-labs/vitals-core/internal/metrics"
)

// Uploads beyond this size are rejected before buffering.
const maxUploadBytes = 50 << 20

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns readiness of the API and its backing stores
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A dependency is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "task queue unreachable")
			return
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unreachable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Tags         Health
// @Produce      json
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// handleAIHealth godoc
// @Summary      AI backend reachability
// @Description  Probes the chat provider and the document extraction backend
// @Tags         Health
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]domain.ServiceHealth
// @Router       /ai/health [get]
func (s *Server) handleAIHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]domain.ServiceHealth{
		"provider":  s.provider.HealthCheck(r.Context()),
		"extractor": s.extractor.HealthCheck(r.Context()),
	})
}

// Document endpoints

// handleUploadDocument godoc
// @Summary      Upload a document
// @Description  Accepts a file for background processing. The response arrives
// @Description  before parsing starts; poll the document for progress.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file      formData  file    true   "Document file"
// @Param        title     formData  string  false  "Display title"
// @Param        doc_type  formData  string  false  "lab_report, imaging, prescription, clinical_notes or other"
// @Success      202  {object}  domain.Document
// @Failure      400  {object}  ErrorResponse  "Missing or oversized file"
// @Router       /documents [post]
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	doc, err := s.documentService.Upload(r.Context(), userID, driving.UploadRequest{
		Title:    r.FormValue("title"),
		DocType:  domain.DocumentType(r.FormValue("doc_type")),
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Content:  content,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	metrics.IncrementDocumentsUploaded()
	writeJSON(w, http.StatusAccepted, doc)
}

// handleListDocuments godoc
// @Summary      List documents
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "Page size"
// @Param        offset  query  int  false  "Page offset"
// @Success      200  {array}  domain.Document
// @Router       /documents [get]
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	docs, err := s.documentService.List(r.Context(), userID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

// handleGetDocument godoc
// @Summary      Get a document
// @Description  Retrieves a document including its processing status
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Document ID"
// @Success      200  {object}  domain.Document
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Router       /documents/{id} [get]
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	doc, err := s.documentService.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// handleDeleteDocument godoc
// @Summary      Delete a document
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Document ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Router       /documents/{id} [delete]
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	if err := s.documentService.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleReprocessDocument godoc
// @Summary      Reprocess a failed document
// @Description  Resets a failed document to pending and re-enqueues parsing
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Document ID"
// @Success      202  {object}  domain.Document
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Failure      409  {object}  ErrorResponse  "Document is not in a failed state"
// @Router       /documents/{id}/reprocess [post]
func (s *Server) handleReprocessDocument(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	doc, err := s.documentService.Reprocess(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

// Lab endpoints

// labCreateRequest is the manual lab entry payload
type labCreateRequest struct {
	TestName     string           `json:"test_name"`
	TestCode     *string          `json:"test_code,omitempty"`
	Value        decimal.Decimal  `json:"value"`
	Unit         string           `json:"unit"`
	ReferenceMin *decimal.Decimal `json:"reference_min,omitempty"`
	ReferenceMax *decimal.Decimal `json:"reference_max,omitempty"`
	RecordedAt   string           `json:"recorded_at,omitempty"`
}

// handleListLabs godoc
// @Summary      List lab results
// @Tags         Labs
// @Produce      json
// @Security     BearerAuth
// @Param        days       query  int     false  "Lookback window in days"
// @Param        test_name  query  string  false  "Substring filter on test name"
// @Success      200  {array}  domain.LabResult
// @Router       /labs [get]
func (s *Server) handleListLabs(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	days := queryInt(r, "days", 0)
	testName := r.URL.Query().Get("test_name")

	results, err := s.labService.List(r.Context(), userID, days, testName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// handleCreateLab godoc
// @Summary      Record a lab result
// @Description  Stores a manually entered measurement. The qualitative status
// @Description  is derived from the reference range.
// @Tags         Labs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  labCreateRequest  true  "Measurement"
// @Success      201  {object}  domain.LabResult
// @Failure      400  {object}  ErrorResponse  "Missing test name or unit"
// @Failure      409  {object}  ErrorResponse  "Duplicate measurement"
// @Router       /labs [post]
func (s *Server) handleCreateLab(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var req labCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	recordedAt, err := parseDate(req.RecordedAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recorded_at date")
		return
	}

	result, err := s.labService.Create(r.Context(), userID, driving.LabCreateRequest{
		TestName:     req.TestName,
		TestCode:     req.TestCode,
		Value:        req.Value,
		Unit:         req.Unit,
		ReferenceMin: req.ReferenceMin,
		ReferenceMax: req.ReferenceMax,
		RecordedAt:   recordedAt,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleLabTrend godoc
// @Summary      Lab trend
// @Description  Chronological series and statistics for one test
// @Tags         Labs
// @Produce      json
// @Security     BearerAuth
// @Param        test_name  query  string  true   "Test name"
// @Param        months     query  int     false  "Lookback window in months"
// @Success      200  {object}  driving.LabTrend
// @Failure      400  {object}  ErrorResponse  "Missing test name"
// @Router       /labs/trend [get]
func (s *Server) handleLabTrend(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	testName := r.URL.Query().Get("test_name")
	months := queryInt(r, "months", 0)

	trend, err := s.labService.Trend(r.Context(), userID, testName, months)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trend)
}

// handleDeleteLab godoc
// @Summary      Delete a lab result
// @Tags         Labs
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Lab result ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Lab result not found"
// @Router       /labs/{id} [delete]
func (s *Server) handleDeleteLab(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	if err := s.labService.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Symptom endpoints

// symptomCreateRequest is the symptom log entry payload
type symptomCreateRequest struct {
	SymptomType     string  `json:"symptom_type"`
	Severity        int     `json:"severity"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	Triggers        *string `json:"triggers,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	RecordedAt      string  `json:"recorded_at,omitempty"`
}

// handleListSymptoms godoc
// @Summary      List symptom entries
// @Tags         Symptoms
// @Produce      json
// @Security     BearerAuth
// @Param        days          query  int     false  "Lookback window in days"
// @Param        symptom_type  query  string  false  "Exact type filter"
// @Success      200  {array}  domain.SymptomEntry
// @Router       /symptoms [get]
func (s *Server) handleListSymptoms(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	days := queryInt(r, "days", 0)
	symptomType := r.URL.Query().Get("symptom_type")

	entries, err := s.symptomService.List(r.Context(), userID, days, symptomType)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// handleCreateSymptom godoc
// @Summary      Log a symptom
// @Tags         Symptoms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  symptomCreateRequest  true  "Symptom entry"
// @Success      201  {object}  domain.SymptomEntry
// @Failure      400  {object}  ErrorResponse  "Missing type or severity out of range"
// @Router       /symptoms [post]
func (s *Server) handleCreateSymptom(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var req symptomCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	recordedAt, err := parseDate(req.RecordedAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recorded_at date")
		return
	}

	entry, err := s.symptomService.Create(r.Context(), userID, driving.SymptomCreateRequest{
		SymptomType:     req.SymptomType,
		Severity:        req.Severity,
		DurationMinutes: req.DurationMinutes,
		Triggers:        req.Triggers,
		Notes:           req.Notes,
		RecordedAt:      recordedAt,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// handleDeleteSymptom godoc
// @Summary      Delete a symptom entry
// @Tags         Symptoms
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Entry ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Entry not found"
// @Router       /symptoms/{id} [delete]
func (s *Server) handleDeleteSymptom(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	if err := s.symptomService.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Chat endpoints

type createSessionRequest struct {
	Title *string `json:"title,omitempty"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// handleCreateSession godoc
// @Summary      Create a chat session
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  createSessionRequest  false  "Optional title"
// @Success      201  {object}  domain.ChatSession
// @Router       /chat/sessions [post]
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && r.ContentLength > 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.chatService.CreateSession(r.Context(), userID, req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// handleListSessions godoc
// @Summary      List chat sessions
// @Description  Most recently active first
// @Tags         Chat
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "Page size"
// @Success      200  {array}  domain.ChatSession
// @Router       /chat/sessions [get]
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	limit := queryInt(r, "limit", 0)

	sessions, err := s.chatService.ListSessions(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}

// handleGetSession godoc
// @Summary      Get a chat session
// @Tags         Chat
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Session ID"
// @Success      200  {object}  domain.ChatSession
// @Failure      404  {object}  ErrorResponse  "Session not found"
// @Router       /chat/sessions/{id} [get]
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	session, err := s.chatService.GetSession(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// handleDeleteSession godoc
// @Summary      Delete a chat session and its messages
// @Tags         Chat
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Session ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Session not found"
// @Router       /chat/sessions/{id} [delete]
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	if err := s.chatService.DeleteSession(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleListMessages godoc
// @Summary      List session messages
// @Description  Messages in creation order
// @Tags         Chat
// @Produce      json
// @Security     BearerAuth
// @Param        id     path   string  true   "Session ID"
// @Param        limit  query  int     false  "Page size"
// @Success      200  {array}  domain.ChatMessage
// @Failure      404  {object}  ErrorResponse  "Session not found"
// @Router       /chat/sessions/{id}/messages [get]
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	limit := queryInt(r, "limit", 0)

	messages, err := s.chatService.ListMessages(r.Context(), userID, r.PathValue("id"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// handleSendMessage godoc
// @Summary      Send a message
// @Description  Runs the tool-calling loop and streams normalized events as
// @Description  server-sent events. The stream ends with a done or error event.
// @Tags         Chat
// @Accept       json
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        id       path  string              true  "Session ID"
// @Param        request  body  sendMessageRequest  true  "User message"
// @Success      200  {string}  string  "SSE stream of StreamEvent frames"
// @Failure      400  {object}  ErrorResponse  "Empty message"
// @Failure      404  {object}  ErrorResponse  "Session not found"
// @Router       /chat/sessions/{id}/messages [post]
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	events, err := s.chatService.SendMessage(r.Context(), userID, r.PathValue("id"), req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps domain sentinel errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// parseDate accepts a bare date or an RFC 3339 timestamp. An empty string
// maps to the zero time, which services default to now.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
