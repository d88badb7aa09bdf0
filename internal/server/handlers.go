/**
 * HTTP handlers.
 */

package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docuflow/ocr-service/internal/extract"
	"github.com/docuflow/ocr-service/internal/processor"
	"github.com/docuflow/ocr-service/internal/queue"
	"github.com/docuflow/ocr-service/internal/storage"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// ocrResponse is the synchronous OCR result.
type ocrResponse struct {
	DocumentID string         `json:"documentId"`
	Pages      []storage.Page `json:"pages"`
}

// extractLLMRequest is the body of POST /extract-llm.
type extractLLMRequest struct {
	DocumentID string `json:"documentId" binding:"required"`
	OCRText    string `json:"ocrText" binding:"required"`
}

// extractLLMResponse is the result of LLM invoice extraction.
type extractLLMResponse struct {
	DocumentID string                    `json:"documentId"`
	Fields     extract.InvoiceFields     `json:"fields"`
	Confidence extract.InvoiceConfidence `json:"confidence"`
	Validation extract.InvoiceValidation `json:"validation"`
}

// extractInvoiceRequest is the body of POST /extract-invoice. One of OCRText
// or Lines must be present.
type extractInvoiceRequest struct {
	DocumentID string   `json:"documentId"`
	OCRText    string   `json:"ocrText"`
	Lines      []string `json:"lines"`
}

// invoiceChatRequest is the body of POST /invoice-chat.
type invoiceChatRequest struct {
	Extraction json.RawMessage       `json:"extraction" binding:"required"`
	Message    string                `json:"message" binding:"required"`
	History    []extract.ChatMessage `json:"history"`
	Plan       string                `json:"plan"`
}

func (s *Server) handleHealth(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if s.storage != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := s.storage.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "storage": err.Error()})
			return
		}
		status["storage"] = "ok"
	}
	c.JSON(http.StatusOK, status)
}

// handleOCR processes an upload synchronously and returns per-page layout
// text.
func (s *Server) handleOCR(c *gin.Context) {
	documentID, filename, fileData, ok := s.readUpload(c)
	if !ok {
		return
	}

	if err := s.storage.Postgres().CreateDocument(c.Request.Context(), &storage.Document{
		ID:       documentID,
		Filename: filename,
		Status:   storage.StatusProcessing,
		MimeType: c.ContentType(),
	}); err != nil {
		s.logger.Error("Failed to create document record", "document", documentID, "error", err)
		errorResponse(c, http.StatusInternalServerError, "failed to register document")
		return
	}

	result, err := s.processor.ProcessDocument(c.Request.Context(), &processor.ProcessRequest{
		DocumentID: documentID,
		Filename:   filename,
		FileData:   fileData,
	})
	if err != nil {
		s.logger.Error("Synchronous processing failed", "document", documentID, "error", err)
		if updateErr := s.processor.UpdateDocumentStatus(c.Request.Context(), documentID, storage.StatusFailed, nil); updateErr != nil {
			s.logger.Warn("Failed to mark document failed", "document", documentID, "error", updateErr)
		}
		errorResponse(c, http.StatusUnprocessableEntity, "document processing failed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, ocrResponse{DocumentID: documentID, Pages: result.Pages})
}

// handleExtractLLM extracts invoice fields from OCR text via the configured
// LLM, validates them, and scores confidence.
func (s *Server) handleExtractLLM(c *gin.Context) {
	var req extractLLMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "documentId and ocrText are required")
		return
	}

	fields := extract.ExtractInvoiceFields(c.Request.Context(), s.llmClient, req.OCRText)
	validation := extract.ValidateInvoice(fields)
	confidence := extract.ComputeConfidence(fields, validation)

	resp := extractLLMResponse{
		DocumentID: req.DocumentID,
		Fields:     fields,
		Confidence: confidence,
		Validation: validation,
	}

	if err := s.storage.Postgres().SaveExtraction(c.Request.Context(), req.DocumentID, "llm", resp); err != nil {
		// Extraction already happened; storage failure should not hide it.
		s.logger.Warn("Failed to persist LLM extraction", "document", req.DocumentID, "error", err)
	}

	c.JSON(http.StatusOK, resp)
}

// handleExtractInvoice runs rule-based Bulgarian extraction without any LLM.
func (s *Server) handleExtractInvoice(c *gin.Context) {
	var req extractInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OCRText == "" && len(req.Lines) == 0 {
		errorResponse(c, http.StatusBadRequest, "at least one of ocrText or lines must be provided")
		return
	}

	text := req.OCRText
	if text == "" {
		text = strings.Join(req.Lines, "\n")
	}

	result := extract.ExtractInvoiceRules(text)

	if req.DocumentID != "" {
		if err := s.storage.Postgres().SaveExtraction(c.Request.Context(), req.DocumentID, "rules", result); err != nil {
			s.logger.Warn("Failed to persist rule extraction", "document", req.DocumentID, "error", err)
		}
	}

	c.JSON(http.StatusOK, result)
}

// handleExtractVision extracts invoice fields by sending the uploaded pages
// directly to a vision-capable model, skipping OCR.
func (s *Server) handleExtractVision(c *gin.Context) {
	visionClient, ok := s.llmClient.(extract.VisionClient)
	if !ok {
		errorResponse(c, http.StatusServiceUnavailable,
			"vision extraction requires an OpenAI or Gemini provider")
		return
	}

	_, filename, fileData, ok := s.readUpload(c)
	if !ok {
		return
	}

	images := [][]byte{fileData}
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		if s.rasterizer == nil {
			errorResponse(c, http.StatusServiceUnavailable, "PDF rasterization is not configured")
			return
		}
		pages, err := s.rasterizer.RenderPages(c.Request.Context(), fileData)
		if err != nil {
			s.logger.Error("Vision rasterization failed", "filename", filename, "error", err)
			errorResponse(c, http.StatusInternalServerError, "failed to convert PDF to images")
			return
		}
		images = pages
		s.logger.Info("Vision extraction: PDF rendered", "filename", filename, "pages", len(pages))
	}

	result, err := extract.ExtractInvoiceVision(c.Request.Context(), visionClient, images)
	if err != nil {
		s.logger.Error("Vision extraction failed",
			"provider", visionClient.Provider(), "filename", filename, "error", err)
		errorResponse(c, http.StatusInternalServerError, "vision extraction failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleInvoiceChat answers a question about an invoice using its extraction
// JSON as context.
func (s *Server) handleInvoiceChat(c *gin.Context) {
	chatClient, ok := s.llmClient.(extract.ChatClient)
	if !ok {
		errorResponse(c, http.StatusServiceUnavailable,
			"invoice chat requires an OpenAI provider")
		return
	}

	var req invoiceChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "extraction and message are required")
		return
	}

	answer, err := extract.InvoiceChat(c.Request.Context(), chatClient,
		req.Extraction, req.Message, req.History, req.Plan)
	if err != nil {
		s.logger.Error("Invoice chat failed",
			"provider", chatClient.Provider(), "error", err)
		errorResponse(c, http.StatusInternalServerError, "invoice chat failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": answer})
}

// handleSubmitDocument enqueues an upload for asynchronous processing.
func (s *Server) handleSubmitDocument(c *gin.Context) {
	if s.producer == nil {
		errorResponse(c, http.StatusServiceUnavailable, "asynchronous processing is not configured")
		return
	}

	documentID, filename, fileData, ok := s.readUpload(c)
	if !ok {
		return
	}

	if err := s.storage.Postgres().CreateDocument(c.Request.Context(), &storage.Document{
		ID:       documentID,
		Filename: filename,
		Status:   storage.StatusQueued,
		MimeType: c.ContentType(),
	}); err != nil {
		s.logger.Error("Failed to create document record", "document", documentID, "error", err)
		errorResponse(c, http.StatusInternalServerError, "failed to register document")
		return
	}

	if err := s.producer.EnqueueDocument(c.Request.Context(), &queue.ProcessDocumentPayload{
		DocumentID: documentID,
		Filename:   filename,
		FileData:   fileData,
	}); err != nil {
		s.logger.Error("Failed to enqueue document", "document", documentID, "error", err)
		errorResponse(c, http.StatusInternalServerError, "failed to enqueue document")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"documentId": documentID,
		"status":     storage.StatusQueued,
	})
}

// handleGetDocument returns document status and page texts.
func (s *Server) handleGetDocument(c *gin.Context) {
	documentID := c.Param("id")

	doc, err := s.storage.Postgres().GetDocument(c.Request.Context(), documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			errorResponse(c, http.StatusNotFound, "document not found")
			return
		}
		s.logger.Error("Failed to load document", "document", documentID, "error", err)
		errorResponse(c, http.StatusInternalServerError, "failed to load document")
		return
	}

	pages, err := s.storage.Postgres().GetPages(c.Request.Context(), documentID)
	if err != nil {
		s.logger.Error("Failed to load pages", "document", documentID, "error", err)
		errorResponse(c, http.StatusInternalServerError, "failed to load pages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document": doc,
		"pages":    pages,
	})
}

// handleFindSimilar returns invoices with nearby embeddings.
func (s *Server) handleFindSimilar(c *gin.Context) {
	documentID := c.Param("id")

	limit := 5
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			errorResponse(c, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = parsed
	}

	hits, err := s.storage.FindSimilar(c.Request.Context(), documentID, limit)
	if err != nil {
		s.logger.Warn("Similarity search failed", "document", documentID, "error", err)
		errorResponse(c, http.StatusNotFound, "no similarity data for document")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documentId": documentID,
		"similar":    hits,
	})
}

// readUpload validates and reads the multipart file field. On failure it has
// already written the error response.
func (s *Server) readUpload(c *gin.Context) (documentID, filename string, fileData []byte, ok bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "multipart 'file' field is required")
		return "", "", nil, false
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		errorResponse(c, http.StatusBadRequest,
			"unsupported file type; allowed: .pdf, .png, .jpg, .jpeg")
		return "", "", nil, false
	}

	if s.config.MaxFileSize > 0 && fileHeader.Size > s.config.MaxFileSize {
		errorResponse(c, http.StatusRequestEntityTooLarge, "file exceeds size limit")
		return "", "", nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "failed to open uploaded file")
		return "", "", nil, false
	}
	defer file.Close()

	fileData, err = io.ReadAll(file)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "failed to read uploaded file")
		return "", "", nil, false
	}

	return uuid.New().String(), fileHeader.Filename, fileData, true
}
