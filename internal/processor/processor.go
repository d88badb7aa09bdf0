/**
 * Document processor for the OCR service.
 *
 * Orchestrates the per-document pipeline:
 * - MIME detection from magic bytes (upload metadata is unreliable)
 * - PDF rasterization to per-page PNGs
 * - OCR + layout reconstruction per page
 * - Persistence of page texts in PostgreSQL
 * - Optional embedding generation and Qdrant indexing
 */

package processor

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/docuflow/ocr-service/internal/errors"
	"github.com/docuflow/ocr-service/internal/logging"
	"github.com/docuflow/ocr-service/internal/ocr"
	"github.com/docuflow/ocr-service/internal/pdf"
	"github.com/docuflow/ocr-service/internal/storage"
)

// DocumentProcessorInterface defines the processing contract consumed by the
// queue layer.
type DocumentProcessorInterface interface {
	ProcessDocument(ctx context.Context, req *ProcessRequest) (*ProcessResult, error)
	UpdateDocumentStatus(ctx context.Context, documentID, status string, procErr *apperrors.ProcessingError) error
}

// Config holds processor configuration.
type Config struct {
	OCRService     *ocr.Service
	StorageManager *storage.Manager
	Rasterizer     *pdf.Rasterizer
	VoyageAPIKey   string
	MaxFileSize    int64
}

// ProcessRequest represents a document processing request.
type ProcessRequest struct {
	DocumentID string
	Filename   string
	MimeType   string
	FileData   []byte
}

// ProcessResult represents the processing outcome.
type ProcessResult struct {
	DocumentID         string
	Engine             string
	Pages              []storage.Page
	EmbeddingGenerated bool
	ProcessingTimeMs   int64
}

// DocumentProcessor runs the document pipeline.
type DocumentProcessor struct {
	config          *Config
	ocrService      *ocr.Service
	storage         *storage.Manager
	rasterizer      *pdf.Rasterizer
	embeddingClient *EmbeddingClient
	logger          *logging.Logger
}

// NewDocumentProcessor creates a document processor.
func NewDocumentProcessor(cfg *Config) (*DocumentProcessor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.OCRService == nil {
		return nil, fmt.Errorf("OCR service is required")
	}
	if cfg.StorageManager == nil {
		return nil, fmt.Errorf("storage manager is required")
	}

	p := &DocumentProcessor{
		config:     cfg,
		ocrService: cfg.OCRService,
		storage:    cfg.StorageManager,
		rasterizer: cfg.Rasterizer,
		logger:     logging.NewLogger("processor"),
	}
	if p.rasterizer == nil {
		p.rasterizer = pdf.NewRasterizer(0)
	}

	if cfg.VoyageAPIKey != "" {
		embeddingClient, err := NewEmbeddingClient(cfg.VoyageAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedding client: %w", err)
		}
		p.embeddingClient = embeddingClient
	} else {
		p.logger.Warn("No embedding API key configured; similar-invoice search disabled")
	}

	return p, nil
}

// ProcessDocument runs the full pipeline for one document.
func (p *DocumentProcessor) ProcessDocument(ctx context.Context, req *ProcessRequest) (*ProcessResult, error) {
	startTime := time.Now()
	p.logger.Info("Starting document pipeline",
		"document", req.DocumentID, "filename", req.Filename, "bytes", len(req.FileData))

	if p.config.MaxFileSize > 0 && int64(len(req.FileData)) > p.config.MaxFileSize {
		return nil, apperrors.NewUnsupportedFormatError(req.DocumentID,
			fmt.Sprintf("%s (exceeds size limit)", req.Filename))
	}

	// Upload metadata lies often enough that magic bytes win.
	mimeType := detectMimeType(req.FileData)
	if mimeType == "" {
		mimeType = req.MimeType
	}
	if !isSupportedMime(mimeType) {
		return nil, apperrors.NewUnsupportedFormatError(req.DocumentID, req.Filename)
	}

	pageImages, err := p.preparePages(ctx, req, mimeType)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Pages prepared", "document", req.DocumentID, "pages", len(pageImages))

	pages := make([]storage.Page, 0, len(pageImages))
	for i, image := range pageImages {
		pageNum := i + 1
		text, err := p.ocrService.ExtractPageText(ctx, pageNum, image)
		if err != nil {
			return nil, apperrors.NewOCRFailedError(req.DocumentID, p.ocrService.EngineName(), err)
		}
		pages = append(pages, storage.Page{Page: pageNum, Text: text})
	}

	result := &storage.DocumentResult{
		DocumentID: req.DocumentID,
		Engine:     p.ocrService.EngineName(),
		Pages:      pages,
		Filename:   req.Filename,
	}

	embeddingGenerated := false
	if p.embeddingClient != nil {
		fullText := joinPageTexts(pages)
		if fullText != "" {
			embedding, err := p.embeddingClient.GenerateEmbedding(ctx, fullText)
			if err != nil {
				// Non-fatal: the document stays retrievable, just not searchable.
				p.logger.Warn("Embedding generation failed; document will not appear in similarity search",
					"document", req.DocumentID, "error", err)
			} else {
				result.Embedding = embedding
				embeddingGenerated = true
			}
		}
	}

	if err := p.storage.StoreResult(ctx, result); err != nil {
		return nil, apperrors.NewStorageFailedError(req.DocumentID, err)
	}

	duration := time.Since(startTime)
	p.logger.Info("Pipeline complete",
		"document", req.DocumentID, "pages", len(pages),
		"engine", result.Engine, "durationMs", duration.Milliseconds())

	return &ProcessResult{
		DocumentID:         req.DocumentID,
		Engine:             result.Engine,
		Pages:              pages,
		EmbeddingGenerated: embeddingGenerated,
		ProcessingTimeMs:   duration.Milliseconds(),
	}, nil
}

// UpdateDocumentStatus records a status transition, carrying structured error
// details on failure.
func (p *DocumentProcessor) UpdateDocumentStatus(ctx context.Context, documentID, status string, procErr *apperrors.ProcessingError) error {
	update := &storage.DocumentUpdate{
		DocumentID: documentID,
		Status:     status,
	}
	if procErr != nil {
		update.ErrorCode = string(procErr.Code)
		update.ErrorMessage = procErr.Message
	}
	return p.storage.Postgres().UpdateDocument(ctx, update)
}

// preparePages turns the upload into one image per page.
func (p *DocumentProcessor) preparePages(ctx context.Context, req *ProcessRequest, mimeType string) ([][]byte, error) {
	if mimeType != "application/pdf" {
		return [][]byte{req.FileData}, nil
	}

	if count, err := pdf.PageCount(req.FileData); err == nil {
		p.logger.Info("Rasterizing PDF", "document", req.DocumentID, "pages", count)
	} else {
		// Malformed xref tables are common in scanner output; poppler is
		// more tolerant than the structural parser, so keep going.
		p.logger.Warn("PDF structure parse failed; attempting rasterization anyway",
			"document", req.DocumentID, "error", err)
	}

	pageImages, err := p.rasterizer.RenderPages(ctx, req.FileData)
	if err != nil {
		return nil, apperrors.NewRasterizeFailedError(req.DocumentID, err)
	}
	return pageImages, nil
}

// detectMimeType identifies supported formats from magic bytes. Returns ""
// for anything unrecognized.
func detectMimeType(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return "application/pdf"
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "image/png"
	case bytes.HasPrefix(data, []byte("\xff\xd8\xff")):
		return "image/jpeg"
	}
	return ""
}

func isSupportedMime(mimeType string) bool {
	switch mimeType {
	case "application/pdf", "image/png", "image/jpeg":
		return true
	}
	return false
}

// joinPageTexts concatenates page texts with blank lines between pages.
func joinPageTexts(pages []storage.Page) string {
	parts := make([]string, 0, len(pages))
	for _, page := range pages {
		if page.Text != "" {
			parts = append(parts, page.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
