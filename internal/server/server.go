/**
 * HTTP server for the OCR service.
 *
 * Routes:
 * - GET  /health                  liveness + storage ping
 * - POST /ocr                     synchronous upload, OCR, layout text
 * - POST /extract-llm             LLM invoice field extraction from OCR text
 * - POST /extract-invoice         rule-based Bulgarian invoice extraction
 * - POST /extract-vision          invoice extraction from page images, no OCR
 * - POST /invoice-chat            accountant Q&A over an extraction result
 * - POST /documents               asynchronous document submission
 * - GET  /documents/:id           document status + page texts
 * - GET  /documents/:id/similar   similar-invoice search
 */

package server

import (
	"github.com/gin-gonic/gin"

	"github.com/docuflow/ocr-service/internal/config"
	"github.com/docuflow/ocr-service/internal/extract"
	"github.com/docuflow/ocr-service/internal/logging"
	"github.com/docuflow/ocr-service/internal/pdf"
	"github.com/docuflow/ocr-service/internal/processor"
	"github.com/docuflow/ocr-service/internal/queue"
	"github.com/docuflow/ocr-service/internal/storage"
)

// Server wires the HTTP layer to the processing components.
type Server struct {
	config     *config.Config
	storage    *storage.Manager
	processor  processor.DocumentProcessorInterface
	producer   *queue.Producer
	llmClient  extract.LLMClient
	rasterizer *pdf.Rasterizer
	logger     *logging.Logger
}

// New creates the HTTP server.
func New(cfg *config.Config, mgr *storage.Manager, proc processor.DocumentProcessorInterface,
	producer *queue.Producer, llmClient extract.LLMClient, rasterizer *pdf.Rasterizer) *Server {
	return &Server{
		config:     cfg,
		storage:    mgr,
		processor:  proc,
		producer:   producer,
		llmClient:  llmClient,
		rasterizer: rasterizer,
		logger:     logging.NewLogger("server"),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = s.config.MaxFileSize

	router.GET("/health", s.handleHealth)
	router.POST("/ocr", s.handleOCR)
	router.POST("/extract-llm", s.handleExtractLLM)
	router.POST("/extract-invoice", s.handleExtractInvoice)
	router.POST("/extract-vision", s.handleExtractVision)
	router.POST("/invoice-chat", s.handleInvoiceChat)

	docs := router.Group("/documents")
	{
		docs.POST("", s.handleSubmitDocument)
		docs.GET("/:id", s.handleGetDocument)
		docs.GET("/:id/similar", s.handleFindSimilar)
	}

	return router
}

// Run starts the HTTP server on the configured port.
func (s *Server) Run() error {
	addr := ":" + s.config.Port
	s.logger.Info("HTTP server listening", "addr", addr)
	return s.Router().Run(addr)
}

func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
