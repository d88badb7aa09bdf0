/**
 * Queue consumer for the document processing worker.
 *
 * Consumes document tasks from Redis via asynq, drives the processing
 * pipeline with a per-task timeout, and publishes lifecycle events.
 */

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	apperrors "github.com/docuflow/ocr-service/internal/errors"
	"github.com/docuflow/ocr-service/internal/logging"
	"github.com/docuflow/ocr-service/internal/processor"
	"github.com/docuflow/ocr-service/internal/storage"
)

// Consumer handles document task consumption.
type Consumer struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor processor.DocumentProcessorInterface
	events    *EventPublisher
	config    *ConsumerConfig
	logger    *logging.Logger
}

// ConsumerConfig holds consumer configuration.
type ConsumerConfig struct {
	RedisURL          string
	Concurrency       int
	Processor         processor.DocumentProcessorInterface
	Events            *EventPublisher // optional
	ProcessingTimeout time.Duration   // default 5 minutes
}

// NewConsumer creates a queue consumer.
func NewConsumer(cfg *ConsumerConfig) (*Consumer, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("RedisURL is required")
	}
	if cfg.Processor == nil {
		return nil, fmt.Errorf("Processor is required")
	}

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	logger := logging.NewLogger("queue-consumer")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				QueueDocuments: 10,
				"default":      1,
			},
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				// Exponential backoff capped at a minute.
				delay := time.Duration(5*(1<<uint(n))) * time.Second
				if delay > 60*time.Second {
					delay = 60 * time.Second
				}
				return delay
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task processing error",
					"type", task.Type(), "error", err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	consumer := &Consumer{
		server:    server,
		mux:       mux,
		processor: cfg.Processor,
		events:    cfg.Events,
		config:    cfg,
		logger:    logger,
	}
	mux.HandleFunc(TaskProcessDocument, consumer.handleProcessDocument)

	return consumer, nil
}

// Start runs the consumer in the background.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("Starting queue consumer",
		"concurrency", c.config.Concurrency, "queue", QueueDocuments)
	go func() {
		if err := c.server.Run(c.mux); err != nil {
			c.logger.Error("Queue consumer stopped", "error", err)
		}
	}()
	return nil
}

// Stop shuts the consumer down gracefully.
func (c *Consumer) Stop(ctx context.Context) error {
	c.logger.Info("Stopping queue consumer")
	c.server.Shutdown()
	return nil
}

// handleProcessDocument runs the pipeline for one queued document.
func (c *Consumer) handleProcessDocument(ctx context.Context, task *asynq.Task) error {
	startTime := time.Now()

	var payload ProcessDocumentPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	c.logger.Info("Processing queued document",
		"document", payload.DocumentID, "filename", payload.Filename, "bytes", len(payload.FileData))

	if err := c.processor.UpdateDocumentStatus(ctx, payload.DocumentID, storage.StatusProcessing, nil); err != nil {
		c.logger.Warn("Failed to mark document processing",
			"document", payload.DocumentID, "error", err)
	}
	c.publishEvent(ctx, &DocumentEvent{
		DocumentID: payload.DocumentID,
		Status:     storage.StatusProcessing,
	})

	timeout := c.config.ProcessingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	processCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := c.processor.ProcessDocument(processCtx, &processor.ProcessRequest{
		DocumentID: payload.DocumentID,
		Filename:   payload.Filename,
		MimeType:   payload.MimeType,
		FileData:   payload.FileData,
	})

	duration := time.Since(startTime)

	if err != nil {
		procErr := asProcessingError(payload.DocumentID, err, processCtx, timeout)
		c.logger.Error("Processing failed",
			"document", payload.DocumentID, "duration", duration, "code", procErr.Code, "error", err)

		if updateErr := c.processor.UpdateDocumentStatus(ctx, payload.DocumentID, storage.StatusFailed, procErr); updateErr != nil {
			c.logger.Warn("Failed to mark document failed",
				"document", payload.DocumentID, "error", updateErr)
		}
		c.publishEvent(ctx, &DocumentEvent{
			DocumentID: payload.DocumentID,
			Status:     storage.StatusFailed,
			ErrorCode:  string(procErr.Code),
		})
		return fmt.Errorf("document processing failed: %w", procErr)
	}

	c.logger.Info("Processing completed",
		"document", payload.DocumentID, "pages", len(result.Pages),
		"engine", result.Engine, "duration", duration)

	c.publishEvent(ctx, &DocumentEvent{
		DocumentID: payload.DocumentID,
		Status:     storage.StatusCompleted,
		Engine:     result.Engine,
		PageCount:  len(result.Pages),
	})
	return nil
}

func (c *Consumer) publishEvent(ctx context.Context, event *DocumentEvent) {
	if c.events == nil {
		return
	}
	if err := c.events.Publish(ctx, event); err != nil {
		c.logger.Warn("Failed to publish document event",
			"document", event.DocumentID, "status", event.Status, "error", err)
	}
}

// asProcessingError normalizes pipeline failures into structured errors.
func asProcessingError(documentID string, err error, ctx context.Context, timeout time.Duration) *apperrors.ProcessingError {
	if procErr, ok := err.(*apperrors.ProcessingError); ok {
		return procErr
	}
	if ctx.Err() == context.DeadlineExceeded {
		return apperrors.NewProcessingTimeoutError(documentID, timeout, err)
	}
	return &apperrors.ProcessingError{
		Code:       apperrors.ErrorOCRFailed,
		Message:    err.Error(),
		DocumentID: documentID,
		Timestamp:  time.Now(),
		Cause:      err,
	}
}
