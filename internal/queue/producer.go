/**
 * Task producer: enqueues document processing jobs from the HTTP server.
 */

package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/docuflow/ocr-service/internal/logging"
)

// Producer submits document processing tasks.
type Producer struct {
	client *asynq.Client
	logger *logging.Logger
}

// NewProducer creates a task producer connected to Redis.
func NewProducer(redisURL string) (*Producer, error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return &Producer{
		client: asynq.NewClient(redisOpt),
		logger: logging.NewLogger("queue-producer"),
	}, nil
}

// EnqueueDocument submits a document for asynchronous processing.
func (p *Producer) EnqueueDocument(ctx context.Context, payload *ProcessDocumentPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TaskProcessDocument, data)
	info, err := p.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDocuments),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue document task: %w", err)
	}

	p.logger.Info("Document task enqueued",
		"document", payload.DocumentID, "taskId", info.ID, "queue", info.Queue)
	return nil
}

// Close releases the Redis connection.
func (p *Producer) Close() error {
	return p.client.Close()
}
