/**
 * Job event publishing over Redis pub/sub.
 *
 * The worker announces document lifecycle transitions so interested services
 * (upload UIs, accounting sync) can react without polling the status
 * endpoint.
 */

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/docuflow/ocr-service/internal/logging"
)

// EventChannel is the Redis pub/sub channel for document events.
const EventChannel = "documents:events"

// DocumentEvent is one lifecycle transition announcement.
type DocumentEvent struct {
	DocumentID string    `json:"documentId"`
	Status     string    `json:"status"`
	Engine     string    `json:"engine,omitempty"`
	PageCount  int       `json:"pageCount,omitempty"`
	ErrorCode  string    `json:"errorCode,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// EventPublisher publishes document events to Redis.
type EventPublisher struct {
	client *redis.Client
	logger *logging.Logger
}

// NewEventPublisher connects a publisher to Redis.
func NewEventPublisher(redisURL string) (*EventPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return &EventPublisher{
		client: redis.NewClient(opt),
		logger: logging.NewLogger("events"),
	}, nil
}

// Publish sends a document event. Publishing is best-effort from the
// pipeline's point of view; callers log failures and move on.
func (e *EventPublisher) Publish(ctx context.Context, event *DocumentEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := e.client.Publish(ctx, EventChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	e.logger.Debug("Event published",
		"document", event.DocumentID, "status", event.Status)
	return nil
}

// Close releases the Redis connection.
func (e *EventPublisher) Close() error {
	return e.client.Close()
}
