package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/docuflow/ocr-service/internal/errors"
)

func TestAsProcessingErrorPassesThroughStructured(t *testing.T) {
	orig := apperrors.NewRasterizeFailedError("doc-1", errors.New("pdftoppm exited 1"))
	got := asProcessingError("doc-1", orig, context.Background(), time.Minute)
	if got != orig {
		t.Errorf("structured error was rewrapped: %v", got)
	}
}

func TestAsProcessingErrorDetectsTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	got := asProcessingError("doc-2", ctx.Err(), ctx, time.Minute)
	if got.Code != apperrors.ErrorProcessingTimeout {
		t.Errorf("code = %s, want %s", got.Code, apperrors.ErrorProcessingTimeout)
	}
	if got.DocumentID != "doc-2" {
		t.Errorf("documentID = %s", got.DocumentID)
	}
}

func TestAsProcessingErrorWrapsPlainError(t *testing.T) {
	got := asProcessingError("doc-3", errors.New("boom"), context.Background(), time.Minute)
	if got.Code != apperrors.ErrorOCRFailed {
		t.Errorf("code = %s", got.Code)
	}
	if !errors.Is(got, got.Cause) {
		t.Error("cause not unwrappable")
	}
}

func TestNewConsumerValidation(t *testing.T) {
	if _, err := NewConsumer(&ConsumerConfig{}); err == nil {
		t.Error("expected error for missing RedisURL")
	}
	if _, err := NewConsumer(&ConsumerConfig{RedisURL: "redis://localhost:6379"}); err == nil {
		t.Error("expected error for missing processor")
	}
}
