/**
 * OCR engine abstraction.
 *
 * Engines produce raw text segments for a single page image; layout
 * reconstruction happens downstream in internal/layout. Engines are injected
 * capabilities, not process-wide singletons, so the pipeline stays testable
 * and the service can switch engines per deployment.
 */

package ocr

import (
	"context"
	"fmt"

	"github.com/docuflow/ocr-service/internal/layout"
	"github.com/docuflow/ocr-service/internal/logging"
)

// Engine recognizes text segments on one page image.
type Engine interface {
	// Name identifies the engine in logs and stored metadata.
	Name() string
	// RecognizePage runs recognition on a single page image (PNG or JPEG
	// bytes) and returns the detected segments in engine order.
	RecognizePage(ctx context.Context, image []byte) ([]layout.Segment, error)
}

// Service wraps an engine with layout reconstruction and degradation logging.
type Service struct {
	engine Engine
	logger *logging.Logger
}

// NewService creates an OCR service around the given engine.
func NewService(engine Engine) *Service {
	return &Service{
		engine: engine,
		logger: logging.NewLogger("ocr"),
	}
}

// EngineName reports the underlying engine's identifier.
func (s *Service) EngineName() string {
	return s.engine.Name()
}

// ExtractPageText recognizes one page image and returns its layout-aware
// text. Recognition failures are returned; layout reconstruction never fails
// and degrades to a flat rendering when line clustering cannot be applied.
func (s *Service) ExtractPageText(ctx context.Context, page int, image []byte) (string, error) {
	segments, err := s.engine.RecognizePage(ctx, image)
	if err != nil {
		return "", fmt.Errorf("engine %s failed on page %d: %w", s.engine.Name(), page, err)
	}
	text, degraded := layout.Reconstruct(segments)
	if degraded {
		s.logger.Warn("Layout clustering degraded to flat ordering",
			"engine", s.engine.Name(), "page", page, "segments", len(segments))
	}
	return text, nil
}
