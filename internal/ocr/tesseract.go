/**
 * Tesseract engine - offline recognition via gosseract.
 *
 * Word-level bounding boxes feed layout reconstruction. If box iteration is
 * unavailable (older liblept builds) the engine falls back to plain text as a
 * single segment without geometry, which the layout core renders flat.
 */

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/docuflow/ocr-service/internal/layout"
)

// TesseractEngine runs local OCR through the Tesseract C API.
type TesseractEngine struct {
	language string
}

// TesseractConfig holds Tesseract engine configuration.
type TesseractConfig struct {
	Language string
}

// NewTesseractEngine creates a local Tesseract engine.
func NewTesseractEngine(cfg *TesseractConfig) (*TesseractEngine, error) {
	lang := cfg.Language
	if lang == "" {
		lang = "eng"
	}
	return &TesseractEngine{language: lang}, nil
}

// Name implements Engine.
func (t *TesseractEngine) Name() string {
	return "tesseract"
}

// RecognizePage implements Engine. A fresh client per call keeps the engine
// safe for concurrent pages; gosseract clients are not goroutine-safe.
func (t *TesseractEngine) RecognizePage(ctx context.Context, image []byte) ([]layout.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return nil, fmt.Errorf("failed to set language %q: %w", t.language, err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return t.recognizeFlat(client)
	}

	segments := make([]layout.Segment, 0, len(boxes))
	for _, b := range boxes {
		minX, minY := float64(b.Box.Min.X), float64(b.Box.Min.Y)
		maxX, maxY := float64(b.Box.Max.X), float64(b.Box.Max.Y)
		segments = append(segments, layout.Segment{
			Polygon: []layout.Point{
				{X: minX, Y: minY},
				{X: maxX, Y: minY},
				{X: maxX, Y: maxY},
				{X: minX, Y: maxY},
			},
			Text:       b.Word,
			Confidence: b.Confidence / 100.0,
		})
	}
	return segments, nil
}

// recognizeFlat extracts plain text as one segment without geometry.
func (t *TesseractEngine) recognizeFlat(client *gosseract.Client) ([]layout.Segment, error) {
	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract recognition failed: %w", err)
	}
	if text == "" {
		return nil, nil
	}
	return []layout.Segment{{Text: text}}, nil
}
