/**
 * PDF rasterization via poppler's pdftoppm.
 *
 * Pages are rendered to PNG at a configurable DPI in a scratch directory and
 * read back in page order. Requires poppler-utils on the host.
 */

package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
)

// DefaultDPI is the render resolution when none is configured. 200 DPI keeps
// small invoice print legible for OCR without ballooning page images.
const DefaultDPI = 200

// Rasterizer renders PDF pages to PNG images.
type Rasterizer struct {
	dpi int
}

// NewRasterizer creates a rasterizer rendering at the given DPI, or
// DefaultDPI when dpi is zero or negative.
func NewRasterizer(dpi int) *Rasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Rasterizer{dpi: dpi}
}

// RenderPages converts PDF bytes into one PNG per page, in page order.
func (r *Rasterizer) RenderPages(ctx context.Context, pdfData []byte) ([][]byte, error) {
	dir, err := os.MkdirTemp("", "docuflow-raster-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	inputPath := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(inputPath, pdfData, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write PDF to scratch: %w", err)
	}

	outPrefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-r", strconv.Itoa(r.dpi),
		inputPath,
		outPrefix,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		if _, lookErr := exec.LookPath("pdftoppm"); lookErr != nil {
			return nil, fmt.Errorf("pdftoppm not found; install poppler-utils: %w", lookErr)
		}
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, string(out))
	}

	// pdftoppm zero-pads page numbers, so lexical order is page order.
	matches, err := filepath.Glob(outPrefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to list rendered pages: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages")
	}
	sort.Strings(matches)

	pages := make([][]byte, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read rendered page %s: %w", filepath.Base(path), err)
		}
		pages = append(pages, data)
	}
	return pages, nil
}
