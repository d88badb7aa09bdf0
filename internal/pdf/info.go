/**
 * PDF inspection helpers.
 */

package pdf

import (
	"bytes"
	"fmt"

	"rsc.io/pdf"
)

// PageCount parses the PDF structure and returns the number of pages. The
// parser panics on malformed cross-reference tables, so recovery converts
// that into a normal error.
func PageCount(pdfData []byte) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			count, err = 0, fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse PDF: %w", err)
	}
	return reader.NumPage(), nil
}

// IsPDF reports whether the data carries the PDF magic header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}
