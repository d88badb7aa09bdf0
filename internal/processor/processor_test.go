package processor

import (
	"testing"

	"github.com/docuflow/ocr-service/internal/storage"
)

func TestDetectMimeType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"pdf", []byte("%PDF-1.7\nrest"), "application/pdf"},
		{"png", []byte("\x89PNG\r\n\x1a\nrest"), "image/png"},
		{"jpeg", []byte("\xff\xd8\xff\xe0rest"), "image/jpeg"},
		{"plain text", []byte("hello"), ""},
		{"empty", nil, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectMimeType(tc.data); got != tc.want {
				t.Errorf("detectMimeType() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsSupportedMime(t *testing.T) {
	for _, mime := range []string{"application/pdf", "image/png", "image/jpeg"} {
		if !isSupportedMime(mime) {
			t.Errorf("%s should be supported", mime)
		}
	}
	for _, mime := range []string{"", "text/plain", "application/zip"} {
		if isSupportedMime(mime) {
			t.Errorf("%s should not be supported", mime)
		}
	}
}

func TestNewDocumentProcessorValidation(t *testing.T) {
	if _, err := NewDocumentProcessor(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewDocumentProcessor(&Config{}); err == nil {
		t.Error("expected error for missing OCR service")
	}
}

func TestJoinPageTexts(t *testing.T) {
	pages := []storage.Page{
		{Page: 1, Text: "first page"},
		{Page: 2, Text: ""},
		{Page: 3, Text: "third page"},
	}
	got := joinPageTexts(pages)
	want := "first page\n\nthird page"
	if got != want {
		t.Errorf("joinPageTexts() = %q, want %q", got, want)
	}
}

func TestNewEmbeddingClientRequiresKey(t *testing.T) {
	if _, err := NewEmbeddingClient(""); err == nil {
		t.Error("expected error for empty API key")
	}
}
