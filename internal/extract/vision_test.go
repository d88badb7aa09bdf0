package extract

import (
	"context"
	"fmt"
	"testing"
)

type fakeVision struct {
	response string
	err      error
	gotCount int
	prompt   string
}

func (f *fakeVision) Provider() string { return "fake" }

func (f *fakeVision) ExtractInvoiceJSONFromImages(ctx context.Context, images [][]byte, prompt string) (string, error) {
	f.gotCount = len(images)
	f.prompt = prompt
	return f.response, f.err
}

func TestExtractInvoiceVision(t *testing.T) {
	fake := &fakeVision{response: "```json\n" + `{
		"invoiceNumber": "100",
		"supplier": {"name": "Acme Ltd", "address": null, "eik": null, "vat": null},
		"amounts": {"subtotal": 100, "vat": 20, "total": 120, "currency": "BGN"},
		"confidenceScores": {"invoiceNumber": 1.0, "total": 0.9}
	}` + "\n```"}

	result, err := ExtractInvoiceVision(context.Background(), fake, [][]byte{{0x89}, {0x89}})
	if err != nil {
		t.Fatalf("ExtractInvoiceVision: %v", err)
	}
	if fake.gotCount != 2 {
		t.Errorf("images passed = %d, want 2", fake.gotCount)
	}
	if fake.prompt == "" {
		t.Error("expected a non-empty prompt")
	}
	if result.InvoiceNumber == nil || *result.InvoiceNumber != "100" {
		t.Errorf("invoiceNumber = %v", result.InvoiceNumber)
	}
	if result.Supplier.Name == nil || *result.Supplier.Name != "Acme Ltd" {
		t.Errorf("supplier.name = %v", result.Supplier.Name)
	}
	if result.Amounts.Total == nil || *result.Amounts.Total != 120 {
		t.Errorf("amounts.total = %v", result.Amounts.Total)
	}
	if result.ConfidenceScores["invoiceNumber"] != 1.0 {
		t.Errorf("confidenceScores = %v", result.ConfidenceScores)
	}
}

func TestExtractInvoiceVisionErrors(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeVision
		images [][]byte
	}{
		{"no images", &fakeVision{response: "{}"}, nil},
		{"client failure", &fakeVision{err: fmt.Errorf("model unavailable")}, [][]byte{{1}}},
		{"malformed JSON", &fakeVision{response: "not json"}, [][]byte{{1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ExtractInvoiceVision(context.Background(), tc.client, tc.images); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestImageMIMEType(t *testing.T) {
	if got := imageMIMEType([]byte("\xff\xd8\xffrest")); got != "image/jpeg" {
		t.Errorf("jpeg magic: got %s", got)
	}
	if got := imageMIMEType([]byte("\x89PNG\r\n\x1a\n")); got != "image/png" {
		t.Errorf("png magic: got %s", got)
	}
}
