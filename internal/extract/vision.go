/**
 * Vision invoice extraction: page images straight to a multimodal model,
 * skipping OCR entirely. Returns the rule-extraction shape so API consumers
 * handle both paths with one decoder.
 */

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// VisionClient extracts invoice fields directly from page images.
type VisionClient interface {
	Provider() string
	ExtractInvoiceJSONFromImages(ctx context.Context, images [][]byte, prompt string) (string, error)
}

var (
	_ VisionClient = (*OpenAIClient)(nil)
	_ VisionClient = (*GeminiClient)(nil)
)

const visionPrompt = `The following image(s) show an invoice document. Extract the requested fields from the image(s).

Requirements:
- Return STRICT JSON only, no explanation or additional text.
- Use null for missing or unknown fields. Use null for any entire nested object if all its fields are missing.
- Do NOT invent or guess values not explicitly present in the document.
- Normalize: dates as YYYY-MM-DD; numbers with optional decimal point, no thousands separators; currency as ISO codes (EUR, USD, BGN).
- confidenceScores: For each extracted value you are confident about, add a key to confidenceScores with a number from 0.0 (not confident) to 1.0 (very confident). Use keys such as: supplierName, supplierAddress, supplierEik, supplierVat, clientName, clientEik, clientVat, invoiceNumber, invoiceDate, serviceDescription, quantity, unitPrice, serviceTotal, accountingAccount, subtotal, vat, total, currency. Only include keys for fields you actually extracted; use 1.0 when the value was clearly visible and unambiguous, lower values when unclear or partially legible.

Expected JSON format (use exactly these keys):
{
  "invoiceNumber": string|null,
  "invoiceDate": string|null,
  "supplier": { "name": string|null, "address": string|null, "eik": string|null, "vat": string|null } | null,
  "client": { "name": string|null, "eik": string|null, "vat": string|null } | null,
  "service": { "description": string|null, "quantity": string|null, "unitPrice": number|null, "total": number|null } | null,
  "accountingAccount": string|null,
  "amounts": { "subtotal": number|null, "vat": number|null, "total": number|null, "currency": string|null } | null,
  "confidenceScores": { string: number } (e.g. "supplierName": 0.95, "invoiceNumber": 1.0, "total": 0.9; 0.0-1.0, only for fields you extracted)
}`

// ExtractInvoiceVision sends page images to the vision model and decodes the
// answer. Unlike the text path this returns errors: callers surface vision
// failures instead of silently reporting an empty invoice.
func ExtractInvoiceVision(ctx context.Context, client VisionClient, images [][]byte) (RuleExtraction, error) {
	var result RuleExtraction
	if len(images) == 0 {
		return result, fmt.Errorf("no page images to extract from")
	}

	raw, err := client.ExtractInvoiceJSONFromImages(ctx, images, visionPrompt)
	if err != nil {
		return result, fmt.Errorf("vision extraction failed: %w", err)
	}
	if err := json.Unmarshal([]byte(stripMarkdownFence(raw)), &result); err != nil {
		return result, fmt.Errorf("vision model returned malformed JSON: %w", err)
	}
	return result, nil
}

// imageMIMEType identifies the image format from magic bytes. Rasterized
// pages are PNG; uploads may also be JPEG.
func imageMIMEType(data []byte) string {
	if bytes.HasPrefix(data, []byte("\xff\xd8\xff")) {
		return "image/jpeg"
	}
	return "image/png"
}
