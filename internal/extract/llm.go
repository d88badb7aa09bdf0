/**
 * LLM-backed invoice field extraction.
 *
 * The client is pluggable: OpenAI-compatible chat completions, Gemini, or a
 * dummy that returns all-null fields so the service runs self-hosted without
 * any provider configured.
 */

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/docuflow/ocr-service/internal/logging"
)

// LLMClient returns a JSON string with invoice fields extracted from the
// given prompt.
type LLMClient interface {
	Provider() string
	ExtractInvoiceJSON(ctx context.Context, prompt string) (string, error)
}

// LLMConfig selects and configures the LLM provider.
type LLMConfig struct {
	Provider          string // "openai", "gemini", or "dummy"
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIVisionModel string
	OpenAIChatModel   string
	GeminiAPIKey      string
	GeminiModel       string
}

// NewLLMClient builds the configured provider client. An empty provider
// falls back to OpenAI when a key is present, else to the dummy client.
func NewLLMClient(cfg *LLMConfig) (LLMClient, error) {
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		if cfg.OpenAIAPIKey != "" {
			provider = "openai"
		} else {
			provider = "dummy"
		}
	}

	switch provider {
	case "openai":
		return NewOpenAIClient(&OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			VisionModel: cfg.OpenAIVisionModel,
			ChatModel:   cfg.OpenAIChatModel,
		})
	case "gemini":
		return NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	case "dummy":
		return &DummyLLMClient{logger: logging.NewLogger("llm")}, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// DummyLLMClient returns all-null invoice fields. It keeps the API contract
// intact when no real provider is configured.
type DummyLLMClient struct {
	logger *logging.Logger
}

// Provider implements LLMClient.
func (d *DummyLLMClient) Provider() string { return "dummy" }

// ExtractInvoiceJSON implements LLMClient.
func (d *DummyLLMClient) ExtractInvoiceJSON(ctx context.Context, prompt string) (string, error) {
	if d.logger != nil {
		d.logger.Warn("Dummy LLM client in use; returning empty invoice fields")
	}
	return `{"supplierName":null,"supplierVat":null,"invoiceNumber":null,"invoiceDate":null,"currency":null,"netAmount":null,"vatAmount":null,"totalAmount":null}`, nil
}

const promptTemplate = `You are an AI assistant extracting invoice fields from OCR text.

Requirements:
- Return STRICT JSON only, no explanation or additional text.
- Use null for missing or unknown fields.
- Do NOT invent or guess values not explicitly present in the text.
- Normalize:
  - Dates: use YYYY-MM-DD or null.
  - Numbers: use digits with optional decimal point, no thousands separators.
  - Currency: use ISO codes like EUR, USD, BGN when present, otherwise null.

Expected JSON format:
{
  "supplierName": string|null,
  "supplierVat": string|null,
  "invoiceNumber": string|null,
  "invoiceDate": string|null,
  "currency": string|null,
  "netAmount": number|null,
  "vatAmount": number|null,
  "totalAmount": number|null
}

OCR text:
"""%s"""`

// BuildPrompt renders the extraction prompt for the given OCR text.
func BuildPrompt(ocrText string) string {
	return fmt.Sprintf(promptTemplate, ocrText)
}

// ExtractInvoiceFields calls the client and decodes its JSON answer. Any
// failure, including malformed model output, degrades to all-null fields so
// the response stays deterministic for callers.
func ExtractInvoiceFields(ctx context.Context, client LLMClient, ocrText string) InvoiceFields {
	logger := logging.NewLogger("extract")

	raw, err := client.ExtractInvoiceJSON(ctx, BuildPrompt(ocrText))
	if err != nil {
		logger.Error("LLM extraction failed; returning empty fields",
			"provider", client.Provider(), "error", err)
		return InvoiceFields{}
	}

	var fields InvoiceFields
	if err := json.Unmarshal([]byte(stripMarkdownFence(raw)), &fields); err != nil {
		logger.Error("LLM returned malformed JSON; returning empty fields",
			"provider", client.Provider(), "error", err)
		return InvoiceFields{}
	}
	return fields
}

// stripMarkdownFence unwraps content from a ```json ... ``` or ``` ... ```
// fence; models add one despite instructions.
func stripMarkdownFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.Index(s, "\n"); nl != -1 {
		s = s[nl+1:]
	}
	if idx := strings.LastIndex(strings.TrimRight(s, " \t\n"), "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
