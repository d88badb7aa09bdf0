/**
 * Gemini provider for invoice extraction.
 */

package extract

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiClient extracts invoice fields through the Gemini API.
type GeminiClient struct {
	apiKey string
	model  string
}

// NewGeminiClient creates a Gemini-backed LLM client.
func NewGeminiClient(apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{apiKey: apiKey, model: model}, nil
}

// Provider implements LLMClient.
func (c *GeminiClient) Provider() string { return "gemini" }

// ExtractInvoiceJSON implements LLMClient.
func (c *GeminiClient) ExtractInvoiceJSON(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: c.apiKey})
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}

	res, err := client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, nil)
	if err != nil {
		return "", fmt.Errorf("Gemini generation failed: %w", err)
	}
	return res.Text(), nil
}

// ExtractInvoiceJSONFromImages implements VisionClient. Images ride inline as
// blobs in a single user message after the prompt.
func (c *GeminiClient) ExtractInvoiceJSONFromImages(ctx context.Context, images [][]byte, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: c.apiKey})
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}

	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, &genai.Part{Text: prompt})
	for _, img := range images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: imageMIMEType(img), Data: img},
		})
	}

	res, err := client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Role: genai.RoleUser, Parts: parts}}, nil)
	if err != nil {
		return "", fmt.Errorf("Gemini vision generation failed: %w", err)
	}
	return res.Text(), nil
}
