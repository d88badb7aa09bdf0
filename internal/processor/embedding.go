/**
 * Embedding client for invoice similarity indexing.
 *
 * Calls a Voyage-compatible embeddings API (voyage-3, 1024 dimensions). The
 * client is optional: without an API key the pipeline skips similarity
 * indexing entirely.
 */

package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docuflow/ocr-service/internal/logging"
)

const (
	embeddingModel   = "voyage-3"
	embeddingBaseURL = "https://api.voyageai.com/v1/embeddings"
	// Approximate input cap; the API enforces token limits.
	embeddingMaxChars = 16000
)

// EmbeddingClient generates text embeddings for document similarity search.
type EmbeddingClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

// NewEmbeddingClient creates an embedding client.
func NewEmbeddingClient(apiKey string) (*EmbeddingClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}
	return &EmbeddingClient{
		apiKey:  apiKey,
		baseURL: embeddingBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logging.NewLogger("embedding"),
	}, nil
}

// GenerateEmbedding embeds the given text. Overlong input is truncated.
func (e *EmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	if len(text) > embeddingMaxChars {
		e.logger.Warn("Truncating embedding input", "chars", len(text), "max", embeddingMaxChars)
		text = text[:embeddingMaxChars]
	}

	reqBody, err := json.Marshal(embeddingRequest{Input: text, Model: embeddingModel})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("embedding API returned no data")
	}
	return parsed.Data[0].Embedding, nil
}
