/**
 * OpenAI-compatible chat completions client.
 *
 * Serves three concerns behind one connection: text extraction (LLMClient),
 * vision extraction from page images (VisionClient), and invoice Q&A
 * (ChatClient). Each concern has its own model so the expensive vision model
 * is not paid for plain chat.
 */

package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOpenAIBaseURL     = "https://api.openai.com/v1"
	defaultOpenAIModel       = "gpt-4.1-mini"
	defaultOpenAIVisionModel = "gpt-5.2"
	defaultOpenAIChatModel   = "gpt-4o-mini"

	extractionSystemPrompt = "You are an invoice extraction engine. " +
		"Follow the user's instructions exactly and return ONLY valid JSON."
)

// OpenAIConfig holds OpenAI client configuration. Empty model fields fall
// back to per-concern defaults.
type OpenAIConfig struct {
	APIKey      string
	Model       string // text extraction
	VisionModel string // image extraction
	ChatModel   string // invoice chat
}

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	apiKey      string
	model       string
	visionModel string
	chatModel   string
	baseURL     string
	httpClient  *http.Client
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	Temperature         float64       `json:"temperature"`
	MaxCompletionTokens int           `json:"max_completion_tokens"`
}

// chatMessage content is either a plain string or a part list for vision
// requests.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLPart `json:"image_url,omitempty"`
}

type imageURLPart struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewOpenAIClient creates a chat completions client.
func NewOpenAIClient(cfg *OpenAIConfig) (*OpenAIClient, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	client := &OpenAIClient{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		visionModel: cfg.VisionModel,
		chatModel:   cfg.ChatModel,
		baseURL:     defaultOpenAIBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	if client.model == "" {
		client.model = defaultOpenAIModel
	}
	if client.visionModel == "" {
		client.visionModel = defaultOpenAIVisionModel
	}
	if client.chatModel == "" {
		client.chatModel = defaultOpenAIChatModel
	}
	return client, nil
}

// Provider implements LLMClient.
func (c *OpenAIClient) Provider() string { return "openai" }

// ExtractInvoiceJSON implements LLMClient.
func (c *OpenAIClient) ExtractInvoiceJSON(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, &chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:         0.0,
		MaxCompletionTokens: 512,
	})
}

// ExtractInvoiceJSONFromImages implements VisionClient. Page images travel as
// base64 data URLs alongside the prompt in one user message.
func (c *OpenAIClient) ExtractInvoiceJSONFromImages(ctx context.Context, images [][]byte, prompt string) (string, error) {
	parts := make([]contentPart, 0, len(images)+1)
	parts = append(parts, contentPart{Type: "text", Text: prompt})
	for _, img := range images {
		url := fmt.Sprintf("data:%s;base64,%s",
			imageMIMEType(img), base64.StdEncoding.EncodeToString(img))
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURLPart{URL: url}})
	}

	return c.complete(ctx, &chatRequest{
		Model: c.visionModel,
		Messages: []chatMessage{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: parts},
		},
		Temperature:         0.0,
		MaxCompletionTokens: 1024,
	})
}

// ChatCompletion implements ChatClient.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, system string, history []ChatMessage, message string) (string, error) {
	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: system})
	for _, h := range history {
		if h.Role == "user" || h.Role == "assistant" {
			messages = append(messages, chatMessage{Role: h.Role, Content: h.Content})
		}
	}
	messages = append(messages, chatMessage{Role: "user", Content: message})

	answer, err := c.complete(ctx, &chatRequest{
		Model:               c.chatModel,
		Messages:            messages,
		Temperature:         0.3,
		MaxCompletionTokens: 1024,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (c *OpenAIClient) complete(ctx context.Context, request *chatRequest) (string, error) {
	reqBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("chat completion failed: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("chat completion returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
