/**
 * Invoice chat: accountant Q&A grounded in an extraction result.
 *
 * The extraction JSON rides in the system prompt as context; the plan tier
 * picks how far the model may stray from the invoice at hand.
 */

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ChatClient answers a chat turn given a system prompt and prior history.
type ChatClient interface {
	Provider() string
	ChatCompletion(ctx context.Context, system string, history []ChatMessage, message string) (string, error)
}

var _ ChatClient = (*OpenAIClient)(nil)

// ChatMessage is one turn of conversation history.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

const starterChatPrompt = "You are a professional accountant. Answer only questions about the provided invoice's data and basic accounting. " +
	"Use only the extraction JSON you are given as context. " +
	"If the user asks generic accounting or other questions beyond this invoice, " +
	"explain what can and cannot be concluded from the available data, and what typical accounting treatment would be, " +
	"but do NOT tell the user to consult another accountant; you are the accountant in this conversation."

const proChatPrompt = "You are a professional accountant. You have extracted data for a specific invoice as structured JSON. " +
	"You may answer questions about this invoice AND general accounting questions (e.g. VAT rules, typical treatments), " +
	"using the extraction JSON as context when it is relevant. " +
	"If the question is unrelated to accounting or invoices, politely refuse to answer. " +
	"Do NOT tell the user to consult another accountant; you are the accountant in this conversation."

// chatSystemPrompt picks the tier prompt: pro and enterprise may answer
// general accounting questions, everything else is invoice-only.
func chatSystemPrompt(plan string) string {
	switch strings.ToLower(plan) {
	case "pro", "enterprise":
		return proChatPrompt
	default:
		return starterChatPrompt
	}
}

// InvoiceChat answers one question about an extracted invoice. The extraction
// payload is embedded verbatim in the system prompt; history turns with
// unknown roles are dropped by the client.
func InvoiceChat(ctx context.Context, client ChatClient, extraction json.RawMessage,
	message string, history []ChatMessage, plan string) (string, error) {
	if message == "" {
		return "", fmt.Errorf("message is required")
	}

	payload := string(extraction)
	var indented bytes.Buffer
	if err := json.Indent(&indented, extraction, "", "  "); err == nil {
		payload = indented.String()
	}

	system := chatSystemPrompt(plan) + "\n\nExtracted invoice data (JSON):\n" + payload
	answer, err := client.ChatCompletion(ctx, system, history, message)
	if err != nil {
		return "", fmt.Errorf("invoice chat failed: %w", err)
	}
	return answer, nil
}
