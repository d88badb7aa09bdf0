package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

type fakeChat struct {
	answer     string
	err        error
	gotSystem  string
	gotHistory []ChatMessage
	gotMessage string
}

func (f *fakeChat) Provider() string { return "fake" }

func (f *fakeChat) ChatCompletion(ctx context.Context, system string, history []ChatMessage, message string) (string, error) {
	f.gotSystem = system
	f.gotHistory = history
	f.gotMessage = message
	return f.answer, f.err
}

func TestInvoiceChat(t *testing.T) {
	fake := &fakeChat{answer: "The total is 120.00 BGN."}
	extraction := json.RawMessage(`{"amounts":{"total":120}}`)
	history := []ChatMessage{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}}

	answer, err := InvoiceChat(context.Background(), fake, extraction, "What is the total?", history, "starter")
	if err != nil {
		t.Fatalf("InvoiceChat: %v", err)
	}
	if answer != "The total is 120.00 BGN." {
		t.Errorf("answer = %q", answer)
	}
	if fake.gotMessage != "What is the total?" {
		t.Errorf("message = %q", fake.gotMessage)
	}
	if len(fake.gotHistory) != 2 {
		t.Errorf("history length = %d", len(fake.gotHistory))
	}
	// The extraction JSON rides indented inside the system prompt.
	if !strings.Contains(fake.gotSystem, `"total": 120`) {
		t.Errorf("system prompt missing extraction context:\n%s", fake.gotSystem)
	}
	if !strings.Contains(fake.gotSystem, "Use only the extraction JSON") {
		t.Errorf("starter plan should use the invoice-only prompt:\n%s", fake.gotSystem)
	}
}

func TestInvoiceChatRequiresMessage(t *testing.T) {
	fake := &fakeChat{answer: "x"}
	if _, err := InvoiceChat(context.Background(), fake, json.RawMessage(`{}`), "", nil, ""); err == nil {
		t.Error("expected error for empty message")
	}
}

func TestInvoiceChatPropagatesClientError(t *testing.T) {
	fake := &fakeChat{err: fmt.Errorf("rate limited")}
	_, err := InvoiceChat(context.Background(), fake, json.RawMessage(`{}`), "q", nil, "pro")
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("err = %v", err)
	}
}

func TestChatSystemPromptByPlan(t *testing.T) {
	tests := []struct {
		plan string
		want string
	}{
		{"starter", starterChatPrompt},
		{"", starterChatPrompt},
		{"unknown", starterChatPrompt},
		{"pro", proChatPrompt},
		{"Pro", proChatPrompt},
		{"enterprise", proChatPrompt},
	}
	for _, tc := range tests {
		if got := chatSystemPrompt(tc.plan); got != tc.want {
			t.Errorf("plan %q: wrong prompt selected", tc.plan)
		}
	}
}
