package convo

import (
	"strings"
	"testing"

	"github.com/baalimago/screenbuddy/internal/models"
)

func TestAssemble_Order(t *testing.T) {
	history := []models.Message{
		{Role: "user", Content: "older question"},
		{Role: "assistant", Content: "older answer"},
	}
	chat := Assemble("be helpful", history, "Error code 0x80", "")

	if len(chat.Messages) != 4 {
		t.Fatalf("expected 4 messages, got: %v", len(chat.Messages))
	}
	if chat.Messages[0].Role != "system" || chat.Messages[0].Content != "be helpful" {
		t.Fatalf("expected system directive first, got: %+v", chat.Messages[0])
	}
	if chat.Messages[1].Content != "older question" || chat.Messages[2].Content != "older answer" {
		t.Fatal("expected history in insertion order, oldest first")
	}
	last := chat.Messages[3]
	if last.Role != "user" || last.Content != "Error code 0x80" {
		t.Fatalf("expected extracted text as the new user turn, got: %+v", last)
	}
}

func TestAssemble_IntentLeadsExtractedText(t *testing.T) {
	chat := Assemble("", nil, "some screen text", "summarize this")
	content := chat.Messages[0].Content

	intentIdx := strings.Index(content, "summarize this")
	extractedIdx := strings.Index(content, "some screen text")
	if intentIdx == -1 || extractedIdx == -1 {
		t.Fatalf("expected both intent and extracted text in user turn, got: %q", content)
	}
	if intentIdx > extractedIdx {
		t.Fatalf("expected intent to lead as primary instruction, got: %q", content)
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	history := []models.Message{{Role: "user", Content: "q"}, {Role: "assistant", Content: "a"}}
	first := Assemble("sys", history, "text", "intent")
	second := Assemble("sys", history, "text", "intent")
	if len(first.Messages) != len(second.Messages) {
		t.Fatal("expected identical assembly for identical input")
	}
	for i := range first.Messages {
		if first.Messages[i] != second.Messages[i] {
			t.Fatalf("message %v differs between identical assemblies", i)
		}
	}
}

func TestAssemble_NoSystemPrompt(t *testing.T) {
	chat := Assemble("", nil, "", "just a question")
	if len(chat.Messages) != 1 {
		t.Fatalf("expected single user message, got: %v", len(chat.Messages))
	}
	if _, err := chat.FirstSystemMessage(); err == nil {
		t.Fatal("expected no system message when prompt is empty")
	}
}

func TestUserContent(t *testing.T) {
	if got := UserContent("", "ask"); got != "ask" {
		t.Fatalf("expected bare intent, got: %q", got)
	}
	if got := UserContent("seen", ""); got != "seen" {
		t.Fatalf("expected bare extracted text, got: %q", got)
	}
	both := UserContent("seen", "ask")
	if !strings.HasPrefix(both, "ask") || !strings.Contains(both, "seen") {
		t.Fatalf("expected intent first then quoted context, got: %q", both)
	}
}
