package llm

import (
	"testing"
	"time"

	"github.com/baalimago/screenbuddy/internal/models"
)

func TestCustom_Conformance(t *testing.T) {
	c := &Custom{cfg: Config{Endpoint: "http://127.0.0.1:1", Timeout: 10 * time.Second}}
	if err := c.Setup(); err != nil {
		t.Fatalf("unexpected setup err: %v", err)
	}
	models.StreamCompleter_Test(t, c)
}

func TestNew_Custom_RequiresEndpoint(t *testing.T) {
	_, err := New(Config{Provider: "custom"})
	if err == nil {
		t.Fatal("expected error when custom provider has no endpoint")
	}
}

func TestNew_OpenAI_RequiresKey(t *testing.T) {
	_, err := New(Config{Provider: "openai"})
	if err == nil {
		t.Fatal("expected error when openai provider has no key")
	}
	if kind, ok := models.KindOf(err); !ok || kind != models.AuthFailed {
		t.Fatalf("expected auth_failed fault for missing key, got: %v", err)
	}
}

func TestNew_OpenAI_Defaults(t *testing.T) {
	got, err := New(Config{Provider: "openai", APIKey: "k", Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	o, ok := got.(*OpenAI)
	if !ok {
		t.Fatalf("expected *OpenAI, got: %T", got)
	}
	if o.URL != openAIChatURL {
		t.Fatalf("expected default openai URL, got: %v", o.URL)
	}
	if o.Model != defaultChatModel {
		t.Fatalf("expected default model, got: %v", o.Model)
	}
}

func TestNew_Ollama_NoKeyNeeded(t *testing.T) {
	got, err := New(Config{Provider: "ollama", Model: "llama3", Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	o := got.(*Ollama)
	if o.URL != ollamaChatURL {
		t.Fatalf("expected default ollama URL, got: %v", o.URL)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "skynet"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNew_EmptyProviderIsCustom(t *testing.T) {
	got, err := New(Config{Endpoint: "http://localhost:1234/v1/chat/completions", Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := got.(*Custom); !ok {
		t.Fatalf("expected *Custom for empty provider, got: %T", got)
	}
}
