package engine

import (
	"time"

	"github.com/baalimago/screenbuddy/internal/llm"
)

// ConfigFileName is the json file within the config dir holding the
// Configurations.
const ConfigFileName = "screenbuddy.json"

// Busy policies decide what a trigger does while a run is already active.
const (
	BusyReject    = "reject"
	BusySupersede = "supersede"
)

// Configurations for the whole pipeline. Loaded from json on startup; the
// engine snapshots the value at trigger time so edits apply from the next
// run.
type Configurations struct {
	LLMProvider        string  `json:"llm-provider"`
	LLMEndpoint        string  `json:"llm-endpoint"`
	LLMAPIKey          string  `json:"llm-api-key"`
	LLMModel           string  `json:"llm-model"`
	LLMTemperature     float64 `json:"llm-temperature"`
	LLMMaxTokens       int     `json:"llm-max-tokens"`
	LLMTimeoutSeconds  int     `json:"llm-timeout-seconds"`
	SystemPrompt       string  `json:"system-prompt"`
	Hotkey             string  `json:"hotkey"`
	HotkeyDebounceMs   int     `json:"hotkey-debounce-ms"`
	ContextTurnLimit   int     `json:"context-turn-limit"`
	ContextTokenBudget int     `json:"context-token-budget"`
	BusyPolicy         string  `json:"busy-policy"`
	OCRLanguage        string  `json:"ocr-language"`
	CaptureDisplay     int     `json:"capture-display"`
	SpeechEnabled      bool    `json:"speech-enabled"`
	SpeechLanguage     string  `json:"speech-language"`
}

// Default configurations, written on first run.
var Default = Configurations{
	LLMProvider:       "custom",
	LLMEndpoint:       "http://localhost:11434/v1/chat/completions",
	LLMModel:          "llama3.1",
	LLMTemperature:    0.3,
	LLMMaxTokens:      4096,
	LLMTimeoutSeconds: 180,
	SystemPrompt: "You are a helpful desktop companion. The user shares text " +
		"captured from their screen, sometimes with a question about it. " +
		"Answer concisely and conversationally, your reply may be read aloud.",
	Hotkey:           "ctrl+shift+f",
	HotkeyDebounceMs: 1200,
	ContextTurnLimit: 20,
	BusyPolicy:       BusyReject,
	OCRLanguage:      "eng",
	SpeechEnabled:    true,
	SpeechLanguage:   "en",
}

// LLMConfig converts the flat file configuration into the completer config.
func (c Configurations) LLMConfig() llm.Config {
	return llm.Config{
		Provider:    c.LLMProvider,
		Endpoint:    c.LLMEndpoint,
		APIKey:      c.LLMAPIKey,
		Model:       c.LLMModel,
		Temperature: c.LLMTemperature,
		MaxTokens:   c.LLMMaxTokens,
		Timeout:     time.Duration(c.LLMTimeoutSeconds) * time.Second,
	}
}

// DebounceWindow is the hotkey refractory window.
func (c Configurations) DebounceWindow() time.Duration {
	return time.Duration(c.HotkeyDebounceMs) * time.Millisecond
}

func (c Configurations) supersedes() bool {
	return c.BusyPolicy == BusySupersede
}
