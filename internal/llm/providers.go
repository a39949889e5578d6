package llm

import (
	"fmt"
	"time"

	"github.com/baalimago/screenbuddy/internal/models"
)

// Config is the immutable per-run snapshot of the LLM configuration.
type Config struct {
	Provider    string
	Endpoint    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

const (
	openAIChatURL    = "https://api.openai.com/v1/chat/completions"
	ollamaChatURL    = "http://localhost:11434/v1/chat/completions"
	defaultChatModel = "gpt-4.1-mini"
)

// New creates the StreamCompleter variant for cfg.Provider. All variants
// talk the same chat-completion wire format; they differ only in default
// endpoint and key requirements.
func New(cfg Config) (models.StreamCompleter, error) {
	var completer models.StreamCompleter
	switch cfg.Provider {
	case "custom", "":
		completer = &Custom{cfg: cfg}
	case "openai":
		completer = &OpenAI{cfg: cfg}
	case "ollama":
		completer = &Ollama{cfg: cfg}
	default:
		return nil, fmt.Errorf("unknown llm provider: '%v'", cfg.Provider)
	}
	if err := completer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup provider '%v': %w", cfg.Provider, err)
	}
	return completer, nil
}

// Custom talks to any OpenAI-compatible endpoint, local inference servers
// included. The endpoint comes straight from configuration.
type Custom struct {
	StreamCompleter
	cfg Config
}

func (c *Custom) Setup() error {
	if c.cfg.Endpoint == "" {
		return fmt.Errorf("llm-endpoint is not configured for provider 'custom'")
	}
	c.configureFrom(c.cfg, c.cfg.Endpoint)
	return nil
}

// OpenAI targets api.openai.com unless the endpoint is overridden, and
// requires an API key.
type OpenAI struct {
	StreamCompleter
	cfg Config
}

func (o *OpenAI) Setup() error {
	if o.cfg.APIKey == "" {
		return models.Faultf(models.AuthFailed, "llm-api-key is not configured, required for provider 'openai'")
	}
	url := o.cfg.Endpoint
	if url == "" {
		url = openAIChatURL
	}
	o.configureFrom(o.cfg, url)
	if o.Model == "" {
		o.Model = defaultChatModel
	}
	return nil
}

// Ollama targets a local ollama server. No key required.
type Ollama struct {
	StreamCompleter
	cfg Config
}

func (o *Ollama) Setup() error {
	url := o.cfg.Endpoint
	if url == "" {
		url = ollamaChatURL
	}
	o.configureFrom(o.cfg, url)
	return nil
}

func (s *StreamCompleter) configureFrom(cfg Config, url string) {
	s.Configure(url, cfg.APIKey, cfg.Timeout)
	s.Model = cfg.Model
	temp := cfg.Temperature
	s.Temperature = &temp
	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		s.MaxTokens = &maxTokens
	}
}
