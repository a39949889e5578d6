package models

import (
	"context"
	"errors"
	"time"
)

// Chat is an ordered conversation passed to a StreamCompleter. The message
// order is significant and must be preserved all the way to the wire.
type Chat struct {
	Created  time.Time `json:"created,omitempty"`
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
}

// Message is one conversation turn. Immutable once appended to a
// conversation context.
type Message struct {
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	TokenEstimate int       `json:"token_estimate,omitempty"`
}

// CompletionEvent is one event from a completion stream. It's either a
// string chunk, an error, a NoopEvent or a StopEvent.
type CompletionEvent any

// NoopEvent is a stream event which carries no information, such as an
// empty delta or a keepalive line. Consumers should skip it.
type NoopEvent struct{}

// StopEvent marks the end of a completion stream, the '[DONE]' marker in
// the OpenAI-compatible wire format.
type StopEvent struct{}

// StreamCompleter streams chat completions from some LLM provider.
type StreamCompleter interface {
	// Setup the completer. Returns error on invalid configuration, such
	// as a missing API key for providers which require one.
	Setup() error

	// StreamCompletions for the given chat. The returned channel yields
	// CompletionEvents until a StopEvent, an error event, or channel
	// close. The stream is not restartable and must be drained or
	// abandoned via ctx cancel to release the underlying connection.
	StreamCompletions(ctx context.Context, chat Chat) (chan CompletionEvent, error)

	// CountInputTokens estimates the amount of input tokens in the chat.
	CountInputTokens(ctx context.Context, chat Chat) (int, error)
}

// FirstSystemMessage returns the first encountered Message with role 'system'
func (c *Chat) FirstSystemMessage() (Message, error) {
	for _, msg := range c.Messages {
		if msg.Role == "system" {
			return msg, nil
		}
	}
	return Message{}, errors.New("failed to find any system message")
}

func (c *Chat) FirstUserMessage() (Message, error) {
	for _, msg := range c.Messages {
		if msg.Role == "user" {
			return msg, nil
		}
	}
	return Message{}, errors.New("failed to find any user message")
}

func (c *Chat) LastOfRole(role string) (Message, int, error) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		msg := c.Messages[i]
		if msg.Role == role {
			return msg, i, nil
		}
	}
	return Message{}, -1, errors.New("failed to find any " + role + " message")
}
