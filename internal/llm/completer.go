// Package llm streams chat completions from OpenAI-compatible endpoints.
// The wire format is the common chat-completion SSE shape: a POST with
// {model, messages, temperature, stream: true}, answered by 'data: ' lines
// terminated by a '[DONE]' marker.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/screenbuddy/internal/models"
)

var dataPrefix = []byte("data: ")

// StreamCompleter issues streaming completion requests. Provider variants
// embed it and configure URL, key and model in their Setup.
type StreamCompleter struct {
	Model       string
	Temperature *float64
	MaxTokens   *int
	URL         string
	apiKey      string
	client      *http.Client
	debug       bool
}

// Configure the underlying http client. The timeout bounds the whole
// request including the streaming body, so on expiry mid-stream the reader
// surfaces a Timeout fault.
func (s *StreamCompleter) Configure(url, apiKey string, timeout time.Duration) {
	s.URL = url
	s.apiKey = apiKey
	s.client = &http.Client{Timeout: timeout}
	if misc.Truthy(os.Getenv("DEBUG")) {
		s.debug = true
	}
}

// StreamCompletions taking the messages as prompt conversation. Returns the
// events from the chat model. Fails fast with a classified fault on
// connection or auth errors; mid-stream failures arrive as error events.
func (s *StreamCompleter) StreamCompletions(ctx context.Context, chat models.Chat) (chan models.CompletionEvent, error) {
	req, err := s.createRequest(ctx, chat)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	res, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, models.NewFault(models.Timeout, "request timed out before any response", err)
		}
		return nil, models.NewFault(models.ConnectionFailed, fmt.Sprintf("failed to reach endpoint: '%v'", s.URL), err)
	}
	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()
		return nil, models.Faultf(models.AuthFailed,
			"endpoint rejected the configured API key (status: %v). Check the llm-api-key configuration. Body: %v", res.Status, string(body))
	}
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()
		return nil, models.NewFault(models.ConnectionFailed,
			fmt.Sprintf("unexpected status code: %v, body: %v", res.Status, string(body)), nil)
	}
	return s.handleStreamResponse(ctx, res), nil
}

func (s *StreamCompleter) createRequest(ctx context.Context, chat models.Chat) (*http.Request, error) {
	reqData := completionRequest{
		Model:       s.Model,
		Messages:    wireMessages(chat.Messages),
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
		Stream:      true,
	}
	if s.debug {
		ancli.PrintOK(fmt.Sprintf("completion request: %v\n", debug.IndentedJsonFmt(reqData)))
	}
	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %v", s.apiKey))
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Connection", "keep-alive")
	return req, nil
}

func (s *StreamCompleter) handleStreamResponse(ctx context.Context, res *http.Response) chan models.CompletionEvent {
	outChan := make(chan models.CompletionEvent)
	go func() {
		br := bufio.NewReader(res.Body)
		defer func() {
			res.Body.Close()
			close(outChan)
		}()
		for {
			if ctx.Err() != nil {
				return
			}
			line, err := br.ReadBytes('\n')
			if err != nil {
				if errors.Is(err, io.EOF) {
					// Endpoint closed without a [DONE] marker, treat as
					// graceful end of stream
					if len(bytes.TrimSpace(line)) == 0 {
						return
					}
				} else if ctx.Err() != nil {
					return
				} else if isTimeout(err) {
					s.emit(ctx, outChan, models.NewFault(models.Timeout, "stream timed out mid-response", err))
					return
				} else {
					s.emit(ctx, outChan, models.NewFault(models.ConnectionFailed, "stream broke mid-response", err))
					return
				}
			}
			ev := s.handleStreamChunk(line)
			if !s.emit(ctx, outChan, ev) {
				return
			}
			if _, isStop := ev.(models.StopEvent); isStop {
				return
			}
			if _, isErr := ev.(error); isErr {
				return
			}
		}
	}()

	return outChan
}

// emit ev without blocking forever on an abandoned channel. Returns false
// when the consumer is gone.
func (s *StreamCompleter) emit(ctx context.Context, out chan models.CompletionEvent, ev models.CompletionEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *StreamCompleter) handleStreamChunk(line []byte) models.CompletionEvent {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return models.NoopEvent{}
	}
	if !bytes.HasPrefix(line, dataPrefix) {
		// SSE comments and event names carry no completion data
		return models.NoopEvent{}
	}
	payload := bytes.TrimSpace(bytes.TrimPrefix(line, dataPrefix))
	if string(payload) == "[DONE]" {
		return models.StopEvent{}
	}

	if s.debug {
		ancli.PrintOK(fmt.Sprintf("chunk: %+v\n", string(payload)))
	}
	var chunk chatCompletionChunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return models.NewFault(models.MalformedStream,
			fmt.Sprintf("failed to parse stream chunk: '%v'", string(payload)), err)
	}
	if len(chunk.Choices) == 0 {
		return models.NoopEvent{}
	}
	content := chunk.Choices[0].Delta.Content
	if content == "" {
		return models.NoopEvent{}
	}
	return content
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	// http.Client timeout errors are url.Error wrapping a string, match on
	// the canonical phrasing as fallback
	return err != nil && strings.Contains(err.Error(), "Client.Timeout")
}

// CountInputTokens estimates the amount of input tokens in the chat.
func (s *StreamCompleter) CountInputTokens(ctx context.Context, chat models.Chat) (int, error) {
	var count int
	for _, m := range chat.Messages {
		count += len(strings.Fields(m.Content))
	}
	return int(float64(count) * 1.1), nil
}
