// Package engine orchestrates the capture → extract → compose → stream →
// finalize pipeline. At most one run is active at a time and only the engine
// mutates the conversation context.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/screenbuddy/internal/capture"
	"github.com/baalimago/screenbuddy/internal/convo"
	"github.com/baalimago/screenbuddy/internal/llm"
	"github.com/baalimago/screenbuddy/internal/models"
	"github.com/baalimago/screenbuddy/internal/ocr"
	"github.com/baalimago/screenbuddy/internal/tts"
)

// Engine drives pipeline runs over its collaborators. Collaborators are
// interfaces so presentation and platform concerns stay out of this package.
type Engine struct {
	capturer  capture.Provider
	extractor ocr.Extractor
	speaker   tts.Speaker
	convo     *convo.Context

	// completerFactory builds a fresh completer per run from the run's
	// config snapshot, so endpoint edits apply without restarts.
	completerFactory func(Configurations) (models.StreamCompleter, error)

	mu        sync.Mutex
	cfg       Configurations
	active    *Run
	observers []Subscriber
}

// New creates an Engine. The speaker may be nil to disable speech entirely.
func New(cfg Configurations, capturer capture.Provider, extractor ocr.Extractor, speaker tts.Speaker) *Engine {
	return &Engine{
		capturer:  capturer,
		extractor: extractor,
		speaker:   speaker,
		convo:     convo.New(cfg.ContextTurnLimit, cfg.ContextTokenBudget),
		cfg:       cfg,
		completerFactory: func(c Configurations) (models.StreamCompleter, error) {
			return llm.New(c.LLMConfig())
		},
	}
}

// SetConfigurations replaces the configuration. Runs already in flight keep
// their snapshot.
func (e *Engine) SetConfigurations(cfg Configurations) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
}

// Trigger starts a full pipeline run: capture, extract, compose, stream.
// The intent may be empty, in which case the extracted screen text alone
// forms the user turn. Returns a Busy fault under the reject policy when a
// run is already active.
func (e *Engine) Trigger(intent string) (*Run, error) {
	return e.start(intent, true)
}

// AskDirect starts a run from a direct question, skipping capture and
// extraction.
func (e *Engine) AskDirect(text string) (*Run, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("direct question must not be empty")
	}
	return e.start(text, false)
}

func (e *Engine) start(intent string, withCapture bool) (*Run, error) {
	e.mu.Lock()
	cfg := e.cfg
	// The active slot must be re-validated after every unlock: a
	// concurrent trigger may have claimed it while this one waited on the
	// previous run.
	for prev := e.active; prev != nil && !prev.State().Terminal(); prev = e.active {
		if !cfg.supersedes() {
			e.mu.Unlock()
			return nil, models.Faultf(models.Busy, "a run is already active, trigger rejected")
		}
		e.mu.Unlock()
		e.Cancel(prev)
		prev.Wait()
		e.mu.Lock()
	}
	run := newRun(intent)
	ctx, cancel := context.WithCancel(context.Background())
	run.cancel = cancel
	run.subs = append(run.subs, e.observers...)
	e.active = run
	e.mu.Unlock()

	go e.execute(ctx, run, cfg, withCapture)
	return run, nil
}

// Cancel requests cooperative cancellation. The run unwinds at its next
// checkpoint; Wait on it to observe the terminal state.
func (e *Engine) Cancel(run *Run) {
	if run == nil {
		return
	}
	run.cancelReq.Store(true)
	if run.cancel != nil {
		run.cancel()
	}
}

// Subscribe attaches sub to the run. Already-accumulated text is replayed.
func (e *Engine) Subscribe(run *Run, sub Subscriber) {
	run.subscribe(sub)
}

// Observe attaches sub to every future run.
func (e *Engine) Observe(sub Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, sub)
}

// Reset clears the conversation context. Runs are unaffected.
func (e *Engine) Reset() {
	e.convo.Clear()
}

// History returns a copy of the committed conversation.
func (e *Engine) History() []models.Message {
	return e.convo.Snapshot()
}

func (e *Engine) execute(ctx context.Context, run *Run, cfg Configurations, withCapture bool) {
	defer e.clearActive(run)
	defer run.cancel()

	var extracted string
	if withCapture {
		run.setState(StateCapturing)
		capRes, err := e.capturer.CaptureActiveRegion()
		if err != nil {
			e.fail(run, err)
			return
		}
		if !e.checkpoint(ctx, run) {
			return
		}

		run.setState(StateExtracting)
		png, err := capture.EncodePNG(capRes)
		if err != nil {
			e.fail(run, err)
			return
		}
		ocrRes, err := e.extractor.Extract(ctx, png, cfg.OCRLanguage)
		if err != nil {
			e.fail(run, err)
			return
		}
		extracted = ocrRes.Text
		slog.Debug("extracted screen text",
			"run", run.ID,
			"chars", len(extracted),
			"confidence", ocrRes.Confidence)
		if !e.checkpoint(ctx, run) {
			return
		}
	}

	run.setState(StateComposing)
	userContent := convo.UserContent(extracted, run.Intent)
	if strings.TrimSpace(userContent) == "" {
		e.fail(run, models.Faultf(models.ExtractionUnavailable,
			"no text could be extracted and no intent was given"))
		return
	}
	chat := convo.Assemble(cfg.SystemPrompt, e.convo.Snapshot(), extracted, run.Intent)
	if !e.checkpoint(ctx, run) {
		return
	}

	run.setState(StateStreaming)
	completer, err := e.completerFactory(cfg)
	if err != nil {
		e.fail(run, err)
		return
	}
	events, err := completer.StreamCompletions(ctx, chat)
	if err != nil {
		e.fail(run, err)
		return
	}
STREAM:
	for {
		select {
		case <-ctx.Done():
			run.finishCancelled()
			return
		case ev, ok := <-events:
			if !ok {
				break STREAM
			}
			switch t := ev.(type) {
			case string:
				run.emitChunk(t)
			case error:
				e.fail(run, t)
				return
			case models.StopEvent:
				break STREAM
			case models.NoopEvent:
			}
		}
		if run.cancelRequested() {
			run.finishCancelled()
			return
		}
	}
	if run.cancelRequested() {
		run.finishCancelled()
		return
	}

	run.setState(StateFinalizing)
	fullText := run.Text()
	e.convo.CommitExchange(
		models.Message{Role: "user", Content: userContent},
		models.Message{Role: "assistant", Content: fullText},
	)
	e.speak(run, cfg, fullText)
	run.finishCompleted()
}

// checkpoint returns false and finishes the run when cancellation was
// requested between pipeline stages.
func (e *Engine) checkpoint(ctx context.Context, run *Run) bool {
	if run.cancelRequested() || ctx.Err() != nil {
		run.finishCancelled()
		return false
	}
	return true
}

// fail finishes the run as Failed, or Cancelled when the failure was caused
// by a cancellation. Never commits to the context.
func (e *Engine) fail(run *Run, err error) {
	if run.cancelRequested() || errors.Is(err, context.Canceled) {
		run.finishCancelled()
		return
	}
	kind, ok := models.KindOf(err)
	if !ok {
		kind = models.ConnectionFailed
	}
	ancli.PrintErr(fmt.Sprintf("run %v failed: %v\n", run.ID, err))
	run.finishFailed(kind, err.Error())
}

// speak dispatches the completed text to the speaker. Speech failures are
// surfaced to subscribers but never fail the run.
func (e *Engine) speak(run *Run, cfg Configurations, text string) {
	if e.speaker == nil || !cfg.SpeechEnabled {
		return
	}
	if _, err := e.speaker.Speak(text); err != nil {
		run.notifyError(models.VoiceUnavailable, fmt.Sprintf("failed to speak response: %v", err))
	}
}

func (e *Engine) clearActive(run *Run) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == run {
		e.active = nil
	}
}
