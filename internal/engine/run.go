package engine

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/baalimago/screenbuddy/internal/models"
	"github.com/google/uuid"
)

// State of a pipeline run. States only move forward; Completed, Cancelled
// and Failed are terminal.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateExtracting
	StateComposing
	StateStreaming
	StateFinalizing
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateExtracting:
		return "extracting"
	case StateComposing:
		return "composing"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal states accept no further transitions.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// Subscriber receives run events. Nil callbacks are skipped. Callbacks are
// invoked sequentially in event arrival order and must not block.
type Subscriber struct {
	OnChunk    func(chunk string)
	OnError    func(kind models.Kind, message string)
	OnComplete func(fullText string)
}

// Run is one pipeline execution, from trigger to terminal state. All fields
// below the mutex are owned by it.
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time
	Intent    string

	cancel    context.CancelFunc
	cancelReq atomic.Bool
	done      chan struct{}

	mu          sync.Mutex
	state       State
	accumulated strings.Builder
	subs        []Subscriber
	failKind    models.Kind
	failMsg     string
}

func newRun(intent string) *Run {
	return &Run{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		Intent:    intent,
		done:      make(chan struct{}),
	}
}

// State returns the current run state.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Text returns the response text accumulated so far. On a Failed run this
// is the partial text received before the failure.
func (r *Run) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accumulated.String()
}

// Wait blocks until the run reaches a terminal state.
func (r *Run) Wait() {
	<-r.done
}

func (r *Run) cancelRequested() bool {
	return r.cancelReq.Load()
}

func (r *Run) setState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Terminal() {
		return
	}
	r.state = s
}

// subscribe registers s. Text already accumulated is replayed as one chunk
// so that a late subscriber never misses output, and a terminal run
// delivers its terminal callback immediately. Callbacks run outside the
// run's lock so they may read back into the run.
func (r *Run) subscribe(s Subscriber) {
	r.mu.Lock()
	acc := r.accumulated.String()
	state := r.state
	kind, msg := r.failKind, r.failMsg
	if !state.Terminal() {
		r.subs = append(r.subs, s)
	}
	r.mu.Unlock()

	if acc != "" && s.OnChunk != nil {
		s.OnChunk(acc)
	}
	switch {
	case state == StateCompleted:
		if s.OnComplete != nil {
			s.OnComplete(acc)
		}
	case state.Terminal():
		if s.OnError != nil {
			s.OnError(kind, msg)
		}
	}
}

func (r *Run) emitChunk(chunk string) {
	r.mu.Lock()
	r.accumulated.WriteString(chunk)
	subs := r.subs
	r.mu.Unlock()
	for _, s := range subs {
		if s.OnChunk != nil {
			s.OnChunk(chunk)
		}
	}
}

// notifyError fans out a non-fatal error without ending the run.
func (r *Run) notifyError(kind models.Kind, message string) {
	r.mu.Lock()
	subs := r.subs
	r.mu.Unlock()
	for _, s := range subs {
		if s.OnError != nil {
			s.OnError(kind, message)
		}
	}
}

// finish moves the run into a terminal state and notifies subscribers
// exactly once.
func (r *Run) finish(state State, kind models.Kind, message string) {
	r.mu.Lock()
	if r.state.Terminal() {
		r.mu.Unlock()
		return
	}
	r.state = state
	r.failKind = kind
	r.failMsg = message
	subs := r.subs
	text := r.accumulated.String()
	r.mu.Unlock()

	for _, s := range subs {
		if state == StateCompleted {
			if s.OnComplete != nil {
				s.OnComplete(text)
			}
		} else if s.OnError != nil {
			s.OnError(kind, message)
		}
	}
	close(r.done)
}

func (r *Run) finishCompleted() {
	r.finish(StateCompleted, "", "")
}

func (r *Run) finishCancelled() {
	r.finish(StateCancelled, models.Cancelled, "run cancelled")
}

func (r *Run) finishFailed(kind models.Kind, message string) {
	r.finish(StateFailed, kind, message)
}
