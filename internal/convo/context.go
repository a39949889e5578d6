// Package convo holds the bounded conversation context and the prompt
// assembly used to build chats for the completion stream.
package convo

import (
	"strings"
	"sync"
	"time"

	"github.com/baalimago/screenbuddy/internal/models"
)

// heuristicTokenCountFactor is used to approximate token usage since the
// endpoint's tokenizer is not available client-side.
const heuristicTokenCountFactor = 1.1

// EstimateTokens approximates the token count of text by word count.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return int(float64(len(strings.Fields(text))) * heuristicTokenCountFactor)
}

// Context is the ordered, bounded conversation history. It is the only
// long-lived mutable shared state in the pipeline and is mutated solely by
// the engine's commit step, under this struct's own lock.
type Context struct {
	mu          sync.Mutex
	maxTurns    int
	tokenBudget int
	turns       []models.Message
}

// New creates a Context bounded by maxTurns messages. A tokenBudget of 0
// disables the secondary token bound.
func New(maxTurns, tokenBudget int) *Context {
	return &Context{
		maxTurns:    maxTurns,
		tokenBudget: tokenBudget,
	}
}

// Append m to the tail, evicting from the head until within bound. The
// most recent user turn which has no paired assistant reply yet is never
// evicted, which protects in-flight turns.
func (c *Context) Append(m models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.append(m)
}

// CommitExchange appends exactly one user turn and one assistant turn, in
// that order, atomically with respect to concurrent snapshots.
func (c *Context) CommitExchange(user, assistant models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.append(user)
	c.append(assistant)
}

func (c *Context) append(m models.Message) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if m.TokenEstimate == 0 {
		m.TokenEstimate = EstimateTokens(m.Content)
	}
	c.turns = append(c.turns, m)
	c.evict()
}

// evict drops turns FIFO until both bounds hold. Stops early rather than
// evicting an unanswered user turn.
func (c *Context) evict() {
	protected := c.unansweredUserIdx()
	for c.overBound() && len(c.turns) > 0 {
		if protected == 0 {
			return
		}
		c.turns = c.turns[1:]
		if protected > 0 {
			protected--
		}
	}
}

// unansweredUserIdx returns the index of the most recent user turn with no
// assistant reply after it, or -1 when every user turn is answered.
func (c *Context) unansweredUserIdx() int {
	for i := len(c.turns) - 1; i >= 0; i-- {
		switch c.turns[i].Role {
		case "assistant":
			return -1
		case "user":
			return i
		}
	}
	return -1
}

func (c *Context) overBound() bool {
	if c.maxTurns > 0 && len(c.turns) > c.maxTurns {
		return true
	}
	if c.tokenBudget > 0 && c.tokenEstimate() > c.tokenBudget {
		return true
	}
	return false
}

func (c *Context) tokenEstimate() int {
	var total int
	for _, t := range c.turns {
		total += t.TokenEstimate
	}
	return total
}

// Snapshot returns a read-only copy of the history. Later appends are not
// reflected in the returned slice.
func (c *Context) Snapshot() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	cpy := make([]models.Message, len(c.turns))
	copy(cpy, c.turns)
	return cpy
}

// Clear empties the history. Used on explicit user reset only.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
}

func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}
