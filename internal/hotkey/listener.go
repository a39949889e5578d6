// Package hotkey fires a no-argument activation signal when the configured
// global key combination is pressed. The listener runs independently of any
// other goroutine and only ever calls the registered activation callback.
package hotkey

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	hook "github.com/robotn/gohook"
)

// Listener registers a process-wide hotkey and invokes onActivate when it
// fires. Re-fires within the refractory window are ignored to avoid
// double-triggering from key-repeat.
type Listener struct {
	keys       []string
	deb        *debouncer
	onActivate func()
}

// New parses a combo such as 'ctrl+shift+f' into a Listener.
func New(combo string, refractory time.Duration, onActivate func()) (*Listener, error) {
	keys := parseCombo(combo)
	if len(keys) == 0 {
		return nil, fmt.Errorf("failed to parse hotkey combo: '%v'", combo)
	}
	if onActivate == nil {
		return nil, fmt.Errorf("onActivate must not be nil")
	}
	return &Listener{
		keys:       keys,
		deb:        newDebouncer(refractory),
		onActivate: onActivate,
	}, nil
}

func parseCombo(combo string) []string {
	var keys []string
	for _, part := range strings.Split(combo, "+") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		keys = append(keys, part)
	}
	return keys
}

// Start the listener. Blocks until ctx is cancelled. The activation
// callback runs on its own goroutine so a slow engine never stalls the
// OS-level event hook.
func (l *Listener) Start(ctx context.Context) error {
	hook.Register(hook.KeyDown, l.keys, func(e hook.Event) {
		if !l.deb.Allow(time.Now()) {
			return
		}
		go l.onActivate()
	})
	s := hook.Start()
	defer hook.End()

	ancli.PrintOK(fmt.Sprintf("hotkey listener started for: '%v'\n", strings.Join(l.keys, "+")))
	done := make(chan struct{})
	go func() {
		<-hook.Process(s)
		close(done)
	}()
	select {
	case <-ctx.Done():
		return nil
	case <-done:
		return fmt.Errorf("hotkey event hook terminated unexpectedly")
	}
}

// debouncer ignores activations inside the refractory window.
type debouncer struct {
	mu     sync.Mutex
	window time.Duration
	last   time.Time
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window}
}

// Allow returns true when enough time has passed since the last allowed
// activation.
func (d *debouncer) Allow(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.last.IsZero() && now.Sub(d.last) < d.window {
		return false
	}
	d.last = now
	return true
}
