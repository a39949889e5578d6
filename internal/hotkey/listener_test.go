package hotkey

import (
	"testing"
	"time"
)

func TestDebouncer_IgnoresRefires(t *testing.T) {
	d := newDebouncer(1200 * time.Millisecond)
	start := time.Now()

	if !d.Allow(start) {
		t.Fatal("expected first activation to pass")
	}
	if d.Allow(start.Add(50 * time.Millisecond)) {
		t.Fatal("expected re-fire inside refractory window to be ignored")
	}
	if d.Allow(start.Add(1199 * time.Millisecond)) {
		t.Fatal("expected re-fire at window edge to be ignored")
	}
	if !d.Allow(start.Add(1200 * time.Millisecond)) {
		t.Fatal("expected activation after window to pass")
	}
}

func TestDebouncer_WindowRestartsOnAllow(t *testing.T) {
	d := newDebouncer(time.Second)
	start := time.Now()
	d.Allow(start)
	second := start.Add(1100 * time.Millisecond)
	if !d.Allow(second) {
		t.Fatal("expected second activation to pass")
	}
	if d.Allow(second.Add(500 * time.Millisecond)) {
		t.Fatal("expected window to restart from the last allowed activation")
	}
}

func TestParseCombo(t *testing.T) {
	got := parseCombo("Ctrl+Shift+F")
	want := []string{"ctrl", "shift", "f"}
	if len(got) != len(want) {
		t.Fatalf("expected %v keys, got: %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key %v: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestNew_InvalidCombo(t *testing.T) {
	if _, err := New("", time.Second, func() {}); err == nil {
		t.Fatal("expected error on empty combo")
	}
	if _, err := New("ctrl+f", time.Second, nil); err == nil {
		t.Fatal("expected error on nil callback")
	}
}
