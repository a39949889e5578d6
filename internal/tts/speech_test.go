package tts

import (
	"testing"
)

func TestCleanForSpeech(t *testing.T) {
	testCases := []struct {
		desc  string
		given string
		want  string
	}{
		{
			desc:  "strips bold",
			given: "this is **important** text",
			want:  "this is important text",
		},
		{
			desc:  "keeps link text",
			given: "see [the docs](https://example.com/docs) for details",
			want:  "see the docs for details",
		},
		{
			desc:  "unwraps inline code",
			given: "run `go build` first",
			want:  "run go build first",
		},
		{
			desc:  "replaces raw urls",
			given: "found at https://example.com/a/very/long/path today",
			want:  "found at link today",
		},
		{
			desc:  "unescapes html entities",
			given: "salt &amp; pepper",
			want:  "salt & pepper",
		},
		{
			desc:  "trims whitespace",
			given: "  hello  ",
			want:  "hello",
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			if got := CleanForSpeech(tC.given); got != tC.want {
				t.Fatalf("expected: %q, got: %q", tC.want, got)
			}
		})
	}
}

func TestEngine_StopPreventsQueuedUtterance(t *testing.T) {
	e, err := NewEngine("en", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// Hold the playback lock so the utterance stays queued
	e.mu.Lock()
	u, err := e.Speak("never spoken")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	e.Stop(u)
	e.mu.Unlock()
	if !u.cancelled.Load() {
		t.Fatal("expected utterance to be marked cancelled")
	}
}

func TestEngine_EmptyTextIsNoop(t *testing.T) {
	e, err := NewEngine("en", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	u, err := e.Speak("   ")
	if err != nil {
		t.Fatalf("expected empty text to be a noop, got: %v", err)
	}
	if u == nil {
		t.Fatal("expected a handle even for empty text")
	}
}

func TestNewEngine_RequiresCacheDir(t *testing.T) {
	if _, err := NewEngine("en", ""); err == nil {
		t.Fatal("expected error on empty cache dir")
	}
}
