// Package tts speaks finalized response text aloud. Speaking is
// fire-and-forget with respect to the pipeline: failures are surfaced but
// never fail the run which produced the text.
package tts

import (
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	htgotts "github.com/hegedustibor/htgo-tts"
	"github.com/hegedustibor/htgo-tts/handlers"
)

// Utterance is a handle to one queued or playing utterance.
type Utterance struct {
	ID        uint64
	cancelled atomic.Bool
}

// Speaker converts finalized text into spoken audio, cancellable.
type Speaker interface {
	// Speak the text. Returns immediately, the audio plays on its own
	// goroutine. An error means the voice engine is unavailable.
	Speak(text string) (*Utterance, error)
	// Stop cancels the utterance. Queued utterances never start; a
	// playing one finishes its current audio segment.
	Stop(u *Utterance)
}

// Engine speaks through htgo-tts. Utterances are serialized so responses
// never talk over each other.
type Engine struct {
	mu     sync.Mutex
	speech htgotts.Speech
	nextID atomic.Uint64
}

// NewEngine creates a speech engine caching synthesized audio in cacheDir.
func NewEngine(language, cacheDir string) (*Engine, error) {
	if cacheDir == "" {
		return nil, fmt.Errorf("speech cache dir must not be empty")
	}
	if err := os.MkdirAll(cacheDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create speech cache dir: %w", err)
	}
	if language == "" {
		language = "en"
	}
	return &Engine{
		speech: htgotts.Speech{
			Folder:   cacheDir,
			Language: language,
			Handler:  &handlers.Native{},
		},
	}, nil
}

func (e *Engine) Speak(text string) (*Utterance, error) {
	cleaned := CleanForSpeech(text)
	u := &Utterance{ID: e.nextID.Add(1)}
	if cleaned == "" {
		return u, nil
	}
	go func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if u.cancelled.Load() {
			return
		}
		if err := e.speech.Speak(cleaned); err != nil {
			ancli.PrintWarn(fmt.Sprintf("failed to speak response: %v\n", err))
		}
	}()
	return u, nil
}

func (e *Engine) Stop(u *Utterance) {
	if u == nil {
		return
	}
	u.cancelled.Store(true)
}

var (
	markdownEmphasisRe = regexp.MustCompile(`(\*|_){1,3}(.+?)(\*|_){1,3}`)
	markdownLinkRe     = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	codeFenceRe        = regexp.MustCompile("(?s)`{1,3}(.*?)`{1,3}")
	urlRe              = regexp.MustCompile(`https?://\S+`)
)

// CleanForSpeech strips formatting which reads badly aloud: markdown
// emphasis and links, code fences and raw URLs.
func CleanForSpeech(text string) string {
	text = markdownEmphasisRe.ReplaceAllString(text, "$2")
	text = markdownLinkRe.ReplaceAllString(text, "$1")
	text = codeFenceRe.ReplaceAllString(text, "$1")
	text = html.UnescapeString(text)
	text = urlRe.ReplaceAllString(text, "link")
	return strings.TrimSpace(text)
}
