package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/go_away_boilerplate/pkg/shutdown"
	"github.com/baalimago/screenbuddy/internal/capture"
	"github.com/baalimago/screenbuddy/internal/engine"
	"github.com/baalimago/screenbuddy/internal/hotkey"
	"github.com/baalimago/screenbuddy/internal/models"
	"github.com/baalimago/screenbuddy/internal/ocr"
	"github.com/baalimago/screenbuddy/internal/tts"
	"github.com/baalimago/screenbuddy/internal/utils"
)

const usage = `screenbuddy - a screen-aware desktop companion

Press the configured hotkey (default ctrl+shift+f) to capture the screen,
extract its text and stream a spoken answer from your configured model.

Prerequisites:
  - A local tesseract installation for text extraction
  - An OpenAI-compatible chat completion endpoint (ollama works out of the box)

Usage: screenbuddy [flags]

Flags:
  -config string   Override the config directory. (default '%v')
  -ask string      Ask a one-shot question without capturing the screen, print the reply and exit.

Configuration lives in %v inside the config directory, created with defaults
on first run.
`

func main() {
	ancli.SetupSlog()

	defaultConfigDir, err := utils.GetConfigDir()
	if err != nil {
		ancli.Errf("failed to find config dir path: %v\n", err)
		os.Exit(1)
	}
	configDir := flag.String("config", defaultConfigDir, "override the config directory")
	ask := flag.String("ask", "", "one-shot question, skips screen capture")
	flag.Usage = func() {
		fmt.Printf(usage, defaultConfigDir, engine.ConfigFileName)
	}
	flag.Parse()

	dflt := engine.Default
	cfg, err := utils.LoadConfigFromFile(*configDir, engine.ConfigFileName, &dflt)
	if err != nil {
		ancli.Errf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	eng := engine.New(cfg,
		&capture.DisplayProvider{Display: cfg.CaptureDisplay},
		&ocr.Tesseract{},
		setupSpeaker(cfg),
	)
	eng.Observe(consoleSubscriber())

	ctx, cancel := context.WithCancel(context.Background())
	go func() { shutdown.Monitor(cancel) }()

	if *ask != "" {
		if err := askOnce(eng, *ask); err != nil {
			ancli.PrintErr(fmt.Sprintf("%v\n", err))
			os.Exit(1)
		}
		return
	}

	listener, err := hotkey.New(cfg.Hotkey, cfg.DebounceWindow(), func() {
		if _, err := eng.Trigger(""); err != nil {
			if kind, ok := models.KindOf(err); ok && kind == models.Busy {
				ancli.PrintWarn("a run is already active, trigger ignored\n")
				return
			}
			ancli.PrintErr(fmt.Sprintf("failed to trigger run: %v\n", err))
		}
	})
	if err != nil {
		ancli.Errf("failed to setup hotkey listener: %v\n", err)
		os.Exit(1)
	}
	if err := listener.Start(ctx); err != nil {
		ancli.Errf("hotkey listener failed: %v\n", err)
		os.Exit(1)
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK("shutting down. Bye bye!\n")
	}
}

// setupSpeaker builds the speech engine, or disables speech with a warning
// when the audio stack is unavailable.
func setupSpeaker(cfg engine.Configurations) tts.Speaker {
	if !cfg.SpeechEnabled {
		return nil
	}
	cacheDir, err := utils.GetCacheDir()
	if err != nil {
		ancli.PrintWarn(fmt.Sprintf("failed to find cache dir, speech disabled: %v\n", err))
		return nil
	}
	speaker, err := tts.NewEngine(cfg.SpeechLanguage, cacheDir)
	if err != nil {
		ancli.PrintWarn(fmt.Sprintf("failed to setup speech, speech disabled: %v\n", err))
		return nil
	}
	return speaker
}

// consoleSubscriber prints run output to the terminal as it arrives.
func consoleSubscriber() engine.Subscriber {
	return engine.Subscriber{
		OnChunk: func(chunk string) {
			fmt.Print(chunk)
		},
		OnError: func(kind models.Kind, message string) {
			switch kind {
			case models.VoiceUnavailable:
				ancli.PrintWarn(fmt.Sprintf("%v\n", message))
			case models.Cancelled:
				fmt.Println()
				ancli.PrintWarn("run cancelled\n")
			default:
				fmt.Println()
				ancli.PrintErr(fmt.Sprintf("%v: %v\n", kind, message))
			}
		},
		OnComplete: func(string) {
			fmt.Println()
		},
	}
}

// askOnce runs one direct question to completion.
func askOnce(eng *engine.Engine, question string) error {
	run, err := eng.AskDirect(question)
	if err != nil {
		return fmt.Errorf("failed to ask: %w", err)
	}
	run.Wait()
	if run.State() != engine.StateCompleted {
		return fmt.Errorf("run ended in state: %v", run.State())
	}
	return nil
}
