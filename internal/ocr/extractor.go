// Package ocr converts captured images into plain text via Tesseract.
package ocr

import (
	"context"
	"strings"

	"github.com/baalimago/screenbuddy/internal/models"
	"github.com/otiai10/gosseract/v2"
)

// Result of one extraction. Transient, owned by the current pipeline run.
type Result struct {
	Text       string
	Language   string
	Confidence float64
}

// Extractor converts a captured image into plain text. Deterministic given
// identical image and language, so no caching layer is needed.
type Extractor interface {
	Extract(ctx context.Context, png []byte, language string) (Result, error)
}

// Tesseract extracts text using a local Tesseract installation through
// gosseract. A fresh client per extraction keeps the implementation free of
// shared native state.
type Tesseract struct{}

func (t *Tesseract) Extract(ctx context.Context, png []byte, language string) (Result, error) {
	if language == "" {
		language = "eng"
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(language); err != nil {
		return Result{}, models.NewFault(models.ExtractionUnavailable,
			"failed to set OCR language '"+language+"', language data may be missing", err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return Result{}, models.NewFault(models.ExtractionUnavailable, "failed to load image into OCR engine", err)
	}
	text, err := client.Text()
	if err != nil {
		return Result{}, models.NewFault(models.ExtractionUnavailable, "OCR engine failed, is tesseract installed?", err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	text = strings.TrimSpace(text)
	return Result{
		Text:       text,
		Language:   language,
		Confidence: estimateConfidence(text),
	}, nil
}

// estimateConfidence from text quality indicators, since word-level
// confidence would require HOCR parsing.
func estimateConfidence(text string) float64 {
	if text == "" {
		return 0
	}
	confidence := 0.5
	if len(text) > 1000 {
		confidence += 0.1
	}
	if len(words(text)) > 100 {
		confidence += 0.1
	}
	alphaCount := 0
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			alphaCount++
		}
	}
	alphaRatio := float64(alphaCount) / float64(len(text))
	if alphaRatio > 0.5 && alphaRatio < 0.9 {
		confidence += 0.1
	}
	if confidence > 0.85 {
		confidence = 0.85
	}
	return confidence
}

func words(text string) []string {
	return strings.Fields(text)
}
