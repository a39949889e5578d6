// Package capture produces images of the active screen region on demand.
package capture

import (
	"bytes"
	"image"
	"image/png"
	"time"

	"github.com/baalimago/screenbuddy/internal/models"
	"github.com/kbinani/screenshot"
)

// Result is one captured frame. Consumed once by the text extractor and
// not retained.
type Result struct {
	Image      *image.RGBA
	CapturedAt time.Time
	Region     image.Rectangle
}

// Provider produces an image of the currently focused screen region. Must
// not mutate window focus.
type Provider interface {
	CaptureActiveRegion() (Result, error)
}

// DisplayProvider captures the bounds of one display. Display 0 is the
// primary display.
type DisplayProvider struct {
	Display int
}

func (d *DisplayProvider) CaptureActiveRegion() (Result, error) {
	amDisplays := screenshot.NumActiveDisplays()
	if amDisplays == 0 {
		return Result{}, models.Faultf(models.NoActiveWindow, "no active displays found")
	}
	if d.Display >= amDisplays {
		return Result{}, models.Faultf(models.NoActiveWindow,
			"display %v is not active, found %v display(s)", d.Display, amDisplays)
	}
	bounds := screenshot.GetDisplayBounds(d.Display)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return Result{}, models.NewFault(models.NoActiveWindow, "failed to capture display", err)
	}
	return Result{
		Image:      img,
		CapturedAt: time.Now(),
		Region:     bounds,
	}, nil
}

// EncodePNG renders the capture for the OCR hand-off.
func EncodePNG(r Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Image); err != nil {
		return nil, models.NewFault(models.NoActiveWindow, "failed to encode capture", err)
	}
	return buf.Bytes(), nil
}
