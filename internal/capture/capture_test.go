package capture

import (
	"bytes"
	"image"
	"image/png"
	"testing"
	"time"
)

func TestEncodePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	res := Result{Image: img, CapturedAt: time.Now(), Region: img.Bounds()}

	b, err := EncodePNG(res)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("expected valid png, got: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("expected bounds %v, got: %v", img.Bounds(), decoded.Bounds())
	}
}
