package encoder

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
)

// DefaultJPEGQuality is used when a caller passes quality 0.
const DefaultJPEGQuality = 75

var errEmptyImage = errors.New("encoder: image has no pixels")

// JPEGEncoder writes the opaque container. Transparency, if any, is
// dropped by the codec; callers flatten translucent images first.
type JPEGEncoder struct{}

func (e *JPEGEncoder) Format() string    { return "jpeg" }
func (e *JPEGEncoder) MIME() string      { return "image/jpeg" }
func (e *JPEGEncoder) Available() bool   { return true }

// Encode clamps quality into 1..100; 0 selects DefaultJPEGQuality.
func (e *JPEGEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	switch {
	case quality == 0:
		quality = DefaultJPEGQuality
	case quality < 1:
		quality = 1
	case quality > 100:
		quality = 100
	}
	px := pixels(img)
	if px == 0 {
		return nil, errEmptyImage
	}

	var buf bytes.Buffer
	buf.Grow(min(px/2, 1<<20))
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pixels(img image.Image) int {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	return b.Dx() * b.Dy()
}
