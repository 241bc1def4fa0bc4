// Package raster turns a decoded image into encoded bytes at a target
// width. Backends differ only in the resampler they use; all of them
// shrink with a smooth filter and never upscale.
package raster

import (
	"fmt"
	"image"
	"math"

	"github.com/AnyUserName/newsimg-cli/internal/encoder"
	"github.com/AnyUserName/newsimg-cli/internal/media"
)

// Surface is the drawing/encoding capability the search runs against.
type Surface interface {
	// Name identifies the resampler, e.g. "lanczos".
	Name() string

	// Render resamples src to exactly width x height.
	Render(src image.Image, width, height int) image.Image

	// EncodeOpaque encodes img into the opaque container at quality
	// (whole percent, 1-100). Translucent pixels are flattened.
	EncodeOpaque(img image.Image, quality int) ([]byte, error)

	// EncodeAlpha encodes img into the alpha-preserving container.
	EncodeAlpha(img image.Image) ([]byte, error)
}

// TargetSize returns the aspect-preserving size for targetWidth.
// The original size is kept whenever targetWidth does not shrink.
func TargetSize(origW, origH, targetWidth int) (int, int) {
	if targetWidth >= origW || origW <= 0 {
		return origW, origH
	}
	if targetWidth < 1 {
		targetWidth = 1
	}
	h := int(math.Round(float64(origH) * float64(targetWidth) / float64(origW)))
	if h < 1 {
		h = 1
	}
	return targetWidth, h
}

// New returns the backend registered under name.
func New(name string, reg *encoder.Registry) (Surface, error) {
	if reg == nil {
		reg = encoder.NewRegistry()
	}
	c, err := newCodecs(reg)
	if err != nil {
		return nil, err
	}
	switch name {
	case "", "lanczos", "imaging":
		return &Imaging{codecs: c}, nil
	case "catmullrom", "draw":
		return &Draw{codecs: c}, nil
	default:
		return nil, fmt.Errorf("unknown resampler %q (want lanczos or catmullrom)", name)
	}
}

// Names lists the selectable resamplers.
func Names() []string { return []string{"lanczos", "catmullrom"} }

// codecs is the encoder pair shared by every backend.
type codecs struct {
	opaque encoder.Encoder
	alpha  encoder.Encoder
}

func newCodecs(reg *encoder.Registry) (codecs, error) {
	c := codecs{
		opaque: reg.ForContainer(media.Opaque),
		alpha:  reg.ForContainer(media.AlphaPreserving),
	}
	if c.opaque == nil || c.alpha == nil {
		return c, fmt.Errorf("raster: %s, need jpeg and png", reg)
	}
	return c, nil
}

func (c codecs) encode(enc encoder.Encoder, img image.Image, quality int) ([]byte, error) {
	data, err := enc.Encode(img, quality)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, media.ErrEmptyOutput
	}
	return data, nil
}

// translucent reports whether img may carry alpha that the opaque
// container would otherwise drop to black.
func translucent(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}
