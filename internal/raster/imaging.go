package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Imaging resamples with a Lanczos filter.
type Imaging struct {
	codecs
}

func (s *Imaging) Name() string { return "lanczos" }

func (s *Imaging) Render(src image.Image, width, height int) image.Image {
	b := src.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return src
	}
	return imaging.Resize(src, width, height, imaging.Lanczos)
}

func (s *Imaging) EncodeOpaque(img image.Image, quality int) ([]byte, error) {
	if translucent(img) {
		b := img.Bounds()
		bg := imaging.New(b.Dx(), b.Dy(), color.White)
		img = imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
	}
	return s.encode(s.opaque, img, quality)
}

func (s *Imaging) EncodeAlpha(img image.Image) ([]byte, error) {
	return s.encode(s.alpha, img, 0)
}
