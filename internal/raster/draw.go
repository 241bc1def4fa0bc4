package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Draw resamples with x/image's Catmull-Rom kernel.
type Draw struct {
	codecs
}

func (s *Draw) Name() string { return "catmullrom" }

func (s *Draw) Render(src image.Image, width, height int) image.Image {
	b := src.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func (s *Draw) EncodeOpaque(img image.Image, quality int) ([]byte, error) {
	if translucent(img) {
		b := img.Bounds()
		flat := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)
		img = flat
	}
	return s.encode(s.opaque, img, quality)
}

func (s *Draw) EncodeAlpha(img image.Image) ([]byte, error) {
	return s.encode(s.alpha, img, 0)
}
