package probe

import (
	"image"
	"image/color"
	"testing"
)

func TestHasAlpha_Opaque(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}
	if HasAlpha(img) {
		t.Error("opaque image reported as having alpha")
	}
}

func TestHasAlpha_LastPixel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 1, G: 2, B: 3, A: 255})
		}
	}
	img.SetRGBA(4, 2, color.RGBA{A: 254})
	if !HasAlpha(img) {
		t.Error("translucent last pixel not detected")
	}
}

func TestHasAlpha_SubImageIgnoresOutside(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}
	img.SetNRGBA(7, 7, color.NRGBA{A: 0})
	sub := img.SubImage(image.Rect(0, 0, 4, 4))
	if HasAlpha(sub) {
		t.Error("pixel outside sub-image counted")
	}
	if !HasAlpha(img) {
		t.Error("full image alpha not detected")
	}
}

func TestHasAlpha_NRGBA64(t *testing.T) {
	img := image.NewNRGBA64(image.Rect(0, 0, 3, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			img.SetNRGBA64(x, y, color.NRGBA64{A: 0xffff})
		}
	}
	if HasAlpha(img) {
		t.Error("opaque 16-bit image reported as having alpha")
	}
	img.SetNRGBA64(1, 1, color.NRGBA64{A: 0xfffe})
	if !HasAlpha(img) {
		t.Error("16-bit low byte translucency not detected")
	}
}

func TestHasAlpha_Paletted(t *testing.T) {
	pal := color.Palette{color.NRGBA{A: 255}, color.NRGBA{A: 0}}
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
	if HasAlpha(img) {
		t.Error("unused transparent palette entry counted")
	}
	img.SetColorIndex(2, 2, 1)
	if !HasAlpha(img) {
		t.Error("transparent palette index not detected")
	}
}

func TestHasAlpha_YCbCrAndGray(t *testing.T) {
	if HasAlpha(image.NewYCbCr(image.Rect(0, 0, 4, 4), image.YCbCrSubsampleRatio420)) {
		t.Error("ycbcr has no alpha")
	}
	if HasAlpha(image.NewGray(image.Rect(0, 0, 4, 4))) {
		t.Error("gray has no alpha")
	}
}
