//go:build ignore

// gen_fixtures creates upload fixtures for the E2E smoke test.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	os.MkdirAll(filepath.Join(dir, "photos"), 0o755)

	// Large opaque photo: downscaled and stepped down in quality.
	writeJPEG(filepath.Join(dir, "photos", "crowd.jpg"), noise(2800, 2100, false), 92)

	// Translucent logo that fits losslessly: alpha kept.
	writePNG(filepath.Join(dir, "logo.png"), alphaGradient(1200, 600))

	// Translucent noise that cannot fit losslessly: flattened to JPEG.
	writePNG(filepath.Join(dir, "overlay.png"), noise(1600, 1200, true))

	// Claims to be a JPEG but is not: passed through untouched.
	garbage := make([]byte, 600*1024)
	for i := range garbage {
		garbage[i] = byte(i*7 + 3)
	}
	os.WriteFile(filepath.Join(dir, "corrupt.jpg"), garbage, 0o644)

	// Already small: skipped.
	writeJPEG(filepath.Join(dir, "photos", "thumb.jpg"), gradient(160, 90), 85)

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 5 fixtures in %s\n", dir)
}

func noise(w, h int, alpha bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	state := uint32(2463534242)
	next := func() uint8 {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		return uint8(state)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(255)
			if alpha {
				a = next() | 0x0f
			}
			img.SetNRGBA(x, y, color.NRGBA{R: next(), G: next(), B: next(), A: a})
		}
	}
	return img
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(x * 255 / w),
			})
		}
	}
	return img
}

func writePNG(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}

func writeJPEG(path string, img *image.NRGBA, quality int) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		panic(err)
	}
}
