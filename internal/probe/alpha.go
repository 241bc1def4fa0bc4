package probe

import (
	"image"
)

// HasAlpha reports whether any pixel has alpha < fully opaque.
// Typed pixel buffers are scanned directly and the scan stops at the
// first translucent sample.
func HasAlpha(img image.Image) bool {
	switch src := img.(type) {
	case *image.NRGBA:
		return scanAlpha8(src.Pix, src.Stride, src.Rect.Dx(), src.Rect.Dy(), 4, 3)
	case *image.RGBA:
		return scanAlpha8(src.Pix, src.Stride, src.Rect.Dx(), src.Rect.Dy(), 4, 3)
	case *image.NRGBA64:
		return scanAlpha16(src.Pix, src.Stride, src.Rect.Dx(), src.Rect.Dy())
	case *image.RGBA64:
		return scanAlpha16(src.Pix, src.Stride, src.Rect.Dx(), src.Rect.Dy())
	case *image.Alpha:
		return scanAlpha8(src.Pix, src.Stride, src.Rect.Dx(), src.Rect.Dy(), 1, 0)
	case *image.Paletted:
		return palettedAlpha(src)
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return false
	default:
		bounds := img.Bounds()
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				_, _, _, a := img.At(x, y).RGBA()
				if a < 0xffff {
					return true
				}
			}
		}
		return false
	}
}

// scanAlpha8 walks 8-bit alpha samples located at off within each
// bpp-byte pixel, row by row so sub-images with a wider stride work.
func scanAlpha8(pix []byte, stride, w, h, bpp, off int) bool {
	for y := 0; y < h; y++ {
		row := pix[y*stride : y*stride+w*bpp]
		for i := off; i < len(row); i += bpp {
			if row[i] < 0xff {
				return true
			}
		}
	}
	return false
}

// scanAlpha16 walks big-endian 16-bit alpha samples at bytes 6-7.
func scanAlpha16(pix []byte, stride, w, h int) bool {
	for y := 0; y < h; y++ {
		row := pix[y*stride : y*stride+w*8]
		for i := 6; i < len(row); i += 8 {
			if row[i] < 0xff || row[i+1] < 0xff {
				return true
			}
		}
	}
	return false
}

func palettedAlpha(src *image.Paletted) bool {
	var translucent [256]bool
	found := false
	for i, c := range src.Palette {
		if i >= len(translucent) {
			break
		}
		if _, _, _, a := c.RGBA(); a < 0xffff {
			translucent[i] = true
			found = true
		}
	}
	if !found {
		return false
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		for _, idx := range row {
			if translucent[idx] {
				return true
			}
		}
	}
	return false
}
