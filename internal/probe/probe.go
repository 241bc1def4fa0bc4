// Package probe decodes an uploaded asset and reports the properties the
// re-encoder needs: pixel dimensions and whether any pixel is translucent.
package probe

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/AnyUserName/newsimg-cli/internal/media"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// processable lists the raster containers eligible for re-encoding.
// GIF is left out on purpose: re-encoding drops animation frames.
var processable = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/bmp",
	"image/tiff",
}

// Decoded is the probe output: properties plus the decoded pixel grid.
type Decoded struct {
	Props media.Properties
	Image image.Image
}

// Sniff returns the content type detected from magic bytes.
func Sniff(data []byte) string {
	return mimetype.Detect(data).String()
}

// Processable reports whether a content type is on the re-encode allow-list.
func Processable(mime string) bool {
	return lookup(mime) != ""
}

// Probe decodes asset and scans its alpha plane.
//
// It returns media.ErrNotProcessable for containers outside the allow-list
// and a *media.DecodeError when the bytes cannot be decoded.
func Probe(asset media.Asset) (*Decoded, error) {
	if len(asset.Data) == 0 {
		return nil, fmt.Errorf("empty asset: %w", media.ErrNotProcessable)
	}

	detected := mimetype.Detect(asset.Data)
	kind := match(detected)
	if kind == "" {
		// A recognised image container that is not on the list (gif, svg,
		// heic) stays untouched. Anything else declared as an allowed raster
		// type is treated as a damaged file of that type.
		declared := lookup(asset.MIME)
		if declared == "" || strings.HasPrefix(detected.String(), "image/") {
			return nil, fmt.Errorf("%s: %w", detected.String(), media.ErrNotProcessable)
		}
		kind = declared
	}

	img, _, err := image.Decode(bytes.NewReader(asset.Data))
	if err != nil {
		return nil, &media.DecodeError{MIME: kind, Err: err}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &media.DecodeError{MIME: kind, Err: fmt.Errorf("empty bounds %v", b)}
	}

	return &Decoded{
		Props: media.Properties{
			Width:    b.Dx(),
			Height:   b.Dy(),
			HasAlpha: HasAlpha(img),
			MIME:     kind,
		},
		Image: img,
	}, nil
}

func match(detected *mimetype.MIME) string {
	for _, p := range processable {
		if detected.Is(p) {
			return p
		}
	}
	return ""
}

func lookup(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if mime == "image/jpg" || mime == "image/pjpeg" {
		mime = "image/jpeg"
	}
	for _, p := range processable {
		if p == mime {
			return p
		}
	}
	return ""
}
