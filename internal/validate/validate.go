// Package validate is the gate an upload passes before re-encoding: a hard
// size ceiling and a content-type allow-list.
package validate

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/AnyUserName/newsimg-cli/internal/media"
)

// DefaultMaxInputBytes is the hard ceiling for a single upload.
const DefaultMaxInputBytes = 20 << 20

// Reject reasons.
const (
	ReasonEmpty          = "empty"
	ReasonTooLarge       = "too-large"
	ReasonTypeNotAllowed = "type-not-allowed"
)

// Policy configures the gate.
type Policy struct {
	MaxInputBytes int64    `toml:"max_input_bytes"`
	AllowedMIME   []string `toml:"allowed_mime"` // "image/*" matches any image subtype
}

// DefaultPolicy accepts images, a few video containers and PDF.
func DefaultPolicy() Policy {
	return Policy{
		MaxInputBytes: DefaultMaxInputBytes,
		AllowedMIME: []string{
			"image/*",
			"video/mp4",
			"video/webm",
			"video/quicktime",
			"application/pdf",
		},
	}
}

// RejectError explains why an asset was turned away.
type RejectError struct {
	Reason string
	Detail string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("rejected (%s): %s", e.Reason, e.Detail)
}

// Check returns a *RejectError when asset must not be processed or uploaded.
// A missing declared type is filled in by sniffing the bytes; the
// returned string is the content type that was checked.
func Check(asset media.Asset, p Policy) (string, error) {
	if len(asset.Data) == 0 {
		return "", &RejectError{Reason: ReasonEmpty, Detail: "no bytes"}
	}
	if p.MaxInputBytes > 0 && asset.Len() > p.MaxInputBytes {
		return "", &RejectError{
			Reason: ReasonTooLarge,
			Detail: fmt.Sprintf("%d bytes exceeds limit of %d", asset.Len(), p.MaxInputBytes),
		}
	}

	mime := baseType(asset.MIME)
	if mime == "" || mime == "application/octet-stream" {
		mime = baseType(mimetype.Detect(asset.Data).String())
	}
	if !allowed(mime, p.AllowedMIME) {
		return mime, &RejectError{Reason: ReasonTypeNotAllowed, Detail: mime}
	}
	return mime, nil
}

func allowed(mime string, list []string) bool {
	for _, pattern := range list {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
			if strings.HasPrefix(mime, prefix+"/") {
				return true
			}
			continue
		}
		if pattern == mime {
			return true
		}
	}
	return false
}

func baseType(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}
