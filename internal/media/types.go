// Package media holds the values exchanged between the re-encoder stages.
package media

import (
	"mime"
	"path"
	"strings"
)

// Asset is one caller-owned input. It is never mutated.
type Asset struct {
	Data     []byte
	MIME     string // declared by the uploader, may be empty or wrong
	Filename string
}

// Len returns the byte length of the asset.
func (a Asset) Len() int64 { return int64(len(a.Data)) }

// Properties are derived once per encode by the prober.
type Properties struct {
	Width    int
	Height   int
	HasAlpha bool
	MIME     string // sniffed container type
}

// Container is the family of output format.
type Container int

const (
	// Opaque is quality-tunable and carries no transparency (JPEG).
	Opaque Container = iota
	// AlphaPreserving keeps per-pixel transparency, no quality knob (PNG).
	AlphaPreserving
)

func (c Container) String() string {
	switch c {
	case Opaque:
		return "opaque"
	case AlphaPreserving:
		return "alpha-preserving"
	default:
		return "unknown"
	}
}

// MIME returns the output content type for the container.
func (c Container) MIME() string {
	if c == AlphaPreserving {
		return "image/png"
	}
	return "image/jpeg"
}

// Passthrough reasons. Empty means the asset was re-encoded.
const (
	PassSkip           = "skip"
	PassNotProcessable = "not-processable"
	PassDecodeError    = "decode-error"
	PassEncodeError    = "encode-error"
	PassCanceled       = "canceled"
	PassInvalidBudget  = "invalid-budget"
)

// Result is the caller-visible value of one encode call.
type Result struct {
	Data      []byte
	MIME      string
	Filename  string
	Width     int
	Height    int
	Attempts  int
	MetBudget bool

	// Passthrough names why the original bytes were returned unmodified.
	Passthrough string
}

// Len returns the byte length of the output.
func (r Result) Len() int64 { return int64(len(r.Data)) }

var extByMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// NormalizeFilename swaps the extension of name for the one matching mime.
// Names with an unknown mime are returned unchanged.
func NormalizeFilename(name, mimeType string) string {
	ext, ok := extByMIME[mimeType]
	if !ok {
		return name
	}
	if name == "" {
		return "image" + ext
	}
	old := path.Ext(name)
	if strings.EqualFold(old, ext) || (ext == ".jpg" && strings.EqualFold(old, ".jpeg")) {
		return name
	}
	return strings.TrimSuffix(name, old) + ext
}

// DeclaredMIME is the content type a browser would attach to name, based
// on its extension only. It is empty for unknown extensions.
func DeclaredMIME(name string) string {
	t := mime.TypeByExtension(strings.ToLower(path.Ext(name)))
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}
