package media

import (
	"errors"
	"fmt"
)

var (
	// ErrNotProcessable marks containers outside the re-encode allow-list.
	ErrNotProcessable = errors.New("not processable")
	// ErrEmptyOutput is returned when a codec produced zero bytes.
	ErrEmptyOutput = errors.New("encoder produced no output")
)

// DecodeError wraps a failure to turn asset bytes into pixels.
type DecodeError struct {
	MIME string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.MIME, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError wraps a codec failure for one candidate.
type EncodeError struct {
	Container Container
	Width     int
	Height    int
	Err       error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s %dx%d: %v", e.Container, e.Width, e.Height, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
