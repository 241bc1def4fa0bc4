// Package search runs the bounded (width, quality) search that fits an
// encoded image under a byte budget.
package search

import (
	"context"
	"image"
	"log/slog"

	"github.com/AnyUserName/newsimg-cli/internal/budget"
	"github.com/AnyUserName/newsimg-cli/internal/logging"
	"github.com/AnyUserName/newsimg-cli/internal/media"
	"github.com/AnyUserName/newsimg-cli/internal/raster"
)

// Outcome is the encoded bytes of one candidate and how they were made.
type Outcome struct {
	Data      []byte
	Container media.Container
	Width     int
	Height    int
	Quality   int // whole percent; 0 for the alpha-preserving container
	Attempts  int
	MetBudget bool
}

// Len returns the encoded byte length.
func (o Outcome) Len() int64 { return int64(len(o.Data)) }

// Controller evaluates candidates one at a time against a Surface.
type Controller struct {
	surface raster.Surface
	log     *slog.Logger
}

// New creates a controller. A nil logger discards output.
func New(surface raster.Surface, log *slog.Logger) *Controller {
	return &Controller{surface: surface, log: logging.OrDiscard(log)}
}

// Run searches the opaque container. It stops at the first candidate that
// fits b.MaxOutputBytes, or after b.MaxAttempts candidates, in which case
// the smallest encoding produced is returned with MetBudget false.
//
// A codec failure aborts the search with a *media.EncodeError. The context
// is checked before each candidate.
func (c *Controller) Run(ctx context.Context, src image.Image, props media.Properties, b budget.Budget) (Outcome, error) {
	l := newLadder(props.Width, props.Height, b)
	var best Outcome

	for {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		cand := l.candidate()
		data, err := c.renderOpaque(src, cand)
		if err != nil {
			return Outcome{}, err
		}
		c.log.Debug("candidate",
			"attempt", cand.Attempt,
			"width", cand.Width,
			"height", cand.Height,
			"quality", cand.Quality,
			"bytes", len(data),
		)

		out := Outcome{
			Data:      data,
			Container: media.Opaque,
			Width:     cand.Width,
			Height:    cand.Height,
			Quality:   cand.Quality,
			Attempts:  cand.Attempt,
		}
		// Keep the smallest so the returned size never grows across attempts.
		if best.Data == nil || out.Len() <= best.Len() {
			best = out
		}

		switch l.judge(out.Len()) {
		case verdictSuccess:
			out.MetBudget = true
			return out, nil
		case verdictExhausted:
			best.Attempts = cand.Attempt
			best.MetBudget = false
			return best, nil
		}
	}
}

func (c *Controller) renderOpaque(src image.Image, cand Candidate) ([]byte, error) {
	pixels := c.surface.Render(src, cand.Width, cand.Height)
	data, err := c.surface.EncodeOpaque(pixels, cand.Quality)
	if err != nil {
		return nil, &media.EncodeError{Container: media.Opaque, Width: cand.Width, Height: cand.Height, Err: err}
	}
	return data, nil
}

// Alpha encodes into the alpha-preserving container at
// min(width, b.MaxWidthPx). With extraSteps > 0 the width is shrunk by
// b.WidthShrinkFactor up to extraSteps more times while the result misses
// the budget. The last encoding is returned; MetBudget tells the caller
// whether transparency can be kept.
func (c *Controller) Alpha(ctx context.Context, src image.Image, props media.Properties, b budget.Budget, extraSteps int) (Outcome, error) {
	width := min(props.Width, b.MaxWidthPx)
	var out Outcome

	for i := 0; i <= extraSteps; i++ {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		w, h := raster.TargetSize(props.Width, props.Height, width)
		pixels := c.surface.Render(src, w, h)
		data, err := c.surface.EncodeAlpha(pixels)
		if err != nil {
			return Outcome{}, &media.EncodeError{Container: media.AlphaPreserving, Width: w, Height: h, Err: err}
		}
		c.log.Debug("alpha candidate", "attempt", i+1, "width", w, "height", h, "bytes", len(data))

		out = Outcome{
			Data:      data,
			Container: media.AlphaPreserving,
			Width:     w,
			Height:    h,
			Attempts:  i + 1,
			MetBudget: int64(len(data)) <= b.MaxOutputBytes,
		}
		if out.MetBudget || w == 1 {
			break
		}
		width = shrinkWidth(width, b.WidthShrinkFactor)
	}
	return out, nil
}
