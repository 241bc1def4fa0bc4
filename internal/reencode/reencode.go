// Package reencode is the entry point for fitting one uploaded image under
// a byte budget. An Encoder holds no per-call state and is safe for
// concurrent use.
package reencode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AnyUserName/newsimg-cli/internal/budget"
	"github.com/AnyUserName/newsimg-cli/internal/logging"
	"github.com/AnyUserName/newsimg-cli/internal/media"
	"github.com/AnyUserName/newsimg-cli/internal/policy"
	"github.com/AnyUserName/newsimg-cli/internal/probe"
	"github.com/AnyUserName/newsimg-cli/internal/raster"
	"github.com/AnyUserName/newsimg-cli/internal/search"
)

// Encoder combines probe, policy and search for a single asset.
type Encoder struct {
	surface raster.Surface
	policy  policy.Policy
	log     *slog.Logger
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithSurface sets the rendering backend (default: Lanczos).
func WithSurface(s raster.Surface) Option {
	return func(e *Encoder) { e.surface = s }
}

// WithLogger sets the logger for per-candidate diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Encoder) { e.log = l }
}

// WithAlphaShrinkSteps lets the alpha-preserving container try n smaller
// widths before transparency is dropped.
func WithAlphaShrinkSteps(n int) Option {
	return func(e *Encoder) {
		if n > 0 {
			e.policy.AlphaShrinkSteps = n
		}
	}
}

// New creates an Encoder.
func New(opts ...Option) (*Encoder, error) {
	e := &Encoder{}
	for _, opt := range opts {
		opt(e)
	}
	e.log = logging.OrDiscard(e.log)
	if e.surface == nil {
		s, err := raster.New("lanczos", nil)
		if err != nil {
			return nil, fmt.Errorf("default surface: %w", err)
		}
		e.surface = s
	}
	return e, nil
}

// Encode fits asset under b.
//
// Any probe or codec failure returns the original bytes unmodified, with
// Passthrough naming the reason and MetBudget comparing the original
// length against the budget. The only error ever returned is the
// context's, after which the Result is likewise the untouched original.
func (e *Encoder) Encode(ctx context.Context, asset media.Asset, b budget.Budget) (media.Result, error) {
	log := e.log.With("file", asset.Filename, "bytes", asset.Len())

	if err := b.Validate(); err != nil {
		var field string
		var fe *budget.FieldError
		if errors.As(err, &fe) {
			field = fe.Field
		}
		log.Warn("invalid budget, passing through", "reason", media.PassInvalidBudget, "field", field, "err", err)
		return passthrough(asset, b, media.PassInvalidBudget, 0, 0), nil
	}

	if asset.Len() <= b.SkipThresholdBytes {
		log.Debug("below skip threshold", "threshold", b.SkipThresholdBytes)
		res := passthrough(asset, b, media.PassSkip, 0, 0)
		res.MetBudget = true
		return res, nil
	}

	decoded, err := probe.Probe(asset)
	if err != nil {
		reason := media.PassDecodeError
		if errors.Is(err, media.ErrNotProcessable) {
			reason = media.PassNotProcessable
		}
		log.Debug("passing through", "reason", reason, "err", err)
		return passthrough(asset, b, reason, 0, 0), nil
	}
	props := decoded.Props
	log = log.With("width", props.Width, "height", props.Height, "alpha", props.HasAlpha)

	ctrl := search.New(e.surface, log)
	out, err := e.run(ctx, ctrl, decoded, b, log)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			log.Debug("canceled", "err", err)
			return passthrough(asset, b, media.PassCanceled, props.Width, props.Height), err
		}
		log.Debug("passing through", "reason", media.PassEncodeError, "err", err)
		return passthrough(asset, b, media.PassEncodeError, props.Width, props.Height), nil
	}

	mime := out.Container.MIME()
	return media.Result{
		Data:      out.Data,
		MIME:      mime,
		Filename:  media.NormalizeFilename(asset.Filename, mime),
		Width:     out.Width,
		Height:    out.Height,
		Attempts:  out.Attempts,
		MetBudget: out.Len() <= b.MaxOutputBytes,
	}, nil
}

func (e *Encoder) run(ctx context.Context, ctrl *search.Controller, d *probe.Decoded, b budget.Budget, log *slog.Logger) (search.Outcome, error) {
	var alphaAttempts int
	if e.policy.Container(d.Props) == media.AlphaPreserving {
		alpha, err := ctrl.Alpha(ctx, d.Image, d.Props, b, e.policy.AlphaShrinkSteps)
		if err != nil {
			return search.Outcome{}, err
		}
		if e.policy.Resolve(alpha) == policy.KeepAlpha {
			return alpha, nil
		}
		log.Debug("alpha encode misses budget, dropping transparency",
			"bytes", alpha.Len(), "budget", b.MaxOutputBytes)
		alphaAttempts = alpha.Attempts
	}

	out, err := ctrl.Run(ctx, d.Image, d.Props, b)
	if err != nil {
		return search.Outcome{}, err
	}
	out.Attempts += alphaAttempts
	return out, nil
}

func passthrough(asset media.Asset, b budget.Budget, reason string, w, h int) media.Result {
	return media.Result{
		Data:        asset.Data,
		MIME:        asset.MIME,
		Filename:    asset.Filename,
		Width:       w,
		Height:      h,
		MetBudget:   asset.Len() <= b.MaxOutputBytes,
		Passthrough: reason,
	}
}
