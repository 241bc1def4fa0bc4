// Package budget defines the size/quality constraints a single re-encode
// must satisfy, plus named presets for common portal surfaces.
package budget

import (
	"fmt"
	"math"
)

// Defaults exposed to callers.
const (
	DefaultMaxWidthPx         = 1400
	DefaultInitialQuality     = 0.75
	DefaultMaxOutputBytes     = 768000 // 750 KiB
	DefaultMaxAttempts        = 8
	DefaultMinQualityFloor    = 0.4
	DefaultQualityStep        = 0.1
	DefaultWidthShrinkFactor  = 0.75
	DefaultSkipThresholdBytes = 512000 // 500 KiB
)

// ResetQuality is the quality the ladder restarts at after a width step.
const ResetQuality = 0.7

// Budget is immutable for the duration of one encode call.
type Budget struct {
	MaxWidthPx         int     `toml:"max_width_px" json:"max_width_px"`
	InitialQuality     float64 `toml:"initial_quality" json:"initial_quality"`
	MaxOutputBytes     int64   `toml:"max_output_bytes" json:"max_output_bytes"`
	MaxAttempts        int     `toml:"max_attempts" json:"max_attempts"`
	MinQualityFloor    float64 `toml:"min_quality_floor" json:"min_quality_floor"`
	QualityStep        float64 `toml:"quality_step" json:"quality_step"`
	WidthShrinkFactor  float64 `toml:"width_shrink_factor" json:"width_shrink_factor"`
	SkipThresholdBytes int64   `toml:"skip_threshold_bytes" json:"skip_threshold_bytes"`
}

// Default returns the budget used for news-article images.
func Default() Budget {
	return Budget{
		MaxWidthPx:         DefaultMaxWidthPx,
		InitialQuality:     DefaultInitialQuality,
		MaxOutputBytes:     DefaultMaxOutputBytes,
		MaxAttempts:        DefaultMaxAttempts,
		MinQualityFloor:    DefaultMinQualityFloor,
		QualityStep:        DefaultQualityStep,
		WidthShrinkFactor:  DefaultWidthShrinkFactor,
		SkipThresholdBytes: DefaultSkipThresholdBytes,
	}
}

// FieldError names the budget field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("budget: %s %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate reports the first field that makes the budget unusable.
// Quality factors must resolve to at least one whole percent.
func (b Budget) Validate() error {
	switch {
	case b.MaxWidthPx < 1:
		return invalid("max_width_px", "must be >= 1, got %d", b.MaxWidthPx)
	case b.InitialQuality <= 0 || b.InitialQuality > 1:
		return invalid("initial_quality", "must be in (0,1], got %g", b.InitialQuality)
	case Percent(b.InitialQuality) < 1:
		return invalid("initial_quality", "must be at least 0.01, got %g", b.InitialQuality)
	case b.MaxOutputBytes < 1:
		return invalid("max_output_bytes", "must be >= 1, got %d", b.MaxOutputBytes)
	case b.MaxAttempts < 1:
		return invalid("max_attempts", "must be >= 1, got %d", b.MaxAttempts)
	case b.MinQualityFloor <= 0 || b.MinQualityFloor > 1:
		return invalid("min_quality_floor", "must be in (0,1], got %g", b.MinQualityFloor)
	case Percent(b.MinQualityFloor) < 1:
		return invalid("min_quality_floor", "must be at least 0.01, got %g", b.MinQualityFloor)
	case b.QualityStep <= 0 || b.QualityStep >= 1:
		return invalid("quality_step", "must be in (0,1), got %g", b.QualityStep)
	case Percent(b.QualityStep) < 1:
		return invalid("quality_step", "must be at least 0.01, got %g", b.QualityStep)
	case b.WidthShrinkFactor <= 0 || b.WidthShrinkFactor >= 1:
		return invalid("width_shrink_factor", "must be in (0,1), got %g", b.WidthShrinkFactor)
	case b.SkipThresholdBytes < 0:
		return invalid("skip_threshold_bytes", "must be >= 0, got %d", b.SkipThresholdBytes)
	case b.SkipThresholdBytes > b.MaxOutputBytes:
		return invalid("skip_threshold_bytes", "(%d) exceeds max_output_bytes (%d)",
			b.SkipThresholdBytes, b.MaxOutputBytes)
	}
	return nil
}

// Percent converts a (0,1] quality factor to integer percent.
// The search works in whole percents so repeated steps never drift.
func Percent(q float64) int {
	return int(math.Round(q * 100))
}
