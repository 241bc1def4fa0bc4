package search

import (
	"math"

	"github.com/AnyUserName/newsimg-cli/internal/budget"
	"github.com/AnyUserName/newsimg-cli/internal/raster"
)

// Candidate is one (width, quality) trial. Quality is in whole percent.
type Candidate struct {
	Width   int
	Height  int
	Quality int
	Attempt int
}

type verdict int

const (
	verdictContinue verdict = iota
	verdictSuccess
	verdictExhausted
)

// ladder is the candidate state machine. It only depends on the previous
// state, so the sequence is fully deterministic for a given budget.
type ladder struct {
	origW, origH int
	maxBytes     int64
	maxAttempts  int
	shrink       float64

	step, floor, reset int

	width   int
	quality int
	attempt int
}

func newLadder(origW, origH int, b budget.Budget) *ladder {
	step := budget.Percent(b.QualityStep)
	if step < 1 {
		step = 1
	}
	return &ladder{
		origW:       origW,
		origH:       origH,
		maxBytes:    b.MaxOutputBytes,
		maxAttempts: b.MaxAttempts,
		shrink:      b.WidthShrinkFactor,
		step:        step,
		floor:       budget.Percent(b.MinQualityFloor),
		reset:       budget.Percent(budget.ResetQuality),
		width:       min(origW, b.MaxWidthPx),
		quality:     budget.Percent(b.InitialQuality),
		attempt:     1,
	}
}

func (l *ladder) candidate() Candidate {
	w, h := raster.TargetSize(l.origW, l.origH, l.width)
	return Candidate{Width: w, Height: h, Quality: l.quality, Attempt: l.attempt}
}

// judge classifies the encoded size of the current candidate and, when
// the search continues, advances to the next candidate.
func (l *ladder) judge(size int64) verdict {
	if size <= l.maxBytes {
		return verdictSuccess
	}
	if l.attempt >= l.maxAttempts {
		return verdictExhausted
	}
	l.quality -= l.step
	if l.quality < l.floor {
		// Trade resolution for quality headroom instead of going blocky.
		l.quality = l.reset
		l.width = shrinkWidth(l.width, l.shrink)
	}
	l.attempt++
	return verdictContinue
}

func shrinkWidth(w int, factor float64) int {
	next := int(math.Floor(float64(w) * factor))
	if next < 1 {
		next = 1
	}
	return next
}
