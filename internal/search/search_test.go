package search

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/AnyUserName/newsimg-cli/internal/budget"
	"github.com/AnyUserName/newsimg-cli/internal/media"
	"github.com/AnyUserName/newsimg-cli/internal/raster"
)

// blank is a zero-cost image of a given size.
type blank struct{ r image.Rectangle }

func (b blank) ColorModel() color.Model { return color.NRGBAModel }
func (b blank) Bounds() image.Rectangle { return b.r }
func (b blank) At(int, int) color.Color { return color.NRGBA{A: 255} }

// fakeSurface records every encode and sizes output with sizeFn.
type fakeSurface struct {
	sizeFn    func(w, h, q int) int
	alphaSize func(w, h int) int
	err       error
	calls     []Candidate
}

func (f *fakeSurface) Name() string { return "fake" }

func (f *fakeSurface) Render(_ image.Image, w, h int) image.Image {
	return blank{image.Rect(0, 0, w, h)}
}

func (f *fakeSurface) EncodeOpaque(img image.Image, q int) ([]byte, error) {
	b := img.Bounds()
	f.calls = append(f.calls, Candidate{Width: b.Dx(), Height: b.Dy(), Quality: q, Attempt: len(f.calls) + 1})
	if f.err != nil {
		return nil, f.err
	}
	return make([]byte, f.sizeFn(b.Dx(), b.Dy(), q)), nil
}

func (f *fakeSurface) EncodeAlpha(img image.Image) ([]byte, error) {
	b := img.Bounds()
	f.calls = append(f.calls, Candidate{Width: b.Dx(), Height: b.Dy(), Attempt: len(f.calls) + 1})
	if f.err != nil {
		return nil, f.err
	}
	return make([]byte, f.alphaSize(b.Dx(), b.Dy())), nil
}

var _ raster.Surface = (*fakeSurface)(nil)

// photoSize makes the 1400x1050 q75 candidate exactly 900000 bytes.
func photoSize(w, h, q int) int {
	return int(int64(w) * int64(h) * int64(q) * 900000 / (1400 * 1050 * 75))
}

func photoProps() media.Properties {
	return media.Properties{Width: 4000, Height: 3000, MIME: "image/jpeg"}
}

func TestLadder_QualityThenWidth(t *testing.T) {
	l := newLadder(4000, 3000, budget.Default())
	var got []Candidate
	for {
		got = append(got, l.candidate())
		if l.judge(1 << 40) != verdictContinue {
			break
		}
	}
	want := []Candidate{
		{1400, 1050, 75, 1},
		{1400, 1050, 65, 2},
		{1400, 1050, 55, 3},
		{1400, 1050, 45, 4},
		{1050, 788, 70, 5},
		{1050, 788, 60, 6},
		{1050, 788, 50, 7},
		{1050, 788, 40, 8},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("candidate sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestLadder_SecondWidthStep(t *testing.T) {
	b := budget.Default()
	b.MaxAttempts = 12
	l := newLadder(4000, 3000, b)
	var widths []int
	for l.judge(1<<40) == verdictContinue {
		widths = append(widths, l.candidate().Width)
	}
	// 1400 x3 more, then 1050 x4, then floor(1050*0.75)=787.
	want := []int{1400, 1400, 1400, 1050, 1050, 1050, 1050, 787, 787, 787, 787}
	if diff := cmp.Diff(want, widths); diff != "" {
		t.Errorf("widths (-want +got):\n%s", diff)
	}
}

func TestRun_LargePhotoSteppedDown(t *testing.T) {
	s := &fakeSurface{sizeFn: photoSize}
	out, err := New(s, nil).Run(context.Background(), nil, photoProps(), budget.Default())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []Candidate{
		{1400, 1050, 75, 1},
		{1400, 1050, 65, 2},
		{1400, 1050, 55, 3},
	}
	if diff := cmp.Diff(want, s.calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
	if !out.MetBudget || out.Attempts != 3 || out.Quality != 55 {
		t.Errorf("outcome: met=%v attempts=%d q=%d", out.MetBudget, out.Attempts, out.Quality)
	}
	if out.Len() > budget.DefaultMaxOutputBytes {
		t.Errorf("outcome over budget: %d", out.Len())
	}
	if out.Container != media.Opaque {
		t.Errorf("container: got %v", out.Container)
	}
}

func TestRun_FirstCandidateFits(t *testing.T) {
	s := &fakeSurface{sizeFn: func(int, int, int) int { return 1000 }}
	out, err := New(s, nil).Run(context.Background(), nil, photoProps(), budget.Default())
	if err != nil {
		t.Fatal(err)
	}
	if !out.MetBudget || out.Attempts != 1 || len(s.calls) != 1 {
		t.Errorf("got met=%v attempts=%d calls=%d", out.MetBudget, out.Attempts, len(s.calls))
	}
}

func TestRun_ExhaustedIsBestEffort(t *testing.T) {
	s := &fakeSurface{sizeFn: photoSize}
	b := budget.Default()
	b.MaxOutputBytes = 1000
	b.SkipThresholdBytes = 500

	out, err := New(s, nil).Run(context.Background(), nil, photoProps(), b)
	if err != nil {
		t.Fatal(err)
	}
	if out.MetBudget {
		t.Error("met budget reported for an oversized result")
	}
	if out.Attempts != b.MaxAttempts || len(s.calls) != b.MaxAttempts {
		t.Errorf("attempts: got %d (calls %d), want %d", out.Attempts, len(s.calls), b.MaxAttempts)
	}
	if out.Len() == 0 {
		t.Fatal("empty best-effort output")
	}
	last := s.calls[len(s.calls)-1]
	if out.Width != last.Width || out.Quality != last.Quality {
		t.Errorf("best effort should be the last candidate here: got %dpx q%d, last %dpx q%d",
			out.Width, out.Quality, last.Width, last.Quality)
	}
}

func TestRun_SizesNonIncreasing(t *testing.T) {
	s := &fakeSurface{sizeFn: photoSize}
	b := budget.Default()
	b.MaxOutputBytes = 1000
	b.SkipThresholdBytes = 0
	if _, err := New(s, nil).Run(context.Background(), nil, photoProps(), b); err != nil {
		t.Fatal(err)
	}
	prev := -1
	for _, c := range s.calls {
		size := photoSize(c.Width, c.Height, c.Quality)
		if prev >= 0 && size > prev {
			t.Errorf("attempt %d grew: %d > %d", c.Attempt, size, prev)
		}
		prev = size
	}
}

func TestRun_ReturnsSmallestWhenBackendRegresses(t *testing.T) {
	sizes := []int{5000, 4000, 4500, 4200}
	s := &fakeSurface{}
	s.sizeFn = func(int, int, int) int { return sizes[len(s.calls)-1] }
	b := budget.Default()
	b.MaxAttempts = 4
	b.MaxOutputBytes = 100
	b.SkipThresholdBytes = 0

	out, err := New(s, nil).Run(context.Background(), nil, photoProps(), b)
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 4000 || out.Quality != 65 {
		t.Errorf("got %d bytes at q%d, want 4000 at q65", out.Len(), out.Quality)
	}
	if out.Attempts != 4 {
		t.Errorf("attempts: got %d", out.Attempts)
	}
}

func TestRun_WidthNeverExceedsSource(t *testing.T) {
	s := &fakeSurface{sizeFn: func(int, int, int) int { return 10 }}
	props := media.Properties{Width: 800, Height: 601}
	out, err := New(s, nil).Run(context.Background(), nil, props, budget.Default())
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 800 || out.Height != 601 {
		t.Errorf("small source should keep its size, got %dx%d", out.Width, out.Height)
	}
}

func TestRun_EncodeErrorAborts(t *testing.T) {
	s := &fakeSurface{err: media.ErrEmptyOutput}
	_, err := New(s, nil).Run(context.Background(), nil, photoProps(), budget.Default())
	var ee *media.EncodeError
	if !errors.As(err, &ee) {
		t.Fatalf("got %v, want EncodeError", err)
	}
	if len(s.calls) != 1 {
		t.Errorf("encode error must not be retried, got %d calls", len(s.calls))
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &fakeSurface{sizeFn: photoSize}
	_, err := New(s, nil).Run(ctx, nil, photoProps(), budget.Default())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if len(s.calls) != 0 {
		t.Errorf("canceled search rendered %d candidates", len(s.calls))
	}
}

func TestAlpha_SingleShot(t *testing.T) {
	s := &fakeSurface{alphaSize: func(w, h int) int { return w * h / 2 }}
	props := media.Properties{Width: 2000, Height: 2000, HasAlpha: true}

	out, err := New(s, nil).Alpha(context.Background(), nil, props, budget.Default(), 0)
	if err != nil {
		t.Fatal(err)
	}
	// 1400*1400/2 = 980000 > 768000
	if out.MetBudget {
		t.Error("oversized alpha encode reported as fitting")
	}
	if len(s.calls) != 1 || out.Width != 1400 || out.Height != 1400 {
		t.Errorf("got %d calls, %dx%d", len(s.calls), out.Width, out.Height)
	}
	if out.Container != media.AlphaPreserving || out.Quality != 0 {
		t.Errorf("outcome: %+v", out)
	}
}

func TestAlpha_ExtraSteps(t *testing.T) {
	s := &fakeSurface{alphaSize: func(w, h int) int { return w * h / 2 }}
	props := media.Properties{Width: 2000, Height: 2000, HasAlpha: true}

	out, err := New(s, nil).Alpha(context.Background(), nil, props, budget.Default(), 3)
	if err != nil {
		t.Fatal(err)
	}
	// 1400 -> 1050: 1050*1050/2 = 551250 fits.
	if !out.MetBudget || out.Width != 1050 || out.Attempts != 2 {
		t.Errorf("got met=%v width=%d attempts=%d", out.MetBudget, out.Width, out.Attempts)
	}
}
