package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/newsimg-cli/internal/budget"
	"github.com/AnyUserName/newsimg-cli/internal/raster"
	"github.com/AnyUserName/newsimg-cli/internal/reencode"
	"github.com/AnyUserName/newsimg-cli/internal/upload"
)

// encodeFlags are shared by encode and batch.
type encodeFlags struct {
	maxWidth    int
	quality     float64
	maxBytes    int64
	maxAttempts int
	skipBelow   int64
	resampler   string
	alphaSteps  int
	uploadURL   string
}

func (f *encodeFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.maxWidth, "max-width", 0, "maximum output width in pixels")
	fs.Float64VarP(&f.quality, "quality", "q", 0, "initial quality in (0,1]")
	fs.Int64Var(&f.maxBytes, "max-bytes", 0, "maximum output size in bytes")
	fs.IntVar(&f.maxAttempts, "max-attempts", 0, "maximum encode attempts per image")
	fs.Int64Var(&f.skipBelow, "skip-below", 0, "pass through inputs at or below this many bytes")
	fs.StringVar(&f.resampler, "resampler", "", "resampling backend: lanczos or catmullrom")
	fs.IntVar(&f.alphaSteps, "alpha-steps", 0, "extra narrower widths to try before dropping transparency")
	fs.StringVar(&f.uploadURL, "upload", "", "upload results to this URL as multipart/form-data")
}

// budget merges changed flags over the configured budget.
func (f *encodeFlags) budget(cmd *cobra.Command) (budget.Budget, error) {
	b := cfg.Budget
	fs := cmd.Flags()
	if fs.Changed("max-width") {
		b.MaxWidthPx = f.maxWidth
	}
	if fs.Changed("quality") {
		b.InitialQuality = f.quality
	}
	if fs.Changed("max-bytes") {
		b.MaxOutputBytes = f.maxBytes
	}
	if fs.Changed("max-attempts") {
		b.MaxAttempts = f.maxAttempts
	}
	if fs.Changed("skip-below") {
		b.SkipThresholdBytes = f.skipBelow
	}
	if err := b.Validate(); err != nil {
		return b, err
	}
	return b, nil
}

func (f *encodeFlags) resamplerName() string {
	if f.resampler != "" {
		return f.resampler
	}
	return cfg.Resampler
}

// encoder builds the re-encoder for the selected resampler.
func (f *encodeFlags) encoder() (*reencode.Encoder, error) {
	surface, err := raster.New(f.resamplerName(), nil)
	if err != nil {
		return nil, err
	}
	steps := cfg.AlphaShrinkSteps
	if f.alphaSteps > 0 {
		steps = f.alphaSteps
	}
	return reencode.New(
		reencode.WithSurface(surface),
		reencode.WithLogger(logger),
		reencode.WithAlphaShrinkSteps(steps),
	)
}

// uploader returns nil when no upload URL is configured.
func (f *encodeFlags) uploader() (*upload.Client, error) {
	uc, err := cfg.UploadConfig()
	if err != nil {
		return nil, err
	}
	if f.uploadURL != "" {
		uc.URL = f.uploadURL
	}
	if uc.URL == "" {
		return nil, nil
	}
	c, err := upload.New(uc, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	return c, nil
}
