package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/AnyUserName/newsimg-cli/internal/budget"
	"github.com/AnyUserName/newsimg-cli/internal/logging"
	"github.com/AnyUserName/newsimg-cli/internal/manifest"
	"github.com/AnyUserName/newsimg-cli/internal/reencode"
	"github.com/AnyUserName/newsimg-cli/internal/upload"
	"github.com/AnyUserName/newsimg-cli/internal/validate"
)

// Config holds all parameters for a batch run.
type Config struct {
	InputDir   string
	OutputDir  string
	Profile    string
	Budget     budget.Budget
	Validation validate.Policy
	Workers    int
	Resampler  string
	Logger     *slog.Logger

	// Uploader is optional; when set every written output is uploaded.
	Uploader *upload.Client
}

// Pipeline re-encodes every upload candidate in a directory.
type Pipeline struct {
	cfg     Config
	encoder *reencode.Encoder
	log     *slog.Logger
}

// New creates a configured pipeline around a shared encoder.
func New(cfg Config, enc *reencode.Encoder) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Pipeline{
		cfg:     cfg,
		encoder: enc,
		log:     logging.OrDiscard(cfg.Logger),
	}
}

// Run executes the batch and returns the manifest. Individual file
// failures are recorded in the manifest and do not stop the run.
func (p *Pipeline) Run(ctx context.Context) (*manifest.Manifest, error) {
	sources, err := ScanUploads(p.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no uploads found in %s", p.cfg.InputDir)
	}
	p.log.Info("found uploads", "count", len(sources), "workers", p.cfg.Workers)

	// Each encode owns its own state; results are joined by index.
	outs := newOutputs(sources)
	results := make([]processResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for i, src := range sources {
		g.Go(func() error {
			p.log.Debug("processing", "key", src.Key)
			r, err := p.process(gctx, src, outs)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := manifest.New(p.cfg.Profile, p.cfg.Budget)
	failed := 0
	for _, r := range results {
		if r.err != nil {
			p.log.Error("asset failed", "key", r.key, "err", r.err)
			r.asset.Error = r.err.Error()
			r.asset.Output = nil
			failed++
		}
		m.Assets[r.key] = r.asset
	}
	if failed > 0 && failed == len(sources) {
		return nil, fmt.Errorf("all %d uploads failed to process", failed)
	}

	m.BuildInfo = &manifest.BuildInfo{
		Workers:   p.cfg.Workers,
		Resampler: p.cfg.Resampler,
	}
	m.ComputeStats()
	return m, nil
}
