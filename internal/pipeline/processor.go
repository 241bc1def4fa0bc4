package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnyUserName/newsimg-cli/internal/hasher"
	"github.com/AnyUserName/newsimg-cli/internal/manifest"
	"github.com/AnyUserName/newsimg-cli/internal/media"
	"github.com/AnyUserName/newsimg-cli/internal/upload"
	"github.com/AnyUserName/newsimg-cli/internal/validate"
)

// processResult holds the result of processing a single source.
type processResult struct {
	key   string
	asset manifest.Asset
	err   error
}

// process handles one source: read, validate, re-encode, write, upload.
// Only context cancellation is returned as an error; everything else is
// recorded on the result.
func (p *Pipeline) process(ctx context.Context, src Source, outs *outputs) (processResult, error) {
	result := processResult{key: src.Key}
	result.asset.Input = manifest.InputInfo{Path: src.RelPath, Size: src.Size}

	data, err := os.ReadFile(src.AbsPath)
	if err != nil {
		result.err = fmt.Errorf("read %s: %w", src.RelPath, err)
		return result, nil
	}
	name := filepath.Base(src.RelPath)
	asset := media.Asset{
		Data:     data,
		MIME:     media.DeclaredMIME(name),
		Filename: name,
	}

	mime, err := validate.Check(asset, p.cfg.Validation)
	result.asset.Input = manifest.InputInfo{Path: src.RelPath, MIME: mime, Size: asset.Len()}
	if err != nil {
		var re *validate.RejectError
		if errors.As(err, &re) {
			p.log.Warn("rejected", "key", src.Key, "reason", re.Reason, "detail", re.Detail)
			result.asset.Rejected = re.Reason
			return result, nil
		}
		result.err = fmt.Errorf("validate %s: %w", src.RelPath, err)
		return result, nil
	}
	asset.MIME = mime

	res, err := p.encoder.Encode(ctx, asset, p.cfg.Budget)
	if err != nil {
		return result, err
	}

	relPath := outs.path(src, res.Filename)
	if err := outs.claim(relPath, src.Key); err != nil {
		result.err = err
		return result, nil
	}
	outPath := filepath.Join(p.cfg.OutputDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		result.err = fmt.Errorf("create dir for %s: %w", relPath, err)
		return result, nil
	}
	if err := os.WriteFile(outPath, res.Data, 0o644); err != nil {
		result.err = fmt.Errorf("write %s: %w", relPath, err)
		return result, nil
	}

	result.asset.Output = &manifest.OutputInfo{
		Path:        relPath,
		MIME:        res.MIME,
		Width:       res.Width,
		Height:      res.Height,
		Size:        res.Len(),
		Hash:        hasher.Sum(res.Data),
		Attempts:    res.Attempts,
		MetBudget:   res.MetBudget,
		Passthrough: res.Passthrough,
	}
	p.log.Debug("done", "key", src.Key, "bytes", res.Len(), "attempts", res.Attempts,
		"met_budget", res.MetBudget, "passthrough", res.Passthrough)

	if p.cfg.Uploader != nil {
		result.asset.Upload = p.upload(ctx, src, res)
	}
	return result, nil
}

func (p *Pipeline) upload(ctx context.Context, src Source, res media.Result) *manifest.UploadInfo {
	resp, err := p.cfg.Uploader.Upload(ctx, upload.File{Name: res.Filename, MIME: res.MIME, Data: res.Data},
		func(pct int) { p.log.Debug("upload progress", "key", src.Key, "percent", pct) })
	if err != nil {
		p.log.Warn("upload failed", "key", src.Key, "err", err)
		info := &manifest.UploadInfo{Error: err.Error()}
		var se *upload.StatusError
		if errors.As(err, &se) {
			info.Status = se.Status
		}
		return info
	}
	return &manifest.UploadInfo{Status: resp.Status}
}
