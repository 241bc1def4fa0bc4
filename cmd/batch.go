package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/newsimg-cli/internal/manifest"
	"github.com/AnyUserName/newsimg-cli/internal/pipeline"
)

var (
	batchFlagSet encodeFlags
	batchOutDir  string
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch <input_dir>",
	Short: "Re-encode every upload in a directory and write a manifest",
	Long: `Scans the input directory for uploads (images, video, pdf), validates
each one, fits images under the byte budget and mirrors the directory
layout into the output directory.

A newsimg.manifest.json next to the outputs records per-file results.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchFlagSet.register(batchCmd)
	batchCmd.Flags().StringVarP(&batchOutDir, "out", "o", "./newsimg_out", "output directory")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel workers (0 = config or NumCPU)")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	start := time.Now()

	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(batchOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	if absInput == absOutput {
		return fmt.Errorf("output directory must differ from input directory")
	}

	b, err := batchFlagSet.budget(cmd)
	if err != nil {
		return err
	}
	enc, err := batchFlagSet.encoder()
	if err != nil {
		return err
	}
	up, err := batchFlagSet.uploader()
	if err != nil {
		return err
	}
	workers := cfg.Workers
	if batchWorkers > 0 {
		workers = batchWorkers
	}

	logger.Debug("batch", "input", absInput, "output", absOutput, "profile", cfg.Profile,
		"max_width", b.MaxWidthPx, "max_bytes", b.MaxOutputBytes)

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p := pipeline.New(pipeline.Config{
		InputDir:   absInput,
		OutputDir:  absOutput,
		Profile:    cfg.Profile,
		Budget:     b,
		Validation: cfg.Validation,
		Workers:    workers,
		Resampler:  batchFlagSet.resamplerName(),
		Logger:     logger,
		Uploader:   up,
	}, enc)

	m, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	manifestPath := filepath.Join(absOutput, manifest.FileName)
	if err := manifest.WriteJSON(m, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	printBatchReport(m, time.Since(start))
	return nil
}

func printBatchReport(m *manifest.Manifest, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("  newsimg batch complete")
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Assets:      %d\n", s.TotalAssets)
	fmt.Printf("  Re-encoded:  %d\n", s.Reencoded)
	fmt.Printf("  Passthrough: %d\n", s.Passthrough)
	if s.Rejected > 0 {
		fmt.Printf("  Rejected:    %d\n", s.Rejected)
	}
	if s.Failed > 0 {
		fmt.Printf("  Failed:      %d\n", s.Failed)
	}
	if s.OverBudget > 0 {
		fmt.Printf("  Over budget: %d\n", s.OverBudget)
	}
	if s.UploadFailures > 0 {
		fmt.Printf("  Upload failures: %d\n", s.UploadFailures)
	}
	fmt.Printf("  Input size:  %s\n", humanize.Bytes(uint64(s.TotalInputBytes)))
	fmt.Printf("  Output size: %s\n", humanize.Bytes(uint64(s.TotalOutputBytes)))
	fmt.Printf("  Ratio:       %.1f%% of original\n", ratio(s.TotalOutputBytes, s.TotalInputBytes))
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:     %d (%s)\n", m.BuildInfo.Workers, m.BuildInfo.Resampler)
	}
	fmt.Println()

	// Top 10 heaviest inputs.
	type assetSize struct {
		key        string
		inputSize  int64
		outputSize int64
	}
	var items []assetSize
	for key, a := range m.Assets {
		if a.Output == nil {
			continue
		}
		items = append(items, assetSize{key, a.Input.Size, a.Output.Size})
	}
	if len(items) == 0 {
		return
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].inputSize != items[j].inputSize {
			return items[i].inputSize > items[j].inputSize
		}
		return items[i].key < items[j].key
	})
	n := min(len(items), 10)
	fmt.Printf("  Top %d heaviest (original -> output):\n", n)
	for _, it := range items[:n] {
		fmt.Printf("    %-40s %10s -> %10s  (%.0f%%)\n",
			truncKey(it.key, 40),
			humanize.Bytes(uint64(it.inputSize)),
			humanize.Bytes(uint64(it.outputSize)),
			ratio(it.outputSize, it.inputSize),
		)
	}
	fmt.Println()
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
