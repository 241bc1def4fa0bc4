package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/newsimg-cli/internal/media"
	"github.com/AnyUserName/newsimg-cli/internal/policy"
	"github.com/AnyUserName/newsimg-cli/internal/probe"
	"github.com/AnyUserName/newsimg-cli/internal/raster"
	"github.com/AnyUserName/newsimg-cli/internal/validate"
)

var probeCmd = &cobra.Command{
	Use:   "probe <file>",
	Short: "Show what newsimg would do with a file without encoding it",
	Args:  cobra.ExactArgs(1),
	RunE:  runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	asset := media.Asset{Data: data, MIME: media.DeclaredMIME(args[0]), Filename: filepath.Base(args[0])}
	b := cfg.Budget

	fmt.Println()
	fmt.Printf("  File:        %s (%s)\n", asset.Filename, humanize.Bytes(uint64(asset.Len())))
	fmt.Printf("  Sniffed:     %s\n", probe.Sniff(data))

	mime, err := validate.Check(asset, cfg.Validation)
	if err != nil {
		fmt.Printf("  Validation:  %v\n\n", err)
		return nil
	}
	asset.MIME = mime
	fmt.Println("  Validation:  ok")

	if asset.Len() <= b.SkipThresholdBytes {
		fmt.Printf("  Plan:        pass through (at or below %s)\n\n", humanize.Bytes(uint64(b.SkipThresholdBytes)))
		return nil
	}

	fmt.Printf("  Processable: %t\n", probe.Processable(probe.Sniff(data)))

	decoded, err := probe.Probe(asset)
	switch {
	case errors.Is(err, media.ErrNotProcessable):
		fmt.Printf("  Plan:        pass through (%s)\n\n", media.PassNotProcessable)
		return nil
	case err != nil:
		fmt.Printf("  Plan:        pass through (%s: %v)\n\n", media.PassDecodeError, err)
		return nil
	}

	p := decoded.Props
	w, h := raster.TargetSize(p.Width, p.Height, b.MaxWidthPx)
	container := policy.Policy{AlphaShrinkSteps: cfg.AlphaShrinkSteps}.Container(p)
	fmt.Printf("  Dimensions:  %dx%d\n", p.Width, p.Height)
	fmt.Printf("  Alpha:       %t\n", p.HasAlpha)
	fmt.Printf("  Plan:        %s at %dx%d, budget %s\n", container, w, h, humanize.Bytes(uint64(b.MaxOutputBytes)))
	fmt.Println()
	return nil
}
