package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/newsimg-cli/internal/media"
	"github.com/AnyUserName/newsimg-cli/internal/upload"
	"github.com/AnyUserName/newsimg-cli/internal/validate"
)

var (
	encodeFlagSet encodeFlags
	encodeOutDir  string
	encodeMIME    string
	encodeForce   bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode <file>",
	Short: "Re-encode a single image to fit the budget",
	Long: `Validates one file, fits it under the byte budget and writes the
result into the output directory. An existing output file is only
replaced with --force. The output name keeps the input's stem;
the extension follows the chosen container (.jpg or .png).

Non-image uploads and undecodable images are copied through unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runEncode,
}

func init() {
	encodeFlagSet.register(encodeCmd)
	encodeCmd.Flags().StringVarP(&encodeOutDir, "out", "o", "./newsimg_out", "output directory")
	encodeCmd.Flags().BoolVarP(&encodeForce, "force", "f", false, "overwrite an existing output file")
	encodeCmd.Flags().StringVar(&encodeMIME, "mime", "", "declared content type (from the extension when empty)")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	start := time.Now()
	b, err := encodeFlagSet.budget(cmd)
	if err != nil {
		return err
	}
	enc, err := encodeFlagSet.encoder()
	if err != nil {
		return err
	}
	up, err := encodeFlagSet.uploader()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	asset := media.Asset{Data: data, MIME: encodeMIME, Filename: filepath.Base(args[0])}
	if asset.MIME == "" {
		asset.MIME = media.DeclaredMIME(asset.Filename)
	}

	mime, err := validate.Check(asset, cfg.Validation)
	if err != nil {
		return err
	}
	asset.MIME = mime

	res, err := enc.Encode(cmd.Context(), asset, b)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if err := os.MkdirAll(encodeOutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	outPath := filepath.Join(encodeOutDir, res.Filename)
	if err := writeOutput(outPath, args[0], res.Data, encodeForce); err != nil {
		return err
	}

	printEncodeReport(asset, res, outPath, time.Since(start))

	if up != nil {
		resp, err := up.Upload(cmd.Context(), upload.File{Name: res.Filename, MIME: res.MIME, Data: res.Data},
			func(pct int) { logger.Debug("upload progress", "percent", pct) })
		if err != nil {
			return err
		}
		fmt.Printf("  Uploaded:    HTTP %d\n\n", resp.Status)
	}
	return nil
}

func printEncodeReport(in media.Asset, res media.Result, outPath string, elapsed time.Duration) {
	fmt.Println()
	fmt.Printf("  Input:       %s (%s, %s)\n", in.Filename, in.MIME, humanize.Bytes(uint64(in.Len())))
	fmt.Printf("  Output:      %s (%s, %s)\n", outPath, res.MIME, humanize.Bytes(uint64(res.Len())))
	if res.Width > 0 {
		fmt.Printf("  Dimensions:  %dx%d\n", res.Width, res.Height)
	}
	if res.Passthrough != "" {
		fmt.Printf("  Passthrough: %s\n", res.Passthrough)
	} else {
		fmt.Printf("  Attempts:    %d\n", res.Attempts)
		fmt.Printf("  Ratio:       %.1f%% of original\n", ratio(res.Len(), in.Len()))
	}
	if res.MetBudget {
		fmt.Println("  Budget:      met")
	} else {
		fmt.Println("  Budget:      exceeded (best effort)")
	}
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()
}

var errOutputExists = errors.New("output file already exists; pass --force to overwrite")

// writeOutput writes data to outPath. Existing files are left alone unless
// force is set, and the input itself is never overwritten.
func writeOutput(outPath, inputPath string, data []byte, force bool) error {
	if same, _ := samePath(outPath, inputPath); same {
		return errors.New("output would overwrite the input; choose another --out")
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(outPath, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s: %w", outPath, errOutputExists)
	}
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func samePath(a, b string) (bool, error) {
	ia, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ia, ib), nil
}

func ratio(out, in int64) float64 {
	if in <= 0 {
		return 0
	}
	return float64(out) / float64(in) * 100
}
