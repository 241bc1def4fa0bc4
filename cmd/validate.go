package cmd

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/newsimg-cli/internal/hasher"
	"github.com/AnyUserName/newsimg-cli/internal/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path>",
	Short: "Validate a newsimg manifest against the files on disk",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	p, err := manifestPath(args[0])
	if err != nil {
		return err
	}
	m, err := manifest.ReadJSON(p)
	if err != nil {
		return err
	}

	errs := validateManifest(m, filepath.Dir(p))
	if len(errs) == 0 {
		fmt.Println("  ok: manifest is valid")
		fmt.Printf("  ok: %d assets, all outputs present and intact\n", m.Stats.TotalAssets)
		return nil
	}

	fmt.Printf("  Manifest has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    - %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

func validateManifest(m *manifest.Manifest, baseDir string) []string {
	var errs []string

	if m.Version != manifest.SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}

	seenPaths := map[string]string{}
	for _, key := range sortedKeys(m.Assets) {
		a := m.Assets[key]
		if a.Input.Path == "" {
			errs = append(errs, fmt.Sprintf("asset %q: missing input path", key))
		}
		if a.Rejected != "" {
			if a.Output != nil {
				errs = append(errs, fmt.Sprintf("asset %q: rejected (%s) but has an output", key, a.Rejected))
			}
			continue
		}
		if a.Error != "" {
			if a.Output != nil {
				errs = append(errs, fmt.Sprintf("asset %q: failed (%s) but has an output", key, a.Error))
			}
			continue
		}
		o := a.Output
		if o == nil {
			errs = append(errs, fmt.Sprintf("asset %q: no output", key))
			continue
		}
		if o.MIME == "" {
			errs = append(errs, fmt.Sprintf("asset %q: empty output mime", key))
		}
		if o.Passthrough == "" {
			if o.Width <= 0 || o.Height <= 0 {
				errs = append(errs, fmt.Sprintf("asset %q: invalid dimensions %dx%d", key, o.Width, o.Height))
			}
			if o.Attempts < 1 {
				errs = append(errs, fmt.Sprintf("asset %q: re-encoded with %d attempts", key, o.Attempts))
			}
		}
		if o.Path == "" {
			errs = append(errs, fmt.Sprintf("asset %q: missing output path", key))
			continue
		}
		clean := path.Clean(o.Path)
		if path.IsAbs(clean) || clean == ".." || len(clean) > 2 && clean[:3] == "../" {
			errs = append(errs, fmt.Sprintf("asset %q: output path escapes the directory: %s", key, o.Path))
			continue
		}
		if other, ok := seenPaths[clean]; ok {
			errs = append(errs, fmt.Sprintf("asset %q: output path %q also used by %q", key, o.Path, other))
		}
		seenPaths[clean] = key

		errs = append(errs, checkOutputFile(key, o, filepath.Join(baseDir, filepath.FromSlash(clean)))...)
	}

	// Verify stats consistency.
	want := *m
	want.ComputeStats()
	if m.Stats != want.Stats {
		errs = append(errs, fmt.Sprintf("stats mismatch: manifest=%+v, computed=%+v", m.Stats, want.Stats))
	}

	return errs
}

func checkOutputFile(key string, o *manifest.OutputInfo, fullPath string) []string {
	f, err := os.Open(fullPath)
	if err != nil {
		return []string{fmt.Sprintf("asset %q: file not found: %s", key, o.Path)}
	}
	defer f.Close()

	var errs []string
	info, err := f.Stat()
	if err == nil && info.Size() != o.Size {
		errs = append(errs, fmt.Sprintf("asset %q: size mismatch: manifest=%d, disk=%d", key, o.Size, info.Size()))
	}
	sum, err := hasher.SumReader(f)
	if err != nil {
		return append(errs, fmt.Sprintf("asset %q: hash %s: %v", key, o.Path, err))
	}
	if sum != o.Hash {
		errs = append(errs, fmt.Sprintf("asset %q: hash mismatch: manifest=%s, disk=%s", key, o.Hash, sum))
	}
	return errs
}
