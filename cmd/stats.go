package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/newsimg-cli/internal/manifest"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a batch output directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path, err := manifestPath(args[0])
	if err != nil {
		return err
	}
	m, err := manifest.ReadJSON(path)
	if err != nil {
		return err
	}
	printStats(m)
	return nil
}

// manifestPath resolves a directory to the manifest inside it.
func manifestPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return filepath.Join(path, manifest.FileName), nil
	}
	return path, nil
}

func printStats(m *manifest.Manifest) {
	fmt.Println()
	fmt.Printf("  Manifest version: %d\n", m.Version)
	fmt.Printf("  Generated:        %s\n", m.GeneratedAt)
	fmt.Printf("  Profile:          %s\n", m.Profile)
	fmt.Printf("  Budget:           %s at %dpx, q%.2f, %d attempts\n",
		humanize.Bytes(uint64(m.Budget.MaxOutputBytes)), m.Budget.MaxWidthPx,
		m.Budget.InitialQuality, m.Budget.MaxAttempts)
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:          %d (%s)\n", m.BuildInfo.Workers, m.BuildInfo.Resampler)
	}
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Total assets:     %d\n", s.TotalAssets)
	fmt.Printf("  Input size:       %s\n", humanize.Bytes(uint64(s.TotalInputBytes)))
	fmt.Printf("  Output size:      %s\n", humanize.Bytes(uint64(s.TotalOutputBytes)))
	if s.TotalInputBytes > 0 {
		fmt.Printf("  Compression:      %.1f%% of original\n", ratio(s.TotalOutputBytes, s.TotalInputBytes))
	}
	fmt.Println()

	// Per-MIME breakdown of outputs.
	mimeStats := map[string]struct {
		count int
		bytes int64
	}{}
	attempts := map[int]int{}
	passReasons := map[string]int{}
	for _, a := range m.Assets {
		if a.Output == nil {
			continue
		}
		ms := mimeStats[a.Output.MIME]
		ms.count++
		ms.bytes += a.Output.Size
		mimeStats[a.Output.MIME] = ms
		if a.Output.Passthrough != "" {
			passReasons[a.Output.Passthrough]++
		} else {
			attempts[a.Output.Attempts]++
		}
	}

	fmt.Println("  Output types:")
	for _, mt := range sortedKeys(mimeStats) {
		ms := mimeStats[mt]
		fmt.Printf("    %-18s %4d files  %s\n", mt, ms.count, humanize.Bytes(uint64(ms.bytes)))
	}
	fmt.Println()

	if len(attempts) > 0 {
		var counts []int
		for n := range attempts {
			counts = append(counts, n)
		}
		sort.Ints(counts)
		fmt.Println("  Attempts breakdown:")
		for _, n := range counts {
			fmt.Printf("    %2d attempts  %4d files\n", n, attempts[n])
		}
		fmt.Println()
	}

	if len(passReasons) > 0 {
		fmt.Println("  Passthrough reasons:")
		for _, r := range sortedKeys(passReasons) {
			fmt.Printf("    %-16s %4d\n", r, passReasons[r])
		}
		fmt.Println()
	}

	// Warnings.
	var warnings []string
	for _, key := range sortedKeys(m.Assets) {
		a := m.Assets[key]
		switch {
		case a.Rejected != "":
			warnings = append(warnings, fmt.Sprintf("asset %q rejected: %s", key, a.Rejected))
		case a.Error != "":
			warnings = append(warnings, fmt.Sprintf("asset %q failed: %s", key, a.Error))
		case a.Output != nil && !a.Output.MetBudget:
			warnings = append(warnings, fmt.Sprintf("asset %q over budget at %s", key, humanize.Bytes(uint64(a.Output.Size))))
		}
		if a.Upload != nil && a.Upload.Error != "" {
			warnings = append(warnings, fmt.Sprintf("asset %q upload failed: %s", key, a.Upload.Error))
		}
	}
	if len(warnings) > 0 {
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ! %s\n", w)
		}
		fmt.Println()
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
