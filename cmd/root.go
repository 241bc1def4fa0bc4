package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/newsimg-cli/internal/budget"
	"github.com/AnyUserName/newsimg-cli/internal/config"
	"github.com/AnyUserName/newsimg-cli/internal/logging"
)

var (
	version    = "0.1.0"
	verbose    bool
	configPath string
	profile    string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "newsimg",
	Short: "Fit reporter-uploaded images under a byte budget",
	Long: `newsimg re-encodes images attached to news reports so they fit a
per-image byte budget before upload. Oversized photos are downscaled and
stepped down in quality until they fit; translucent images keep their
alpha channel when a lossless container can hold them in budget.

Files that cannot be decoded, or that are already small, pass through
untouched.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command. Canceling ctx stops in-flight encodes.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to a newsimg TOML config file")
	pf.StringVarP(&profile, "profile", "p", "", "budget preset ("+strings.Join(budget.PresetNames(), ", ")+")")
	pf.StringVar(&logFormat, "log-format", "", "log format: console or json")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"newsimg %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// setup loads the config file and builds the logger. Flags win over the
// file; --profile replaces the whole budget with the named preset, and an
// unknown name falls back to the default preset.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("profile") {
		c.Profile = profile
		c.Budget = budget.Preset(profile)
	}
	if logFormat != "" {
		c.Log.Format = logFormat
	}
	if verbose {
		c.Log.Level = "debug"
	}

	l, err := logging.New(logging.Options{Level: c.Log.Level, Format: c.Log.Format, Writer: os.Stderr})
	if err != nil {
		return err
	}
	cfg = c
	logger = l.With("app", "newsimg")
	if !budget.Known(c.Profile) {
		logger.Warn("unknown profile, using preset "+budget.DefaultPreset,
			"profile", c.Profile, "known", strings.Join(budget.PresetNames(), ", "))
	}
	return nil
}
