// Package config loads the optional newsimg TOML file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/AnyUserName/newsimg-cli/internal/budget"
	"github.com/AnyUserName/newsimg-cli/internal/raster"
	"github.com/AnyUserName/newsimg-cli/internal/upload"
	"github.com/AnyUserName/newsimg-cli/internal/validate"
)

// Upload is the [upload] section. Durations use time.ParseDuration syntax.
type Upload struct {
	URL        string `toml:"url"`
	FieldName  string `toml:"field_name"`
	RetryDelay string `toml:"retry_delay"`
	Timeout    string `toml:"timeout"`
	Token      string `toml:"token"`
}

// Log is the [log] section.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the full file.
type Config struct {
	Profile          string          `toml:"profile"`
	Workers          int             `toml:"workers"`
	Resampler        string          `toml:"resampler"`
	AlphaShrinkSteps int             `toml:"alpha_shrink_steps"`
	Budget           budget.Budget   `toml:"budget"`
	Validation       validate.Policy `toml:"validation"`
	Upload           Upload          `toml:"upload"`
	Log              Log             `toml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Profile:    budget.DefaultPreset,
		Resampler:  "lanczos",
		Budget:     budget.Default(),
		Validation: validate.DefaultPolicy(),
		Upload: Upload{
			FieldName:  upload.DefaultFieldName,
			RetryDelay: upload.DefaultRetryDelay.String(),
			Timeout:    upload.DefaultTimeout.String(),
		},
		Log: Log{Level: "info", Format: "console"},
	}
}

// Load reads path on top of the defaults. An empty path yields the
// defaults. The [budget] section overrides the selected profile's preset.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	var head struct {
		Profile string `toml:"profile"`
	}
	if err := toml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if head.Profile != "" {
		cfg.Profile = head.Profile
		cfg.Budget = budget.Preset(head.Profile)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.Budget.Validate(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be >= 0, got %d", c.Workers)
	}
	if c.AlphaShrinkSteps < 0 {
		return fmt.Errorf("config: alpha_shrink_steps must be >= 0, got %d", c.AlphaShrinkSteps)
	}
	if _, err := raster.New(c.Resampler, nil); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Validation.MaxInputBytes < 0 {
		return fmt.Errorf("config: validation.max_input_bytes must be >= 0")
	}
	if len(c.Validation.AllowedMIME) == 0 {
		return fmt.Errorf("config: validation.allowed_mime must not be empty")
	}
	if _, err := c.UploadConfig(); err != nil {
		return err
	}
	return nil
}

// UploadConfig converts the [upload] section for the transport.
func (c *Config) UploadConfig() (upload.Config, error) {
	out := upload.Config{
		URL:       c.Upload.URL,
		FieldName: c.Upload.FieldName,
		Token:     c.Upload.Token,
	}
	var err error
	if out.RetryDelay, err = parseDuration("upload.retry_delay", c.Upload.RetryDelay); err != nil {
		return out, err
	}
	if out.Timeout, err = parseDuration("upload.timeout", c.Upload.Timeout); err != nil {
		return out, err
	}
	return out, nil
}

func parseDuration(key, s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: %s must not be negative", key)
	}
	return d, nil
}
