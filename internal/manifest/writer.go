package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/AnyUserName/newsimg-cli/internal/budget"
)

// New creates an empty manifest with defaults.
func New(profileName string, b budget.Budget) *Manifest {
	return &Manifest{
		Version:     SupportedManifestVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Profile:     profileName,
		Budget: BudgetInfo{
			MaxWidthPx:         b.MaxWidthPx,
			InitialQuality:     b.InitialQuality,
			MaxOutputBytes:     b.MaxOutputBytes,
			MaxAttempts:        b.MaxAttempts,
			SkipThresholdBytes: b.SkipThresholdBytes,
		},
		Assets: make(map[string]Asset),
	}
}

// ComputeStats recalculates aggregate statistics from assets.
func (m *Manifest) ComputeStats() {
	var s Stats
	s.TotalAssets = len(m.Assets)
	for _, a := range m.Assets {
		s.TotalInputBytes += a.Input.Size
		if a.Rejected != "" {
			s.Rejected++
			continue
		}
		if a.Error != "" {
			s.Failed++
			continue
		}
		if a.Upload != nil && a.Upload.Error != "" {
			s.UploadFailures++
		}
		if a.Output == nil {
			continue
		}
		s.TotalOutputBytes += a.Output.Size
		if a.Output.Passthrough == "" {
			s.Reencoded++
		} else {
			s.Passthrough++
		}
		if !a.Output.MetBudget {
			s.OverBudget++
		}
	}
	m.Stats = s
}

// WriteJSON serializes the manifest to a JSON file.
func WriteJSON(m *Manifest, path string) error {
	m.ComputeStats()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a manifest written by WriteJSON.
func ReadJSON(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
