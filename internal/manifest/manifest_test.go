package manifest

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/newsimg-cli/internal/budget"
)

func TestManifestWriteRead(t *testing.T) {
	m := New("article", budget.Default())
	m.BuildInfo = &BuildInfo{Workers: 4, Resampler: "lanczos"}
	m.Assets["news/photo"] = Asset{
		Input: InputInfo{Path: "news/photo.png", MIME: "image/png", Size: 2_000_000},
		Output: &OutputInfo{
			Path: "news/photo.jpg", MIME: "image/jpeg", Width: 1400, Height: 1050,
			Size: 700_000, Hash: "0123456789abcdef", Attempts: 3, MetBudget: true,
		},
	}
	m.Assets["news/logo"] = Asset{
		Input: InputInfo{Path: "news/logo.png", MIME: "image/png", Size: 4_000},
		Output: &OutputInfo{
			Path: "news/logo.png", MIME: "image/png", Size: 4_000,
			Hash: "fedcba9876543210", MetBudget: true, Passthrough: "skip",
		},
	}
	m.Assets["news/virus"] = Asset{
		Input:    InputInfo{Path: "news/virus.exe", MIME: "application/x-msdownload", Size: 10},
		Rejected: "type-not-allowed",
	}
	m.Assets["news/clash"] = Asset{
		Input: InputInfo{Path: "news/clash.bmp", MIME: "image/bmp", Size: 90},
		Error: "output news/clash.jpg already written for news/clash.png",
	}

	path := filepath.Join(t.TempDir(), FileName)
	if err := WriteJSON(m, path); err != nil {
		t.Fatalf("write: %v", err)
	}
	m2, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if m2.Version != SupportedManifestVersion {
		t.Errorf("version: got %d", m2.Version)
	}
	if m2.Budget.MaxOutputBytes != budget.DefaultMaxOutputBytes {
		t.Errorf("budget: got %+v", m2.Budget)
	}
	if m2.BuildInfo == nil || m2.BuildInfo.Resampler != "lanczos" {
		t.Errorf("build_info: %+v", m2.BuildInfo)
	}
	want := Stats{
		TotalInputBytes:  2_004_100,
		TotalOutputBytes: 704_000,
		TotalAssets:      4,
		Reencoded:        1,
		Passthrough:      1,
		Rejected:         1,
		Failed:           1,
	}
	if m2.Stats != want {
		t.Errorf("stats:\n got %+v\nwant %+v", m2.Stats, want)
	}
}

func TestManifestIgnoresUnknownFields(t *testing.T) {
	raw := `{
		"version": 1,
		"generated_at": "2025-01-01T00:00:00Z",
		"profile": "article",
		"future_field": "should be ignored",
		"assets": {},
		"stats": { "total_assets": 0, "new_stat": 42 }
	}`
	var m Manifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal with unknown fields: %v", err)
	}
	if m.Version != 1 || m.Profile != "article" {
		t.Errorf("got %+v", m)
	}
}
