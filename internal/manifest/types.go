package manifest

// Manifest is the top-level output of a newsimg batch run.
type Manifest struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	Budget      BudgetInfo       `json:"budget"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Assets      map[string]Asset `json:"assets"`
	Stats       Stats            `json:"stats"`
}

// BudgetInfo echoes the budget every asset was encoded against.
type BudgetInfo struct {
	MaxWidthPx         int     `json:"max_width_px"`
	InitialQuality     float64 `json:"initial_quality"`
	MaxOutputBytes     int64   `json:"max_output_bytes"`
	MaxAttempts        int     `json:"max_attempts"`
	SkipThresholdBytes int64   `json:"skip_threshold_bytes"`
}

// BuildInfo captures run parameters for diagnostics.
type BuildInfo struct {
	Workers   int    `json:"workers"`
	Resampler string `json:"resampler"`
}

// Asset describes one input file and what was produced for it.
type Asset struct {
	Input    InputInfo   `json:"input"`
	Output   *OutputInfo `json:"output,omitempty"`
	Upload   *UploadInfo `json:"upload,omitempty"`
	Rejected string      `json:"rejected,omitempty"` // validation failure, no output written
	Error    string      `json:"error,omitempty"`    // processing failure, no output written
}

// InputInfo holds metadata about the source file.
type InputInfo struct {
	Path string `json:"path"`
	MIME string `json:"mime"`
	Size int64  `json:"size"`
}

// OutputInfo is the encoded result written to disk.
type OutputInfo struct {
	Path        string `json:"path"` // relative to the manifest
	MIME        string `json:"mime"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Size        int64  `json:"size"`
	Hash        string `json:"hash"` // xxhash64, 16 hex chars
	Attempts    int    `json:"attempts"`
	MetBudget   bool   `json:"met_budget"`
	Passthrough string `json:"passthrough,omitempty"`
}

// UploadInfo records the transport outcome when uploading was enabled.
type UploadInfo struct {
	Status int    `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Stats aggregates run metrics.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalAssets      int   `json:"total_assets"`
	Reencoded        int   `json:"reencoded"`
	Passthrough      int   `json:"passthrough"`
	OverBudget       int   `json:"over_budget"`
	Rejected         int   `json:"rejected,omitempty"`
	Failed           int   `json:"failed,omitempty"`
	UploadFailures   int   `json:"upload_failures,omitempty"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1

// FileName is the manifest name inside an output directory.
const FileName = "newsimg.manifest.json"
