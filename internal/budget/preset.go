package budget

// Built-in presets, keyed by the surface the image is uploaded for.
var presets = map[string]Budget{
	"article": Default(),
	"thumbnail": func() Budget {
		b := Default()
		b.MaxWidthPx = 480
		b.MaxOutputBytes = 150 * 1024
		b.SkipThresholdBytes = 100 * 1024
		return b
	}(),
	"hero": func() Budget {
		b := Default()
		b.MaxWidthPx = 2048
		b.InitialQuality = 0.8
		b.MaxOutputBytes = 1536 * 1024
		b.SkipThresholdBytes = 1024 * 1024
		return b
	}(),
}

// DefaultPreset is used when no preset is requested.
const DefaultPreset = "article"

// Preset returns a budget by name. Falls back to article if unknown.
func Preset(name string) Budget {
	if b, ok := presets[name]; ok {
		return b
	}
	return presets[DefaultPreset]
}

// Known reports whether name is a built-in preset.
func Known(name string) bool {
	_, ok := presets[name]
	return ok
}

// PresetNames lists the presets in display order.
func PresetNames() []string {
	return []string{"article", "thumbnail", "hero"}
}
