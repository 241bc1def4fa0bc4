package pipeline

import (
	"os"
	"path/filepath"
	"strings"
)

// Source represents a discovered upload candidate.
type Source struct {
	// AbsPath is the absolute path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the input directory.
	RelPath string
	// Key is the manifest key; the slash-separated relative path.
	Key string
	// Size is the file size in bytes.
	Size int64
}

// uploadExtensions lists file extensions a reporter may attach. Anything
// else is ignored by the scan; the validation layer still has the final
// say based on content.
var uploadExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".svg":  true,
	".heic": true,
	".mp4":  true,
	".webm": true,
	".mov":  true,
	".pdf":  true,
}

// ScanUploads walks the input directory and returns all candidate files,
// skipping hidden directories and a previous manifest.
func ScanUploads(inputDir string) ([]Source, error) {
	var sources []Source

	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != inputDir {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !uploadExtensions[ext] {
			return nil
		}

		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}

		sources = append(sources, Source{
			AbsPath: path,
			RelPath: filepath.ToSlash(relPath),
			Key:     filepath.ToSlash(relPath),
			Size:    info.Size(),
		})
		return nil
	})

	return sources, err
}
