package pipeline

import (
	"fmt"
	"path"
	"strings"
	"sync"
)

// outputs assigns output paths for one run so that no two sources write
// the same file. Paths compare case-insensitively.
type outputs struct {
	stems map[string]int // lowercased dir/stem -> number of sources

	mu      sync.Mutex
	claimed map[string]string // lowercased output path -> source key
}

func newOutputs(sources []Source) *outputs {
	o := &outputs{
		stems:   make(map[string]int, len(sources)),
		claimed: make(map[string]string, len(sources)),
	}
	for _, s := range sources {
		o.stems[stemKey(s.RelPath)]++
	}
	return o
}

func stemKey(rel string) string {
	return strings.ToLower(strings.TrimSuffix(rel, path.Ext(rel)))
}

// path returns the output path for src written as filename. When the
// extension changed and a sibling shares the stem, the source extension
// is kept: photo.png next to photo.jpg becomes photo.png.jpg.
func (o *outputs) path(src Source, filename string) string {
	dir, base := path.Split(src.RelPath)
	if filename != base && o.stems[stemKey(src.RelPath)] > 1 {
		filename = base + path.Ext(filename)
	}
	return path.Join(dir, filename)
}

// claim reserves rel for key. It fails if another source already holds it.
func (o *outputs) claim(rel, key string) error {
	k := strings.ToLower(rel)
	o.mu.Lock()
	defer o.mu.Unlock()
	if owner, ok := o.claimed[k]; ok && owner != key {
		return fmt.Errorf("output %s already written for %s", rel, owner)
	}
	o.claimed[k] = key
	return nil
}
