// Package archistory remembers which game archives were already scanned.
//
// Each archive is fingerprinted by its byte size. An archive whose size did
// not change since the last run is skipped; one that changed is scanned
// again. Official (English) and Japanese extraction keep separate histories
// so one never hides archives from the other.
package archistory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// History file names for both extraction sides.
const (
	OfficialFile = "eng_archistory.yaml"
	JapaneseFile = "jp_archistory.yaml"
)

// Version is the history file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// History maps archive file names to their byte sizes.
type History struct {
	Version int              `yaml:"version"`
	Sizes   map[string]int64 `yaml:"sizes"`

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads the history file name from dir. A missing file yields an empty
// history. When only a legacy "<name>.json" mapping exists it is imported.
func Load(dir, name string) (*History, error) {
	path := filepath.Join(dir, name)
	h := &History{
		Version: Version,
		Sizes:   make(map[string]int64),
		path:    path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return h, h.importLegacy(strings.TrimSuffix(path, filepath.Ext(path)) + ".json")
	}

	if err := yaml.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	h.path = path
	if h.Sizes == nil {
		h.Sizes = make(map[string]int64)
	}
	return h, nil
}

// importLegacy reads a flat {"archive.arc": size} JSON document.
func (h *History) importLegacy(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	// JSON is a subset of YAML.
	var sizes map[string]int64
	if err := yaml.Unmarshal(data, &sizes); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for k, v := range sizes {
		h.Sizes[k] = v
	}
	return nil
}

// Save writes the history to disk.
func (h *History) Save() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.path == "" {
		return fmt.Errorf("history path not set")
	}

	data, err := yaml.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(h.path), err)
	}
	if err := os.WriteFile(h.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", h.path, err)
	}
	return nil
}

// Path returns the history file path.
func (h *History) Path() string {
	return h.path
}

// ---------------------------------------------------------------------------
// Fingerprints
// ---------------------------------------------------------------------------

// Unchanged reports whether name was recorded with exactly size bytes.
func (h *History) Unchanged(name string, size int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	old, ok := h.Sizes[name]
	return ok && old == size
}

// Forget drops the entry for name. It reports whether one existed.
func (h *History) Forget(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, ok := h.Sizes[name]
	delete(h.Sizes, name)
	return ok
}

// Record stores the size of name.
func (h *History) Record(name string, size int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Sizes[name] = size
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of archives and their total size.
func (h *History) Stats() (archives int, bytes int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	archives = len(h.Sizes)
	for _, s := range h.Sizes {
		bytes += s
	}
	return
}

// Archives returns the recorded archive names, sorted.
func (h *History) Archives() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := make([]string, 0, len(h.Sizes))
	for n := range h.Sizes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Summary returns a human-readable summary string.
func (h *History) Summary() string {
	archives, bytes := h.Stats()
	if archives == 0 {
		return "empty"
	}
	return fmt.Sprintf("%d archives, %.1f MiB", archives, float64(bytes)/(1<<20))
}
