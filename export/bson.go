package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/minios-linux/sugoikit/script"
)

// BSONFile is the name of the single-file export.
const BSONFile = "script.bson"

// BSONExporter collects every script in memory and writes them as one
// BSON document mapping file names to file contents.
type BSONExporter struct {
	Path  string
	files map[string][]byte
}

// NewBSONExporter returns an exporter writing dir/script.bson on Close.
func NewBSONExporter(dir string) *BSONExporter {
	return &BSONExporter{
		Path:  filepath.Join(dir, BSONFile),
		files: make(map[string][]byte),
	}
}

// Write adds pairs to the script's entry.
func (e *BSONExporter) Write(name string, pairs []script.Pair) error {
	key := FileName(name)
	e.files[key] = append(e.files[key], formatPairs(pairs)...)
	return nil
}

// AddSubtitles merges every cached subtitle file in dir into the entry of
// the same name. It returns the number of files merged.
func (e *BSONExporter) AddSubtitles(dir string) (int, error) {
	files, err := subtitleFiles(dir)
	if err != nil {
		return 0, err
	}
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", name, err)
		}
		e.files[name] = append(e.files[name], data...)
	}
	return len(files), nil
}

// Len returns the number of entries.
func (e *BSONExporter) Len() int { return len(e.files) }

// Close writes the BSON file.
func (e *BSONExporter) Close() error {
	names := make([]string, 0, len(e.files))
	for n := range e.files {
		names = append(names, n)
	}
	sort.Strings(names)

	doc := make(bson.D, 0, len(names))
	for _, n := range names {
		doc = append(doc, bson.E{Key: n, Value: e.files[n]})
	}

	data, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", BSONFile, err)
	}
	if err := os.MkdirAll(filepath.Dir(e.Path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(e.Path), err)
	}
	if err := os.WriteFile(e.Path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", e.Path, err)
	}
	return nil
}

// ReadBSON loads a script.bson file back into file name -> content.
func ReadBSON(path string) (map[string][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var files map[string][]byte
	if err := bson.Unmarshal(data, &files); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return files, nil
}
