package cache

import (
	"fmt"
	"os"
	"strings"

	"github.com/minios-linux/sugoikit/script"
)

// Known is the set of "source\ttarget" lines already written to the
// official cache files. It is shared by every OfficialStore of a run so a
// pair is stored once across the official and NPC name files.
type Known struct {
	lines map[string]bool
}

// LoadKnown collects the lines of the given files. Missing files are
// skipped.
func LoadKnown(paths ...string) (*Known, error) {
	k := &Known{lines: make(map[string]bool)}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSuffix(line, "\r")
			if line != "" {
				k.lines[line] = true
			}
		}
	}
	return k, nil
}

// Has reports whether the pair is already stored.
func (k *Known) Has(p script.Pair) bool {
	return k.lines[p.Source+"\t"+p.Target]
}

// Len returns the number of stored lines.
func (k *Known) Len() int { return len(k.lines) }

// OfficialStore appends shipped translations to an official cache file.
type OfficialStore struct {
	Path  string
	known *Known
}

// NewOfficialStore returns a store writing to path and sharing known.
func NewOfficialStore(path string, known *Known) *OfficialStore {
	return &OfficialStore{Path: path, known: known}
}

// Append writes the pairs that carry a translation and are not stored yet.
// It returns the number of lines written.
func (s *OfficialStore) Append(pairs []script.Pair) (int, error) {
	var sb strings.Builder
	var added []string

	for _, p := range script.DedupPairs(pairs) {
		if p.Source == "" || p.Target == "" || s.known.Has(p) {
			continue
		}
		line := p.Source + "\t" + p.Target
		sb.WriteString(line)
		sb.WriteByte('\n')
		added = append(added, line)
	}
	if len(added) == 0 {
		return 0, nil
	}

	if err := appendFile(s.Path, sb.String()); err != nil {
		return 0, err
	}
	for _, l := range added {
		s.known.lines[l] = true
	}
	return len(added), nil
}
