package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/sugoikit/script"
)

// Entry is one source/target pair read from a cache file.
type Entry struct {
	Source string
	Target string
}

// File is the parsed content of a tab-separated cache file.
type File struct {
	Name    string
	Entries []Entry
	// Malformed holds raw lines that are neither comments, blank, subtitle
	// lines nor a single tab-separated pair.
	Malformed []string
	// Subtitles holds raw "@VoiceSubtitle{json}" lines.
	Subtitles []string
}

// ParseFile reads a cache file. A missing file yields an empty File.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{Name: path}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(path, data), nil
}

// Parse reads cache lines of the form "source\ttarget". Lines starting with
// "//" and blank lines are skipped. When a source appears more than once the
// first occurrence wins.
func Parse(name string, data []byte) *File {
	f := &File{Name: name}
	seen := make(map[string]bool)

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")

		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, script.CueMarker) {
			f.Subtitles = append(f.Subtitles, line)
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			f.Malformed = append(f.Malformed, line)
			continue
		}
		if seen[parts[0]] {
			continue
		}
		seen[parts[0]] = true
		f.Entries = append(f.Entries, Entry{Source: parts[0], Target: parts[1]})
	}
	return f
}

// FormatLine renders one cache line.
func FormatLine(source, target string) string {
	return source + "\t" + target + "\n"
}

// appendFile appends text to path, creating the file and its directory.
func appendFile(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
