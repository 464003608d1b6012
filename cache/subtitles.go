package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/sugoikit/script"
)

// Subtitles holds voice subtitle cues per script name.
type Subtitles struct {
	cues map[string][]script.Cue
	seen map[string]map[script.Cue]bool
}

// NewSubtitles returns an empty store.
func NewSubtitles() *Subtitles {
	return &Subtitles{
		cues: make(map[string][]script.Cue),
		seen: make(map[string]map[script.Cue]bool),
	}
}

// Add stores cues under name, skipping ones already present and ones with
// neither an original nor a translation. It returns the number added.
func (s *Subtitles) Add(name string, cues ...script.Cue) int {
	seen := s.seen[name]
	if seen == nil {
		seen = make(map[script.Cue]bool)
		s.seen[name] = seen
	}
	n := 0
	for _, c := range cues {
		if c.Original == "" && c.Translation == "" {
			continue
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		s.cues[name] = append(s.cues[name], c)
		n++
	}
	return n
}

// AddLine decodes an "@VoiceSubtitle{json}" line and stores it under name.
func (s *Subtitles) AddLine(name, line string) error {
	c, err := script.ParseCue(line)
	if err != nil {
		return err
	}
	s.Add(name, c)
	return nil
}

// Cues returns the cues stored for name.
func (s *Subtitles) Cues(name string) []script.Cue { return s.cues[name] }

// Scripts returns the script names holding cues, sorted.
func (s *Subtitles) Scripts() []string {
	names := make([]string, 0, len(s.cues))
	for n := range s.cues {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the total number of cues.
func (s *Subtitles) Len() int {
	n := 0
	for _, c := range s.cues {
		n += len(c)
	}
	return n
}

// LoadDir reads every <script>.txt subtitle file in dir. A missing
// directory loads nothing.
func (s *Subtitles) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".txt" {
			continue
		}
		f, err := ParseFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(e.Name(), ".txt")
		for _, line := range f.Subtitles {
			if err := s.AddLine(name, line); err != nil {
				return fmt.Errorf("%s: %w", e.Name(), err)
			}
		}
	}
	return nil
}

// WriteSubtitleFile replaces <dir>/<name>.txt with the formatted cues.
func WriteSubtitleFile(dir, name string, cues []script.Cue) error {
	if len(cues) == 0 {
		return nil
	}
	var sb strings.Builder
	for _, c := range cues {
		line, err := script.FormatCue(c)
		if err != nil {
			return err
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, name+".txt")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
