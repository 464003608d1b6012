// Package export writes translated scripts in the layout the i18nEx game
// plugin loads: plain "source\ttarget" text files sorted into folders by
// script prefix, or a single script.bson archive of those files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/minios-linux/sugoikit/cache"
	"github.com/minios-linux/sugoikit/script"
)

// Folder names without a prefix rule.
const (
	UnCategorized   = "[UnCategorized]"
	SubtitlesFolder = "[Subtitles]"
)

// sortedFolders maps script name prefixes to export folders. The first
// matching prefix wins.
var sortedFolders = []struct {
	prefix string
	folder string
}{
	{"a1_", "Muku"},
	{"b1_", "Majime"},
	{"c1_", "Rindere"},
	{"d1_", "Bookworm"},
	{"e1_", "Koakuma"},
	{"f1_", "LadyLike"},
	{"g1_", "Secretary"},
	{"h1_", "Imouto"},
	{"j1_", "Wary"},
	{"k1_", "Ojousama"},
	{"l1_", "Osananajime"},
	{"m1_", "Masochist"},
	{"n1_", "Haraguro"},
	{"p1_", "Gyaru"},
	{"v1_", "Kimajime"},
	{"w1_", "Kisakude"},
	{"a_", "Tsundere"},
	{"b_", "Kuudere"},
	{"c_", "Pure"},
	{"d_", "Yandere"},
	{"e_", "Onee-chan"},
	{"f_", "Genki"},
	{"g_", "Do-S"},
	{"crc_ck_", "[Commands & Choices]"},
	{"ck_sex", "[Commands & Choices]"},
	{"ck_h_", "[Commands & Choices]"},
	{"ck_dance_", "[Commands & Choices]"},
	{"ck_cas_", "[Commands & Choices]"},
	{"lifemode", "[Misc]/Lifemode"},
	{"idol", "[Misc]/Idol"},
	{"scout", "[Misc]/Scout"},
	{"npc", "[Misc]/NPC"},
	{"harem", "[Misc]/Harem"},
	{"yuri", "[Misc]/Yuri"},
	{"pj", "[Misc]/Pajama Collab"},
	{"cw", "[Misc]/Camping Event"},
	{"rehire", "[Misc]/Extra Maids rehire"},
	{"club_gp", "[Misc]/GP01 Club route"},
	{"xmas", "[Misc]/Xmas"},
}

// SortedFolder returns the export folder, relative to the script export
// root, for a script name.
func SortedFolder(name string) string {
	for _, f := range sortedFolders {
		if strings.HasPrefix(name, f.prefix) {
			return filepath.FromSlash(f.folder)
		}
	}
	return UnCategorized
}

// Folders returns every folder SortedFolder can return, sorted.
func Folders() []string {
	seen := map[string]bool{UnCategorized: true}
	out := []string{UnCategorized}
	for _, f := range sortedFolders {
		dir := filepath.FromSlash(f.folder)
		if !seen[dir] {
			seen[dir] = true
			out = append(out, dir)
		}
	}
	sort.Strings(out)
	return out
}

// FileName is the export file name of a script.
func FileName(name string) string {
	return name + ".txt"
}

func formatPairs(pairs []script.Pair) string {
	var sb strings.Builder
	for _, p := range pairs {
		sb.WriteString(cache.FormatLine(p.Source, p.Target))
	}
	return sb.String()
}

// subtitleFiles lists the *.txt files of a subtitle cache directory.
func subtitleFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".txt" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// ---------------------------------------------------------------------------
// Text folders
// ---------------------------------------------------------------------------

// TextExporter appends translated lines to sorted text files under Dir.
type TextExporter struct {
	Dir string
	// Now stamps rotated folders (nil = time.Now).
	Now func() time.Time
}

// NewTextExporter returns an exporter writing under dir.
func NewTextExporter(dir string) *TextExporter {
	return &TextExporter{Dir: dir}
}

// Prepare moves an existing export folder aside, returning its new path,
// and creates the sorted folders.
func (e *TextExporter) Prepare() (string, error) {
	rotated := ""
	if _, err := os.Stat(e.Dir); err == nil {
		now := time.Now
		if e.Now != nil {
			now = e.Now
		}
		rotated = fmt.Sprintf("%s (%s)", e.Dir, now().Format("2006-01-02 150405"))
		if err := os.Rename(e.Dir, rotated); err != nil {
			return "", fmt.Errorf("moving %s aside: %w", e.Dir, err)
		}
	}

	for _, f := range Folders() {
		if err := os.MkdirAll(filepath.Join(e.Dir, f), 0755); err != nil {
			return rotated, fmt.Errorf("creating %s: %w", f, err)
		}
	}
	return rotated, nil
}

// Write appends pairs to the script's export file.
func (e *TextExporter) Write(name string, pairs []script.Pair) error {
	dir := filepath.Join(e.Dir, SortedFolder(name))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(name))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := f.WriteString(formatPairs(pairs)); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// AddSubtitles appends every cached subtitle file in dir to the export file
// of the same name. Files without a matching export are copied into the
// subtitles folder. It returns the number of files handled.
func (e *TextExporter) AddSubtitles(dir string) (int, error) {
	files, err := subtitleFiles(dir)
	if err != nil || len(files) == 0 {
		return 0, err
	}

	existing := make(map[string]string)
	err = filepath.Walk(e.Dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			if _, ok := existing[info.Name()]; !ok {
				existing[info.Name()] = path
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scanning %s: %w", e.Dir, err)
	}

	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", name, err)
		}

		target, ok := existing[name]
		if !ok {
			subDir := filepath.Join(e.Dir, SubtitlesFolder)
			if err := os.MkdirAll(subDir, 0755); err != nil {
				return 0, fmt.Errorf("creating %s: %w", subDir, err)
			}
			target = filepath.Join(subDir, name)
		}

		f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return 0, fmt.Errorf("opening %s: %w", target, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return 0, fmt.Errorf("writing %s: %w", target, err)
		}
		if err := f.Close(); err != nil {
			return 0, err
		}
	}
	return len(files), nil
}

// Close is a no-op; text files are written as scripts arrive.
func (e *TextExporter) Close() error { return nil }
