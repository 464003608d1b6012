// Package config loads .sugoikit.yaml.
//
// Every setting has a default matching the tool's usual folder layout, so a
// missing .sugoikit.yaml is not an error. Relative paths are resolved
// against the directory holding the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .sugoikit.yaml structure.
type File struct {
	Caches     Caches     `yaml:"caches"`
	Scripts    Scripts    `yaml:"scripts"`
	Game       Game       `yaml:"game"`
	Translator Translator `yaml:"translator"`

	// ErrorFile receives faulty translations.
	ErrorFile string `yaml:"error_file,omitempty"`
	// JapaneseSource selects where translate reads lines from: "game" (the
	// Japanese line cache) or "folder" (Scripts.Japanese).
	JapaneseSource string `yaml:"japanese_source,omitempty"`
	// EnglishSource selects where official extraction reads from: "game"
	// (Game.English) or "folder" (Scripts.English).
	EnglishSource string `yaml:"english_source,omitempty"`
	// IgnoreCbl skips ChuBLip archives during Japanese extraction.
	IgnoreCbl *bool `yaml:"ignore_cbl,omitempty"`
	// Export writes i18nEx scripts while translating.
	Export *bool `yaml:"export,omitempty"`
	// ExportBSON exports one script.bson instead of sorted text folders.
	ExportBSON *bool `yaml:"export_bson,omitempty"`
	// Safe ignores official translations when exporting.
	Safe bool `yaml:"safe,omitempty"`
	// Forced machine-translates lines that only have a manual or official
	// translation.
	Forced bool `yaml:"forced,omitempty"`
}

// Caches lists the cache files and folders.
type Caches struct {
	Dir        string `yaml:"dir,omitempty"`
	Machine    string `yaml:"machine,omitempty"`
	Official   string `yaml:"official,omitempty"`
	Manual     string `yaml:"manual,omitempty"`
	CustomDir  string `yaml:"custom_dir,omitempty"`
	ArcHistory string `yaml:"arc_history,omitempty"`
	Subtitles  string `yaml:"subtitles,omitempty"`
	NPCNames   string `yaml:"npc_names,omitempty"`
	JpCache    string `yaml:"jp_cache,omitempty"`
}

// Scripts lists the script folders.
type Scripts struct {
	Japanese string `yaml:"japanese,omitempty"`
	English  string `yaml:"english,omitempty"`
	Export   string `yaml:"export,omitempty"`
}

// Game holds the game install paths. "GameData" is appended when missing.
type Game struct {
	English  string `yaml:"english,omitempty"`
	Japanese string `yaml:"japanese,omitempty"`
}

// Translator configures the machine translator.
type Translator struct {
	URL string `yaml:"url,omitempty"`
	// Timeout per request, e.g. "30s" (0 = none).
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Source values for JapaneseSource and EnglishSource.
const (
	SourceGame   = "game"
	SourceFolder = "folder"
)

// DefaultTranslatorURL is the address of a local Sugoi translator.
const DefaultTranslatorURL = "http://127.0.0.1:14366/"

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// FileName is the config file name.
const FileName = ".sugoikit.yaml"

// LoadFile loads and validates .sugoikit.yaml from rootDir. A missing file
// yields the defaults.
func LoadFile(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)

	var f File
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	f.applyDefaults()
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

func orDefault(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

func boolDefault(v **bool, def bool) {
	if *v == nil {
		*v = &def
	}
}

func (f *File) applyDefaults() {
	c := &f.Caches
	orDefault(&c.Dir, "Caches")
	orDefault(&c.Machine, filepath.Join(c.Dir, "MachineTranslationCache.txt"))
	orDefault(&c.Official, filepath.Join(c.Dir, "OfficialTranslationCache.txt"))
	orDefault(&c.Manual, filepath.Join(c.Dir, "ManualTranslationCache.txt"))
	orDefault(&c.CustomDir, filepath.Join(c.Dir, "Custom"))
	orDefault(&c.ArcHistory, filepath.Join(c.Dir, "ArcHistory"))
	orDefault(&c.Subtitles, filepath.Join(c.Dir, "Subtitles"))
	orDefault(&c.NPCNames, filepath.Join(c.Dir, "__npc_names.txt"))
	orDefault(&c.JpCache, filepath.Join(c.Dir, "JpCache.db"))

	s := &f.Scripts
	orDefault(&s.Japanese, filepath.Join("Scripts", "Japanese"))
	orDefault(&s.English, filepath.Join("Scripts", "English"))
	orDefault(&s.Export, filepath.Join("Scripts", "i18nEx", "English", "Script"))

	orDefault(&f.Translator.URL, DefaultTranslatorURL)
	orDefault(&f.ErrorFile, "Errors.txt")
	orDefault(&f.JapaneseSource, SourceGame)
	orDefault(&f.EnglishSource, SourceGame)

	boolDefault(&f.IgnoreCbl, true)
	boolDefault(&f.Export, true)
	boolDefault(&f.ExportBSON, true)
}

func (f *File) validate() error {
	if f.Translator.URL == "" {
		return fmt.Errorf("translator url is empty")
	}
	if f.Translator.Timeout < 0 {
		return fmt.Errorf("translator timeout %v is negative", f.Translator.Timeout)
	}
	for name, v := range map[string]string{"japanese_source": f.JapaneseSource, "english_source": f.EnglishSource} {
		if v != SourceGame && v != SourceFolder {
			return fmt.Errorf("%s %q is unknown (valid: %s, %s)", name, v, SourceGame, SourceFolder)
		}
	}
	return nil
}
