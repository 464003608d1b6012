package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// GameDataDir is the folder of a game install holding the archives.
const GameDataDir = "GameData"

// Config is a loaded File with every path made absolute.
type Config struct {
	Root string

	MachineCache  string
	OfficialCache string
	ManualCache   string
	CustomDir     string
	ArcHistoryDir string
	SubtitlesDir  string
	NPCNames      string
	JpCache       string
	ErrorFile     string

	JapaneseScripts string
	EnglishScripts  string
	ExportDir       string

	EnglishGameData  string
	JapaneseGameData string

	TranslatorURL     string
	TranslatorTimeout time.Duration

	JapaneseSource string
	EnglishSource  string
	IgnoreCbl      bool
	Export         bool
	ExportBSON     bool
	Safe           bool
	Forced         bool
}

// Load reads .sugoikit.yaml from rootDir and resolves it.
func Load(rootDir string) (*Config, error) {
	f, err := LoadFile(rootDir)
	if err != nil {
		return nil, err
	}
	return f.Resolve(rootDir)
}

// Resolve makes every path of f absolute against rootDir.
func (f *File) Resolve(rootDir string) (*Config, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}

	return &Config{
		Root: root,

		MachineCache:  abs(f.Caches.Machine),
		OfficialCache: abs(f.Caches.Official),
		ManualCache:   abs(f.Caches.Manual),
		CustomDir:     abs(f.Caches.CustomDir),
		ArcHistoryDir: abs(f.Caches.ArcHistory),
		SubtitlesDir:  abs(f.Caches.Subtitles),
		NPCNames:      abs(f.Caches.NPCNames),
		JpCache:       abs(f.Caches.JpCache),
		ErrorFile:     abs(f.ErrorFile),

		JapaneseScripts: abs(f.Scripts.Japanese),
		EnglishScripts:  abs(f.Scripts.English),
		ExportDir:       abs(f.Scripts.Export),

		EnglishGameData:  GameDataPath(abs(f.Game.English)),
		JapaneseGameData: GameDataPath(abs(f.Game.Japanese)),

		TranslatorURL:     f.Translator.URL,
		TranslatorTimeout: f.Translator.Timeout,

		JapaneseSource: f.JapaneseSource,
		EnglishSource:  f.EnglishSource,
		IgnoreCbl:      *f.IgnoreCbl,
		Export:         *f.Export,
		ExportBSON:     *f.ExportBSON,
		Safe:           f.Safe,
		Forced:         f.Forced,
	}, nil
}

// GameDataPath returns the GameData folder of a game install path. Paths
// already ending in GameData are returned unchanged.
func GameDataPath(install string) string {
	if install == "" {
		return ""
	}
	install = filepath.Clean(install)
	if strings.EqualFold(filepath.Base(install), GameDataDir) {
		return install
	}
	return filepath.Join(install, GameDataDir)
}

// Summary returns "key: value" lines describing the configuration.
func (c *Config) Summary() []string {
	rel := func(p string) string {
		if p == "" {
			return "(not set)"
		}
		if r, err := filepath.Rel(c.Root, p); err == nil && !strings.HasPrefix(r, "..") {
			return r
		}
		return p
	}
	timeout := "none"
	if c.TranslatorTimeout > 0 {
		timeout = c.TranslatorTimeout.String()
	}
	return []string{
		fmt.Sprintf("root: %s", c.Root),
		fmt.Sprintf("manual cache: %s (+ %s/*.txt)", rel(c.ManualCache), rel(c.CustomDir)),
		fmt.Sprintf("official cache: %s", rel(c.OfficialCache)),
		fmt.Sprintf("machine cache: %s", rel(c.MachineCache)),
		fmt.Sprintf("japanese line cache: %s", rel(c.JpCache)),
		fmt.Sprintf("english game: %s", rel(c.EnglishGameData)),
		fmt.Sprintf("japanese game: %s", rel(c.JapaneseGameData)),
		fmt.Sprintf("japanese source: %s", c.JapaneseSource),
		fmt.Sprintf("export: %s (bson: %t, safe: %t)", rel(c.ExportDir), c.ExportBSON, c.Safe),
		fmt.Sprintf("translator: %s (timeout: %s)", c.TranslatorURL, timeout),
	}
}
