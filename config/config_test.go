package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	root, _ := filepath.Abs(dir)

	tests := []struct {
		name, got, want string
	}{
		{"machine", c.MachineCache, filepath.Join(root, "Caches", "MachineTranslationCache.txt")},
		{"official", c.OfficialCache, filepath.Join(root, "Caches", "OfficialTranslationCache.txt")},
		{"manual", c.ManualCache, filepath.Join(root, "Caches", "ManualTranslationCache.txt")},
		{"custom", c.CustomDir, filepath.Join(root, "Caches", "Custom")},
		{"history", c.ArcHistoryDir, filepath.Join(root, "Caches", "ArcHistory")},
		{"npc", c.NPCNames, filepath.Join(root, "Caches", "__npc_names.txt")},
		{"errors", c.ErrorFile, filepath.Join(root, "Errors.txt")},
		{"export", c.ExportDir, filepath.Join(root, "Scripts", "i18nEx", "English", "Script")},
		{"url", c.TranslatorURL, DefaultTranslatorURL},
		{"japanese source", c.JapaneseSource, SourceGame},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Fatalf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}

	if !c.IgnoreCbl || !c.Export || !c.ExportBSON || c.Safe || c.Forced {
		t.Errorf("flags = cbl %t export %t bson %t safe %t forced %t", c.IgnoreCbl, c.Export, c.ExportBSON, c.Safe, c.Forced)
	}
	if c.EnglishGameData != "" || c.TranslatorTimeout != 0 {
		t.Errorf("unexpected defaults: game %q timeout %v", c.EnglishGameData, c.TranslatorTimeout)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
caches:
  dir: Cache
  machine: /abs/machine.txt
game:
  japanese: /games/COM3D2
  english: /games/COM3D2_EN/GameData
translator:
  url: http://10.0.0.2:14366/
  timeout: 45s
japanese_source: folder
ignore_cbl: false
export_bson: false
safe: true
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	root, _ := filepath.Abs(dir)

	if c.MachineCache != "/abs/machine.txt" {
		t.Errorf("MachineCache = %q, want absolute path kept", c.MachineCache)
	}
	if want := filepath.Join(root, "Cache", "OfficialTranslationCache.txt"); c.OfficialCache != want {
		t.Errorf("OfficialCache = %q, want %q", c.OfficialCache, want)
	}
	if c.JapaneseGameData != filepath.Join("/games/COM3D2", "GameData") {
		t.Errorf("JapaneseGameData = %q", c.JapaneseGameData)
	}
	if c.EnglishGameData != "/games/COM3D2_EN/GameData" {
		t.Errorf("EnglishGameData = %q", c.EnglishGameData)
	}
	if c.TranslatorTimeout != 45*time.Second {
		t.Errorf("TranslatorTimeout = %v, want 45s", c.TranslatorTimeout)
	}
	if c.JapaneseSource != SourceFolder || c.IgnoreCbl || c.ExportBSON || !c.Export || !c.Safe {
		t.Errorf("config = %+v", c)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown source": "japanese_source: web\n",
		"bad yaml":       "caches: [\n",
		"negative":       "translator:\n  timeout: -1s\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, content)
			if _, err := Load(dir); err == nil {
				t.Fatal("Load accepted invalid config")
			}
		})
	}
}

func TestGameDataPath(t *testing.T) {
	tests := map[string]string{
		"":                    "",
		"/games/COM3D2":       filepath.Join("/games/COM3D2", "GameData"),
		"/games/COM3D2/":      filepath.Join("/games/COM3D2", "GameData"),
		"/games/x/gamedata":   "/games/x/gamedata",
		"/games/x/GameData/.": "/games/x/GameData",
	}
	for in, want := range tests {
		if got := GameDataPath(in); got != want {
			t.Errorf("GameDataPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSummary(t *testing.T) {
	c, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	lines := c.Summary()
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"official cache: Caches/OfficialTranslationCache.txt", "english game: (not set)", "timeout: none"} {
		if !strings.Contains(joined, filepath.FromSlash(want)) {
			t.Errorf("Summary missing %q:\n%s", want, joined)
		}
	}
}
