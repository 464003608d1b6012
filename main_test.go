package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/minios-linux/sugoikit/cache"
	"github.com/minios-linux/sugoikit/config"
	"github.com/minios-linux/sugoikit/export"
	"github.com/minios-linux/sugoikit/script"
	"github.com/minios-linux/sugoikit/translate"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		width   int
		want    string
	}{
		{
			name:    "clamps below zero",
			percent: -10,
			width:   4,
			want:    colorRed + "░░░░" + colorReset + "   0%",
		},
		{
			name:    "mid range uses yellow",
			percent: 50,
			width:   4,
			want:    colorYellow + "██░░" + colorReset + "  50%",
		},
		{
			name:    "clamps above hundred",
			percent: 120,
			width:   4,
			want:    colorGreen + "████" + colorReset + " 100%",
		},
	}

	for _, tc := range tests {
		if got := progressBar(tc.percent, tc.width); got != tc.want {
			t.Fatalf("%s: progressBar() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestTierColor(t *testing.T) {
	tests := map[cache.Tier]string{
		cache.TierManual:   colorCyan,
		cache.TierOfficial: colorGreen,
		cache.TierMachine:  colorBlue,
		cache.TierNew:      colorBrightBlue,
		cache.TierNone:     colorYellow,
	}
	for tier, want := range tests {
		if got := tierColor(tier); got != want {
			t.Errorf("tierColor(%s) = %q, want %q", tier, got, want)
		}
	}
}

func TestPrintResult(t *testing.T) {
	tests := []struct {
		name    string
		result  translate.Result
		verbose bool
		want    string
	}{
		{"new line", translate.Result{Source: "はい", Target: "Yes", Tier: cache.TierNew}, false, "Yes"},
		{"cached hidden", translate.Result{Source: "はい", Target: "Yes", Tier: cache.TierManual}, false, ""},
		{"cached verbose", translate.Result{Source: "はい", Target: "Yes", Tier: cache.TierManual}, true, colorCyan + "Yes"},
		{"faulty", translate.Result{Source: "はい", Target: "Yes Yes", Faulty: true}, false, "(rejected)"},
		{"skipped hidden", translate.Result{Source: "はい", Skipped: true}, false, ""},
		{"skipped verbose", translate.Result{Source: "はい", Skipped: true}, true, "(untranslated)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printResult(&buf, tt.result, tt.verbose)
			got := buf.String()
			if tt.want == "" {
				if got != "" {
					t.Fatalf("printResult() = %q, want nothing", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Fatalf("printResult() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestWatchPause(t *testing.T) {
	gate := &translate.Gate{}
	var states []bool
	watchPause(strings.NewReader("\n\n\n"), gate, func(paused bool) {
		states = append(states, paused)
	})

	if diff := cmp.Diff([]bool{true, false, true}, states); diff != "" {
		t.Fatalf("toggle states mismatch (-want +got):\n%s", diff)
	}
	if !gate.Paused() {
		t.Fatalf("gate.Paused() = false after odd number of toggles")
	}
}

func TestApplyTranslateFlags(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	a := translateArgs{
		source:   config.SourceFolder,
		forced:   true,
		noExport: true,
		bsonSet:  true,
		url:      "http://localhost:9000/",
	}
	if err := applyTranslateFlags(cfg, a); err != nil {
		t.Fatalf("applyTranslateFlags: %v", err)
	}
	if cfg.JapaneseSource != config.SourceFolder || !cfg.Forced || cfg.Safe || cfg.Export || cfg.ExportBSON {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.TranslatorURL != "http://localhost:9000/" {
		t.Errorf("TranslatorURL = %q", cfg.TranslatorURL)
	}

	if err := applyTranslateFlags(cfg, translateArgs{source: "web"}); err == nil {
		t.Errorf("unknown --source accepted")
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(filePath, []byte("ok"), 0644); err != nil {
		t.Fatalf("os.WriteFile() error: %v", err)
	}

	if !fileExists(filePath) {
		t.Fatalf("fileExists(file) = false, want true")
	}
	if fileExists(dir) {
		t.Fatalf("fileExists(directory) = true, want false")
	}
	if fileExists(filepath.Join(dir, "missing.txt")) {
		t.Fatalf("fileExists(missing) = true, want false")
	}
}

// ---------------------------------------------------------------------------
// End-to-end runs over a temporary working directory
// ---------------------------------------------------------------------------

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func pairsOf(data []byte) []script.Pair {
	f := cache.Parse("", data)
	pairs := make([]script.Pair, 0, len(f.Entries))
	for _, e := range f.Entries {
		pairs = append(pairs, script.Pair{Source: e.Source, Target: e.Target})
	}
	return pairs
}

func workspace(t *testing.T, bson bool) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"Caches/ManualTranslationCache.txt":   "こんにちは\tHello there\n",
		"Caches/OfficialTranslationCache.txt": "こんにちは\tHello\nはい\tYes\n",
		"Caches/Subtitles/a_001.txt":          script.CueMarker + `{"original":"あ","translation":"Ah","voice":"V_01"}` + "\n",
		"Scripts/Japanese/a_001.txt":          "こんにちは\nはい\nさようなら\n",
	})

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg.JapaneseSource = config.SourceFolder
	cfg.ExportBSON = bson
	return cfg
}

func TestRunTranslateOfflineText(t *testing.T) {
	cfg := workspace(t, false)

	if err := runTranslate(context.Background(), cfg, translateArgs{offline: true}, &translate.Gate{}); err != nil {
		t.Fatalf("runTranslate: %v", err)
	}

	path := filepath.Join(cfg.ExportDir, export.SortedFolder("a_001"), export.FileName("a_001"))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	want := []script.Pair{
		{Source: "こんにちは", Target: "Hello there"},
		{Source: "はい", Target: "Yes"},
	}
	if diff := cmp.Diff(want, pairsOf(data)); diff != "" {
		t.Errorf("exported pairs mismatch (-want +got):\n%s", diff)
	}
	if f := cache.Parse("", data); len(f.Subtitles) != 1 {
		t.Errorf("exported subtitles = %v, want one cue", f.Subtitles)
	}
}

func TestRunTranslateOfflineBSON(t *testing.T) {
	cfg := workspace(t, true)
	cfg.Safe = true

	if err := runTranslate(context.Background(), cfg, translateArgs{offline: true}, &translate.Gate{}); err != nil {
		t.Fatalf("runTranslate: %v", err)
	}

	files, err := export.ReadBSON(filepath.Join(cfg.ExportDir, export.BSONFile))
	if err != nil {
		t.Fatalf("ReadBSON: %v", err)
	}
	data, ok := files[export.FileName("a_001")]
	if !ok {
		t.Fatalf("script.bson entries = %v, want a_001.txt", files)
	}
	// Safe mode drops the official-only line.
	want := []script.Pair{{Source: "こんにちは", Target: "Hello there"}}
	if diff := cmp.Diff(want, pairsOf(data)); diff != "" {
		t.Errorf("exported pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestRunTranslateMissingJpCache(t *testing.T) {
	cfg := workspace(t, false)
	cfg.JapaneseSource = config.SourceGame

	err := runTranslate(context.Background(), cfg, translateArgs{offline: true}, &translate.Gate{})
	if err == nil || !strings.Contains(err.Error(), "extract japanese") {
		t.Fatalf("runTranslate error = %v, want hint to extract", err)
	}
}

func TestOpenJpCacheImportsLegacy(t *testing.T) {
	cfg := workspace(t, false)
	writeFiles(t, cfg.Root, map[string]string{
		"Caches/JpCache.json": `{"a_001": ["こんにちは", "はい"], "b_001": ["ねえ"]}`,
	})

	ctx := context.Background()
	store, err := openJpCache(ctx, cfg)
	if err != nil {
		t.Fatalf("openJpCache: %v", err)
	}
	scripts, lines, err := store.Count(ctx)
	store.Close()
	if err != nil {
		t.Fatal(err)
	}
	if scripts != 2 || lines != 3 {
		t.Fatalf("Count() = %d scripts, %d lines, want 2, 3", scripts, lines)
	}

	// A second open does not import again.
	store, err = openJpCache(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, lines, _ := store.Count(ctx); lines != 3 {
		t.Fatalf("lines after reopen = %d, want 3", lines)
	}
}

func TestRunExtractJapaneseNoGamePath(t *testing.T) {
	cfg := workspace(t, false)
	err := runExtractJapanese(context.Background(), cfg, extractArgs{})
	if err == nil || !strings.Contains(err.Error(), "--game-path") {
		t.Fatalf("runExtractJapanese error = %v, want game path hint", err)
	}
}

func TestRunExtractOfficialFromFolder(t *testing.T) {
	cfg := workspace(t, false)
	writeFiles(t, cfg.Root, map[string]string{
		"Scripts/English/b_001.txt": "ねえ\tHey\nはい\tYes\n",
	})

	if err := runExtractOfficial(context.Background(), cfg, extractArgs{fromFolder: true}); err != nil {
		t.Fatalf("runExtractOfficial: %v", err)
	}
	data, err := os.ReadFile(cfg.OfficialCache)
	if err != nil {
		t.Fatal(err)
	}
	want := "こんにちは\tHello\nはい\tYes\nねえ\tHey\n"
	if got := string(data); got != want {
		t.Errorf("official cache = %q, want %q", got, want)
	}
}

func TestRunStatus(t *testing.T) {
	cfg := workspace(t, false)

	var buf bytes.Buffer
	if err := runStatus(context.Background(), cfg, &buf); err != nil {
		t.Fatalf("runStatus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"manual", "official", "eng_archistory.yaml", "empty", "not extracted"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestRunStatusWritesNothing(t *testing.T) {
	cfg := workspace(t, false)
	writeFiles(t, cfg.Root, map[string]string{
		"Caches/MachineTranslationCache.txt": "broken line without tab\n",
	})

	for i := 0; i < 2; i++ {
		var buf bytes.Buffer
		if err := runStatus(context.Background(), cfg, &buf); err != nil {
			t.Fatalf("runStatus: %v", err)
		}
	}
	if fileExists(cfg.ErrorFile) {
		t.Errorf("runStatus created %s", cfg.ErrorFile)
	}
}
