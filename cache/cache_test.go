package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/minios-linux/sugoikit/script"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestParse(t *testing.T) {
	data := strings.Join([]string{
		"// header",
		"",
		"A\tB",
		"A\tC",
		"no tab here",
		"x\ty\tz",
		"\tempty source",
		`@VoiceSubtitle{"original":"a"}`,
		"D\tE\r",
	}, "\n")

	f := Parse("test.txt", []byte(data))

	wantEntries := []Entry{{"A", "B"}, {"D", "E"}}
	if diff := cmp.Diff(wantEntries, f.Entries); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
	wantMalformed := []string{"no tab here", "x\ty\tz", "\tempty source"}
	if diff := cmp.Diff(wantMalformed, f.Malformed); diff != "" {
		t.Errorf("Malformed mismatch (-want +got):\n%s", diff)
	}
	if len(f.Subtitles) != 1 {
		t.Errorf("Subtitles = %v, want one line", f.Subtitles)
	}
}

func TestParseFileMissing(t *testing.T) {
	f, err := ParseFile(filepath.Join(t.TempDir(), "nope.txt"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(f.Entries) != 0 {
		t.Errorf("Entries = %v, want none", f.Entries)
	}
}

func TestLoadFirstWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.txt")
	second := filepath.Join(dir, "second.txt")
	writeFile(t, first, "A\tB\nA\tC\n")
	writeFile(t, second, "A\tD\n")

	c := New(Options{})
	if n, err := c.Load(TierManual, first); err != nil || n != 1 {
		t.Fatalf("Load(first) = %d, %v; want 1, nil", n, err)
	}
	if n, err := c.Load(TierManual, second); err != nil || n != 0 {
		t.Fatalf("Load(second) = %d, %v; want 0, nil", n, err)
	}

	rec, ok := c.Get("A")
	if !ok {
		t.Fatal("record A missing")
	}
	if rec.Manual != "B" {
		t.Errorf("Manual = %q, want %q", rec.Manual, "B")
	}
}

func TestLoadMissingIsEmptyTier(t *testing.T) {
	c := New(Options{})
	n, err := c.Load(TierOfficial, filepath.Join(t.TempDir(), "missing.txt"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n != 0 || c.Len() != 0 {
		t.Errorf("Load = %d (len %d), want empty", n, c.Len())
	}
}

func TestLoadMalformedGoesToErrorLogOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manual.txt")
	errPath := filepath.Join(dir, "Errors.txt")
	writeFile(t, path, "good\tline\nbroken\n")

	var reported []string
	opts := Options{
		ErrorPath: errPath,
		OnError:   func(format string, args ...any) { reported = append(reported, format) },
	}
	c := New(opts)
	for i := 0; i < 2; i++ {
		if _, err := c.Load(TierManual, path); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	// A later run finds the block already logged.
	if _, err := New(opts).Load(TierManual, path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(reported) != 3 {
		t.Errorf("reported %d errors, want 3", len(reported))
	}
	if rec, ok := c.Get("good"); !ok || rec.Manual != "line" {
		t.Errorf("Get(good) = %+v, %v, want manual %q", rec, ok, "line")
	}
	want := "##" + path + "\nbroken\n\n\n"
	if got := readFile(t, errPath); got != want {
		t.Errorf("error log = %q, want %q", got, want)
	}
}

func TestLoadMalformedWriteFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manual.txt")
	writeFile(t, path, "good\tline\nbroken\n")

	var reported int
	// A directory in place of the error log makes every write fail.
	c := New(Options{
		ErrorPath: dir,
		OnError:   func(string, ...any) { reported++ },
	})
	n, err := c.Load(TierManual, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n != 1 {
		t.Errorf("Load = %d, want 1", n)
	}
	if reported != 2 {
		t.Errorf("reported %d errors, want malformed line and write failure", reported)
	}
}

func TestLoadSubtitleLines(t *testing.T) {
	dir := t.TempDir()
	line := `@VoiceSubtitle{"displayTime":-1,"original":"あ","translation":"A","voice":"V"}` + "\n"
	p := Paths{
		Official:  filepath.Join(dir, "OfficialTranslationCache.txt"),
		CustomDir: filepath.Join(dir, "Custom"),
	}
	writeFile(t, p.Official, line)
	writeFile(t, filepath.Join(p.CustomDir, "a_001.txt"), line)

	c := New(Options{})
	if err := c.LoadAll(p); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	want := []script.Cue{{DisplayTime: -1, Original: "あ", Translation: "A", Voice: "V"}}
	if diff := cmp.Diff(want, c.Subtitles.Cues("a_001")); diff != "" {
		t.Errorf("Cues mismatch (-want +got):\n%s", diff)
	}
	// A tier file belongs to no script.
	if got := c.Subtitles.Scripts(); !cmp.Equal(got, []string{"a_001"}) {
		t.Errorf("Scripts = %v, want [a_001]", got)
	}
}

func TestLoadAllOrder(t *testing.T) {
	dir := t.TempDir()
	p := Paths{
		Manual:    filepath.Join(dir, "Manual.txt"),
		CustomDir: filepath.Join(dir, "Custom"),
		Official:  filepath.Join(dir, "Official.txt"),
		Machine:   filepath.Join(dir, "Machine.txt"),
	}
	writeFile(t, p.Manual, "A\tmanual\n")
	writeFile(t, filepath.Join(p.CustomDir, "b.txt"), "A\tcustom-b\nB\tcustom-b\n")
	writeFile(t, filepath.Join(p.CustomDir, "a.txt"), "B\tcustom-a\n")
	writeFile(t, p.Official, "A\tofficial\nC\tofficial\n")
	writeFile(t, p.Machine, "C\tmachine\nD\tmachine\n")

	c := New(Options{})
	if err := c.LoadAll(p); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	tests := []struct {
		source   string
		want     string
		wantTier Tier
	}{
		{"A", "manual", TierManual},
		{"B", "custom-a", TierManual},
		{"C", "official", TierOfficial},
		{"D", "machine", TierMachine},
	}
	for _, tt := range tests {
		rec, ok := c.Get(tt.source)
		if !ok {
			t.Fatalf("record %s missing", tt.source)
		}
		got, tier := Resolve(rec, false)
		if got != tt.want || tier != tt.wantTier {
			t.Errorf("Resolve(%s) = %q, %v; want %q, %v", tt.source, got, tier, tt.want, tt.wantTier)
		}
	}

	counts := c.Counts()
	if counts[TierManual] != 2 || counts[TierOfficial] != 2 || counts[TierMachine] != 2 {
		t.Errorf("Counts = %v", counts)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		rec      Record
		safe     bool
		want     string
		wantTier Tier
	}{
		{"manual first", Record{Manual: "m", Official: "o", Machine: "x"}, false, "m", TierManual},
		{"official before machine", Record{Official: "o", Machine: "x"}, false, "o", TierOfficial},
		{"safe skips official", Record{Official: "o", Machine: "x"}, true, "x", TierMachine},
		{"safe keeps manual", Record{Manual: "m", Official: "o"}, true, "m", TierManual},
		{"only official in safe mode", Record{Official: "o"}, true, "", TierNone},
		{"nothing", Record{}, false, "", TierNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, tier := Resolve(&tt.rec, tt.safe)
			if got != tt.want || tier != tt.wantTier {
				t.Errorf("Resolve = %q, %v; want %q, %v", got, tier, tt.want, tt.wantTier)
			}
		})
	}
}

func TestMergeIdempotent(t *testing.T) {
	c := New(Options{})
	entries := []Entry{{"A", "1"}, {"B", "2"}}

	if n := c.Merge(TierMachine, entries); n != 2 {
		t.Fatalf("first Merge = %d, want 2", n)
	}
	if n := c.Merge(TierMachine, entries); n != 0 {
		t.Fatalf("second Merge = %d, want 0", n)
	}
	if n := c.Merge(TierMachine, []Entry{{"A", "other"}}); n != 0 {
		t.Fatalf("conflicting Merge = %d, want 0", n)
	}
	rec, _ := c.Get("A")
	if rec.Machine != "1" {
		t.Errorf("Machine = %q, want %q", rec.Machine, "1")
	}
}

func TestEntry(t *testing.T) {
	c := New(Options{})
	c.Merge(TierOfficial, []Entry{{"[HF]こんにちは", "Hello [HF]"}})

	rec := c.Entry("a_001.ks", "  [HF]こんにちは ")
	if rec.Official != "Hello [HF]" {
		t.Errorf("Official = %q, want loaded value", rec.Official)
	}
	if rec.FilePath != "a_001.ks" {
		t.Errorf("FilePath = %q, want %q", rec.FilePath, "a_001.ks")
	}
	if got := rec.Prepared().Text; got != "MUKU こんにちは" {
		t.Errorf("Prepared().Text = %q, want %q", got, "MUKU こんにちは")
	}

	again := c.Entry("b_002.ks", "[HF]こんにちは")
	if again != rec {
		t.Error("Entry created a second record for the same source")
	}
	if again.FilePath != "a_001.ks" {
		t.Errorf("FilePath = %q, want first sighting", again.FilePath)
	}
}

func TestPersistMachineAndError(t *testing.T) {
	dir := t.TempDir()
	machine := filepath.Join(dir, "Caches", "Machine.txt")
	errLog := filepath.Join(dir, "Errors.txt")
	c := New(Options{MachinePath: machine, ErrorPath: errLog})

	rec := c.Entry("a.ks", "こんにちは")
	if err := c.PersistMachine(rec); err != nil {
		t.Fatalf("PersistMachine without text: %v", err)
	}
	if _, err := os.Stat(machine); !os.IsNotExist(err) {
		t.Fatal("machine file written for an empty translation")
	}

	rec.Machine = "Hello"
	for i := 0; i < 2; i++ {
		if err := c.PersistMachine(rec); err != nil {
			t.Fatalf("PersistMachine: %v", err)
		}
	}
	if got, want := readFile(t, machine), "こんにちは\tHello\nこんにちは\tHello\n"; got != want {
		t.Errorf("machine file = %q, want %q", got, want)
	}

	if err := c.PersistError(rec, "Hello Hello Hello"); err != nil {
		t.Fatalf("PersistError: %v", err)
	}
	if got, want := readFile(t, errLog), "##a.ks\nこんにちは\nHello Hello Hello\n\n"; got != want {
		t.Errorf("error log = %q, want %q", got, want)
	}

	// Reload keeps the first machine line.
	c2 := New(Options{})
	if n, err := c2.Load(TierMachine, machine); err != nil || n != 1 {
		t.Fatalf("reload = %d, %v; want 1, nil", n, err)
	}
}

func TestOfficialStore(t *testing.T) {
	dir := t.TempDir()
	official := filepath.Join(dir, "Official.txt")
	npc := filepath.Join(dir, "npc.txt")
	writeFile(t, official, "A\tB\n")

	known, err := LoadKnown(official, npc)
	if err != nil {
		t.Fatalf("LoadKnown: %v", err)
	}
	store := NewOfficialStore(official, known)
	names := NewOfficialStore(npc, known)

	n, err := store.Append([]script.Pair{{Source: "A", Target: "B"}, {Source: "C", Target: ""}, {Source: "D", Target: "E"}, {Source: "D", Target: "E"}})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if n != 1 {
		t.Errorf("Append = %d, want 1", n)
	}
	if got, want := readFile(t, official), "A\tB\nD\tE\n"; got != want {
		t.Errorf("official = %q, want %q", got, want)
	}

	// The NPC store shares the known set.
	n, err = names.Append([]script.Pair{{Source: "D", Target: "E"}, {Source: "ルナ", Target: "Luna"}})
	if err != nil {
		t.Fatalf("Append names: %v", err)
	}
	if n != 1 {
		t.Errorf("Append names = %d, want 1", n)
	}
	if got, want := readFile(t, npc), "ルナ\tLuna\n"; got != want {
		t.Errorf("npc = %q, want %q", got, want)
	}
	if known.Len() != 3 {
		t.Errorf("known = %d, want 3", known.Len())
	}
}

func TestSubtitles(t *testing.T) {
	dir := t.TempDir()
	cues := []script.Cue{
		{DisplayTime: -1, Original: "あ", Translation: "A", Voice: "V1"},
		{StartTime: 100, DisplayTime: 900, Original: "い", Voice: "V2"},
	}
	if err := WriteSubtitleFile(dir, "a_001", cues); err != nil {
		t.Fatalf("WriteSubtitleFile: %v", err)
	}
	if err := WriteSubtitleFile(dir, "empty", nil); err != nil {
		t.Fatalf("WriteSubtitleFile(empty): %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "empty.txt")); !os.IsNotExist(err) {
		t.Error("file written for no cues")
	}

	s := NewSubtitles()
	if err := s.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if diff := cmp.Diff(cues, s.Cues("a_001")); diff != "" {
		t.Errorf("Cues mismatch (-want +got):\n%s", diff)
	}
	if n := s.Add("a_001", cues...); n != 0 {
		t.Errorf("Add duplicates = %d, want 0", n)
	}
	if got := s.Scripts(); !cmp.Equal(got, []string{"a_001"}) {
		t.Errorf("Scripts = %v", got)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestSubtitlesSkipEmptyCues(t *testing.T) {
	s := NewSubtitles()
	if n := s.Add("a_001", script.Cue{Voice: "V1", DisplayTime: -1}); n != 0 {
		t.Errorf("Add(empty cue) = %d, want 0", n)
	}
	if err := s.AddLine("a_001", `@VoiceSubtitle{"displayTime":-1,"original":"","translation":"","voice":"V2"}`); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if n := s.Add("a_001", script.Cue{Translation: "Ah", Voice: "V3"}); n != 1 {
		t.Errorf("Add(translated cue) = %d, want 1", n)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}
