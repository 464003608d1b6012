// Command sugoikit extracts COM3D2 game scripts and translates them through
// layered caches and a local Sugoi translator.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/minios-linux/sugoikit/archistory"
	"github.com/minios-linux/sugoikit/cache"
	"github.com/minios-linux/sugoikit/config"
	"github.com/minios-linux/sugoikit/export"
	"github.com/minios-linux/sugoikit/extract"
	"github.com/minios-linux/sugoikit/i18n"
	"github.com/minios-linux/sugoikit/jpcache"
	"github.com/minios-linux/sugoikit/translate"
	"github.com/spf13/cobra"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset      = "\033[0m"
	colorRed        = "\033[0;31m"
	colorGreen      = "\033[0;32m"
	colorYellow     = "\033[1;33m"
	colorBlue       = "\033[0;34m"
	colorCyan       = "\033[0;36m"
	colorBrightBlue = "\033[1;94m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+i18n.T(format)+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+i18n.T(format)+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+i18n.T(format)+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+i18n.T(format)+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sugoikit",
		Short: "COM3D2 script extraction and translation kit",
		Long: `sugoikit: COM3D2 script extraction and translation kit.

Extracts the shipped English translations and the Japanese script lines from
the game archives, then translates every line through the manual, official
and machine translation caches, asking a local Sugoi translator for the rest.
The result is exported as i18nEx scripts.

Commands:
  status      Show configuration and cache statistics
  extract     Extract official translations or Japanese lines from the game
  translate   Translate the Japanese lines and export the scripts

Settings are read from .sugoikit.yaml in the root directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Working directory holding .sugoikit.yaml and the caches")

	root.AddCommand(
		newStatusCmd(),
		newExtractCmd(),
		newTranslateCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sugoikit version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// status (read-only: configuration + cache stats)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration and cache statistics",
		Long: `Show the resolved configuration, the number of lines in every
translation cache tier, the archive histories and the Japanese line cache.
Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			return runStatus(cmd.Context(), cfg, os.Stderr)
		},
	}
}

func runStatus(ctx context.Context, cfg *config.Config, w io.Writer) error {
	fmt.Fprintf(w, "\n%sConfiguration%s\n", colorBlue, colorReset)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for _, l := range cfg.Summary() {
		fmt.Fprintf(w, "  %s\n", l)
	}

	c := newCache(cfg, false, false)
	if err := c.LoadAll(cachePaths(cfg)); err != nil {
		return err
	}
	counts := c.Counts()

	fmt.Fprintf(w, "\n%sTranslation cache%s\n", colorBlue, colorReset)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for _, t := range []cache.Tier{cache.TierManual, cache.TierOfficial, cache.TierMachine} {
		fmt.Fprintf(w, "  %s%-9s%s %d\n", tierColor(t), t, colorReset, counts[t])
	}
	fmt.Fprintf(w, "  %-9s %d\n", "lines", c.Len())
	fmt.Fprintf(w, "  %-9s %d\n", "subtitles", c.Subtitles.Len())

	fmt.Fprintf(w, "\n%sArchives%s\n", colorBlue, colorReset)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for _, name := range []string{archistory.OfficialFile, archistory.JapaneseFile} {
		h, err := archistory.Load(cfg.ArcHistoryDir, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %-20s %s\n", name, h.Summary())
	}

	if fileExists(cfg.JpCache) {
		store, err := jpcache.Open(cfg.JpCache)
		if err != nil {
			return err
		}
		defer store.Close()
		scripts, lines, err := store.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %-20s %d scripts, %d lines\n", filepath.Base(cfg.JpCache), scripts, lines)
	} else {
		fmt.Fprintf(w, "  %-20s %s\n", filepath.Base(cfg.JpCache), "not extracted")
	}
	fmt.Fprintln(w)
	return nil
}

// ---------------------------------------------------------------------------
// extract
// ---------------------------------------------------------------------------

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract scripts from the game",
		Long: `Extract the shipped English translations (official) or the Japanese
script lines (japanese) from the game archives.

Archives whose size has not changed since the last run are skipped.`,
	}
	cmd.AddCommand(newExtractOfficialCmd(), newExtractJapaneseCmd())
	return cmd
}

type extractArgs struct {
	gamePath   string
	fromFolder bool
	includeCbl bool
	verbose    bool
}

func newExtractOfficialCmd() *cobra.Command {
	var a extractArgs

	cmd := &cobra.Command{
		Use:   "official",
		Short: "Extract official English translations",
		Long: `Extract the official English translations of an English game install
into the official translation cache. NPC names go to their own cache and
voice subtitles to the subtitle folder.

Examples:
  # Extract from the game configured in .sugoikit.yaml
  sugoikit extract official

  # Extract from another install
  sugoikit extract official --game-path /games/COM3D2_EN

  # Build the cache from already extracted script files
  sugoikit extract official --from-folder`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return runExtractOfficial(ctx, cfg, a)
		},
	}

	cmd.Flags().StringVar(&a.gamePath, "game-path", "", "English game install (default: from config)")
	cmd.Flags().BoolVar(&a.fromFolder, "from-folder", false, "Read extracted scripts from the English scripts folder instead of the game")
	cmd.Flags().BoolVar(&a.verbose, "verbose", false, "Log every archive")
	return cmd
}

func newExtractJapaneseCmd() *cobra.Command {
	var a extractArgs

	cmd := &cobra.Command{
		Use:   "japanese",
		Short: "Extract Japanese script lines",
		Long: `Extract the Japanese lines of a Japanese game install into the
Japanese line cache read by 'sugoikit translate'.

ChuBLip archives (*_cbl*.arc) are skipped unless --include-cbl is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return runExtractJapanese(ctx, cfg, a)
		},
	}

	cmd.Flags().StringVar(&a.gamePath, "game-path", "", "Japanese game install (default: from config)")
	cmd.Flags().BoolVar(&a.includeCbl, "include-cbl", false, "Also extract ChuBLip archives")
	cmd.Flags().BoolVar(&a.verbose, "verbose", false, "Log every archive")
	return cmd
}

func extractOptions(root string, h *archistory.History, verbose bool) extract.Options {
	opts := extract.Options{
		Root:    root,
		History: h,
		OnError: func(format string, args ...any) { logError(format, args...) },
	}
	if verbose {
		opts.OnLog = func(format string, args ...any) { logInfo(format, args...) }
	}
	return opts
}

func gameRoot(flag, configured, what string) (string, error) {
	root := configured
	if flag != "" {
		root = config.GameDataPath(flag)
	}
	if root == "" {
		return "", fmt.Errorf("no %s game path: set game.%s in %s or pass --game-path", what, what, config.FileName)
	}
	return root, nil
}

func officialSinks(cfg *config.Config) (extract.Sinks, error) {
	known, err := cache.LoadKnown(cfg.OfficialCache, cfg.NPCNames)
	if err != nil {
		return extract.Sinks{}, err
	}
	return extract.Sinks{
		Official:    cache.NewOfficialStore(cfg.OfficialCache, known),
		NPC:         cache.NewOfficialStore(cfg.NPCNames, known),
		SubtitleDir: cfg.SubtitlesDir,
	}, nil
}

func runExtractOfficial(ctx context.Context, cfg *config.Config, a extractArgs) error {
	sinks, err := officialSinks(cfg)
	if err != nil {
		return err
	}

	var stats extract.Stats
	if a.fromFolder || (cfg.EnglishSource == config.SourceFolder && a.gamePath == "") {
		logInfo("Reading official scripts from %s", cfg.EnglishScripts)
		stats, err = extract.OfficialFromFolder(ctx, cfg.EnglishScripts, sinks, extractOptions("", nil, a.verbose))
	} else {
		root, rerr := gameRoot(a.gamePath, cfg.EnglishGameData, "english")
		if rerr != nil {
			return rerr
		}
		h, herr := archistory.Load(cfg.ArcHistoryDir, archistory.OfficialFile)
		if herr != nil {
			return herr
		}
		logInfo("Extracting official translations from %s", root)
		stats, err = extract.Official(ctx, extractOptions(root, h, a.verbose), sinks)
	}

	reportExtract(stats)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logWarning("Interrupted, progress saved")
			return nil
		}
		return err
	}
	logSuccess("%d new official lines in %s", stats.Lines, filepath.Base(cfg.OfficialCache))
	return nil
}

func runExtractJapanese(ctx context.Context, cfg *config.Config, a extractArgs) error {
	root, err := gameRoot(a.gamePath, cfg.JapaneseGameData, "japanese")
	if err != nil {
		return err
	}
	h, err := archistory.Load(cfg.ArcHistoryDir, archistory.JapaneseFile)
	if err != nil {
		return err
	}
	store, err := openJpCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := extractOptions(root, h, a.verbose)
	opts.IgnoreMarked = cfg.IgnoreCbl && !a.includeCbl

	logInfo("Extracting Japanese lines from %s", root)
	stats, err := extract.Japanese(ctx, opts, store)
	reportExtract(stats)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logWarning("Interrupted, progress saved")
			return nil
		}
		return err
	}
	logSuccess("%d new Japanese lines in %s", stats.Lines, filepath.Base(cfg.JpCache))
	return nil
}

func reportExtract(s extract.Stats) {
	if s.Archives > 0 {
		logInfo("Archives: %d found, %d scanned, %d unchanged, %d failed", s.Archives, s.Scanned, s.Skipped, s.Failed)
	}
	logInfo("Scripts: %d, new lines: %d", s.Scripts, s.Lines)
	if s.Anomalies > 0 {
		logWarning("%d script anomalies (unterminated blocks or missing sub-scripts)", s.Anomalies)
	}
}

// openJpCache opens the Japanese line cache, importing the JSON cache of
// older versions when the database is new.
func openJpCache(ctx context.Context, cfg *config.Config) (*jpcache.Store, error) {
	store, err := jpcache.Open(cfg.JpCache)
	if err != nil {
		return nil, err
	}

	legacy := strings.TrimSuffix(cfg.JpCache, filepath.Ext(cfg.JpCache)) + ".json"
	if !fileExists(legacy) {
		return store, nil
	}
	_, lines, err := store.Count(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}
	if lines > 0 {
		return store, nil
	}
	n, err := store.ImportJSON(ctx, legacy)
	if err != nil {
		store.Close()
		return nil, err
	}
	logInfo("Imported %d lines from %s", n, filepath.Base(legacy))
	return store, nil
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

type translateArgs struct {
	source   string
	forced   bool
	safe     bool
	noExport bool
	bson     bool
	bsonSet  bool
	offline  bool
	url      string
	timeout  time.Duration
	verbose  bool
}

func newTranslateCmd() *cobra.Command {
	var a translateArgs

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate the Japanese lines and export the scripts",
		Long: `Translate every Japanese script line and export the result as
i18nEx scripts.

Lines are resolved from the manual, official and machine caches in that
order. Lines no cache covers are sent to the Sugoi translator; when it is
not running only cached lines are exported. Press Enter to pause or resume.

Examples:
  # Translate the lines extracted from the game
  sugoikit translate

  # Translate script files and export text folders
  sugoikit translate --source folder --bson=false

  # Export without touching the translator
  sugoikit translate --offline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			a.bsonSet = cmd.Flags().Changed("bson")
			if err := applyTranslateFlags(cfg, a); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			gate := &translate.Gate{}
			if isTerminal(os.Stdin) {
				logInfo("Press Enter to pause or resume")
				go watchPause(os.Stdin, gate, func(paused bool) {
					if paused {
						logWarning("Paused after the current script, press Enter to resume")
					} else {
						logInfo("Resumed")
					}
				})
			}
			return runTranslate(ctx, cfg, a, gate)
		},
	}

	cmd.Flags().StringVar(&a.source, "source", "", "Japanese line source: game or folder (default: from config)")
	cmd.Flags().BoolVar(&a.forced, "forced", false, "Machine-translate lines that only have a manual or official translation")
	cmd.Flags().BoolVar(&a.safe, "safe", false, "Ignore official translations")
	cmd.Flags().BoolVar(&a.noExport, "no-export", false, "Only fill the caches, do not export scripts")
	cmd.Flags().BoolVar(&a.bson, "bson", false, "Export a single script.bson instead of text folders (default: from config)")
	cmd.Flags().BoolVar(&a.offline, "offline", false, "Do not contact the translator")
	cmd.Flags().StringVar(&a.url, "url", "", "Sugoi translator URL (default: from config)")
	cmd.Flags().DurationVar(&a.timeout, "timeout", 0, "Translator request timeout (0 = from config)")
	cmd.Flags().BoolVar(&a.verbose, "verbose", false, "Show every line and translator request")

	_ = cmd.RegisterFlagCompletionFunc("source", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			config.SourceGame + "\tLines extracted from the Japanese game",
			config.SourceFolder + "\tText files in the Japanese scripts folder",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// applyTranslateFlags overrides cfg with the flags given on the command line.
func applyTranslateFlags(cfg *config.Config, a translateArgs) error {
	if a.source != "" {
		if a.source != config.SourceGame && a.source != config.SourceFolder {
			return fmt.Errorf("--source %q is unknown (valid: %s, %s)", a.source, config.SourceGame, config.SourceFolder)
		}
		cfg.JapaneseSource = a.source
	}
	if a.bsonSet {
		cfg.ExportBSON = a.bson
	}
	if a.url != "" {
		cfg.TranslatorURL = a.url
	}
	if a.timeout > 0 {
		cfg.TranslatorTimeout = a.timeout
	}
	cfg.Forced = cfg.Forced || a.forced
	cfg.Safe = cfg.Safe || a.safe
	if a.noExport {
		cfg.Export = false
	}
	return nil
}

// exporter writes translated scripts.
type exporter interface {
	translate.Sink
	AddSubtitles(dir string) (int, error)
	Close() error
}

func newExporter(cfg *config.Config) (exporter, error) {
	if cfg.ExportBSON {
		e := export.NewBSONExporter(cfg.ExportDir)
		logInfo("Exporting to %s", e.Path)
		return e, nil
	}
	e := export.NewTextExporter(cfg.ExportDir)
	rotated, err := e.Prepare()
	if err != nil {
		return nil, err
	}
	if rotated != "" {
		logInfo("Previous export moved to %s", rotated)
	}
	logInfo("Exporting to %s", cfg.ExportDir)
	return e, nil
}

func loadScripts(ctx context.Context, cfg *config.Config) ([]translate.Script, error) {
	if cfg.JapaneseSource == config.SourceFolder {
		logInfo("Reading Japanese scripts from %s", cfg.JapaneseScripts)
		return translate.ScriptsFromFolder(cfg.JapaneseScripts)
	}
	if !fileExists(cfg.JpCache) && !fileExists(strings.TrimSuffix(cfg.JpCache, filepath.Ext(cfg.JpCache))+".json") {
		return nil, fmt.Errorf("%s not found: run 'sugoikit extract japanese' first", filepath.Base(cfg.JpCache))
	}
	store, err := openJpCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return translate.ScriptsFromStore(ctx, store)
}

func runTranslate(ctx context.Context, cfg *config.Config, a translateArgs, gate *translate.Gate) error {
	c := newCache(cfg, a.verbose, true)
	if err := c.LoadAll(cachePaths(cfg)); err != nil {
		return err
	}
	counts := c.Counts()
	logInfo("Cache: %d manual, %d official, %d machine lines", counts[cache.TierManual], counts[cache.TierOfficial], counts[cache.TierMachine])

	scripts, err := loadScripts(ctx, cfg)
	if err != nil {
		return err
	}
	if len(scripts) == 0 {
		logWarning("No scripts to translate")
		return nil
	}
	logInfo("%d scripts to process", len(scripts))

	var tr translate.Translator
	if !a.offline {
		client := translate.NewSugoiClient(cfg.TranslatorURL, cfg.TranslatorTimeout)
		client.Verbose = a.verbose
		if err := client.Ping(ctx); err != nil {
			logWarning("Sugoi translator unavailable at %s (%v): exporting cached lines only", cfg.TranslatorURL, err)
		} else {
			logSuccess("Sugoi translator online at %s", cfg.TranslatorURL)
			tr = client
		}
	}

	opts := translate.Options{
		Translator: tr,
		Forced:     cfg.Forced,
		Safe:       cfg.Safe,
		Gate:       gate,
		OnScript: func(name string, done, total int) {
			logInfo("%s %s", progressBar(done*100/total, 20), name)
		},
		OnLine: func(r translate.Result) {
			printResult(os.Stderr, r, a.verbose)
		},
		OnLog:   func(format string, args ...any) { logWarning(format, args...) },
		OnError: func(format string, args ...any) { logError(format, args...) },
	}

	var exp exporter
	if cfg.Export {
		if exp, err = newExporter(cfg); err != nil {
			return err
		}
		opts.Sink = exp
	}

	stats, runErr := translate.NewPipeline(c, opts).Run(ctx, scripts)

	if exp != nil {
		n, err := exp.AddSubtitles(cfg.SubtitlesDir)
		if err != nil {
			logError("Adding subtitles: %v", err)
		} else if n > 0 {
			logInfo("Added %d subtitle files", n)
		}
		if err := exp.Close(); err != nil {
			return err
		}
	}

	reportTranslate(stats, cfg)
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			logWarning("Interrupted, translations so far are cached")
			return nil
		}
		return runErr
	}
	logSuccess("Done")
	return nil
}

func reportTranslate(s translate.Stats, cfg *config.Config) {
	logInfo("Scripts: %d, lines: %d", s.Scripts, s.Lines)
	logInfo("Cached: %d, translated: %d, untranslated: %d", s.Cached, s.Translated, s.Skipped)
	if s.Errors > 0 {
		logWarning("%d translator errors", s.Errors)
	}
	if s.Faulty > 0 {
		logWarning("%d faulty translations written to %s", s.Faulty, filepath.Base(cfg.ErrorFile))
		logWarning("Scripts with faulty lines: %s", strings.Join(s.FailedScripts, ", "))
	}
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

func cachePaths(cfg *config.Config) cache.Paths {
	return cache.Paths{
		Manual:    cfg.ManualCache,
		CustomDir: cfg.CustomDir,
		Official:  cfg.OfficialCache,
		Machine:   cfg.MachineCache,
	}
}

// newCache builds the cache for cfg. A read-only cache has no machine or
// error file to write to.
func newCache(cfg *config.Config, verbose, writable bool) *cache.Cache {
	opts := cache.Options{
		OnError: func(format string, args ...any) { logWarning(format, args...) },
	}
	if writable {
		opts.MachinePath = cfg.MachineCache
		opts.ErrorPath = cfg.ErrorFile
	}
	if verbose {
		opts.OnLog = func(format string, args ...any) { logInfo(format, args...) }
	}
	return cache.New(opts)
}

// tierColor returns the console color of lines resolved from t.
func tierColor(t cache.Tier) string {
	switch t {
	case cache.TierManual:
		return colorCyan
	case cache.TierOfficial:
		return colorGreen
	case cache.TierMachine:
		return colorBlue
	case cache.TierNew:
		return colorBrightBlue
	}
	return colorYellow
}

// printResult shows a translated line. Cached and untranslated lines are
// only shown when verbose.
func printResult(w io.Writer, r translate.Result, verbose bool) {
	switch {
	case r.Faulty:
		fmt.Fprintf(w, "  %s%s%s => %s%s%s (rejected)\n", colorYellow, r.Source, colorReset, colorRed, r.Target, colorReset)
	case r.Skipped:
		if verbose {
			fmt.Fprintf(w, "  %s%s%s (untranslated)\n", colorYellow, r.Source, colorReset)
		}
	case r.Tier == cache.TierNew || verbose:
		fmt.Fprintf(w, "  %s%s%s => %s%s%s\n", colorYellow, r.Source, colorReset, tierColor(r.Tier), r.Target, colorReset)
	}
}

// watchPause toggles gate for every line read from r.
func watchPause(r io.Reader, gate *translate.Gate, onToggle func(paused bool)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		paused := gate.Toggle()
		if onToggle != nil {
			onToggle(paused)
		}
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	return fmt.Sprintf("%s%s%s%s %3d%%", color, strings.Repeat("█", filled), strings.Repeat("░", width-filled), colorReset, percent)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
