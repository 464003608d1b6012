// Package extract scans game archives for script text.
//
// Official extraction reads an English game install and appends every
// shipped translation to the official cache files. Japanese extraction reads
// a Japanese install and stores the untranslated lines per script in the
// Japanese line cache. Both sides keep an archive history so only new or
// resized archives are scanned on the next run.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/sugoikit/archistory"
	"github.com/minios-linux/sugoikit/arcfs"
	"github.com/minios-linux/sugoikit/cache"
	"github.com/minios-linux/sugoikit/jpcache"
	"github.com/minios-linux/sugoikit/script"
)

// ArchiveExt is the extension of game archives.
const ArchiveExt = ".arc"

// SkipMarker marks archives holding ChuBLip content, skipped by Japanese
// extraction when Options.IgnoreMarked is set.
const SkipMarker = "_cbl"

// ErrRootNotFound is returned when the game data directory does not exist.
var ErrRootNotFound = errors.New("game data directory not found")

// Options controls an extraction run.
type Options struct {
	// Root is the GameData directory to scan.
	Root string
	// History holds the fingerprints of archives already scanned. It is
	// saved after every archive.
	History *archistory.History
	// Open opens archives (nil = arcfs.OpenZip).
	Open arcfs.Opener
	// IgnoreMarked skips archives whose name contains SkipMarker. Only
	// Japanese extraction honors it.
	IgnoreMarked bool

	OnLog   func(format string, args ...any)
	OnError func(format string, args ...any)
}

func (o *Options) logf(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) errorf(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	}
}

// Sinks receive the output of official extraction.
type Sinks struct {
	Official *cache.OfficialStore
	NPC      *cache.OfficialStore
	// SubtitleDir receives one <script>.txt file of subtitle cues per
	// script that has any (empty = subtitles dropped).
	SubtitleDir string
}

// Stats summarizes an extraction run.
type Stats struct {
	Archives  int // archives found
	Skipped   int // unchanged or marked
	Scanned   int // opened and parsed
	Failed    int // could not be opened
	Scripts   int
	Lines     int // new lines stored
	Anomalies int
}

// FindArchives returns every .arc file under root, sorted.
func FindArchives(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrRootNotFound)
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !info.IsDir() && strings.EqualFold(filepath.Ext(path), ArchiveExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// scriptFunc handles one decoded script of an open archive and returns the
// number of new lines stored.
type scriptFunc func(arc arcfs.Archive, blob arcfs.Blob) (int, error)

// run walks the archives under opts.Root, skipping unchanged ones, and calls
// fn for every script of the others.
func run(ctx context.Context, opts Options, skipMarked bool, fn scriptFunc) (Stats, error) {
	var stats Stats

	if opts.History == nil {
		return stats, fmt.Errorf("archive history not set")
	}
	open := opts.Open
	if open == nil {
		open = arcfs.OpenZip
	}

	archives, err := FindArchives(opts.Root)
	if err != nil {
		return stats, err
	}
	opts.logf("Found %d archives in %s", len(archives), opts.Root)

	for _, path := range archives {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Archives++

		name := filepath.Base(path)
		info, err := os.Stat(path)
		if err != nil {
			opts.errorf("%s: %v", name, err)
			stats.Failed++
			continue
		}
		size := info.Size()

		if opts.History.Unchanged(name, size) {
			stats.Skipped++
			continue
		}
		opts.History.Forget(name)

		if skipMarked && strings.Contains(name, SkipMarker) {
			stats.Skipped++
			continue
		}

		arc, err := open(path)
		if err != nil {
			opts.errorf("%s: %v", name, err)
			stats.Failed++
			continue
		}
		scripts, lines, err := scanArchive(arc, fn)
		arc.Close()
		if err != nil {
			opts.errorf("%s: %v", name, err)
			stats.Failed++
			continue
		}

		stats.Scanned++
		stats.Scripts += scripts
		stats.Lines += lines
		opts.logf("%s: %d scripts, %d new lines", name, scripts, lines)

		opts.History.Record(name, size)
		if err := opts.History.Save(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func scanArchive(arc arcfs.Archive, fn scriptFunc) (scripts, lines int, err error) {
	blobs, err := arc.Scripts()
	if err != nil {
		return 0, 0, err
	}
	for _, b := range blobs {
		n, err := fn(arc, b)
		if err != nil {
			return scripts, lines, fmt.Errorf("%s: %w", b.Name, err)
		}
		scripts++
		lines += n
	}
	return scripts, lines, nil
}

// Resolver returns a script.Resolver reading sibling scripts from arc.
func Resolver(arc arcfs.Archive) script.Resolver {
	return func(name string) ([]string, error) {
		b, err := arc.Script(name)
		if err != nil {
			return nil, err
		}
		return script.SplitLines(b.Text), nil
	}
}

// ScriptName returns the script name of an archive entry: its base name
// without extension.
func ScriptName(entry string) string {
	base := filepath.Base(entry)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ---------------------------------------------------------------------------
// Official (English) extraction
// ---------------------------------------------------------------------------

// Official extracts shipped translations from an English game install.
func Official(ctx context.Context, opts Options, sinks Sinks) (Stats, error) {
	if sinks.Official == nil || sinks.NPC == nil {
		return Stats{}, fmt.Errorf("official extraction needs both cache stores")
	}

	anomalies := 0
	stats, err := run(ctx, opts, false, func(arc arcfs.Archive, blob arcfs.Blob) (int, error) {
		rec := script.ParseContent(blob.Name, blob.Text, script.Options{Resolver: Resolver(arc)})
		for _, a := range rec.Anomalies {
			opts.errorf("%s: %s", blob.Name, a)
		}
		anomalies += len(rec.Anomalies)

		n, err := sinks.Official.Append(rec.Pairs())
		if err != nil {
			return 0, err
		}
		if _, err := sinks.NPC.Append(rec.NPCNames); err != nil {
			return n, err
		}
		if sinks.SubtitleDir != "" {
			if err := cache.WriteSubtitleFile(sinks.SubtitleDir, ScriptName(blob.Name), rec.Subtitles); err != nil {
				return n, err
			}
		}
		return n, nil
	})
	stats.Anomalies = anomalies
	return stats, err
}

// ---------------------------------------------------------------------------
// Japanese extraction
// ---------------------------------------------------------------------------

// Japanese stores the dialogue and choice lines of a Japanese game install.
func Japanese(ctx context.Context, opts Options, store *jpcache.Store) (Stats, error) {
	if store == nil {
		return Stats{}, fmt.Errorf("japanese extraction needs a line cache")
	}

	anomalies := 0
	stats, err := run(ctx, opts, opts.IgnoreMarked, func(_ arcfs.Archive, blob arcfs.Blob) (int, error) {
		rec := script.ParseContent(blob.Name, blob.Text, script.Options{Directives: script.TextDirectives})
		anomalies += len(rec.Anomalies)

		lines := rec.SourceLines()
		if len(lines) == 0 {
			return 0, nil
		}
		return store.AddLines(ctx, ScriptName(blob.Name), lines)
	})
	stats.Anomalies = anomalies
	return stats, err
}

// OfficialFromFolder builds the official cache from translated script files
// (*.txt, "source\ttarget" lines) under dir instead of a game install.
// Subtitle lines found in them are kept under the script's name.
func OfficialFromFolder(ctx context.Context, dir string, sinks Sinks, opts Options) (Stats, error) {
	var stats Stats
	if sinks.Official == nil {
		return stats, fmt.Errorf("folder extraction needs an official cache store")
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return stats, fmt.Errorf("%s: %w", dir, ErrRootNotFound)
	}

	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !info.IsDir() && strings.EqualFold(filepath.Ext(path), ".txt") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(files)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		f, err := cache.ParseFile(path)
		if err != nil {
			opts.errorf("%v", err)
			continue
		}
		stats.Scripts++

		pairs := make([]script.Pair, 0, len(f.Entries))
		for _, e := range f.Entries {
			pairs = append(pairs, script.Pair{Source: e.Source, Target: e.Target})
		}
		n, err := sinks.Official.Append(pairs)
		if err != nil {
			return stats, err
		}
		stats.Lines += n

		if sinks.SubtitleDir == "" || len(f.Subtitles) == 0 {
			continue
		}
		var cues []script.Cue
		for _, raw := range f.Subtitles {
			c, err := script.ParseCue(raw)
			if err != nil {
				opts.errorf("%s: %v", filepath.Base(path), err)
				stats.Anomalies++
				continue
			}
			cues = append(cues, c)
		}
		if err := cache.WriteSubtitleFile(sinks.SubtitleDir, ScriptName(path), cues); err != nil {
			return stats, err
		}
	}
	opts.logf("Read %d translated scripts from %s", stats.Scripts, dir)
	return stats, nil
}
