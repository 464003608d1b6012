// Package cache holds the layered translation cache: manual, official and
// machine translations indexed by source text.
//
// Every tier is backed by a tab-separated text file. Tiers are loaded once
// at startup; afterwards the machine tier and the error log only grow by
// appending, so an interrupted run never loses finished work.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/sugoikit/textnorm"
)

// Tier identifies where a translation came from.
type Tier int

const (
	TierNone Tier = iota
	TierManual
	TierOfficial
	TierMachine
	// TierNew marks a machine translation produced during the current run.
	TierNew
)

func (t Tier) String() string {
	switch t {
	case TierManual:
		return "manual"
	case TierOfficial:
		return "official"
	case TierMachine:
		return "machine"
	case TierNew:
		return "new"
	default:
		return "none"
	}
}

// Record is everything known about one source line.
type Record struct {
	Source   string
	Manual   string
	Official string
	Machine  string

	HasRepeat bool
	HasError  bool

	// FilePath is the script the line was first seen in.
	FilePath string

	prepared *textnorm.Prepared
}

// Prepared returns the translator-ready form of Source, computed once.
func (r *Record) Prepared() textnorm.Prepared {
	if r.prepared == nil {
		p := textnorm.Prepare(r.Source)
		r.prepared = &p
	}
	return *r.prepared
}

func (r *Record) field(t Tier) *string {
	switch t {
	case TierManual:
		return &r.Manual
	case TierOfficial:
		return &r.Official
	case TierMachine, TierNew:
		return &r.Machine
	}
	return nil
}

// Resolve picks the best translation for rec: manual, then official (unless
// safe is set), then machine.
func Resolve(rec *Record, safe bool) (string, Tier) {
	switch {
	case rec.Manual != "":
		return rec.Manual, TierManual
	case rec.Official != "" && !safe:
		return rec.Official, TierOfficial
	case rec.Machine != "":
		return rec.Machine, TierMachine
	}
	return "", TierNone
}

// Options configures a Cache.
type Options struct {
	// MachinePath receives new machine translations (empty = not persisted).
	MachinePath string
	// ErrorPath receives faulty translations and malformed cache lines.
	ErrorPath string

	OnLog   func(format string, args ...any)
	OnError func(format string, args ...any)
}

// Paths lists the tier files read by LoadAll.
type Paths struct {
	Manual    string
	CustomDir string
	Official  string
	Machine   string
}

// Cache is the in-memory index of translation records. It is not safe for
// concurrent use.
type Cache struct {
	opts      Options
	records   map[string]*Record
	counts    map[Tier]int
	Subtitles *Subtitles

	// logged mirrors the error log, read on first use.
	logged *strings.Builder
}

// New returns an empty cache.
func New(opts Options) *Cache {
	return &Cache{
		opts:      opts,
		records:   make(map[string]*Record),
		counts:    make(map[Tier]int),
		Subtitles: NewSubtitles(),
	}
}

func (c *Cache) logf(format string, args ...any) {
	if c.opts.OnLog != nil {
		c.opts.OnLog(format, args...)
	}
}

func (c *Cache) errorf(format string, args ...any) {
	if c.opts.OnError != nil {
		c.opts.OnError(format, args...)
	}
}

// LoadAll loads every tier in precedence order: the manual file, custom
// manual files sorted by name, the official file, then the machine file.
func (c *Cache) LoadAll(p Paths) error {
	manual := []string{p.Manual}
	if p.CustomDir != "" {
		custom, err := filepath.Glob(filepath.Join(p.CustomDir, "*.txt"))
		if err != nil {
			return fmt.Errorf("listing %s: %w", p.CustomDir, err)
		}
		sort.Strings(custom)
		manual = append(manual, custom...)
	}

	type step struct {
		tier   Tier
		path   string
		script string
	}
	steps := []step{{tier: TierManual, path: p.Manual}}
	for _, m := range manual[1:] {
		steps = append(steps, step{TierManual, m, strings.TrimSuffix(filepath.Base(m), ".txt")})
	}
	steps = append(steps, step{tier: TierOfficial, path: p.Official}, step{tier: TierMachine, path: p.Machine})

	for _, s := range steps {
		if s.path == "" {
			continue
		}
		n, err := c.load(s.tier, s.path, s.script)
		if err != nil {
			return err
		}
		c.logf("Loaded %d %s lines from %s", n, s.tier, filepath.Base(s.path))
	}
	return nil
}

// Load reads one cache file into tier. A missing file loads nothing.
// Malformed lines are reported and copied to the error log once; a block
// already in the log is not written again, and a failed write is only
// reported. Subtitle lines are skipped: a tier file belongs to no script.
func (c *Cache) Load(tier Tier, path string) (int, error) {
	return c.load(tier, path, "")
}

// load is Load for a file belonging to scriptName. Subtitle lines of a
// per-script file, such as Custom/<script>.txt, are kept in Subtitles under
// that name.
func (c *Cache) load(tier Tier, path, scriptName string) (int, error) {
	f, err := ParseFile(path)
	if err != nil {
		return 0, err
	}

	for _, raw := range f.Malformed {
		c.errorf("%s: malformed line %q", filepath.Base(path), raw)
		if err := c.persistMalformed(path, raw); err != nil {
			c.errorf("%v", err)
		}
	}

	if scriptName == "" && len(f.Subtitles) > 0 {
		c.logf("%s: skipped %d subtitle lines", filepath.Base(path), len(f.Subtitles))
	} else {
		for _, raw := range f.Subtitles {
			if err := c.Subtitles.AddLine(scriptName, raw); err != nil {
				c.errorf("%s: %v", filepath.Base(path), err)
			}
		}
	}

	return c.Merge(tier, f.Entries), nil
}

// Merge fills tier on the records for entries. A tier value already present
// is never overwritten. It returns the number of values filled.
func (c *Cache) Merge(tier Tier, entries []Entry) int {
	n := 0
	for _, e := range entries {
		if e.Source == "" || e.Target == "" {
			continue
		}
		rec := c.records[e.Source]
		if rec == nil {
			rec = &Record{Source: e.Source}
			c.records[e.Source] = rec
		}
		f := rec.field(tier)
		if f == nil || *f != "" {
			continue
		}
		*f = e.Target
		n++
	}
	c.counts[tier] += n
	return n
}

// Get returns the record for source, if any.
func (c *Cache) Get(source string) (*Record, bool) {
	rec, ok := c.records[strings.TrimSpace(source)]
	return rec, ok
}

// Entry returns the record for source, creating it on first sight. filePath
// is remembered as the record's origin.
func (c *Cache) Entry(filePath, source string) *Record {
	source = strings.TrimSpace(source)
	rec := c.records[source]
	if rec == nil {
		rec = &Record{Source: source}
		c.records[source] = rec
	}
	if rec.FilePath == "" {
		rec.FilePath = filePath
	}
	return rec
}

// Len returns the number of distinct source lines.
func (c *Cache) Len() int { return len(c.records) }

// Counts returns the number of values loaded or merged per tier.
func (c *Cache) Counts() map[Tier]int {
	out := make(map[Tier]int, len(c.counts))
	for t, n := range c.counts {
		out[t] = n
	}
	return out
}

// PersistMachine appends rec's machine translation to the machine file.
func (c *Cache) PersistMachine(rec *Record) error {
	if c.opts.MachinePath == "" || rec.Source == "" || rec.Machine == "" {
		return nil
	}
	return appendFile(c.opts.MachinePath, FormatLine(rec.Source, rec.Machine))
}

// PersistError appends a block describing a rejected line to the error log:
//
//	##<file path>
//	<source>
//	<partial translation>
func (c *Cache) PersistError(rec *Record, partial string) error {
	if c.opts.ErrorPath == "" {
		return nil
	}
	return appendFile(c.opts.ErrorPath, errorBlock(rec.FilePath, rec.Source, partial))
}

func errorBlock(filePath, source, partial string) string {
	return fmt.Sprintf("##%s\n%s\n%s\n\n", filePath, source, partial)
}

// persistMalformed copies a malformed cache line to the error log unless an
// earlier load already did.
func (c *Cache) persistMalformed(path, raw string) error {
	if c.opts.ErrorPath == "" {
		return nil
	}
	if c.logged == nil {
		data, err := os.ReadFile(c.opts.ErrorPath)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("reading %s: %w", c.opts.ErrorPath, err)
		}
		c.logged = new(strings.Builder)
		c.logged.Write(data)
	}
	block := errorBlock(path, raw, "")
	if strings.Contains(c.logged.String(), block) {
		return nil
	}
	if err := appendFile(c.opts.ErrorPath, block); err != nil {
		return err
	}
	c.logged.WriteString(block)
	return nil
}
