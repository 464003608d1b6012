// Package translate resolves script lines to English.
//
// Every line is looked up in the translation cache first. Lines no cache
// tier covers are sent to a machine translator when one is available; the
// reply has its tag placeholders restored and is checked for the typical
// failure modes of the translator before it is accepted and cached.
package translate

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/minios-linux/sugoikit/cache"
	"github.com/minios-linux/sugoikit/script"
	"github.com/minios-linux/sugoikit/textnorm"
)

// Script is one unit of translation: a script name and its source lines.
type Script struct {
	Name  string
	Lines []string
}

// Sink receives the resolved lines of every script.
type Sink interface {
	Write(name string, pairs []script.Pair) error
}

// Result describes what happened to one line.
type Result struct {
	Script string
	Source string
	Target string
	// Tier supplied Target. TierNew marks a translation made in this run.
	Tier cache.Tier
	// Faulty lines were rejected and written to the error log.
	Faulty bool
	// Skipped lines had no translation and none could be made.
	Skipped bool
}

// Options controls a Pipeline.
type Options struct {
	// Translator produces machine translations (nil = cache only).
	Translator Translator
	// Forced machine-translates lines that have a manual or official
	// translation but no machine one.
	Forced bool
	// Safe ignores the official tier when resolving.
	Safe bool
	// Gate pauses the run between scripts (nil = never paused).
	Gate *Gate
	// Sink receives each script's resolved lines (nil = discarded).
	Sink Sink

	// OnLine is called for every processed line.
	OnLine func(Result)
	// OnScript is called before a script is processed.
	OnScript func(name string, done, total int)
	// OnLog emits log messages during translation.
	OnLog func(format string, args ...any)
	// OnError emits error messages during translation.
	OnError func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) line(r Result) {
	if o.OnLine != nil {
		o.OnLine(r)
	}
}

// Stats summarizes a run.
type Stats struct {
	Scripts    int
	Lines      int
	Cached     int
	Translated int
	Faulty     int
	Skipped    int
	Errors     int
	// FailedScripts had at least one faulty line.
	FailedScripts []string
}

// Pipeline translates scripts against a cache.
type Pipeline struct {
	cache *cache.Cache
	opts  Options
}

// NewPipeline returns a pipeline over c.
func NewPipeline(c *cache.Cache, opts Options) *Pipeline {
	return &Pipeline{cache: c, opts: opts}
}

// Run processes scripts in order. Scripts with a name already processed are
// skipped. It stops early only when ctx is done or a cache file cannot be
// written.
func (p *Pipeline) Run(ctx context.Context, scripts []Script) (Stats, error) {
	var stats Stats
	done := make(map[string]bool, len(scripts))

	for i, s := range scripts {
		if p.opts.Gate != nil {
			if err := p.opts.Gate.Wait(ctx); err != nil {
				return stats, err
			}
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if done[s.Name] {
			continue
		}
		done[s.Name] = true

		if p.opts.OnScript != nil {
			p.opts.OnScript(s.Name, i+1, len(scripts))
		}

		pairs, failed, err := p.runScript(ctx, s, &stats)
		if err != nil {
			return stats, err
		}
		stats.Scripts++
		if failed {
			stats.FailedScripts = append(stats.FailedScripts, s.Name)
		}

		if p.opts.Sink != nil && len(pairs) > 0 {
			if err := p.opts.Sink.Write(s.Name, pairs); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

func (p *Pipeline) runScript(ctx context.Context, s Script, stats *Stats) (pairs []script.Pair, failed bool, err error) {
	for _, line := range distinctLines(s.Lines) {
		if err := ctx.Err(); err != nil {
			return pairs, failed, err
		}
		stats.Lines++

		rec := p.cache.Entry(s.Name, line)
		target, tier := cache.Resolve(rec, p.opts.Safe)

		needsMachine := tier == cache.TierNone || (p.opts.Forced && rec.Machine == "")
		if p.opts.Translator != nil && needsMachine {
			res, err := p.translate(ctx, s.Name, rec)
			switch {
			case err != nil:
				return pairs, failed, err
			case res.Faulty:
				failed = true
				stats.Faulty++
				p.opts.line(res)
				continue
			case res.Tier != cache.TierNone:
				target, tier = res.Target, res.Tier
				stats.Translated++
			case tier == cache.TierNone:
				// The translator call failed and nothing is cached.
				stats.Errors++
				stats.Skipped++
				p.opts.line(Result{Script: s.Name, Source: rec.Source, Skipped: true})
				continue
			default:
				stats.Errors++
			}
		} else if tier == cache.TierNone {
			stats.Skipped++
			p.opts.line(Result{Script: s.Name, Source: rec.Source, Skipped: true})
			continue
		}

		if tier != cache.TierNew {
			stats.Cached++
		}
		p.opts.line(Result{Script: s.Name, Source: rec.Source, Target: target, Tier: tier})
		pairs = append(pairs, script.Pair{Source: rec.Source, Target: target})
	}
	return pairs, failed, nil
}

// translate machine-translates rec. A translator failure is logged and
// reported as a zero Result; only cache write failures and cancellation are
// returned as errors. The body of an error reply is screened like a
// translation, so a bad request lands in the error log.
func (p *Pipeline) translate(ctx context.Context, name string, rec *cache.Record) (Result, error) {
	prep := rec.Prepared()

	raw, err := p.opts.Translator.Translate(ctx, prep.Text)
	var statusErr *StatusError
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		if !errors.As(err, &statusErr) {
			p.opts.logError("%s: translating %q: %v", name, rec.Source, err)
			return Result{}, nil
		}
		raw = statusErr.Body
	}

	restored, missing := textnorm.Restore(raw, prep.Tags)
	if missing > 0 && statusErr == nil {
		p.opts.log("%s: %d of %d tags lost in %q", name, missing, len(prep.Tags), restored)
	}

	text, q := textnorm.Classify(restored)
	if statusErr != nil && statusErr.Code == http.StatusBadRequest {
		q.HasError = true
	}
	rec.HasRepeat = q.HasRepeat
	rec.HasError = q.HasError

	if q.Faulty() {
		if err := p.cache.PersistError(rec, text); err != nil {
			return Result{}, err
		}
		return Result{Script: name, Source: rec.Source, Target: text, Faulty: true}, nil
	}
	if statusErr != nil {
		p.opts.logError("%s: translating %q: %v", name, rec.Source, statusErr)
		return Result{}, nil
	}

	rec.Machine = text
	if err := p.cache.PersistMachine(rec); err != nil {
		return Result{}, err
	}

	target, tier := cache.Resolve(rec, p.opts.Safe)
	if tier == cache.TierMachine {
		tier = cache.TierNew
	}
	return Result{Script: name, Source: rec.Source, Target: target, Tier: tier}, nil
}

// distinctLines trims lines and drops blanks and repeats.
func distinctLines(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
