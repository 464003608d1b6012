// Package script parses decompressed .ks scripts into dialogue, choice,
// NPC-name and subtitle records.
//
// Scripts are line oriented. A line starting with '@' is a directive; the
// directives this package understands are listed in the directive table
// below and each one has its own capture rule. Shipped translations sit next
// to the source text, separated by an <e> marker:
//
//	@talk name=ルナ<e>Luna
//	こんにちは<e>Hello
//	@hitret
package script

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Records
// ---------------------------------------------------------------------------

// Pair is a source line and the translation shipped with it, if any.
type Pair struct {
	Source string
	Target string
}

// Cue is one timed subtitle, in the shape i18nEx reads from
// "@VoiceSubtitle" lines.
type Cue struct {
	AddDisplayTime int    `json:"addDisplayTime"`
	DisplayTime    int    `json:"displayTime"`
	IsCasino       bool   `json:"isCasino"`
	Original       string `json:"original"`
	StartTime      int    `json:"startTime"`
	Translation    string `json:"translation"`
	Voice          string `json:"voice"`
}

// Record is everything captured from one script.
type Record struct {
	Name      string
	Dialogue  []Pair
	Choices   []Pair
	NPCNames  []Pair
	Subtitles []Cue
	// Anomalies describes structural problems met while parsing, such as
	// a block running into the end of the file.
	Anomalies []string
}

func (r *Record) anomaly(format string, args ...any) {
	r.Anomalies = append(r.Anomalies, fmt.Sprintf(format, args...))
}

// Pairs returns the dialogue and choice pairs, de-duplicated.
func (r *Record) Pairs() []Pair {
	all := make([]Pair, 0, len(r.Dialogue)+len(r.Choices))
	all = append(all, r.Dialogue...)
	all = append(all, r.Choices...)
	return DedupPairs(all)
}

// SourceLines returns the distinct source texts of dialogue and choices.
func (r *Record) SourceLines() []string {
	seen := make(map[string]bool)
	var lines []string
	for _, p := range append(append([]Pair{}, r.Dialogue...), r.Choices...) {
		s := strings.TrimSpace(p.Source)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		lines = append(lines, s)
	}
	return lines
}

// DedupPairs drops exact duplicates, keeping first occurrences in order.
func DedupPairs(pairs []Pair) []Pair {
	seen := make(map[Pair]bool, len(pairs))
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// ---------------------------------------------------------------------------
// Lines and the <e> split
// ---------------------------------------------------------------------------

// SplitLines splits script content into trimmed lines, dropping ';'
// comments.
func SplitLines(content string) []string {
	raw := strings.Split(content, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.HasPrefix(l, ";") {
			continue
		}
		lines = append(lines, strings.TrimSpace(l))
	}
	return lines
}

const translationMarker = "<e>"

// SplitTranslation splits text on its first <e> marker into the source text
// and the shipped translation. Without a marker the target is empty.
func SplitTranslation(text string) Pair {
	pos := indexFold(text, translationMarker)
	if pos <= 0 {
		return Pair{Source: strings.TrimSpace(text)}
	}

	target := text[pos+len(translationMarker):]
	target = strings.ReplaceAll(target, "…", "...")
	// Some shipped lines carry a doubled <E><E> marker.
	target = strings.ReplaceAll(target, "<E>", "")

	return Pair{
		Source: strings.TrimSpace(text[:pos]),
		Target: strings.TrimSpace(target),
	}
}

// ---------------------------------------------------------------------------
// Directives
// ---------------------------------------------------------------------------

// Directive identifies a script instruction the parser captures text from.
type Directive int

const (
	DirectiveNone         Directive = iota
	DirectiveTalk                   // @talk: dialogue with an optional speaker name
	DirectiveChoice                 // @ChoicesSet: choice box text
	DirectiveSubtitle               // @SubtitleDisplayForPlayVoice: inline voice subtitle
	DirectiveSubtitleFile           // @LoadSubtitleFile: timed subtitles from another script
)

func (d Directive) String() string {
	switch d {
	case DirectiveTalk:
		return "@talk"
	case DirectiveChoice:
		return "@ChoicesSet"
	case DirectiveSubtitle:
		return "@SubtitleDisplayForPlayVoice"
	case DirectiveSubtitleFile:
		return "@LoadSubtitleFile"
	default:
		return "none"
	}
}

// directiveTable maps line prefixes to directives. Prefixes are matched
// without regard to case, first row wins.
var directiveTable = []struct {
	prefix    string
	directive Directive
}{
	{"@LoadSubtitleFile", DirectiveSubtitleFile},
	{"@SubtitleDisplayForPlayVoice", DirectiveSubtitle},
	{"@ChoicesSet", DirectiveChoice},
	{"@talk", DirectiveTalk},
}

// AllDirectives is every directive the parser understands.
var AllDirectives = []Directive{DirectiveTalk, DirectiveChoice, DirectiveSubtitle, DirectiveSubtitleFile}

// TextDirectives is the subset carrying translatable text without
// subtitle timing.
var TextDirectives = []Directive{DirectiveTalk, DirectiveChoice}

// DirectiveOf returns the directive a line starts with.
func DirectiveOf(line string) Directive {
	for _, row := range directiveTable {
		if hasPrefixFold(line, row.prefix) {
			return row.directive
		}
	}
	return DirectiveNone
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Resolver returns the lines of another script in the same archive,
// looked up by name without extension.
type Resolver func(name string) ([]string, error)

// Options controls Parse.
type Options struct {
	// Directives restricts the captured directives (nil = AllDirectives).
	Directives []Directive
	// Resolver loads scripts referenced by @LoadSubtitleFile. Without one
	// those directives are recorded as anomalies.
	Resolver Resolver
}

type parser struct {
	lines []string
	rec   *Record
	opts  Options
}

type handler func(p *parser, i int)

var handlers = map[Directive]handler{
	DirectiveTalk:         (*parser).talk,
	DirectiveChoice:       (*parser).choice,
	DirectiveSubtitle:     (*parser).subtitle,
	DirectiveSubtitleFile: (*parser).subtitleFile,
}

// Parse walks the lines of one script and captures every enabled directive.
func Parse(name string, lines []string, opts Options) *Record {
	enabled := opts.Directives
	if enabled == nil {
		enabled = AllDirectives
	}
	on := make(map[Directive]bool, len(enabled))
	for _, d := range enabled {
		on[d] = true
	}

	p := &parser{lines: lines, rec: &Record{Name: name}, opts: opts}
	for i, line := range lines {
		d := DirectiveOf(line)
		if d == DirectiveNone || !on[d] {
			continue
		}
		handlers[d](p, i)
	}
	return p.rec
}

// ParseContent splits content into lines and parses it.
func ParseContent(name, content string, opts Options) *Record {
	return Parse(name, SplitLines(content), opts)
}

var (
	textAttrRe = regexp.MustCompile(`(?i)text="(.*?)"`)
	timingRe   = regexp.MustCompile(`(?i)^@talk\s*\[\s*(\d+)\s*-\s*(\d+)\s*\]`)
)

func (p *parser) talk(i int) {
	line := p.lines[i]

	if pos := indexFold(line, "name="); pos > 0 {
		name := line[pos+len("name="):]
		// name=[HF] refers to a player-defined name, nothing to capture.
		if !strings.HasPrefix(strings.TrimLeft(name, `"`), "[") {
			if rp := indexFold(name, "real="); rp >= 0 {
				name = name[:rp]
			}
			name = strings.TrimSpace(strings.ReplaceAll(name, `"`, ""))
			if npc := SplitTranslation(name); npc.Source != "" {
				p.rec.NPCNames = append(p.rec.NPCNames, npc)
			}
		}
	}

	body, _, closed := collect(p.lines, i+1, func(l string) bool {
		return strings.HasPrefix(l, "@")
	})
	if !closed {
		p.rec.anomaly("line %d: @talk block reaches end of file", i+1)
	}

	if pair := SplitTranslation(body); pair.Source != "" {
		p.rec.Dialogue = append(p.rec.Dialogue, pair)
	}
}

func (p *parser) choice(i int) {
	m := textAttrRe.FindStringSubmatch(p.lines[i])
	if m == nil {
		return
	}
	if pair := SplitTranslation(m[1]); pair.Source != "" {
		p.rec.Choices = append(p.rec.Choices, pair)
	}
}

func (p *parser) subtitle(i int) {
	line := p.lines[i]
	cue := Cue{DisplayTime: -1}

	if m := textAttrRe.FindStringSubmatch(line); m != nil {
		pair := SplitTranslation(m[1])
		cue.Original = pair.Source
		cue.Translation = pair.Target
		cue.IsCasino = indexFold(line, "mode_c") >= 0
	}

	j := find(p.lines, i, func(l string) bool {
		return strings.Contains(l, "@PlayVoice")
	})
	if j < 0 {
		p.rec.anomaly("line %d: no @PlayVoice after subtitle", i+1)
	} else {
		cue.Voice = voiceOf(p.lines[j])
	}

	p.addCue(cue)
}

func (p *parser) subtitleFile(i int) {
	line := p.lines[i]

	pos := indexFold(line, "file=")
	if pos <= 0 {
		return
	}
	fields := strings.Fields(line[pos+len("file="):])
	if len(fields) == 0 {
		p.rec.anomaly("line %d: empty subtitle file name", i+1)
		return
	}
	fileName := strings.Trim(fields[0], `"`)

	if p.opts.Resolver == nil {
		p.rec.anomaly("line %d: cannot load subtitle file %q", i+1, fileName)
		return
	}
	sub, err := p.opts.Resolver(fileName)
	if err != nil {
		p.rec.anomaly("line %d: subtitle file %q: %v", i+1, fileName, err)
		return
	}

	// The first voice played is the starting point of every cue.
	voice := ""
	if j := find(p.lines, i, func(l string) bool { return hasPrefixFold(l, "@PlayVoice") }); j >= 0 {
		voice = voiceOf(p.lines[j])
	} else {
		p.rec.anomaly("line %d: no @PlayVoice after subtitle file %q", i+1, fileName)
	}

	for j := 0; j < len(sub); j++ {
		if !hasPrefixFold(sub[j], "@talk") {
			continue
		}
		m := timingRe.FindStringSubmatch(sub[j])
		if m == nil {
			p.rec.anomaly("%s line %d: @talk without timing", fileName, j+1)
			continue
		}
		start, err1 := strconv.Atoi(m[1])
		end, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			p.rec.anomaly("%s line %d: bad timing %s-%s", fileName, j+1, m[1], m[2])
			continue
		}

		body, next, closed := collect(sub, j+1, func(l string) bool {
			return hasPrefixFold(l, "@hitret")
		})
		if !closed {
			p.rec.anomaly("%s line %d: subtitle reaches end of file", fileName, j+1)
		}

		pair := SplitTranslation(body)
		p.addCue(Cue{
			Original:    pair.Source,
			Translation: pair.Target,
			StartTime:   start,
			DisplayTime: end - start,
			Voice:       voice,
		})
		j = next
	}
}

func (p *parser) addCue(c Cue) {
	if c.Original == "" && c.Translation == "" {
		return
	}
	p.rec.Subtitles = append(p.rec.Subtitles, c)
}

// collect concatenates lines from start until stop matches. It returns the
// text, the index of the stopping line (len(lines) at end of file) and
// whether a stopping line was found.
func collect(lines []string, start int, stop func(string) bool) (string, int, bool) {
	var sb strings.Builder
	for i := start; i < len(lines); i++ {
		if stop(lines[i]) {
			return sb.String(), i, true
		}
		sb.WriteString(lines[i])
	}
	return sb.String(), len(lines), false
}

// find returns the index of the first line at or after start matching
// match, or -1.
func find(lines []string, start int, match func(string) bool) int {
	for i := start; i < len(lines); i++ {
		if match(lines[i]) {
			return i
		}
	}
	return -1
}

func voiceOf(line string) string {
	pos := indexFold(line, "voice=")
	if pos <= 0 {
		return ""
	}
	v := strings.ReplaceAll(line[pos+len("voice="):], "wait", "")
	return strings.TrimSpace(v)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// indexFold is a case-insensitive strings.Index for ASCII needles.
func indexFold(s, needle string) int {
	for i := 0; i+len(needle) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

// ---------------------------------------------------------------------------
// Subtitle lines
// ---------------------------------------------------------------------------

// CueMarker starts a subtitle line in cache and export files.
const CueMarker = "@VoiceSubtitle"

// FormatCue renders a cue as an "@VoiceSubtitle{json}" line.
func FormatCue(c Cue) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding subtitle: %w", err)
	}
	return CueMarker + string(data), nil
}

// ParseCue decodes an "@VoiceSubtitle{json}" line.
func ParseCue(line string) (Cue, error) {
	var c Cue
	payload, ok := strings.CutPrefix(strings.TrimSpace(line), CueMarker)
	if !ok {
		return c, fmt.Errorf("not a subtitle line: %q", line)
	}
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return c, fmt.Errorf("decoding subtitle: %w", err)
	}
	return c, nil
}

// SubtitleLines formats every cue of the record.
func (r *Record) SubtitleLines() ([]string, error) {
	lines := make([]string, 0, len(r.Subtitles))
	for _, c := range r.Subtitles {
		l, err := FormatCue(c)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, nil
}
