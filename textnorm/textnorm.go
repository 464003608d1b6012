// Package textnorm prepares script lines for the machine translator and
// repairs what comes back.
//
// Bracketed name tags such as [HF] or [HF2] confuse the translator, so
// Prepare swaps each of them for a placeholder word and remembers the tags in
// order. Restore puts them back into the translated text. Classify detects
// degenerate translator output (looping characters or words, server errors)
// so that it never reaches the caches.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Placeholder is the word substituted for every bracketed tag before
// translation.
const Placeholder = "MUKU"

// badRequestMarker is what the translator returns in place of a translation
// when it rejects the request.
const badRequestMarker = "400 Bad Request"

var (
	tagRe         = regexp.MustCompile(`\[.*?\]`)
	placeholderRe = regexp.MustCompile(`(?i)\b` + Placeholder + `\b`)
)

// ---------------------------------------------------------------------------
// Preparation
// ---------------------------------------------------------------------------

// Prepared is a source line in its translator-safe form.
type Prepared struct {
	// Source is the trimmed original text.
	Source string
	// Text is what gets sent to the translator.
	Text string
	// Tags are the bracketed tokens of Source in order of appearance.
	Tags []string
}

// HasTags reports whether any bracketed tag was masked.
func (p Prepared) HasTags() bool {
	return len(p.Tags) > 0
}

// Prepare masks bracketed tags with Placeholder, escapes double quotes for
// the translator's JSON body and drops the ♀ symbol, which breaks the
// translator's tokenizer.
func Prepare(source string) Prepared {
	p := Prepared{Source: strings.TrimSpace(source)}

	text := p.Source
	if tags := tagRe.FindAllString(text, -1); len(tags) > 0 {
		p.Tags = tags
		text = mask(text)
	}

	text = strings.ReplaceAll(text, `"`, `\"`)
	text = strings.ReplaceAll(text, "♀", "")
	p.Text = text

	return p
}

// mask replaces every tag in text with Placeholder. The placeholder is
// followed by one space unless the text ends there or a space follows
// already, so "[HF]さん" becomes "MUKU さん".
func mask(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range tagRe.FindAllStringIndex(text, -1) {
		b.WriteString(text[last:loc[0]])
		b.WriteString(Placeholder)
		if r, size := utf8.DecodeRuneInString(text[loc[1]:]); size > 0 && !unicode.IsSpace(r) {
			b.WriteByte(' ')
		}
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// ---------------------------------------------------------------------------
// Restoration
// ---------------------------------------------------------------------------

// Restore substitutes tags back into translated text, one placeholder per
// tag in capture order. It returns the repaired text and the number of tags
// that found no placeholder left to replace; those tags are dropped.
func Restore(translated string, tags []string) (string, int) {
	if len(tags) == 0 {
		return translated, 0
	}

	out := translated
	missing := 0
	for _, tag := range tags {
		loc := placeholderRe.FindStringIndex(out)
		if loc == nil {
			missing++
			continue
		}
		out = out[:loc[0]] + tag + out[loc[1]:]
	}

	// The translator reads the placeholder as a noun and adds an article.
	out = strings.ReplaceAll(out, "the [", "[")
	out = strings.ReplaceAll(out, "The [", "[")

	return out, missing
}

// ---------------------------------------------------------------------------
// Quality gate
// ---------------------------------------------------------------------------

// Quality flags a translation that must not be cached.
type Quality struct {
	// HasRepeat is set for looping output: one word character 16+ times in
	// a row, or one word repeated 6+ times joined by hyphens.
	HasRepeat bool
	// HasError is set when the translator answered with a bad request.
	HasError bool
}

// Faulty reports whether the translation should be withheld.
func (q Quality) Faulty() bool {
	return q.HasRepeat || q.HasError
}

const (
	maxCharRun = 16
	maxWordRun = 6
)

// Classify removes <unk> markers from text and checks the result.
func Classify(text string) (string, Quality) {
	text = strings.ReplaceAll(text, "<unk>", "")

	q := Quality{
		HasRepeat: hasCharRun(text, maxCharRun) || hasWordRun(text, maxWordRun),
		HasError:  strings.Contains(text, badRequestMarker),
	}
	return text, q
}

// isWordChar matches the Unicode-aware \w class.
func isWordChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// hasCharRun reports whether some word character occurs n or more times
// consecutively.
func hasCharRun(s string, n int) bool {
	var prev rune
	count := 0
	for _, r := range s {
		if isWordChar(r) && r == prev {
			count++
		} else {
			count = 1
		}
		if count >= n && isWordChar(r) {
			return true
		}
		prev = r
	}
	return false
}

// hasWordRun reports whether some hyphen-joined chain like "no-no-no" holds
// n or more consecutive copies of one word. As in a regex search, the first
// copy may end a longer token and the last may begin one, so
// "ano-no-no-no-no-no" counts. n must be at least 3.
func hasWordRun(s string, n int) bool {
	var (
		chain []string
		word  strings.Builder
	)

	flush := func() bool {
		if word.Len() > 0 {
			chain = append(chain, word.String())
			word.Reset()
		}
		found := repeatsIn(chain, n)
		chain = chain[:0]
		return found
	}

	for _, r := range s {
		switch {
		case isWordChar(r):
			word.WriteRune(r)
		case r == '-' && word.Len() > 0:
			chain = append(chain, word.String())
			word.Reset()
		default:
			if flush() {
				return true
			}
		}
	}
	return flush()
}

// repeatsIn reports whether chain holds n copies of a word starting at some
// token. Inner copies are whole tokens; the outer two may be a suffix and a
// prefix of theirs.
func repeatsIn(chain []string, n int) bool {
	for i := 0; i+n-1 < len(chain); i++ {
		w := chain[i+1]
		if !strings.HasSuffix(chain[i], w) || !strings.HasPrefix(chain[i+n-1], w) {
			continue
		}
		inner := true
		for _, c := range chain[i+2 : i+n-1] {
			if c != w {
				inner = false
				break
			}
		}
		if inner {
			return true
		}
	}
	return false
}
