package rules

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/JaimeStill/noshow/pkg/canon"
)

// Placeholder is the template marker character. A maximal run of it stands
// for one variable-length value filled in by the technician.
const Placeholder = '0'

const (
	connector = `[\s.,;:]*(.+?)[\s.,;:]*`
	trailing  = `[\s.,;:]*$`
	dashClass = `\s*[-` + canon.Dashes + `]\s*`
)

var placeholderRun = regexp.MustCompile(string(Placeholder) + `+`)

// compilePattern is swapped in tests to exercise the literal fallback.
var compilePattern = regexp.Compile

// Matcher is a compiled template. It accepts any non-empty content at
// placeholder positions and tolerates spacing, comma, dash and period
// variation in the fixed text.
type Matcher struct {
	re       *regexp.Regexp
	literal  string
	template string
}

// Compile turns a raw template into a Matcher. It never fails: when the
// generated pattern does not compile, the Matcher falls back to requiring
// the whitespace-collapsed template verbatim, compared case-insensitively.
func Compile(template string) *Matcher {
	t := canon.Space(norm.NFC.String(template))
	m := &Matcher{template: template, literal: t}

	re, err := compilePattern(Pattern(t))
	if err != nil {
		return m
	}
	m.re = re
	return m
}

// Pattern returns the regular expression source generated for template.
func Pattern(template string) string {
	t := canon.Space(norm.NFC.String(template))
	fixed := placeholderRun.Split(t, -1)

	parts := make([]string, len(fixed))
	for i, seg := range fixed {
		parts[i] = loosen(seg, i > 0, i < len(fixed)-1)
	}

	return `(?is)^\s*` + strings.Join(parts, connector) + trailing
}

// Match reports whether the whole mask conforms to the template.
func (m *Matcher) Match(mask string) bool {
	mask = norm.NFC.String(mask)
	if m.re == nil {
		return strings.EqualFold(canon.Space(mask), m.literal)
	}
	return m.re.MatchString(mask)
}

// Captures returns the content matched at each placeholder, or nil when the
// mask does not match.
func (m *Matcher) Captures(mask string) []string {
	if m.re == nil {
		return nil
	}
	sub := m.re.FindStringSubmatch(norm.NFC.String(mask))
	if sub == nil {
		return nil
	}
	return sub[1:]
}

// Fallback reports whether the Matcher degraded to literal comparison.
func (m *Matcher) Fallback() bool {
	return m.re == nil
}

// Template returns the raw template the Matcher was compiled from.
func (m *Matcher) Template() string {
	return m.template
}

// Placeholders returns the number of placeholder runs in the template.
func (m *Matcher) Placeholders() int {
	return len(placeholderRun.FindAllStringIndex(m.literal, -1))
}

type tokenKind int

const (
	tokLiteral tokenKind = iota
	tokSpace
	tokComma
	tokDash
	tokPeriod
)

type token struct {
	kind tokenKind
	r    rune
}

func (t token) punct() bool {
	return t.kind == tokComma || t.kind == tokDash || t.kind == tokPeriod
}

// loosen escapes one fixed segment and widens its separators. Whitespace
// touching a placeholder is dropped because the connector absorbs it.
func loosen(seg string, afterPlaceholder, beforePlaceholder bool) string {
	toks := tokenize(seg)

	if afterPlaceholder {
		for len(toks) > 0 && toks[0].kind == tokSpace {
			toks = toks[1:]
		}
	}
	if beforePlaceholder {
		for len(toks) > 0 && toks[len(toks)-1].kind == tokSpace {
			toks = toks[:len(toks)-1]
		}
	}

	var b strings.Builder
	for i, t := range toks {
		switch t.kind {
		case tokSpace:
			if (i > 0 && toks[i-1].punct()) || (i+1 < len(toks) && toks[i+1].punct()) {
				b.WriteString(`\s*`)
			} else {
				b.WriteString(`\s+`)
			}
		case tokComma:
			b.WriteString(`[\s,]*`)
		case tokDash:
			b.WriteString(dashClass)
		case tokPeriod:
			b.WriteString(`[.\s]*`)
		default:
			b.WriteString(literal(t.r))
		}
	}
	return b.String()
}

func tokenize(seg string) []token {
	toks := make([]token, 0, len(seg))
	for _, r := range seg {
		switch {
		case r == ' ':
			toks = append(toks, token{kind: tokSpace})
		case r == ',':
			toks = append(toks, token{kind: tokComma})
		case r == '.':
			toks = append(toks, token{kind: tokPeriod})
		case canon.IsDash(r):
			toks = append(toks, token{kind: tokDash})
		default:
			toks = append(toks, token{kind: tokLiteral, r: r})
		}
	}
	return toks
}

// literal quotes r and, for accented letters, also accepts the bare letter.
func literal(r rune) string {
	q := regexp.QuoteMeta(string(r))
	if r < utf8.RuneSelf {
		return q
	}
	base := canon.String(string(r))
	if len(base) != 1 || base[0] >= utf8.RuneSelf || base == strings.ToLower(string(r)) {
		return q
	}
	return `(?:` + q + `|` + regexp.QuoteMeta(base) + `)`
}
