package canon

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Folded is a folded copy of a source string that remembers where every
// folded byte came from. Searching the folded text and slicing the source
// with the mapped offsets stays correct even when folding changes byte
// lengths (precomposed vs. decomposed accents, multi-byte dashes).
type Folded struct {
	Text  string
	src   string
	start []int
	end   []int
}

// Fold folds s the way String does, except that trailing punctuation is kept.
// Whitespace runs collapse to one space and leading/trailing whitespace is dropped.
func Fold(s string) Folded {
	var b strings.Builder
	b.Grow(len(s))

	f := Folded{
		src:   s,
		start: make([]int, 0, len(s)),
		end:   make([]int, 0, len(s)),
	}

	spaceAt, spaceEnd := -1, -1

	for i, r := range s {
		w := utf8.RuneLen(r)
		if w < 0 {
			w = 1
		}

		if unicode.IsSpace(r) {
			if spaceAt < 0 {
				spaceAt = i
			}
			spaceEnd = i + w
			continue
		}

		out := foldRune(r)
		if out == "" {
			// combining mark or similar: attach it to the previous byte
			if n := len(f.end); n > 0 {
				f.end[n-1] = i + w
			}
			continue
		}

		if spaceAt >= 0 {
			if b.Len() > 0 {
				b.WriteByte(' ')
				f.start = append(f.start, spaceAt)
				f.end = append(f.end, spaceEnd)
			}
			spaceAt, spaceEnd = -1, -1
		}

		b.WriteString(out)
		for range len(out) {
			f.start = append(f.start, i)
			f.end = append(f.end, i+w)
		}
	}

	f.Text = b.String()
	return f
}

// Index locates the first occurrence of sub, which must already be folded,
// and returns its byte range in the source string.
func (f Folded) Index(sub string) (start, end int, ok bool) {
	if sub == "" {
		return 0, 0, false
	}
	j := strings.Index(f.Text, sub)
	if j < 0 {
		return 0, 0, false
	}
	return f.start[j], f.end[j+len(sub)-1], true
}

// Source returns the original string.
func (f Folded) Source() string {
	return f.src
}

func foldRune(r rune) string {
	if r < utf8.RuneSelf {
		return string(unicode.ToLower(r))
	}
	if IsDash(r) {
		return "-"
	}
	return fold(string(r))
}
