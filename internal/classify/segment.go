package classify

import (
	"strings"

	"github.com/JaimeStill/noshow/internal/rules"
	"github.com/JaimeStill/noshow/pkg/canon"
)

// Segments is a narrative split into its cause, reason and filled mask.
// Cause and Reason carry the authored rule text, not the narrative's spelling.
type Segments struct {
	Cause  string `json:"cause"`
	Reason string `json:"reason"`
	Mask   string `json:"mask"`
}

// Found reports whether a known reason phrase was located.
func (s Segments) Found() bool {
	return s.Reason != ""
}

// Segment locates the first known reason phrase, in registry order, among
// the rules under cause. The mask is the text following that phrase. When
// no phrase is found the whole trimmed narrative is returned as the mask.
func Segment(narrative string, reg *rules.Registry, cause string) Segments {
	folded := canon.Fold(narrative)

	for e := range reg.Under(cause) {
		_, end, ok := folded.Index(e.Key.Reason)
		if !ok {
			continue
		}
		return Segments{
			Cause:  e.Cause,
			Reason: e.Reason,
			Mask:   trimMask(narrative[end:]),
		}
	}

	return Segments{Mask: strings.TrimSpace(narrative)}
}

func trimMask(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == '.' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}
