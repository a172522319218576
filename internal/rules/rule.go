// Package rules holds the catalog of expected closure-note phrasings. A rule
// ties a (cause, reason) pair to a template whose placeholder runs are filled
// by the technician; the registry compiles every template into a tolerant
// matcher and indexes it by the canonical (cause, reason) key.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JaimeStill/noshow/pkg/canon"
)

// DefaultCause is the single cause value used by closure-note narratives.
const DefaultCause = "Agendamento cancelado."

// ErrInvalidRule indicates a rule is missing its cause, reason, or template.
var ErrInvalidRule = errors.New("invalid rule")

// Rule is an authored catalog entry. Template uses runs of Placeholder for
// variable content.
type Rule struct {
	Cause    string `json:"cause" toml:"cause"`
	Reason   string `json:"reason" toml:"reason"`
	Template string `json:"template" toml:"template"`
}

// Key returns the canonical lookup key for the rule.
func (r Rule) Key() Key {
	return KeyOf(r.Cause, r.Reason)
}

// Validate reports the first missing field as an ErrInvalidRule.
func (r Rule) Validate() error {
	if field := r.missing(); field != "" {
		return fmt.Errorf("%w: missing %s", ErrInvalidRule, field)
	}
	return nil
}

func (r Rule) missing() string {
	switch {
	case strings.TrimSpace(r.Cause) == "":
		return "cause"
	case strings.TrimSpace(r.Reason) == "":
		return "reason"
	case strings.TrimSpace(r.Template) == "":
		return "template"
	}
	return ""
}

// Key is a canonicalized (cause, reason) pair.
type Key struct {
	Cause  string
	Reason string
}

// KeyOf canonicalizes cause and reason into a Key.
func KeyOf(cause, reason string) Key {
	return Key{
		Cause:  canon.String(cause),
		Reason: canon.String(reason),
	}
}

// CompiledRule is a Rule paired with its compiled Matcher. Compiled rules
// are replaced on rebuild, never mutated.
type CompiledRule struct {
	Rule
	Key     Key
	Matcher *Matcher
}
