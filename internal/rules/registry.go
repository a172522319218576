package rules

import (
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/JaimeStill/noshow/pkg/canon"
)

// Registry is an immutable set of compiled rules keyed by canonical
// (cause, reason). Iteration follows build order: base rules first, then
// extra rules that introduced new keys. An extra rule overriding a base key
// takes over the base rule's position.
type Registry struct {
	entries []*CompiledRule
	index   map[Key]int
}

// Build merges extra into base by canonical key (extra wins) and compiles
// every entry. It fails only when a rule is missing a required field.
func Build(base, extra []Rule) (*Registry, error) {
	reg := &Registry{
		entries: make([]*CompiledRule, 0, len(base)+len(extra)),
		index:   make(map[Key]int, len(base)+len(extra)),
	}

	if err := reg.add("base", base); err != nil {
		return nil, err
	}
	if err := reg.add("extra", extra); err != nil {
		return nil, err
	}

	return reg, nil
}

func (r *Registry) add(source string, rules []Rule) error {
	for i, rule := range rules {
		if field := rule.missing(); field != "" {
			return fmt.Errorf("%s rule %d: %w: missing %s", source, i+1, ErrInvalidRule, field)
		}

		compiled := &CompiledRule{
			Rule:    rule,
			Key:     rule.Key(),
			Matcher: Compile(rule.Template),
		}

		if pos, ok := r.index[compiled.Key]; ok {
			r.entries[pos] = compiled
			continue
		}

		r.index[compiled.Key] = len(r.entries)
		r.entries = append(r.entries, compiled)
	}
	return nil
}

// Lookup returns the compiled rule for the canonical (cause, reason) key.
func (r *Registry) Lookup(cause, reason string) (*CompiledRule, bool) {
	if r == nil {
		return nil, false
	}
	pos, ok := r.index[KeyOf(cause, reason)]
	if !ok {
		return nil, false
	}
	return r.entries[pos], true
}

// Len returns the number of compiled rules.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// All yields every compiled rule in registry order.
func (r *Registry) All() iter.Seq[*CompiledRule] {
	return func(yield func(*CompiledRule) bool) {
		if r == nil {
			return
		}
		for _, e := range r.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Under yields the compiled rules whose canonical cause equals cause.
func (r *Registry) Under(cause string) iter.Seq[*CompiledRule] {
	key := canon.String(cause)
	return func(yield func(*CompiledRule) bool) {
		for e := range r.All() {
			if e.Key.Cause != key {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Rules returns the source rules in registry order.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, 0, r.Len())
	for e := range r.All() {
		out = append(out, e.Rule)
	}
	return out
}

// Merge parses a quick-rule block and returns a new Registry holding the
// receiver's rules plus the parsed ones. The receiver is left untouched.
// Lines that fail validation are reported and skipped.
func (r *Registry) Merge(block string) (*Registry, []Rule, []LineError) {
	added, errs := ParseQuick(block)
	if len(added) == 0 {
		return r, added, errs
	}

	next, err := Build(r.Rules(), added)
	if err != nil {
		return r, nil, append(errs, LineError{Reason: err.Error()})
	}
	return next, added, errs
}

// Active holds the registry currently used for classification. Rebuilds
// produce a new Registry that is swapped in atomically.
type Active struct {
	current atomic.Pointer[Registry]
}

// NewActive creates an Active holding reg.
func NewActive(reg *Registry) *Active {
	a := &Active{}
	a.current.Store(reg)
	return a
}

// Load returns the current registry.
func (a *Active) Load() *Registry {
	return a.current.Load()
}

// Swap installs reg and returns the registry it replaced.
func (a *Active) Swap(reg *Registry) *Registry {
	return a.current.Swap(reg)
}
