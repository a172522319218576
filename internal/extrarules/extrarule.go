// Package extrarules implements the persisted quick-add rule domain. Extra
// rules extend or override the embedded catalog; only active ones take part
// in the registry used for classification.
package extrarules

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/internal/classify"
	"github.com/JaimeStill/noshow/internal/rules"
)

// ExtraRule is an operator-authored rule stored alongside the base catalog.
type ExtraRule struct {
	ID        uuid.UUID `json:"id"`
	Cause     string    `json:"cause"`
	Reason    string    `json:"reason"`
	Template  string    `json:"template"`
	Active    bool      `json:"active"`
	CreatedBy *string   `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Rule returns the catalog form of e.
func (e ExtraRule) Rule() rules.Rule {
	return rules.Rule{Cause: e.Cause, Reason: e.Reason, Template: e.Template}
}

// CreateCommand carries the data needed to add an extra rule.
type CreateCommand struct {
	Cause     string  `json:"cause"`
	Reason    string  `json:"reason"`
	Template  string  `json:"template"`
	CreatedBy *string `json:"created_by"`
}

// Rule returns the catalog form of the command.
func (c CreateCommand) Rule() rules.Rule {
	return rules.Rule{Cause: c.Cause, Reason: c.Reason, Template: c.Template}
}

// UpdateCommand carries the replacement fields for an extra rule.
type UpdateCommand struct {
	Cause    string `json:"cause"`
	Reason   string `json:"reason"`
	Template string `json:"template"`
}

// Rule returns the catalog form of the command.
func (c UpdateCommand) Rule() rules.Rule {
	return rules.Rule{Cause: c.Cause, Reason: c.Reason, Template: c.Template}
}

// ImportCommand carries a quick-add text block.
type ImportCommand struct {
	Block     string  `json:"block"`
	CreatedBy *string `json:"created_by"`
}

// ImportResult reports the rules stored by an import and the lines rejected.
type ImportResult struct {
	Rules  []ExtraRule       `json:"rules"`
	Errors []rules.LineError `json:"errors"`
}

// CatalogEntry describes one compiled rule of the active registry.
type CatalogEntry struct {
	Cause        string `json:"cause"`
	Reason       string `json:"reason"`
	Template     string `json:"template"`
	Placeholders int    `json:"placeholders"`
	Pattern      string `json:"pattern"`
	Fallback     bool   `json:"fallback"`
}

// TestCommand is a single narrative to classify against the active registry.
type TestCommand struct {
	Narrative string `json:"narrative"`
	Trigger   string `json:"trigger"`
}

// TestResult is the classification of a TestCommand plus the values the
// mask supplied for each placeholder.
type TestResult struct {
	classify.Result
	Captures []string `json:"captures"`
}
