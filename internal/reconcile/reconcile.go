// Package reconcile derives the review verdict and completion status of a
// classified row from its first and second review passes. The result is
// never stored; callers evaluate it on every read so it always reflects the
// latest reviewer input.
package reconcile

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"github.com/JaimeStill/noshow/internal/classify"
)

// Verdict is the reconciled judgment of who was right, the app or the reviewer.
type Verdict string

const (
	VerdictPending                 Verdict = "PENDING"
	VerdictAppCorrect              Verdict = "APP_CORRECT"
	VerdictReviewerWrongAppCorrect Verdict = "REVIEWER_WRONG_APP_CORRECT"
	VerdictAppWrongReviewerCorrect Verdict = "APP_WRONG_REVIEWER_CORRECT"
	VerdictBothWrongNeedsReview    Verdict = "BOTH_WRONG_NEEDS_REVIEW"
)

// Status is the completion state of the review workflow for a row.
type Status string

const (
	StatusPending     Status = "Pending"
	StatusApprovedOne Status = "Approved (1/1)"
	StatusApprovedTwo Status = "Approved (2/2)"
	StatusDivergence  Status = "Divergence"
	StatusReviewPass1 Status = "Review pass 1"
)

// Decision is the second reviewer's explicit choice after seeing the first pass.
type Decision string

const (
	DecisionNone       Decision = ""
	DecisionAgreeFirst Decision = "agree-first"
	DecisionKeepApp    Decision = "keep-app"
	DecisionOther      Decision = "other"
)

var decisions = []Decision{
	DecisionNone,
	DecisionAgreeFirst,
	DecisionKeepApp,
	DecisionOther,
}

// ErrInvalidDecision is returned when a decision value is not recognized.
var ErrInvalidDecision = errors.New("decision must be agree-first, keep-app, other, or empty")

// ParseDecision validates s as a Decision. Surrounding whitespace and case are ignored.
func ParseDecision(s string) (Decision, error) {
	d := Decision(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(decisions, d) {
		return "", ErrInvalidDecision
	}
	return d, nil
}

// UnmarshalJSON validates that the decoded string is a known decision.
func (d *Decision) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseDecision(raw)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Pass is one reviewer's input for a row.
type Pass struct {
	ReasonOK bool              `json:"reason_ok"`
	MaskOK   bool              `json:"mask_ok"`
	Mask     string            `json:"mask"`
	Category classify.Category `json:"category"`
	Decision Decision          `json:"decision"`
}

// Entered reports whether the reviewer actually filled in a mask or category.
func (p Pass) Entered() bool {
	return strings.TrimSpace(p.Mask) != "" || p.Category != ""
}

// Agrees reports whether the pass confirms both the reason and the mask and
// picked the proposed category.
func (p Pass) Agrees(proposed classify.Category) bool {
	return p.ReasonOK && p.MaskOK && p.Category == proposed
}

// Input is everything the verdict depends on. First and Second are nil until
// the corresponding reviewer has submitted.
type Input struct {
	Proposed classify.Category `json:"proposed"`
	First    *Pass             `json:"first,omitempty"`
	Second   *Pass             `json:"second,omitempty"`
}

// Result is the derived verdict and status.
type Result struct {
	Verdict Verdict `json:"verdict"`
	Status  Status  `json:"status"`
}

// Evaluate computes the verdict and status for in.
func Evaluate(in Input, requireSecondPass bool) Result {
	first := valueOf(in.First)
	second := valueOf(in.Second)

	switch {
	case in.First != nil && first.Agrees(in.Proposed):
		return confirmed(in.Proposed, second, requireSecondPass)
	case in.First != nil && first.Entered():
		return disputed(in.Proposed, second, requireSecondPass)
	default:
		return Result{Verdict: VerdictPending, Status: StatusPending}
	}
}

// confirmed handles a first pass that agreed with the app.
func confirmed(proposed classify.Category, second Pass, requireSecondPass bool) Result {
	res := Result{Verdict: VerdictAppCorrect, Status: StatusApprovedOne}
	if !requireSecondPass {
		return res
	}

	switch {
	case second.Agrees(proposed):
		res.Status = StatusApprovedTwo
	case second.Decision == DecisionAgreeFirst:
		res.Status = StatusApprovedTwo
	case second.Decision == DecisionKeepApp:
		res.Verdict = VerdictReviewerWrongAppCorrect
		res.Status = StatusApprovedTwo
	default:
		res.Status = StatusReviewPass1
	}
	return res
}

// disputed handles a first pass that rejected the app's classification.
func disputed(proposed classify.Category, second Pass, requireSecondPass bool) Result {
	res := Result{Verdict: VerdictAppWrongReviewerCorrect, Status: StatusApprovedOne}
	if !requireSecondPass {
		return res
	}

	switch {
	case second.Decision == DecisionAgreeFirst:
		res.Status = StatusApprovedTwo
	case second.Decision == DecisionKeepApp && second.Category == proposed:
		res.Verdict = VerdictReviewerWrongAppCorrect
		res.Status = StatusApprovedTwo
	case second.Decision == DecisionOther:
		res.Verdict = VerdictBothWrongNeedsReview
		res.Status = StatusDivergence
	default:
		res.Status = StatusReviewPass1
	}
	return res
}

func valueOf(p *Pass) Pass {
	if p == nil {
		return Pass{}
	}
	return *p
}
