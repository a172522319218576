package classify

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/noshow/internal/rules"
	"github.com/JaimeStill/noshow/pkg/canon"
)

// Classifier labels rows against a registry. It only reads the registry;
// a Classifier is safe for concurrent use.
type Classifier struct {
	Registry     *rules.Registry
	DefaultCause string
	Triggers     []string
}

// New creates a Classifier. An empty defaultCause falls back to rules.DefaultCause.
func New(reg *rules.Registry, defaultCause string, triggers []string) *Classifier {
	if defaultCause == "" {
		defaultCause = rules.DefaultCause
	}
	return &Classifier{
		Registry:     reg,
		DefaultCause: defaultCause,
		Triggers:     triggers,
	}
}

// Settings holds the classifier options that outlive a single registry.
// Services keep Settings and build a Classifier per request from the
// registry active at that moment.
type Settings struct {
	DefaultCause string
	Triggers     []string
	Workers      int
}

// For creates a Classifier over reg.
func (s Settings) For(reg *rules.Registry) *Classifier {
	return New(reg, s.DefaultCause, s.Triggers)
}

// Classify produces exactly one Result for row. It never fails: an
// unrecognized reason or a mismatched mask is itself a label.
func (c *Classifier) Classify(row Row) Result {
	seg := Segment(row.Narrative, c.Registry, c.DefaultCause)

	res := Result{
		Cause:  seg.Cause,
		Reason: seg.Reason,
		Mask:   seg.Mask,
	}

	if trigger, ok := c.triggered(row.Trigger); ok {
		res.Label = LabelClientNoShow
		res.Detail = fmt.Sprintf("special trigger %q found", trigger)
		res.Category = Categorize(res.Reason, res.Label)
		return res
	}

	rule, ok := c.Registry.Lookup(seg.Cause, seg.Reason)
	if !ok {
		res.Label = LabelTechnicianNoShow
		res.Detail = DetailUnrecognized
		res.Category = Categorize(res.Reason, res.Label)
		return res
	}

	res.Template = rule.Template
	if rule.Matcher.Match(canon.Space(seg.Mask)) {
		res.Label = LabelMaskCorrect
	} else {
		res.Label = LabelTechnicianNoShow
		res.Detail = DetailMismatch
	}
	res.Category = Categorize(res.Reason, res.Label)

	return res
}

// ClassifyAll classifies rows in parallel with at most workers goroutines.
// Results keep input order. Only context cancellation produces an error.
func (c *Classifier) ClassifyAll(ctx context.Context, rows []Row, workers int) ([]Result, error) {
	results := make([]Result, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(workers, len(rows)))

	for i := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.Classify(rows[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("classify rows: %w", err)
	}

	return results, nil
}

func (c *Classifier) triggered(value string) (string, bool) {
	if len(c.Triggers) == 0 || strings.TrimSpace(value) == "" {
		return "", false
	}
	v := canon.String(value)
	for _, t := range c.Triggers {
		key := canon.String(t)
		if key != "" && strings.Contains(v, key) {
			return t, true
		}
	}
	return "", false
}

func workerCount(workers, rows int) int {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return max(1, min(workers, rows))
}
