package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// QuickDelimiter separates the three fields of a line-format quick rule.
const QuickDelimiter = ";"

// QuickSeparator separates rules in the labeled block format.
const QuickSeparator = "---"

var labelLine = regexp.MustCompile(`(?i)^\s*(cause|causa|reason|motivo|template|mascara_modelo)\s*:\s*(.*)$`)

// LineError reports a quick-rule line that was rejected.
type LineError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ParseQuick parses a bulk-add block into rules. Two formats are accepted:
//
//	cause ; reason ; template
//
// one rule per line, or labeled blocks separated by a "---" line:
//
//	CAUSE: ...
//	REASON: ...
//	TEMPLATE: ...
//	---
//
// A block containing any labeled line is parsed in the labeled format.
// Invalid rules are reported with their 1-based line number and skipped.
func ParseQuick(block string) ([]Rule, []LineError) {
	lines := strings.Split(strings.ReplaceAll(block, "\r\n", "\n"), "\n")

	for _, l := range lines {
		if labelLine.MatchString(l) {
			return parseLabeled(lines)
		}
	}
	return parseDelimited(lines)
}

func parseDelimited(lines []string) ([]Rule, []LineError) {
	var (
		out  []Rule
		errs []LineError
	)

	for i, l := range lines {
		n := i + 1
		if strings.TrimSpace(l) == "" {
			continue
		}

		fields := strings.Split(l, QuickDelimiter)
		if len(fields) != 3 {
			errs = append(errs, LineError{
				Line:   n,
				Reason: fmt.Sprintf("wrong field count: want 3, got %d", len(fields)),
			})
			continue
		}

		rule := Rule{
			Cause:    strings.TrimSpace(fields[0]),
			Reason:   strings.TrimSpace(fields[1]),
			Template: strings.TrimSpace(fields[2]),
		}
		if field := rule.missing(); field != "" {
			errs = append(errs, LineError{Line: n, Reason: "empty field: " + field})
			continue
		}

		out = append(out, rule)
	}

	return out, errs
}

type labeledBlock struct {
	start  int
	values map[string]string
	lines  map[string]int
	last   string
}

func parseLabeled(lines []string) ([]Rule, []LineError) {
	var (
		out  []Rule
		errs []LineError
		cur  *labeledBlock
	)

	flush := func() {
		if cur == nil {
			return
		}
		rule, err := cur.rule()
		if err != nil {
			errs = append(errs, *err)
		} else {
			out = append(out, rule)
		}
		cur = nil
	}

	for i, l := range lines {
		n := i + 1
		trimmed := strings.TrimSpace(l)

		if trimmed == QuickSeparator {
			flush()
			continue
		}
		if trimmed == "" {
			continue
		}

		if cur == nil {
			cur = &labeledBlock{
				start:  n,
				values: make(map[string]string, 3),
				lines:  make(map[string]int, 3),
			}
		}

		if m := labelLine.FindStringSubmatch(l); m != nil {
			field := fieldName(m[1])
			cur.values[field] = strings.TrimSpace(m[2])
			cur.lines[field] = n
			cur.last = field
			continue
		}

		if cur.last == "" {
			errs = append(errs, LineError{Line: n, Reason: "unlabeled line"})
			continue
		}
		cur.values[cur.last] = strings.TrimSpace(cur.values[cur.last] + " " + trimmed)
	}
	flush()

	return out, errs
}

func (b *labeledBlock) rule() (Rule, *LineError) {
	for _, field := range []string{"cause", "reason", "template"} {
		line, ok := b.lines[field]
		if !ok {
			return Rule{}, &LineError{Line: b.start, Reason: "missing field: " + field}
		}
		if b.values[field] == "" {
			return Rule{}, &LineError{Line: line, Reason: "empty field: " + field}
		}
	}
	return Rule{
		Cause:    b.values["cause"],
		Reason:   b.values["reason"],
		Template: b.values["template"],
	}, nil
}

func fieldName(label string) string {
	switch strings.ToLower(label) {
	case "cause", "causa":
		return "cause"
	case "reason", "motivo":
		return "reason"
	default:
		return "template"
	}
}
