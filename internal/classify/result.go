// Package classify turns a closure-note row into a classification label and
// outcome category using the rule registry: the narrative is segmented into
// cause, reason and filled mask, the mask is checked against the reason's
// template, and the reason is mapped to a coarse reporting category.
package classify

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"github.com/JaimeStill/noshow/pkg/canon"
)

// Label is the automatic classification of a single row.
type Label string

const (
	LabelMaskCorrect      Label = "mask-correct"
	LabelTechnicianNoShow Label = "technician-no-show"
	LabelClientNoShow     Label = "client-no-show"
)

var labels = []Label{
	LabelMaskCorrect,
	LabelTechnicianNoShow,
	LabelClientNoShow,
}

// Labels returns the valid classification labels.
func Labels() []Label {
	return labels
}

// Display returns the label as shown in exported spreadsheets.
func (l Label) Display() string {
	switch l {
	case LabelMaskCorrect:
		return "Máscara correta"
	case LabelClientNoShow:
		return "No-show Cliente"
	default:
		return "No-show Técnico"
	}
}

// Category is the coarse outcome used for reporting and review.
type Category string

const (
	CategoryClientNoShow     Category = "client no-show"
	CategoryTechnicianNoShow Category = "technician no-show"
	CategorySchedulingError  Category = "scheduling error"
	CategoryMissingEquipment Category = "missing equipment"
)

var categories = []Category{
	CategoryClientNoShow,
	CategoryTechnicianNoShow,
	CategorySchedulingError,
	CategoryMissingEquipment,
}

// Categories returns the valid outcome categories.
func Categories() []Category {
	return categories
}

// ErrInvalidCategory is returned when a category label is not recognized.
var ErrInvalidCategory = errors.New(
	"category must be client no-show, technician no-show, scheduling error, or missing equipment",
)

// ParseCategory matches s against the category labels ignoring case,
// diacritics, and hyphen/underscore versus space spelling. The empty
// string parses to the empty Category.
func ParseCategory(s string) (Category, error) {
	key := categoryKey(s)
	if key == "" {
		return "", nil
	}
	for _, c := range categories {
		if categoryKey(string(c)) == key {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// UnmarshalJSON accepts any spelling ParseCategory accepts.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseCategory(raw)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func categoryKey(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(canon.String(s))
	return canon.Space(s)
}

// ValidLabel reports whether l is a known label.
func ValidLabel(l Label) bool {
	return slices.Contains(labels, l)
}

// Row is one narrative-bearing record from an export.
type Row struct {
	Key       string            `json:"key"`
	Narrative string            `json:"narrative"`
	Trigger   string            `json:"trigger,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Result is the classification of a Row. Detail explains a non-correct label.
type Result struct {
	Cause    string   `json:"cause"`
	Reason   string   `json:"reason"`
	Mask     string   `json:"mask"`
	Template string   `json:"template"`
	Label    Label    `json:"label"`
	Detail   string   `json:"detail"`
	Category Category `json:"category"`
}

// Diagnostic details.
const (
	DetailUnrecognized = "reason not recognized"
	DetailMismatch     = "does not match template"
)
