package extrarules

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/noshow/pkg/query"
	"github.com/JaimeStill/noshow/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "extra_rules", "e").
	Project("id", "ID").
	Project("cause", "Cause").
	Project("reason", "Reason").
	Project("template", "Template").
	Project("active", "Active").
	Project("created_by", "CreatedBy").
	Project("created_at", "CreatedAt")

const returning = "id, cause, reason, template, active, created_by, created_at"

var registryOrder = []query.SortField{
	{Field: "CreatedAt"},
	{Field: "ID"},
}

var defaultSort = query.SortField{
	Field: "CreatedAt",
}

// Filters contains optional filtering criteria for extra rule queries.
// Cause and Reason use case-insensitive contains matching.
type Filters struct {
	Cause     *string `json:"cause,omitempty"`
	Reason    *string `json:"reason,omitempty"`
	Active    *bool   `json:"active,omitempty"`
	CreatedBy *string `json:"created_by,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Cause", f.Cause).
		WhereContains("Reason", f.Reason).
		WhereEquals("Active", f.Active).
		WhereEquals("CreatedBy", f.CreatedBy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("cause"); c != "" {
		f.Cause = &c
	}
	if r := values.Get("reason"); r != "" {
		f.Reason = &r
	}
	if a := values.Get("active"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.Active = &v
		}
	}
	if c := values.Get("created_by"); c != "" {
		f.CreatedBy = &c
	}

	return f
}

func scanExtraRule(s repository.Scanner) (ExtraRule, error) {
	var e ExtraRule
	err := s.Scan(
		&e.ID,
		&e.Cause,
		&e.Reason,
		&e.Template,
		&e.Active,
		&e.CreatedBy,
		&e.CreatedAt,
	)
	return e, err
}
