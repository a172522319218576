package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// SortField orders results by a projected view name.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields reads "Name,-CreatedAt" style input. A leading "-" sorts
// descending; blank entries are skipped.
func ParseSortFields(s string) []SortField {
	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

// predicate is one AND-ed WHERE term. Each "?" in expr is replaced by the
// next positional parameter when the query is rendered.
type predicate struct {
	expr string
	args []any
}

// Builder assembles SELECT statements over a projection. Every Where
// method skips nil or empty values so optional filters chain without
// branching.
type Builder struct {
	projection  *ProjectionMap
	predicates  []predicate
	sort        []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder ordered by defaultSort unless
// OrderByFields overrides it.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		defaultSort: defaultSort,
	}
}

// WhereEquals matches field = value.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	return b.compare(field, "=", value)
}

// WhereFrom matches field >= value.
func (b *Builder) WhereFrom(field string, value any) *Builder {
	return b.compare(field, ">=", value)
}

// WhereUntil matches field < value.
func (b *Builder) WhereUntil(field string, value any) *Builder {
	return b.compare(field, "<", value)
}

// WhereContains matches field ILIKE %value%. Wildcards in value match
// literally.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	return b.where(b.projection.Column(field)+" ILIKE ?", contains(*value))
}

// WhereSearch matches search as a substring of any of fields.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	pattern := contains(*search)
	terms := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, field := range fields {
		terms[i] = b.projection.Column(field) + " ILIKE ?"
		args[i] = pattern
	}
	return b.where("("+strings.Join(terms, " OR ")+")", args...)
}

// OrderByFields replaces the default order. Fields the projection does not
// map are dropped.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = b.sort[:0]
	for _, f := range fields {
		if b.projection.Has(f.Field) {
			b.sort = append(b.sort, f)
		}
	}
	return b
}

// Build renders the filtered, ordered SELECT.
func (b *Builder) Build() (string, []any) {
	where, args := b.renderWhere()
	return "SELECT " + b.projection.Columns() + " FROM " + b.projection.From() + where + b.renderOrder(), args
}

// BuildCount renders SELECT COUNT(*) over the same filter.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.renderWhere()
	return "SELECT COUNT(*) FROM " + b.projection.From() + where, args
}

// BuildPage renders Build limited to page (1-indexed) of pageSize rows.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	sql, args := b.Build()
	offset := (page - 1) * pageSize
	return sql + " LIMIT " + strconv.Itoa(pageSize) + " OFFSET " + strconv.Itoa(offset), args
}

// BuildSingle renders a lookup of one row by idField, ignoring any
// filters added to the builder.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	return fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(),
		b.projection.From(),
		b.projection.Column(idField),
	), []any{id}
}

func (b *Builder) compare(field, op string, value any) *Builder {
	if isNil(value) {
		return b
	}
	return b.where(b.projection.Column(field)+" "+op+" ?", value)
}

func (b *Builder) where(expr string, args ...any) *Builder {
	b.predicates = append(b.predicates, predicate{expr: expr, args: args})
	return b
}

func (b *Builder) renderWhere() (string, []any) {
	if len(b.predicates) == 0 {
		return "", nil
	}

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(" WHERE ")
	for i, p := range b.predicates {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		n := 0
		for _, r := range p.expr {
			if r == '?' && n < len(p.args) {
				args = append(args, p.args[n])
				sb.WriteString("$" + strconv.Itoa(len(args)))
				n++
				continue
			}
			sb.WriteRune(r)
		}
	}
	return sb.String(), args
}

func (b *Builder) renderOrder() string {
	fields := b.sort
	if len(fields) == 0 {
		fields = b.defaultSort
	}
	if len(fields) == 0 {
		return ""
	}

	terms := make([]string, len(fields))
	for i, f := range fields {
		dir := " ASC"
		if f.Descending {
			dir = " DESC"
		}
		terms[i] = b.projection.Column(f.Field) + dir
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func contains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
