package reviews

import "github.com/JaimeStill/noshow/pkg/openapi"

var categoryEnum = []any{"client no-show", "technician no-show", "scheduling error", "missing equipment"}

var reviewSchema = &openapi.Schema{
	Type: "object",
	Properties: map[string]*openapi.Schema{
		"id":          {Type: "string", Format: "uuid"},
		"note_id":     {Type: "string", Format: "uuid"},
		"batch_id":    {Type: "string", Format: "uuid"},
		"row_key":     {Type: "string"},
		"reviewer":    {Type: "string"},
		"pass":        {Type: "integer", Enum: []any{1, 2}},
		"reason_ok":   {Type: "boolean"},
		"mask_ok":     {Type: "boolean"},
		"mask":        {Type: "string"},
		"category":    {Type: "string", Enum: categoryEnum},
		"decision":    {Type: "string", Enum: []any{"", "agree-first", "keep-app", "other"}},
		"notes":       {Type: "string"},
		"batch_label": {Type: "string"},
		"created_at":  {Type: "string", Format: "date-time"},
		"updated_at":  {Type: "string", Format: "date-time"},
	},
}

var submitCommandSchema = &openapi.Schema{
	Type:     "object",
	Required: []string{"reviewer", "pass"},
	Properties: map[string]*openapi.Schema{
		"reviewer":    {Type: "string"},
		"pass":        {Type: "integer", Enum: []any{1, 2}},
		"reason_ok":   {Type: "boolean"},
		"mask_ok":     {Type: "boolean"},
		"mask":        {Type: "string", Description: "Corrected mask entered by the reviewer"},
		"category":    {Type: "string", Enum: categoryEnum},
		"decision":    {Type: "string", Description: "Second pass only", Enum: []any{"", "agree-first", "keep-app", "other"}},
		"notes":       {Type: "string"},
		"batch_label": {Type: "string"},
	},
}

var evaluationSchema = &openapi.Schema{
	Type: "object",
	Properties: map[string]*openapi.Schema{
		"note":   openapi.SchemaRef("Note"),
		"first":  openapi.SchemaRef("Review"),
		"second": openapi.SchemaRef("Review"),
		"verdict": {
			Type: "string",
			Enum: []any{"PENDING", "APP_CORRECT", "REVIEWER_WRONG_APP_CORRECT", "APP_WRONG_REVIEWER_CORRECT", "BOTH_WRONG_NEEDS_REVIEW"},
		},
		"status": {
			Type: "string",
			Enum: []any{"Pending", "Approved (1/1)", "Approved (2/2)", "Divergence", "Review pass 1"},
		},
	},
}

var count = &openapi.Schema{Type: "integer"}

var summarySchema = &openapi.Schema{
	Type: "object",
	Properties: map[string]*openapi.Schema{
		"batch_id":    {Type: "string", Format: "uuid"},
		"notes":       {Type: "integer"},
		"reviewed":    {Type: "integer"},
		"by_label":    openapi.MapOf(count, "Notes per proposed label"),
		"by_category": openapi.MapOf(count, "Notes per proposed category"),
		"by_status":   openapi.MapOf(count, "Notes per review status"),
		"by_verdict":  openapi.MapOf(count, "Notes per verdict"),
	},
}
