package notes

import "github.com/JaimeStill/noshow/pkg/openapi"

var noteSchema = &openapi.Schema{
	Type: "object",
	Properties: map[string]*openapi.Schema{
		"id":            {Type: "string", Format: "uuid"},
		"batch_id":      {Type: "string", Format: "uuid"},
		"row_index":     {Type: "integer"},
		"row_key":       {Type: "string", Example: "OS-000123"},
		"narrative":     {Type: "string"},
		"trigger":       {Type: "string"},
		"fields":        openapi.MapOf(&openapi.Schema{Type: "string"}, "Original row values keyed by column header"),
		"cause":         {Type: "string"},
		"reason":        {Type: "string"},
		"mask":          {Type: "string"},
		"template":      {Type: "string"},
		"label":         {Type: "string", Enum: []any{"mask-correct", "technician-no-show", "client-no-show"}},
		"detail":        {Type: "string"},
		"category":      {Type: "string", Enum: []any{"client no-show", "technician no-show", "scheduling error", "missing equipment"}},
		"classified_at": {Type: "string", Format: "date-time"},
	},
}
