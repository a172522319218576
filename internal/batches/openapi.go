package batches

import "github.com/JaimeStill/noshow/pkg/openapi"

var batchSchema = &openapi.Schema{
	Type: "object",
	Properties: map[string]*openapi.Schema{
		"id":               {Type: "string", Format: "uuid"},
		"filename":         {Type: "string", Example: "exportacao_janeiro.csv"},
		"content_type":     {Type: "string"},
		"size_bytes":       {Type: "integer"},
		"storage_key":      {Type: "string"},
		"delimiter":        {Type: "string", Enum: []any{",", ";", "\t", "|"}},
		"narrative_column": {Type: "string"},
		"trigger_column":   {Type: "string"},
		"key_column":       {Type: "string"},
		"row_count":        {Type: "integer"},
		"status":           {Type: "string", Enum: []any{StatusClassified, StatusReclassified}},
		"uploaded_by":      {Type: "string"},
		"uploaded_at":      {Type: "string", Format: "date-time"},
		"updated_at":       {Type: "string", Format: "date-time"},
	},
}

var batchUploadSchema = &openapi.Schema{
	Type:     "object",
	Required: []string{"file"},
	Properties: map[string]*openapi.Schema{
		"file":             {Type: "string", Format: "binary"},
		"narrative_column": {Type: "string", Description: "Defaults to the configured column, then the first column"},
		"trigger_column":   {Type: "string"},
		"key_column":       {Type: "string"},
		"uploaded_by":      {Type: "string"},
	},
}
