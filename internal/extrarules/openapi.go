package extrarules

import "github.com/JaimeStill/noshow/pkg/openapi"

var extraRuleSchema = &openapi.Schema{
	Type: "object",
	Properties: map[string]*openapi.Schema{
		"id":         {Type: "string", Format: "uuid"},
		"cause":      {Type: "string", Example: "Agendamento cancelado."},
		"reason":     {Type: "string", Example: "No-show Cliente"},
		"template":   {Type: "string", Description: "Runs of 0 mark placeholders"},
		"active":     {Type: "boolean"},
		"created_by": {Type: "string"},
		"created_at": {Type: "string", Format: "date-time"},
	},
}

var ruleCommandSchema = &openapi.Schema{
	Type:     "object",
	Required: []string{"cause", "reason", "template"},
	Properties: map[string]*openapi.Schema{
		"cause":      {Type: "string"},
		"reason":     {Type: "string"},
		"template":   {Type: "string"},
		"created_by": {Type: "string"},
	},
}

var importCommandSchema = &openapi.Schema{
	Type:     "object",
	Required: []string{"block"},
	Properties: map[string]*openapi.Schema{
		"block": {
			Type:        "string",
			Description: "Lines of cause ; reason ; template, or CAUSE:/REASON:/TEMPLATE: blocks separated by ---",
		},
		"created_by": {Type: "string"},
	},
}

var testCommandSchema = &openapi.Schema{
	Type:     "object",
	Required: []string{"narrative"},
	Properties: map[string]*openapi.Schema{
		"narrative": {Type: "string"},
		"trigger":   {Type: "string"},
	},
}

var lineErrorSchema = &openapi.Schema{
	Type: "object",
	Properties: map[string]*openapi.Schema{
		"line":   {Type: "integer", Description: "1-based line of the rejected entry"},
		"reason": {Type: "string"},
	},
}

var importResultSchema = &openapi.Schema{
	Type: "object",
	Properties: map[string]*openapi.Schema{
		"rules":  openapi.ArrayOf("ExtraRule"),
		"errors": openapi.ArrayOf("ImportLineError"),
	},
}
