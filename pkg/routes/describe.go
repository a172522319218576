package routes

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/JaimeStill/noshow/pkg/openapi"
)

var pathParam = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Describe adds an operation to spec for every route in groups. Child
// groups inherit their parent's prefix and tags.
func Describe(spec *openapi.Spec, groups ...Group) {
	for _, group := range groups {
		describeGroup(spec, "", nil, group)
	}
}

func describeGroup(spec *openapi.Spec, parentPrefix string, parentTags []string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	tags := group.Tags
	if len(tags) == 0 {
		tags = parentTags
	}

	if len(group.Schemas) > 0 {
		spec.Components.AddSchemas(group.Schemas)
	}

	for _, route := range group.Routes {
		path := fullPrefix + route.Pattern
		item, ok := spec.Paths[path]
		if !ok {
			item = &openapi.PathItem{}
			spec.Paths[path] = item
		}
		item.Set(route.Method, operation(route, path, tags))
	}

	for _, child := range group.Children {
		describeGroup(spec, fullPrefix, tags, child)
	}
}

func operation(route Route, path string, tags []string) *openapi.Operation {
	op := &openapi.Operation{
		Summary: route.Summary,
		Tags:    tags,
		Responses: map[int]*openapi.Response{
			http.StatusBadRequest:          openapi.ResponseRef("BadRequest"),
			http.StatusInternalServerError: openapi.ResponseRef("ServerError"),
		},
	}

	for _, m := range pathParam.FindAllStringSubmatch(path, -1) {
		op.Parameters = append(op.Parameters, openapi.PathParam(m[1], m[1]+" identifier"))
		op.Responses[http.StatusNotFound] = openapi.ResponseRef("NotFound")
	}

	switch {
	case route.Multipart:
		op.RequestBody = openapi.RequestBodyMultipart(route.Body)
	case route.Body != "":
		op.RequestBody = openapi.RequestBodyJSON(route.Body, true)
	}

	switch strings.ToUpper(route.Method) {
	case http.MethodDelete:
		op.Responses[http.StatusNoContent] = &openapi.Response{Description: "Deleted"}
	case http.MethodPost:
		op.Responses[http.StatusOK] = &openapi.Response{Description: "Success"}
		op.Responses[http.StatusCreated] = &openapi.Response{Description: "Created"}
	default:
		op.Responses[http.StatusOK] = &openapi.Response{Description: "Success"}
	}

	return op
}
