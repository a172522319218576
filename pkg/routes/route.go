package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler. Summary and Body
// feed the generated OpenAPI document; Body names a component schema sent
// as JSON, and Multipart marks form uploads.
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	Summary   string
	Body      string
	Multipart bool
}
