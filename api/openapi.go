// Package api holds the embedded OpenAPI document.
package api

import _ "embed"

// OpenAPIYAML is the service's OpenAPI 3 document.
//
//go:embed openapi/openapi.yaml
var OpenAPIYAML []byte
