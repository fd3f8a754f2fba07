// Package swagger serves the OpenAPI document and a ReDoc page for it.
package swagger

import _ "embed"

// OpenAPI is the embedded OpenAPI 3 document of the HTTP API.
//
//go:embed openapi.yaml
var OpenAPI []byte
