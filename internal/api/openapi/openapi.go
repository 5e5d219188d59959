// Package openapi embute o documento OpenAPI servido pela UI do Swagger.
package openapi

import _ "embed"

// YAML contém o documento OpenAPI embutido.
//
//go:embed openapi.yaml
var YAML []byte
