// Package api embeds the OpenAPI description served and enforced by the
// HTTP router.
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPI []byte
