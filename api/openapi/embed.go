// Package openapi embeds the OpenAPI document of the gateway.
package openapi

import (
	_ "embed"
)

//go:embed openapi.json
var spec []byte

// Spec возвращает OpenAPI документ gateway-svc
func Spec() []byte {
	return spec
}
