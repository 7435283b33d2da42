package http

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiYAML []byte

var (
	swaggerOnce sync.Once
	swagger     *openapi3.T
	swaggerErr  error
)

// GetSwagger returns the parsed OpenAPI document served at /openapi.yaml.
func GetSwagger() (*openapi3.T, error) {
	swaggerOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(openapiYAML)
		if err != nil {
			swaggerErr = fmt.Errorf("failed to load openapi document: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			swaggerErr = fmt.Errorf("invalid openapi document: %w", err)
			return
		}
		swagger = doc
	})
	return swagger, swaggerErr
}

func rawSpec() []byte {
	return openapiYAML
}

// requestSchema looks up a component schema by name.
func requestSchema(name string) (*openapi3.Schema, error) {
	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	ref, ok := doc.Components.Schemas[name]
	if !ok || ref.Value == nil {
		return nil, fmt.Errorf("schema %q not found", name)
	}
	return ref.Value, nil
}
