package http

import (
	"errors"
	"strings"

	"github.com/aretw0/gss/pkg/domain"
	"github.com/getkin/kin-openapi/openapi3"
)

// schemaError turns a kin-openapi validation failure into an InvalidInputError naming
// the offending field.
func schemaError(err error) error {
	var se *openapi3.SchemaError
	if !errors.As(err, &se) {
		return &domain.InvalidInputError{Field: "body", Reason: err.Error()}
	}
	field := strings.Join(se.JSONPointer(), ".")
	if field == "" {
		field = "body"
	}
	reason := se.Reason
	if reason == "" {
		reason = "does not match the request schema"
	}
	return &domain.InvalidInputError{Field: field, Reason: reason}
}
