// Package schema validates entity payloads against per-entity JSON schemas
// before they reach storage.
package schema

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"opsboard/internal/core"
)

//go:embed schemas/*.json
var schemaFS embed.FS

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (e *ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(msgs, "; ")
}

// Validator holds the compiled full and partial schema of every entity.
type Validator struct {
	full    map[string]*gojsonschema.Schema
	partial map[string]*gojsonschema.Schema
}

// NewValidator compiles the embedded schemas. Entities without a schema file
// accept any payload.
func NewValidator() (*Validator, error) {
	v := &Validator{
		full:    make(map[string]*gojsonschema.Schema),
		partial: make(map[string]*gojsonschema.Schema),
	}
	for _, entity := range core.Entities {
		raw, err := schemaFS.ReadFile("schemas/" + entity + ".json")
		if err != nil {
			continue
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode %s schema: %w", entity, err)
		}
		full, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", entity, err)
		}
		partial, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(withoutRequired(doc)))
		if err != nil {
			return nil, fmt.Errorf("compile partial %s schema: %w", entity, err)
		}
		v.full[entity] = full
		v.partial[entity] = partial
	}
	return v, nil
}

// Validate checks a complete payload, as sent on create.
func (v *Validator) Validate(entity string, data core.Record) error {
	if v == nil {
		return nil
	}
	return validate(v.full[entity], data)
}

// ValidatePartial checks an update payload; required fields are not enforced.
func (v *Validator) ValidatePartial(entity string, data core.Record) error {
	if v == nil {
		return nil
	}
	return validate(v.partial[entity], data)
}

func validate(s *gojsonschema.Schema, data core.Record) error {
	if s == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	var errs []ValidationError
	for _, desc := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return &ValidationErrors{Errors: errs}
}

func withoutRequired(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, val := range doc {
		if k != "required" {
			out[k] = val
		}
	}
	return out
}

func IsValidationError(err error) bool {
	var ve *ValidationErrors
	return errors.As(err, &ve)
}

func GetValidationErrors(err error) *ValidationErrors {
	var ve *ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
