// Package schema provides JSON Schema building and validation utilities.
//
// # Quick Start
//
//	s, err := schema.Compile(schema.StrictObject(map[string]*schema.Property{
//	    "value":   schema.String("The collected value"),
//	    "percent": schema.Number("As a fraction").Min(0).Max(1),
//	}, "value"))
//	if err != nil { ... }
//	err = s.Validate(decodedArgs)
//
// Builders produce plain map[string]any schemas that serialize directly into
// tool definitions; Compile attaches a validator for runtime checks. See
// [Object], [StrictObject], and [Property] for details.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema represents a JSON Schema definition. It provides both the raw map
// representation (for serialization into tool definitions) and a compiled
// validator (for runtime validation).
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the underlying map[string]any representation.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// Validate validates data against the schema. The data must be JSON-shaped:
// the product of encoding/json decoding into any. Returns nil if valid, or a
// *ValidationError describing the failure.
func (s *Schema) Validate(data any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	if err := s.compiled.Validate(data); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// ValidationError wraps a JSON Schema validation error with a cleaner
// message.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compile compiles a raw schema map into a Schema with a compiled validator.
// Returns an error if the schema is invalid.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	schemaJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	schemaData, err := jsonschema.UnmarshalJSON(strings.NewReader(string(schemaJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Schema{
		raw:      raw,
		compiled: compiled,
	}, nil
}

// MustCompile is like Compile but panics on error. Use this for schemas
// defined at init time.
func MustCompile(raw map[string]any) *Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// -----------------------------------------------------------------------------
// Schema Builders
// -----------------------------------------------------------------------------

// Object creates an object schema with the given properties. Pass property
// names as variadic arguments to mark them as required.
//
// Example:
//
//	schema.Object(map[string]*schema.Property{
//	    "name":  schema.String("User name"),
//	    "email": schema.String("Email address"),
//	}, "name", "email")
func Object(properties map[string]*Property, required ...string) map[string]any {
	props := make(map[string]any, len(properties))
	for name, prop := range properties {
		props[name] = prop.build()
	}

	s := map[string]any{
		"type":       "object",
		"properties": props,
	}

	if len(required) > 0 {
		s["required"] = required
	}

	return s
}

// StrictObject is like [Object] but additionally forbids properties that are
// not declared. Use it for schemas the model must follow exactly.
func StrictObject(properties map[string]*Property, required ...string) map[string]any {
	s := Object(properties, required...)
	s["additionalProperties"] = false
	return s
}

// Property represents a property in an object schema.
type Property struct {
	typ         any
	description string
	enum        []any
	minimum     *float64
	maximum     *float64
	items       map[string]any
	uniqueItems bool
	minItems    *int
}

func (p *Property) build() map[string]any {
	m := map[string]any{}

	if p.typ != nil {
		m["type"] = p.typ
	}
	if p.description != "" {
		m["description"] = p.description
	}
	if len(p.enum) > 0 {
		m["enum"] = p.enum
	}
	if p.minimum != nil {
		m["minimum"] = *p.minimum
	}
	if p.maximum != nil {
		m["maximum"] = *p.maximum
	}
	if p.items != nil {
		m["items"] = p.items
	}
	if p.uniqueItems {
		m["uniqueItems"] = true
	}
	if p.minItems != nil {
		m["minItems"] = *p.minItems
	}

	return m
}

// String creates a string property.
//
// Example:
//
//	schema.String("User's full name")
//	schema.String("Status").Enum("active", "inactive")
func String(description string) *Property {
	return &Property{typ: "string", description: description}
}

// NullableString creates a property that accepts a string or null. Combine
// with Enum to model an optional choice; include nil among the enum values
// so null stays valid.
//
// Example:
//
//	schema.NullableString("Seat preference").Enum("window", "aisle", nil)
func NullableString(description string) *Property {
	return &Property{typ: []string{"string", "null"}, description: description}
}

// Integer creates an integer property.
func Integer(description string) *Property {
	return &Property{typ: "integer", description: description}
}

// Number creates a number property (floating point).
//
// Example:
//
//	schema.Number("Fraction of the total").Min(0).Max(1)
func Number(description string) *Property {
	return &Property{typ: "number", description: description}
}

// Boolean creates a boolean property.
func Boolean(description string) *Property {
	return &Property{typ: "boolean", description: description}
}

// Array creates an array property with the given item schema.
//
// Example:
//
//	schema.Array("List of tags", map[string]any{"type": "string"})
func Array(description string, items map[string]any) *Property {
	return &Property{typ: "array", description: description, items: items}
}

// Map creates a free-form object property: string keys, any values.
func Map(description string) *Property {
	return &Property{typ: "object", description: description}
}

// Enum sets allowed values for the property.
//
// Example:
//
//	schema.String("Status").Enum("pending", "active", "closed")
func (p *Property) Enum(values ...any) *Property {
	p.enum = values
	return p
}

// Min sets the minimum value for number/integer properties.
func (p *Property) Min(min float64) *Property {
	p.minimum = &min
	return p
}

// Max sets the maximum value for number/integer properties.
func (p *Property) Max(max float64) *Property {
	p.maximum = &max
	return p
}

// UniqueItems requires array items to be distinct.
func (p *Property) UniqueItems() *Property {
	p.uniqueItems = true
	return p
}

// MinItems sets the minimum number of array items.
func (p *Property) MinItems(min int) *Property {
	p.minItems = &min
	return p
}
