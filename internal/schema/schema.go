// Package schema declares object schemas for request bodies and validates
// raw JSON payloads against them, producing structured per-field violations.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
)

type Field struct {
	Name     string
	Type     FieldType
	Required bool
}

// Violation is a single per-field schema violation in the shape clients
// consume under errors.body.
type Violation struct {
	InstancePath string         `json:"instancePath"`
	SchemaPath   string         `json:"schemaPath"`
	Keyword      string         `json:"keyword"`
	Params       map[string]any `json:"params"`
	Message      string         `json:"message"`
}

// ValidationError carries the full violation list for a rejected body.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		messages = append(messages, v.Message)
	}
	return fmt.Sprintf("body failed schema validation: %s", strings.Join(messages, "; "))
}

// Object is a declared object schema. Fields outside the declaration are
// rejected; unambiguous primitive coercions (numeric string to integer,
// number or boolean to string, null to the zero value) are applied before
// type checks.
type Object struct {
	fields []Field
	byName map[string]Field
}

func NewObject(fields ...Field) *Object {
	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	return &Object{fields: fields, byName: byName}
}

// ValidateJSON decodes raw JSON and validates it against the schema. On
// success it returns the normalized object containing only declared fields
// with coerced values. A schema failure returns *ValidationError; a decode
// failure (malformed JSON, non-object body) returns a plain error.
func (o *Object) ValidateJSON(raw []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var body map[string]any
	if err := decoder.Decode(&body); err != nil {
		return nil, fmt.Errorf("request body is not a JSON object: %w", err)
	}

	return o.Validate(body)
}

// Validate checks an already-decoded object against the schema.
func (o *Object) Validate(body map[string]any) (map[string]any, error) {
	var violations []Violation
	normalized := make(map[string]any, len(o.fields))

	for _, field := range o.fields {
		value, present := body[field.Name]
		if !present {
			if field.Required {
				violations = append(violations, requiredViolation(field.Name))
			}
			continue
		}

		coerced, ok := coerce(value, field.Type)
		if !ok {
			violations = append(violations, typeViolation(field))
			continue
		}
		normalized[field.Name] = coerced
	}

	for key := range body {
		if _, declared := o.byName[key]; !declared {
			violations = append(violations, additionalPropertyViolation(key))
		}
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	return normalized, nil
}

// coerce applies the unambiguous primitive coercions before the type check.
func coerce(value any, fieldType FieldType) (any, bool) {
	switch fieldType {
	case TypeInteger:
		return coerceInteger(value)
	case TypeString:
		return coerceString(value)
	}
	return nil, false
}

func coerceInteger(value any) (any, bool) {
	switch v := value.(type) {
	case json.Number:
		return integerFromNumber(string(v))
	case string:
		return integerFromNumber(v)
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case nil:
		return 0, true
	}
	return nil, false
}

// integerFromNumber accepts any numeric literal whose value is integral, so
// "6000" and 6e3 pass while 60.5 fails.
func integerFromNumber(literal string) (any, bool) {
	if n, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return int(n), true
	}

	f, err := strconv.ParseFloat(literal, 64)
	if err != nil || f != float64(int64(f)) {
		return nil, false
	}
	return int(f), true
}

func coerceString(value any) (any, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return string(v), true
	case bool:
		return strconv.FormatBool(v), true
	case nil:
		return "", true
	}
	return nil, false
}

func requiredViolation(name string) Violation {
	return Violation{
		InstancePath: "",
		SchemaPath:   "#/required",
		Keyword:      "required",
		Params:       map[string]any{"missingProperty": name},
		Message:      fmt.Sprintf("must have required property '%s'", name),
	}
}

func typeViolation(field Field) Violation {
	return Violation{
		InstancePath: "/" + field.Name,
		SchemaPath:   fmt.Sprintf("#/properties/%s/type", field.Name),
		Keyword:      "type",
		Params:       map[string]any{"type": string(field.Type)},
		Message:      fmt.Sprintf("must be %s", field.Type),
	}
}

func additionalPropertyViolation(key string) Violation {
	return Violation{
		InstancePath: "",
		SchemaPath:   "#/additionalProperties",
		Keyword:      "additionalProperties",
		Params:       map[string]any{"additionalProperty": key},
		Message:      "must NOT have additional properties",
	}
}
