package schema

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Name is the schema name sent with the structured output request.
const Name = "pest_report"

const resourceURL = "mem://pestscan/pest_report.json"

// Report returns the strict output schema of a pest report. Every object
// forbids additional properties and requires all of its fields, which is
// what providers demand for strict structured output.
func Report() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"pest": object(map[string]any{
				"name":         str(),
				"confidence":   map[string]any{"type": "number"},
				"alternatives": stringList(),
				"evidence":     stringList(),
			}, "name", "confidence", "alternatives", "evidence"),
			"risk": object(map[string]any{
				"urgency":        str(),
				"health_notes":   stringList(),
				"property_notes": stringList(),
			}, "urgency", "health_notes", "property_notes"),
			"causes":     stringList(),
			"inspection": stringList(),
			"plan": map[string]any{
				"type": "array",
				"items": object(map[string]any{
					"title":         str(),
					"priority":      str(),
					"detail":        str(),
					"safety":        str(),
					"documentation": str(),
				}, "title", "priority", "detail", "safety", "documentation"),
			},
			"followup":    stringList(),
			"limitations": stringList(),
		},
		"required": []string{"pest", "risk", "causes", "inspection", "plan", "followup", "limitations"},
	}
}

func object(properties map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           properties,
		"required":             required,
	}
}

func str() map[string]any {
	return map[string]any{"type": "string"}
}

func stringList() map[string]any {
	return map[string]any{"type": "array", "items": str()}
}

// Validator checks raw JSON documents against the report schema.
// A compiled Validator is safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the report schema.
func NewValidator() (*Validator, error) {
	raw, err := json.Marshal(Report())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiled, err := jsonschema.CompileString(resourceURL, string(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// MustNewValidator is like NewValidator but panics on error. The schema is
// a constant, so a failure here is a programming error.
func MustNewValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate reports whether data is a JSON document matching the schema.
func (v *Validator) Validate(data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
