package domain

import (
	"fmt"
	"math"
)

// ParamType is the primitive type of a tool parameter
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
)

// ToolParam describes one named parameter of a tool.
type ToolParam struct {
	Type        ParamType `json:"type"`
	Description string    `json:"description"`
	Required    bool      `json:"-"`
}

// ToolDefinition declares a callable read-only data tool. Definitions are
// immutable and registered at process start.
type ToolDefinition struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Params      map[string]ToolParam `json:"parameters"`
}

// Schema renders the definition in the function-calling wire format both
// provider protocols accept.
func (d ToolDefinition) Schema() map[string]any {
	properties := make(map[string]any, len(d.Params))
	required := []string{}
	for name, p := range d.Params {
		properties[name] = map[string]any{
			"type":        string(p.Type),
			"description": p.Description,
		}
		if p.Required {
			required = append(required, name)
		}
	}
	return map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        d.Name,
			"description": d.Description,
			"parameters": map[string]any{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		},
	}
}

// ValidateArgs checks loosely-typed JSON arguments against the declared
// schema. Unknown keys are dropped rather than trusted, missing required
// parameters are an error, and integer values arriving as JSON floats are
// coerced.
func (d ToolDefinition) ValidateArgs(args map[string]any) (map[string]any, error) {
	validated := make(map[string]any, len(d.Params))
	for name, p := range d.Params {
		raw, ok := args[name]
		if !ok || raw == nil {
			if p.Required {
				return nil, fmt.Errorf("%w: missing required parameter %q for %s", ErrInvalidInput, name, d.Name)
			}
			continue
		}
		coerced, err := coerceParam(p.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %q for %s: %v", ErrInvalidInput, name, d.Name, err)
		}
		validated[name] = coerced
	}
	return validated, nil
}

func coerceParam(t ParamType, raw any) (any, error) {
	switch t {
	case ParamString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return s, nil
	case ParamInteger:
		switch v := raw.(type) {
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("expected integer, got %v", v)
			}
			return int(v), nil
		case int:
			return v, nil
		default:
			return nil, fmt.Errorf("expected integer, got %T", raw)
		}
	case ParamNumber:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		default:
			return nil, fmt.Errorf("expected number, got %T", raw)
		}
	case ParamBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean, got %T", raw)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported parameter type %q", t)
	}
}
