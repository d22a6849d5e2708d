package perception

import "google.golang.org/genai"

// toGeminiSchema converts a plain JSON-Schema map (the provider-neutral
// shape tools and structured output are declared in) to the genai SDK's
// typed schema. Unknown keys are ignored; unknown types default to string.
func toGeminiSchema(js map[string]interface{}) *genai.Schema {
	if js == nil {
		return nil
	}
	schema := &genai.Schema{}

	if t, ok := js["type"].(string); ok {
		switch t {
		case "object":
			schema.Type = genai.TypeObject
		case "array":
			schema.Type = genai.TypeArray
		case "number":
			schema.Type = genai.TypeNumber
		case "integer":
			schema.Type = genai.TypeInteger
		case "boolean":
			schema.Type = genai.TypeBoolean
		default:
			schema.Type = genai.TypeString
		}
	}
	if d, ok := js["description"].(string); ok {
		schema.Description = d
	}
	if props, ok := js["properties"].(map[string]interface{}); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if sub, ok := raw.(map[string]interface{}); ok {
				schema.Properties[name] = toGeminiSchema(sub)
			}
		}
	}
	if items, ok := js["items"].(map[string]interface{}); ok {
		schema.Items = toGeminiSchema(items)
	}
	if req, ok := js["required"].([]string); ok {
		schema.Required = req
	} else if raw, ok := js["required"].([]interface{}); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}
	if raw, ok := js["enum"].([]interface{}); ok {
		for _, e := range raw {
			if s, ok := e.(string); ok {
				schema.Enum = append(schema.Enum, s)
			}
		}
	} else if vals, ok := js["enum"].([]string); ok {
		schema.Enum = vals
	}
	return schema
}
