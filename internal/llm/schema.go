package llm

import "github.com/ostegm/contractor-app/pkg/project"

// BuildEstimateJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We pass this to the model as a structured output constraint
// and also use it locally to validate.
func BuildEstimateJSONSchema() map[string]any {
	itemProps := map[string]any{
		"description":      map[string]any{"type": "string", "minLength": 1},
		"category":         map[string]any{"type": "string", "minLength": 1},
		"subcategory":      map[string]any{"type": "string"},
		"cost_range_min":   map[string]any{"type": "number", "minimum": 0},
		"cost_range_max":   map[string]any{"type": "number", "minimum": 0},
		"unit":             map[string]any{"type": "string"},
		"quantity":         map[string]any{"type": "number", "minimum": 0},
		"assumptions":      map[string]any{"type": "string"},
		"confidence_score": map[string]any{"type": "string", "enum": project.ConfidenceLevels()},
		"notes":            map[string]any{"type": "string"},
	}

	props := map[string]any{
		"project_description":     map[string]any{"type": "string", "minLength": 1},
		"estimated_total_min":     map[string]any{"type": "number", "minimum": 0},
		"estimated_total_max":     map[string]any{"type": "number", "minimum": 0},
		"estimated_timeline_days": map[string]any{"type": "number", "minimum": 0},
		"confidence_level":        map[string]any{"type": "string", "enum": project.ConfidenceLevels()},
		"key_considerations":      stringArrayProp(),
		"estimate_items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           itemProps,
				"required":             []string{"description", "category", "cost_range_min", "cost_range_max"},
			},
		},
		"next_steps":          stringArrayProp(),
		"missing_information": stringArrayProp(),
		"key_risks":           stringArrayProp(),
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required": []string{
			"project_description",
			"estimated_total_min",
			"estimated_total_max",
			"confidence_level",
			"key_considerations",
			"estimate_items",
			"next_steps",
			"missing_information",
			"key_risks",
		},
	}
}

// BuildVideoAnalysisJSONSchema constrains the video analysis output: a
// description plus ordered key moments.
func BuildVideoAnalysisJSONSchema() map[string]any {
	momentProps := map[string]any{
		"timestamp_s": map[string]any{"type": "number", "minimum": 0},
		"filename":    map[string]any{"type": "string"},
		"description": map[string]any{"type": "string", "minLength": 1},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"description": map[string]any{"type": "string", "minLength": 1},
			"key_moments": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties":           momentProps,
					"required":             []string{"timestamp_s", "description"},
				},
			},
		},
		"required": []string{"description", "key_moments"},
	}
}

func stringArrayProp() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}
