package llm

// PageJSONSchema describes the object a vision model should return for one page.
func PageJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
			"tables": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"headers": map[string]any{"type": "array"},
						"rows": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "array"},
						},
					},
				},
			},
			"images": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"text"},
	}
}
