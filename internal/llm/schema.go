package llm

import (
	"google.golang.org/genai"
)

// responseSchema mirrors quote.GenerationResult. Keep the two in sync when
// adding fields.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"lead_id":         {Type: genai.TypeString},
			"echo_price_hash": {Type: genai.TypeString},
			"summary": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"fefco": {Type: genai.TypeString},
					"dimensions_mm": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"x": {Type: genai.TypeInteger},
							"y": {Type: genai.TypeInteger},
							"z": {Type: genai.TypeInteger},
						},
						Required: []string{"x", "y", "z"},
					},
					"material": {Type: genai.TypeString},
					"print":    {Type: genai.TypeString},
					"qty":      {Type: genai.TypeInteger},
					"sku":      {Type: genai.TypeString},
				},
				Required: []string{"fefco", "dimensions_mm", "material", "print", "qty", "sku"},
			},
			"options": {
				Type:     genai.TypeArray,
				MinItems: genai.Ptr(int64(3)),
				MaxItems: genai.Ptr(int64(3)),
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":               {Type: genai.TypeString, Enum: []string{"Standard", "Rush", "Strategic"}},
						"price_per_unit_rub": {Type: genai.TypeNumber},
						"lead_time":          {Type: genai.TypeString},
						"margin_pct":         {Type: genai.TypeNumber},
						"notes": {
							Type:  genai.TypeArray,
							Items: &genai.Schema{Type: genai.TypeString},
						},
					},
					Required: []string{"name", "price_per_unit_rub", "lead_time", "margin_pct"},
				},
			},
			"what_included": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"important": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"cta": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"confirm_variants": {
						Type:  genai.TypeArray,
						Items: &genai.Schema{Type: genai.TypeString},
					},
					"followups": {
						Type:  genai.TypeArray,
						Items: &genai.Schema{Type: genai.TypeString},
					},
				},
				Required: []string{"confirm_variants"},
			},
			"html_block": {Type: genai.TypeString},
		},
		Required: []string{
			"lead_id", "echo_price_hash", "summary", "options",
			"what_included", "important", "cta", "html_block",
		},
	}
}
