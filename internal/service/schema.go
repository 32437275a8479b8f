package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"expensero/internal/models"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildExpenseSchema returns the JSON-schema map describing the fields the
// vision model must produce for a receipt. It is sent to the model as a
// generation-time constraint (responseSchema) and compiled locally for a
// diagnostic check of what actually came back. It performs no enforcement
// on its own: downstream normalization must still tolerate missing or
// malformed fields.
func BuildExpenseSchema() map[string]any {
	categories := make([]string, 0, len(models.Categories()))
	for _, c := range models.Categories() {
		categories = append(categories, string(c))
	}
	methods := make([]string, 0, len(models.PaymentMethods()))
	for _, m := range models.PaymentMethods() {
		methods = append(methods, string(m))
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"vendor":       map[string]any{"type": "string"},
			"expense_date": map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"amount_gross": map[string]any{"type": "number"},
			"tax_vat":      map[string]any{"type": "number"},
			"amount_net":   map[string]any{"type": "number"},
			"currency":     map[string]any{"type": "string"},
			"category_suggestion": map[string]any{
				"type": "string",
				"enum": categories,
			},
			"payment_method_guess": map[string]any{
				"type": "string",
				"enum": methods,
			},
			"project_code_guess": map[string]any{"type": "string"},
			"notes":              map[string]any{"type": "string"},
		},
		"required": []string{
			"vendor", "expense_date", "amount_gross", "tax_vat", "amount_net",
			"currency", "category_suggestion", "payment_method_guess",
		},
	}
}

// CompileExpenseSchema compiles the expense schema for local validation.
func CompileExpenseSchema() (*jsonschema.Schema, error) {
	b, err := json.Marshal(BuildExpenseSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("expense.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("expense.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}
