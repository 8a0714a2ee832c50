package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Unavailable explanations used in place of a cost summary.
const (
	NoUsage  = "Cost unavailable: no usage data returned"
	NoAPIKey = "Cost unavailable: API key not loaded"
)

// Price is the USD cost per 1,000,000 tokens.
type Price struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// Usage holds the token counts reported for a single request.
type Usage struct {
	InputTokens  int `yaml:"input_tokens" json:"input_tokens"`
	OutputTokens int `yaml:"output_tokens" json:"output_tokens"`
}

// Cost returns the USD cost of the given usage at this price.
func (p Price) Cost(u Usage) float64 {
	return float64(u.InputTokens)/1e6*p.Input + float64(u.OutputTokens)/1e6*p.Output
}

// Table maps model identifiers to prices.
type Table map[string]Price

// DefaultTable returns the built-in price list.
func DefaultTable() Table {
	return Table{
		"gemini-1.5-pro":        {Input: 1.25, Output: 5.00},
		"gemini-1.5-flash":      {Input: 0.075, Output: 0.30},
		"gemini-1.5-flash-8b":   {Input: 0.0375, Output: 0.15},
		"gemini-2.0-flash":      {Input: 0.10, Output: 0.40},
		"gemini-2.0-flash-lite": {Input: 0.075, Output: 0.30},
		"gemini-2.0-flash-exp":  {Input: 0, Output: 0},
		"gemini-2.5-flash":      {Input: 0.30, Output: 2.50},
		"gemini-2.5-flash-lite": {Input: 0.10, Output: 0.40},
		"gemini-2.5-pro":        {Input: 1.25, Output: 10.00},
	}
}

// Load reads a YAML price table. Entries in the file replace or extend the
// built-in prices.
func Load(path string) (Table, error) {
	table := DefaultTable()

	data, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("failed to read prices file: %w", err)
	}

	var override Table
	if err := yaml.Unmarshal(data, &override); err != nil {
		return table, fmt.Errorf("failed to parse prices file: %w", err)
	}

	for model, price := range override {
		table[model] = price
	}
	return table, nil
}

// Lookup returns the model's price, or a zero price for unknown models.
func (t Table) Lookup(model string) Price {
	return t[model]
}

// Cost prices the usage for the given model.
func (t Table) Cost(model string, u Usage) float64 {
	return t.Lookup(model).Cost(u)
}

// Summary formats token counts and cost for display.
func (t Table) Summary(model string, u Usage) string {
	return fmt.Sprintf("Input tokens: %d | Output tokens: %d | Cost: $%.6f", u.InputTokens, u.OutputTokens, t.Cost(model, u))
}
