package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCost(t *testing.T) {
	tests := []struct {
		name     string
		price    Price
		usage    Usage
		expected float64
	}{
		{"flash pricing", Price{Input: 0.30, Output: 2.50}, Usage{InputTokens: 1000, OutputTokens: 500}, 0.00155},
		{"input only", Price{Input: 1.25, Output: 5}, Usage{InputTokens: 2_000_000}, 2.5},
		{"output only", Price{Input: 1.25, Output: 5}, Usage{OutputTokens: 100_000}, 0.5},
		{"free model", Price{}, Usage{InputTokens: 999, OutputTokens: 999}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.price.Cost(tt.usage), 1e-12)
		})
	}
}

func TestSummary(t *testing.T) {
	table := Table{"flash": {Input: 0.30, Output: 2.50}}

	got := table.Summary("flash", Usage{InputTokens: 1000, OutputTokens: 500})
	assert.Equal(t, "Input tokens: 1000 | Output tokens: 500 | Cost: $0.001550", got)
}

func TestLookupUnknownModelIsFree(t *testing.T) {
	table := DefaultTable()
	assert.Equal(t, Price{}, table.Lookup("gemini-9-ultra"))
	assert.Equal(t, "Input tokens: 10 | Output tokens: 20 | Cost: $0.000000", table.Summary("gemini-9-ultra", Usage{InputTokens: 10, OutputTokens: 20}))
}

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	assert.Equal(t, Price{Input: 0.30, Output: 2.50}, table.Lookup("gemini-2.5-flash"))
	assert.Contains(t, table, "gemini-1.5-pro")
	assert.Contains(t, table, "gemini-2.0-flash-exp")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.yaml")
	content := `gemini-1.5-pro:
  input: 3.5
  output: 10.5
custom-model:
  input: 1
  output: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Price{Input: 3.5, Output: 10.5}, table.Lookup("gemini-1.5-pro"))
	assert.Equal(t, Price{Input: 1, Output: 2}, table.Lookup("custom-model"))
	assert.Equal(t, Price{Input: 0.30, Output: 2.50}, table.Lookup("gemini-2.5-flash"))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}
