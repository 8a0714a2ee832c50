package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaults(t *testing.T) {
	tmpl := DefaultTemplates()

	for _, style := range Styles {
		t.Run(string(style), func(t *testing.T) {
			got := Build(Request{Style: style})
			expected := tmpl.Base(style) + "\n\n" + tmpl.StructureIntro + "\n\n" + tmpl.DefaultStructure
			assert.Equal(t, expected, got)
			assert.Contains(t, got, tmpl.Styles[style])
			assert.NotContains(t, got, "dictionary")
			assert.NotContains(t, got, "ignore any mention")
			assert.NotContains(t, got, "emphasize")
			assert.NotContains(t, got, "number of words")
		})
	}
}

func TestBuildStylesDiffer(t *testing.T) {
	sdxl := Build(Request{Style: StyleSDXL})
	flux := Build(Request{Style: StyleFlux})
	assert.NotEqual(t, sdxl, flux)
	assert.Contains(t, sdxl, "CLIP-L comma-separated keywords")
	assert.Contains(t, flux, "CLIP-G natural language FLUX")
}

func TestBuildBlocks(t *testing.T) {
	tests := []struct {
		name       string
		req        Request
		contains   []string
		notContain []string
	}{
		{
			name:       "custom structure replaces default",
			req:        Request{Style: StyleFlux, Structure: "1) Subject\n2) Light"},
			contains:   []string{"1) Subject\n2) Light"},
			notContain: []string{"1) Type of the building"},
		},
		{
			name:     "blank structure falls back to default",
			req:      Request{Style: StyleFlux, Structure: "   \n\t"},
			contains: []string{"1) Type of the building"},
		},
		{
			name:     "ignore block",
			req:      Request{Style: StyleSDXL, Ignore: "people, cars"},
			contains: []string{"In the prompt, be sure to ignore any mention of anything related to: people, cars"},
		},
		{
			name:     "emphasis block",
			req:      Request{Style: StyleSDXL, Emphasis: "glass"},
			contains: []string{"In the prompt, emphasize additional attention on: glass"},
		},
		{
			name:     "dictionary block",
			req:      Request{Style: StyleSDXL, Dictionary: "brutalist, cantilever"},
			contains: []string{"Consider using these words from the dictionary if strictly appropriate for the image: brutalist, cantilever"},
		},
		{
			name:       "blank optional blocks are omitted",
			req:        Request{Style: StyleSDXL, Ignore: " ", Emphasis: "\n", Dictionary: "\t"},
			notContain: []string{"ignore any mention", "emphasize", "dictionary"},
		},
		{
			name:       "zero word count omits limit",
			req:        Request{Style: StyleSDXL, MaxWords: 0},
			notContain: []string{"number of words"},
		},
		{
			name:       "negative word count omits limit",
			req:        Request{Style: StyleSDXL, MaxWords: -5},
			notContain: []string{"number of words"},
		},
		{
			name:     "positive word count adds limit",
			req:      Request{Style: StyleSDXL, MaxWords: 75},
			contains: []string{"The number of words in the prompt should be no more than 75"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.req)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.notContain {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestBuildBlockOrder(t *testing.T) {
	got := Build(Request{
		Style:      StyleSDXL,
		Structure:  "STRUCTURE",
		Dictionary: "DICTIONARY",
		Ignore:     "IGNORE",
		Emphasis:   "EMPHASIS",
		MaxWords:   42,
	})

	parts := strings.Split(got, "\n\n")
	tail := parts[len(parts)-5:]
	assert.Equal(t, "STRUCTURE", tail[0])
	assert.True(t, strings.HasSuffix(tail[1], "DICTIONARY"))
	assert.True(t, strings.HasSuffix(tail[2], "IGNORE"))
	assert.True(t, strings.HasSuffix(tail[3], "EMPHASIS"))
	assert.True(t, strings.HasSuffix(tail[4], "42"))
}

func TestParseStyle(t *testing.T) {
	style, err := ParseStyle("FLUX")
	require.NoError(t, err)
	assert.Equal(t, StyleFlux, style)

	style, err = ParseStyle("SD1.5 – SDXL")
	require.NoError(t, err)
	assert.Equal(t, StyleSDXL, style)

	_, err = ParseStyle("MJ")
	assert.Error(t, err)
}

func TestLoadTemplatesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	content := `instruction: "Describe the photo."
styles:
  FLUX: "Write flowing sentences."
max_words: "Stay under %d words."
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	tmpl, err := LoadTemplates(path)
	require.NoError(t, err)
	assert.Equal(t, "Describe the photo.", tmpl.Instruction)
	assert.Equal(t, "Write flowing sentences.", tmpl.Styles[StyleFlux])
	assert.Equal(t, DefaultTemplates().Styles[StyleSDXL], tmpl.Styles[StyleSDXL])
	assert.Equal(t, DefaultTemplates().StructureIntro, tmpl.StructureIntro)

	got := tmpl.Build(Request{Style: StyleFlux, MaxWords: 10})
	assert.True(t, strings.HasPrefix(got, "Describe the photo."))
	assert.True(t, strings.HasSuffix(got, "Stay under 10 words."))
}

func TestLoadTemplatesMissingFile(t *testing.T) {
	tmpl, err := LoadTemplates(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.Equal(t, DefaultTemplates().Instruction, tmpl.Instruction)
}
