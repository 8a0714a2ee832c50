package prompt

import (
	"fmt"
	"strings"
)

// Style selects the prompt format the captioning model is asked to produce.
type Style string

const (
	// StyleSDXL asks for comma-separated keyword prompts.
	StyleSDXL Style = "SD1.5 – SDXL"
	// StyleFlux asks for natural language prompts.
	StyleFlux Style = "FLUX"
)

// Styles lists the supported styles in display order.
var Styles = []Style{StyleSDXL, StyleFlux}

// ParseStyle maps a display value to a Style.
func ParseStyle(s string) (Style, error) {
	for _, style := range Styles {
		if string(style) == s {
			return style, nil
		}
	}
	return "", fmt.Errorf("unsupported prompt type: %q", s)
}

// Request carries the caller's prompt options.
type Request struct {
	Style      Style
	Structure  string
	Ignore     string
	Emphasis   string
	Dictionary string
	MaxWords   int
}

// Build assembles the instruction text sent alongside the image. Blocks are
// separated by blank lines and optional blocks are omitted when their input
// is blank.
func (t Templates) Build(req Request) string {
	parts := t.base(req.Style)

	parts = append(parts, t.StructureIntro)
	if isBlank(req.Structure) {
		parts = append(parts, t.DefaultStructure)
	} else {
		parts = append(parts, req.Structure)
	}

	if !isBlank(req.Dictionary) {
		parts = append(parts, fmt.Sprintf(t.Dictionary, req.Dictionary))
	}
	if !isBlank(req.Ignore) {
		parts = append(parts, fmt.Sprintf(t.Ignore, req.Ignore))
	}
	if !isBlank(req.Emphasis) {
		parts = append(parts, fmt.Sprintf(t.Emphasis, req.Emphasis))
	}
	if req.MaxWords > 0 {
		parts = append(parts, fmt.Sprintf(t.MaxWords, req.MaxWords))
	}

	return strings.Join(parts, "\n\n")
}

// Base returns the style-dependent instruction that opens every prompt.
func (t Templates) Base(style Style) string {
	return strings.Join(t.base(style), "\n\n")
}

func (t Templates) base(style Style) []string {
	parts := []string{t.Instruction, t.ReferenceIntro}
	if sample, ok := t.Styles[style]; ok {
		parts = append(parts, sample)
	}
	return parts
}

// Build assembles a prompt with the built-in wording.
func Build(req Request) string {
	return DefaultTemplates().Build(req)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
