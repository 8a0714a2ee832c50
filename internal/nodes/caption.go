package nodes

import (
	"context"

	"github.com/lehigh-university-libraries/captioner/internal/captioning"
	"github.com/lehigh-university-libraries/captioner/internal/prompt"
)

const (
	CaptionClass     = "GeminiImageCaptioning"
	CaptionCostClass = "GeminiImageCaptioningCost"
)

// Caption wraps the captioning pipeline as a node. The cost-aware variant
// adds a COST output.
type Caption struct {
	service   *captioning.Service
	models    []string
	costAware bool
}

// NewCaption returns a caption node; costAware adds the COST output.
func NewCaption(service *captioning.Service, models []string, costAware bool) *Caption {
	return &Caption{
		service:   service,
		models:    models,
		costAware: costAware,
	}
}

// Definition describes the caption node inputs and outputs.
func (n *Caption) Definition() Definition {
	styles := make([]string, len(prompt.Styles))
	for i, s := range prompt.Styles {
		styles[i] = string(s)
	}

	var defaultModel string
	if len(n.models) > 0 {
		defaultModel = n.models[0]
	}

	def := Definition{
		Class:       CaptionClass,
		DisplayName: "Gemini Image Captioning",
		Category:    Category,
		Inputs: []Input{
			{Name: "IMAGE", Type: TypeImage, Required: true},
			{Name: "PROMPT TYPE", Type: TypeChoice, Required: true, Choices: styles, Default: styles[0]},
			{Name: "GEMINI MODEL", Type: TypeChoice, Required: true, Choices: n.models, Default: defaultModel},
			{Name: "API KEY PATH", Type: TypeString, Required: true, Default: ""},
			{Name: "PROMPT LENGTH", Type: TypeInt, Default: 0, Min: intPtr(0), Max: intPtr(1000)},
			{Name: "PROMPT STRUCTURE", Type: TypeString, Default: "", Multiline: true},
			{Name: "IGNORE", Type: TypeString, Default: "", Multiline: true},
			{Name: "EMPHASIS", Type: TypeString, Default: "", Multiline: true},
			{Name: "DICTIONARY", Type: TypeString, Default: "", Multiline: true},
			{Name: "SAVE TO PATH", Type: TypeString, Default: ""},
			{Name: "TXT NAME", Type: TypeString, Default: ""},
		},
		Outputs: []Output{
			{Name: "CHECK_RESULT PROMPT", Type: TypeString},
			{Name: "LOG", Type: TypeString},
			{Name: "CAPTION", Type: TypeString},
		},
	}

	if n.costAware {
		def.Class = CaptionCostClass
		def.DisplayName = "Gemini Image Captioning (Cost)"
		def.Outputs = append(def.Outputs, Output{Name: "COST", Type: TypeString})
	}
	return def
}

// Execute captions the IMAGE input and returns prompt, log, caption and cost.
func (n *Caption) Execute(ctx context.Context, in Inputs) (Outputs, error) {
	resolved, err := n.Definition().Resolve(in)
	if err != nil {
		return nil, err
	}

	result := n.service.Caption(ctx, resolved.Image("IMAGE"), captioning.Options{
		Style:      prompt.Style(resolved.String("PROMPT TYPE")),
		Model:      resolved.String("GEMINI MODEL"),
		KeyPath:    resolved.String("API KEY PATH"),
		MaxWords:   resolved.Int("PROMPT LENGTH"),
		Structure:  resolved.String("PROMPT STRUCTURE"),
		Ignore:     resolved.String("IGNORE"),
		Emphasis:   resolved.String("EMPHASIS"),
		Dictionary: resolved.String("DICTIONARY"),
		SaveDir:    resolved.String("SAVE TO PATH"),
		TxtName:    resolved.String("TXT NAME"),
		CostAware:  n.costAware,
	})

	out := Outputs{result.Prompt, result.LogText(), result.Caption}
	if n.costAware {
		out = append(out, result.CostSummary)
	}
	return out, nil
}

// IsChanged lets the host cache the caption while inputs are unchanged.
func (n *Caption) IsChanged(Inputs) bool {
	return false
}
