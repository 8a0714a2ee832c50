package prompt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Templates holds the fixed wording used to assemble a captioning prompt.
// Format strings take a single %s (or %d for MaxWords).
type Templates struct {
	Instruction      string           `yaml:"instruction"`
	ReferenceIntro   string           `yaml:"reference_intro"`
	Styles           map[Style]string `yaml:"styles"`
	StructureIntro   string           `yaml:"structure_intro"`
	DefaultStructure string           `yaml:"default_structure"`
	Dictionary       string           `yaml:"dictionary"`
	Ignore           string           `yaml:"ignore"`
	Emphasis         string           `yaml:"emphasis"`
	MaxWords         string           `yaml:"max_words"`
}

// DefaultTemplates returns the built-in prompt wording.
func DefaultTemplates() Templates {
	return Templates{
		Instruction:    "Give me a description of this image in the format of a text prompt for AI generative model. It should be only the descriptive text according to the provided template, without any additional comments from you. The text should be continuous, without headings, lists, or any other formatting.",
		ReferenceIntro: "Use the following reference as an example of the prompt format and structure, showing how the text should look. Use it only as a reference, do not use its content for the current request unless it is present in the attached image.",
		Styles: map[Style]string{
			StyleSDXL: `"It should be in CLIP-L comma-separated keywords SDXL prompt style. This is the sample, don’t use it directly only like a style reference: "Architecture, high-end modernist residential complex, minimalist design, open balconies, subtle architectural details, concrete and glass façades, elegant geometric volumes, tiered rooftop terraces, panoramic floor-to-ceiling windows, neutral-toned stone panels, tinted glass curtain walls, brushed metal railings, integrated with lush landscaping, manicured hedges, ornamental grasses, sculptural trees, wooden pathway leading to a reflective metal sphere, secluded urban oasis, tranquil environment, free from city noise, surrounded by curated greenery, creating a serene and balanced atmosphere, soft diffused lighting, overcast sky, early morning mist, gentle atmospheric glow, cinematic wide-angle perspective, symmetrical framing, high dynamic range, RAW photo, hyper-detailed, photorealistic""`,
			StyleFlux: `"It should be in CLIP-G natural language FLUX prompt style. This is the sample, don’t use it directly only like a style reference: "Architecture, high-end modernist residential complex surrounded by lush greenery, designed with a minimalist and elegant aesthetic. The buildings feature a combination of natural stone and glass façades, with subtle architectural details and open balconies. A linear yet dynamic composition with clean geometric volumes, softened by carefully curated landscaping, including hedges, ornamental grasses, and small trees. The façade combines smooth concrete panels with floor-to-ceiling tinted glass windows, creating a refined balance of opacity and transparency. The outdoor space is defined by a wooden pathway meandering through a meticulously designed garden, leading towards a focal point—a polished metal sphere sculpture. Strategic lighting elements subtly highlight the landscape, while the gentle play of reflections on the glass surfaces enhances the depth of the environment. Set in a tranquil urban enclave, free from visual noise, framed by an overcast sky that casts a soft, diffused glow over the buildings. Early morning atmosphere with slight fog in the distance, lending an ethereal and cinematic quality to the scene. RAW photo, slightly elevated wide-angle viewpoint, cinematic framing, balanced symmetry, moderate depth of field, high dynamic range, hyper-detailed, photorealistic rendering.""`,
		},
		StructureIntro:   "The structure of the prompt should be as follows (do not create headings or comments, only follow the order of information in the description):",
		DefaultStructure: "1) Type of the building, \n2) Shape of the building, \n3) Building materials, \n4) Location and surroundings, \n5) Season, weather, daytime, lighting, \n6) Camera position and angle, composition, camera parameters",
		Dictionary:       "Consider using these words from the dictionary if strictly appropriate for the image: %s",
		Ignore:           "In the prompt, be sure to ignore any mention of anything related to: %s",
		Emphasis:         "In the prompt, emphasize additional attention on: %s",
		MaxWords:         "The number of words in the prompt should be no more than %d",
	}
}

// LoadTemplates reads prompt wording from a YAML file. Keys missing from the
// file keep their built-in values.
func LoadTemplates(path string) (Templates, error) {
	templates := DefaultTemplates()

	data, err := os.ReadFile(path)
	if err != nil {
		return templates, fmt.Errorf("failed to read templates file: %w", err)
	}

	var override Templates
	if err := yaml.Unmarshal(data, &override); err != nil {
		return templates, fmt.Errorf("failed to parse templates file: %w", err)
	}

	templates.merge(override)
	return templates, nil
}

func (t *Templates) merge(o Templates) {
	set := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	set(&t.Instruction, o.Instruction)
	set(&t.ReferenceIntro, o.ReferenceIntro)
	set(&t.StructureIntro, o.StructureIntro)
	set(&t.DefaultStructure, o.DefaultStructure)
	set(&t.Dictionary, o.Dictionary)
	set(&t.Ignore, o.Ignore)
	set(&t.Emphasis, o.Emphasis)
	set(&t.MaxWords, o.MaxWords)
	for style, sample := range o.Styles {
		t.Styles[style] = sample
	}
}
