package nodes

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/lehigh-university-libraries/captioner/internal/images"
)

// ErrInvalidInput is returned when inputs do not satisfy a node definition.
var ErrInvalidInput = errors.New("invalid input")

// Category groups the nodes in the host's menu.
const Category = "Gemini"

// Type is the slot type of an input or output.
type Type string

const (
	TypeImage  Type = "IMAGE"
	TypeString Type = "STRING"
	TypeInt    Type = "INT"
	TypeChoice Type = "CHOICE"
)

// Input declares an input slot.
type Input struct {
	Name      string   `json:"name"`
	Type      Type     `json:"type"`
	Required  bool     `json:"required"`
	Default   any      `json:"default,omitempty"`
	Choices   []string `json:"choices,omitempty"`
	Min       *int     `json:"min,omitempty"`
	Max       *int     `json:"max,omitempty"`
	Multiline bool     `json:"multiline,omitempty"`
}

// Output declares an output slot.
type Output struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Definition describes a node class to the host.
type Definition struct {
	Class       string   `json:"class"`
	DisplayName string   `json:"display_name"`
	Category    string   `json:"category"`
	Inputs      []Input  `json:"inputs"`
	Outputs     []Output `json:"outputs"`
}

// Inputs are the values supplied by the host, keyed by input name.
type Inputs map[string]any

// Outputs are the produced values in the order of Definition.Outputs.
type Outputs []any

// Node is a unit of work in the host's graph.
type Node interface {
	Definition() Definition
	// Execute runs the node once. Errors are reserved for inputs that violate
	// the definition; processing failures are reported through the outputs.
	Execute(ctx context.Context, in Inputs) (Outputs, error)
	// IsChanged reports whether the host must re-run the node even though
	// its inputs are unchanged.
	IsChanged(in Inputs) bool
}

// Resolve validates in against the definition and fills in defaults for
// missing optional inputs.
func (d Definition) Resolve(in Inputs) (Inputs, error) {
	out := make(Inputs, len(d.Inputs))
	for _, spec := range d.Inputs {
		v, ok := in[spec.Name]
		if !ok || v == nil {
			if spec.Required {
				return nil, fmt.Errorf("%w: %s is required", ErrInvalidInput, spec.Name)
			}
			if spec.Default != nil {
				out[spec.Name] = spec.Default
			}
			continue
		}

		v, err := spec.coerce(v)
		if err != nil {
			return nil, err
		}
		out[spec.Name] = v
	}
	return out, nil
}

func (spec Input) coerce(v any) (any, error) {
	switch spec.Type {
	case TypeImage:
		img, ok := v.(images.Image)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be an image", ErrInvalidInput, spec.Name)
		}
		return img, nil
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidInput, spec.Name)
		}
		return s, nil
	case TypeChoice:
		s, ok := v.(string)
		if !ok || !slices.Contains(spec.Choices, s) {
			return nil, fmt.Errorf("%w: %s must be one of %v", ErrInvalidInput, spec.Name, spec.Choices)
		}
		return s, nil
	case TypeInt:
		n, ok := toInt(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be an integer", ErrInvalidInput, spec.Name)
		}
		if (spec.Min != nil && n < *spec.Min) || (spec.Max != nil && n > *spec.Max) {
			return nil, fmt.Errorf("%w: %s out of range", ErrInvalidInput, spec.Name)
		}
		return n, nil
	default:
		return v, nil
	}
}

// toInt accepts the numeric forms produced by Go callers and JSON decoding.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// String returns a resolved string input or "".
func (in Inputs) String(name string) string {
	s, _ := in[name].(string)
	return s
}

// Int returns a resolved integer input or 0.
func (in Inputs) Int(name string) int {
	n, _ := in[name].(int)
	return n
}

// Image returns a resolved image input.
func (in Inputs) Image(name string) images.Image {
	img, _ := in[name].(images.Image)
	return img
}

func intPtr(n int) *int {
	return &n
}
