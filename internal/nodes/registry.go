package nodes

import (
	"fmt"
	"sort"

	"github.com/lehigh-university-libraries/captioner/internal/captioning"
)

// Factory creates a fresh node instance.
type Factory func() Node

// Registry maps node class names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewDefaultRegistry registers the dataset folder and both captioning nodes.
func NewDefaultRegistry(service *captioning.Service, models []string) *Registry {
	r := NewRegistry()
	r.Register(DatasetFolderClass, func() Node { return NewDatasetFolder() })
	r.Register(CaptionClass, func() Node { return NewCaption(service, models, false) })
	r.Register(CaptionCostClass, func() Node { return NewCaption(service, models, true) })
	return r
}

// Register adds or replaces the factory for class.
func (r *Registry) Register(class string, factory Factory) {
	r.factories[class] = factory
}

// New creates an instance of class.
func (r *Registry) New(class string) (Node, error) {
	factory, ok := r.factories[class]
	if !ok {
		return nil, fmt.Errorf("unknown node class: %s", class)
	}
	return factory(), nil
}

// Classes returns the registered class names sorted.
func (r *Registry) Classes() []string {
	classes := make([]string, 0, len(r.factories))
	for class := range r.factories {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}

// Definitions returns the definition of every registered class.
func (r *Registry) Definitions() []Definition {
	classes := r.Classes()
	defs := make([]Definition, 0, len(classes))
	for _, class := range classes {
		defs = append(defs, r.factories[class]().Definition())
	}
	return defs
}

// DisplayNames maps class names to their display names.
func (r *Registry) DisplayNames() map[string]string {
	names := make(map[string]string, len(r.factories))
	for _, def := range r.Definitions() {
		names[def.Class] = def.DisplayName
	}
	return names
}
