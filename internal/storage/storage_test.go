package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lehigh-university-libraries/captioner/internal/nodes"
)

func TestNodeStore(t *testing.T) {
	s := New()

	_, ok := s.Get("missing")
	assert.False(t, ok)

	instance := &Instance{ID: "a", Class: nodes.DatasetFolderClass, Node: nodes.NewDatasetFolder()}
	s.Set("a", instance)

	got, ok := s.Get("a")
	assert.True(t, ok)
	assert.Same(t, instance, got)

	all := s.GetAll()
	assert.Len(t, all, 1)
	delete(all, "a")
	_, ok = s.Get("a")
	assert.True(t, ok, "GetAll returns a copy")

	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))
	_, ok = s.Get("a")
	assert.False(t, ok)
}
