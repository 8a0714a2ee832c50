package storage

import (
	"sync"
	"time"

	"github.com/lehigh-university-libraries/captioner/internal/nodes"
)

// Instance is a node object owned by the host between executions. Its mutex
// serializes executions so per-instance state such as the folder cursor is
// never touched by two requests at once.
type Instance struct {
	ID        string
	Class     string
	Node      nodes.Node
	CreatedAt time.Time

	mu sync.Mutex
}

// Lock serializes use of the instance's node.
func (i *Instance) Lock() {
	i.mu.Lock()
}

func (i *Instance) Unlock() {
	i.mu.Unlock()
}

type NodeStore struct {
	instances map[string]*Instance
	mu        sync.RWMutex
}

func New() *NodeStore {
	return &NodeStore{
		instances: make(map[string]*Instance),
	}
}

func (s *NodeStore) Get(id string) (*Instance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	instance, exists := s.instances[id]
	return instance, exists
}

func (s *NodeStore) Set(id string, instance *Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[id] = instance
}

func (s *NodeStore) GetAll() map[string]*Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*Instance, len(s.instances))
	for k, v := range s.instances {
		result[k] = v
	}
	return result
}

func (s *NodeStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.instances[id]
	delete(s.instances, id)
	return exists
}
