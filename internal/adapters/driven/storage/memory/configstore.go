package memory

import (
	"sync"

	"github.com/tessera-labs/recall/internal/core/ports/driven"
)

// ConfigStore is an in-memory implementation of driven.ConfigStore.
// Nothing is persisted; each instance starts empty.
type ConfigStore struct {
	mu   sync.RWMutex
	data map[string]any
}

var _ driven.ConfigStore = (*ConfigStore)(nil)

// NewConfigStore creates a new in-memory config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		data: make(map[string]any),
	}
}

// Get retrieves a raw value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	return value, ok
}

// GetString retrieves a string value, "" when absent.
func (s *ConfigStore) GetString(key string) string {
	value, ok := s.Get(key)
	if !ok {
		return ""
	}
	str, _ := value.(string)
	return str
}

// GetInt retrieves an integer value, 0 when absent.
func (s *ConfigStore) GetInt(key string) int {
	value, ok := s.Get(key)
	if !ok {
		return 0
	}
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// GetFloat retrieves a float value, 0 when absent.
func (s *ConfigStore) GetFloat(key string) float64 {
	value, ok := s.Get(key)
	if !ok {
		return 0
	}
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// GetBool retrieves a boolean value, false when absent.
func (s *ConfigStore) GetBool(key string) bool {
	value, ok := s.Get(key)
	if !ok {
		return false
	}
	b, _ := value.(bool)
	return b
}

// Set stores a value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

// Delete removes a key.
func (s *ConfigStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}
