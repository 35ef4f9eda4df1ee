package driven

// ConfigStore provides persistent key-value configuration.
// Keys use dotted paths such as "embedding.provider".
type ConfigStore interface {
	// Get retrieves a raw value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, "" when absent.
	GetString(key string) string

	// GetInt retrieves an integer value, 0 when absent.
	GetInt(key string) int

	// GetFloat retrieves a float value, 0 when absent.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value, false when absent.
	GetBool(key string) bool

	// Set stores a value and persists it.
	Set(key string, value any) error

	// Delete removes a key and persists the change.
	Delete(key string) error
}
