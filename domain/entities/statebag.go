package entities

// StateBag carries data between scenario steps.
// It is owned by a single run and is not safe for concurrent use.
type StateBag map[string]any

// Set stores value under key
func (b StateBag) Set(key string, value any) {
	b[key] = value
}

// Get returns the value stored under key
func (b StateBag) Get(key string) (any, bool) {
	v, ok := b[key]
	return v, ok
}

// String returns the string stored under key, or "" when absent or not a string
func (b StateBag) String(key string) string {
	s, _ := b[key].(string)
	return s
}
