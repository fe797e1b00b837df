// Package attrs reads values back out of slog-style key/value attribute lists.
package attrs

// Extract returns the value stored under key when it has type T.
// The slice is formatted as [key1, value1, key2, value2, ...].
func Extract[T any](attrs []any, key string) (T, bool) {
	var zero T
	for i := 0; i < len(attrs)-1; i += 2 {
		k, ok := attrs[i].(string)
		if !ok || k != key {
			continue
		}
		if v, ok := attrs[i+1].(T); ok {
			return v, true
		}
	}
	return zero, false
}

// ExtractString extracts a string value, or "" when absent or not a string.
func ExtractString(attrs []any, key string) string {
	v, _ := Extract[string](attrs, key)
	return v
}
