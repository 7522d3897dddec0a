// Package mapper holds small generic helpers for converting between layers.
package mapper

// MapSlice converts each item with fn, preserving order. A nil input yields an empty slice so
// that JSON renders [] rather than null.
func MapSlice[T any, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
