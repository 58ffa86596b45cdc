// Package utils holds small generic helpers shared across the client.
package utils

// Ptr returns a pointer to v. Useful for optional struct fields.
func Ptr[T any](v T) *T {
	return &v
}

// Value dereferences v, returning the zero value when v is nil.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}
